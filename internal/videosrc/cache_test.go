package videosrc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPacketCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewPacketCache(2)
	c.Put(&Packet{FrameIndex: 0})
	c.Put(&Packet{FrameIndex: 1})

	// Touch 0 so 1 becomes least-recently-used.
	_, ok := c.Get(0)
	assert.True(t, ok)

	c.Put(&Packet{FrameIndex: 2})

	_, ok = c.Get(1)
	assert.False(t, ok, "1 should have been evicted")
	_, ok = c.Get(0)
	assert.True(t, ok)
	_, ok = c.Get(2)
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestPacketCacheUpdateExisting(t *testing.T) {
	c := NewPacketCache(2)
	c.Put(&Packet{FrameIndex: 0, Dts: 0})
	c.Put(&Packet{FrameIndex: 0, Dts: 99})

	p, ok := c.Get(0)
	assert.True(t, ok)
	assert.Equal(t, int64(99), p.Dts)
	assert.Equal(t, 1, c.Len())
}
