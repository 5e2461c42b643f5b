package videosrc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSeekRingEvictsOldest exercises the S6 scenario: pushing four
// requests back-to-back into a ring of size K=2 evicts the first two.
func TestSeekRingEvictsOldest(t *testing.T) {
	r := NewSeekRing(2)
	reply1 := r.Push(1)
	reply2 := r.Push(2)
	reply3 := r.Push(3)
	reply4 := r.Push(4)

	assert.Equal(t, 2, r.Len())

	_, ok := <-reply1
	assert.False(t, ok, "request 1 should be canceled")
	_, ok = <-reply2
	assert.False(t, ok, "request 2 should be canceled")

	done := make(chan struct{})
	req, ok := r.Pop(done)
	require.True(t, ok)
	assert.Equal(t, 4, req.frameIndex, "most recently pushed request is served first")

	req, ok = r.Pop(done)
	require.True(t, ok)
	assert.Equal(t, 3, req.frameIndex)

	_ = reply3
	_ = reply4
}

func TestSeekRingPopUnblocksOnDone(t *testing.T) {
	r := NewSeekRing(2)
	done := make(chan struct{})
	resultCh := make(chan bool, 1)
	go func() {
		_, ok := r.Pop(done)
		resultCh <- ok
	}()
	close(done)
	ok := <-resultCh
	assert.False(t, ok)
}
