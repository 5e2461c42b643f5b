package videosrc

import (
	"container/list"
	"sync"
)

// PacketCache is a fixed-capacity LRU cache from frame index to
// packet. The DecoderPool fills it as it looks packets up and consults
// it first, so repeated access to a recently-visited frame avoids
// touching the packet list's lock. The Green2 builder does not use it.
type PacketCache struct {
	mu       sync.Mutex
	capacity int
	items    map[int]*list.Element
	order    *list.List // front = most recently used
}

type cacheEntry struct {
	frameIndex int
	packet     *Packet
}

// NewPacketCache creates a cache holding at most capacity packets.
func NewPacketCache(capacity int) *PacketCache {
	if capacity < 1 {
		capacity = 1
	}
	return &PacketCache{
		capacity: capacity,
		items:    make(map[int]*list.Element, capacity),
		order:    list.New(),
	}
}

// Get returns the cached packet for frameIndex, if present, marking
// it most-recently-used.
func (c *PacketCache) Get(frameIndex int) (*Packet, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[frameIndex]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).packet, true
}

// Put inserts or refreshes a packet, evicting the least-recently-used
// entry if the cache is full.
func (c *PacketCache) Put(p *Packet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[p.FrameIndex]; ok {
		el.Value.(*cacheEntry).packet = p
		c.order.MoveToFront(el)
		return
	}
	el := c.order.PushFront(&cacheEntry{frameIndex: p.FrameIndex, packet: p})
	c.items[p.FrameIndex] = el
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*cacheEntry).frameIndex)
		}
	}
}

// Len returns the current number of cached entries.
func (c *PacketCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
