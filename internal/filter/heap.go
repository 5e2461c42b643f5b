package filter

import "container/heap"

// maxHeap and minHeap back a sliding-window median (§4.5 Median) via
// two heaps with lazy deletion: removing an element that isn't at the
// top just marks it pending and prunes it lazily once it surfaces.

type maxHeap struct{ data []int }

func (h maxHeap) Len() int            { return len(h.data) }
func (h maxHeap) Less(i, j int) bool  { return h.data[i] > h.data[j] }
func (h maxHeap) Swap(i, j int)       { h.data[i], h.data[j] = h.data[j], h.data[i] }
func (h *maxHeap) Push(x interface{}) { h.data = append(h.data, x.(int)) }
func (h *maxHeap) Pop() interface{} {
	old := h.data
	n := len(old)
	v := old[n-1]
	h.data = old[:n-1]
	return v
}

type minHeap struct{ data []int }

func (h minHeap) Len() int            { return len(h.data) }
func (h minHeap) Less(i, j int) bool  { return h.data[i] < h.data[j] }
func (h minHeap) Swap(i, j int)       { h.data[i], h.data[j] = h.data[j], h.data[i] }
func (h *minHeap) Push(x interface{}) { h.data = append(h.data, x.(int)) }
func (h *minHeap) Pop() interface{} {
	old := h.data
	n := len(old)
	v := old[n-1]
	h.data = old[:n-1]
	return v
}

// slidingMedian tracks the running median over the last window
// samples pushed via consume, clamping to whatever has been seen
// while the window is still filling (§4.5 boundary rule).
type slidingMedian struct {
	window int
	lo     maxHeap
	hi     minHeap
	loSize int
	hiSize int
	queue  []int
	delay  map[int]int
}

func newSlidingMedian(window int) *slidingMedian {
	if window < 1 {
		window = 1
	}
	return &slidingMedian{window: window, delay: make(map[int]int)}
}

func (m *slidingMedian) pruneLo() {
	for m.lo.Len() > 0 && m.delay[m.lo.data[0]] > 0 {
		top := m.lo.data[0]
		m.delay[top]--
		if m.delay[top] == 0 {
			delete(m.delay, top)
		}
		heap.Pop(&m.lo)
	}
}

func (m *slidingMedian) pruneHi() {
	for m.hi.Len() > 0 && m.delay[m.hi.data[0]] > 0 {
		top := m.hi.data[0]
		m.delay[top]--
		if m.delay[top] == 0 {
			delete(m.delay, top)
		}
		heap.Pop(&m.hi)
	}
}

func (m *slidingMedian) rebalance() {
	if m.loSize > m.hiSize+1 {
		m.pruneLo()
		v := heap.Pop(&m.lo).(int)
		m.loSize--
		heap.Push(&m.hi, v)
		m.hiSize++
		m.pruneHi()
	} else if m.hiSize > m.loSize {
		m.pruneHi()
		v := heap.Pop(&m.hi).(int)
		m.hiSize--
		heap.Push(&m.lo, v)
		m.loSize++
		m.pruneLo()
	}
}

func (m *slidingMedian) insert(v int) {
	m.pruneLo()
	if m.lo.Len() == 0 || v <= m.lo.data[0] {
		heap.Push(&m.lo, v)
		m.loSize++
	} else {
		heap.Push(&m.hi, v)
		m.hiSize++
	}
	m.rebalance()
}

func (m *slidingMedian) remove(v int) {
	m.pruneLo()
	if m.lo.Len() > 0 && v <= m.lo.data[0] {
		m.loSize--
		if v == m.lo.data[0] {
			heap.Pop(&m.lo)
		} else {
			m.delay[v]++
		}
	} else {
		m.pruneHi()
		m.hiSize--
		if m.hi.Len() > 0 && v == m.hi.data[0] {
			heap.Pop(&m.hi)
		} else {
			m.delay[v]++
		}
	}
	m.rebalance()
}

// consume pushes v into the window, evicting the oldest sample once
// the window is full, and returns the current median.
func (m *slidingMedian) consume(v int) int {
	m.queue = append(m.queue, v)
	m.insert(v)
	if len(m.queue) > m.window {
		oldest := m.queue[0]
		m.queue = m.queue[1:]
		m.remove(oldest)
	}
	m.pruneLo()
	return m.lo.data[0]
}
