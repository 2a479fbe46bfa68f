package world

import "fmt"

// History is a fixed-capacity trail of circle snapshots. Once full, each push
// evicts the oldest entry.
type History struct {
	buffer []Circle
	next   int
	length int
	// pushed counts every Push since construction, evicted or not.
	pushed uint64
}

// NewHistory allocates a trail holding at most capacity snapshots.
func NewHistory(capacity int) (*History, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: history capacity %d, need at least 1", ErrInvalidCapacity, capacity)
	}
	return &History{buffer: make([]Circle, capacity)}, nil
}

// Push records a copy of circle.
func (h *History) Push(circle Circle) {
	h.buffer[h.next] = circle
	h.next++
	if h.next >= len(h.buffer) {
		h.next = 0
	}
	if h.length < len(h.buffer) {
		h.length++
	}
	h.pushed++
}

// Total returns the number of snapshots ever pushed. It keeps counting across
// eviction and Reset, so it works as a sequence cursor.
func (h *History) Total() uint64 {
	return h.pushed
}

// Since returns the retained snapshots pushed after cursor, oldest first, and
// whether some of them were already evicted.
func (h *History) Since(cursor uint64) ([]Circle, bool) {
	if cursor >= h.pushed {
		return nil, false
	}
	missing := h.pushed - cursor
	n := h.length
	truncated := missing > uint64(n)
	if !truncated {
		n = int(missing)
	}
	out := make([]Circle, 0, n)
	start := h.next - n
	if start < 0 {
		start += len(h.buffer)
	}
	for i := 0; i < n; i++ {
		idx := start + i
		if idx >= len(h.buffer) {
			idx -= len(h.buffer)
		}
		out = append(out, h.buffer[idx])
	}
	return out, truncated
}

func (h *History) Len() int {
	return h.length
}

func (h *History) Cap() int {
	return len(h.buffer)
}

// Snapshot returns the retained circles oldest first.
func (h *History) Snapshot() []Circle {
	if h.length == 0 {
		return []Circle{}
	}
	out, _ := h.Since(h.pushed - uint64(h.length))
	return out
}

// Reset drops every snapshot while keeping the capacity.
func (h *History) Reset() {
	clear(h.buffer)
	h.next = 0
	h.length = 0
}
