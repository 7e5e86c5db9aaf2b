// Package dedupe tracks dedup keys so each event is kept at most once.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen dedup keys. The aggregator walks events in the
// fixed source order and drops every key it has already seen, which is
// what makes cross-source dedup first-seen-wins.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if
	// not. Returns true if key was already seen, false if it was newly
	// recorded. This is the ONLY method for deduplication.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord removes a key, allowing it to be recorded again. Used
	// when a recorded event is later rejected and its slot should
	// reopen for a duplicate from a lower-priority source.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// node is a single entry in the eviction list.
type node struct {
	key  string
	next *node
}

func (n *node) reset() {
	n.key = ""
	n.next = nil
}

// inMemoryDeduper implements Deduper with an optional bound.
// Unbounded mode (maxSize <= 0, the default) is a plain map: a publish
// cycle must never evict a key, or the uniqueness invariant breaks.
// Bounded mode keeps a linked list with LIFO eviction for long-running
// callers that only need recent-key suppression.
type inMemoryDeduper struct {
	mu       sync.RWMutex
	seen     map[string]*node // key -> node for bounded mode, nil values when unbounded
	head     *node            // most recently added
	maxSize  int
	size     atomic.Int64
	nodePool sync.Pool
}

// New creates a deduper. Without options it is unbounded, which is the
// right mode for a single publish cycle.
func New(opts ...Option) Deduper {
	d := &inMemoryDeduper{}

	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]*node)

	if d.maxSize > 0 {
		d.nodePool = sync.Pool{
			New: func() interface{} {
				return &node{}
			},
		}
	}

	return d
}

// SeenAndRecord atomically checks if key was seen and records it if not.
func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[key]; exists {
		return true
	}

	if d.maxSize > 0 {
		if len(d.seen) >= d.maxSize {
			d.evictLIFO()
		}

		n := d.nodePool.Get().(*node)
		n.key = key
		n.next = d.head

		d.head = n
		d.seen[key] = n
	} else {
		d.seen[key] = nil
	}
	d.size.Add(1)
	return false
}

// Unrecord removes a key so it can be recorded again.
func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n, exists := d.seen[key]
	if !exists {
		return
	}
	delete(d.seen, key)
	d.size.Add(-1)

	if d.maxSize <= 0 {
		return
	}

	if d.head == n {
		d.head = n.next
	} else {
		current := d.head
		for current != nil && current.next != n {
			current = current.next
		}
		if current != nil {
			current.next = n.next
		}
	}

	n.reset()
	d.nodePool.Put(n)
}

// evictLIFO removes the oldest entry (tail of list).
// Must be called with d.mu.Lock() held.
func (d *inMemoryDeduper) evictLIFO() {
	if len(d.seen) == 0 || d.head == nil {
		return
	}

	if d.head.next == nil {
		delete(d.seen, d.head.key)
		d.head.reset()
		d.nodePool.Put(d.head)
		d.head = nil
		d.size.Add(-1)
		return
	}

	var prev *node
	current := d.head
	for current.next != nil {
		prev = current
		current = current.next
	}

	prev.next = nil
	delete(d.seen, current.key)
	current.reset()
	d.nodePool.Put(current)
	d.size.Add(-1)
}

// Size returns the current number of recorded keys.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
