// Package dedupe maps idempotency keys to the job they first created.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

const defaultMaxSize = 10_000

// Deduper remembers which job an idempotency key produced.
type Deduper interface {
	// Claim atomically binds key to jobID unless key is already bound.
	// It returns the bound job id and whether the key was already held.
	Claim(ctx context.Context, key, jobID string) (string, bool)

	// Release forgets key so a later submission can claim it again. It is
	// used when the job bound to key could not be enqueued.
	Release(ctx context.Context, key string)

	Size() int64
}

// node is one entry of the insertion-ordered list.
type node struct {
	key   string
	jobID string
	prev  *node
	next  *node
}

func (n *node) reset() {
	*n = node{}
}

// inMemoryDeduper keeps keys in a map plus a doubly linked list ordered by
// insertion. Bounded mode (maxSize > 0) evicts the oldest key; unbounded
// mode never evicts.
type inMemoryDeduper struct {
	mu       sync.Mutex
	keys     map[string]*node
	head     *node // newest
	tail     *node // oldest
	maxSize  int
	size     atomic.Int64
	nodePool sync.Pool
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
		keys:    make(map[string]*node),
		nodePool: sync.Pool{
			New: func() interface{} { return &node{} },
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Claim implements Deduper.
func (d *inMemoryDeduper) Claim(_ context.Context, key, jobID string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if n, exists := d.keys[key]; exists {
		return n.jobID, true
	}

	if d.maxSize > 0 && len(d.keys) >= d.maxSize {
		d.evictOldest()
	}

	n := d.nodePool.Get().(*node)
	n.key = key
	n.jobID = jobID
	d.pushFront(n)
	d.keys[key] = n
	d.size.Add(1)
	return jobID, false
}

// Release implements Deduper.
func (d *inMemoryDeduper) Release(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n, exists := d.keys[key]
	if !exists {
		return
	}
	d.remove(n)
}

// Size returns the current number of held keys.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}

// pushFront links n as the newest entry. Must be called with d.mu held.
func (d *inMemoryDeduper) pushFront(n *node) {
	n.next = d.head
	if d.head != nil {
		d.head.prev = n
	}
	d.head = n
	if d.tail == nil {
		d.tail = n
	}
}

// evictOldest drops the tail entry. Must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	if d.tail != nil {
		d.remove(d.tail)
	}
}

// remove unlinks n, deletes its key and returns it to the pool.
// Must be called with d.mu held.
func (d *inMemoryDeduper) remove(n *node) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		d.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		d.tail = n.prev
	}
	delete(d.keys, n.key)
	n.reset()
	d.nodePool.Put(n)
	d.size.Add(-1)
}
