package registry

import (
	"github.com/huandu/skiplist"
	"github.com/segmentio/ksuid"
)

// NewByKey creates a registry that enumerates its buckets
// in ascending key order.
func NewByKey() *Registry {
	return newRegistry(skiplist.Int64, func(r *Registry, key int64) any {
		return key
	})
}

// NewByInsertion creates a registry that enumerates its buckets
// in the order in which each key was first registered.
func NewByInsertion() *Registry {
	return newRegistry(skiplist.Uint64, func(r *Registry, key int64) any {
		r.seq++
		return r.seq
	})
}

func newRegistry(
	keys skiplist.Comparable,
	order func(*Registry, int64) any,
) *Registry {
	return &Registry{
		keys:  keys,
		order: order,
		l:     skiplist.New(keys),
		index: make(map[int64]*bucket),
	}
}

// Registry maps integer keys to ordered sequences of handlers.
// Buckets are created lazily on first registration of a key.
// Registry is not safe for concurrent use.
type Registry struct {
	keys  skiplist.Comparable
	order func(*Registry, int64) any
	l     *skiplist.SkipList
	index map[int64]*bucket
	seq   uint64
	len   int
}

// Add appends fn to the bucket of key and returns the new entry.
func (r *Registry) Add(key int64, fn func(int64)) Entry {
	b, ok := r.index[key]
	if !ok {
		b = &bucket{key: key}
		r.index[key] = b
		r.l.Set(r.order(r, key), b)
	}
	e := Entry{ID: ksuid.New(), Key: key, Fn: fn}
	b.entries = append(b.entries, e)
	r.len++
	return e
}

// Get returns a copy of the entries registered for key
// in registration order. Returns nil if key has no bucket.
func (r *Registry) Get(key int64) []Entry {
	b, ok := r.index[key]
	if !ok {
		return nil
	}
	return append([]Entry(nil), b.entries...)
}

// Match appends the entries of all buckets whose key satisfies fn
// to dst in enumeration order and returns the extended slice.
func (r *Registry) Match(dst []Entry, fn func(key int64) bool) []Entry {
	for e := r.l.Front(); e != nil; e = e.Next() {
		b := e.Value.(*bucket)
		if fn(b.key) {
			dst = append(dst, b.entries...)
		}
	}
	return dst
}

// Scan calls fn for every entry in enumeration order
// until either the end of the registry is reached or fn returns false.
// Returns false if fn interrupted the scan.
func (r *Registry) Scan(fn func(Entry) bool) (completed bool) {
	for e := r.l.Front(); e != nil; e = e.Next() {
		for _, x := range e.Value.(*bucket).entries {
			if !fn(x) {
				return false
			}
		}
	}
	return true
}

// Len returns the total number of entries across all buckets.
func (r *Registry) Len() int { return r.len }

// Keys returns the number of buckets.
func (r *Registry) Keys() int { return r.l.Len() }

// Clear discards all buckets and entries.
func (r *Registry) Clear() {
	r.l = skiplist.New(r.keys)
	r.index = make(map[int64]*bucket)
	r.seq, r.len = 0, 0
}

// Entry is a single registered handler.
type Entry struct {
	ID  ksuid.KSUID
	Key int64
	Fn  func(int64)
}

// bucket holds the entries of one key in registration order.
type bucket struct {
	key     int64
	entries []Entry
}
