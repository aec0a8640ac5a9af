package simlog

// DefaultRingSize is the panel capacity used by the viewer.
const DefaultRingSize = 60

// Ring is a fixed-capacity buffer of the most recent entries.
type Ring struct {
	entries []Entry
	head    int
	count   int
}

// NewRing creates a ring holding at most size entries.
func NewRing(size int) *Ring {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Ring{entries: make([]Entry, size)}
}

// Push appends an entry, overwriting the oldest when full.
func (r *Ring) Push(e Entry) {
	size := len(r.entries)
	r.entries[r.head] = e
	r.head = (r.head + 1) % size
	if r.count < size {
		r.count++
	}
}

// Len returns the number of stored entries.
func (r *Ring) Len() int { return r.count }

// Recent returns entries in chronological order (oldest first).
func (r *Ring) Recent() []Entry {
	size := len(r.entries)
	out := make([]Entry, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.entries[(r.head-r.count+i+size)%size]
	}
	return out
}

// Last returns up to n of the newest entries, oldest first.
func (r *Ring) Last(n int) []Entry {
	all := r.Recent()
	if n >= len(all) {
		return all
	}
	return all[len(all)-n:]
}
