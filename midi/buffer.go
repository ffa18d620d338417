package midi

import "sort"

// Entry is a buffered payload and the position it is due at
type Entry[T any] struct {
	Position int64
	Value    T
}

// Buffer holds payloads ordered by position, ties in insertion order.
// Buffer is not safe for concurrent use; the owner guards it.
type Buffer[T any] struct {
	entries []Entry[T]
}

// NewBuffer creates an empty buffer
func NewBuffer[T any]() *Buffer[T] {
	return &Buffer[T]{}
}

// Insert adds v at position. Positions behind an already drained range are
// fine: the next Drain releases them. Negative positions are clamped to 0.
func (b *Buffer[T]) Insert(v T, position int64) {
	if position < 0 {
		position = 0
	}

	// first index with a greater position keeps equal positions in insertion order
	i := sort.Search(len(b.entries), func(i int) bool {
		return b.entries[i].Position > position
	})

	b.entries = append(b.entries, Entry[T]{})
	copy(b.entries[i+1:], b.entries[i:])
	b.entries[i] = Entry[T]{Position: position, Value: v}
}

// Drain removes and returns every entry due before to, in position order.
// Entries in [from, to) are the normal case; anything still retained below
// from was inserted late and is released too. If to <= from nothing happens.
func (b *Buffer[T]) Drain(from, to int64) []Entry[T] {
	if to <= from {
		return nil
	}

	n := sort.Search(len(b.entries), func(i int) bool {
		return b.entries[i].Position >= to
	})
	if n == 0 {
		return nil
	}

	out := make([]Entry[T], n)
	copy(out, b.entries[:n])

	// shift the remainder down so the backing array doesn't grow forever
	rest := copy(b.entries, b.entries[n:])
	clear(b.entries[rest:])
	b.entries = b.entries[:rest]

	return out
}

// Clear drops entries with position in [from, from+count) without returning them
func (b *Buffer[T]) Clear(from int64, count int64) {
	if count <= 0 {
		return
	}
	to := from + count

	lo := sort.Search(len(b.entries), func(i int) bool {
		return b.entries[i].Position >= from
	})
	hi := sort.Search(len(b.entries), func(i int) bool {
		return b.entries[i].Position >= to
	})
	if lo == hi {
		return
	}

	n := len(b.entries) - (hi - lo)
	copy(b.entries[lo:], b.entries[hi:])
	clear(b.entries[n:])
	b.entries = b.entries[:n]
}

// Len returns the number of buffered entries
func (b *Buffer[T]) Len() int {
	return len(b.entries)
}

// Peek returns the earliest position in the buffer
func (b *Buffer[T]) Peek() (position int64, ok bool) {
	if len(b.entries) == 0 {
		return 0, false
	}
	return b.entries[0].Position, true
}
