package geoindex

import "sync/atomic"

// occupancyBitmap is one bit per cell flagging "this cell has >= 1 profile"
// (spec.md §4.C). Writers set the bit with release ordering when inserting
// the first profile in a cell and clear it when removing the last; readers
// read with acquire ordering. Go's sync/atomic on uint64 words gives
// exactly this without a separate ordering parameter (Go's atomics are
// always acquire/release). A sparse-set structure such as a Roaring bitmap
// was considered and rejected: this is a dense, fixed-size grid needing
// single-bit flips under concurrent readers, not a sparse integer set, and
// Roaring's mutation path is not built for that access pattern (see
// DESIGN.md).
type occupancyBitmap struct {
	words []atomic.Uint64
	cols  int
}

func newOccupancyBitmap(width, height int) *occupancyBitmap {
	bits := width * height
	words := (bits + 63) / 64
	return &occupancyBitmap{
		words: make([]atomic.Uint64, words),
		cols:  width,
	}
}

func (b *occupancyBitmap) index(c Cell) (word int, bit uint) {
	pos := c.Y*b.cols + c.X
	return pos / 64, uint(pos % 64)
}

// Set flags c as occupied. Callers must insert into the profiles map before
// calling Set, per the publish order in spec.md §4.C.
func (b *occupancyBitmap) Set(c Cell) {
	word, bit := b.index(c)
	for {
		old := b.words[word].Load()
		next := old | (1 << bit)
		if next == old || b.words[word].CompareAndSwap(old, next) {
			return
		}
	}
}

// Clear flags c as empty. Callers must remove from the profiles map before
// calling Clear, per spec.md §4.C ("clear the bit last, after the map
// remove").
func (b *occupancyBitmap) Clear(c Cell) {
	word, bit := b.index(c)
	for {
		old := b.words[word].Load()
		next := old &^ (1 << bit)
		if next == old || b.words[word].CompareAndSwap(old, next) {
			return
		}
	}
}

// IsSet reports whether c is currently flagged occupied. A stale set bit
// merely costs a wasted lookup; a stale cleared bit cannot occur because of
// the publish order above (spec.md §4.C).
func (b *occupancyBitmap) IsSet(c Cell) bool {
	word, bit := b.index(c)
	return b.words[word].Load()&(1<<bit) != 0
}
