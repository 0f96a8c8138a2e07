package match

import "math"

// Sequencer issues the insertion counter used as the time tie-break key in a book side.
// It is owned by a single Engine and is not safe for concurrent use.
type Sequencer struct {
	last uint64
}

// NewSequencer creates a sequencer whose first Next returns start+1.
func NewSequencer(start uint64) *Sequencer {
	return &Sequencer{last: start}
}

// Next returns a strictly increasing value.
// It panics instead of wrapping, since a wrapped sequence would corrupt book ordering.
func (s *Sequencer) Next() uint64 {
	if s.last == math.MaxUint64 {
		panic("match: sequencer overflow")
	}
	s.last++
	return s.last
}

// Current returns the last issued value.
func (s *Sequencer) Current() uint64 {
	return s.last
}
