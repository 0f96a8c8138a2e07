package match

import (
	"github.com/huandu/skiplist"
	"github.com/shopspring/decimal"
)

// rankKey is the total order of a book side: price rank first, then sequence.
// Sequences are unique per engine, so no two resident orders share a key.
type rankKey struct {
	price decimal.Decimal
	seq   uint64
}

func compareSeq(a, b uint64) int {
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}

// bookSide holds the resting orders of one side.
// The front of depthList is always the best order on that side.
type bookSide struct {
	side      Side
	sequencer *Sequencer
	depthList *skiplist.SkipList
}

// newBuySide creates the bid side.
// The orders are sorted by price in descending order (highest price first), then by sequence.
func newBuySide(sequencer *Sequencer) *bookSide {
	return &bookSide{
		side:      Buy,
		sequencer: sequencer,
		depthList: skiplist.New(skiplist.GreaterThanFunc(func(lhs, rhs any) int {
			k1, _ := lhs.(rankKey)
			k2, _ := rhs.(rankKey)

			if c := k2.price.Cmp(k1.price); c != 0 {
				return c
			}
			return compareSeq(k1.seq, k2.seq)
		})),
	}
}

// newSellSide creates the ask side.
// The orders are sorted by price in ascending order (lowest price first), then by sequence.
func newSellSide(sequencer *Sequencer) *bookSide {
	return &bookSide{
		side:      Sell,
		sequencer: sequencer,
		depthList: skiplist.New(skiplist.GreaterThanFunc(func(lhs, rhs any) int {
			k1, _ := lhs.(rankKey)
			k2, _ := rhs.(rankKey)

			if c := k1.price.Cmp(k2.price); c != 0 {
				return c
			}
			return compareSeq(k1.seq, k2.seq)
		})),
	}
}

// insert stamps the order with a fresh sequence and adds it to the side.
func (s *bookSide) insert(order *Order) {
	order.Sequence = s.sequencer.Next()
	if order.initial == 0 {
		order.initial = order.Sequence
	}
	s.depthList.Set(rankKey{price: order.Price, seq: order.Sequence}, order)
}

// restore adds the order back under the sequence it already carries.
func (s *bookSide) restore(order *Order) {
	s.depthList.Set(rankKey{price: order.Price, seq: order.Sequence}, order)
}

// peekBest returns the best order without removing it, or nil when the side is empty.
func (s *bookSide) peekBest() *Order {
	el := s.depthList.Front()
	if el == nil {
		return nil
	}

	order, _ := el.Value.(*Order)
	return order
}

// popBest removes and returns the best order. Popping an empty side is a caller bug.
func (s *bookSide) popBest() *Order {
	el := s.depthList.Front()
	if el == nil {
		panic("match: pop from empty book side")
	}

	s.depthList.RemoveElement(el)
	order, _ := el.Value.(*Order)
	return order
}

func (s *bookSide) len() int {
	return s.depthList.Len()
}

func (s *bookSide) isEmpty() bool {
	return s.depthList.Len() == 0
}

// orders returns copies of every resting order in rank order.
func (s *bookSide) orders() []Order {
	result := make([]Order, 0, s.depthList.Len())

	for el := s.depthList.Front(); el != nil; el = el.Next() {
		order, _ := el.Value.(*Order)
		result = append(result, *order)
	}

	return result
}

// levelCount returns the number of distinct price levels.
func (s *bookSide) levelCount() int64 {
	var count int64
	var last decimal.Decimal

	for el := s.depthList.Front(); el != nil; el = el.Next() {
		order, _ := el.Value.(*Order)
		if count == 0 || !order.Price.Equal(last) {
			count++
			last = order.Price
		}
	}

	return count
}

// depth aggregates resting amounts per price level, best level first, up to limit levels.
func (s *bookSide) depth(limit uint32) []*DepthItem {
	result := make([]*DepthItem, 0, levelCap(limit, s.depthList.Len()))

	var current *DepthItem
	for el := s.depthList.Front(); el != nil; el = el.Next() {
		order, _ := el.Value.(*Order)

		if current == nil || !current.Price.Equal(order.Price) {
			if uint32(len(result)) == limit {
				break
			}
			current = &DepthItem{
				ID:    uint32(len(result)),
				Price: order.Price,
			}
			result = append(result, current)
		}

		current.Amount += order.Amount
		current.Count++
	}

	return result
}

// levelCap bounds a depth preallocation by what can actually be returned.
func levelCap(limit uint32, available int) int {
	if uint64(limit) < uint64(available) {
		return int(limit)
	}
	return available
}
