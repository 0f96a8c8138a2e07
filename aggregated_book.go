package match

import (
	"fmt"

	"github.com/igrmk/treemap/v2"
	"github.com/shopspring/decimal"
)

// AggregatedBook maintains a simplified view of the order book,
// tracking only price levels and their aggregated amounts (depth).
// It is designed for downstream services that need to rebuild
// order book state from BookLog events received via message queue.
//
// AggregatedBook is not safe for concurrent use.
type AggregatedBook struct {
	seqID uint64 // Last processed SequenceID for gap detection and deduplication
	ask   *treemap.TreeMap[decimal.Decimal, int64]
	bid   *treemap.TreeMap[decimal.Decimal, int64]
}

// NewAggregatedBook creates a new AggregatedBook instance with empty ask and bid sides.
func NewAggregatedBook() *AggregatedBook {
	return &AggregatedBook{
		ask: newAskLevels(),
		bid: newBidLevels(),
	}
}

// asks iterate lowest price first
func newAskLevels() *treemap.TreeMap[decimal.Decimal, int64] {
	return treemap.NewWithKeyCompare[decimal.Decimal, int64](func(a, b decimal.Decimal) bool {
		return a.LessThan(b)
	})
}

// bids iterate highest price first
func newBidLevels() *treemap.TreeMap[decimal.Decimal, int64] {
	return treemap.NewWithKeyCompare[decimal.Decimal, int64](func(a, b decimal.Decimal) bool {
		return a.GreaterThan(b)
	})
}

// SequenceID returns the last processed sequence ID.
// Used for synchronization and gap detection during rebuild.
func (ab *AggregatedBook) SequenceID() uint64 {
	return ab.seqID
}

// Replay applies a BookLog event to update the aggregated book state.
// Events already covered by SequenceID are skipped. A reject still advances the sequence.
// Returns ErrSequenceGap if events are missing between the last processed one and log.
func (ab *AggregatedBook) Replay(log *BookLog) error {
	if log.SequenceID <= ab.seqID {
		return nil
	}
	if log.SequenceID != ab.seqID+1 {
		return fmt.Errorf("%w: have %d, got %d", ErrSequenceGap, ab.seqID, log.SequenceID)
	}

	change := CalculateDepthChange(log)
	if change.AmountDiff != 0 {
		ab.apply(change)
	}

	ab.seqID = log.SequenceID
	return nil
}

// Rebuild resets the aggregated book to the given resting orders,
// as of event seqID. Replay continues from seqID+1.
func (ab *AggregatedBook) Rebuild(seqID uint64, orders []Order) {
	ab.ask = newAskLevels()
	ab.bid = newBidLevels()
	ab.seqID = seqID

	for _, order := range orders {
		ab.apply(DepthChange{Side: order.Side, Price: order.Price, AmountDiff: order.Amount})
	}
}

// Depth returns the aggregated amount at a specific price level for the given side.
// Returns zero if the price level does not exist.
func (ab *AggregatedBook) Depth(side Side, price decimal.Decimal) int64 {
	amount, _ := ab.levels(side).Get(price)
	return amount
}

// Levels returns up to limit price levels of one side, best first.
func (ab *AggregatedBook) Levels(side Side, limit uint32) []*DepthItem {
	levels := ab.levels(side)
	result := make([]*DepthItem, 0, levelCap(limit, levels.Len()))

	for it := levels.Iterator(); it.Valid() && uint32(len(result)) < limit; it.Next() {
		result = append(result, &DepthItem{
			ID:     uint32(len(result)),
			Price:  it.Key(),
			Amount: it.Value(),
		})
	}

	return result
}

func (ab *AggregatedBook) levels(side Side) *treemap.TreeMap[decimal.Decimal, int64] {
	if side == Buy {
		return ab.bid
	}
	return ab.ask
}

func (ab *AggregatedBook) apply(change DepthChange) {
	levels := ab.levels(change.Side)

	amount, _ := levels.Get(change.Price)
	amount += change.AmountDiff

	if amount <= 0 {
		levels.Del(change.Price)
		return
	}
	levels.Set(change.Price, amount)
}
