package match

import (
	"fmt"
	"time"
)

// RequeuePolicy decides which sequence an order carries when the matching loop
// puts it back into its book side (partial-fill remainder, parked self-trade
// candidate, or a best order that no longer crosses).
type RequeuePolicy uint8

const (
	// RequeueFreshSequence stamps a new sequence on every reinsertion. A requeued
	// order therefore loses time priority to orders that arrived at the same price
	// after it. This is the default.
	RequeueFreshSequence RequeuePolicy = iota
	// RequeueKeepSequence keeps the sequence the order already has, giving
	// standard price-time priority to partially filled remainders.
	RequeueKeepSequence
)

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithRequeuePolicy sets how reinserted orders are sequenced.
func WithRequeuePolicy(policy RequeuePolicy) EngineOption {
	return func(e *Engine) {
		e.policy = policy
	}
}

// WithPublishLog sets where book events go. Defaults to DiscardPublishLog.
func WithPublishLog(publisher PublishLog) EngineOption {
	return func(e *Engine) {
		if publisher != nil {
			e.publisher = publisher
		}
	}
}

// Engine is the matching authority for a single pair. It owns both book sides,
// both ledgers and the sequencer.
//
// Engine is synchronous and does no locking: every call must come from one
// logical thread of control. Use Market to share an engine between goroutines.
type Engine struct {
	pair      string
	policy    RequeuePolicy
	sequencer *Sequencer
	bids      *bookSide
	asks      *bookSide
	trades    TradeLedger
	entries   OrderBookLedger
	accounts  *accountIndex
	orderIDs  map[string]struct{}
	seqID     uint64 // last BookLog sequence
	tradeID   uint64
	publisher PublishLog
}

// NewEngine creates an engine for pair.
func NewEngine(pair string, opts ...EngineOption) *Engine {
	sequencer := NewSequencer(0)

	e := &Engine{
		pair:      pair,
		policy:    RequeueFreshSequence,
		sequencer: sequencer,
		bids:      newBuySide(sequencer),
		asks:      newSellSide(sequencer),
		accounts:  newAccountIndex(),
		orderIDs:  make(map[string]struct{}),
		publisher: NewDiscardPublishLog(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Pair returns the instrument this engine matches.
func (e *Engine) Pair() string {
	return e.pair
}

// Validate reports whether order satisfies Submit's contract.
// The returned error wraps ErrInvalidOrder.
func (e *Engine) Validate(order *Order) error {
	switch {
	case order == nil:
		return fmt.Errorf("%w: nil order", ErrInvalidOrder)
	case len(order.ID) == 0:
		return fmt.Errorf("%w: empty order id", ErrInvalidOrder)
	case len(order.AccountID) == 0:
		return fmt.Errorf("%w: empty account id", ErrInvalidOrder)
	case order.Pair != e.pair:
		return fmt.Errorf("%w: pair %q, engine matches %q", ErrInvalidOrder, order.Pair, e.pair)
	case !order.Side.IsValid():
		return fmt.Errorf("%w: side %d", ErrInvalidOrder, order.Side)
	case order.Amount <= 0:
		return fmt.Errorf("%w: amount %d", ErrInvalidOrder, order.Amount)
	case order.Price.Sign() <= 0:
		return fmt.Errorf("%w: price %s", ErrInvalidOrder, order.Price.String())
	}
	return nil
}

// Submit inserts order into its book side and runs the matching loop to completion.
// The engine takes ownership of order and mutates its Amount and Sequence.
//
// Submit panics if order fails Validate: callers validate first.
func (e *Engine) Submit(order *Order) {
	if err := e.Validate(order); err != nil {
		panic(err)
	}

	now := time.Now().UTC()
	if order.Timestamp == 0 {
		order.Timestamp = now.UnixNano()
	}
	order.origin = order.Amount
	order.initial = 0

	e.side(order.Side).insert(order)
	e.orderIDs[order.ID] = struct{}{}
	e.accounts.add(order)

	logs := make([]*BookLog, 0, 4)
	logs = append(logs, newOpenLog(e.nextSeqID(), order, now))
	logs = e.match(logs)

	e.publish(logs)
}

// Contains reports whether an order with this ID was ever submitted.
func (e *Engine) Contains(orderID string) bool {
	_, ok := e.orderIDs[orderID]
	return ok
}

// Trades returns the full trade ledger, oldest first.
func (e *Engine) Trades() []Trade {
	return e.trades.Trades()
}

// OrderBook returns every fill entry, oldest first.
func (e *Engine) OrderBook() []OrderBookEntry {
	return e.entries.Entries()
}

// Pending returns the resting orders of accountID in arrival order.
func (e *Engine) Pending(accountID string) []Order {
	return e.accounts.pending(accountID)
}

// PendingByAccount returns resting orders grouped by account.
// Every account that ever submitted has a key, possibly with an empty slice.
func (e *Engine) PendingByAccount() map[string][]Order {
	return e.accounts.all()
}

// Bids returns the resting buy orders, best first.
func (e *Engine) Bids() []Order {
	return e.bids.orders()
}

// Asks returns the resting sell orders, best first.
func (e *Engine) Asks() []Order {
	return e.asks.orders()
}

// Depth returns up to limit aggregated price levels per side.
func (e *Engine) Depth(limit uint32) *Depth {
	return &Depth{
		UpdateID: e.seqID,
		Asks:     e.asks.depth(limit),
		Bids:     e.bids.depth(limit),
	}
}

// Stats returns counts of resting orders, price levels and trades.
func (e *Engine) Stats() *BookStats {
	return &BookStats{
		AskDepthCount: e.asks.levelCount(),
		AskOrderCount: int64(e.asks.len()),
		BidDepthCount: e.bids.levelCount(),
		BidOrderCount: int64(e.bids.len()),
		TradeCount:    int64(e.trades.Len()),
	}
}

// SequenceID returns the sequence of the last BookLog the engine produced.
func (e *Engine) SequenceID() uint64 {
	return e.seqID
}

// Reject publishes a reject event for an order that never reached the book.
func (e *Engine) Reject(orderID string, accountID string, reason RejectReason) {
	logger.Warn("order rejected", "pair", e.pair, "order_id", orderID, "account_id", accountID, "reason", reason)
	e.publish([]*BookLog{newRejectLog(e.nextSeqID(), e.pair, orderID, accountID, reason)})
}

func (e *Engine) side(side Side) *bookSide {
	if side == Buy {
		return e.bids
	}
	return e.asks
}

func (e *Engine) nextSeqID() uint64 {
	e.seqID++
	return e.seqID
}

func (e *Engine) publish(logs []*BookLog) {
	if len(logs) == 0 {
		return
	}

	e.publisher.Publish(logs...)

	for _, log := range logs {
		releaseBookLog(log)
	}
}
