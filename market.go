package match

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/0x5487/auction-engine/protocol"
	"github.com/shopspring/decimal"
)

// MarketOption configures a Market.
type MarketOption func(*Market)

// WithSerializer sets the payload codec. Defaults to protocol.DefaultJSONSerializer.
func WithSerializer(serializer protocol.Serializer) MarketOption {
	return func(m *Market) {
		m.serializer = serializer
	}
}

// WithEngineOptions passes options through to the underlying Engine.
func WithEngineOptions(opts ...EngineOption) MarketOption {
	return func(m *Market) {
		m.engineOpts = append(m.engineOpts, opts...)
	}
}

// WithRingSize sets the input ring capacity (a power of 2).
func WithRingSize(size int64) MarketOption {
	return func(m *Market) {
		m.ringSize = size
	}
}

// WithQueryTimeout bounds how long a query waits for the matching goroutine.
func WithQueryTimeout(timeout time.Duration) MarketOption {
	return func(m *Market) {
		m.queryTimeout = timeout
	}
}

// Market exposes one Engine to concurrent callers. Commands and queries are
// funneled through a ring buffer into a single goroutine that owns the engine,
// so a query always observes every command enqueued before it.
//
// Market is also the validation layer in front of the engine: malformed
// orders are refused with ErrInvalidParam, and an order ID that was already
// accepted is rejected with a reject event.
type Market struct {
	pair         string
	engine       *Engine
	engineOpts   []EngineOption
	ring         *RingBuffer[*InputEvent]
	ringSize     int64
	serializer   protocol.Serializer
	queryTimeout time.Duration
	isShutdown   atomic.Bool
	lastCmdSeqID atomic.Uint64
}

// NewMarket creates a market for pair. Call Start before use.
func NewMarket(pair string, publisher PublishLog, opts ...MarketOption) *Market {
	m := &Market{
		pair:         pair,
		ringSize:     defaultRingSize,
		serializer:   &protocol.DefaultJSONSerializer{},
		queryTimeout: time.Second,
	}

	for _, opt := range opts {
		opt(m)
	}

	engineOpts := append([]EngineOption{WithPublishLog(publisher)}, m.engineOpts...)
	m.engine = NewEngine(pair, engineOpts...)
	m.ring = NewRingBuffer[*InputEvent](m.ringSize, m)

	return m
}

// Pair returns the instrument of this market.
func (m *Market) Pair() string {
	return m.pair
}

// Start starts the matching goroutine.
func (m *Market) Start() {
	m.ring.Start()
}

// Shutdown stops accepting commands and waits until every queued event is processed
// or ctx is done.
func (m *Market) Shutdown(ctx context.Context) error {
	m.isShutdown.Store(true)
	return m.ring.Shutdown(ctx)
}

// LastCmdSeqID returns the sequence ID of the last processed command.
// Hosts consuming commands from a message queue resume after it.
func (m *Market) LastCmdSeqID() uint64 {
	return m.lastCmdSeqID.Load()
}

// PlaceOrder validates cmd and enqueues it for matching.
// It returns once the order is queued, not once it is matched.
func (m *Market) PlaceOrder(ctx context.Context, cmd *protocol.PlaceOrderCommand) error {
	if m.isShutdown.Load() {
		return ErrShutdown
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := m.toOrder(cmd); err != nil {
		return err
	}

	bytes, err := m.serializer.Marshal(cmd)
	if err != nil {
		return err
	}

	return m.EnqueueCommand(&protocol.Command{
		Pair:    m.pair,
		Type:    protocol.CmdPlaceOrder,
		Payload: bytes,
	})
}

// EnqueueCommand queues a raw command envelope. The payload is decoded and
// validated on the matching goroutine; failures become reject events.
func (m *Market) EnqueueCommand(cmd *protocol.Command) error {
	if m.isShutdown.Load() {
		return ErrShutdown
	}
	if cmd == nil {
		return fmt.Errorf("%w: nil command", ErrInvalidParam)
	}
	if cmd.Pair != m.pair {
		return fmt.Errorf("%w: command for pair %q sent to %q", ErrInvalidParam, cmd.Pair, m.pair)
	}

	if !m.ring.Publish(&InputEvent{Cmd: cmd}) {
		return ErrShutdown
	}
	return nil
}

// Trades returns the full trade ledger.
func (m *Market) Trades(ctx context.Context) ([]Trade, error) {
	res, err := m.query(ctx, &protocol.GetTradesRequest{Pair: m.pair})
	if err != nil {
		return nil, err
	}
	trades, _ := res.([]Trade)
	return trades, nil
}

// OrderBook returns the full fill-entry ledger.
func (m *Market) OrderBook(ctx context.Context) ([]OrderBookEntry, error) {
	res, err := m.query(ctx, &protocol.GetOrderBookRequest{Pair: m.pair})
	if err != nil {
		return nil, err
	}
	entries, _ := res.([]OrderBookEntry)
	return entries, nil
}

// PendingOrders returns the resting orders of one account.
func (m *Market) PendingOrders(ctx context.Context, accountID string) ([]Order, error) {
	if len(accountID) == 0 {
		return nil, fmt.Errorf("%w: empty account id", ErrInvalidParam)
	}

	res, err := m.query(ctx, &protocol.GetPendingOrdersRequest{Pair: m.pair, AccountID: accountID})
	if err != nil {
		return nil, err
	}
	orders, _ := res.([]Order)
	return orders, nil
}

// AllPendingOrders returns resting orders grouped by every account seen so far.
func (m *Market) AllPendingOrders(ctx context.Context) (map[string][]Order, error) {
	res, err := m.query(ctx, &protocol.GetPendingOrdersRequest{Pair: m.pair})
	if err != nil {
		return nil, err
	}
	orders, _ := res.(map[string][]Order)
	return orders, nil
}

// Depth returns the current depth of the order book up to the specified limit.
func (m *Market) Depth(ctx context.Context, limit uint32) (*Depth, error) {
	if limit == 0 {
		return nil, fmt.Errorf("%w: zero depth limit", ErrInvalidParam)
	}

	res, err := m.query(ctx, &protocol.GetDepthRequest{Pair: m.pair, Limit: limit})
	if err != nil {
		return nil, err
	}
	depth, _ := res.(*Depth)
	return depth, nil
}

// Stats returns usage statistics for the order book.
func (m *Market) Stats(ctx context.Context) (*BookStats, error) {
	res, err := m.query(ctx, &protocol.GetStatsRequest{Pair: m.pair})
	if err != nil {
		return nil, err
	}
	stats, _ := res.(*BookStats)
	return stats, nil
}

// OnEvent runs on the matching goroutine.
func (m *Market) OnEvent(ev *InputEvent) {
	if ev.Cmd != nil {
		m.handleCommand(ev.Cmd)
		if ev.Cmd.SeqID > 0 {
			m.lastCmdSeqID.Store(ev.Cmd.SeqID)
		}
		return
	}

	if ev.Query != nil && ev.Resp != nil {
		result := m.handleQuery(ev.Query)
		select {
		case ev.Resp <- result:
		default:
			// nobody is listening any more
		}
	}
}

func (m *Market) handleCommand(cmd *protocol.Command) {
	switch cmd.Type {
	case protocol.CmdPlaceOrder:
		payload := &protocol.PlaceOrderCommand{}
		if err := m.serializer.Unmarshal(cmd.Payload, payload); err != nil {
			logger.Error("failed to unmarshal PlaceOrder command", "pair", m.pair, "error", err)
			m.engine.Reject("", "", protocol.RejectReasonInvalidPayload)
			return
		}

		order, err := m.toOrder(payload)
		if err != nil {
			reason := protocol.RejectReasonInvalidPayload
			if payload.Pair != m.pair {
				reason = protocol.RejectReasonWrongPair
			}
			m.engine.Reject(payload.OrderID, payload.AccountID, reason)
			return
		}

		if m.engine.Contains(order.ID) {
			m.engine.Reject(order.ID, order.AccountID, protocol.RejectReasonDuplicateID)
			return
		}

		m.engine.Submit(order)
	default:
		logger.Warn("unknown command type", "pair", m.pair, "type", cmd.Type)
	}
}

func (m *Market) handleQuery(query any) any {
	switch q := query.(type) {
	case *protocol.GetTradesRequest:
		return m.engine.Trades()
	case *protocol.GetOrderBookRequest:
		return m.engine.OrderBook()
	case *protocol.GetPendingOrdersRequest:
		if len(q.AccountID) == 0 {
			return m.engine.PendingByAccount()
		}
		return m.engine.Pending(q.AccountID)
	case *protocol.GetDepthRequest:
		return m.engine.Depth(q.Limit)
	case *protocol.GetStatsRequest:
		return m.engine.Stats()
	}
	return nil
}

func (m *Market) query(ctx context.Context, query any) (any, error) {
	if m.isShutdown.Load() {
		return nil, ErrShutdown
	}

	resp := make(chan any, 1)
	if !m.ring.Publish(&InputEvent{Query: query, Resp: resp}) {
		return nil, ErrShutdown
	}

	timer := time.NewTimer(m.queryTimeout)
	defer timer.Stop()

	select {
	case res := <-resp:
		return res, nil
	case <-ctx.Done():
		return nil, ErrTimeout
	case <-timer.C:
		return nil, ErrTimeout
	}
}

// toOrder checks a place-order payload and converts it into an engine order.
func (m *Market) toOrder(cmd *protocol.PlaceOrderCommand) (*Order, error) {
	if cmd == nil {
		return nil, fmt.Errorf("%w: nil order", ErrInvalidParam)
	}

	switch {
	case len(cmd.OrderID) == 0:
		return nil, fmt.Errorf("%w: empty order id", ErrInvalidParam)
	case len(cmd.AccountID) == 0:
		return nil, fmt.Errorf("%w: empty account id", ErrInvalidParam)
	case cmd.Pair != m.pair:
		return nil, fmt.Errorf("%w: pair %q, market is %q", ErrInvalidParam, cmd.Pair, m.pair)
	case !cmd.Side.IsValid():
		return nil, fmt.Errorf("%w: side %d", ErrInvalidParam, cmd.Side)
	case cmd.Amount <= 0:
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidParam)
	}

	price, err := decimal.NewFromString(cmd.Price)
	if err != nil {
		return nil, fmt.Errorf("%w: price %q: %v", ErrInvalidParam, cmd.Price, err)
	}
	if price.Sign() <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", ErrInvalidParam)
	}

	order := &Order{
		ID:        cmd.OrderID,
		AccountID: cmd.AccountID,
		Pair:      cmd.Pair,
		Side:      cmd.Side,
		Price:     price,
		Amount:    cmd.Amount,
		Timestamp: cmd.Timestamp,
	}

	if err := m.engine.Validate(order); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParam, err)
	}

	return order, nil
}
