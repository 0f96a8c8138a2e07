package match

import (
	"time"

	"github.com/0x5487/auction-engine/protocol"
	"github.com/shopspring/decimal"
)

type Side = protocol.Side

const (
	Buy  Side = protocol.SideBuy
	Sell Side = protocol.SideSell
)

type LogType = protocol.LogType

const (
	LogTypeOpen   LogType = protocol.LogTypeOpen
	LogTypeMatch  LogType = protocol.LogTypeMatch
	LogTypeReject LogType = protocol.LogTypeReject
)

type RejectReason = protocol.RejectReason

// Order is a limit order for the engine's pair.
// Amount is the remaining amount; the matching loop decrements it in place.
type Order struct {
	ID        string          `json:"order_id"`
	AccountID string          `json:"account_id"`
	Pair      string          `json:"pair"`
	Side      Side            `json:"side"`
	Price     decimal.Decimal `json:"limit_price"`
	Amount    int64           `json:"amount"`
	Sequence  uint64          `json:"sequence"`  // Assigned on every insertion into a book side
	Timestamp int64           `json:"timestamp"` // Unix nano, submission time

	initial uint64 // first sequence, stable across reinsertions
	origin  int64  // submitted amount
}

// FilledAmount returns how much of the order has traded so far.
func (o *Order) FilledAmount() int64 {
	return o.origin - o.Amount
}

// Trade is an executed match. Buy and Sell are snapshots of both orders
// taken before the fill was applied.
type Trade struct {
	ID        uint64          `json:"trade_id"`
	Buy       Order           `json:"buy_order"`
	Sell      Order           `json:"sell_order"`
	Amount    int64           `json:"amount_traded"`
	Price     decimal.Decimal `json:"selling_price"`
	CreatedAt time.Time       `json:"created_at"`
}

// Notional returns Price * Amount.
func (t *Trade) Notional() decimal.Decimal {
	return t.Price.Mul(decimal.NewFromInt(t.Amount))
}

// OrderBookEntry is one side of a trade. Every trade produces two, buy first.
type OrderBookEntry struct {
	TradeID   uint64          `json:"trade_id"`
	OrderID   string          `json:"order_id"`
	Side      Side            `json:"side"`
	Amount    int64           `json:"amount"`
	Price     decimal.Decimal `json:"price"`
	AccountID string          `json:"account_id"`
}

type DepthItem struct {
	ID     uint32
	Price  decimal.Decimal
	Amount int64
	Count  int64
}

type Depth struct {
	UpdateID uint64       `json:"update_id"`
	Asks     []*DepthItem `json:"asks"`
	Bids     []*DepthItem `json:"bids"`
}

// Response converts the depth into its wire form, prices as strings.
func (d *Depth) Response() *protocol.GetDepthResponse {
	return &protocol.GetDepthResponse{
		UpdateID: d.UpdateID,
		Asks:     depthItemsResponse(d.Asks),
		Bids:     depthItemsResponse(d.Bids),
	}
}

func depthItemsResponse(items []*DepthItem) []*protocol.DepthItem {
	result := make([]*protocol.DepthItem, 0, len(items))
	for _, item := range items {
		result = append(result, &protocol.DepthItem{
			Price:  item.Price.String(),
			Amount: item.Amount,
			Count:  item.Count,
		})
	}
	return result
}

// BookStats contains statistics about the book sides and ledgers.
type BookStats struct {
	AskDepthCount int64
	AskOrderCount int64
	BidDepthCount int64
	BidOrderCount int64
	TradeCount    int64
}

func (s *BookStats) Response() *protocol.GetStatsResponse {
	return &protocol.GetStatsResponse{
		AskDepthCount: s.AskDepthCount,
		AskOrderCount: s.AskOrderCount,
		BidDepthCount: s.BidDepthCount,
		BidOrderCount: s.BidOrderCount,
		TradeCount:    s.TradeCount,
	}
}

// DepthChange represents a change in the order book depth.
type DepthChange struct {
	Side       Side
	Price      decimal.Decimal
	AmountDiff int64
}

// InputEvent is the internal wrapper for all events entering the Market goroutine.
type InputEvent struct {
	// Cmd is the external command carrier.
	Cmd *protocol.Command

	// Internal Query fields (Read Path)
	Query any // e.g. *protocol.GetDepthRequest
	Resp  chan any
}
