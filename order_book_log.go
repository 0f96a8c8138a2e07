package match

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// BookLog represents an event in the order book.
// SequenceID is an increasing ID for every event, used for ordering,
// deduplication, and rebuild synchronization in downstream systems.
//
//   - open: an accepted order entered its book side with Size = submitted amount.
//   - match: one side of a trade. Price is that order's limit level, ExecPrice the trade price.
//     Every trade emits two, buy side first.
//   - reject: the order never reached the book; it does not affect book state.
type BookLog struct {
	SequenceID       uint64          `json:"seq_id"`
	TradeID          uint64          `json:"trade_id,omitempty"` // Only set for Match events
	Type             LogType         `json:"type"`
	Pair             string          `json:"pair"`
	Side             Side            `json:"side"`
	Price            decimal.Decimal `json:"price"`
	ExecPrice        decimal.Decimal `json:"exec_price"` // Zero on open and reject events
	Size             int64           `json:"size"`
	OrderID          string          `json:"order_id"`
	AccountID        string          `json:"account_id"`
	CounterOrderID   string          `json:"counter_order_id,omitempty"`
	CounterAccountID string          `json:"counter_account_id,omitempty"`
	RejectReason     RejectReason    `json:"reject_reason,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

var bookLogPool = sync.Pool{
	New: func() any {
		return new(BookLog)
	},
}

func acquireBookLog() *BookLog {
	return bookLogPool.Get().(*BookLog)
}

func releaseBookLog(log *BookLog) {
	// For decimal.Decimal, the zero value (nil internal pointer) represents 0, which is valid.
	*log = BookLog{}
	bookLogPool.Put(log)
}

func newOpenLog(seqID uint64, order *Order, now time.Time) *BookLog {
	log := acquireBookLog()
	log.SequenceID = seqID
	log.Type = LogTypeOpen
	log.Pair = order.Pair
	log.Side = order.Side
	log.Price = order.Price
	log.Size = order.Amount
	log.OrderID = order.ID
	log.AccountID = order.AccountID
	log.CreatedAt = now
	return log
}

func newMatchLog(seqID uint64, trade *Trade, order *Order, counter *Order) *BookLog {
	log := acquireBookLog()
	log.SequenceID = seqID
	log.TradeID = trade.ID
	log.Type = LogTypeMatch
	log.Pair = order.Pair
	log.Side = order.Side
	log.Price = order.Price
	log.ExecPrice = trade.Price
	log.Size = trade.Amount
	log.OrderID = order.ID
	log.AccountID = order.AccountID
	log.CounterOrderID = counter.ID
	log.CounterAccountID = counter.AccountID
	log.CreatedAt = trade.CreatedAt
	return log
}

func newRejectLog(seqID uint64, pair string, orderID string, accountID string, reason RejectReason) *BookLog {
	log := acquireBookLog()
	log.SequenceID = seqID
	log.Type = LogTypeReject
	log.Pair = pair
	log.OrderID = orderID
	log.AccountID = accountID
	log.RejectReason = reason
	log.CreatedAt = time.Now().UTC()
	return log
}
