package protocol

import (
	"fmt"
	"strings"
)

// Side represents the order side (Buy/Sell).
// It is encoded as "BUY" / "SELL" on the wire.
type Side int8

const (
	SideBuy  Side = 1
	SideSell Side = 2
)

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "BUY"
	case SideSell:
		return "SELL"
	}
	return fmt.Sprintf("Side(%d)", int8(s))
}

// IsValid reports whether s is one of the two known sides.
func (s Side) IsValid() bool {
	return s == SideBuy || s == SideSell
}

// MarshalText implements encoding.TextMarshaler. The zero Side, carried by
// reject events, encodes as an empty string.
func (s Side) MarshalText() ([]byte, error) {
	if s == 0 {
		return []byte{}, nil
	}
	if !s.IsValid() {
		return nil, fmt.Errorf("protocol: invalid side %d", int8(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Matching is case-insensitive.
func (s *Side) UnmarshalText(text []byte) error {
	switch strings.ToUpper(string(text)) {
	case "":
		*s = 0
	case "BUY":
		*s = SideBuy
	case "SELL":
		*s = SideSell
	default:
		return fmt.Errorf("protocol: unknown side %q", string(text))
	}
	return nil
}

// LogType represents the type of event log.
type LogType string

const (
	LogTypeOpen   LogType = "open"
	LogTypeMatch  LogType = "match"
	LogTypeReject LogType = "reject"
)

// RejectReason represents the reason why an order was rejected.
type RejectReason string

const (
	RejectReasonNone           RejectReason = ""
	RejectReasonDuplicateID    RejectReason = "duplicate_order_id"
	RejectReasonInvalidPayload RejectReason = "invalid_payload"
	RejectReasonWrongPair      RejectReason = "wrong_pair"
)

type DepthItem struct {
	Price  string `json:"price"`
	Amount int64  `json:"amount"`
	Count  int64  `json:"count"`
}

// GetDepthResponse represents the state of the order book depth.
type GetDepthResponse struct {
	UpdateID uint64       `json:"update_id"`
	Asks     []*DepthItem `json:"asks"`
	Bids     []*DepthItem `json:"bids"`
}

// GetStatsResponse contains statistics about the book sides and ledgers.
type GetStatsResponse struct {
	AskDepthCount int64 `json:"ask_depth_count"`
	AskOrderCount int64 `json:"ask_order_count"`
	BidDepthCount int64 `json:"bid_depth_count"`
	BidOrderCount int64 `json:"bid_order_count"`
	TradeCount    int64 `json:"trade_count"`
}
