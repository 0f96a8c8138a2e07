package protocol

// CommandType defines the type of the command (using uint8 for memory alignment and performance)
type CommandType uint8

const (
	CmdUnknown    CommandType = 0
	CmdPlaceOrder CommandType = 51
)

// Command is the standard carrier for commands entering a Market.
// It is designed to be cheap to route and compatible with event sourcing.
type Command struct {
	// Version is the protocol version for backward compatibility.
	Version uint8 `json:"version"`

	// Pair is the instrument this command targets (routing header).
	Pair string `json:"pair"`

	// SeqID is used for global ordering and deduplication.
	SeqID uint64 `json:"seq_id"`

	// Type identifies the payload type for fast routing.
	Type CommandType `json:"type"`

	// Payload contains the serialized business data (e.g., JSON bytes of PlaceOrderCommand).
	// Deserialization is deferred until the command reaches the matching goroutine.
	Payload []byte `json:"payload"`

	// Metadata stores non-business context (e.g., Tracing ID, Source IP).
	Metadata map[string]string `json:"metadata,omitempty"`
}

// PlaceOrderCommand is the payload for placing a new limit order.
type PlaceOrderCommand struct {
	OrderID   string `json:"order_id"`
	AccountID string `json:"account_id"`
	Pair      string `json:"pair"`
	Side      Side   `json:"side"`
	Price     string `json:"price"` // Using string to prevent precision loss in JSON
	Amount    int64  `json:"amount"`
	Timestamp int64  `json:"timestamp"`
}

// GetDepthRequest is the payload for querying order book depth.
type GetDepthRequest struct {
	Pair  string `json:"pair"`
	Limit uint32 `json:"limit"`
}

// GetStatsRequest is the payload for querying order book statistics.
type GetStatsRequest struct {
	Pair string `json:"pair"`
}

// GetTradesRequest asks for the full trade ledger.
type GetTradesRequest struct {
	Pair string `json:"pair"`
}

// GetOrderBookRequest asks for the full fill-entry ledger.
type GetOrderBookRequest struct {
	Pair string `json:"pair"`
}

// GetPendingOrdersRequest asks for resting orders.
// An empty AccountID means every known account.
type GetPendingOrdersRequest struct {
	Pair      string `json:"pair"`
	AccountID string `json:"account_id,omitempty"`
}
