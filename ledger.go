package match

// TradeLedger is the append-only, chronological record of executed trades.
type TradeLedger struct {
	trades []Trade
}

func (l *TradeLedger) append(trade Trade) {
	l.trades = append(l.trades, trade)
}

// Len returns the number of recorded trades.
func (l *TradeLedger) Len() int {
	return len(l.trades)
}

// Trades returns a copy of the ledger.
func (l *TradeLedger) Trades() []Trade {
	result := make([]Trade, len(l.trades))
	copy(result, l.trades)
	return result
}

// OrderBookLedger is the append-only, chronological record of per-side fill entries.
type OrderBookLedger struct {
	entries []OrderBookEntry
}

func (l *OrderBookLedger) append(entries ...OrderBookEntry) {
	l.entries = append(l.entries, entries...)
}

// Len returns the number of recorded entries.
func (l *OrderBookLedger) Len() int {
	return len(l.entries)
}

// Entries returns a copy of the ledger.
func (l *OrderBookLedger) Entries() []OrderBookEntry {
	result := make([]OrderBookEntry, len(l.entries))
	copy(result, l.entries)
	return result
}
