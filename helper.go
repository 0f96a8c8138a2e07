package match

// CalculateDepthChange calculates the depth change based on the book log.
// It returns a DepthChange struct indicating which side and price level should be updated.
// A match log names the level of the order it describes, so each of the two
// match logs of a trade reduces its own side.
func CalculateDepthChange(log *BookLog) DepthChange {
	switch log.Type {
	case LogTypeOpen:
		return DepthChange{
			Side:       log.Side,
			Price:      log.Price,
			AmountDiff: log.Size,
		}
	case LogTypeMatch:
		return DepthChange{
			Side:       log.Side,
			Price:      log.Price,
			AmountDiff: -log.Size,
		}
	case LogTypeReject:
		// Rejected orders never entered the book, so no depth change.
		return DepthChange{}
	}

	return DepthChange{}
}
