package match

const (
	// EngineVersion is the current version of the matching engine
	EngineVersion = "v1.0.0"

	// defaultRingSize is the number of slots in a Market's input ring buffer.
	// Must be a power of 2.
	defaultRingSize = 32768
)
