package match

import "sync"

// PublishLog receives every BookLog the engine emits, in sequence order.
//
// Publish is called on the matching goroutine and the engine returns the logs
// to a pool once it returns. Implementations that keep or forward logs
// asynchronously must copy them first.
type PublishLog interface {
	Publish(...*BookLog)
}

// MemoryPublishLog keeps copies of every published log. Used by tests and by
// hosts that replay events into an AggregatedBook in process.
type MemoryPublishLog struct {
	mu   sync.RWMutex
	logs []*BookLog
}

func NewMemoryPublishLog() *MemoryPublishLog {
	return &MemoryPublishLog{}
}

func (m *MemoryPublishLog) Publish(logs ...*BookLog) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, log := range logs {
		cpy := *log
		m.logs = append(m.logs, &cpy)
	}
}

// Count returns the number of stored logs.
func (m *MemoryPublishLog) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.logs)
}

// Get returns the index-th stored log. It panics when index is out of range.
func (m *MemoryPublishLog) Get(index int) *BookLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.logs[index]
}

// Logs returns every stored log in publish order.
func (m *MemoryPublishLog) Logs() []*BookLog {
	m.mu.RLock()
	defer m.mu.RUnlock()

	logs := make([]*BookLog, len(m.logs))
	copy(logs, m.logs)
	return logs
}

// ByType returns the stored logs of one type in publish order.
func (m *MemoryPublishLog) ByType(logType LogType) []*BookLog {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*BookLog, 0)
	for _, log := range m.logs {
		if log.Type == logType {
			result = append(result, log)
		}
	}
	return result
}

// DiscardPublishLog drops every log. Used by benchmarks.
type DiscardPublishLog struct{}

func NewDiscardPublishLog() *DiscardPublishLog {
	return &DiscardPublishLog{}
}

func (p *DiscardPublishLog) Publish(logs ...*BookLog) {}

// MultiPublishLog fans every batch out to several publishers, in order.
type MultiPublishLog []PublishLog

func (m MultiPublishLog) Publish(logs ...*BookLog) {
	for _, p := range m {
		p.Publish(logs...)
	}
}
