package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	match "github.com/0x5487/auction-engine"
	"github.com/0x5487/auction-engine/protocol"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublishLog(t *testing.T) {
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("engine events keyed by pair", func(t *testing.T) {
		w := &fakeWriter{}
		pub := NewKafkaPublishLog(nil, "book-logs", WithWriter(w), WithLogger(quiet))

		engine := match.NewEngine("BTC-USDT", match.WithPublishLog(pub))
		engine.Submit(&match.Order{ID: "b1", AccountID: "A", Pair: "BTC-USDT", Side: match.Buy, Price: decimal.NewFromInt(100), Amount: 10})
		engine.Submit(&match.Order{ID: "s1", AccountID: "B", Pair: "BTC-USDT", Side: match.Sell, Price: decimal.NewFromInt(100), Amount: 10})

		// open, open, match(buy), match(sell)
		require.Len(t, w.msgs, 4)
		for _, msg := range w.msgs {
			assert.Equal(t, "BTC-USDT", string(msg.Key))
		}

		var last match.BookLog
		require.NoError(t, json.Unmarshal(w.msgs[3].Value, &last))
		assert.Equal(t, match.LogTypeMatch, last.Type)
		assert.Equal(t, "s1", last.OrderID)
		assert.Equal(t, "b1", last.CounterOrderID)
		assert.Equal(t, uint64(4), last.SequenceID)
		assert.Equal(t, "100", last.ExecPrice.String())

		require.NoError(t, pub.Close())
		assert.True(t, w.closed)
	})

	t.Run("reject events are encoded", func(t *testing.T) {
		w := &fakeWriter{}
		pub := NewKafkaPublishLog(nil, "book-logs", WithWriter(w), WithLogger(quiet))

		engine := match.NewEngine("BTC-USDT", match.WithPublishLog(pub))
		engine.Reject("o1", "A", protocol.RejectReasonDuplicateID)

		require.Len(t, w.msgs, 1)
		var log match.BookLog
		require.NoError(t, json.Unmarshal(w.msgs[0].Value, &log))
		assert.Equal(t, match.LogTypeReject, log.Type)
		assert.Equal(t, protocol.RejectReasonDuplicateID, log.RejectReason)
		assert.Equal(t, "o1", log.OrderID)
	})

	t.Run("write failure does not panic", func(t *testing.T) {
		w := &fakeWriter{err: errors.New("broker down")}
		pub := NewKafkaPublishLog(nil, "book-logs", WithWriter(w), WithLogger(quiet))

		assert.NotPanics(t, func() {
			pub.Publish(&match.BookLog{SequenceID: 1, Type: match.LogTypeOpen, Pair: "BTC-USDT"})
		})
		assert.Empty(t, w.msgs)
	})

	t.Run("failures go to the default logger", func(t *testing.T) {
		var buf bytes.Buffer
		prev := slog.Default()
		slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
		defer slog.SetDefault(prev)

		w := &fakeWriter{err: errors.New("broker down")}
		pub := NewKafkaPublishLog(nil, "book-logs", WithWriter(w))
		pub.Publish(&match.BookLog{SequenceID: 9, Type: match.LogTypeOpen, Pair: "BTC-USDT"})

		assert.Contains(t, buf.String(), "failed to publish book logs")
		assert.Contains(t, buf.String(), "broker down")
	})

	t.Run("exec price is always encoded", func(t *testing.T) {
		w := &fakeWriter{}
		pub := NewKafkaPublishLog(nil, "book-logs", WithWriter(w), WithLogger(quiet))
		pub.Publish(&match.BookLog{SequenceID: 1, Type: match.LogTypeOpen, Pair: "BTC-USDT", Side: match.Buy})

		require.Len(t, w.msgs, 1)
		assert.Contains(t, string(w.msgs[0].Value), `"exec_price":"0"`)
	})

	t.Run("empty publish is a no-op", func(t *testing.T) {
		w := &fakeWriter{}
		pub := NewKafkaPublishLog(nil, "book-logs", WithWriter(w), WithLogger(quiet))
		pub.Publish()
		assert.Empty(t, w.msgs)
	})
}
