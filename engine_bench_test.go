package match

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/0x5487/auction-engine/protocol"
	"github.com/rs/xid"
	"github.com/shopspring/decimal"
)

func BenchmarkEngineSubmitResting(b *testing.B) {
	engine := NewEngine(testPair, WithPublishLog(NewDiscardPublishLog()))
	rnd := rand.New(rand.NewSource(1))

	orders := make([]*Order, b.N)
	for i := range orders {
		orders[i] = &Order{
			ID:        xid.New().String(),
			AccountID: "A",
			Pair:      testPair,
			Side:      Buy,
			Price:     decimal.NewFromInt(rnd.Int63n(100000) + 1),
			Amount:    1,
		}
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.Submit(orders[i])
	}
	b.StopTimer()

	stats := engine.Stats()
	b.Logf("order count: %d", stats.BidOrderCount)
	b.Logf("depth count: %d", stats.BidDepthCount)
}

func BenchmarkEngineSubmitCrossing(b *testing.B) {
	for _, policy := range []RequeuePolicy{RequeueFreshSequence, RequeueKeepSequence} {
		b.Run(fmt.Sprintf("policy-%d", policy), func(b *testing.B) {
			engine := NewEngine(testPair, WithRequeuePolicy(policy), WithPublishLog(NewDiscardPublishLog()))
			rnd := rand.New(rand.NewSource(1))

			orders := make([]*Order, b.N)
			for i := range orders {
				side := Buy
				if rnd.Intn(2) == 0 {
					side = Sell
				}
				orders[i] = &Order{
					ID:        xid.New().String(),
					AccountID: fmt.Sprintf("acct-%d", rnd.Intn(50)),
					Pair:      testPair,
					Side:      side,
					Price:     decimal.NewFromInt(rnd.Int63n(20) + 90),
					Amount:    rnd.Int63n(10) + 1,
				}
			}

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				engine.Submit(orders[i])
			}
			b.StopTimer()

			b.Logf("trade count: %d", engine.Stats().TradeCount)
		})
	}
}

func BenchmarkMarketPlaceOrders(b *testing.B) {
	goprocs := runtime.GOMAXPROCS(0)

	for _, parallelism := range []int{1, 10, 100} {
		b.Run(fmt.Sprintf("goroutines-%d", parallelism*goprocs), func(b *testing.B) {
			market := NewMarket(testPair, NewDiscardPublishLog())
			market.Start()
			defer market.Shutdown(context.Background())

			ctx := context.Background()
			var errCount int64

			b.SetParallelism(parallelism)
			b.RunParallel(func(pb *testing.PB) {
				rnd := rand.New(rand.NewSource(rand.Int63()))
				for pb.Next() {
					side := Buy
					if rnd.Intn(2) == 0 {
						side = Sell
					}
					err := market.PlaceOrder(ctx, &protocol.PlaceOrderCommand{
						OrderID:   xid.New().String(),
						AccountID: xid.New().String(),
						Pair:      testPair,
						Side:      side,
						Price:     fmt.Sprintf("%d", rnd.Int63n(100)+1),
						Amount:    1,
					})
					if err != nil {
						atomic.AddInt64(&errCount, 1)
					}
				}
			})

			b.Logf("error count: %d", errCount)
		})
	}
}
