package match

import (
	"time"
)

// match runs passes over both book sides until a full pass executes no trade.
//
// Each pass repeatedly takes the best buy and the best sell:
//   - same account: the buy is parked until the pass ends and the sell goes back,
//     so the sell meets the next buy;
//   - crossing: trade min(amounts) at the sell's limit price, requeue remainders;
//   - not crossing: both go back and the pass stops.
//
// Every trade lowers the outstanding amount, so the loop terminates.
func (e *Engine) match(logs []*BookLog) []*BookLog {
	for {
		var parked []*Order
		traded := false

		for !e.bids.isEmpty() && !e.asks.isEmpty() {
			buy := e.bids.popBest()
			sell := e.asks.popBest()

			if buy.AccountID == sell.AccountID {
				parked = append(parked, buy)
				e.requeue(e.asks, sell)
				continue
			}

			if buy.Price.LessThan(sell.Price) {
				e.requeue(e.bids, buy)
				e.requeue(e.asks, sell)
				break
			}

			logs = e.fill(buy, sell, logs)
			traded = true
		}

		for _, order := range parked {
			e.requeue(e.bids, order)
		}

		if !traded {
			return logs
		}
	}
}

// fill executes one trade between two crossing orders that are already off the book.
func (e *Engine) fill(buy *Order, sell *Order, logs []*BookLog) []*BookLog {
	amount := min(buy.Amount, sell.Amount)

	e.tradeID++
	trade := Trade{
		ID:        e.tradeID,
		Buy:       *buy,
		Sell:      *sell,
		Amount:    amount,
		Price:     sell.Price,
		CreatedAt: time.Now().UTC(),
	}

	e.trades.append(trade)
	e.entries.append(
		OrderBookEntry{
			TradeID:   trade.ID,
			OrderID:   buy.ID,
			Side:      buy.Side,
			Amount:    amount,
			Price:     trade.Price,
			AccountID: buy.AccountID,
		},
		OrderBookEntry{
			TradeID:   trade.ID,
			OrderID:   sell.ID,
			Side:      sell.Side,
			Amount:    amount,
			Price:     trade.Price,
			AccountID: sell.AccountID,
		},
	)

	logs = append(logs,
		newMatchLog(e.nextSeqID(), &trade, buy, sell),
		newMatchLog(e.nextSeqID(), &trade, sell, buy),
	)

	logger.Debug("trade executed",
		"pair", e.pair,
		"trade_id", trade.ID,
		"amount", amount,
		"price", trade.Price.String(),
		"buy_account_id", buy.AccountID,
		"sell_account_id", sell.AccountID,
	)

	buy.Amount -= amount
	sell.Amount -= amount

	e.settle(e.bids, buy)
	e.settle(e.asks, sell)

	return logs
}

// settle puts a remainder back, or drops a fully filled order for good.
func (e *Engine) settle(side *bookSide, order *Order) {
	if order.Amount > 0 {
		e.requeue(side, order)
		return
	}
	e.accounts.remove(order)
}

func (e *Engine) requeue(side *bookSide, order *Order) {
	if e.policy == RequeueKeepSequence {
		side.restore(order)
		return
	}
	side.insert(order)
}
