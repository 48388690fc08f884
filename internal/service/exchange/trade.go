package exchange

import (
	"slices"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// TradeWindow 最近 N 笔成交的聚合结果
type TradeWindow struct {
	Open       decimal.Decimal
	High       decimal.Decimal
	Low        decimal.Decimal
	Close      decimal.Decimal
	Volume     decimal.Decimal
	BuyVolume  decimal.Decimal
	SellVolume decimal.Decimal
	Count      int
}

// LastTrades 取最后 n 笔, trades 需按时间正序
func LastTrades(trades []Trade, n int) []Trade {
	if n <= 0 || len(trades) <= n {
		return trades
	}
	return lo.Subset(trades, -n, uint(n))
}

// SortTrades 按成交时间正序排列, 各交易所返回的顺序不一致
func SortTrades(trades []Trade) {
	slices.SortStableFunc(trades, func(a, b Trade) int {
		return a.Time.Compare(b.Time)
	})
}

// AggregateTrades 按主动方向汇总成交量, trades 需按时间正序
// 方向未知的成交只计入总量
func AggregateTrades(trades []Trade) (TradeWindow, bool) {
	if len(trades) == 0 {
		return TradeWindow{}, false
	}
	w := TradeWindow{
		Open:  trades[0].Price,
		High:  trades[0].Price,
		Low:   trades[0].Price,
		Close: trades[len(trades)-1].Price,
		Count: len(trades),
	}
	for _, t := range trades {
		w.High = decimal.Max(w.High, t.Price)
		w.Low = decimal.Min(w.Low, t.Price)
		w.Volume = w.Volume.Add(t.Size)
		switch t.Side {
		case Buy:
			w.BuyVolume = w.BuyVolume.Add(t.Size)
		case Sell:
			w.SellVolume = w.SellVolume.Add(t.Size)
		}
	}
	return w, true
}

// ApplyTape 把成交窗口的买卖拆分写入 candle
func (c *Candle) ApplyTape(w TradeWindow) {
	c.BuyVolume = w.BuyVolume
	c.SellVolume = w.SellVolume
	c.TradeCount = w.Count
}
