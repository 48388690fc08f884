package exchange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateTrades(t *testing.T) {
	trades := []Trade{
		{Price: d("0.10"), Size: d("5"), Side: Buy},
		{Price: d("0.12"), Size: d("3"), Side: Sell},
		{Price: d("0.09"), Size: d("2"), Side: Buy},
		{Price: d("0.11"), Size: d("1"), Side: Unknown},
	}

	w, ok := AggregateTrades(trades)
	require.True(t, ok)
	assert.True(t, d("0.10").Equal(w.Open))
	assert.True(t, d("0.12").Equal(w.High))
	assert.True(t, d("0.09").Equal(w.Low))
	assert.True(t, d("0.11").Equal(w.Close))
	assert.True(t, d("11").Equal(w.Volume))
	assert.True(t, d("7").Equal(w.BuyVolume))
	assert.True(t, d("3").Equal(w.SellVolume))
	assert.Equal(t, 4, w.Count)

	_, ok = AggregateTrades(nil)
	assert.False(t, ok)
}

func TestLastTrades(t *testing.T) {
	trades := make([]Trade, 10)
	for i := range trades {
		trades[i] = Trade{Size: d("1"), Side: Buy}
	}
	trades[9].Side = Sell

	last := LastTrades(trades, 3)
	require.Len(t, last, 3)
	assert.Equal(t, Sell, last[2].Side)

	assert.Len(t, LastTrades(trades, 0), 10)
	assert.Len(t, LastTrades(trades, 20), 10)
}

func TestSortTrades_ThenApplyTape(t *testing.T) {
	base := time.UnixMilli(1700000000000)
	trades := []Trade{
		{Price: d("3"), Size: d("1"), Side: Sell, Time: base.Add(2 * time.Second)},
		{Price: d("1"), Size: d("4"), Side: Buy, Time: base},
		{Price: d("2"), Size: d("2"), Side: Buy, Time: base.Add(time.Second)},
	}
	SortTrades(trades)
	assert.True(t, d("1").Equal(trades[0].Price))
	assert.True(t, d("3").Equal(trades[2].Price))

	w, ok := AggregateTrades(trades)
	require.True(t, ok)

	var c Candle
	c.ApplyTape(w)
	assert.True(t, d("6").Equal(c.BuyVolume))
	assert.True(t, d("1").Equal(c.SellVolume))
	assert.Equal(t, 3, c.TradeCount)
	assert.True(t, c.HasTape())
}
