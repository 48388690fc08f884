package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/KNICEX/pressure-radar/internal/service/exchange"
	"github.com/KNICEX/pressure-radar/pkg/retryx"
	"github.com/adshao/go-binance/v2/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T, h http.HandlerFunc) exchange.Adapter {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	a, err := New(exchange.AdapterConfig{ID: ID, Name: "Binance", BaseURL: srv.URL}, exchange.Deps{
		HTTPClient: srv.Client(),
		Retry:      retryx.Policy{MaxAttempts: 1},
		Location:   time.UTC,
	})
	require.NoError(t, err)
	return a
}

func TestAdapter_FetchCandle(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "DUSKUSDT", r.URL.Query().Get("symbol"))
		switch r.URL.Path {
		case "/api/v3/ticker/24hr":
			_, _ = w.Write([]byte(`[{"symbol":"DUSKUSDT","openPrice":"0.1000","highPrice":"0.1200","lowPrice":"0.0950","lastPrice":"0.0990","volume":"1500000.00"}]`))
		case "/api/v3/trades":
			assert.Equal(t, "50", r.URL.Query().Get("limit"))
			_, _ = w.Write([]byte(`[
				{"id":1,"price":"0.0991","qty":"1000","quoteQty":"99.1","time":1700000001000,"isBuyerMaker":false,"isBestMatch":true},
				{"id":2,"price":"0.0990","qty":"200","quoteQty":"19.8","time":1700000002000,"isBuyerMaker":true,"isBestMatch":true}
			]`))
		default:
			http.NotFound(w, r)
		}
	})

	c, err := a.FetchCandle(context.Background(), "DUSKUSDT")
	require.NoError(t, err)
	assert.Equal(t, "binance", c.Exchange)
	assert.True(t, c.IsRed())
	assert.True(t, decimal.RequireFromString("1500000").Equal(c.Volume))
	assert.True(t, decimal.NewFromInt(1000).Equal(c.BuyVolume))
	assert.True(t, decimal.NewFromInt(200).Equal(c.SellVolume))
	assert.True(t, decimal.NewFromInt(5).Equal(c.BuySellRatio()))
	assert.Equal(t, 2, c.TradeCount)
}

func TestAdapter_FetchCandle_APIError(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
	})
	_, err := a.FetchCandle(context.Background(), "NOPEUSDT")
	assert.ErrorIs(t, err, exchange.ErrUnexpectedStatus)
	assert.ErrorContains(t, err, "Invalid symbol")
}

func TestWrapErr(t *testing.T) {
	assert.NoError(t, wrapErr(nil))
	assert.ErrorIs(t, wrapErr(&common.APIError{Code: -1003, Message: "Too many requests"}), exchange.ErrRateLimited)
	assert.ErrorIs(t, wrapErr(&common.APIError{Code: -1100}), exchange.ErrUnexpectedStatus)
	assert.Equal(t, exchange.Buy, fromBuyerMaker(false))
	assert.Equal(t, exchange.Sell, fromBuyerMaker(true))
}
