package coinbase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/KNICEX/pressure-radar/internal/service/exchange"
	"github.com/KNICEX/pressure-radar/pkg/retryx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapter_FetchCandle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/prices/BTC-USD/spot", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":{"amount":"97012.34","base":"BTC","currency":"USD"}}`))
	}))
	defer srv.Close()

	a, err := New(exchange.AdapterConfig{ID: ID, Name: "Coinbase", BaseURL: srv.URL, NativeSymbol: "BTC-USD"}, exchange.Deps{
		HTTPClient: srv.Client(),
		Retry:      retryx.Policy{MaxAttempts: 1},
	})
	require.NoError(t, err)

	c, err := a.FetchCandle(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("97012.34").Equal(c.Close))
	assert.True(t, c.IsDoji())
	assert.False(t, c.HasTape())
	assert.Equal(t, 0, c.TradeCount)
	assert.True(t, decimal.NewFromInt(1).Equal(c.BuySellRatio()))
}

func TestAdapter_FetchCandle_StablecoinQuoteUsesUSD(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/prices/DUSK-USD/spot", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":{"amount":"0.1834","base":"DUSK","currency":"USD"}}`))
	}))
	defer srv.Close()

	a, err := New(exchange.AdapterConfig{ID: ID, BaseURL: srv.URL}, exchange.Deps{HTTPClient: srv.Client()})
	require.NoError(t, err)
	c, err := a.FetchCandle(context.Background(), "DUSKUSDT")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.1834").Equal(c.Close))

	assert.Equal(t, "BTC-EUR", nativePair(exchange.TradingPair{Base: "BTC", Quote: "EUR"}))
}

func TestAdapter_FetchCandle_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errors":[{"id":"not_found","message":"Invalid currency"}]}`))
	}))
	defer srv.Close()

	a, err := New(exchange.AdapterConfig{ID: ID, BaseURL: srv.URL}, exchange.Deps{HTTPClient: srv.Client()})
	require.NoError(t, err)
	_, err = a.FetchCandle(context.Background(), "DUSKUSDT")
	assert.ErrorIs(t, err, exchange.ErrUnexpectedStatus)
	assert.ErrorContains(t, err, "Invalid currency")
}
