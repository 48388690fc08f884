package gateio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/KNICEX/pressure-radar/internal/service/exchange"
	"github.com/KNICEX/pressure-radar/pkg/retryx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapter_FetchCandle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "DUSK_USDT", r.URL.Query().Get("currency_pair"))
		switch r.URL.Path {
		case "/api/v4/spot/tickers":
			_, _ = w.Write([]byte(`[{"currency_pair":"DUSK_USDT","last":"0.11","change_percentage":"10","high_24h":"0.12","low_24h":"0.09","base_volume":"800000"}]`))
		case "/api/v4/spot/trades":
			assert.Equal(t, "50", r.URL.Query().Get("limit"))
			_, _ = w.Write([]byte(`[
				{"id":"2","create_time_ms":"1700000002000.123","side":"sell","amount":"40","price":"0.11"},
				{"id":"1","create_time_ms":"1700000001000.456","side":"buy","amount":"60","price":"0.109"}
			]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	a, err := New(exchange.AdapterConfig{ID: ID, BaseURL: srv.URL}, exchange.Deps{
		HTTPClient: srv.Client(),
		Retry:      retryx.Policy{MaxAttempts: 1},
		Location:   time.UTC,
	})
	require.NoError(t, err)

	c, err := a.FetchCandle(context.Background(), "DUSKUSDT")
	require.NoError(t, err)
	assert.Equal(t, "gateio", c.ExchangeName)
	assert.True(t, decimal.RequireFromString("0.1").Equal(c.Open), c.Open.String())
	assert.True(t, decimal.RequireFromString("0.11").Equal(c.Close))
	assert.True(t, decimal.RequireFromString("800000").Equal(c.Volume))
	assert.True(t, decimal.RequireFromString("60").Equal(c.BuyVolume))
	assert.True(t, decimal.RequireFromString("40").Equal(c.SellVolume))
	assert.Equal(t, 2, c.TradeCount)
}

func TestOpenFromChange(t *testing.T) {
	open, err := openFromChange(decimal.RequireFromString("90"), decimal.RequireFromString("-10"))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(open))

	_, err = openFromChange(decimal.RequireFromString("1"), decimal.RequireFromString("-100"))
	assert.ErrorIs(t, err, exchange.ErrMalformedResponse)
}

func TestAdapter_FetchCandle_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	a, err := New(exchange.AdapterConfig{ID: ID, BaseURL: srv.URL}, exchange.Deps{HTTPClient: srv.Client()})
	require.NoError(t, err)
	_, err = a.FetchCandle(context.Background(), "DUSKUSDT")
	assert.ErrorIs(t, err, exchange.ErrNoData)
}
