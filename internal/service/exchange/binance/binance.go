// Package binance 币安现货公开行情, 基于 go-binance SDK
package binance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/KNICEX/pressure-radar/internal/service/exchange"
	"github.com/KNICEX/pressure-radar/pkg/decimalx"
	"github.com/adshao/go-binance/v2"
	"golang.org/x/time/rate"
)

const ID = "binance"

var _ exchange.Adapter = (*Adapter)(nil)

type Adapter struct {
	exchange.BaseAdapter
	cli     *binance.Client
	limiter *rate.Limiter
}

// New 公开行情不需要 api key
func New(cfg exchange.AdapterConfig, deps exchange.Deps) (exchange.Adapter, error) {
	base := exchange.NewBaseAdapter(cfg, deps)
	return NewWithClient(binance.NewClient("", ""), base), nil
}

func NewWithClient(cli *binance.Client, base exchange.BaseAdapter) *Adapter {
	if base.Cfg.BaseURL != "" {
		cli.BaseURL = strings.TrimRight(base.Cfg.BaseURL, "/")
	}
	cli.HTTPClient = base.Deps.HTTPClient
	return &Adapter{
		BaseAdapter: base,
		cli:         cli,
		limiter:     rate.NewLimiter(rate.Limit(base.Cfg.RequestsPerSecond), 2),
	}
}

func (a *Adapter) FetchCandle(ctx context.Context, symbol string) (exchange.Candle, error) {
	native := a.NativeSymbol(symbol, exchange.TradingPair.ToString)
	candle := a.NewCandle(symbol)

	var stats []*binance.PriceChangeStats
	err := a.do(ctx, func(ctx context.Context) (err error) {
		stats, err = a.cli.NewListPriceChangeStatsService().Symbol(native).Do(ctx)
		return wrapErr(err)
	})
	if err != nil {
		return candle, fmt.Errorf("binance ticker %s: %w", native, err)
	}
	if len(stats) == 0 || stats[0] == nil {
		return candle, fmt.Errorf("binance ticker %s: %w", native, exchange.ErrNoData)
	}
	s := stats[0]
	vals, err := decimalx.Fields("open", s.OpenPrice, "high", s.HighPrice, "low", s.LowPrice, "last", s.LastPrice, "volume", s.Volume)
	if err != nil {
		return candle, fmt.Errorf("binance ticker %s: %w: %v", native, exchange.ErrMalformedResponse, err)
	}
	candle.Open, candle.High, candle.Low, candle.Close, candle.Volume = vals[0], vals[1], vals[2], vals[3], vals[4]

	var raws []*binance.Trade
	err = a.do(ctx, func(ctx context.Context) (err error) {
		raws, err = a.cli.NewRecentTradesService().Symbol(native).Limit(a.Cfg.TradeLimit).Do(ctx)
		return wrapErr(err)
	})
	if err != nil {
		return candle, fmt.Errorf("binance trades %s: %w", native, err)
	}

	trades := make([]exchange.Trade, 0, len(raws))
	for _, raw := range raws {
		if raw == nil {
			continue
		}
		vals, err := decimalx.Fields("price", raw.Price, "qty", raw.Quantity)
		if err != nil {
			return candle, fmt.Errorf("binance trades %s: %w: %v", native, exchange.ErrMalformedResponse, err)
		}
		trades = append(trades, exchange.Trade{
			Price: vals[0],
			Size:  vals[1],
			Side:  fromBuyerMaker(raw.IsBuyerMaker),
			Time:  time.UnixMilli(raw.Time),
		})
	}
	exchange.SortTrades(trades)
	if w, ok := exchange.AggregateTrades(exchange.LastTrades(trades, a.Cfg.TradeLimit)); ok {
		candle.ApplyTape(w)
	}
	return candle, nil
}

// do SDK 请求统一走限流 + 重试
func (a *Adapter) do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempt := 0
	return a.Deps.Retry.Do(ctx, func(ctx context.Context) error {
		if err := a.limiter.Wait(ctx); err != nil {
			return err
		}
		attempt++
		err := fn(ctx)
		if err != nil {
			a.Deps.Logger.Warn("exchange request failed", "exchange", a.ID(), "attempt", attempt, "error", err)
		}
		return err
	})
}
