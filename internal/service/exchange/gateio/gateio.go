// Package gateio Gate.io v4 现货公开行情
package gateio

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/KNICEX/pressure-radar/internal/service/exchange"
	"github.com/KNICEX/pressure-radar/internal/service/exchange/rest"
	"github.com/KNICEX/pressure-radar/pkg/decimalx"
	"github.com/shopspring/decimal"
)

const ID = "gateio"

var (
	_ exchange.Adapter = (*Adapter)(nil)

	hundred = decimal.NewFromInt(100)
)

type Adapter struct {
	exchange.BaseAdapter
	cli *rest.Client
}

func New(cfg exchange.AdapterConfig, deps exchange.Deps) (exchange.Adapter, error) {
	cli, err := rest.NewClient(cfg, deps)
	if err != nil {
		return nil, err
	}
	return &Adapter{BaseAdapter: exchange.NewBaseAdapter(cfg, deps), cli: cli}, nil
}

type ticker struct {
	CurrencyPair     string `json:"currency_pair"`
	Last             string `json:"last"`
	ChangePercentage string `json:"change_percentage"`
	High24h          string `json:"high_24h"`
	Low24h           string `json:"low_24h"`
	BaseVolume       string `json:"base_volume"`
}

type trade struct {
	ID           string `json:"id"`
	CreateTimeMs string `json:"create_time_ms"`
	Side         string `json:"side"`
	Amount       string `json:"amount"`
	Price        string `json:"price"`
}

func (a *Adapter) FetchCandle(ctx context.Context, symbol string) (exchange.Candle, error) {
	pair := a.NativeSymbol(symbol, func(p exchange.TradingPair) string { return p.Join("_") })
	candle := a.NewCandle(symbol)

	var tickers []ticker
	if err := a.cli.GetJSON(ctx, "/api/v4/spot/tickers", url.Values{"currency_pair": {pair}}, &tickers); err != nil {
		return candle, fmt.Errorf("gateio ticker %s: %w", pair, err)
	}
	if len(tickers) == 0 {
		return candle, fmt.Errorf("gateio ticker %s: %w", pair, exchange.ErrNoData)
	}
	t := tickers[0]
	vals, err := decimalx.Fields("last", t.Last, "change_percentage", t.ChangePercentage,
		"high", t.High24h, "low", t.Low24h, "volume", t.BaseVolume)
	if err != nil {
		return candle, fmt.Errorf("gateio ticker %s: %w", pair, rest.Malformed(err))
	}
	open, err := openFromChange(vals[0], vals[1])
	if err != nil {
		return candle, fmt.Errorf("gateio ticker %s: %w", pair, err)
	}
	candle.Open, candle.Close, candle.High, candle.Low, candle.Volume = open, vals[0], vals[2], vals[3], vals[4]

	var raws []trade
	query := url.Values{"currency_pair": {pair}, "limit": {strconv.Itoa(a.Cfg.TradeLimit)}}
	if err := a.cli.GetJSON(ctx, "/api/v4/spot/trades", query, &raws); err != nil {
		return candle, fmt.Errorf("gateio trades %s: %w", pair, err)
	}

	trades := make([]exchange.Trade, 0, len(raws))
	for _, raw := range raws {
		ts, err := rest.ParseMillis(raw.CreateTimeMs)
		if err != nil {
			return candle, fmt.Errorf("gateio trades %s: %w", pair, err)
		}
		tt, err := rest.ParseTrade(raw.Price, raw.Amount, side(raw.Side), ts)
		if err != nil {
			return candle, fmt.Errorf("gateio trades %s: %w", pair, err)
		}
		trades = append(trades, tt)
	}
	exchange.SortTrades(trades)
	if w, ok := exchange.AggregateTrades(exchange.LastTrades(trades, a.Cfg.TradeLimit)); ok {
		candle.ApplyTape(w)
	}
	return candle, nil
}

// openFromChange ticker 不带开盘价, 由 last / (1 + change%/100) 反推
func openFromChange(last, changePct decimal.Decimal) (decimal.Decimal, error) {
	factor := decimal.NewFromInt(1).Add(changePct.Div(hundred))
	if !factor.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: change_percentage %s", exchange.ErrMalformedResponse, changePct)
	}
	return last.Div(factor), nil
}

func side(s string) exchange.Side {
	switch s {
	case "buy":
		return exchange.Buy
	case "sell":
		return exchange.Sell
	}
	return exchange.Unknown
}
