// Package okx OKX 现货公开行情
package okx

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/KNICEX/pressure-radar/internal/service/exchange"
	"github.com/KNICEX/pressure-radar/internal/service/exchange/rest"
	"github.com/KNICEX/pressure-radar/pkg/decimalx"
)

const ID = "okx"

var _ exchange.Adapter = (*Adapter)(nil)

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

type envelope[T any] struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data []T    `json:"data"`
}

func (e envelope[T]) err() error {
	if e.Code != "0" {
		return fmt.Errorf("%w: okx code %s %s", exchange.ErrUnexpectedStatus, e.Code, e.Msg)
	}
	if len(e.Data) == 0 {
		return exchange.ErrNoData
	}
	return nil
}

type ticker struct {
	InstID  string `json:"instId"`
	Last    string `json:"last"`
	Open24h string `json:"open24h"`
	High24h string `json:"high24h"`
	Low24h  string `json:"low24h"`
	Vol24h  string `json:"vol24h"`
}

type trade struct {
	Px   string `json:"px"`
	Sz   string `json:"sz"`
	Side string `json:"side"`
	Ts   string `json:"ts"`
}

func (a *Adapter) FetchCandle(ctx context.Context, symbol string) (exchange.Candle, error) {
	instID := a.NativeSymbol(symbol, func(p exchange.TradingPair) string { return p.Join("-") })
	candle := a.NewCandle(symbol)

	var tk envelope[ticker]
	if err := a.cli.GetJSON(ctx, "/api/v5/market/ticker", url.Values{"instId": {instID}}, &tk); err != nil {
		return candle, fmt.Errorf("okx ticker %s: %w", instID, err)
	}
	if err := tk.err(); err != nil {
		return candle, fmt.Errorf("okx ticker %s: %w", instID, err)
	}
	t := tk.Data[0]
	vals, err := decimalx.Fields("open", t.Open24h, "high", t.High24h, "low", t.Low24h, "last", t.Last, "volume", t.Vol24h)
	if err != nil {
		return candle, fmt.Errorf("okx ticker %s: %w", instID, rest.Malformed(err))
	}
	candle.Open, candle.High, candle.Low, candle.Close, candle.Volume = vals[0], vals[1], vals[2], vals[3], vals[4]

	var tr envelope[trade]
	query := url.Values{"instId": {instID}, "limit": {strconv.Itoa(a.Cfg.TradeLimit)}}
	if err := a.cli.GetJSON(ctx, "/api/v5/market/trades", query, &tr); err != nil {
		return candle, fmt.Errorf("okx trades %s: %w", instID, err)
	}
	if tr.Code != "0" {
		return candle, fmt.Errorf("okx trades %s: %w", instID, tr.err())
	}

	trades := make([]exchange.Trade, 0, len(tr.Data))
	for _, raw := range tr.Data {
		ts, err := rest.ParseMillis(raw.Ts)
		if err != nil {
			return candle, fmt.Errorf("okx trades %s: %w", instID, err)
		}
		tt, err := rest.ParseTrade(raw.Px, raw.Sz, side(raw.Side), ts)
		if err != nil {
			return candle, fmt.Errorf("okx trades %s: %w", instID, err)
		}
		trades = append(trades, tt)
	}
	exchange.SortTrades(trades)
	if w, ok := exchange.AggregateTrades(exchange.LastTrades(trades, a.Cfg.TradeLimit)); ok {
		candle.ApplyTape(w)
	}
	return candle, nil
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
