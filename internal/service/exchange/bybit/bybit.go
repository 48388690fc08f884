// Package bybit Bybit V5 现货公开行情
package bybit

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/KNICEX/pressure-radar/internal/service/exchange"
	"github.com/KNICEX/pressure-radar/internal/service/exchange/rest"
	"github.com/KNICEX/pressure-radar/pkg/decimalx"
)

const (
	ID       = "bybit"
	category = "spot"
)

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

type response[T any] struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		Category string `json:"category"`
		List     []T    `json:"list"`
	} `json:"result"`
}

func (r response[T]) err() error {
	if r.RetCode != 0 {
		return fmt.Errorf("%w: bybit retCode %d %s", exchange.ErrUnexpectedStatus, r.RetCode, r.RetMsg)
	}
	if len(r.Result.List) == 0 {
		return exchange.ErrNoData
	}
	return nil
}

type ticker struct {
	Symbol       string `json:"symbol"`
	LastPrice    string `json:"lastPrice"`
	PrevPrice24h string `json:"prevPrice24h"`
	HighPrice24h string `json:"highPrice24h"`
	LowPrice24h  string `json:"lowPrice24h"`
	Volume24h    string `json:"volume24h"`
}

type trade struct {
	Price string `json:"price"`
	Size  string `json:"size"`
	Side  string `json:"side"`
	Time  string `json:"time"`
}

func (a *Adapter) FetchCandle(ctx context.Context, symbol string) (exchange.Candle, error) {
	native := a.NativeSymbol(symbol, exchange.TradingPair.ToString)
	candle := a.NewCandle(symbol)

	var tk response[ticker]
	query := url.Values{"category": {category}, "symbol": {native}}
	if err := a.cli.GetJSON(ctx, "/v5/market/tickers", query, &tk); err != nil {
		return candle, fmt.Errorf("bybit ticker %s: %w", native, err)
	}
	if err := tk.err(); err != nil {
		return candle, fmt.Errorf("bybit ticker %s: %w", native, err)
	}
	t := tk.Result.List[0]
	// 现货没有 open24h, 用 24 小时前的价格作为开盘价
	vals, err := decimalx.Fields("open", t.PrevPrice24h, "high", t.HighPrice24h, "low", t.LowPrice24h, "last", t.LastPrice, "volume", t.Volume24h)
	if err != nil {
		return candle, fmt.Errorf("bybit ticker %s: %w", native, rest.Malformed(err))
	}
	candle.Open, candle.High, candle.Low, candle.Close, candle.Volume = vals[0], vals[1], vals[2], vals[3], vals[4]

	var tr response[trade]
	query.Set("limit", strconv.Itoa(a.Cfg.TradeLimit))
	if err := a.cli.GetJSON(ctx, "/v5/market/recent-trade", query, &tr); err != nil {
		return candle, fmt.Errorf("bybit trades %s: %w", native, err)
	}
	if tr.RetCode != 0 {
		return candle, fmt.Errorf("bybit trades %s: %w", native, tr.err())
	}

	trades := make([]exchange.Trade, 0, len(tr.Result.List))
	for _, raw := range tr.Result.List {
		ts, err := rest.ParseMillis(raw.Time)
		if err != nil {
			return candle, fmt.Errorf("bybit trades %s: %w", native, err)
		}
		tt, err := rest.ParseTrade(raw.Price, raw.Size, side(raw.Side), ts)
		if err != nil {
			return candle, fmt.Errorf("bybit trades %s: %w", native, err)
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
	switch strings.ToLower(s) {
	case "buy":
		return exchange.Buy
	case "sell":
		return exchange.Sell
	}
	return exchange.Unknown
}
