// Package mexc MEXC 现货公开行情, 接口形状与 Binance v3 一致
package mexc

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/KNICEX/pressure-radar/internal/service/exchange"
	"github.com/KNICEX/pressure-radar/internal/service/exchange/rest"
	"github.com/KNICEX/pressure-radar/pkg/decimalx"
)

const ID = "mexc"

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

type ticker struct {
	Symbol    string `json:"symbol"`
	OpenPrice string `json:"openPrice"`
	HighPrice string `json:"highPrice"`
	LowPrice  string `json:"lowPrice"`
	LastPrice string `json:"lastPrice"`
	Volume    string `json:"volume"`
}

type trade struct {
	Price        string `json:"price"`
	Qty          string `json:"qty"`
	Time         int64  `json:"time"`
	IsBuyerMaker bool   `json:"isBuyerMaker"`
}

func (a *Adapter) FetchCandle(ctx context.Context, symbol string) (exchange.Candle, error) {
	native := a.NativeSymbol(symbol, exchange.TradingPair.ToString)
	candle := a.NewCandle(symbol)

	var t ticker
	if err := a.cli.GetJSON(ctx, "/api/v3/ticker/24hr", url.Values{"symbol": {native}}, &t); err != nil {
		return candle, fmt.Errorf("mexc ticker %s: %w", native, err)
	}
	if t.LastPrice == "" {
		return candle, fmt.Errorf("mexc ticker %s: %w", native, exchange.ErrNoData)
	}
	vals, err := decimalx.Fields("open", t.OpenPrice, "high", t.HighPrice, "low", t.LowPrice, "last", t.LastPrice, "volume", t.Volume)
	if err != nil {
		return candle, fmt.Errorf("mexc ticker %s: %w", native, rest.Malformed(err))
	}
	candle.Open, candle.High, candle.Low, candle.Close, candle.Volume = vals[0], vals[1], vals[2], vals[3], vals[4]

	var raws []trade
	query := url.Values{"symbol": {native}, "limit": {strconv.Itoa(a.Cfg.TradeLimit)}}
	if err := a.cli.GetJSON(ctx, "/api/v3/trades", query, &raws); err != nil {
		return candle, fmt.Errorf("mexc trades %s: %w", native, err)
	}

	trades := make([]exchange.Trade, 0, len(raws))
	for _, raw := range raws {
		tt, err := rest.ParseTrade(raw.Price, raw.Qty, side(raw.IsBuyerMaker), time.UnixMilli(raw.Time))
		if err != nil {
			return candle, fmt.Errorf("mexc trades %s: %w", native, err)
		}
		trades = append(trades, tt)
	}
	exchange.SortTrades(trades)
	if w, ok := exchange.AggregateTrades(exchange.LastTrades(trades, a.Cfg.TradeLimit)); ok {
		candle.ApplyTape(w)
	}
	return candle, nil
}

// side 买方是 maker 说明主动方是卖方
func side(isBuyerMaker bool) exchange.Side {
	if isBuyerMaker {
		return exchange.Sell
	}
	return exchange.Buy
}
