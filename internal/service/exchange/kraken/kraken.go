// Package kraken Kraken 公开成交
// 没有可用的 24h 开盘价, OHLC 全部由最近的成交窗口计算
package kraken

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/KNICEX/pressure-radar/internal/service/exchange"
	"github.com/KNICEX/pressure-radar/internal/service/exchange/rest"
	"github.com/shopspring/decimal"
)

const ID = "kraken"

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

type tradesResponse struct {
	Error  []string                   `json:"error"`
	Result map[string]json.RawMessage `json:"result"`
}

// Kraken 的 pair 命名, BTC 写作 XBT
func nativePair(p exchange.TradingPair) string {
	if p.Base == "BTC" {
		p.Base = "XBT"
	}
	return p.ToString()
}

func (a *Adapter) FetchCandle(ctx context.Context, symbol string) (exchange.Candle, error) {
	pair := a.NativeSymbol(symbol, nativePair)
	candle := a.NewCandle(symbol)

	var resp tradesResponse
	query := url.Values{"pair": {pair}, "count": {strconv.Itoa(a.Cfg.TradeLimit)}}
	if err := a.cli.GetJSON(ctx, "/0/public/Trades", query, &resp); err != nil {
		return candle, fmt.Errorf("kraken trades %s: %w", pair, err)
	}
	if len(resp.Error) > 0 {
		return candle, fmt.Errorf("kraken trades %s: %w: %s", pair, exchange.ErrUnexpectedStatus, strings.Join(resp.Error, "; "))
	}

	trades, err := parseResult(resp.Result)
	if err != nil {
		return candle, fmt.Errorf("kraken trades %s: %w", pair, err)
	}
	exchange.SortTrades(trades)
	w, ok := exchange.AggregateTrades(exchange.LastTrades(trades, a.Cfg.TradeLimit))
	if !ok {
		return candle, fmt.Errorf("kraken trades %s: %w", pair, exchange.ErrNoData)
	}
	candle.Open, candle.High, candle.Low, candle.Close, candle.Volume = w.Open, w.High, w.Low, w.Close, w.Volume
	candle.ApplyTape(w)
	return candle, nil
}

// parseResult result 里除了 "last" 游标之外只有一个 key, 名字是 Kraken 内部的 pair 名
func parseResult(result map[string]json.RawMessage) ([]exchange.Trade, error) {
	for key, raw := range result {
		if key == "last" {
			continue
		}
		var rows [][]any
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, rest.Malformed(err)
		}
		trades := make([]exchange.Trade, 0, len(rows))
		for _, row := range rows {
			t, err := parseRow(row)
			if err != nil {
				return nil, err
			}
			trades = append(trades, t)
		}
		return trades, nil
	}
	return nil, exchange.ErrNoData
}

// parseRow [price, volume, time, side, ordertype, misc, trade_id]
func parseRow(row []any) (exchange.Trade, error) {
	if len(row) < 4 {
		return exchange.Trade{}, fmt.Errorf("%w: short trade row %v", exchange.ErrMalformedResponse, row)
	}
	price, _ := row[0].(string)
	volume, _ := row[1].(string)
	sec, ok := row[2].(float64)
	if !ok {
		return exchange.Trade{}, fmt.Errorf("%w: bad trade time %v", exchange.ErrMalformedResponse, row[2])
	}
	ts := time.UnixMilli(decimal.NewFromFloat(sec).Shift(3).IntPart())

	var side exchange.Side
	switch row[3] {
	case "b":
		side = exchange.Buy
	case "s":
		side = exchange.Sell
	}
	return rest.ParseTrade(price, volume, side, ts)
}
