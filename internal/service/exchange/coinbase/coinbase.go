// Package coinbase Coinbase 现货价格
// 公开接口只有最新价, 没有逐笔成交, 买卖量保持为 0
package coinbase

import (
	"context"
	"fmt"
	"net/url"

	"github.com/KNICEX/pressure-radar/internal/service/exchange"
	"github.com/KNICEX/pressure-radar/internal/service/exchange/rest"
	"github.com/KNICEX/pressure-radar/pkg/decimalx"
)

const ID = "coinbase"

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

// nativePair Coinbase 只报 USD 价格, 稳定币计价的 symbol 换成 USD
func nativePair(p exchange.TradingPair) string {
	switch p.Quote {
	case "USDT", "USDC", "BUSD":
		p = p.WithQuote("USD")
	}
	return p.Join("-")
}

type spotResponse struct {
	Data struct {
		Amount   string `json:"amount"`
		Base     string `json:"base"`
		Currency string `json:"currency"`
	} `json:"data"`
	Errors []struct {
		ID      string `json:"id"`
		Message string `json:"message"`
	} `json:"errors"`
}

func (a *Adapter) FetchCandle(ctx context.Context, symbol string) (exchange.Candle, error) {
	pair := a.NativeSymbol(symbol, nativePair)
	candle := a.NewCandle(symbol)

	var resp spotResponse
	if err := a.cli.GetJSON(ctx, "/v2/prices/"+url.PathEscape(pair)+"/spot", nil, &resp); err != nil {
		return candle, fmt.Errorf("coinbase spot %s: %w", pair, err)
	}
	if len(resp.Errors) > 0 {
		return candle, fmt.Errorf("coinbase spot %s: %w: %s", pair, exchange.ErrUnexpectedStatus, resp.Errors[0].Message)
	}
	if resp.Data.Amount == "" {
		return candle, fmt.Errorf("coinbase spot %s: %w", pair, exchange.ErrNoData)
	}
	price, err := decimalx.Parse("amount", resp.Data.Amount)
	if err != nil {
		return candle, fmt.Errorf("coinbase spot %s: %w", pair, rest.Malformed(err))
	}
	candle.Open, candle.High, candle.Low, candle.Close = price, price, price, price
	return candle, nil
}
