package exchange

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownExchange   = errors.New("unknown exchange")
	ErrDuplicateExchange = errors.New("duplicate exchange")
	ErrUnexpectedStatus  = errors.New("unexpected http status")
	ErrRateLimited       = errors.New("rate limited")
	ErrMalformedResponse = errors.New("malformed response")
	ErrNoData            = errors.New("no data")
	ErrInvalidCandle     = errors.New("invalid candle")
)

// Side 主动成交方向 (taker)
type Side string

const (
	Buy     Side = "buy"
	Sell    Side = "sell"
	Unknown Side = ""
)

// Trade 一笔公开成交
type Trade struct {
	Price decimal.Decimal
	Size  decimal.Decimal
	Side  Side
	Time  time.Time
}

// Candle 某交易所在抓取时刻的行情快照
type Candle struct {
	Exchange     string
	ExchangeName string
	Symbol       string

	Open  decimal.Decimal
	High  decimal.Decimal
	Low   decimal.Decimal
	Close decimal.Decimal // 最新成交价

	Volume     decimal.Decimal // 成交量 (base)
	BuyVolume  decimal.Decimal // 主动买入量
	SellVolume decimal.Decimal // 主动卖出量
	TradeCount int             // 参与买卖统计的成交笔数, 0 表示没有逐笔数据

	FetchTime time.Time
}
