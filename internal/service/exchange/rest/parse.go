package rest

import (
	"fmt"
	"time"

	"github.com/KNICEX/pressure-radar/internal/service/exchange"
	"github.com/KNICEX/pressure-radar/pkg/decimalx"
	"github.com/shopspring/decimal"
)

// ParseMillis 解析毫秒时间戳, 兼容 "1700000000123.456" 这种带小数的写法
// 缺失的时间戳视为格式错误, 否则排序后会被当成最早的一笔
func ParseMillis(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: missing timestamp", exchange.ErrMalformedResponse)
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad timestamp %q", exchange.ErrMalformedResponse, s)
	}
	return time.UnixMilli(v.IntPart()), nil
}

// ParseTrade 把字符串字段的成交转成 exchange.Trade
func ParseTrade(price, size string, side exchange.Side, ts time.Time) (exchange.Trade, error) {
	vals, err := decimalx.Fields("price", price, "size", size)
	if err != nil {
		return exchange.Trade{}, Malformed(err)
	}
	return exchange.Trade{Price: vals[0], Size: vals[1], Side: side, Time: ts}, nil
}

// Malformed 把字段解析错误归类为 ErrMalformedResponse
func Malformed(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", exchange.ErrMalformedResponse, err)
}
