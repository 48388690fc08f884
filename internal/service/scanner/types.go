package scanner

import (
	"errors"
	"time"

	"github.com/KNICEX/pressure-radar/internal/service/exchange"
)

var ErrNoExchanges = errors.New("no exchanges to scan")

// Failure 某个交易所本轮抓取失败
type Failure struct {
	Exchange string
	Err      error
}

// Result 一轮扫描的合并结果, 只在所有抓取结束后由调用方单线程读取
type Result struct {
	Candles  []exchange.Candle
	Failures []Failure
	Total    int
	Started  time.Time
	Elapsed  time.Duration
}

func (r Result) Succeeded() int {
	return len(r.Candles)
}

// Empty 没有任何交易所返回数据
func (r Result) Empty() bool {
	return len(r.Candles) == 0
}
