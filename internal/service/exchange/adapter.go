package exchange

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/KNICEX/pressure-radar/pkg/retryx"
)

const (
	DefaultTradeLimit        = 50
	DefaultRequestsPerSecond = 5
	DefaultRequestTimeout    = 10 * time.Second
)

// Adapter 把某个交易所的原生接口转换成统一的 Candle
type Adapter interface {
	ID() string
	Name() string
	// FetchCandle 抓取 symbol 的最新快照, 失败时返回 error, 不会 panic 给调用方
	FetchCandle(ctx context.Context, symbol string) (Candle, error)
}

// AdapterConfig 单个交易所的连接配置
type AdapterConfig struct {
	ID                string  `mapstructure:"id"`
	Name              string  `mapstructure:"name"`
	BaseURL           string  `mapstructure:"base_url"`
	NativeSymbol      string  `mapstructure:"native_symbol"` // 为空时按交易所习惯从 symbol 推导
	TradeLimit        int     `mapstructure:"trade_limit"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Disabled          bool    `mapstructure:"disabled"`
}

func (c AdapterConfig) withDefaults() AdapterConfig {
	if c.Name == "" {
		c.Name = c.ID
	}
	if c.TradeLimit <= 0 {
		c.TradeLimit = DefaultTradeLimit
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = DefaultRequestsPerSecond
	}
	return c
}

// Deps 所有 adapter 共享的依赖, HTTPClient 可以被并发复用
type Deps struct {
	HTTPClient *http.Client
	UserAgent  string
	Retry      retryx.Policy
	Location   *time.Location
	Logger     *slog.Logger
	Now        func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.HTTPClient == nil {
		d.HTTPClient = &http.Client{Timeout: DefaultRequestTimeout}
	}
	if d.Location == nil {
		d.Location = time.Local
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// BaseAdapter 提供 adapter 的公共字段
type BaseAdapter struct {
	Cfg  AdapterConfig
	Deps Deps
}

func NewBaseAdapter(cfg AdapterConfig, deps Deps) BaseAdapter {
	return BaseAdapter{Cfg: cfg.withDefaults(), Deps: deps.withDefaults()}
}

func (b BaseAdapter) ID() string {
	return b.Cfg.ID
}

func (b BaseAdapter) Name() string {
	return b.Cfg.Name
}

// NativeSymbol 返回配置里的原生写法, 没配置时用 fallback 推导
func (b BaseAdapter) NativeSymbol(symbol string, fallback func(TradingPair) string) string {
	if b.Cfg.NativeSymbol != "" {
		return b.Cfg.NativeSymbol
	}
	return fallback(ParseTradingPair(symbol))
}

// NewCandle 填好交易所和时间字段的空 Candle
func (b BaseAdapter) NewCandle(symbol string) Candle {
	return Candle{
		Exchange:     b.Cfg.ID,
		ExchangeName: b.Cfg.Name,
		Symbol:       symbol,
		FetchTime:    b.Deps.Now().In(b.Deps.Location),
	}
}
