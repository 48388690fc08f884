package strategy

import (
	"log/slog"
	"time"

	"github.com/KNICEX/pressure-radar/internal/service/exchange"
	"github.com/shopspring/decimal"
)

const (
	DefaultThreshold = 1.8
	DefaultCooldown  = 60 * time.Second
	// DefaultDedupRetention 去重记录保留时长
	DefaultDedupRetention = 30 * time.Minute
)

type Config struct {
	Threshold      float64       `mapstructure:"threshold"`
	Cooldown       time.Duration `mapstructure:"cooldown"`
	DedupRetention time.Duration `mapstructure:"dedup_retention"`
}

func (c Config) WithDefaults() Config {
	if c.Threshold <= 0 {
		c.Threshold = DefaultThreshold
	}
	if c.Cooldown <= 0 {
		c.Cooldown = DefaultCooldown
	}
	if c.DedupRetention <= 0 {
		c.DedupRetention = DefaultDedupRetention
	}
	return c
}

// PressureAnalyzer 单根 K 线的买卖压力规则:
//   - 阴线且 buy/sell > threshold => BuyInRed
//   - 阳线且 sell/buy > threshold => SellInGreen
//
// 去重与冷却状态由调用方持有并传入
type PressureAnalyzer struct {
	threshold decimal.Decimal
	cooldown  time.Duration
	logger    *slog.Logger
}

func NewPressureAnalyzer(cfg Config, logger *slog.Logger) *PressureAnalyzer {
	cfg = cfg.WithDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &PressureAnalyzer{
		threshold: decimal.NewFromFloat(cfg.Threshold),
		cooldown:  cfg.Cooldown,
		logger:    logger,
	}
}

func (a *PressureAnalyzer) Threshold() decimal.Decimal {
	return a.threshold
}

func (a *PressureAnalyzer) Cooldown() time.Duration {
	return a.cooldown
}

func (a *PressureAnalyzer) Evaluate(in EvaluateInput, dedup *DedupTracker, cd *Cooldown) Decision {
	c := in.Candle
	if err := c.Validate(); err != nil {
		a.logger.Warn("skip malformed candle", "exchange", c.Exchange, "symbol", c.Symbol, "error", err)
		return Decision{Kind: NoAlert}
	}

	// 同一分钟内已经告警过的交易所不再评估
	if dedup.Triggered(in.Bucket, c.Exchange) {
		return Decision{Kind: Suppressed, Reason: AlreadyTriggered}
	}

	typ, ratio, ok := a.match(c)
	if !ok {
		return Decision{Kind: NoAlert}
	}

	dedup.Mark(in.Bucket, c.Exchange)

	if remaining := cd.Remaining(typ, in.Now, a.cooldown); remaining > 0 {
		a.logger.Info("alert in cooldown", "type", typ, "exchange", c.Exchange, "remaining", remaining)
		return Decision{Kind: Suppressed, Type: typ, Reason: InCooldown, Remaining: remaining}
	}
	cd.Record(typ, in.Now)

	return Decision{
		Kind: Alerted,
		Type: typ,
		Alert: Alert{
			Type:         typ,
			Exchange:     c.Exchange,
			ExchangeName: c.ExchangeName,
			Symbol:       c.Symbol,
			Price:        c.Close,
			Volume:       c.Volume,
			BuyVolume:    c.BuyVolume,
			SellVolume:   c.SellVolume,
			Ratio:        ratio,
			Threshold:    a.threshold,
			CandleTime:   c.FetchTime,
			Bucket:       in.Bucket,
		},
	}
}

// match 阴阳互斥, 十字星不触发
func (a *PressureAnalyzer) match(c exchange.Candle) (AlertType, decimal.Decimal, bool) {
	switch {
	case c.IsRed():
		if r := c.BuySellRatio(); r.GreaterThan(a.threshold) {
			return BuyInRed, r, true
		}
	case c.IsGreen():
		if r := c.SellBuyRatio(); r.GreaterThan(a.threshold) {
			return SellInGreen, r, true
		}
	}
	return "", decimal.Zero, false
}
