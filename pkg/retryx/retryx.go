// Package retryx 统一的有界重试策略
// 交易所请求重试 (Do) 与扫描循环失败退避 (Delay) 共用同一个 Policy
package retryx

import (
	"context"
	"time"

	"github.com/jpillora/backoff"
	"github.com/sethvargo/go-retry"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 500 * time.Millisecond
	DefaultMaxDelay    = 30 * time.Second
)

type Policy struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	BaseDelay   time.Duration `mapstructure:"base"`
	MaxDelay    time.Duration `mapstructure:"max"`
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		MaxDelay:    DefaultMaxDelay,
	}
}

// normalized 补全零值字段
func (p Policy) normalized() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultBaseDelay
	}
	if p.MaxDelay < p.BaseDelay {
		p.MaxDelay = p.BaseDelay
	}
	return p
}

// Retryable 标记 err 可重试, 未标记的错误立即返回
func Retryable(err error) error {
	return retry.RetryableError(err)
}

// Do 最多执行 MaxAttempts 次 fn, 间隔指数增长并以 MaxDelay 封顶
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	p = p.normalized()
	b := retry.NewExponential(p.BaseDelay)
	b = retry.WithMaxRetries(uint64(p.MaxAttempts-1), b)
	b = retry.WithCappedDuration(p.MaxDelay, b)
	return retry.Do(ctx, b, fn)
}

// Delay 第 attempt 次(从 0 开始)失败后的等待时间
func (p Policy) Delay(attempt int) time.Duration {
	p = p.normalized()
	if attempt < 0 {
		attempt = 0
	}
	b := &backoff.Backoff{
		Min:    p.BaseDelay,
		Max:    p.MaxDelay,
		Factor: 2,
	}
	return b.ForAttempt(float64(attempt))
}
