package monitor

import (
	"context"
	"errors"
	"time"

	"github.com/KNICEX/pressure-radar/internal/service/scanner"
	"github.com/KNICEX/pressure-radar/internal/service/strategy"
	"github.com/KNICEX/pressure-radar/pkg/retryx"
	"github.com/shopspring/decimal"
)

var ErrTooManyFailures = errors.New("too many consecutive failed scan cycles")

const (
	DefaultInterval               = 60 * time.Second
	DefaultCycleTimeout           = 30 * time.Second
	DefaultBackoffAfter           = 3
	DefaultMaxConsecutiveFailures = 30
	DefaultNotifyTimeout          = 10 * time.Second
)

// Scanner 一轮并发抓取, 由 scanner.Scanner 实现
type Scanner interface {
	Symbol() string
	IDs() []string
	Names() []string
	Scan(ctx context.Context, ids []string) (scanner.Result, error)
}

// Evaluator 规则引擎, 由 strategy.PressureAnalyzer 实现
type Evaluator interface {
	Evaluate(in strategy.EvaluateInput, dedup *strategy.DedupTracker, cd *strategy.Cooldown) strategy.Decision
	Threshold() decimal.Decimal
	Cooldown() time.Duration
}

type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

type Config struct {
	Interval               time.Duration `mapstructure:"interval"`
	RequestTimeout         time.Duration `mapstructure:"request_timeout"`
	CycleTimeout           time.Duration `mapstructure:"cycle_timeout"`
	BackoffAfter           int           `mapstructure:"backoff_after"`
	MaxConsecutiveFailures int           `mapstructure:"max_consecutive_failures"`
	Backoff                retryx.Policy `mapstructure:"backoff"`
}

func (c Config) WithDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.CycleTimeout <= 0 {
		c.CycleTimeout = DefaultCycleTimeout
	}
	if c.BackoffAfter <= 0 {
		c.BackoffAfter = DefaultBackoffAfter
	}
	if c.MaxConsecutiveFailures <= 0 {
		c.MaxConsecutiveFailures = DefaultMaxConsecutiveFailures
	}
	if c.Backoff.BaseDelay <= 0 {
		c.Backoff.BaseDelay = c.Interval
	}
	if c.Backoff.MaxDelay <= 0 {
		c.Backoff.MaxDelay = 10 * c.Interval
	}
	return c
}

type State int32

const (
	StateStarting State = iota
	StateRunning
	StateScanning
	StateEvaluating
	StateWaiting
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "STARTING"
	case StateRunning:
		return "RUNNING"
	case StateScanning:
		return "SCANNING"
	case StateEvaluating:
		return "EVALUATING"
	case StateWaiting:
		return "WAITING"
	case StateStopping:
		return "STOPPING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// Stats 运行计数
type Stats struct {
	Started      time.Time
	Cycles       int // 已完成的扫描轮数
	FailedCycles int // 没有拿到任何数据或者 panic 的轮数
	Alerts       int // 已送达的告警
	AlertsFailed int // 推送失败的告警, 去重和冷却已经记录
	Suppressed   int
	ScanErrors   int // 单个交易所抓取失败次数
	NotifyErrors int
}
