package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/KNICEX/pressure-radar/internal/schedule"
	"github.com/KNICEX/pressure-radar/internal/service/notification"
	"github.com/KNICEX/pressure-radar/internal/service/strategy"
)

var _ schedule.Task = (*PressureMonitorTask)(nil)

// PressureMonitorTask 周期扫描所有交易所, 评估买卖压力并推送告警
// 各轮严格串行, dedup / cooldown 只在 Run 所在的 goroutine 里读写
type PressureMonitorTask struct {
	cfg      Config
	scanner  Scanner
	analyzer Evaluator
	sender   notification.Sender

	clock         Clock
	loc           *time.Location
	logger        *slog.Logger
	notifyTimeout time.Duration

	dedup    *strategy.DedupTracker
	cooldown *strategy.Cooldown

	state atomic.Int32
	mu    sync.Mutex
	stats Stats
}

type Option func(t *PressureMonitorTask)

func WithClock(c Clock) Option {
	return func(t *PressureMonitorTask) {
		t.clock = c
	}
}

func WithLocation(loc *time.Location) Option {
	return func(t *PressureMonitorTask) {
		if loc != nil {
			t.loc = loc
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(t *PressureMonitorTask) {
		if l != nil {
			t.logger = l
		}
	}
}

func WithNotifyTimeout(d time.Duration) Option {
	return func(t *PressureMonitorTask) {
		if d > 0 {
			t.notifyTimeout = d
		}
	}
}

// WithDedupRetention 去重记录保留多久
func WithDedupRetention(d time.Duration) Option {
	return func(t *PressureMonitorTask) {
		t.dedup = strategy.NewDedupTracker(d)
	}
}

func NewPressureMonitorTask(cfg Config, sc Scanner, analyzer Evaluator, sender notification.Sender, opts ...Option) *PressureMonitorTask {
	t := &PressureMonitorTask{
		cfg:           cfg.WithDefaults(),
		scanner:       sc,
		analyzer:      analyzer,
		sender:        sender,
		clock:         realClock{},
		loc:           time.Local,
		logger:        slog.Default(),
		notifyTimeout: DefaultNotifyTimeout,
		dedup:         strategy.NewDedupTracker(strategy.DefaultDedupRetention),
		cooldown:      strategy.NewCooldown(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *PressureMonitorTask) Name() string {
	return "pressure monitor task"
}

func (t *PressureMonitorTask) State() State {
	return State(t.state.Load())
}

func (t *PressureMonitorTask) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

func (t *PressureMonitorTask) setState(s State) {
	t.state.Store(int32(s))
}

func (t *PressureMonitorTask) update(fn func(s *Stats)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(&t.stats)
}

// Run 阻塞直到 ctx 取消或者连续失败次数超过上限
// ctx 取消时正在执行的一轮会跑完, 然后发送停止总结
func (t *PressureMonitorTask) Run(ctx context.Context) error {
	t.setState(StateStarting)
	started := t.clock.Now()
	t.update(func(s *Stats) { s.Started = started })

	t.logger.Info("pressure monitor starting",
		"symbol", t.scanner.Symbol(),
		"exchanges", t.scanner.IDs(),
		"threshold", t.analyzer.Threshold(),
		"cooldown", t.analyzer.Cooldown(),
		"interval", t.cfg.Interval,
	)
	t.notify(context.WithoutCancel(ctx), FormatStart(StartInfo{
		Symbol:    t.scanner.Symbol(),
		Exchanges: t.scanner.Names(),
		Threshold: t.analyzer.Threshold().String(),
		Cooldown:  t.analyzer.Cooldown(),
		Interval:  t.cfg.Interval,
		Time:      started.In(t.loc),
	}))

	t.setState(StateRunning)
	var (
		runErr   error
		reason   = "收到停止信号"
		failures int
	)

loop:
	for ctx.Err() == nil {
		if t.runCycle(ctx) {
			failures = 0
		} else {
			failures++
			t.update(func(s *Stats) { s.FailedCycles++ })
		}

		if failures >= t.cfg.MaxConsecutiveFailures {
			runErr = fmt.Errorf("%w: %d in a row", ErrTooManyFailures, failures)
			reason = fmt.Sprintf("连续 %d 轮扫描失败", failures)
			t.logger.Error("pressure monitor giving up", "failures", failures)
			break
		}
		if ctx.Err() != nil {
			break
		}

		wait := t.nextWait(failures)
		t.setState(StateWaiting)
		t.logger.Debug("waiting for next cycle", "wait", wait, "failures", failures)
		select {
		case <-ctx.Done():
			break loop
		case <-t.clock.After(wait):
		}
		t.setState(StateRunning)
	}

	t.setState(StateStopping)
	stopped := t.clock.Now()
	stats := t.Stats()
	t.logger.Info("pressure monitor stopping",
		"reason", reason,
		"cycles", stats.Cycles,
		"alerts", stats.Alerts,
		"alerts_failed", stats.AlertsFailed,
		"scan_errors", stats.ScanErrors,
		"notify_errors", stats.NotifyErrors,
	)
	t.notify(context.WithoutCancel(ctx), FormatStop(StopInfo{
		Symbol:  t.scanner.Symbol(),
		Stats:   stats,
		Elapsed: stopped.Sub(started),
		Reason:  reason,
		Time:    stopped.In(t.loc),
	}))
	t.setState(StateStopped)
	return runErr
}

// runCycle 执行一轮扫描 + 评估, 返回是否拿到了数据
func (t *PressureMonitorTask) runCycle(parent context.Context) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("scan cycle panic", "panic", r)
			ok = false
		}
	}()

	// 停止信号不打断正在进行的一轮, 但整轮仍受 CycleTimeout 约束
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), t.cfg.CycleTimeout)
	defer cancel()

	now := t.clock.Now()
	bucket := strategy.BucketOf(now, t.loc)

	t.setState(StateScanning)
	res, err := t.scanner.Scan(ctx, t.scanner.IDs())
	t.update(func(s *Stats) {
		s.Cycles++
		s.ScanErrors += len(res.Failures)
	})
	if err != nil {
		t.logger.Error("scan failed", "error", err)
		return false
	}
	if res.Empty() {
		t.logger.Warn("all exchanges failed", "total", res.Total)
		return false
	}

	t.setState(StateEvaluating)
	evalNow := t.clock.Now()
	for _, c := range res.Candles {
		dec := t.analyzer.Evaluate(strategy.EvaluateInput{Candle: c, Bucket: bucket, Now: evalNow}, t.dedup, t.cooldown)
		switch dec.Kind {
		case strategy.Alerted:
			t.logger.Info("pressure alert",
				"type", dec.Alert.Type,
				"exchange", dec.Alert.Exchange,
				"price", dec.Alert.Price,
				"ratio", dec.Alert.Ratio.StringFixed(2),
			)
			// 推送只受 notifyTimeout 约束, 扫描用掉的 CycleTimeout 不影响告警送达
			if t.notify(context.WithoutCancel(parent), FormatAlert(dec.Alert, t.loc)) {
				t.update(func(s *Stats) { s.Alerts++ })
			} else {
				t.update(func(s *Stats) { s.AlertsFailed++ })
			}
		case strategy.Suppressed:
			t.update(func(s *Stats) { s.Suppressed++ })
			t.logger.Debug("alert suppressed",
				"exchange", c.Exchange,
				"type", dec.Type,
				"reason", dec.Reason,
				"remaining", dec.Remaining,
			)
		}
	}

	if n := t.dedup.Prune(evalNow); n > 0 {
		t.logger.Debug("pruned dedup buckets", "removed", n)
	}
	return true
}

// nextWait 对齐到下一个 Interval 整点, 连续失败达到 BackoffAfter 后按指数退避拉长
func (t *PressureMonitorTask) nextWait(failures int) time.Duration {
	now := t.clock.Now()
	wait := now.Truncate(t.cfg.Interval).Add(t.cfg.Interval).Sub(now)
	if failures >= t.cfg.BackoffAfter {
		wait = max(wait, t.cfg.Backoff.Delay(failures-t.cfg.BackoffAfter))
	}
	return wait
}

func (t *PressureMonitorTask) notify(ctx context.Context, text string) bool {
	ctx, cancel := context.WithTimeout(ctx, t.notifyTimeout)
	defer cancel()
	if err := t.sender.SendText(ctx, text); err != nil {
		t.update(func(s *Stats) { s.NotifyErrors++ })
		t.logger.Error("failed to send notification", "error", err)
		return false
	}
	return true
}
