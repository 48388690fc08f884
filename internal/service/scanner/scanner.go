// Package scanner 并发抓取所有交易所的行情快照
package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/KNICEX/pressure-radar/internal/service/exchange"
	"github.com/samber/lo"
	"github.com/sourcegraph/conc/pool"
)

type Scanner struct {
	symbol         string
	adapters       map[string]exchange.Adapter
	ids            []string
	requestTimeout time.Duration
	logger         *slog.Logger
	now            func() time.Time
}

type Option func(s *Scanner)

func WithRequestTimeout(d time.Duration) Option {
	return func(s *Scanner) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Scanner) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Scanner) {
		if now != nil {
			s.now = now
		}
	}
}

func NewScanner(symbol string, adapters []exchange.Adapter, opts ...Option) *Scanner {
	s := &Scanner{
		symbol:         symbol,
		adapters:       lo.KeyBy(adapters, func(a exchange.Adapter) string { return a.ID() }),
		ids:            lo.Map(adapters, func(a exchange.Adapter, _ int) string { return a.ID() }),
		requestTimeout: exchange.DefaultRequestTimeout,
		logger:         slog.Default(),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scanner) Symbol() string {
	return s.symbol
}

// IDs 配置顺序的交易所 id
func (s *Scanner) IDs() []string {
	return s.ids
}

// Names 交易所展示名, 用于通知
func (s *Scanner) Names() []string {
	return lo.Map(s.ids, func(id string, _ int) string { return s.adapters[id].Name() })
}

type outcome struct {
	id     string
	candle exchange.Candle
	err    error
}

// Scan 每个交易所一个 goroutine, 各自带 requestTimeout
// 单个交易所失败 / 超时 / panic 只记录在 Failures 里, 不影响其他交易所
func (s *Scanner) Scan(ctx context.Context, ids []string) (Result, error) {
	if len(ids) == 0 {
		return Result{}, ErrNoExchanges
	}

	ids = lo.Uniq(ids)
	res := Result{Total: len(ids), Started: s.now()}
	p := pool.NewWithResults[outcome]()
	for _, id := range ids {
		id := id
		p.Go(func() outcome {
			return s.fetch(ctx, id)
		})
	}
	outcomes := p.Wait()
	res.Elapsed = s.now().Sub(res.Started)

	// 合并按传入顺序进行, 日志顺序稳定
	byID := lo.KeyBy(outcomes, func(o outcome) string { return o.id })
	for _, id := range ids {
		o := byID[id]
		if o.err != nil {
			res.Failures = append(res.Failures, Failure{Exchange: id, Err: o.err})
			s.logger.Warn("exchange fetch failed", "exchange", id, "symbol", s.symbol, "error", o.err)
			continue
		}
		c := o.candle
		res.Candles = append(res.Candles, c)
		s.logger.Info("exchange snapshot",
			"exchange", c.ExchangeName,
			"symbol", c.Symbol,
			"close", c.Close,
			"color", c.Color(),
			"buy_volume", c.BuyVolume,
			"sell_volume", c.SellVolume,
			"buy_sell_ratio", c.BuySellRatio().StringFixed(2),
		)
	}

	s.logger.Info("scan finished",
		"symbol", s.symbol,
		"succeeded", fmt.Sprintf("%d/%d", res.Succeeded(), res.Total),
		"elapsed", res.Elapsed,
	)
	return res, nil
}

func (s *Scanner) fetch(ctx context.Context, id string) outcome {
	o := outcome{id: id}
	a, ok := s.adapters[id]
	if !ok {
		o.err = fmt.Errorf("%w: %s", exchange.ErrUnknownExchange, id)
		return o
	}

	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	type fetched struct {
		candle exchange.Candle
		err    error
	}
	// adapter 不理会 ctx 时也要按时返回
	ch := make(chan fetched, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- fetched{err: fmt.Errorf("adapter panic: %v", r)}
			}
		}()
		c, err := a.FetchCandle(ctx, s.symbol)
		ch <- fetched{candle: c, err: err}
	}()

	select {
	case f := <-ch:
		o.candle, o.err = f.candle, f.err
	case <-ctx.Done():
		o.err = fmt.Errorf("fetch %s: %w", id, ctx.Err())
	}
	return o
}
