package ioc

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KNICEX/pressure-radar/internal/service/exchange"
	"github.com/KNICEX/pressure-radar/internal/service/monitor"
	"github.com/KNICEX/pressure-radar/internal/service/notification"
	"github.com/KNICEX/pressure-radar/internal/service/scanner"
	"github.com/KNICEX/pressure-radar/internal/service/strategy"
	"github.com/spf13/viper"
)

func InitScanner(adapters []exchange.Adapter, logger *slog.Logger) *scanner.Scanner {
	return scanner.NewScanner(
		strings.ToUpper(viper.GetString("symbol")),
		adapters,
		scanner.WithRequestTimeout(viper.GetDuration("scan.request_timeout")),
		scanner.WithLogger(logger),
	)
}

func InitRuleConfig() strategy.Config {
	return strategy.Config{
		Threshold:      viper.GetFloat64("rule.threshold"),
		Cooldown:       viper.GetDuration("rule.cooldown"),
		DedupRetention: viper.GetDuration("rule.dedup_retention"),
	}.WithDefaults()
}

func InitAnalyzer(cfg strategy.Config, logger *slog.Logger) *strategy.PressureAnalyzer {
	return strategy.NewPressureAnalyzer(cfg, logger)
}

func InitMonitorTask(sc *scanner.Scanner, analyzer *strategy.PressureAnalyzer, sender notification.Sender,
	rule strategy.Config, loc *time.Location, logger *slog.Logger) (*monitor.PressureMonitorTask, error) {
	// 逐个读取, 这样文件里没写的 key 也能拿到 SetDefault 的值
	cfg := monitor.Config{
		Interval:               viper.GetDuration("scan.interval"),
		RequestTimeout:         viper.GetDuration("scan.request_timeout"),
		CycleTimeout:           viper.GetDuration("scan.cycle_timeout"),
		BackoffAfter:           viper.GetInt("scan.backoff_after"),
		MaxConsecutiveFailures: viper.GetInt("scan.max_consecutive_failures"),
	}
	if err := viper.UnmarshalKey("scan.backoff", &cfg.Backoff); err != nil {
		return nil, fmt.Errorf("%w: scan.backoff: %v", ErrInvalidConfig, err)
	}
	cfg = cfg.WithDefaults()
	if cfg.RequestTimeout > cfg.CycleTimeout {
		return nil, fmt.Errorf("%w: scan.request_timeout %s exceeds scan.cycle_timeout %s", ErrInvalidConfig, cfg.RequestTimeout, cfg.CycleTimeout)
	}

	return monitor.NewPressureMonitorTask(cfg, sc, analyzer, sender,
		monitor.WithLocation(loc),
		monitor.WithLogger(logger),
		monitor.WithNotifyTimeout(viper.GetDuration("notifier.timeout")),
		monitor.WithDedupRetention(rule.DedupRetention),
	), nil
}
