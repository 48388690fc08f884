package ioc

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KNICEX/pressure-radar/internal/service/exchange"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const DefaultConfigFile = "./config/config.yaml"

var ErrInvalidConfig = errors.New("invalid config")

// InitConfig 读取 .env + yaml 配置文件, 环境变量优先
//
//	--config=./config/xxx.yaml
func InitConfig(args []string) error {
	fs := pflag.NewFlagSet("pressure-radar", pflag.ContinueOnError)
	file := fs.String("config", DefaultConfigFile, "specify config file")
	envFile := fs.String("env", ".env", "optional dotenv file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// .env 是可选的
	if err := godotenv.Load(*envFile); err != nil {
		slog.Debug("no dotenv file loaded", "file", *envFile, "error", err)
	}

	setDefaults()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for key, env := range map[string]string{
		"notifier.telegram.token":   "TG_TOKEN",
		"notifier.telegram.chat_id": "TG_CHAT_ID",
		"symbol":                    "RADAR_SYMBOL",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			return err
		}
	}

	viper.SetConfigFile(*file)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("fatal error config file: %w", err)
	}
	return validate()
}

func setDefaults() {
	viper.SetDefault("timezone", "Asia/Taipei")
	viper.SetDefault("log.level", "info")

	viper.SetDefault("scan.interval", 60*time.Second)
	viper.SetDefault("scan.request_timeout", 10*time.Second)
	viper.SetDefault("scan.cycle_timeout", 30*time.Second)
	viper.SetDefault("scan.backoff_after", 3)
	viper.SetDefault("scan.max_consecutive_failures", 30)

	viper.SetDefault("rule.threshold", 1.8)
	viper.SetDefault("rule.cooldown", 60*time.Second)
	viper.SetDefault("rule.dedup_retention", 30*time.Minute)

	viper.SetDefault("notifier.driver", "telegram")
	viper.SetDefault("notifier.timeout", 10*time.Second)

	viper.SetDefault("http.timeout", 10*time.Second)
	viper.SetDefault("http.user_agent", "pressure-radar/1.0")
	viper.SetDefault("http.retry.max_attempts", 2)
	viper.SetDefault("http.retry.base", 300*time.Millisecond)
	viper.SetDefault("http.retry.max", 2*time.Second)
}

func validate() error {
	symbol := strings.TrimSpace(viper.GetString("symbol"))
	if symbol == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidConfig)
	}
	// 各交易所的原生写法要从 base/quote 拼出来
	if exchange.ParseTradingPair(symbol).IsZero() {
		return fmt.Errorf("%w: symbol %q has no known quote currency", ErrInvalidConfig, symbol)
	}
	if _, err := time.LoadLocation(viper.GetString("timezone")); err != nil {
		return fmt.Errorf("%w: timezone: %v", ErrInvalidConfig, err)
	}
	if viper.GetFloat64("rule.threshold") <= 0 {
		return fmt.Errorf("%w: rule.threshold must be positive", ErrInvalidConfig)
	}
	if viper.GetDuration("scan.interval") <= 0 {
		return fmt.Errorf("%w: scan.interval must be positive", ErrInvalidConfig)
	}
	switch driver := viper.GetString("notifier.driver"); driver {
	case "telegram", "console":
	default:
		return fmt.Errorf("%w: unknown notifier driver %q", ErrInvalidConfig, driver)
	}
	return nil
}

// InitLocation 通知和去重分钟使用的时区
func InitLocation() *time.Location {
	loc, err := time.LoadLocation(viper.GetString("timezone"))
	if err != nil {
		panic(err)
	}
	return loc
}
