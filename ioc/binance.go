package ioc

import (
	"github.com/KNICEX/pressure-radar/internal/service/exchange"
	binanceadapter "github.com/KNICEX/pressure-radar/internal/service/exchange/binance"
	"github.com/adshao/go-binance/v2"
	"github.com/spf13/viper"
)

// InitBinanceCli 只读行情不需要 key, 配置了也可以带上以提高限额
func InitBinanceCli() *binance.Client {
	type Config struct {
		ApiKey    string `mapstructure:"api_key"`
		ApiSecret string `mapstructure:"api_secret"`
	}

	var cfg Config
	if err := viper.UnmarshalKey("cex.binance", &cfg); err != nil {
		panic(err)
	}

	return binance.NewClient(cfg.ApiKey, cfg.ApiSecret)
}

func registerBinance(r *exchange.Registry) {
	r.Register(binanceadapter.ID, func(cfg exchange.AdapterConfig, deps exchange.Deps) (exchange.Adapter, error) {
		return binanceadapter.NewWithClient(InitBinanceCli(), exchange.NewBaseAdapter(cfg, deps)), nil
	})
}
