package ioc

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/KNICEX/pressure-radar/internal/service/exchange"
	"github.com/KNICEX/pressure-radar/internal/service/exchange/bybit"
	"github.com/KNICEX/pressure-radar/internal/service/exchange/coinbase"
	"github.com/KNICEX/pressure-radar/internal/service/exchange/gateio"
	"github.com/KNICEX/pressure-radar/internal/service/exchange/kraken"
	"github.com/KNICEX/pressure-radar/internal/service/exchange/mexc"
	"github.com/KNICEX/pressure-radar/internal/service/exchange/okx"
	"github.com/KNICEX/pressure-radar/pkg/retryx"
	"github.com/spf13/viper"
)

var defaultBaseURLs = map[string]string{
	okx.ID:      "https://www.okx.com",
	bybit.ID:    "https://api.bybit.com",
	gateio.ID:   "https://api.gateio.ws",
	mexc.ID:     "https://api.mexc.com",
	kraken.ID:   "https://api.kraken.com",
	coinbase.ID: "https://api.coinbase.com",
}

// InitRegistry 新增交易所: 新建一个 adapter 包, 再在这里注册
func InitRegistry() *exchange.Registry {
	r := exchange.NewRegistry()
	r.Register(okx.ID, okx.New)
	r.Register(bybit.ID, bybit.New)
	r.Register(gateio.ID, gateio.New)
	r.Register(mexc.ID, mexc.New)
	r.Register(kraken.ID, kraken.New)
	r.Register(coinbase.ID, coinbase.New)
	registerBinance(r)
	return r
}

// InitHTTPClient 所有 adapter 共用, 连接可复用
func InitHTTPClient() *http.Client {
	return &http.Client{
		Timeout: viper.GetDuration("http.timeout"),
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        64,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

func InitAdapters(r *exchange.Registry, cli *http.Client, loc *time.Location, logger *slog.Logger) ([]exchange.Adapter, error) {
	var cfgs []exchange.AdapterConfig
	if err := viper.UnmarshalKey("exchanges", &cfgs); err != nil {
		return nil, fmt.Errorf("%w: exchanges: %v", ErrInvalidConfig, err)
	}
	for i, cfg := range cfgs {
		if cfg.BaseURL == "" {
			cfgs[i].BaseURL = defaultBaseURLs[cfg.ID]
		}
	}

	var retry retryx.Policy
	if err := viper.UnmarshalKey("http.retry", &retry); err != nil {
		return nil, fmt.Errorf("%w: http.retry: %v", ErrInvalidConfig, err)
	}

	adapters, err := r.Build(cfgs, exchange.Deps{
		HTTPClient: cli,
		UserAgent:  viper.GetString("http.user_agent"),
		Retry:      retry,
		Location:   loc,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if len(adapters) == 0 {
		return nil, fmt.Errorf("%w: no enabled exchanges, known: %v", ErrInvalidConfig, r.IDs())
	}
	return adapters, nil
}
