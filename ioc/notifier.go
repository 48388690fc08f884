package ioc

import (
	"net/http"

	"github.com/KNICEX/pressure-radar/internal/service/notification"
	"github.com/KNICEX/pressure-radar/internal/service/notification/telegram"
	"github.com/spf13/viper"
)

// InitSender driver=console 只用于本地调试, 必须显式配置
func InitSender() (notification.Sender, error) {
	if viper.GetString("notifier.driver") == "console" {
		return notification.NewConsoleSender(nil), nil
	}
	cfg := telegram.Config{
		Token:   viper.GetString("notifier.telegram.token"),
		ChatID:  viper.GetString("notifier.telegram.chat_id"),
		BaseURL: viper.GetString("notifier.telegram.base_url"),
	}
	return telegram.NewSender(cfg, &http.Client{Timeout: viper.GetDuration("notifier.timeout")})
}
