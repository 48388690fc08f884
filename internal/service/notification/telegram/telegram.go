// Package telegram Telegram Bot API 推送
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/KNICEX/pressure-radar/internal/service/notification"
)

const (
	DefaultBaseURL = "https://api.telegram.org"
	DefaultTimeout = 10 * time.Second
)

var _ notification.Sender = (*Sender)(nil)

type Config struct {
	Token   string `mapstructure:"token"`
	ChatID  string `mapstructure:"chat_id"`
	BaseURL string `mapstructure:"base_url"`
}

type Sender struct {
	cli      *http.Client
	endpoint string
	chatID   string
}

// NewSender token / chat_id 缺失时直接报错, 不做静默降级
func NewSender(cfg Config, cli *http.Client) (*Sender, error) {
	if strings.TrimSpace(cfg.Token) == "" || strings.TrimSpace(cfg.ChatID) == "" {
		return nil, fmt.Errorf("%w: telegram token and chat_id are required (TG_TOKEN, TG_CHAT_ID)", notification.ErrMissingCredentials)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cli == nil {
		cli = &http.Client{Timeout: DefaultTimeout}
	}
	return &Sender{
		cli:      cli,
		endpoint: fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(cfg.BaseURL, "/"), cfg.Token),
		chatID:   cfg.ChatID,
	}, nil
}

type sendMessageReq struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type sendMessageResp struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

func (s *Sender) SendText(ctx context.Context, text string) error {
	body, err := json.Marshal(sendMessageReq{
		ChatID:                s.chatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.cli.Do(req)
	if err != nil {
		// url 里带 token, 不能原样返回
		return fmt.Errorf("%w: %s", notification.ErrSendFailed, redact(err.Error(), s.endpoint))
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var res sendMessageResp
	_ = json.Unmarshal(raw, &res)
	if resp.StatusCode != http.StatusOK || !res.OK {
		return fmt.Errorf("%w: status %d, error_code %d, %s", notification.ErrSendFailed, resp.StatusCode, res.ErrorCode, res.Description)
	}
	return nil
}

func redact(msg, endpoint string) string {
	return strings.ReplaceAll(msg, endpoint, "<telegram sendMessage>")
}
