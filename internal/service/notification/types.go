package notification

import (
	"context"
	"errors"
)

var (
	ErrMissingCredentials = errors.New("missing notifier credentials")
	ErrSendFailed         = errors.New("send notification failed")
)

// Sender 推送一条文本消息, 文本可以带 Telegram 支持的 HTML 标签
type Sender interface {
	SendText(ctx context.Context, text string) error
}
