package notification

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"sync"
)

var _ Sender = (*ConsoleSender)(nil)

var htmlTag = regexp.MustCompile(`</?[a-zA-Z]+[^>]*>`)

// ConsoleSender 把消息打印到终端, 本地调试用
type ConsoleSender struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsoleSender(out io.Writer) *ConsoleSender {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleSender{out: out}
}

func (c *ConsoleSender) SendText(ctx context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.out, "%s\n\n", htmlTag.ReplaceAllString(text, ""))
	return err
}
