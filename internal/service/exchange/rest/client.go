// Package rest 交易所公开 REST 接口的 JSON 客户端
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/KNICEX/pressure-radar/internal/service/exchange"
	"github.com/KNICEX/pressure-radar/pkg/retryx"
	"golang.org/x/time/rate"
)

const (
	maxBodySize = 4 << 20
	burstSize   = 2
)

type Client struct {
	id        string
	http      *http.Client
	baseURL   string
	userAgent string
	limiter   *rate.Limiter
	retry     retryx.Policy
	logger    *slog.Logger
}

func NewClient(cfg exchange.AdapterConfig, deps exchange.Deps) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%s: base_url is required", cfg.ID)
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("%s: invalid base_url: %w", cfg.ID, err)
	}
	httpCli := deps.HTTPClient
	if httpCli == nil {
		httpCli = &http.Client{Timeout: exchange.DefaultRequestTimeout}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = exchange.DefaultRequestsPerSecond
	}
	return &Client{
		id:        cfg.ID,
		http:      httpCli,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: deps.UserAgent,
		limiter:   rate.NewLimiter(rate.Limit(rps), burstSize),
		retry:     deps.Retry,
		logger:    logger,
	}, nil
}

// GetJSON GET baseURL+path 并把响应解析到 out
// 网络错误 / 429 / 5xx 会按 retry 策略重试, 其余错误立即返回
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	attempt := 0
	return c.retry.Do(ctx, func(ctx context.Context) error {
		attempt++
		err := c.get(ctx, u, out)
		if err != nil {
			c.logger.Warn("exchange request failed", "exchange", c.id, "path", path, "attempt", attempt, "error", err)
		}
		return err
	})
}

func (c *Client) get(ctx context.Context, u string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		return retryx.Retryable(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return retryx.Retryable(fmt.Errorf("read body: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return retryx.Retryable(fmt.Errorf("%w: %s", exchange.ErrRateLimited, snippet(body)))
	case resp.StatusCode >= http.StatusInternalServerError:
		return retryx.Retryable(fmt.Errorf("%w %d: %s", exchange.ErrUnexpectedStatus, resp.StatusCode, snippet(body)))
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w %d: %s", exchange.ErrUnexpectedStatus, resp.StatusCode, snippet(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", exchange.ErrMalformedResponse, err)
	}
	return nil
}

func snippet(body []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
