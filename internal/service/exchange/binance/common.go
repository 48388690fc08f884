package binance

import (
	"errors"
	"fmt"

	"github.com/KNICEX/pressure-radar/internal/service/exchange"
	"github.com/KNICEX/pressure-radar/pkg/retryx"
	"github.com/adshao/go-binance/v2/common"
)

// fromBuyerMaker 买方是 maker 说明主动成交方是卖方
func fromBuyerMaker(isBuyerMaker bool) exchange.Side {
	if isBuyerMaker {
		return exchange.Sell
	}
	return exchange.Buy
}

// wrapErr SDK 错误归类, APIError 是币安明确拒绝的请求, 不重试
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case -1003:
			return retryx.Retryable(fmt.Errorf("%w: %s", exchange.ErrRateLimited, apiErr.Message))
		case 0:
			// 响应体不是币安的错误格式, 一般是网关 5xx
			return retryx.Retryable(fmt.Errorf("%w: %s", exchange.ErrUnexpectedStatus, apiErr.Message))
		}
		return fmt.Errorf("%w: binance code %d %s", exchange.ErrUnexpectedStatus, apiErr.Code, apiErr.Message)
	}
	return retryx.Retryable(err)
}
