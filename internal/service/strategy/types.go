package strategy

import (
	"time"

	"github.com/KNICEX/pressure-radar/internal/service/exchange"
	"github.com/shopspring/decimal"
)

// AlertType 异动类型
type AlertType string

const (
	// BuyInRed 阴线里主动买入占优, 下跌中有人接盘
	BuyInRed AlertType = "BUY_IN_RED"
	// SellInGreen 阳线里主动卖出占优, 上涨中有人出货
	SellInGreen AlertType = "SELL_IN_GREEN"
)

type DecisionKind int

const (
	NoAlert DecisionKind = iota
	Suppressed
	Alerted
)

func (k DecisionKind) String() string {
	switch k {
	case NoAlert:
		return "no_alert"
	case Suppressed:
		return "suppressed"
	case Alerted:
		return "alert"
	default:
		return "unknown"
	}
}

type SuppressReason string

const (
	AlreadyTriggered SuppressReason = "already_triggered"
	InCooldown       SuppressReason = "in_cooldown"
)

// Alert 需要推送出去的异动
type Alert struct {
	Type         AlertType
	Exchange     string
	ExchangeName string
	Symbol       string
	Price        decimal.Decimal
	Volume       decimal.Decimal
	BuyVolume    decimal.Decimal
	SellVolume   decimal.Decimal
	Ratio        decimal.Decimal // 触发时的买卖比, BuyInRed 是 buy/sell, SellInGreen 是 sell/buy
	Threshold    decimal.Decimal
	CandleTime   time.Time
	Bucket       time.Time
}

// Decision 一次评估的结果
// Kind == Alerted 时 Alert 有效; Kind == Suppressed 时 Reason 有效, InCooldown 还会带 Remaining
type Decision struct {
	Kind      DecisionKind
	Type      AlertType
	Reason    SuppressReason
	Remaining time.Duration
	Alert     Alert
}

// EvaluateInput 单个交易所本轮的快照
type EvaluateInput struct {
	Candle exchange.Candle
	Bucket time.Time
	Now    time.Time
}
