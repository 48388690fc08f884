package exchange

import (
	"fmt"

	"github.com/KNICEX/pressure-radar/pkg/decimalx"
	"github.com/shopspring/decimal"
)

// RatioSentinel 只有单边成交时的买卖比
var RatioSentinel = decimalx.MustFromString("99")

// IsRed 阴线
func (c Candle) IsRed() bool {
	return c.Close.LessThan(c.Open)
}

// IsGreen 阳线
func (c Candle) IsGreen() bool {
	return c.Close.GreaterThan(c.Open)
}

func (c Candle) IsDoji() bool {
	return c.Close.Equal(c.Open)
}

func (c Candle) BuySellRatio() decimal.Decimal {
	return decimalx.Ratio(c.BuyVolume, c.SellVolume, RatioSentinel)
}

func (c Candle) SellBuyRatio() decimal.Decimal {
	return decimalx.Ratio(c.SellVolume, c.BuyVolume, RatioSentinel)
}

// HasTape 是否拿到了逐笔成交的买卖拆分
func (c Candle) HasTape() bool {
	return c.BuyVolume.IsPositive() || c.SellVolume.IsPositive()
}

func (c Candle) Color() string {
	switch {
	case c.IsRed():
		return "red"
	case c.IsGreen():
		return "green"
	default:
		return "doji"
	}
}

func (c Candle) Validate() error {
	checks := []struct {
		name string
		v    decimal.Decimal
	}{
		{"open", c.Open},
		{"high", c.High},
		{"low", c.Low},
		{"close", c.Close},
		{"volume", c.Volume},
		{"buy_volume", c.BuyVolume},
		{"sell_volume", c.SellVolume},
	}
	for _, check := range checks {
		if check.v.IsNegative() {
			return fmt.Errorf("%w: negative %s %s", ErrInvalidCandle, check.name, check.v)
		}
	}
	if !c.Close.IsPositive() {
		return fmt.Errorf("%w: close price must be positive", ErrInvalidCandle)
	}
	if c.TradeCount < 0 {
		return fmt.Errorf("%w: negative trade count", ErrInvalidCandle)
	}
	return nil
}
