package decimalx

import "github.com/shopspring/decimal"

func MustFromString(s string) decimal.Decimal {
	f, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return f
}

// Ratio 计算 a/b
// b 为 0 时: a > 0 返回 sentinel, a 也为 0 返回 1
func Ratio(a, b, sentinel decimal.Decimal) decimal.Decimal {
	if b.IsPositive() {
		return a.Div(b)
	}
	if a.IsPositive() {
		return sentinel
	}
	return decimal.NewFromInt(1)
}
