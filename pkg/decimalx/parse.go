package decimalx

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Parse 解析交易所返回的数字字符串, 出错时带上字段名
func Parse(field, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, fmt.Errorf("field %s is empty", field)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("field %s: %w", field, err)
	}
	return d, nil
}

// Fields 按顺序解析多个字段, name/value 成对出现
//
//	open, high, err := decimalx.Fields("open", t.Open, "high", t.High)
func Fields(pairs ...string) ([]decimal.Decimal, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("decimalx.Fields: odd number of arguments")
	}
	res := make([]decimal.Decimal, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		d, err := Parse(pairs[i], pairs[i+1])
		if err != nil {
			return nil, err
		}
		res = append(res, d)
	}
	return res, nil
}
