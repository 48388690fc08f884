package exchange

import (
	"fmt"
	"strings"
)

// TradingPair 交易对
type TradingPair struct {
	Base  string
	Quote string
}

// 常见 Quote 列表, 长的放前面避免 USDT 被识别成 USD
var knownQuotes = []string{"USDT", "BUSD", "USDC", "USD", "BTC", "ETH"}

func SplitSymbol(s string) (string, string) {
	s = strings.ToUpper(s)
	for _, q := range knownQuotes {
		if strings.HasSuffix(s, q) && len(s) > len(q) {
			return strings.TrimSuffix(s, q), q
		}
	}
	// fallback
	return s, ""
}

func ParseTradingPair(symbol string) TradingPair {
	base, quote := SplitSymbol(symbol)
	return TradingPair{Base: base, Quote: quote}
}

func (s TradingPair) IsZero() bool {
	return s.Base == "" || s.Quote == ""
}

func (s TradingPair) ToString() string {
	return fmt.Sprintf("%s%s", s.Base, s.Quote)
}

// Join 按交易所的写法拼接, 例如 OKX 的 DUSK-USDT, Gate 的 DUSK_USDT
func (s TradingPair) Join(sep string) string {
	return s.Base + sep + s.Quote
}

// WithQuote 替换计价币, 部分交易所只有 USD 市场
func (s TradingPair) WithQuote(quote string) TradingPair {
	s.Quote = quote
	return s
}
