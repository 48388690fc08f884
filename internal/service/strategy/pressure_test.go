package strategy

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/KNICEX/pressure-radar/internal/service/exchange"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	taipei, _ = time.LoadLocation("Asia/Taipei")
	t0        = time.Date(2025, 3, 1, 9, 30, 5, 0, time.UTC)
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func redCandle(exchangeID string, buy, sell string) exchange.Candle {
	return exchange.Candle{
		Exchange:     exchangeID,
		ExchangeName: exchangeID,
		Symbol:       "DUSKUSDT",
		Open:         d("0.110"),
		High:         d("0.112"),
		Low:          d("0.098"),
		Close:        d("0.100"),
		Volume:       d("1000"),
		BuyVolume:    d(buy),
		SellVolume:   d(sell),
		TradeCount:   50,
		FetchTime:    t0,
	}
}

func greenCandle(exchangeID string, buy, sell string) exchange.Candle {
	c := redCandle(exchangeID, buy, sell)
	c.Open, c.Close = c.Close, c.Open
	return c
}

func newAnalyzer() *PressureAnalyzer {
	return NewPressureAnalyzer(Config{Threshold: 1.8, Cooldown: 60 * time.Second}, nil)
}

func TestPressureAnalyzer_Evaluate_Rules(t *testing.T) {
	testCases := []struct {
		name     string
		candle   exchange.Candle
		wantKind DecisionKind
		wantType AlertType
		wantRate string
	}{
		{"buy pressure in red", redCandle("okx", "80", "20"), Alerted, BuyInRed, "4"},
		{"sell pressure in green", greenCandle("okx", "10", "30"), Alerted, SellInGreen, "3"},
		{"red with only buys uses sentinel", redCandle("okx", "5", "0"), Alerted, BuyInRed, "99"},
		{"red below threshold", redCandle("okx", "17", "10"), NoAlert, "", ""},
		{"ratio equal to threshold", redCandle("okx", "18", "10"), NoAlert, "", ""},
		{"green with buy pressure", greenCandle("okx", "80", "20"), NoAlert, "", ""},
		{"red with sell pressure", redCandle("okx", "20", "80"), NoAlert, "", ""},
		{"no tape", redCandle("okx", "0", "0"), NoAlert, "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a := newAnalyzer()
			dec := a.Evaluate(EvaluateInput{Candle: tc.candle, Bucket: BucketOf(t0, taipei), Now: t0},
				NewDedupTracker(time.Hour), NewCooldown())
			require.Equal(t, tc.wantKind, dec.Kind)
			if tc.wantKind != Alerted {
				return
			}
			assert.Equal(t, tc.wantType, dec.Alert.Type)
			assert.True(t, d(tc.wantRate).Equal(dec.Alert.Ratio), dec.Alert.Ratio.String())
			assert.True(t, d("1.8").Equal(dec.Alert.Threshold))
			assert.True(t, tc.candle.Close.Equal(dec.Alert.Price))
			assert.Equal(t, "DUSKUSDT", dec.Alert.Symbol)
			assert.Equal(t, t0, dec.Alert.CandleTime)
		})
	}
}

func TestPressureAnalyzer_Evaluate_DojiNeverAlerts(t *testing.T) {
	a := newAnalyzer()
	c := redCandle("okx", "1000", "0")
	c.Close = c.Open
	dec := a.Evaluate(EvaluateInput{Candle: c, Bucket: BucketOf(t0, taipei), Now: t0}, NewDedupTracker(time.Hour), NewCooldown())
	assert.Equal(t, NoAlert, dec.Kind)
}

func TestPressureAnalyzer_Evaluate_MalformedCandle(t *testing.T) {
	a := newAnalyzer()
	dedup := NewDedupTracker(time.Hour)
	c := redCandle("okx", "80", "20")
	c.SellVolume = d("-20")

	dec := a.Evaluate(EvaluateInput{Candle: c, Bucket: BucketOf(t0, taipei), Now: t0}, dedup, NewCooldown())
	assert.Equal(t, NoAlert, dec.Kind)
	assert.Equal(t, 0, dedup.Len())
}

func TestPressureAnalyzer_Evaluate_SameBucketAlreadyTriggered(t *testing.T) {
	a := newAnalyzer()
	dedup, cd := NewDedupTracker(time.Hour), NewCooldown()
	bucket := BucketOf(t0, taipei)
	in := EvaluateInput{Candle: redCandle("okx", "80", "20"), Bucket: bucket, Now: t0}

	first := a.Evaluate(in, dedup, cd)
	require.Equal(t, Alerted, first.Kind)

	// 冷却已经过了也不能在同一分钟重复告警
	in.Now = t0.Add(2 * time.Minute)
	second := a.Evaluate(in, dedup, cd)
	assert.Equal(t, Suppressed, second.Kind)
	assert.Equal(t, AlreadyTriggered, second.Reason)

	// 被去重拦下的评估不刷新冷却时间
	assert.Equal(t, 58*time.Second, cd.Remaining(BuyInRed, t0.Add(2*time.Second), time.Minute))

	// 下一分钟重新评估
	in.Bucket = bucket.Add(time.Minute)
	third := a.Evaluate(in, dedup, cd)
	assert.Equal(t, Alerted, third.Kind)
}

func TestPressureAnalyzer_Evaluate_CooldownAcrossExchanges(t *testing.T) {
	a := newAnalyzer()
	dedup, cd := NewDedupTracker(time.Hour), NewCooldown()
	bucket := BucketOf(t0, taipei)

	first := a.Evaluate(EvaluateInput{Candle: redCandle("okx", "80", "20"), Bucket: bucket, Now: t0}, dedup, cd)
	require.Equal(t, Alerted, first.Kind)

	second := a.Evaluate(EvaluateInput{Candle: redCandle("bybit", "80", "20"), Bucket: bucket, Now: t0.Add(10 * time.Second)}, dedup, cd)
	assert.Equal(t, Suppressed, second.Kind)
	assert.Equal(t, InCooldown, second.Reason)
	assert.Equal(t, BuyInRed, second.Type)
	assert.Equal(t, 50*time.Second, second.Remaining)
	// 冷却中也要记录去重
	assert.True(t, dedup.Triggered(bucket, "bybit"))

	// 另一种类型不受影响
	other := a.Evaluate(EvaluateInput{Candle: greenCandle("gateio", "10", "90"), Bucket: bucket, Now: t0.Add(10 * time.Second)}, dedup, cd)
	assert.Equal(t, Alerted, other.Kind)

	later := t0.Add(61 * time.Second)
	third := a.Evaluate(EvaluateInput{Candle: redCandle("mexc", "80", "20"), Bucket: BucketOf(later, taipei), Now: later}, dedup, cd)
	assert.Equal(t, Alerted, third.Kind)
}

func TestDedupTracker_Prune(t *testing.T) {
	dedup := NewDedupTracker(30 * time.Minute)
	for i := 0; i < 90; i++ {
		dedup.Mark(BucketOf(t0.Add(time.Duration(i)*time.Minute), taipei), "okx")
	}
	require.Equal(t, 90, dedup.Len())

	now := t0.Add(89 * time.Minute)
	removed := dedup.Prune(now)
	assert.Equal(t, 60, removed)
	assert.Equal(t, 30, dedup.Len())
	assert.True(t, dedup.Triggered(BucketOf(now, taipei), "okx"))
	assert.False(t, dedup.Triggered(BucketOf(t0, taipei), "okx"))
}

func TestBucketOf(t *testing.T) {
	b := BucketOf(time.Date(2025, 3, 1, 1, 30, 59, 999, time.UTC), taipei)
	assert.Equal(t, "2025-03-01 09:30:00", b.Format(time.DateTime))
	assert.Equal(t, b, BucketOf(time.Date(2025, 3, 1, 1, 30, 0, 0, time.UTC), taipei))
}

func TestConfig_WithDefaults(t *testing.T) {
	cfg := Config{}.WithDefaults()
	assert.Equal(t, DefaultThreshold, cfg.Threshold)
	assert.Equal(t, DefaultCooldown, cfg.Cooldown)
	assert.Equal(t, DefaultDedupRetention, cfg.DedupRetention)
}
