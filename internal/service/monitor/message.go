package monitor

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/KNICEX/pressure-radar/internal/service/strategy"
)

const timeLayout = "2006-01-02 15:04:05"

type alertTemplate struct {
	headline string
	candle   string
	hint     string
}

var alertTemplates = map[strategy.AlertType]alertTemplate{
	strategy.BuyInRed: {
		headline: "🚨 <b>阴线大量买盘 - %s</b>",
		candle:   "📉 K线：阴线下跌中出现大量主动买单",
		hint:     "🔍 可能为：机构吸筹 / 大户抄底",
	},
	strategy.SellInGreen: {
		headline: "🚨 <b>阳线大量卖盘 - %s</b>",
		candle:   "📈 K线：阳线上涨中出现大量主动卖单",
		hint:     "🔍 可能为：获利了结 / 主力出货",
	},
}

// StartInfo 启动通知需要的信息
type StartInfo struct {
	Symbol    string
	Exchanges []string
	Threshold string
	Cooldown  time.Duration
	Interval  time.Duration
	Time      time.Time
}

func FormatStart(info StartInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ <b>%s 多交易所监控启动</b>\n\n", html.EscapeString(info.Symbol))
	fmt.Fprintf(&b, "📡 交易所：%s\n", html.EscapeString(strings.Join(info.Exchanges, ", ")))
	fmt.Fprintf(&b, "🎯 触发阈值：买卖比 &gt; %s\n", info.Threshold)
	fmt.Fprintf(&b, "⏳ 冷却时间：%s\n", info.Cooldown)
	fmt.Fprintf(&b, "⏰ 扫描间隔：%s\n", info.Interval)
	fmt.Fprintf(&b, "🕒 启动时间：%s\n\n", info.Time.Format(timeLayout))
	b.WriteString("💡 系统开始 24/7 监控...")
	return b.String()
}

func FormatAlert(a strategy.Alert, loc *time.Location) string {
	tpl, ok := alertTemplates[a.Type]
	if !ok {
		tpl = alertTemplate{headline: "🚨 <b>异动 - %s</b>"}
	}
	var b strings.Builder
	fmt.Fprintf(&b, tpl.headline+"\n\n", html.EscapeString(a.Symbol))
	fmt.Fprintf(&b, "🏦 交易所：%s\n", html.EscapeString(a.ExchangeName))
	if tpl.candle != "" {
		b.WriteString(tpl.candle + "\n")
	}
	fmt.Fprintf(&b, "💰 价格：%s\n", a.Price.StringFixed(6))
	fmt.Fprintf(&b, "📊 成交量：%s\n", a.Volume.StringFixed(2))
	fmt.Fprintf(&b, "🟢 主动买入：%s\n", a.BuyVolume.StringFixed(2))
	fmt.Fprintf(&b, "🔴 主动卖出：%s\n", a.SellVolume.StringFixed(2))
	fmt.Fprintf(&b, "⚡ 比例：%s (阈值 %s)\n", a.Ratio.StringFixed(2), a.Threshold.StringFixed(2))
	fmt.Fprintf(&b, "🕒 时间：%s\n", a.CandleTime.In(loc).Format(timeLayout))
	if tpl.hint != "" {
		b.WriteString("\n" + tpl.hint + "\n")
	}
	fmt.Fprintf(&b, "#%s", a.Type)
	return b.String()
}

// StopInfo 停止时的运行总结
type StopInfo struct {
	Symbol  string
	Stats   Stats
	Elapsed time.Duration
	Reason  string
	Time    time.Time
}

func FormatStop(info StopInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🛑 <b>%s 监控系统已停止</b>\n\n", html.EscapeString(info.Symbol))
	fmt.Fprintf(&b, "📋 原因：%s\n", html.EscapeString(info.Reason))
	fmt.Fprintf(&b, "🔄 扫描轮数：%d (失败 %d)\n", info.Stats.Cycles, info.Stats.FailedCycles)
	fmt.Fprintf(&b, "🚨 告警：%d (抑制 %d)\n", info.Stats.Alerts, info.Stats.Suppressed)
	if info.Stats.AlertsFailed > 0 {
		fmt.Fprintf(&b, "⚠️ 未送达告警：%d\n", info.Stats.AlertsFailed)
	}
	fmt.Fprintf(&b, "❌ 错误：抓取 %d / 推送 %d\n", info.Stats.ScanErrors, info.Stats.NotifyErrors)
	fmt.Fprintf(&b, "⏱ 运行时长：%s\n", info.Elapsed.Truncate(time.Second))
	fmt.Fprintf(&b, "🕒 停止时间：%s", info.Time.Format(timeLayout))
	return b.String()
}
