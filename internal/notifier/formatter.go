package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"BreakoutSentinel/internal/model"
	"BreakoutSentinel/internal/scanner"
)

const reportTimeLayout = "2006-01-02 15:04"

// FormatReport renders a scan result as a Telegram HTML message.
func FormatReport(res *scanner.Result, interval string, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	var b strings.Builder

	b.WriteString(fmt.Sprintf("⏰ <b>[%s breakout report]</b> | %s\n\n", html.EscapeString(interval), res.Started.In(loc).Format(reportTimeLayout)))

	writeSide(&b, "📈", "Long", res.Long)
	b.WriteString("\n")
	writeSide(&b, "📉", "Short", res.Short)

	b.WriteString(fmt.Sprintf("\nscanned %d | failed %d | %s\n", res.Scanned, res.Failed, res.Duration.Round(100*time.Millisecond)))
	return b.String()
}

func writeSide(b *strings.Builder, icon, label string, signals []model.Signal) {
	if len(signals) == 0 {
		b.WriteString(fmt.Sprintf("%s <b>%s:</b> none\n", icon, label))
		return
	}
	b.WriteString(fmt.Sprintf("%s <b>%s:</b>\n", icon, label))
	for _, s := range signals {
		b.WriteString(fmt.Sprintf("  - %s | time: %s | return: %+.2f%%\n", html.EscapeString(s.Symbol), s.Timestamp, s.ReturnPct))
	}
}

// FormatStatus summarises the last completed scan.
func FormatStatus(last *scanner.Result, nextRun time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	var b strings.Builder
	b.WriteString("📦 <b>Scanner status</b>\n\n")
	if last == nil {
		b.WriteString("last scan: none yet\n")
	} else {
		b.WriteString(fmt.Sprintf("last scan: %s\n", last.Started.In(loc).Format(reportTimeLayout)))
		b.WriteString(fmt.Sprintf("symbols: %d (failed %d)\n", last.Scanned, last.Failed))
		b.WriteString(fmt.Sprintf("signals: %d long / %d short\n", len(last.Long), len(last.Short)))
		b.WriteString(fmt.Sprintf("took: %s\n", last.Duration.Round(100*time.Millisecond)))
	}
	if !nextRun.IsZero() {
		b.WriteString(fmt.Sprintf("next scan: %s\n", nextRun.In(loc).Format(reportTimeLayout)))
	}
	return b.String()
}
