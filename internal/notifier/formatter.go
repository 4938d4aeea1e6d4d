package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"PriceArchive/internal/model"
)

// FormatRunReport formats a run summary into a Telegram HTML message.
func FormatRunReport(s *model.RunSummary) string {
	var b strings.Builder

	if s.Status == model.RunFailed {
		b.WriteString(fmt.Sprintf("❌ <b>PriceArchive</b> | %s %s failed\n\n", html.EscapeString(s.Pair), s.Timeframe))
		if s.Err != nil {
			b.WriteString(fmt.Sprintf("Error: %s\n", html.EscapeString(s.Err.Error())))
		}
		b.WriteString(fmt.Sprintf("Provider: %s | requests: %d\n", s.Provider, s.Requests))
		return b.String()
	}

	b.WriteString(fmt.Sprintf("📦 <b>PriceArchive</b> | %s %s\n\n", html.EscapeString(s.Pair), s.Timeframe))
	b.WriteString(fmt.Sprintf("Candles: %d (%d requests, %s)\n", s.Candles, s.Requests, s.Provider))
	if s.Candles > 0 {
		b.WriteString(fmt.Sprintf("Range: %s → %s\n", s.FirstDate, s.LastDate))
	}
	if snap := s.Snapshot; snap != nil {
		b.WriteString(fmt.Sprintf("Last close: %s", formatPrice(snap.LastClose)))
		if snap.RSI14 > 0 {
			b.WriteString(fmt.Sprintf(" | RSI14: %.0f", snap.RSI14))
		}
		b.WriteString("\n")
		if snap.MA200 > 0 {
			b.WriteString(fmt.Sprintf("MA200: %s (%+.1f%%)\n", formatPrice(snap.MA200), (snap.LastClose-snap.MA200)/snap.MA200*100))
		}
		b.WriteString(fmt.Sprintf("1y range: %s ~ %s (position %.0f%%)\n",
			formatPrice(snap.Low1y), formatPrice(snap.High1y), snap.Position1y*100))
	}
	b.WriteString(fmt.Sprintf("File: <code>%s</code>\n", html.EscapeString(s.OutputPath)))
	b.WriteString(fmt.Sprintf("Took: %s", s.Duration.Round(time.Millisecond)))
	return b.String()
}

func formatPrice(v float64) string {
	if v >= 1 {
		return fmt.Sprintf("%.2f", v)
	}
	return fmt.Sprintf("%.6g", v)
}
