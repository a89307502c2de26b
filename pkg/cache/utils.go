package cache

import "strings"

// TickerKey builds "kind:TICKER[:disc...]". The ticker is upper-cased and
// trimmed so "aapl " and "AAPL" share an entry; empty discriminators are kept
// so positions stay unambiguous.
func TickerKey(kind, ticker string, discriminators ...string) string {
	var b strings.Builder
	b.WriteString(kind)
	b.WriteByte(':')
	b.WriteString(strings.ToUpper(strings.TrimSpace(ticker)))
	for _, d := range discriminators {
		b.WriteByte(':')
		b.WriteString(d)
	}
	return b.String()
}
