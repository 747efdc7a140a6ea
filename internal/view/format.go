package view

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatCurrency renders an amount in cents as US dollars, e.g. 123456 -> "$1,234.56".
func FormatCurrency(cents int64) string {
	s := decimal.New(cents, -2).Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if cents < 0 {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// FormatDate renders a YYYY-MM-DD date as "Mar 9, 2024". Unparseable input is
// returned unchanged.
func FormatDate(date string) string {
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return date
	}
	return t.Format("Jan 2, 2006")
}

// initials returns up to two leading letters of name for an avatar badge.
func initials(name string) string {
	var out []rune
	for _, f := range strings.Fields(name) {
		out = append(out, []rune(strings.ToUpper(f))[0])
		if len(out) == 2 {
			break
		}
	}
	return string(out)
}
