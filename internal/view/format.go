package view

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// FormatDate renders t relative to now: clock time for today, "Yesterday"
// plus time, weekday plus time within a week, and the full date otherwise.
func FormatDate(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	days := int(math.Round(startOfDay(now).Sub(startOfDay(t)).Hours() / 24))

	switch {
	case days <= 0:
		return t.Format("15:04")
	case days == 1:
		return "Yesterday " + t.Format("15:04")
	case days < 7:
		return t.Format("Mon 15:04")
	default:
		return t.Format("2006-01-02 15:04")
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// TruncateText cuts s to max runes and appends "..." when it was longer
func TruncateText(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}

// StripHTML returns the text content of s with all markup removed
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	nodes, err := html.ParseFragment(strings.NewReader(s), &html.Node{
		Type: html.ElementNode, Data: "div", DataAtom: atom.Div,
	})
	if err != nil {
		return s
	}
	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(TextContent(n))
	}
	return b.String()
}
