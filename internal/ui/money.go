package ui

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/worksdev/portal/internal/billing"
)

// FormatCents renders an amount as $1,234.56 without color. Negative
// amounts get a leading minus.
func FormatCents(c billing.Cents) string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	fixed := c.String()
	whole, frac, _ := strings.Cut(fixed, ".")
	return sign + "$" + groupThousands(whole) + "." + frac
}

// Money renders an amount with FormatCents, colored by sign.
func Money(c billing.Cents) string {
	if c < 0 {
		return Negative.Sprint(FormatCents(c))
	}
	return Amount.Sprint(FormatCents(c))
}

// Percent renders a percentage with up to two decimals, e.g. 12.5%.
func Percent(d decimal.Decimal) string {
	return d.Round(2).String() + "%"
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// Mask hides all but the first four characters of a secret.
func Mask(s string) string {
	const visible = 4
	n := utf8.RuneCountInString(s)
	if n <= visible {
		return strings.Repeat("*", n)
	}
	runes := []rune(s)
	return string(runes[:visible]) + strings.Repeat("*", n-visible)
}
