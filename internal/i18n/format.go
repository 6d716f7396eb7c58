package i18n

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatPrice groups thousands with spaces and appends the currency of
// lang: "9 800 so'm" in Uzbek, "9 800 UZS" otherwise. Fractions are
// kept to two places.
func FormatPrice(price decimal.Decimal, lang string) string {
	return FormatAmount(price) + " " + GetTranslations(lang).Currency
}

// FormatAmount formats a price without currency.
func FormatAmount(price decimal.Decimal) string {
	s := price.StringFixed(0)
	if !price.Equal(price.Truncate(0)) {
		s = price.StringFixed(2)
	}

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteString("." + frac)
	}
	return sign + b.String()
}

// FormatDistance formats a distance in kilometres with one decimal.
func FormatDistance(km float64, lang string) string {
	return strconv.FormatFloat(km, 'f', 1, 64) + " " + GetTranslations(lang).Kilometers
}
