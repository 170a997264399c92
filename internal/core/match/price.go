package match

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// PriceWindow is how many runes after a cluster position are scanned for a price.
const PriceWindow = 250

var (
	// amount in BRL notation: 1.234,56 or 1234,56, optionally after "R$".
	// The leading group rejects amounts glued to a digit, separator or minus sign.
	reBRLAmount = regexp.MustCompile(`(^|[^\d.,\-])(?:R\$\s*)?(\d{1,3}(?:\.\d{3})+|\d+),(\d{2})\b`)
	reBRLExact  = regexp.MustCompile(`^(\d{1,3}(?:\.\d{3})+|\d+),(\d{2})$`)
)

var errNotBRL = errors.New("not a BRL amount")

// ParseBRL parses a single amount such as "R$ 1.234,56" into 1234.56.
func ParseBRL(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimPrefix(s, "R$"))
	m := reBRLExact.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", errNotBRL, s)
	}
	return toFloat(m[1], m[2])
}

func toFloat(intPart, frac string) (float64, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(intPart, ".", "") + "." + frac)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}

// ExtractPrices returns the positive BRL amounts found in window, in order.
// Amounts written as negatives ("-R$ 32,50", a line starting "- 32,50",
// "(32,50)") are skipped.
func ExtractPrices(window string) []float64 {
	var out []float64
	for _, m := range reBRLAmount.FindAllStringSubmatchIndex(window, -1) {
		if negativeAmount(window, m[4], m[7]) {
			continue
		}
		v, err := toFloat(window[m[4]:m[5]], window[m[6]:m[7]])
		if err != nil || v <= 0 {
			continue
		}
		out = append(out, v)
	}
	return out
}

// negativeAmount reports whether the amount at s[start:end] carries a minus
// sign, possibly ahead of "R$", or sits in accounting parentheses.
func negativeAmount(s string, start, end int) bool {
	i := start
	if j := trimSpaceLeft(s, start); strings.HasSuffix(s[:j], "R$") {
		i = j - len("R$")
	}
	prev, _ := utf8.DecodeLastRuneInString(s[:i])
	if isMinus(prev) {
		return true
	}
	if prev == '(' && strings.HasPrefix(strings.TrimLeft(s[end:], " \t"), ")") {
		return true
	}

	// "- 32,50": a detached dash only reads as a sign when it opens the
	// line; "Cimento - R$ 32,50" uses it as a separator
	j := trimSpaceLeft(s, i)
	if j == i {
		return false
	}
	prev, size := utf8.DecodeLastRuneInString(s[:j])
	if !isMinus(prev) {
		return false
	}
	k := trimSpaceLeft(s, j-size)
	return k == 0 || s[k-1] == '\n'
}

func trimSpaceLeft(s string, i int) int {
	for i > 0 && (s[i-1] == ' ' || s[i-1] == '\t') {
		i--
	}
	return i
}

func isMinus(r rune) bool {
	return r == '-' || r == '\u2212'
}

// FormatBRL renders v the way ParseBRL reads it, e.g. 1234.56 -> "1.234,56".
func FormatBRL(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	fixed := d.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "," + frac
}
