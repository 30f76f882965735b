package utils

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

// DefaultCurrency is assumed on write paths when the caller supplies nothing
// usable.
const DefaultCurrency = "USD"

// ValidCurrencies is the fixed set of canonical currency codes a listing may
// carry.
var ValidCurrencies = []string{"NGN", "USD", "EUR", "GBP", "CAD"}

// CurrencySymbols maps display symbols to canonical codes.
var CurrencySymbols = map[string]string{
	"₦":  "NGN",
	"$":  "USD",
	"€":  "EUR",
	"£":  "GBP",
	"C$": "CAD",
}

// currencyDisplay is the reverse mapping, code to display symbol.
var currencyDisplay = map[string]string{
	"NGN": "₦",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"CAD": "C$",
}

// NormalizeCurrency resolves a free-text token (symbol or code, any case) to
// a canonical currency code. The second result is false when the token does
// not resolve; callers drop the clause or fall back to DefaultCurrency rather
// than fail.
func NormalizeCurrency(token string) (string, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	if code, ok := CurrencySymbols[token]; ok {
		return code, true
	}
	code := strings.ToUpper(token)
	if slices.Contains(ValidCurrencies, code) {
		return code, true
	}
	return "", false
}

// ParsePrice extracts a positive amount from free-text numeric input such as
// "5,000,000" or " $3,000 ". Everything except digits and the first decimal
// point is stripped; stray leading or trailing points are trimmed. The second
// result is false for empty, non-positive or non-finite input.
// FormatPrice renders an amount for display as the currency symbol followed
// by the thousands-grouped number with two decimal places. Unknown currencies
// fall back to DefaultCurrency; amounts that are not positive finite numbers
// render as "N/A".
func FormatPrice(amount float64, currency string) string {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "N/A"
	}

	code, ok := NormalizeCurrency(currency)
	if !ok {
		code = DefaultCurrency
	}

	text := strconv.FormatFloat(amount, 'f', 2, 64)
	dot := strings.Index(text, ".")
	return currencyDisplay[code] + groupThousands(text[:dot]) + text[dot:]
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var out strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		out.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if out.Len() > 0 {
			out.WriteByte(',')
		}
		out.WriteString(digits[i : i+3])
	}
	return out.String()
}

func ParsePrice(raw string) (float64, bool) {
	var cleaned strings.Builder
	seenPoint := false
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			cleaned.WriteRune(r)
		case r == '.' && !seenPoint:
			seenPoint = true
			cleaned.WriteByte('.')
		}
	}

	text := strings.Trim(cleaned.String(), ".")
	if text == "" {
		return 0, false
	}

	amount, err := strconv.ParseFloat(text, 64)
	if err != nil || amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, false
	}
	return amount, true
}
