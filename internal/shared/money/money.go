// Package money converts between the integer minor units stored by the
// ledger and the decimal strings vendors exchange, and normalises ISO
// currency and region codes.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

// NormalizeCurrency returns the canonical upper-case ISO 4217 code.
func NormalizeCurrency(code string) (string, error) {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return "", fmt.Errorf("unknown currency %q", code)
	}
	return unit.String(), nil
}

// NormalizeRegion returns the canonical ISO 3166-1 alpha-2 country code.
func NormalizeRegion(code string) (string, error) {
	region, err := language.ParseRegion(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil || !region.IsCountry() {
		return "", fmt.Errorf("unknown region %q", code)
	}
	return region.String(), nil
}

// Exponent is the number of minor-unit digits of code as CLDR's standard
// rounding gives it: 2 for USD, 0 for JPY and IDR. Unknown codes use 2.
func Exponent(code string) int {
	unit, err := currency.ParseISO(strings.ToUpper(code))
	if err != nil {
		return 2
	}
	scale, _ := currency.Standard.Rounding(unit)
	return scale
}

// ToMinor converts a major-unit amount to minor units. Amounts with more
// precision than the currency allows are rejected.
func ToMinor(amount decimal.Decimal, code string) (int64, error) {
	shifted := amount.Shift(int32(Exponent(code)))
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has too many decimal places for %s", amount.String(), code)
	}
	return shifted.IntPart(), nil
}

// ParseMajor parses a vendor decimal string such as "499.00".
func ParseMajor(s string, code string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return ToMinor(d, code)
}

// ToMajor converts minor units back to a decimal major amount.
func ToMajor(minor int64, code string) decimal.Decimal {
	return decimal.New(minor, -int32(Exponent(code)))
}

// FormatMajor renders minor units with the currency's fixed precision.
func FormatMajor(minor int64, code string) string {
	return ToMajor(minor, code).StringFixed(int32(Exponent(code)))
}
