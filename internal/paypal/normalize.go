package paypal

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// NormalizeAmount turns an amount as typed by an operator ("1 234,56",
// "1.234,56", "1234.56", "10,000") into the plain dot-decimal form the gateway
// expects, always with two decimals. When both separators appear the later one
// is decimal. A lone separator followed by exactly three digits groups
// thousands; otherwise it is decimal. More than two decimals is an error.
func NormalizeAmount(s string) (string, error) {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsSpace(r) || r == '\'' {
			continue
		}
		b.WriteRune(r)
	}
	v := b.String()

	var dec, group string
	lastComma, lastDot := strings.LastIndex(v, ","), strings.LastIndex(v, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			dec, group = ",", "."
		} else {
			dec, group = ".", ","
		}
	case lastComma >= 0:
		dec, group = splitRole(v, ",")
	case lastDot >= 0:
		dec, group = splitRole(v, ".")
	}

	whole, frac := v, ""
	if dec != "" {
		if strings.Count(v, dec) != 1 {
			return "", fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
		whole, frac, _ = strings.Cut(v, dec)
		if frac == "" || len(frac) > 2 {
			return "", fmt.Errorf("%w: %q must have one or two decimals", ErrInvalidAmount, s)
		}
	}
	if group != "" && strings.Contains(whole, group) {
		parts := strings.Split(whole, group)
		if len(parts[0]) == 0 || len(parts[0]) > 3 {
			return "", fmt.Errorf("%w: %q has misplaced grouping", ErrInvalidAmount, s)
		}
		for _, p := range parts[1:] {
			if len(p) != 3 {
				return "", fmt.Errorf("%w: %q has misplaced grouping", ErrInvalidAmount, s)
			}
		}
		whole = strings.Join(parts, "")
	}
	if !allDigits(whole) || !allDigits(frac) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	num := whole
	if frac != "" {
		num += "." + frac
	}
	d, err := decimal.NewFromString(num)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if !d.IsPositive() {
		return "", fmt.Errorf("%w: %q must be positive", ErrInvalidAmount, s)
	}
	return d.StringFixed(2), nil
}

// splitRole decides what a single kind of separator means in v.
func splitRole(v, sep string) (dec, group string) {
	if strings.Count(v, sep) > 1 {
		return "", sep
	}
	if _, after, _ := strings.Cut(v, sep); len(after) == 3 {
		return "", sep
	}
	return sep, ""
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// GatewayCurrency maps a stored currency onto one the gateway accepts.
// Mauritian rupees are not supported and are charged in USD.
func GatewayCurrency(c string) string {
	c = strings.TrimSpace(c)
	switch strings.ToUpper(c) {
	case "RS", "MUR":
		return "USD"
	default:
		return strings.ToUpper(c)
	}
}
