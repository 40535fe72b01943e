package domain

import (
	"errors"
	"fmt"
	"github.com/shopspring/decimal"
	"strings"
	"unicode"
)

// Precision number of decimal places carried by rates and intermediate amounts
const Precision = 4

// ErrInvalidCurrency a currency code that is not made of three letters
var ErrInvalidCurrency = errors.New("invalid currency code")

// Currency a currency code
type Currency string

// ParseCurrency validates a three letter code and normalizes it to upper case.
func ParseCurrency(s string) (Currency, error) {
	s = strings.TrimSpace(s)
	if len([]rune(s)) != 3 {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, s)
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, s)
		}
	}
	return Currency(strings.ToUpper(s)), nil
}

// Amount a monetary amount
type Amount = decimal.Decimal

// Rate an exchange rate
type Rate = decimal.Decimal

type Rates map[Currency]Rate

// Round rounds half to even at Precision places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(Precision)
}

// Exchanged result of a conversion along a route
type Exchanged struct {
	// Route currencies visited from source to destination, both included
	Route []Currency

	// Exact amount after the last hop, at Precision places
	Exact Amount

	// Amount Exact rounded to a whole number
	Amount int64
}

// Hops number of rates applied
func (e Exchanged) Hops() int {
	if len(e.Route) == 0 {
		return 0
	}
	return len(e.Route) - 1
}
