package ingest

import (
	"context"
	"fmt"
	"github.com/shopspring/decimal"
	"go-exchange-rate-graph/domain"
	"sort"
)

var one = decimal.NewFromInt(1)

// RateSource looks up the rates quoted against a base currency.
// coinbase.Service satisfies it.
type RateSource interface {
	ExchangeRates(ctx context.Context, currency domain.Currency) (domain.Rates, error)
}

// FromRates fetches the rates of every base currency and turns them into records.
// Quotes whose code is not three letters, or whose rate or inverse rounds to
// zero, are skipped, as is any pair already recorded in either direction.
func FromRates(ctx context.Context, src RateSource, bases []domain.Currency) ([]Record, error) {
	type pair struct{ a, b domain.Currency }
	seen := map[pair]bool{}

	var records []Record
	for _, base := range bases {
		from, err := domain.ParseCurrency(string(base))
		if err != nil {
			return nil, fmt.Errorf("base currency: %w", err)
		}
		rates, err := src.ExchangeRates(ctx, from)
		if err != nil {
			return nil, fmt.Errorf("rates for [%v]: %w", from, err)
		}

		codes := make([]string, 0, len(rates))
		for code := range rates {
			codes = append(codes, string(code))
		}
		sort.Strings(codes)

		for _, code := range codes {
			to, err := domain.ParseCurrency(code)
			if err != nil || to == from {
				continue
			}
			rate := rates[domain.Currency(code)]
			if !domain.Round(rate).IsPositive() || !domain.Round(one.Div(rate)).IsPositive() {
				continue
			}
			if seen[pair{from, to}] || seen[pair{to, from}] {
				continue
			}
			seen[pair{from, to}] = true
			records = append(records, Record{From: from, To: to, Rate: rate})
		}
	}
	return records, nil
}
