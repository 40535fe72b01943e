package coinbase

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/shopspring/decimal"
	"go-exchange-rate-graph/domain"
	"io"
	"net/http"
	"time"
)

const ApiUrlBase = "https://api.coinbase.com/v2"

// DefaultTimeout for requests to the coinbase REST API
const DefaultTimeout = 5 * time.Second

// Service wraps the coinbase REST API
type Service interface {
	ExchangeRates(ctx context.Context, currency domain.Currency) (domain.Rates, error)
}

// service coinbase API
type service struct {
	// url base API url
	url string

	// client for HTTP requests
	client http.Client
}

// NewService constructs a valid coinbase Service. An empty url selects ApiUrlBase
// and a zero timeout DefaultTimeout.
func NewService(url string, timeout time.Duration) Service {
	if url == "" {
		url = ApiUrlBase
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &service{
		url: url,
		client: http.Client{
			Timeout: timeout,
		},
	}
}

// ExchangeRates loads the current exchanges for a given currency.
// Service rates change every minute.
func (s *service) ExchangeRates(ctx context.Context, currency domain.Currency) (domain.Rates, error) {
	type Response struct {
		Data struct {
			Currency string
			Rates    map[string]string // maps currency codes to rates
		}
	}

	url := fmt.Sprintf("%v/exchange-rates?currency=%v", s.url, currency)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building http request: %w", err)
	}
	httpResponse, err := s.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer httpResponse.Body.Close()

	if httpResponse.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http get: unexpected status %v", httpResponse.Status)
	}

	var response Response
	bytes, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return nil, fmt.Errorf("reading json: %w", err)
	}

	err = json.Unmarshal(bytes, &response)
	if err != nil {
		return nil, fmt.Errorf("decoding json: %w", err)
	}

	rates := domain.Rates{}
	for k, v := range response.Data.Rates {
		rate, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("bad rate value [%v]: %w", k, err)
		}
		rates[domain.Currency(k)] = rate
	}

	return rates, nil
}
