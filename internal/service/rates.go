package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// RateSource serves exchange rates from a base-USD table. The fetch runs
// behind a circuit breaker with a bounded timeout; a last-known-good table
// within the staleness bound covers fetch failures, and a neutral 1.0 rate
// covers everything else. Rate lookups never fail the caller's flow.
type RateSource struct {
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
	ttl     time.Duration

	mu        sync.RWMutex
	rates     map[string]float64
	fetchedAt time.Time
}

// NewRateSource creates a rate source for the given table URL.
func NewRateSource(url string, ttl time.Duration, logger *zap.Logger) *RateSource {
	return &RateSource{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "exchange-rates",
			MaxRequests: 3,
			Interval:    30 * time.Second,
			Timeout:     10 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 5 && failureRatio >= 0.6
			},
		}),
		logger: logger,
		ttl:    ttl,
	}
}

// Rate returns the conversion factor from base to target. Falls back to
// the stale cache and finally to 1.0; failures are logged, never surfaced.
func (s *RateSource) Rate(base, target string) float64 {
	if base == target {
		return 1.0
	}

	s.mu.RLock()
	rates, fetchedAt := s.rates, s.fetchedAt
	s.mu.RUnlock()

	if rates != nil && time.Since(fetchedAt) < s.ttl {
		if rate, ok := crossRate(rates, base, target); ok {
			return rate
		}
	}

	if err := s.Refresh(); err != nil {
		s.logger.Warn("exchange rate fetch failed", zap.Error(err))
	} else {
		s.mu.RLock()
		rates = s.rates
		s.mu.RUnlock()
	}

	// A stale table beats no table.
	if rates != nil {
		if rate, ok := crossRate(rates, base, target); ok {
			return rate
		}
	}

	s.logger.Warn("no exchange rate available, using neutral rate",
		zap.String("base", base),
		zap.String("target", target),
	)
	return 1.0
}

// Refresh fetches a fresh rate table through the circuit breaker.
func (s *RateSource) Refresh() error {
	_, err := s.breaker.Execute(func() (any, error) {
		resp, err := s.client.Get(s.url)
		if err != nil {
			return nil, fmt.Errorf("fetch rates: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch rates: unexpected status %d", resp.StatusCode)
		}

		var payload struct {
			Rates map[string]float64 `json:"rates"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, fmt.Errorf("decode rates: %w", err)
		}
		if len(payload.Rates) == 0 {
			return nil, fmt.Errorf("decode rates: empty table")
		}

		s.mu.Lock()
		s.rates = payload.Rates
		s.fetchedAt = time.Now()
		s.mu.Unlock()
		return nil, nil
	})
	return err
}

// crossRate computes target/base from a common-base table.
func crossRate(rates map[string]float64, base, target string) (float64, bool) {
	baseRate, okBase := rates[base]
	targetRate, okTarget := rates[target]
	if !okBase || !okTarget || baseRate == 0 {
		return 0, false
	}
	return targetRate / baseRate, true
}
