package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/cenk/backoff"
	circuit "github.com/rubyist/circuitbreaker"
)

// CircuitBreakerFetcher wraps a Fetcher with one circuit breaker per mirror
// host, so a dead mirror is skipped quickly while others keep serving.
type CircuitBreakerFetcher struct {
	fetcher  FetcherInterface
	breakers map[string]*circuit.Breaker
	mu       sync.RWMutex
}

// NewCircuitBreakerFetcher creates a new circuit breaker wrapper for a fetcher.
func NewCircuitBreakerFetcher(f FetcherInterface) *CircuitBreakerFetcher {
	return &CircuitBreakerFetcher{
		fetcher:  f,
		breakers: make(map[string]*circuit.Breaker),
	}
}

func (cbf *CircuitBreakerFetcher) getBreaker(mirror string) *circuit.Breaker {
	cbf.mu.RLock()
	breaker, exists := cbf.breakers[mirror]
	cbf.mu.RUnlock()

	if exists {
		return breaker
	}

	cbf.mu.Lock()
	defer cbf.mu.Unlock()

	if breaker, exists := cbf.breakers[mirror]; exists {
		return breaker
	}

	// Trips after 5 consecutive failures
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 30 * time.Second
	expBackoff.MaxInterval = 5 * time.Minute
	expBackoff.Multiplier = 2.0
	expBackoff.Reset()

	breaker = circuit.NewBreakerWithOptions(&circuit.Options{
		BackOff:    expBackoff,
		ShouldTrip: circuit.ThresholdTripFunc(5),
	})

	cbf.breakers[mirror] = breaker
	return breaker
}

// Fetch wraps the underlying fetcher's Fetch with circuit breaker logic.
// Not-found and not-modified answers prove the mirror is alive and do not
// count as failures.
func (cbf *CircuitBreakerFetcher) Fetch(ctx context.Context, fetchURL string, cond Conditional) (*Database, error) {
	mirror := mirrorHost(fetchURL)
	breaker := cbf.getBreaker(mirror)

	if !breaker.Ready() {
		return nil, fmt.Errorf("circuit breaker open for mirror %s: %w", mirror, ErrUpstreamDown)
	}

	var (
		db   *Database
		soft error
	)
	err := breaker.Call(func() error {
		var fetchErr error
		db, fetchErr = cbf.fetcher.Fetch(ctx, fetchURL, cond)
		if errors.Is(fetchErr, ErrNotFound) || errors.Is(fetchErr, ErrNotModified) {
			soft = fetchErr
			return nil
		}
		return fetchErr
	}, 0)

	if err != nil {
		return nil, err
	}
	if soft != nil {
		return nil, soft
	}
	return db, nil
}

// Head wraps the underlying fetcher's Head with circuit breaker logic.
func (cbf *CircuitBreakerFetcher) Head(ctx context.Context, headURL string) (size int64, modified time.Time, err error) {
	mirror := mirrorHost(headURL)
	breaker := cbf.getBreaker(mirror)

	if !breaker.Ready() {
		return 0, time.Time{}, fmt.Errorf("circuit breaker open for mirror %s: %w", mirror, ErrUpstreamDown)
	}

	err = breaker.Call(func() error {
		var headErr error
		size, modified, headErr = cbf.fetcher.Head(ctx, headURL)
		return headErr
	}, 0)

	return size, modified, err
}

// mirrorHost extracts the host a URL points at for breaker grouping.
func mirrorHost(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		if len(rawURL) > 50 {
			return rawURL[:50]
		}
		return rawURL
	}
	return parsed.Host
}

// BreakerStates returns "open" or "closed" per mirror host.
func (cbf *CircuitBreakerFetcher) BreakerStates() map[string]string {
	cbf.mu.RLock()
	defer cbf.mu.RUnlock()

	states := make(map[string]string)
	for mirror, breaker := range cbf.breakers {
		if breaker.Tripped() {
			states[mirror] = "open"
		} else {
			states[mirror] = "closed"
		}
	}
	return states
}
