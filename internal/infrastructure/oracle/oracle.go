package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/pravino/tapcore/internal/domain"
	"github.com/pravino/tapcore/internal/infrastructure/metrics"
)

const cacheKey = "oracle:btc"

// Cache is the subset of the shared cache the oracle needs.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// retrySchedule is the fixed backoff between fetch attempts: the first
// retry fires immediately, then the gaps widen.
var retrySchedule = []time.Duration{0, 1 * time.Second, 5 * time.Second, 30 * time.Second, 60 * time.Second}

// scheduleBackOff adapts the fixed schedule to the backoff.BackOff
// interface so Retry drives the attempt loop.
type scheduleBackOff struct {
	schedule []time.Duration
	next     int
}

func (b *scheduleBackOff) NextBackOff() time.Duration {
	if b.next >= len(b.schedule) {
		return backoff.Stop
	}

	d := b.schedule[b.next]
	b.next++

	return d
}

func (b *scheduleBackOff) Reset() { b.next = 0 }

// Oracle fetches the BTC price from multiple independent sources and
// exposes a frozen flag while no trustworthy price can be obtained.
type Oracle struct {
	sources  []PriceSource
	cache    Cache
	cacheTTL time.Duration
	frozen   atomic.Bool
	logger   zerolog.Logger
	metrics  *metrics.Metrics

	mu   sync.RWMutex
	last *domain.OracleResult
}

// New creates an Oracle over the given sources.
func New(sources []PriceSource, cache Cache, cacheTTL time.Duration, logger zerolog.Logger, m *metrics.Metrics) *Oracle {
	return &Oracle{
		sources:  sources,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger.With().Str("component", "oracle").Logger(),
		metrics:  m,
	}
}

// Frozen reports whether the last retry budget was exhausted without a
// trustworthy price. While frozen, prediction submission is rejected.
func (o *Oracle) Frozen() bool {
	return o.frozen.Load()
}

// Last returns the most recent in-process result, if any.
func (o *Oracle) Last() *domain.OracleResult {
	o.mu.RLock()
	defer o.mu.RUnlock()

	return o.last
}

type sourceResult struct {
	name   string
	price  decimal.Decimal
	change decimal.Decimal
	err    error
}

// Fetch queries all sources concurrently, requires at least one
// success, and returns the median price with the averaged 24h change.
// Results are served from cache within the TTL.
func (o *Oracle) Fetch(ctx context.Context) (*domain.OracleResult, error) {
	if cached := o.fromCache(ctx); cached != nil {
		return cached, nil
	}

	started := time.Now()

	results := make(chan sourceResult, len(o.sources))

	var wg sync.WaitGroup
	for _, src := range o.sources {
		wg.Add(1)
		go func(src PriceSource) {
			defer wg.Done()

			price, change, err := src.Fetch(ctx)
			results <- sourceResult{name: src.Name(), price: price, change: change, err: err}
		}(src)
	}

	wg.Wait()
	close(results)

	var (
		prices  []decimal.Decimal
		changes []decimal.Decimal
		names   []string
	)

	for r := range results {
		if r.err != nil {
			o.logger.Warn().Str("source", r.name).Err(r.err).Msg("price source failed")
			if o.metrics != nil {
				o.metrics.OracleSourceErrors.WithLabelValues(r.name).Inc()
			}

			continue
		}

		prices = append(prices, r.price)
		changes = append(changes, r.change)
		names = append(names, r.name)
	}

	if o.metrics != nil {
		o.metrics.OracleFetchSeconds.Observe(time.Since(started).Seconds())
	}

	if len(prices) == 0 {
		if o.metrics != nil {
			o.metrics.OracleFetches.WithLabelValues("failure").Inc()
		}

		return nil, domain.ErrOracleUnavailable
	}

	sort.Slice(prices, func(i, j int) bool { return prices[i].LessThan(prices[j]) })

	changeSum := decimal.Zero
	for _, c := range changes {
		changeSum = changeSum.Add(c)
	}

	result := &domain.OracleResult{
		Price:     domain.MedianPrice(prices),
		Change24h: changeSum.Div(decimal.NewFromInt(int64(len(changes)))),
		Sources:   names,
		Median:    len(prices) > 1,
		FetchedAt: time.Now().UTC(),
	}

	o.store(ctx, result)
	o.setFrozen(false)

	if o.metrics != nil {
		o.metrics.OracleFetches.WithLabelValues("success").Inc()
	}

	o.logger.Info().
		Str("price", result.Price.String()).
		Strs("sources", names).
		Bool("median", result.Median).
		Msg("price fetched")

	return result, nil
}

// FetchWithRetry repeats Fetch over the fixed backoff schedule until
// success, the attempt budget, or the deadline. Total failure sets the
// frozen flag and surfaces an error; it is never silently retried past
// the budget.
func (o *Oracle) FetchWithRetry(ctx context.Context, maxAttempts int, deadline time.Time) (*domain.OracleResult, error) {
	retryCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	schedule := retrySchedule
	if maxAttempts > 0 && maxAttempts <= len(schedule) {
		schedule = schedule[:maxAttempts]
	}

	var result *domain.OracleResult

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++

		res, err := o.Fetch(retryCtx)
		if err != nil {
			o.logger.Warn().Int("attempt", attempt).Err(err).Msg("oracle fetch attempt failed")
			return err
		}

		result = res

		return nil
	}, backoff.WithContext(&scheduleBackOff{schedule: schedule}, retryCtx))

	if err != nil {
		o.setFrozen(true)

		return nil, fmt.Errorf("oracle retry budget exhausted: %w", domain.ErrOracleUnavailable)
	}

	return result, nil
}

func (o *Oracle) setFrozen(frozen bool) {
	prev := o.frozen.Swap(frozen)

	if o.metrics != nil {
		v := 0.0
		if frozen {
			v = 1.0
		}
		o.metrics.OracleFrozen.Set(v)
	}

	if prev != frozen {
		o.logger.Warn().Bool("frozen", frozen).Msg("oracle frozen state changed")
	}
}

func (o *Oracle) fromCache(ctx context.Context) *domain.OracleResult {
	o.mu.RLock()
	last := o.last
	o.mu.RUnlock()

	if last != nil && time.Since(last.FetchedAt) < o.cacheTTL {
		return last
	}

	if o.cache == nil {
		return nil
	}

	raw, err := o.cache.Get(ctx, cacheKey)
	if err != nil || raw == "" {
		return nil
	}

	var result domain.OracleResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil
	}

	if time.Since(result.FetchedAt) >= o.cacheTTL {
		return nil
	}

	return &result
}

func (o *Oracle) store(ctx context.Context, result *domain.OracleResult) {
	o.mu.Lock()
	o.last = result
	o.mu.Unlock()

	if o.cache == nil {
		return
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return
	}

	if err := o.cache.Set(ctx, cacheKey, string(raw), o.cacheTTL); err != nil {
		o.logger.Warn().Err(err).Msg("failed to cache oracle result")
	}
}
