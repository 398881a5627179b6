package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/pravino/tapcore/internal/domain"
	"github.com/pravino/tapcore/internal/infrastructure/metrics"
	"github.com/pravino/tapcore/internal/infrastructure/notifier"
	"github.com/pravino/tapcore/internal/usecase"
)

// Retrier re-runs an operation that failed on a transient database
// error. The batch jobs touch many rows and can deadlock against live
// traffic; a repeat run is always safe.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Schedules carries the cron expressions for every recurring job.
type Schedules struct {
	Drip          string
	Expiry        string
	Settlement    string
	Promotion     string
	Batching      string
	TicketExpiry  string
	ExpiryWarning string
}

// Scheduler runs the recurring economy jobs: the daily drip, allocation
// and ticket expiry, settlement, and the withdrawal pipeline sweeps.
// It assumes a single instance; the per-job transactions make a crashed
// run safe to repeat.
type Scheduler struct {
	cron       *cron.Cron
	drip       *usecase.DripUseCase
	settlement *usecase.SettlementUseCase
	withdrawal *usecase.WithdrawalUseCase
	notifier   notifier.Notifier
	retrier    Retrier
	metrics    *metrics.Metrics
	logger     zerolog.Logger

	// warnWindow is how far ahead the expiry-warning sweep looks.
	warnWindow time.Duration
}

// NewScheduler creates a Scheduler with no jobs registered.
func NewScheduler(
	drip *usecase.DripUseCase,
	settlement *usecase.SettlementUseCase,
	withdrawal *usecase.WithdrawalUseCase,
	n notifier.Notifier,
	retrier Retrier,
	m *metrics.Metrics,
	warnWindow time.Duration,
	logger zerolog.Logger,
) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		drip:       drip,
		settlement: settlement,
		withdrawal: withdrawal,
		notifier:   n,
		retrier:    retrier,
		metrics:    m,
		warnWindow: warnWindow,
		logger:     logger.With().Str("component", "scheduler").Logger(),
	}
}

// Register wires every job to its schedule.
func (s *Scheduler) Register(schedules Schedules) error {
	jobs := []struct {
		name string
		spec string
		run  func(context.Context)
	}{
		{"drip", schedules.Drip, s.RunDrip},
		{"expiry", schedules.Expiry, s.RunExpiry},
		{"settlement", schedules.Settlement, s.RunSettlement},
		{"promotion", schedules.Promotion, s.RunPromotion},
		{"batching", schedules.Batching, s.RunBatching},
		{"ticket_expiry", schedules.TicketExpiry, s.RunTicketExpiry},
		{"expiry_warning", schedules.ExpiryWarning, s.RunExpiryWarning},
	}

	for _, j := range jobs {
		run := j.run
		if _, err := s.cron.AddFunc(j.spec, func() {
			run(context.Background())
		}); err != nil {
			return err
		}
	}

	return nil
}

// Start begins running registered jobs on their schedules.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunDrip releases every due daily drip into its pot.
func (s *Scheduler) RunDrip(ctx context.Context) {
	now := time.Now().UTC()

	var report *usecase.DripReport

	err := s.retrier.Retry(ctx, func() error {
		var err error
		report, err = s.drip.RunDailyDrip(ctx, now)

		return err
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("daily drip failed")
		return
	}

	s.metrics.DripReleases.Add(float64(report.Allocations))
	s.metrics.DripAmount.Add(report.Released.InexactFloat64())

	s.logger.Info().
		Int("allocations", report.Allocations).
		Str("released", report.Released.String()).
		Msg("daily drip completed")
}

// RunExpiry retires allocations past their window and recaptures what
// never dripped out.
func (s *Scheduler) RunExpiry(ctx context.Context) {
	now := time.Now().UTC()

	var report *usecase.ExpiryReport

	err := s.retrier.Retry(ctx, func() error {
		var err error
		report, err = s.drip.ExpireAllocations(ctx, now)

		return err
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("allocation expiry failed")
		return
	}

	s.metrics.AllocationsExpired.Add(float64(report.Expired))
	s.metrics.FundsRecaptured.Add(report.Recaptured.InexactFloat64())

	s.logger.Info().
		Int("expired", report.Expired).
		Str("recaptured", report.Recaptured.String()).
		Msg("allocation expiry completed")
}

// RunSettlement settles the daily cycle. A frozen oracle is not an
// error: tap pots settle, predictions wait for the next cycle.
func (s *Scheduler) RunSettlement(ctx context.Context) {
	now := time.Now().UTC()
	started := time.Now()

	var summaries []*domain.SettlementSummary

	err := s.retrier.Retry(ctx, func() error {
		var err error
		summaries, err = s.settlement.SettleCycle(ctx, now)

		return err
	})

	s.metrics.SettlementDuration.Observe(time.Since(started).Seconds())

	switch {
	case errors.Is(err, domain.ErrOracleFrozen):
		s.metrics.SettlementRuns.WithLabelValues("frozen").Inc()
		s.notifier.OracleFrozen(ctx)
		s.logger.Warn().Msg("settlement ran with frozen oracle, predictions deferred")
	case err != nil:
		s.metrics.SettlementRuns.WithLabelValues("error").Inc()
		s.logger.Error().Err(err).Msg("settlement failed")
		return
	default:
		s.metrics.SettlementRuns.WithLabelValues("ok").Inc()
	}

	for _, summary := range summaries {
		s.metrics.SettlementPayouts.WithLabelValues(string(summary.Game), summary.TierName).
			Add(float64(summary.WinnersCount))
		if summary.Game == domain.GamePredict && summary.NewRollover.IsPositive() {
			s.metrics.RolloverCarried.WithLabelValues(summary.TierName).Inc()
		}
		s.notifier.SettlementCompleted(ctx, summary)
	}

	s.logger.Info().Int("summaries", len(summaries)).Msg("settlement completed")
}

// RunPromotion moves pending_audit withdrawals past their audit delay
// to ready.
func (s *Scheduler) RunPromotion(ctx context.Context) {
	promoted, err := s.withdrawal.PromoteReady(ctx, time.Now().UTC())
	if err != nil {
		s.logger.Error().Err(err).Msg("withdrawal promotion failed")
		return
	}

	if promoted > 0 {
		s.metrics.Withdrawals.WithLabelValues(string(domain.WithdrawalReady)).Add(float64(promoted))
		s.logger.Info().Int("promoted", promoted).Msg("withdrawals promoted to ready")
	}
}

// RunBatching groups ready withdrawals into a payout batch.
func (s *Scheduler) RunBatching(ctx context.Context) {
	batch, err := s.withdrawal.BatchReady(ctx, time.Now().UTC())
	if err != nil {
		s.logger.Error().Err(err).Msg("withdrawal batching failed")
		return
	}

	if batch == nil {
		return
	}

	s.metrics.WithdrawalBatches.Inc()
	s.metrics.Withdrawals.WithLabelValues(string(domain.WithdrawalBatched)).Add(float64(batch.Count))

	s.logger.Info().
		Str("batch_id", batch.ID).
		Int("count", batch.Count).
		Str("total_net", batch.TotalNet.String()).
		Msg("withdrawal batch created")
}

// RunExpiryWarning notifies subscribers whose tier lapses within the
// warning window.
func (s *Scheduler) RunExpiryWarning(ctx context.Context) {
	users, err := s.drip.ExpiringTiers(ctx, time.Now().UTC(), s.warnWindow)
	if err != nil {
		s.logger.Error().Err(err).Msg("expiry warning sweep failed")
		return
	}

	for _, user := range users {
		s.notifier.TierExpiring(ctx, user)
	}

	if len(users) > 0 {
		s.logger.Info().Int("users", len(users)).Msg("expiry warnings sent")
	}
}

// RunTicketExpiry zeroes expired spin tickets.
func (s *Scheduler) RunTicketExpiry(ctx context.Context) {
	expired, err := s.drip.ExpireTickets(ctx, time.Now().UTC())
	if err != nil {
		s.logger.Error().Err(err).Msg("ticket expiry failed")
		return
	}

	if expired > 0 {
		s.logger.Info().Int("users", expired).Msg("expired spin tickets cleared")
	}
}
