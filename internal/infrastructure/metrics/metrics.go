package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	LedgerEntriesCreated *prometheus.CounterVec
	ChainVerifications   *prometheus.CounterVec

	// Treasury metrics
	PaymentsProcessed prometheus.Counter
	PaymentAmount     prometheus.Histogram
	PaymentErrors     *prometheus.CounterVec

	// Drip metrics
	DripReleases       prometheus.Counter
	DripAmount         prometheus.Counter
	AllocationsExpired prometheus.Counter
	FundsRecaptured    prometheus.Counter

	// Settlement metrics
	SettlementRuns     *prometheus.CounterVec
	SettlementPayouts  *prometheus.CounterVec
	SettlementDuration prometheus.Histogram
	RolloverCarried    *prometheus.CounterVec

	// Oracle metrics
	OracleFetches      *prometheus.CounterVec
	OracleSourceErrors *prometheus.CounterVec
	OracleFrozen       prometheus.Gauge
	OracleFetchSeconds prometheus.Histogram

	// Spin metrics
	Spins          *prometheus.CounterVec
	SpinDowngrades prometheus.Counter
	LockedPrizes   prometheus.Counter

	// Withdrawal metrics
	Withdrawals       *prometheus.CounterVec
	WithdrawalBatches prometheus.Counter
	WithdrawalAmount  prometheus.Histogram

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBErrors *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		LedgerEntriesCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tapcore_ledger_entries_total",
				Help: "Total ledger entries appended by type",
			},
			[]string{"entry_type", "currency"},
		),
		ChainVerifications: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tapcore_chain_verifications_total",
				Help: "Total ledger chain verifications by result",
			},
			[]string{"result"},
		),

		PaymentsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tapcore_payments_processed_total",
			Help: "Total subscription payments processed",
		}),
		PaymentAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tapcore_payment_amount_usdt",
			Help:    "Subscription payment amounts",
			Buckets: []float64{1, 5, 20, 50, 100},
		}),
		PaymentErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tapcore_payment_errors_total",
				Help: "Total payment processing errors by type",
			},
			[]string{"error_type"},
		),

		DripReleases: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tapcore_drip_releases_total",
			Help: "Total drip releases performed",
		}),
		DripAmount: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tapcore_drip_amount_usdt_total",
			Help: "Total USDT released by drip",
		}),
		AllocationsExpired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tapcore_allocations_expired_total",
			Help: "Total pool allocations expired",
		}),
		FundsRecaptured: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tapcore_funds_recaptured_usdt_total",
			Help: "Total unreleased drip USDT recaptured to admin",
		}),

		SettlementRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tapcore_settlement_runs_total",
				Help: "Total settlement cycles by result",
			},
			[]string{"result"},
		),
		SettlementPayouts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tapcore_settlement_payouts_total",
				Help: "Total settlement payouts by game",
			},
			[]string{"game", "tier"},
		),
		SettlementDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tapcore_settlement_duration_seconds",
			Help:    "Duration of settlement cycles",
			Buckets: prometheus.DefBuckets,
		}),
		RolloverCarried: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tapcore_rollover_carried_total",
				Help: "Cycles where the prediction pot rolled over",
			},
			[]string{"tier"},
		),

		OracleFetches: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tapcore_oracle_fetches_total",
				Help: "Total oracle fetches by result",
			},
			[]string{"result"},
		),
		OracleSourceErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tapcore_oracle_source_errors_total",
				Help: "Total per-source fetch errors",
			},
			[]string{"source"},
		),
		OracleFrozen: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "tapcore_oracle_frozen",
			Help: "1 while the oracle is frozen, 0 otherwise",
		}),
		OracleFetchSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tapcore_oracle_fetch_duration_seconds",
			Help:    "Duration of oracle fetch rounds",
			Buckets: prometheus.DefBuckets,
		}),

		Spins: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tapcore_spins_total",
				Help: "Total spins by tier and paid prize class",
			},
			[]string{"tier", "prize_class"},
		),
		SpinDowngrades: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tapcore_spin_downgrades_total",
			Help: "Spins downgraded because the vault could not afford the drawn prize",
		}),
		LockedPrizes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tapcore_locked_prizes_total",
			Help: "Free-tier cash draws substituted with locked coin prizes",
		}),

		Withdrawals: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tapcore_withdrawals_total",
				Help: "Total withdrawal transitions by status",
			},
			[]string{"status"},
		),
		WithdrawalBatches: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tapcore_withdrawal_batches_total",
			Help: "Total withdrawal batches created",
		}),
		WithdrawalAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tapcore_withdrawal_amount_usdt",
			Help:    "Gross withdrawal amounts",
			Buckets: []float64{10, 25, 50, 100, 500, 1000},
		}),

		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tapcore_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tapcore_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tapcore_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),
	}
}
