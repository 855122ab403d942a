package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsObserved counts Locked events read from the lock ledger
	EventsObserved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_lock_events_observed_total",
			Help: "Total number of Locked events observed",
		},
		[]string{"chain"},
	)

	// TasksEnqueued counts relay tasks durably added to the queue
	TasksEnqueued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bridge_tasks_enqueued_total",
			Help: "Total number of relay tasks enqueued",
		},
	)

	// TransactionsSent counts mint transactions by submission outcome
	TransactionsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_transactions_sent_total",
			Help: "Total number of mint transactions sent",
		},
		[]string{"chain", "status"},
	)

	// RelayConfirmed counts tasks that reached Confirmed, by how
	RelayConfirmed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_relay_confirmed_total",
			Help: "Total number of relay tasks confirmed",
		},
		[]string{"outcome"},
	)

	// RelayFailed counts tasks that reached Failed
	RelayFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_relay_failed_total",
			Help: "Total number of relay tasks failed permanently",
		},
		[]string{"reason"},
	)

	// RelayRetries counts attempts rescheduled after a transient failure
	RelayRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_relay_retries_total",
			Help: "Total number of relay attempts rescheduled",
		},
		[]string{"kind"},
	)

	// RelayDuration tracks time from enqueue to confirmation
	RelayDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bridge_relay_duration_seconds",
			Help:    "Time from enqueue to confirmation in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
	)

	// RelayInFlight tracks tasks currently held by a worker
	RelayInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bridge_relay_in_flight",
			Help: "Number of relay tasks currently being processed",
		},
	)

	// QueueDepth tracks task counts by status
	QueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bridge_queue_tasks",
			Help: "Number of relay tasks by status",
		},
		[]string{"status"},
	)

	// GasUsed tracks gas used by confirmed mint transactions
	GasUsed = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bridge_gas_used",
			Help:    "Gas used for mint transactions",
			Buckets: []float64{21000, 50000, 100000, 200000, 300000, 500000},
		},
		[]string{"operation"},
	)

	// LastProcessedBlock tracks the cursor by chain
	LastProcessedBlock = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bridge_last_processed_block",
			Help: "Last processed block number by chain",
		},
		[]string{"chain"},
	)

	// ChainHead tracks the latest block seen by chain
	ChainHead = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bridge_chain_head_block",
			Help: "Latest block number reported by the chain",
		},
		[]string{"chain"},
	)

	// BridgeBalance tracks the lock ledger's escrowed balance
	BridgeBalance = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bridge_balance",
			Help: "Tokens held by the lock ledger, in whole units",
		},
		[]string{"chain", "token"},
	)

	// LockNonce tracks the lock ledger's next id
	LockNonce = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bridge_lock_nonce",
			Help: "Next lock id the lock ledger will assign",
		},
		[]string{"chain"},
	)

	// MintedObserved counts Minted events read from the mint ledger
	MintedObserved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_minted_observed_total",
			Help: "Total number of Minted events observed",
		},
		[]string{"chain"},
	)

	// NotificationsDropped counts progress records discarded on overflow
	NotificationsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_notifications_dropped_total",
			Help: "Total number of notification records dropped",
		},
		[]string{"sink"},
	)

	// ErrorsTotal counts errors by type
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)
)
