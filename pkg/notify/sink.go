package notify

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/chainsafe/lockmint-relayer/internal/metrics"
)

// Observer receives every record that survives the sink's buffer. Notify is
// called from a single goroutine and should return promptly.
type Observer interface {
	Name() string
	Notify(ctx context.Context, r Record)
}

// Sink buffers records in a bounded queue and delivers them to observers from
// one goroutine. When the queue is full the oldest record is dropped.
type Sink struct {
	queue     chan Record
	observers []Observer
	logger    *zap.Logger

	emitMu  sync.Mutex
	dropped atomic.Uint64
}

// NewSink creates a sink holding at most bufferSize undelivered records
func NewSink(bufferSize int, logger *zap.Logger, observers ...Observer) *Sink {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Sink{
		queue:     make(chan Record, bufferSize),
		observers: observers,
		logger:    logger.Named("notify"),
	}
}

// Emit queues r. It never blocks on observers.
func (s *Sink) Emit(r Record) {
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}

	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	for {
		select {
		case s.queue <- r:
			return
		default:
		}

		select {
		case <-s.queue:
			s.dropped.Add(1)
			metrics.NotificationsDropped.WithLabelValues("sink").Inc()
		default:
		}
	}
}

// Dropped returns how many records were discarded on overflow
func (s *Sink) Dropped() uint64 {
	return s.dropped.Load()
}

// Run delivers records until ctx is cancelled, then flushes what is already
// buffered with a short deadline.
func (s *Sink) Run(ctx context.Context) error {
	s.logger.Info("Notification sink started", zap.Int("observers", len(s.observers)))

	for {
		select {
		case <-ctx.Done():
			s.flush()
			return nil
		case r := <-s.queue:
			s.deliver(ctx, r)
		}
	}
}

func (s *Sink) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for {
		select {
		case r := <-s.queue:
			s.deliver(ctx, r)
		default:
			return
		}
	}
}

func (s *Sink) deliver(ctx context.Context, r Record) {
	for _, o := range s.observers {
		o.Notify(ctx, r)
	}
}

// LogObserver writes every record to the log
type LogObserver struct {
	logger *zap.Logger
}

// NewLogObserver creates an observer that logs at info level
func NewLogObserver(logger *zap.Logger) *LogObserver {
	return &LogObserver{logger: logger.Named("notification")}
}

func (o *LogObserver) Name() string { return "log" }

func (o *LogObserver) Notify(_ context.Context, r Record) {
	o.logger.Info("Relay progress",
		zap.String("type", string(r.Type)),
		zap.String("lock_id", r.ID),
		zap.Time("timestamp", r.Timestamp),
		zap.String("detail", r.Detail))
}
