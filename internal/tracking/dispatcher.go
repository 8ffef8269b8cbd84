// Package tracking forwards outbound-link clicks and search queries to an
// event sink without blocking the request path.
package tracking

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"scholarship_catalog/internal/domain"
)

type Sink interface {
	PublishEvent(ctx context.Context, event domain.TrackingEvent) error
}

type Recorder interface {
	TrackingEvent(kind domain.TrackingKind, outcome string)
}

const (
	OutcomeDelivered = "delivered"
	OutcomeDropped   = "dropped"
	OutcomeFailed    = "failed"
)

// Dispatcher queues events on a bounded buffer drained by Run. Track never
// blocks; events arriving while the buffer is full are dropped.
type Dispatcher struct {
	sink     Sink
	recorder Recorder
	events   chan domain.TrackingEvent
	dropped  atomic.Int64
	timeout  time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

func NewDispatcher(sink Sink, recorder Recorder, bufferSize int, logger *slog.Logger) *Dispatcher {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &Dispatcher{
		sink:     sink,
		recorder: recorder,
		events:   make(chan domain.TrackingEvent, bufferSize),
		timeout:  5 * time.Second,
		now:      time.Now,
		logger:   logger.With("component", "tracking"),
	}
}

// Track stamps the event with an id and time when missing and enqueues it.
func (d *Dispatcher) Track(event domain.TrackingEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = d.now().UTC()
	}

	select {
	case d.events <- event:
	default:
		d.dropped.Add(1)
		d.record(event.Kind, OutcomeDropped)
		d.logger.Warn("tracking buffer full, dropping event", "kind", event.Kind)
	}
}

// Dropped returns how many events were discarded because the buffer was full.
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// Run delivers queued events until ctx is cancelled, then flushes what is
// still buffered.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Info("tracking dispatcher started", "buffer", cap(d.events))

	for {
		select {
		case <-ctx.Done():
			d.drain()
			d.logger.Info("tracking dispatcher stopped", "dropped", d.Dropped())
			return nil
		case event := <-d.events:
			d.deliver(context.WithoutCancel(ctx), event)
		}
	}
}

func (d *Dispatcher) drain() {
	for {
		select {
		case event := <-d.events:
			d.deliver(context.Background(), event)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, event domain.TrackingEvent) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.sink.PublishEvent(ctx, event); err != nil {
		d.record(event.Kind, OutcomeFailed)
		d.logger.Error("failed to publish tracking event",
			"event_id", event.ID,
			"kind", event.Kind,
			"error", err,
		)
		return
	}
	d.record(event.Kind, OutcomeDelivered)
}

func (d *Dispatcher) record(kind domain.TrackingKind, outcome string) {
	if d.recorder != nil {
		d.recorder.TrackingEvent(kind, outcome)
	}
}

// LogSink writes events to the log. Used when no broker is configured.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) PublishEvent(_ context.Context, event domain.TrackingEvent) error {
	s.Logger.Info("tracking event",
		"event_id", event.ID,
		"kind", event.Kind,
		"scholarship_id", event.ScholarshipID,
		"url", event.URL,
		"query", event.Query,
		"results", event.Results,
	)
	return nil
}
