// Package notify delivers match events to users and downstream systems.
// Delivery is asynchronous and best effort: it never blocks or fails the
// operation that produced the event.
package notify

import (
	"context"
	"sync"
	"time"

	"fieldmatch-backend/internal/domain"
	"fieldmatch-backend/internal/logger"
)

// Sink is one delivery channel for match events.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, event domain.MatchEvent) error
}

const defaultDeliveryTimeout = 15 * time.Second

type DispatcherOption func(*Dispatcher)

// WithRetryBase sets the unit of the quadratic retry backoff.
func WithRetryBase(d time.Duration) DispatcherOption {
	return func(dp *Dispatcher) { dp.retryBase = d }
}

func WithDeliveryTimeout(d time.Duration) DispatcherOption {
	return func(dp *Dispatcher) { dp.deliveryTimeout = d }
}

// Dispatcher fans events out to every sink from a fixed worker pool.
type Dispatcher struct {
	sinks           []Sink
	queue           chan domain.MatchEvent
	workers         int
	maxRetries      int
	retryBase       time.Duration
	deliveryTimeout time.Duration

	mu      sync.RWMutex
	started bool
	stopped bool
	ctx     context.Context
	wg      sync.WaitGroup
}

func NewDispatcher(queueSize, workers, maxRetries int, sinks []Sink, opts ...DispatcherOption) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1
	}
	if workers <= 0 {
		workers = 1
	}
	d := &Dispatcher{
		sinks:           sinks,
		queue:           make(chan domain.MatchEvent, queueSize),
		workers:         workers,
		maxRetries:      maxRetries,
		retryBase:       time.Second,
		deliveryTimeout: defaultDeliveryTimeout,
		ctx:             context.Background(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start launches the workers. Cancelling ctx aborts in-flight retries; Stop
// drains whatever is still queued.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.stopped {
		return
	}
	d.started = true
	d.ctx = ctx
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
	logger.Info("Event dispatcher started", "workers", d.workers, "sinks", len(d.sinks))
}

// Publish enqueues the event without blocking. Events are dropped with a
// warning when the queue is full or the dispatcher has stopped.
func (d *Dispatcher) Publish(ctx context.Context, event domain.MatchEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		logger.WarnContext(ctx, "Dropping match event after shutdown", "eventID", event.ID, "type", event.Type)
		return
	}
	select {
	case d.queue <- event:
	default:
		logger.WarnContext(ctx, "Event queue is full, dropping match event", "eventID", event.ID, "type", event.Type, "matchRequestID", event.MatchRequestID)
	}
}

// Stop refuses new events, waits for queued ones to be delivered and returns.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	started := d.started
	close(d.queue)
	d.mu.Unlock()

	if started {
		d.wg.Wait()
	}
	logger.Info("Event dispatcher stopped")
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()
	logger.Debug("Event worker started", "worker", id)
	for event := range d.queue {
		d.dispatch(event)
	}
	logger.Debug("Event worker stopping", "worker", id)
}

func (d *Dispatcher) dispatch(event domain.MatchEvent) {
	for _, sink := range d.sinks {
		d.deliverWithRetry(sink, event)
	}
}

func (d *Dispatcher) deliverWithRetry(sink Sink, event domain.MatchEvent) {
	for attempt := 0; ; attempt++ {
		err := d.deliverOnce(sink, event)
		if err == nil {
			return
		}
		if attempt >= d.maxRetries {
			logger.Error("Match event delivery failed", "sink", sink.Name(), "eventID", event.ID, "type", event.Type, "attempts", attempt+1, "error", err)
			return
		}

		backoff := time.Duration((attempt+1)*(attempt+1)) * d.retryBase
		logger.Warn("Retrying match event delivery", "sink", sink.Name(), "eventID", event.ID, "backoff", backoff, "attempt", attempt+1, "maxRetries", d.maxRetries, "error", err)
		select {
		case <-d.ctx.Done():
			logger.Warn("Abandoning match event delivery", "sink", sink.Name(), "eventID", event.ID, "error", d.ctx.Err())
			return
		case <-time.After(backoff):
		}
	}
}

func (d *Dispatcher) deliverOnce(sink Sink, event domain.MatchEvent) (err error) {
	ctx, cancel := context.WithTimeout(d.ctx, d.deliveryTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Sink panicked", "sink", sink.Name(), "eventID", event.ID, "panic", r)
			err = errSinkPanic
		}
	}()
	return sink.Deliver(ctx, event)
}
