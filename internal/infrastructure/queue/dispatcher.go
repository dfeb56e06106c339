package queue

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sharethrift/marketplace/internal/api/metrics"
	"github.com/sharethrift/marketplace/internal/core/domain"
	"github.com/sharethrift/marketplace/internal/core/ports"
)

const (
	defaultWorkers      = 8
	defaultMaxAttempts  = 5
	defaultRetryBackoff = 100 * time.Millisecond

	tracerName = "github.com/sharethrift/marketplace/internal/infrastructure/queue"
)

// ErrClosed is returned by Publish once the dispatcher has drained and its
// workers have stopped.
var ErrClosed = errors.New("event dispatcher is closed")

// Options tunes the dispatcher. Zero values fall back to defaults.
type Options struct {
	Workers      int
	MaxAttempts  int
	RetryBackoff time.Duration
}

type registration struct {
	name    string
	handler ports.EventHandler
}

// shard is the queue of one worker. It is unbounded: handlers publish
// follow-up events for the aggregate they are handling, which hash back to
// the same worker, so a bounded queue could block a worker on itself.
type shard struct {
	pending []domain.Event
	wake    chan struct{}
}

// Dispatcher is the in-process event bus. It routes committed events to a
// fixed set of workers using consistent hashing on the aggregate id, so the
// events of one aggregate are handled in the order they were raised.
//
// Delivery is at least once: a handler that fails is retried with exponential
// backoff, and a handler that succeeded is never run again for the same event
// while its deduplication mark lives.
type Dispatcher struct {
	shards []*shard
	dedup  ports.Deduplicator
	opts   Options
	log    zerolog.Logger

	mu       sync.RWMutex
	handlers map[domain.EventType][]registration

	// qmu guards every shard's pending list, inflight and closing. inflight
	// counts events published but not yet fully dispatched.
	qmu      sync.Mutex
	inflight int
	closing  bool

	wg sync.WaitGroup
}

var _ ports.EventBus = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher. dedup may be nil, in which case every
// delivery runs every handler.
func NewDispatcher(opts Options, dedup ports.Deduplicator, log zerolog.Logger) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = defaultRetryBackoff
	}
	d := &Dispatcher{
		shards:   make([]*shard, opts.Workers),
		dedup:    dedup,
		opts:     opts,
		log:      log,
		handlers: map[domain.EventType][]registration{},
	}
	for i := range d.shards {
		d.shards[i] = &shard{wake: make(chan struct{}, 1)}
	}
	return d
}

func (d *Dispatcher) Register(t domain.EventType, name string, handler ports.EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[t] = append(d.handlers[t], registration{name: name, handler: handler})
}

// Start launches all worker goroutines. Cancelling ctx stops the workers at
// once and drops whatever is still queued; use Shutdown to drain first.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := range d.shards {
		d.wg.Add(1)
		go func(id int) {
			defer d.wg.Done()
			d.runWorker(ctx, id)
		}(i)
	}
}

// Wait blocks until every worker has stopped.
func (d *Dispatcher) Wait() { d.wg.Wait() }

// Shutdown stops the dispatcher once every queued event, including the
// follow-ups handlers publish while draining, has been dispatched. It gives
// up when ctx is done; the caller then cancels the context passed to Start.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.qmu.Lock()
	d.closing = true
	d.qmu.Unlock()
	d.wakeAll()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		d.qmu.Lock()
		left := d.inflight
		d.qmu.Unlock()
		d.log.Warn().Int("undelivered", left).Msg("event dispatcher did not drain before shutdown deadline")
		return fmt.Errorf("shutdown event dispatcher: %w", ctx.Err())
	}
}

// Publish enqueues events on the workers owning their aggregates. It never
// blocks on a worker.
func (d *Dispatcher) Publish(ctx context.Context, events ...domain.Event) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	d.qmu.Lock()
	if d.closing && d.inflight == 0 {
		d.qmu.Unlock()
		return ErrClosed
	}
	touched := make(map[int]struct{}, len(events))
	for _, e := range events {
		idx := d.shardIndex(e.AggregateID)
		d.shards[idx].pending = append(d.shards[idx].pending, e)
		d.inflight++
		touched[idx] = struct{}{}
		metrics.EventsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
	}
	d.qmu.Unlock()
	for idx := range touched {
		d.shards[idx].signal()
	}
	return nil
}

func (s *shard) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (d *Dispatcher) wakeAll() {
	for _, s := range d.shards {
		s.signal()
	}
}

// shardIndex maps an aggregate id deterministically to a worker index.
func (d *Dispatcher) shardIndex(aggregateID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(aggregateID))
	return int(h.Sum32() % uint32(len(d.shards)))
}

// next pops the oldest event of shard id. stop is set once the dispatcher
// is closing and nothing is left anywhere.
func (d *Dispatcher) next(id int) (e domain.Event, ok, stop bool) {
	d.qmu.Lock()
	defer d.qmu.Unlock()
	s := d.shards[id]
	if len(s.pending) > 0 {
		e = s.pending[0]
		s.pending[0] = domain.Event{}
		s.pending = s.pending[1:]
		return e, true, false
	}
	return domain.Event{}, false, d.closing && d.inflight == 0
}

func (d *Dispatcher) finish() {
	d.qmu.Lock()
	d.inflight--
	drained := d.closing && d.inflight == 0
	d.qmu.Unlock()
	if drained {
		d.wakeAll()
	}
}

// abandon drops what is left on shard id when the workers are cancelled.
// The events are already in the event log.
func (d *Dispatcher) abandon(id int) {
	d.qmu.Lock()
	s := d.shards[id]
	dropped := len(s.pending)
	d.inflight -= dropped
	s.pending = nil
	d.qmu.Unlock()
	if dropped > 0 {
		metrics.EventsQueueDepth.WithLabelValues(strconv.Itoa(id)).Sub(float64(dropped))
		d.log.Warn().Int("worker_id", id).Int("dropped", dropped).Msg("worker stopped with undelivered events")
	}
}

func (d *Dispatcher) runWorker(ctx context.Context, id int) {
	depth := metrics.EventsQueueDepth.WithLabelValues(strconv.Itoa(id))
	wake := d.shards[id].wake
	for {
		if ctx.Err() != nil {
			d.abandon(id)
			return
		}
		event, ok, stop := d.next(id)
		if stop {
			return
		}
		if !ok {
			select {
			case <-ctx.Done():
			case <-wake:
			}
			continue
		}
		depth.Dec()
		d.dispatch(ctx, id, event)
		d.finish()
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, workerID int, e domain.Event) {
	d.mu.RLock()
	regs := append([]registration(nil), d.handlers[e.Type]...)
	d.mu.RUnlock()

	for _, r := range regs {
		log := d.log.With().
			Str("event_id", e.ID).
			Str("event_type", string(e.Type)).
			Str("aggregate_id", e.AggregateID).
			Str("handler", r.name).
			Int("worker_id", workerID).
			Logger()

		if d.dedup != nil {
			handled, err := d.dedup.IsHandled(ctx, r.name, e.ID)
			if err != nil {
				log.Warn().Err(err).Msg("dedup check failed, handling anyway")
			}
			if handled {
				metrics.EventsDedupTotal.WithLabelValues("hit").Inc()
				continue
			}
			metrics.EventsDedupTotal.WithLabelValues("miss").Inc()
		}

		start := time.Now()
		err := d.invoke(ctx, r, e)
		metrics.EventHandlerDuration.WithLabelValues(r.name).Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.EventsFailedTotal.WithLabelValues(string(e.Type), r.name).Inc()
			log.Error().Err(err).Msg("event handler failed")
			continue
		}
		metrics.EventsDispatchedTotal.WithLabelValues(string(e.Type), r.name).Inc()

		if d.dedup != nil {
			if err := d.dedup.MarkHandled(ctx, r.name, e.ID); err != nil {
				log.Warn().Err(err).Msg("failed to mark event handled")
			}
		}
	}
}

// invoke runs one handler with retries. Errors the domain raises
// deterministically are not retried.
func (d *Dispatcher) invoke(ctx context.Context, r registration, e domain.Event) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "event.handle",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("event.type", string(e.Type)),
			attribute.String("event.handler", r.name),
			attribute.String("aggregate.id", e.AggregateID),
		))
	defer span.End()

	backoff := d.opts.RetryBackoff
	var err error
	for attempt := 1; attempt <= d.opts.MaxAttempts; attempt++ {
		if err = r.handler(ctx, e); err == nil {
			return nil
		}
		if !retryable(err) || attempt == d.opts.MaxAttempts {
			break
		}
		d.log.Debug().Err(err).Str("handler", r.name).Int("attempt", attempt).Msg("retrying event handler")
		select {
		case <-ctx.Done():
			err = ctx.Err()
			span.RecordError(err)
			span.SetStatus(codes.Error, "cancelled")
			return err
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, "handler failed")
	return err
}

func retryable(err error) bool {
	switch {
	case errors.Is(err, domain.ErrPermissionDenied),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidStateTransition),
		errors.Is(err, domain.ErrInvariantViolation):
		return false
	}
	return true
}
