package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/moviestore/rental-api/internal/api/metrics"
	"github.com/moviestore/rental-api/internal/core/domain"
	"github.com/moviestore/rental-api/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
	drainTimeout   = 5 * time.Second
)

// Dispatcher fans rental events out to a fixed set of workers, hashing on the
// rental uuid so that events of one rental are published in order.
type Dispatcher struct {
	workers   []chan domain.RentalEvent
	publisher ports.RentalEventPublisher
	log       zerolog.Logger
	wg        sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, publisher ports.RentalEventPublisher, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:   make([]chan domain.RentalEvent, numWorkers),
		publisher: publisher,
		log:       log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.RentalEvent, channelBuffer)
	}
	return d
}

// Start launches the worker goroutines. Workers stop when ctx is cancelled,
// after publishing what is already buffered.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Run starts the workers and blocks until they have all stopped.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.Start(ctx)
	d.wg.Wait()
	return nil
}

// Enqueue hands ev to the worker owning its rental. It never blocks: when
// that worker's buffer is full the event is dropped and counted.
func (d *Dispatcher) Enqueue(ev domain.RentalEvent) {
	idx := d.shardIndex(ev.RentalUUID)
	select {
	case d.workers[idx] <- ev:
		metrics.EventsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.EventsPublishedTotal.WithLabelValues(string(ev.Type), "dropped").Inc()
		d.log.Warn().
			Str("event_type", string(ev.Type)).
			Str("rental_uuid", ev.RentalUUID).
			Int("worker_id", idx).
			Msg("event queue full, dropping event")
	}
}

// shardIndex maps a rental uuid deterministically to a worker index.
func (d *Dispatcher) shardIndex(rentalUUID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(rentalUUID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.RentalEvent) {
	defer d.wg.Done()
	depth := metrics.EventsQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			d.drain(ctx, id, ch)
			return
		case ev := <-ch:
			depth.Set(float64(len(ch)))
			d.publish(ctx, id, ev)
		}
	}
}

// drain publishes whatever is still buffered, bounded by drainTimeout.
func (d *Dispatcher) drain(parent context.Context, id int, ch <-chan domain.RentalEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), drainTimeout)
	defer cancel()
	for {
		select {
		case ev := <-ch:
			d.publish(ctx, id, ev)
		default:
			metrics.EventsQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(0)
			return
		}
	}
}

func (d *Dispatcher) publish(ctx context.Context, id int, ev domain.RentalEvent) {
	start := time.Now()
	err := d.publisher.Publish(ctx, ev)
	metrics.EventPublishDuration.WithLabelValues(string(ev.Type)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.EventsPublishedTotal.WithLabelValues(string(ev.Type), "error").Inc()
		d.log.Error().Err(err).
			Str("event_type", string(ev.Type)).
			Str("rental_uuid", ev.RentalUUID).
			Int("worker_id", id).
			Msg("event publishing failed")
		return
	}
	metrics.EventsPublishedTotal.WithLabelValues(string(ev.Type), "ok").Inc()
}
