package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/stafull/auth-portal/internal/api/metrics"
	"github.com/stafull/auth-portal/internal/core/domain"
	"github.com/stafull/auth-portal/internal/core/ports"
)

const (
	defaultWorkers = 4
	defaultBuffer  = 256
)

var (
	// ErrQueueFull is returned when a driver's worker cannot take more samples.
	ErrQueueFull = errors.New("telemetry queue is full")
	// ErrStopped is returned for samples offered after Stop.
	ErrStopped = errors.New("telemetry dispatcher is stopped")
)

// Dispatcher routes telemetry samples to a fixed set of workers using
// consistent hashing on the driver ID, guaranteeing per-driver ordering.
type Dispatcher struct {
	workers   []chan ports.TelemetryInput
	processor ports.TelemetryProcessor
	log       zerolog.Logger
	wg        sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers, each
// buffering up to buffer samples. Non-positive values use the defaults.
func NewDispatcher(numWorkers, buffer int, processor ports.TelemetryProcessor, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	d := &Dispatcher{
		workers:   make([]chan ports.TelemetryInput, numWorkers),
		processor: processor,
		log:       log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.TelemetryInput, buffer)
	}
	return d
}

// Start launches all worker goroutines. Samples are processed with a context
// detached from ctx's cancellation, so accepted samples are never dropped;
// workers exit only after Stop once their queues are empty.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Stop closes the worker queues. Samples already accepted are still
// processed; later Enqueue calls fail with ErrStopped. Call it after the HTTP
// server has shut down, then Wait for the drain.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.stopped = true
	for _, ch := range d.workers {
		close(ch)
	}
}

// Wait blocks until every worker has drained its queue and returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue hands a sample to the worker responsible for its driver without
// blocking.
func (d *Dispatcher) Enqueue(in ports.TelemetryInput) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrStopped
	}

	idx := d.shardIndex(in.DriverID)
	select {
	case d.workers[idx] <- in:
		metrics.TelemetryQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return nil
	default:
		metrics.TelemetryErrorsTotal.WithLabelValues("queue_full").Inc()
		return ErrQueueFull
	}
}

// EnqueueBatch enqueues samples in order and reports how many were accepted.
// It stops at the first full queue so a driver's samples are never reordered.
func (d *Dispatcher) EnqueueBatch(batch []ports.TelemetryInput) (int, error) {
	for i, in := range batch {
		if err := d.Enqueue(in); err != nil {
			return i, err
		}
	}
	return len(batch), nil
}

// shardIndex maps a driver ID deterministically to a worker index.
func (d *Dispatcher) shardIndex(driverID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(driverID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.TelemetryInput) {
	defer d.wg.Done()
	ctx = context.WithoutCancel(ctx)
	label := strconv.Itoa(id)
	for in := range ch {
		metrics.TelemetryQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
		if _, err := d.processor.ApplyTelemetry(ctx, in); err != nil {
			reason := "apply"
			if errors.Is(err, domain.ErrInvalidTelemetry) {
				reason = "invalid"
			}
			metrics.TelemetryErrorsTotal.WithLabelValues(reason).Inc()
			d.log.Error().Err(err).
				Str("driver", in.DriverID).
				Int("worker_id", id).
				Msg("telemetry processing failed")
		}
	}
	d.log.Debug().Int("worker_id", id).Msg("telemetry worker drained")
}
