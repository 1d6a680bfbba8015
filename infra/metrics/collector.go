package metrics

import (
	"context"
	"sync"

	coremetrics "github.com/kilianp07/traveldelay/core/metrics"
	"github.com/kilianp07/traveldelay/infra/logger"
	"github.com/kilianp07/traveldelay/internal/eventbus"
)

// DefaultCollectorBuffer is the number of pending events a Collector holds
// before dropping new ones.
const DefaultCollectorBuffer = 256

// Collector moves prediction events off the request path. It implements
// MetricsSink by publishing on an event bus; a background goroutine started
// with Start records each event in the wrapped sink.
type Collector struct {
	sink coremetrics.MetricsSink
	bus  *eventbus.TypedBus[coremetrics.PredictionEvent]
	sub  <-chan coremetrics.PredictionEvent
	log  logger.Logger

	once     sync.Once
	stopOnce sync.Once
	stop     chan struct{}
	wg       sync.WaitGroup
}

// NewCollector creates a collector forwarding to sink. A buffer <= 0 uses
// DefaultCollectorBuffer.
func NewCollector(sink coremetrics.MetricsSink, buffer int, log logger.Logger) *Collector {
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if buffer <= 0 {
		buffer = DefaultCollectorBuffer
	}
	bus := eventbus.NewTyped[coremetrics.PredictionEvent]()
	return &Collector{
		sink: sink,
		bus:  bus,
		sub:  bus.SubscribeBuffered(buffer),
		log:  log,
		stop: make(chan struct{}),
	}
}

// RecordPrediction queues the event. It never blocks.
func (c *Collector) RecordPrediction(ev coremetrics.PredictionEvent) error {
	c.bus.Publish(ev)
	return nil
}

// RecordModelStatus forwards the status synchronously.
func (c *Collector) RecordModelStatus(estimator string, loaded bool) error {
	if r, ok := c.sink.(coremetrics.ModelStatusRecorder); ok {
		return r.RecordModelStatus(estimator, loaded)
	}
	return nil
}

// Start drains queued events into the sink until Close is called or ctx is
// canceled. Events already queued are still recorded.
func (c *Collector) Start(ctx context.Context) {
	c.once.Do(func() {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			for ev := range c.sub {
				if err := c.sink.RecordPrediction(ev); err != nil {
					c.log.Warnf("record prediction %s: %v", ev.RequestID, err)
				}
			}
		}()
		go func() {
			select {
			case <-ctx.Done():
				c.bus.Close()
			case <-c.stop:
			}
		}()
	})
}

// Dropped returns how many events were discarded because the queue was full.
func (c *Collector) Dropped() uint64 { return c.bus.Dropped() }

// Close stops accepting events, waits for the queue to drain and closes the
// wrapped sink when it holds resources.
func (c *Collector) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	c.bus.Close()
	c.wg.Wait()
	if n := c.Dropped(); n > 0 {
		c.log.Warnf("dropped %d prediction events", n)
	}
	if cl, ok := c.sink.(interface{ Close() error }); ok {
		return cl.Close()
	}
	return nil
}
