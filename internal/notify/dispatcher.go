package notify

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bloomedge/storefront/internal/obs"
)

// Dispatcher queues messages and delivers them from background workers so
// checkout never waits on a delivery channel. Delivery failures are logged
// and dropped; notifications are best-effort.
type Dispatcher struct {
	n   Notifier
	in  chan Message
	wg  sync.WaitGroup
	ctx context.Context

	closed   atomic.Bool
	enqueued atomic.Uint64
	sent     atomic.Uint64
	failed   atomic.Uint64
}

// NewDispatcher starts workers consuming the buffered message channel.
func NewDispatcher(ctx context.Context, n Notifier, workers, buffer int) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if buffer <= 0 {
		buffer = 64
	}
	d := &Dispatcher{n: n, in: make(chan Message, buffer), ctx: ctx}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for m := range d.in {
		if err := d.n.Send(d.ctx, m); err != nil {
			d.failed.Add(1)
			obs.Logger.Warn("notification_failed", "kind", string(m.Kind), "order_id", m.OrderID, "error", err)
			continue
		}
		d.sent.Add(1)
	}
}

// Enqueue hands a message to the workers. A full buffer or a closed
// dispatcher drops the message.
func (d *Dispatcher) Enqueue(m Message) bool {
	if d.closed.Load() {
		return false
	}
	select {
	case d.in <- m:
		d.enqueued.Add(1)
		return true
	default:
		d.failed.Add(1)
		obs.Logger.Warn("notification_dropped", "kind", string(m.Kind), "order_id", m.OrderID)
		return false
	}
}

// Close stops intake and waits for in-flight deliveries, up to the timeout.
func (d *Dispatcher) Close(timeout time.Duration) bool {
	if d.closed.Swap(true) {
		return true
	}
	close(d.in)
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Metrics reports enqueue/delivery counters.
func (d *Dispatcher) Metrics() (enqueued, sent, failed uint64) {
	return d.enqueued.Load(), d.sent.Load(), d.failed.Load()
}
