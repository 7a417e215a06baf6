// Package order implements order submission and the admin order book.
package order

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/bloomedge/storefront/internal/cart"
	"github.com/bloomedge/storefront/internal/model"
	"github.com/bloomedge/storefront/internal/notify"
	"github.com/bloomedge/storefront/internal/obs"
	"github.com/bloomedge/storefront/internal/pricing"
)

var (
	// ErrEmptyCart rejects a submission with nothing in the cart.
	ErrEmptyCart = errors.New("order: cart is empty")
	// ErrNotFound is returned for unknown order ids.
	ErrNotFound = errors.New("order: not found")
	// ErrInvalidStatus rejects an unknown or disallowed status change.
	ErrInvalidStatus = errors.New("order: invalid status")
)

// sequencer provides monotonically increasing order numbers.
type sequencer struct{ n atomic.Uint64 }

func (s *sequencer) next() uint64 { return s.n.Add(1) }

// Service owns placed orders. Orders are kept in memory in placement order.
type Service struct {
	mu     sync.RWMutex
	orders []model.Order
	byID   map[string]int
	seq    sequencer
	disp   *notify.Dispatcher
	now    func() time.Time
}

// NewService creates an empty order book. disp may be nil, in which case no
// notifications are emitted.
func NewService(disp *notify.Dispatcher) *Service {
	s := &Service{byID: make(map[string]int), disp: disp, now: time.Now}
	s.seq.n.Store(1000)
	return s
}

// Place builds an order from the ledger's current lines and the checkout
// totals, records it as pending, and clears the ledger. On any failure the
// ledger is left untouched so the shopper can retry.
func (s *Service) Place(ledger *cart.Ledger, customer model.CustomerInfo) (model.Order, error) {
	lines := ledger.Lines()
	if len(lines) == 0 {
		return model.Order{}, ErrEmptyCart
	}
	totals := pricing.Compute(lines)
	items := make([]model.OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, model.OrderItem{
			ProductID: l.ID,
			Name:      l.Name,
			UnitPrice: pricing.EffectiveUnitPrice(l.Product),
			Quantity:  l.Quantity,
		})
	}
	now := s.now().UTC()
	o := model.Order{
		ID:            uuid.NewString(),
		Number:        fmt.Sprintf("#ORD-%d", s.seq.next()),
		Customer:      customer,
		Items:         items,
		Subtotal:      totals.Subtotal,
		Shipping:      totals.Shipping,
		Tax:           totals.Tax,
		Total:         totals.Total,
		Status:        model.StatusPending,
		PlacedAt:      now,
		StatusChanged: now,
	}

	s.mu.Lock()
	s.byID[o.ID] = len(s.orders)
	s.orders = append(s.orders, o)
	s.mu.Unlock()

	// The cart is only cleared after the order is durably recorded.
	ledger.Clear()

	obs.Logger.Info("order_placed",
		"order_id", o.ID,
		"order_number", o.Number,
		"items", len(o.Items),
		"total", o.Total,
	)
	if s.disp != nil {
		s.disp.Enqueue(notify.Message{
			Kind:    notify.KindOrderPlaced,
			Email:   customer.Email,
			OrderID: o.ID,
			Number:  o.Number,
			Total:   o.Total,
		})
	}
	return o, nil
}

// Get returns the order with the given id.
func (s *Service) Get(id string) (model.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return model.Order{}, false
	}
	return s.orders[i], true
}

// List returns all orders, most recent first.
func (s *Service) List() []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Order, len(s.orders))
	for i, o := range s.orders {
		out[len(s.orders)-1-i] = o
	}
	return out
}

// UpdateStatus moves an order to a new fulfilment status. Terminal orders
// (delivered, cancelled) cannot change again.
func (s *Service) UpdateStatus(id string, status model.OrderStatus) (model.Order, error) {
	if !model.ValidStatus(status) {
		return model.Order{}, ErrInvalidStatus
	}
	s.mu.Lock()
	i, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return model.Order{}, ErrNotFound
	}
	o := &s.orders[i]
	if o.Status == model.StatusDelivered || o.Status == model.StatusCancelled {
		s.mu.Unlock()
		return model.Order{}, fmt.Errorf("%w: order is %s", ErrInvalidStatus, o.Status)
	}
	o.Status = status
	o.StatusChanged = s.now().UTC()
	updated := *o
	s.mu.Unlock()

	obs.Logger.Info("order_status_changed", "order_id", id, "status", string(status))
	if s.disp != nil {
		s.disp.Enqueue(notify.Message{
			Kind:    notify.KindStatusChanged,
			Email:   updated.Customer.Email,
			OrderID: updated.ID,
			Number:  updated.Number,
			Status:  updated.Status,
			Total:   updated.Total,
		})
	}
	return updated, nil
}

// Stats are the dashboard aggregates over all orders.
type Stats struct {
	TotalSales  float64 `json:"total_sales"`
	TotalOrders int     `json:"total_orders"`
	Pending     int     `json:"pending"`
}

// Stats sums sales over non-cancelled orders.
func (s *Service) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var st Stats
	st.TotalOrders = len(s.orders)
	for _, o := range s.orders {
		if o.Status != model.StatusCancelled {
			st.TotalSales += o.Total
		}
		if o.Status == model.StatusPending {
			st.Pending++
		}
	}
	return st
}
