// Package notify models the outbound transactional-message boundary. The
// actual delivery channel (email provider) lives outside this service; the
// default Notifier just logs what would have been sent.
package notify

import (
	"context"

	"github.com/bloomedge/storefront/internal/model"
	"github.com/bloomedge/storefront/internal/obs"
)

// Kind identifies the message template.
type Kind string

const (
	KindOrderPlaced   Kind = "order_placed"
	KindStatusChanged Kind = "order_status_changed"
)

// Message is one outbound notification about an order.
type Message struct {
	Kind    Kind
	Email   string
	OrderID string
	Number  string
	Status  model.OrderStatus
	Total   float64
}

// Notifier delivers a single message. Implementations may block on network
// I/O; the Dispatcher calls them off the request path.
type Notifier interface {
	Send(ctx context.Context, m Message) error
}

// LogNotifier writes the message to the structured log instead of a real
// delivery channel.
type LogNotifier struct{}

func (LogNotifier) Send(_ context.Context, m Message) error {
	obs.Logger.Info("notification_sent",
		"kind", string(m.Kind),
		"email", m.Email,
		"order_id", m.OrderID,
		"order_number", m.Number,
		"status", string(m.Status),
		"total", m.Total,
	)
	return nil
}
