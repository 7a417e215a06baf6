// Package model defines domain types used by the storefront.
package model

import "time"

// Product represents a catalog product. SalePrice, Stock, ShippingCost and
// TaxPercentage are optional: a nil pointer means "unknown", not zero.
type Product struct {
	ID            string   `json:"id" yaml:"id"`
	Name          string   `json:"name" yaml:"name"`
	Category      string   `json:"category" yaml:"category"`
	Description   string   `json:"description,omitempty" yaml:"description,omitempty"`
	Image         string   `json:"image,omitempty" yaml:"image,omitempty"`
	Images        []string `json:"images,omitempty" yaml:"images,omitempty"`
	Price         float64  `json:"price" yaml:"price"`
	SalePrice     *float64 `json:"salePrice,omitempty" yaml:"salePrice,omitempty"`
	Stock         *int64   `json:"stock,omitempty" yaml:"stock,omitempty"`
	ShippingCost  *float64 `json:"shippingCost,omitempty" yaml:"shippingCost,omitempty"`
	TaxPercentage *float64 `json:"taxPercentage,omitempty" yaml:"taxPercentage,omitempty"`
}

// CartLine is a product snapshot plus a quantity. The snapshot is taken at
// add-time and never refreshed from the catalog afterwards.
type CartLine struct {
	Product
	Quantity int `json:"quantity"`
}

// Category groups products on the storefront.
type Category struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Slug        string `json:"slug" yaml:"slug"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// OrderStatus is the fulfilment state of a placed order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// ValidStatus reports whether s is one of the known order statuses.
func ValidStatus(s OrderStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// CustomerInfo holds the contact and shipping fields collected at checkout.
type CustomerInfo struct {
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// OrderItem is one purchased line, frozen at checkout time.
type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

// Order is a submitted, persisted order.
type Order struct {
	ID            string       `json:"id"`
	Number        string       `json:"number"`
	Customer      CustomerInfo `json:"customer"`
	Items         []OrderItem  `json:"items"`
	Subtotal      float64      `json:"subtotal"`
	Shipping      float64      `json:"shipping"`
	Tax           float64      `json:"tax"`
	Total         float64      `json:"total"`
	Status        OrderStatus  `json:"status"`
	PlacedAt      time.Time    `json:"placed_at"`
	StatusChanged time.Time    `json:"status_changed"`
}
