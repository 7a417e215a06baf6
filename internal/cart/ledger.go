// Package cart implements the shopper's cart ledger: an insertion-ordered
// set of product lines, keyed by product id, with best-effort persistence.
package cart

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/bloomedge/storefront/internal/model"
	"github.com/bloomedge/storefront/internal/obs"
	"github.com/bloomedge/storefront/internal/pricing"
	"github.com/bloomedge/storefront/internal/storage"
)

// Ledger holds the current cart state. It is the sole owner of quantity
// state; the product snapshot on each line is frozen at add-time.
//
// Mutations never fail: persistence errors are logged and swallowed, so a
// broken slot degrades to an unsaved cart rather than a broken one.
type Ledger struct {
	mu    sync.RWMutex
	lines []model.CartLine
	slot  storage.Slot
	key   string
}

// New restores a ledger from the slot under key. Absent, empty or corrupt
// persisted data yields an empty ledger, never an error.
func New(slot storage.Slot, key string) *Ledger {
	l := &Ledger{slot: slot, key: key}
	l.restore()
	return l
}

func (l *Ledger) restore() {
	b, err := l.slot.Read(l.key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			obs.Logger.Warn("cart_restore_failed", "key", l.key, "error", err)
		}
		return
	}
	if len(b) == 0 {
		return
	}
	var lines []model.CartLine
	if err := json.Unmarshal(b, &lines); err != nil {
		obs.Logger.Warn("cart_restore_corrupt", "key", l.key, "error", err)
		return
	}
	// Stored lines with no id or a non-positive quantity are dropped rather
	// than rejecting the whole cart.
	kept := lines[:0]
	for _, ln := range lines {
		if ln.ID == "" || ln.Quantity <= 0 {
			continue
		}
		kept = append(kept, ln)
	}
	l.lines = kept
}

// persist writes the full line list to the slot. Callers hold l.mu.
func (l *Ledger) persist() {
	b, err := json.Marshal(l.lines)
	if err != nil {
		obs.Logger.Warn("cart_persist_encode_failed", "key", l.key, "error", err)
		return
	}
	if err := l.slot.Write(l.key, b); err != nil {
		obs.Logger.Warn("cart_persist_failed", "key", l.key, "error", err)
	}
}

func (l *Ledger) indexOf(id string) int {
	for i := range l.lines {
		if l.lines[i].ID == id {
			return i
		}
	}
	return -1
}

// Add merges quantity into an existing line for the product, or appends a new
// line holding a snapshot of the product. A non-positive quantity is treated
// as 1. Products without an id are ignored.
func (l *Ledger) Add(p model.Product, quantity int) {
	if p.ID == "" {
		return
	}
	if quantity <= 0 {
		quantity = 1
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.indexOf(p.ID); i >= 0 {
		// Merge is additive only; the stored snapshot keeps its add-time
		// prices and metadata.
		l.lines[i].Quantity += quantity
	} else {
		l.lines = append(l.lines, model.CartLine{Product: p, Quantity: quantity})
	}
	l.persist()
}

// Remove deletes the line for the product id. Removing an absent id is a
// no-op.
func (l *Ledger) Remove(productID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.indexOf(productID)
	if i < 0 {
		return
	}
	l.lines = append(l.lines[:i], l.lines[i+1:]...)
	l.persist()
}

// UpdateQuantity sets the line's quantity to an absolute value. A quantity of
// zero or less removes the line.
func (l *Ledger) UpdateQuantity(productID string, quantity int) {
	if quantity <= 0 {
		l.Remove(productID)
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.indexOf(productID)
	if i < 0 {
		return
	}
	l.lines[i].Quantity = quantity
	l.persist()
}

// Clear empties the cart unconditionally.
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = nil
	l.persist()
}

// Lines returns a copy of the current lines in insertion order.
func (l *Ledger) Lines() []model.CartLine {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]model.CartLine, len(l.lines))
	copy(out, l.lines)
	return out
}

// Total is the sum of effective price times quantity over all lines.
func (l *Ledger) Total() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var sum float64
	for _, ln := range l.lines {
		sum += pricing.LineSubtotal(ln)
	}
	return sum
}

// ItemCount is the number of units in the cart, not the number of lines.
func (l *Ledger) ItemCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var n int
	for _, ln := range l.lines {
		n += ln.Quantity
	}
	return n
}
