// Package catalog is the product and category store backing the storefront.
// Products are read-mostly: the shop reads snapshots, the admin surface
// mutates, and an optional seed-file watcher reloads the whole set.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/bloomedge/storefront/internal/model"
	"github.com/bloomedge/storefront/internal/pricing"
)

// ErrNotFound is returned when a product or category id is unknown.
var ErrNotFound = errors.New("catalog: not found")

// Store holds the catalog in memory.
type Store struct {
	mu         sync.RWMutex
	products   []model.Product
	categories []model.Category
}

// New returns an empty catalog.
func New() *Store {
	return &Store{}
}

// seedFile mirrors the layout of the catalog seed YAML.
type seedFile struct {
	Categories []model.Category `yaml:"categories"`
	Products   []model.Product  `yaml:"products"`
}

// LoadSeed replaces the catalog contents with the seed file at path.
func (s *Store) LoadSeed(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var f seedFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("catalog: parse seed %s: %w", path, err)
	}
	products := make([]model.Product, 0, len(f.Products))
	for _, p := range f.Products {
		if p.ID == "" {
			continue
		}
		products = append(products, p)
	}
	s.mu.Lock()
	s.products = products
	s.categories = f.Categories
	s.mu.Unlock()
	return nil
}

// ListFilter narrows and orders List results. Zero value means everything in
// insertion order.
type ListFilter struct {
	Category string
	// Sort is one of "", "name", "price_asc", "price_desc". Price sorting
	// uses the effective (sale-aware) price.
	Sort string
}

// List returns product snapshots matching the filter.
func (s *Store) List(f ListFilter) []model.Product {
	s.mu.RLock()
	out := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
			continue
		}
		out = append(out, p)
	}
	s.mu.RUnlock()
	switch f.Sort {
	case "name":
		sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	case "price_asc":
		sort.SliceStable(out, func(i, j int) bool {
			return pricing.EffectiveUnitPrice(out[i]) < pricing.EffectiveUnitPrice(out[j])
		})
	case "price_desc":
		sort.SliceStable(out, func(i, j int) bool {
			return pricing.EffectiveUnitPrice(out[i]) > pricing.EffectiveUnitPrice(out[j])
		})
	}
	return out
}

// Get returns the product with the given id.
func (s *Store) Get(id string) (model.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return model.Product{}, false
}

// Categories returns all categories in insertion order.
func (s *Store) Categories() []model.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Category, len(s.categories))
	copy(out, s.categories)
	return out
}

// AddProduct stores a new product. A missing id is assigned.
func (s *Store) AddProduct(p model.Product) (model.Product, error) {
	if p.Name == "" {
		return model.Product{}, errors.New("catalog: product name is required")
	}
	if p.Price < 0 {
		return model.Product{}, errors.New("catalog: price must be >= 0")
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.products {
		if existing.ID == p.ID {
			return model.Product{}, fmt.Errorf("catalog: duplicate product id %s", p.ID)
		}
	}
	s.products = append(s.products, p)
	return p, nil
}

// ProductPatch carries the admin-editable product fields; nil means leave the
// stored value alone.
type ProductPatch struct {
	Name          *string  `json:"name,omitempty"`
	Category      *string  `json:"category,omitempty"`
	Description   *string  `json:"description,omitempty"`
	Image         *string  `json:"image,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	SalePrice     *float64 `json:"salePrice,omitempty"`
	Stock         *int64   `json:"stock,omitempty"`
	ShippingCost  *float64 `json:"shippingCost,omitempty"`
	TaxPercentage *float64 `json:"taxPercentage,omitempty"`
}

// UpdateProduct applies the patch to the stored product.
func (s *Store) UpdateProduct(id string, patch ProductPatch) (model.Product, error) {
	if patch.Price != nil && *patch.Price < 0 {
		return model.Product{}, errors.New("catalog: price must be >= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID != id {
			continue
		}
		p := &s.products[i]
		if patch.Name != nil {
			p.Name = *patch.Name
		}
		if patch.Category != nil {
			p.Category = *patch.Category
		}
		if patch.Description != nil {
			p.Description = *patch.Description
		}
		if patch.Image != nil {
			p.Image = *patch.Image
		}
		if patch.Price != nil {
			p.Price = *patch.Price
		}
		if patch.SalePrice != nil {
			p.SalePrice = patch.SalePrice
		}
		if patch.Stock != nil {
			p.Stock = patch.Stock
		}
		if patch.ShippingCost != nil {
			p.ShippingCost = patch.ShippingCost
		}
		if patch.TaxPercentage != nil {
			p.TaxPercentage = patch.TaxPercentage
		}
		return *p, nil
	}
	return model.Product{}, ErrNotFound
}

// DeleteProduct removes the product with the given id.
func (s *Store) DeleteProduct(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// AddCategory stores a new category; id and slug are derived when missing.
func (s *Store) AddCategory(c model.Category) (model.Category, error) {
	if c.Name == "" {
		return model.Category{}, errors.New("catalog: category name is required")
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Slug == "" {
		c.Slug = strings.ToLower(strings.ReplaceAll(c.Name, " ", "-"))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.categories {
		if existing.Slug == c.Slug {
			return model.Category{}, fmt.Errorf("catalog: duplicate category slug %s", c.Slug)
		}
	}
	s.categories = append(s.categories, c)
	return c, nil
}

// DeleteCategory removes the category with the given id.
func (s *Store) DeleteCategory(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.categories {
		if s.categories[i].ID == id {
			s.categories = append(s.categories[:i], s.categories[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
