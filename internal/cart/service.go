package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carpetpalace/storefront-api/internal/catalog"
)

// ErrLineNotFound is returned when updating a line the cart does not hold.
var ErrLineNotFound = errors.New("cart line not found")

// Pricer resolves the current price of a product variant.
type Pricer interface {
	VariantPrice(id int, dimension, material string) (*catalog.ProductDetail, catalog.Variant, error)
}

// Service applies cart operations against a Store, pricing new lines from
// the catalog so clients cannot choose their own prices.
type Service struct {
	store   Store
	pricer  Pricer
	nowFunc func() time.Time
}

func NewService(store Store, pricer Pricer) *Service {
	return &Service{store: store, pricer: pricer, nowFunc: time.Now}
}

// NewID returns a fresh cart id.
func NewID() string { return uuid.NewString() }

// Get returns the cart, or an empty cart when none is stored.
func (s *Service) Get(ctx context.Context, id string) (*Cart, error) {
	c, err := s.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return &Cart{ID: id, Items: []Item{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return c, nil
}

// Add puts quantity units of a variant into the cart.
func (s *Service) Add(ctx context.Context, id string, productID int, dimension, material string, quantity int) (*Cart, error) {
	product, variant, err := s.pricer.VariantPrice(productID, dimension, material)
	if err != nil {
		return nil, err
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Add(Item{
		ProductID:     product.ID,
		Name:          product.Name,
		Price:         variant.Price,
		OriginalPrice: variant.OriginalPrice,
		Image:         product.Image,
		Dimension:     variant.Dimension,
		Material:      variant.Material,
		Quantity:      quantity,
	})
	return c, s.save(ctx, c)
}

// UpdateQuantity sets a line's quantity; zero or less removes it.
func (s *Service) UpdateQuantity(ctx context.Context, id string, key LineKey, quantity int) (*Cart, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.SetQuantity(key, quantity) {
		return nil, ErrLineNotFound
	}
	return c, s.save(ctx, c)
}

// Remove deletes a line.
func (s *Service) Remove(ctx context.Context, id string, key LineKey) (*Cart, error) {
	return s.UpdateQuantity(ctx, id, key, 0)
}

// Clear drops the whole cart.
func (s *Service) Clear(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// Import replaces the cart with lines from a browser snapshot (any version),
// repricing each line from the catalog. Unavailable lines are skipped and
// returned so the client can tell the customer.
func (s *Service) Import(ctx context.Context, id string, data []byte) (*Cart, []Item, error) {
	legacy, err := DecodeSnapshot(data)
	if err != nil {
		return nil, nil, err
	}
	c := &Cart{ID: id, Items: []Item{}}
	var skipped []Item
	for _, it := range legacy.Items {
		product, variant, err := s.pricer.VariantPrice(it.ProductID, it.Dimension, it.Material)
		if err != nil {
			skipped = append(skipped, it)
			continue
		}
		c.Add(Item{
			ProductID:     product.ID,
			Name:          product.Name,
			Price:         variant.Price,
			OriginalPrice: variant.OriginalPrice,
			Image:         product.Image,
			Dimension:     variant.Dimension,
			Material:      variant.Material,
			Quantity:      it.Quantity,
		})
	}
	return c, skipped, s.save(ctx, c)
}

func (s *Service) save(ctx context.Context, c *Cart) error {
	c.UpdatedAt = s.nowFunc().UTC()
	if err := s.store.Save(ctx, c); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}
