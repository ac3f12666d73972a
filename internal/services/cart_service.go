package services

import (
	"context"
	"errors"

	"chemstore/internal/models"
	"chemstore/internal/repositories"

	"github.com/google/uuid"
)

// CartLine is one cart entry as shown to its owner: the stored quantity and
// add-time price joined with the current catalog record.
type CartLine struct {
	Quantity int             `json:"quantity"`
	Price    int64           `json:"price"`
	Product  *models.Product `json:"product"`
}

// CartService handles the per-user cart.
type CartService struct {
	store repositories.Store
}

// NewCartService creates a new CartService.
func NewCartService(store repositories.Store) *CartService {
	return &CartService{store: store}
}

// AddItem adds one unit of the product identified by slug to the user's cart,
// creating the cart on first use. Repeat adds increment the existing line and
// keep its original price.
func (s *CartService) AddItem(ctx context.Context, userID, slug string) error {
	if err := checkUserID(userID); err != nil {
		return err
	}
	product, err := productBySlug(ctx, s.store.Products(), slug)
	if err != nil {
		return err
	}
	if !product.Available() {
		return invalidState("Product %s is out of stock", product.Name)
	}

	err = s.store.WithTx(ctx, func(tx repositories.Store) error {
		cart, err := cartFor(ctx, tx, userID)
		if err != nil {
			return err
		}

		item, err := tx.Carts().FindItem(ctx, cart.ID, product.ID)
		switch {
		case err == nil:
			return tx.Carts().IncrementItem(ctx, item.ID, 1)
		case errors.Is(err, repositories.ErrNotFound):
			return tx.Carts().CreateItem(ctx, &models.CartItem{
				CartID:    cart.ID,
				ProductID: product.ID,
				Quantity:  1,
				Price:     product.Price,
			})
		default:
			return err
		}
	})
	if err != nil {
		return passThrough(err, "Failed to add product to cart")
	}
	return nil
}

// RemoveItem deletes the user's cart line for the product identified by slug.
func (s *CartService) RemoveItem(ctx context.Context, userID, slug string) error {
	if err := checkUserID(userID); err != nil {
		return err
	}
	product, err := productBySlug(ctx, s.store.Products(), slug)
	if err != nil {
		return err
	}

	cart, err := s.store.Carts().GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("Cart not found")
		}
		return internal(err, "Failed to remove product from cart")
	}
	if err := s.store.Carts().DeleteItem(ctx, cart.ID, product.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("Product is not in the cart")
		}
		return internal(err, "Failed to remove product from cart")
	}
	return nil
}

// GetCart returns the user's cart lines in the order they were added. A user
// without a cart gets an empty list. Lines whose product has since been removed
// from the catalog are skipped.
func (s *CartService) GetCart(ctx context.Context, userID string) ([]CartLine, error) {
	if err := checkUserID(userID); err != nil {
		return nil, err
	}
	lines := []CartLine{}

	cart, err := s.store.Carts().GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return lines, nil
		}
		return nil, internal(err, "Failed to load cart")
	}
	items, err := s.store.Carts().ListItems(ctx, cart.ID)
	if err != nil {
		return nil, internal(err, "Failed to load cart")
	}
	if len(items) == 0 {
		return lines, nil
	}

	products, err := s.store.Products().GetByIDs(ctx, cartProductIDs(items))
	if err != nil {
		return nil, internal(err, "Failed to load cart")
	}
	for _, item := range items {
		p, ok := products[item.ProductID]
		if !ok {
			continue
		}
		lines = append(lines, CartLine{Quantity: item.Quantity, Price: item.Price, Product: &p})
	}
	return lines, nil
}

// cartFor returns the user's cart, creating an empty one if none exists.
func cartFor(ctx context.Context, tx repositories.Store, userID string) (*models.Cart, error) {
	cart, err := tx.Carts().GetByUserID(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}
	cart = &models.Cart{UserID: userID}
	if err := tx.Carts().Create(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func checkUserID(userID string) error {
	if _, err := uuid.Parse(userID); err != nil {
		return unauthorized("Unauthorized")
	}
	return nil
}

func productBySlug(ctx context.Context, products repositories.ProductRepository, slug string) (*models.Product, error) {
	cas, ok := CASFromSlug(slug)
	if !ok {
		return nil, invalidInput("Invalid product slug %q", slug)
	}
	product, err := products.GetByCASNumber(ctx, cas)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound("Product not found")
		}
		return nil, internal(err, "Failed to look up product")
	}
	return product, nil
}

func cartProductIDs(items []models.CartItem) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	return ids
}
