package service

import (
	"context"

	"github.com/latta-clothing/storefront/internal/errors"
	"github.com/latta-clothing/storefront/internal/metrics"
	"github.com/latta-clothing/storefront/internal/models"
	repository "github.com/latta-clothing/storefront/internal/repositories"
	"github.com/google/uuid"
)

// Session identifies the cart owner. ID is the session cookie value and is
// always set; UserID is uuid.Nil until the visitor authenticates.
type Session struct {
	ID     string
	UserID uuid.UUID
}

func (s Session) Authenticated() bool {
	return s.UserID != uuid.Nil
}

type CartService interface {
	GetCart(ctx context.Context, session Session) (*models.CartView, error)
	AddItem(ctx context.Context, session Session, req *models.AddItemRequest) (*models.AddItemResponse, error)
	RemoveItem(ctx context.Context, session Session, productID uuid.UUID) (*models.CartView, error)
	UpdateQuantity(ctx context.Context, session Session, req *models.UpdateQuantityRequest) (*models.CartView, error)
}

type cartService struct {
	cartRepo     repository.CartRepository
	productRepo  repository.ProductRepository
	wishlistRepo repository.WishlistRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, wishlistRepo repository.WishlistRepository) CartService {
	return &cartService{cartRepo: cartRepo, productRepo: productRepo, wishlistRepo: wishlistRepo}
}

func (s *cartService) GetCart(ctx context.Context, session Session) (*models.CartView, error) {

	cart, err := s.cartRepo.Get(ctx, session.ID)
	if err != nil {
		return nil, errors.ThirdPartyError("Failed to load cart").WithError(err)
	}

	return cartView(cart), nil
}

// AddItem puts one unit of the product into the cart, snapshotting the
// catalog price on first add. Adding the same product again only bumps the
// quantity; the captured price never changes.
func (s *cartService) AddItem(ctx context.Context, session Session, req *models.AddItemRequest) (*models.AddItemResponse, error) {

	product, err := s.productRepo.GetProductByID(ctx, req.ProductID)
	if err != nil {
		return nil, errors.NotFoundError("Product not found").WithError(err)
	}

	if !product.Available {
		return nil, errors.NotFoundError("Product is no longer available")
	}

	// a product moving into the cart leaves the wishlist
	if session.Authenticated() {
		if err := s.wishlistRepo.RemoveItem(ctx, session.UserID, req.ProductID); err != nil {
			return nil, errors.DatabaseError("Failed to update wishlist").WithError(err)
		}
	}

	cart, err := s.cartRepo.Get(ctx, session.ID)
	if err != nil {
		return nil, errors.ThirdPartyError("Failed to load cart").WithError(err)
	}

	key := req.ProductID.String()

	if entry, exists := cart.Items[key]; exists {
		entry.Quantity++
		cart.Items[key] = entry
	} else {
		cart.Items[key] = models.CartEntry{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  1,
		}
	}

	if err := s.cartRepo.Save(ctx, cart); err != nil {
		return nil, errors.ThirdPartyError("Failed to update cart").WithError(err)
	}

	metrics.CartItemsAdded.Inc()

	return &models.AddItemResponse{
		CartCount:   len(cart.Items),
		ProductName: product.Name,
		UnitPrice:   product.Price,
	}, nil
}

// RemoveItem deletes the product's entry. Removing something that is not in
// the cart is a no-op, not an error.
func (s *cartService) RemoveItem(ctx context.Context, session Session, productID uuid.UUID) (*models.CartView, error) {

	cart, err := s.cartRepo.Get(ctx, session.ID)
	if err != nil {
		return nil, errors.ThirdPartyError("Failed to load cart").WithError(err)
	}

	delete(cart.Items, productID.String())

	if err := s.cartRepo.Save(ctx, cart); err != nil {
		return nil, errors.ThirdPartyError("Failed to update cart").WithError(err)
	}

	return cartView(cart), nil
}

// UpdateQuantity steps the entry's quantity by one in either direction. A
// decrease that would reach zero removes the entry entirely, keeping the
// quantity >= 1 invariant. Unknown products are ignored.
func (s *cartService) UpdateQuantity(ctx context.Context, session Session, req *models.UpdateQuantityRequest) (*models.CartView, error) {

	cart, err := s.cartRepo.Get(ctx, session.ID)
	if err != nil {
		return nil, errors.ThirdPartyError("Failed to load cart").WithError(err)
	}

	key := req.ProductID.String()

	entry, exists := cart.Items[key]
	if !exists {
		return cartView(cart), nil
	}

	switch req.Action {
	case models.QuantityIncrease:
		entry.Quantity++
		cart.Items[key] = entry
	case models.QuantityDecrease:
		entry.Quantity--
		if entry.Quantity <= 0 {
			delete(cart.Items, key)
		} else {
			cart.Items[key] = entry
		}
	default:
		return nil, errors.BadRequestError("Unknown quantity action")
	}

	if err := s.cartRepo.Save(ctx, cart); err != nil {
		return nil, errors.ThirdPartyError("Failed to update cart").WithError(err)
	}

	return cartView(cart), nil
}

func cartView(cart *models.Cart) *models.CartView {
	return &models.CartView{
		Items: cart.Lines(),
		Total: cart.Total(),
		Count: len(cart.Items),
	}
}
