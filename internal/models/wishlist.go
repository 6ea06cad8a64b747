package models

import (
	"time"

	"github.com/google/uuid"
)

// WishlistItem is a product saved by a user. One row per (user, product),
// enforced by a unique constraint.
type WishlistItem struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	ProductID uuid.UUID `json:"product_id"`
	AddedAt   time.Time `json:"added_at"`
	Product   *Product  `json:"product,omitempty"`
}

type WishlistRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
}

// WishlistResponse carries the badge count the storefront UI shows.
type WishlistResponse struct {
	Message       string `json:"message"`
	ProductName   string `json:"product_name"`
	WishlistCount int    `json:"wishlist_count"`
}
