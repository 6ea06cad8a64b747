package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/latta-clothing/storefront/internal/models"
	"github.com/latta-clothing/storefront/internal/utils"
	"github.com/google/uuid"
)

type WishlistRepository interface {
	// AddItem inserts a wishlist row. Returns false when the (user, product)
	// pair already exists.
	AddItem(ctx context.Context, item *models.WishlistItem) (bool, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.WishlistItem, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
}

type wishlistRepository struct {
	DB *sql.DB
}

func NewWishlistRepo(db *sql.DB) WishlistRepository {
	return &wishlistRepository{DB: db}
}

func (r *wishlistRepository) AddItem(ctx context.Context, item *models.WishlistItem) (bool, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO wishlist_items (id, user_id, product_id, added_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, product_id) DO NOTHING
		RETURNING added_at
	`

	err := r.DB.QueryRowContext(dbCtx, query, item.ID, item.UserID, item.ProductID).Scan(&item.AddedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			// conflict hit, row already present
			return false, nil
		}
		return false, fmt.Errorf("failed to insert wishlist item: %w", err)
	}

	return true, nil
}

func (r *wishlistRepository) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`

	// removing an absent row is benign
	_, err := r.DB.ExecContext(dbCtx, query, userID, productID)
	if err != nil {
		return fmt.Errorf("failed to remove wishlist item: %w", err)
	}

	return nil
}

func (r *wishlistRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.WishlistItem, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT w.id, w.product_id, w.added_at,
		       p.id, p.name, p.description, p.price, p.image_url, p.available, p.created_at, p.updated_at
		FROM wishlist_items w
		JOIN products p ON p.id = w.product_id
		WHERE w.user_id = $1
		ORDER BY w.added_at DESC
	`

	rows, err := r.DB.QueryContext(dbCtx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist items: %w", err)
	}

	defer rows.Close()

	var items []*models.WishlistItem

	for rows.Next() {
		item := &models.WishlistItem{UserID: userID}
		product := &models.Product{}

		err := rows.Scan(&item.ID, &item.ProductID, &item.AddedAt,
			&product.ID, &product.Name, &product.Description, &product.Price, &product.ImageURL, &product.Available, &product.CreatedAt, &product.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wishlist item: %w", err)
		}

		item.Product = product
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *wishlistRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var count int

	query := `SELECT COUNT(*) FROM wishlist_items WHERE user_id = $1`

	err := r.DB.QueryRowContext(dbCtx, query, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count wishlist items: %w", err)
	}

	return count, nil
}
