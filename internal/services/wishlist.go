package service

import (
	"context"

	"github.com/latta-clothing/storefront/internal/errors"
	"github.com/latta-clothing/storefront/internal/models"
	repository "github.com/latta-clothing/storefront/internal/repositories"
	"github.com/google/uuid"
)

type WishlistService interface {
	AddItem(ctx context.Context, userID uuid.UUID, req *models.WishlistRequest) (*models.WishlistResponse, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*models.WishlistResponse, error)
	ListItems(ctx context.Context, userID uuid.UUID) ([]*models.WishlistItem, error)
}

type wishlistService struct {
	repo        repository.WishlistRepository
	productRepo repository.ProductRepository
}

func NewWishlistService(repo repository.WishlistRepository, productRepo repository.ProductRepository) WishlistService {
	return &wishlistService{repo: repo, productRepo: productRepo}
}

func (s *wishlistService) AddItem(ctx context.Context, userID uuid.UUID, req *models.WishlistRequest) (*models.WishlistResponse, error) {

	product, err := s.productRepo.GetProductByID(ctx, req.ProductID)
	if err != nil {
		return nil, errors.NotFoundError("Product not found").WithError(err)
	}

	item := &models.WishlistItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: req.ProductID,
	}

	created, err := s.repo.AddItem(ctx, item)
	if err != nil {
		return nil, errors.DatabaseError("Failed to add wishlist item").WithError(err)
	}

	count, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to count wishlist items").WithError(err)
	}

	message := "Added to wishlist"
	if !created {
		message = "Already in wishlist"
	}

	return &models.WishlistResponse{
		Message:       message,
		ProductName:   product.Name,
		WishlistCount: count,
	}, nil
}

func (s *wishlistService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*models.WishlistResponse, error) {

	product, err := s.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		return nil, errors.NotFoundError("Product not found").WithError(err)
	}

	if err := s.repo.RemoveItem(ctx, userID, productID); err != nil {
		return nil, errors.DatabaseError("Failed to remove wishlist item").WithError(err)
	}

	count, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to count wishlist items").WithError(err)
	}

	return &models.WishlistResponse{
		Message:       "Removed from wishlist",
		ProductName:   product.Name,
		WishlistCount: count,
	}, nil
}

func (s *wishlistService) ListItems(ctx context.Context, userID uuid.UUID) ([]*models.WishlistItem, error) {

	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to fetch wishlist").WithError(err)
	}

	return items, nil
}
