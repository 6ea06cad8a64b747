package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/latta-clothing/storefront/internal/cache"
	"github.com/latta-clothing/storefront/internal/errors"
	"github.com/latta-clothing/storefront/internal/models"
	repository "github.com/latta-clothing/storefront/internal/repositories"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
)

type ProductService interface {
	CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error)
	ListProducts(ctx context.Context, availableOnly bool, page, pageSize int) ([]*models.Product, int, error)
}

type productService struct {
	repo      repository.ProductRepository
	cache     cache.Cache
	sanitizer *bluemonday.Policy
}

func NewProductService(repo repository.ProductRepository, productCache cache.Cache) ProductService {
	return &productService{
		repo:      repo,
		cache:     productCache,
		sanitizer: bluemonday.UGCPolicy(),
	}
}

func productCacheKey(id uuid.UUID) string {
	return "product:" + id.String()
}

func parsePrice(raw string) (decimal.Decimal, error) {

	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.ValidationError("Price must be a decimal number").WithError(err)
	}

	if !price.IsPositive() {
		return decimal.Zero, errors.ValidationError("Price must be greater than zero")
	}

	return price, nil
}

func (s *productService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {

	price, err := parsePrice(req.Price)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:          uuid.New(),
		Name:        s.sanitizer.Sanitize(req.Name),
		Description: s.sanitizer.Sanitize(req.Description),
		Price:       price,
		ImageURL:    req.ImageURL,
		Available:   true,
	}

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, errors.DatabaseError("Failed to create product").WithError(err)
	}

	return product, nil
}

func (s *productService) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {

	product := &models.Product{}

	hit, err := s.cache.Get(ctx, productCacheKey(id), product)
	if err != nil {
		slog.Warn("Product cache read failed", slog.String("productId", id.String()), slog.String("error", err.Error()))
	}

	if hit {
		return product, nil
	}

	product, err = s.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, errors.NotFoundError("Product not found").WithError(err)
	}

	if err := s.cache.Set(ctx, productCacheKey(id), product, 0); err != nil {
		slog.Warn("Product cache write failed", slog.String("productId", id.String()), slog.String("error", err.Error()))
	}

	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error) {

	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, errors.NotFoundError("Product not found").WithError(err)
	}

	if req.Name != nil {
		product.Name = s.sanitizer.Sanitize(*req.Name)
	}
	if req.Description != nil {
		product.Description = s.sanitizer.Sanitize(*req.Description)
	}
	if req.Price != nil {
		price, err := parsePrice(*req.Price)
		if err != nil {
			return nil, err
		}
		product.Price = price
	}
	if req.ImageURL != nil {
		product.ImageURL = *req.ImageURL
	}
	if req.Available != nil {
		product.Available = *req.Available
	}

	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, errors.DatabaseError("Failed to update product").WithError(err)
	}

	if err := s.cache.Delete(ctx, productCacheKey(id)); err != nil {
		slog.Warn("Product cache invalidation failed", slog.String("productId", id.String()), slog.String("error", err.Error()))
	}

	return product, nil
}

func (s *productService) ListProducts(ctx context.Context, availableOnly bool, page, pageSize int) ([]*models.Product, int, error) {

	if page < 1 {
		page = 1
	}

	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	products, total, err := s.repo.ListProducts(ctx, availableOnly, page, pageSize)
	if err != nil {
		return nil, 0, errors.DatabaseError(fmt.Sprintf("Failed to fetch products (page %d)", page)).WithError(err)
	}

	return products, total, nil
}
