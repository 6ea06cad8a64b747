package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	appErrors "github.com/latta-clothing/storefront/internal/errors"
	"github.com/latta-clothing/storefront/internal/models"
	service "github.com/latta-clothing/storefront/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, key string, value any) (bool, error) {
	args := m.Called(ctx, key, value)
	return args.Bool(0), args.Error(1)
}

func (m *mockCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *mockCache) Close() error {
	args := m.Called()
	return args.Error(0)
}

func setupProductServiceTest() (service.ProductService, *mockProductRepository, *mockCache) {
	mockRepo := &mockProductRepository{}
	productCache := &mockCache{}
	productService := service.NewProductService(mockRepo, productCache)

	return productService, mockRepo, productCache
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		productService, mockRepo, _ := setupProductServiceTest()

		req := &models.CreateProductRequest{
			Name:        "Himalayan Wool Sweater",
			Description: "Hand-knitted in Kathmandu",
			Price:       "49.99",
		}

		mockRepo.On("CreateProduct", ctx, mock.AnythingOfType("*models.Product")).Return(nil).Once()

		product, err := productService.CreateProduct(ctx, req)

		assert.NoError(t, err)
		assert.Equal(t, "Himalayan Wool Sweater", product.Name)
		assert.True(t, mustDecimal(t, "49.99").Equal(product.Price))
		assert.True(t, product.Available)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Success - Markup Stripped From Name", func(t *testing.T) {
		productService, mockRepo, _ := setupProductServiceTest()

		req := &models.CreateProductRequest{
			Name:  `Sweater<script>alert("x")</script>`,
			Price: "49.99",
		}

		mockRepo.On("CreateProduct", ctx, mock.AnythingOfType("*models.Product")).Return(nil).Once()

		product, err := productService.CreateProduct(ctx, req)

		assert.NoError(t, err)
		assert.Equal(t, "Sweater", product.Name)
	})

	t.Run("Failure - Invalid Price", func(t *testing.T) {
		productService, mockRepo, _ := setupProductServiceTest()

		req := &models.CreateProductRequest{Name: "Sweater", Price: "not-a-price"}

		product, err := productService.CreateProduct(ctx, req)

		assert.Error(t, err)
		assert.Nil(t, product)
		appErr, ok := appErrors.IsAppError(err)
		assert.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeValidation, appErr.Code)
		mockRepo.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Zero Price", func(t *testing.T) {
		productService, mockRepo, _ := setupProductServiceTest()

		req := &models.CreateProductRequest{Name: "Sweater", Price: "0.00"}

		product, err := productService.CreateProduct(ctx, req)

		assert.Error(t, err)
		assert.Nil(t, product)
		mockRepo.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
	})
}

func TestGetProductByID(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()

	stored := &models.Product{
		ID:        productID,
		Name:      "T-Shirt",
		Price:     mustDecimal(t, "10.00"),
		Available: true,
	}

	t.Run("Success - Cache Miss Falls Through To Repo", func(t *testing.T) {
		productService, mockRepo, productCache := setupProductServiceTest()

		productCache.On("Get", ctx, "product:"+productID.String(), mock.Anything).Return(false, nil).Once()
		mockRepo.On("GetProductByID", ctx, productID).Return(stored, nil).Once()
		productCache.On("Set", ctx, "product:"+productID.String(), stored, time.Duration(0)).Return(nil).Once()

		product, err := productService.GetProductByID(ctx, productID)

		assert.NoError(t, err)
		assert.Equal(t, stored.Name, product.Name)
		mockRepo.AssertExpectations(t)
		productCache.AssertExpectations(t)
	})

	t.Run("Success - Cache Hit Skips Repo", func(t *testing.T) {
		productService, mockRepo, productCache := setupProductServiceTest()

		productCache.On("Get", ctx, "product:"+productID.String(), mock.Anything).
			Run(func(args mock.Arguments) {
				dest := args.Get(2).(*models.Product)
				data, err := json.Marshal(stored)
				require.NoError(t, err)
				require.NoError(t, json.Unmarshal(data, dest))
			}).
			Return(true, nil).Once()

		product, err := productService.GetProductByID(ctx, productID)

		assert.NoError(t, err)
		assert.Equal(t, stored.Name, product.Name)
		mockRepo.AssertNotCalled(t, "GetProductByID", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Not Found", func(t *testing.T) {
		productService, mockRepo, productCache := setupProductServiceTest()

		productCache.On("Get", ctx, "product:"+productID.String(), mock.Anything).Return(false, nil).Once()
		mockRepo.On("GetProductByID", ctx, productID).Return(nil, errors.New("sql: no rows in result set")).Once()

		product, err := productService.GetProductByID(ctx, productID)

		assert.Error(t, err)
		assert.Nil(t, product)
		appErr, ok := appErrors.IsAppError(err)
		assert.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
	})
}

func TestUpdateProduct(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()

	existing := func(t *testing.T) *models.Product {
		t.Helper()
		return &models.Product{
			ID:        productID,
			Name:      "T-Shirt",
			Price:     mustDecimal(t, "10.00"),
			Available: true,
		}
	}

	t.Run("Success - Reprice Invalidates Cache", func(t *testing.T) {
		productService, mockRepo, productCache := setupProductServiceTest()

		newPrice := "12.50"
		req := &models.UpdateProductRequest{Price: &newPrice}

		mockRepo.On("GetProductByID", ctx, productID).Return(existing(t), nil).Once()
		mockRepo.On("UpdateProduct", ctx, mock.AnythingOfType("*models.Product")).Return(nil).Once()
		productCache.On("Delete", ctx, "product:"+productID.String()).Return(nil).Once()

		product, err := productService.UpdateProduct(ctx, productID, req)

		assert.NoError(t, err)
		assert.True(t, mustDecimal(t, "12.50").Equal(product.Price))
		mockRepo.AssertExpectations(t)
		productCache.AssertExpectations(t)
	})

	t.Run("Success - Mark Unavailable", func(t *testing.T) {
		productService, mockRepo, productCache := setupProductServiceTest()

		unavailable := false
		req := &models.UpdateProductRequest{Available: &unavailable}

		mockRepo.On("GetProductByID", ctx, productID).Return(existing(t), nil).Once()
		mockRepo.On("UpdateProduct", ctx, mock.AnythingOfType("*models.Product")).Return(nil).Once()
		productCache.On("Delete", ctx, "product:"+productID.String()).Return(nil).Once()

		product, err := productService.UpdateProduct(ctx, productID, req)

		assert.NoError(t, err)
		assert.False(t, product.Available)
	})

	t.Run("Failure - Unknown Product", func(t *testing.T) {
		productService, mockRepo, _ := setupProductServiceTest()

		newPrice := "12.50"
		req := &models.UpdateProductRequest{Price: &newPrice}

		mockRepo.On("GetProductByID", ctx, productID).Return(nil, errors.New("sql: no rows in result set")).Once()

		product, err := productService.UpdateProduct(ctx, productID, req)

		assert.Error(t, err)
		assert.Nil(t, product)
		mockRepo.AssertNotCalled(t, "UpdateProduct", mock.Anything, mock.Anything)
	})
}

func TestListProducts(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Pagination Normalized", func(t *testing.T) {
		productService, mockRepo, _ := setupProductServiceTest()

		products := []*models.Product{{ID: uuid.New(), Name: "T-Shirt", Price: mustDecimal(t, "10.00"), Available: true}}

		mockRepo.On("ListProducts", ctx, true, 1, 20).Return(products, 1, nil).Once()

		got, total, err := productService.ListProducts(ctx, true, 0, 500)

		assert.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Len(t, got, 1)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Failure - Repo Error", func(t *testing.T) {
		productService, mockRepo, _ := setupProductServiceTest()

		mockRepo.On("ListProducts", ctx, false, 2, 20).Return(nil, 0, errors.New("mock db error")).Once()

		got, total, err := productService.ListProducts(ctx, false, 2, 20)

		assert.Error(t, err)
		assert.Zero(t, total)
		assert.Nil(t, got)
	})
}
