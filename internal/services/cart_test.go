package service_test

import (
	"context"
	"errors"
	"testing"

	appErrors "github.com/latta-clothing/storefront/internal/errors"
	"github.com/latta-clothing/storefront/internal/models"
	service "github.com/latta-clothing/storefront/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupCartServiceTest() (service.CartService, *mockCartRepository, *mockProductRepository, *mockWishlistRepository) {
	mockCartRepo := &mockCartRepository{}
	mockProductRepo := &mockProductRepository{}
	mockWishlistRepo := &mockWishlistRepository{}
	cartService := service.NewCartService(mockCartRepo, mockProductRepo, mockWishlistRepo)

	return cartService, mockCartRepo, mockProductRepo, mockWishlistRepo
}

func TestAddItem(t *testing.T) {
	ctx := context.Background()
	guest := service.Session{ID: uuid.NewString()}
	productID := uuid.New()

	testProduct := func(t *testing.T) *models.Product {
		t.Helper()
		return &models.Product{
			ID:        productID,
			Name:      "T-Shirt",
			Price:     mustDecimal(t, "10.00"),
			Available: true,
		}
	}

	t.Run("Success - First Add Snapshots Price", func(t *testing.T) {
		cartService, mockCartRepo, mockProductRepo, _ := setupCartServiceTest()

		mockProductRepo.On("GetProductByID", ctx, productID).Return(testProduct(t), nil).Once()
		mockCartRepo.On("Get", ctx, guest.ID).Return(models.NewCart(guest.ID), nil).Once()
		mockCartRepo.On("Save", ctx, mock.AnythingOfType("*models.Cart")).Return(nil).Run(func(args mock.Arguments) {
			cartArg := args.Get(1).(*models.Cart)
			entry := cartArg.Items[productID.String()]
			assert.Equal(t, 1, entry.Quantity)
			assert.True(t, mustDecimal(t, "10.00").Equal(entry.UnitPrice))
		}).Once()

		result, err := cartService.AddItem(ctx, guest, &models.AddItemRequest{ProductID: productID})

		assert.NoError(t, err)
		assert.Equal(t, 1, result.CartCount)
		assert.Equal(t, "T-Shirt", result.ProductName)

		mockCartRepo.AssertExpectations(t)
		mockProductRepo.AssertExpectations(t)
	})

	t.Run("Success - Repeat Add Bumps Quantity, Keeps Captured Price", func(t *testing.T) {
		cartService, mockCartRepo, mockProductRepo, _ := setupCartServiceTest()

		// the catalog price moved after the first add
		repriced := testProduct(t)
		repriced.Price = mustDecimal(t, "12.50")

		cart := models.NewCart(guest.ID)
		cart.Items[productID.String()] = models.CartEntry{
			ProductID: productID,
			Name:      "T-Shirt",
			UnitPrice: mustDecimal(t, "10.00"),
			Quantity:  1,
		}

		mockProductRepo.On("GetProductByID", ctx, productID).Return(repriced, nil).Once()
		mockCartRepo.On("Get", ctx, guest.ID).Return(cart, nil).Once()
		mockCartRepo.On("Save", ctx, mock.AnythingOfType("*models.Cart")).Return(nil).Run(func(args mock.Arguments) {
			cartArg := args.Get(1).(*models.Cart)
			entry := cartArg.Items[productID.String()]
			assert.Equal(t, 2, entry.Quantity)
			assert.True(t, mustDecimal(t, "10.00").Equal(entry.UnitPrice))
		}).Once()

		result, err := cartService.AddItem(ctx, guest, &models.AddItemRequest{ProductID: productID})

		assert.NoError(t, err)
		assert.Equal(t, 1, result.CartCount)

		mockCartRepo.AssertExpectations(t)
	})

	t.Run("Success - Authenticated Add Removes Wishlist Entry", func(t *testing.T) {
		cartService, mockCartRepo, mockProductRepo, mockWishlistRepo := setupCartServiceTest()

		user := service.Session{ID: uuid.NewString(), UserID: uuid.New()}

		mockProductRepo.On("GetProductByID", ctx, productID).Return(testProduct(t), nil).Once()
		mockWishlistRepo.On("RemoveItem", ctx, user.UserID, productID).Return(nil).Once()
		mockCartRepo.On("Get", ctx, user.ID).Return(models.NewCart(user.ID), nil).Once()
		mockCartRepo.On("Save", ctx, mock.AnythingOfType("*models.Cart")).Return(nil).Once()

		_, err := cartService.AddItem(ctx, user, &models.AddItemRequest{ProductID: productID})

		assert.NoError(t, err)
		mockWishlistRepo.AssertExpectations(t)
	})

	t.Run("Failure - Product Not Found", func(t *testing.T) {
		cartService, mockCartRepo, mockProductRepo, _ := setupCartServiceTest()

		mockErr := errors.New("sql: no rows in result set")
		mockProductRepo.On("GetProductByID", ctx, productID).Return(nil, mockErr).Once()

		result, err := cartService.AddItem(ctx, guest, &models.AddItemRequest{ProductID: productID})

		assert.Error(t, err)
		assert.Nil(t, result)
		appErr, ok := appErrors.IsAppError(err)
		assert.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)

		mockCartRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Product Unavailable", func(t *testing.T) {
		cartService, _, mockProductRepo, _ := setupCartServiceTest()

		gone := testProduct(t)
		gone.Available = false

		mockProductRepo.On("GetProductByID", ctx, productID).Return(gone, nil).Once()

		result, err := cartService.AddItem(ctx, guest, &models.AddItemRequest{ProductID: productID})

		assert.Error(t, err)
		assert.Nil(t, result)
		appErr, ok := appErrors.IsAppError(err)
		assert.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
	})
}

func TestUpdateQuantity(t *testing.T) {
	ctx := context.Background()
	session := service.Session{ID: uuid.NewString()}
	productID := uuid.New()

	cartWithQuantity := func(t *testing.T, qty int) *models.Cart {
		t.Helper()

		cart := models.NewCart(session.ID)
		cart.Items[productID.String()] = models.CartEntry{
			ProductID: productID,
			Name:      "T-Shirt",
			UnitPrice: mustDecimal(t, "10.00"),
			Quantity:  qty,
		}

		return cart
	}

	t.Run("Success - Increase", func(t *testing.T) {
		cartService, mockCartRepo, _, _ := setupCartServiceTest()

		mockCartRepo.On("Get", ctx, session.ID).Return(cartWithQuantity(t, 1), nil).Once()
		mockCartRepo.On("Save", ctx, mock.AnythingOfType("*models.Cart")).Return(nil).Run(func(args mock.Arguments) {
			cartArg := args.Get(1).(*models.Cart)
			assert.Equal(t, 2, cartArg.Items[productID.String()].Quantity)
		}).Once()

		view, err := cartService.UpdateQuantity(ctx, session, &models.UpdateQuantityRequest{
			ProductID: productID,
			Action:    models.QuantityIncrease,
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, view.Count)
		assert.True(t, mustDecimal(t, "20.00").Equal(view.Total))

		mockCartRepo.AssertExpectations(t)
	})

	t.Run("Success - Decrease Above One", func(t *testing.T) {
		cartService, mockCartRepo, _, _ := setupCartServiceTest()

		mockCartRepo.On("Get", ctx, session.ID).Return(cartWithQuantity(t, 3), nil).Once()
		mockCartRepo.On("Save", ctx, mock.AnythingOfType("*models.Cart")).Return(nil).Run(func(args mock.Arguments) {
			cartArg := args.Get(1).(*models.Cart)
			assert.Equal(t, 2, cartArg.Items[productID.String()].Quantity)
		}).Once()

		view, err := cartService.UpdateQuantity(ctx, session, &models.UpdateQuantityRequest{
			ProductID: productID,
			Action:    models.QuantityDecrease,
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, view.Count)

		mockCartRepo.AssertExpectations(t)
	})

	t.Run("Success - Decrease At One Removes The Entry", func(t *testing.T) {
		cartService, mockCartRepo, _, _ := setupCartServiceTest()

		mockCartRepo.On("Get", ctx, session.ID).Return(cartWithQuantity(t, 1), nil).Once()
		mockCartRepo.On("Save", ctx, mock.AnythingOfType("*models.Cart")).Return(nil).Run(func(args mock.Arguments) {
			cartArg := args.Get(1).(*models.Cart)
			_, exists := cartArg.Items[productID.String()]
			assert.False(t, exists)
		}).Once()

		view, err := cartService.UpdateQuantity(ctx, session, &models.UpdateQuantityRequest{
			ProductID: productID,
			Action:    models.QuantityDecrease,
		})

		assert.NoError(t, err)
		assert.Equal(t, 0, view.Count)

		mockCartRepo.AssertExpectations(t)
	})

	t.Run("Success - Unknown Product Is A No-Op", func(t *testing.T) {
		cartService, mockCartRepo, _, _ := setupCartServiceTest()

		mockCartRepo.On("Get", ctx, session.ID).Return(cartWithQuantity(t, 2), nil).Once()

		view, err := cartService.UpdateQuantity(ctx, session, &models.UpdateQuantityRequest{
			ProductID: uuid.New(),
			Action:    models.QuantityIncrease,
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, view.Count)

		mockCartRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestRemoveItem(t *testing.T) {
	ctx := context.Background()
	session := service.Session{ID: uuid.NewString()}
	productID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		cartService, mockCartRepo, _, _ := setupCartServiceTest()

		cart := models.NewCart(session.ID)
		cart.Items[productID.String()] = models.CartEntry{
			ProductID: productID,
			UnitPrice: mustDecimal(t, "10.00"),
			Quantity:  2,
		}

		mockCartRepo.On("Get", ctx, session.ID).Return(cart, nil).Once()
		mockCartRepo.On("Save", ctx, mock.AnythingOfType("*models.Cart")).Return(nil).Once()

		view, err := cartService.RemoveItem(ctx, session, productID)

		assert.NoError(t, err)
		assert.Equal(t, 0, view.Count)

		mockCartRepo.AssertExpectations(t)
	})

	t.Run("Success - Missing Entry Is A No-Op", func(t *testing.T) {
		cartService, mockCartRepo, _, _ := setupCartServiceTest()

		mockCartRepo.On("Get", ctx, session.ID).Return(models.NewCart(session.ID), nil).Once()
		mockCartRepo.On("Save", ctx, mock.AnythingOfType("*models.Cart")).Return(nil).Once()

		view, err := cartService.RemoveItem(ctx, session, productID)

		assert.NoError(t, err)
		assert.Equal(t, 0, view.Count)
	})
}

func TestGetCart(t *testing.T) {
	ctx := context.Background()
	session := service.Session{ID: uuid.NewString()}

	t.Run("Success", func(t *testing.T) {
		cartService, mockCartRepo, _, _ := setupCartServiceTest()

		cart := models.NewCart(session.ID)
		p1 := uuid.New()
		cart.Items[p1.String()] = models.CartEntry{
			ProductID: p1,
			Name:      "Cap",
			UnitPrice: mustDecimal(t, "5.00"),
			Quantity:  2,
		}

		mockCartRepo.On("Get", ctx, session.ID).Return(cart, nil).Once()

		view, err := cartService.GetCart(ctx, session)

		assert.NoError(t, err)
		assert.Equal(t, 1, view.Count)
		assert.True(t, mustDecimal(t, "10.00").Equal(view.Total))
		assert.True(t, mustDecimal(t, "10.00").Equal(view.Items[0].LineTotal))
	})

	t.Run("Failure - Store Unreachable", func(t *testing.T) {
		cartService, mockCartRepo, _, _ := setupCartServiceTest()

		mockCartRepo.On("Get", ctx, session.ID).Return(nil, errors.New("redis timeout")).Once()

		view, err := cartService.GetCart(ctx, session)

		assert.Error(t, err)
		assert.Nil(t, view)
		appErr, ok := appErrors.IsAppError(err)
		assert.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeThirdPartyError, appErr.Code)
	})
}
