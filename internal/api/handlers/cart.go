package handlers

import (
	"log/slog"
	"net/http"

	"github.com/latta-clothing/storefront/internal/api/middleware"
	"github.com/latta-clothing/storefront/internal/errors"
	"github.com/latta-clothing/storefront/internal/models"
	service "github.com/latta-clothing/storefront/internal/services"
	"github.com/latta-clothing/storefront/internal/utils"
	"github.com/latta-clothing/storefront/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type CartHandler struct {
	cartService service.CartService
	validator   *validator.Validate
}

func NewCartHandler(cartService service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService, validator: validator.New()}
}

// sessionFromRequest builds the cart owner identity from the session cookie
// plus the JWT claims when the visitor is signed in.
func sessionFromRequest(r *http.Request) (service.Session, bool) {

	sessionID, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		return service.Session{}, false
	}

	session := service.Session{ID: sessionID}

	if claims, ok := r.Context().Value(middleware.UserContextKey).(*models.Claims); ok {
		session.UserID = claims.UserID
	}

	return session, true
}

func (h *CartHandler) GetCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		session, ok := sessionFromRequest(r)
		if !ok {
			logger.Warn("Cart request without session")
			response.Error(w, errors.BadRequestError("Cart session is required"))
			return
		}

		cart, err := h.cartService.GetCart(r.Context(), session)
		if err != nil {
			logger.Error("Failed to load cart", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}

func (h *CartHandler) AddItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		session, ok := sessionFromRequest(r)
		if !ok {
			logger.Warn("Add to cart without session")
			response.Error(w, errors.BadRequestError("Cart session is required"))
			return
		}

		var req models.AddItemRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid add to cart input")
			return
		}

		logger = logger.With(slog.String("productId", req.ProductID.String()))

		result, err := h.cartService.AddItem(r.Context(), session, &req)
		if err != nil {
			logger.Error("Failed to add item to cart", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Item added to cart", slog.Int("cartCount", result.CartCount))
		response.Success(w, http.StatusOK, result)
	}
}

func (h *CartHandler) RemoveItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		session, ok := sessionFromRequest(r)
		if !ok {
			logger.Warn("Remove from cart without session")
			response.Error(w, errors.BadRequestError("Cart session is required"))
			return
		}

		productID, err := utils.ParseID(r, "id")
		if err != nil {
			logger.Warn("Invalid product id", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		cart, err := h.cartService.RemoveItem(r.Context(), session, productID)
		if err != nil {
			logger.Error("Failed to remove item from cart", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Item removed from cart", slog.String("productId", productID.String()))
		response.Success(w, http.StatusOK, cart)
	}
}

func (h *CartHandler) UpdateQuantity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		session, ok := sessionFromRequest(r)
		if !ok {
			logger.Warn("Cart update without session")
			response.Error(w, errors.BadRequestError("Cart session is required"))
			return
		}

		var req models.UpdateQuantityRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid cart quantity input")
			return
		}

		cart, err := h.cartService.UpdateQuantity(r.Context(), session, &req)
		if err != nil {
			logger.Error("Failed to update cart quantity", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}
