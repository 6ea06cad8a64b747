package handlers

import (
	"io"
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

// webhook payloads are small; cap the body read anyway
const maxWebhookBodyBytes = 64 << 10

type PaymentHandler struct {
	paymentService service.PaymentService
	validator      *validator.Validate
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, validator: validator.New()}
}

func (h *PaymentHandler) CreateStripePayment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := r.Context().Value(middleware.UserContextKey).(*models.Claims)
		if !ok {
			logger.Warn("Unauthorized payment attempt")
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		logger = logger.With(slog.String("userID", claims.UserID.String()))

		var req models.CreatePaymentRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid payment input")
			return
		}

		result, err := h.paymentService.CreateStripePayment(r.Context(), claims.UserID, &req)
		if err != nil {
			logger.Error("Failed to create payment", slog.String("orderId", req.OrderID.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Payment intent created", slog.String("orderId", req.OrderID.String()))
		response.Success(w, http.StatusCreated, result)
	}
}

func (h *PaymentHandler) VerifyKhaltiPayment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := r.Context().Value(middleware.UserContextKey).(*models.Claims)
		if !ok {
			logger.Warn("Unauthorized payment verification attempt")
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		logger = logger.With(slog.String("userID", claims.UserID.String()))

		var req models.KhaltiVerifyRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid khalti verification input")
			return
		}

		order, err := h.paymentService.VerifyKhaltiPayment(r.Context(), claims.UserID, &req)
		if err != nil {
			logger.Error("Khalti verification failed", slog.String("orderId", req.OrderID.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Khalti payment verified", slog.String("orderId", order.ID.String()))
		response.Success(w, http.StatusOK, order)
	}
}

// StripeWebhook is hit by Stripe, not by users; authentication is the
// signature header.
func (h *PaymentHandler) StripeWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
		if err != nil {
			logger.Error("Failed to read webhook body", slog.String("error", err.Error()))
			response.Error(w, errors.BadRequestError("Failed to read request body"))
			return
		}

		signature := r.Header.Get("Stripe-Signature")

		if err := h.paymentService.HandleStripeWebhook(r.Context(), payload, signature); err != nil {
			logger.Error("Webhook processing failed", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, map[string]string{"received": "true"})
	}
}
