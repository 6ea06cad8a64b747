package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/latta-clothing/storefront/internal/api/middleware"
	"github.com/latta-clothing/storefront/internal/errors"
	"github.com/latta-clothing/storefront/internal/models"
	service "github.com/latta-clothing/storefront/internal/services"
	"github.com/latta-clothing/storefront/internal/utils"
	"github.com/latta-clothing/storefront/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type NotificationHandler struct {
	notificationService service.NotificationService
	validator           *validator.Validate
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService, validator: validator.New()}
}

func (h *NotificationHandler) SendEmail() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		if _, ok := r.Context().Value(middleware.UserContextKey).(*models.Claims); !ok {
			logger.Warn("Unauthorized notification send attempt")
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		var req models.EmailNotificationRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid email notification input")
			return
		}

		result, err := h.notificationService.SendEmail(r.Context(), &req)
		if err != nil {
			logger.Error("Failed to send email", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Email sent", slog.String("notificationId", result.ID.String()))
		response.Success(w, http.StatusCreated, result)
	}
}

func (h *NotificationHandler) GetNotification() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		if _, ok := r.Context().Value(middleware.UserContextKey).(*models.Claims); !ok {
			logger.Warn("Unauthorized notification access attempt")
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			logger.Warn("Invalid notification id", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		notification, err := h.notificationService.GetNotification(r.Context(), id)
		if err != nil {
			logger.Error("Failed to get notification", slog.Any("error", err))
			response.Error(w, errors.NotFoundError("Notification not found").WithError(err))
			return
		}

		response.Success(w, http.StatusOK, notification)
	}
}

func (h *NotificationHandler) ListNotifications() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		if _, ok := r.Context().Value(middleware.UserContextKey).(*models.Claims); !ok {
			logger.Warn("Unauthorized notification list attempt")
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil || page < 1 {
			page = 1
		}
		pageSize, err := strconv.Atoi(r.URL.Query().Get("pageSize"))
		if err != nil || pageSize < 1 || pageSize > 10 {
			pageSize = 10
		}

		notifications, err := h.notificationService.ListNotifications(r.Context(), page, pageSize)
		if err != nil {
			logger.Error("Failed to list notifications", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, models.PaginatedResponse{
			Data:     notifications,
			Total:    len(notifications),
			Page:     page,
			PageSize: pageSize,
		})
	}
}
