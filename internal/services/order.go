package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/latta-clothing/storefront/internal/errors"
	"github.com/latta-clothing/storefront/internal/events"
	"github.com/latta-clothing/storefront/internal/metrics"
	"github.com/latta-clothing/storefront/internal/models"
	repository "github.com/latta-clothing/storefront/internal/repositories"
	"github.com/google/uuid"
)

type OrderService interface {
	Checkout(ctx context.Context, session Session, req *models.CheckoutRequest) (*models.Order, error)
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID, page, size int) ([]models.Order, int, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, next models.OrderStatus) (*models.Order, error)
	CancelOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
}

type orderService struct {
	orderRepo     repository.OrderRepository
	cartRepo      repository.CartRepository
	userRepo      repository.UserRepository
	notifications NotificationService
	publisher     events.Publisher
}

func NewOrderService(orderRepo repository.OrderRepository, cartRepo repository.CartRepository, userRepo repository.UserRepository, notifications NotificationService, publisher events.Publisher) OrderService {
	return &orderService{
		orderRepo:     orderRepo,
		cartRepo:      cartRepo,
		userRepo:      userRepo,
		notifications: notifications,
		publisher:     publisher,
	}
}

// Checkout materializes the session's cart into a persisted order. The order
// and all of its items are written in one transaction, and the cart is
// cleared only after the write is durable. A per-session lock makes a
// double-submitted checkout produce exactly one order: the loser either
// fails the lock or finds the cart already empty.
func (s *orderService) Checkout(ctx context.Context, session Session, req *models.CheckoutRequest) (*models.Order, error) {

	locked, err := s.cartRepo.AcquireCheckoutLock(ctx, session.ID)
	if err != nil {
		return nil, errors.ThirdPartyError("Failed to start checkout").WithError(err)
	}

	if !locked {
		metrics.CheckoutFailures.WithLabelValues("locked").Inc()
		return nil, errors.TooManyRequestsError("Checkout already in progress")
	}

	defer func() {
		if err := s.cartRepo.ReleaseCheckoutLock(ctx, session.ID); err != nil {
			slog.Warn("Failed to release checkout lock", slog.String("session", session.ID), slog.String("error", err.Error()))
		}
	}()

	cart, err := s.cartRepo.Get(ctx, session.ID)
	if err != nil {
		return nil, errors.ThirdPartyError("Failed to load cart").WithError(err)
	}

	if cart.IsEmpty() {
		metrics.CheckoutFailures.WithLabelValues("empty_cart").Inc()
		return nil, errors.EmptyCartError("Cannot place an order with an empty cart")
	}

	now := time.Now()

	order := &models.Order{
		ID:            uuid.New(),
		UserID:        session.UserID,
		Status:        models.OrderStatusPending,
		TotalPrice:    cart.Total(),
		FullName:      req.FullName,
		Address:       req.Address,
		Phone:         req.Phone,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: models.PaymentStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	for _, line := range cart.Lines() {
		order.Items = append(order.Items, models.OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   line.ProductID,
			ProductName: line.Name,
			Quantity:    line.Quantity,
			Price:       line.UnitPrice,
			CreatedAt:   now,
		})
	}

	if err := s.orderRepo.CreateOrder(ctx, order); err != nil {
		metrics.CheckoutFailures.WithLabelValues("persistence").Inc()
		return nil, errors.DatabaseError("Failed to create order").WithError(err)
	}

	// the order is durable; a stale cart is an inconvenience, not a failure
	if err := s.cartRepo.Clear(ctx, session.ID); err != nil {
		slog.Warn("Order created but cart not cleared",
			slog.String("orderId", order.ID.String()),
			slog.String("session", session.ID),
			slog.String("error", err.Error()))
	}

	metrics.OrdersCreated.Inc()

	if err := s.publisher.PublishOrderCreated(ctx, order); err != nil {
		slog.Warn("Failed to publish order created event", slog.String("orderId", order.ID.String()), slog.String("error", err.Error()))
	}

	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, errors.NotFoundError("Order not found").WithError(err)
	}

	if order.UserID != userID {
		return nil, errors.ForbiddenError("You don't have permission to access this order")
	}

	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, userID uuid.UUID, page, size int) ([]models.Order, int, error) {

	if page < 1 {
		page = 1
	}

	if size < 1 || size > 100 {
		size = 10
	}

	orders, total, err := s.orderRepo.ListOrdersByUser(ctx, userID, page, size)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to fetch orders").WithError(err)
	}

	return orders, total, nil
}

// UpdateOrderStatus moves an order along its lifecycle. Shipping an order
// notifies the customer; both the event and the email are best-effort.
func (s *orderService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, next models.OrderStatus) (*models.Order, error) {

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, errors.NotFoundError("Order not found").WithError(err)
	}

	previous := order.Status

	if !previous.CanTransitionTo(next) {
		return nil, errors.InvalidTransitionError(fmt.Sprintf("Order cannot move from %s to %s", previous, next))
	}

	if err := s.orderRepo.UpdateOrderStatus(ctx, orderID, previous, next); err != nil {
		if err == repository.ErrStatusConflict {
			return nil, errors.InvalidTransitionError("Order status changed concurrently")
		}
		return nil, errors.DatabaseError("Failed to update order status").WithError(err)
	}

	order.Status = next
	order.UpdatedAt = time.Now()

	if err := s.publisher.PublishOrderStatusChanged(ctx, order, previous); err != nil {
		slog.Warn("Failed to publish order status event", slog.String("orderId", order.ID.String()), slog.String("error", err.Error()))
	}

	if next == models.OrderStatusShipped {
		s.notifyShipped(ctx, order)
	}

	return order, nil
}

// CancelOrder is the customer-facing side exit. Only orders that have not
// shipped can be cancelled.
func (s *orderService) CancelOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, errors.NotFoundError("Order not found").WithError(err)
	}

	if order.UserID != userID {
		return nil, errors.ForbiddenError("You don't have permission to cancel this order")
	}

	previous := order.Status

	if !previous.CanTransitionTo(models.OrderStatusCancelled) {
		return nil, errors.InvalidTransitionError(fmt.Sprintf("Order with status %s cannot be cancelled", previous))
	}

	if err := s.orderRepo.UpdateOrderStatus(ctx, orderID, previous, models.OrderStatusCancelled); err != nil {
		if err == repository.ErrStatusConflict {
			return nil, errors.InvalidTransitionError("Order status changed concurrently")
		}
		return nil, errors.DatabaseError("Failed to cancel order").WithError(err)
	}

	order.Status = models.OrderStatusCancelled
	order.UpdatedAt = time.Now()

	if err := s.publisher.PublishOrderCancelled(ctx, order, "customer request"); err != nil {
		slog.Warn("Failed to publish order cancelled event", slog.String("orderId", order.ID.String()), slog.String("error", err.Error()))
	}

	s.notifyCancelled(ctx, order)

	return order, nil
}

// notifyShipped emails the customer off the request path. Failures are
// logged inside the notification service and never surface here.
func (s *orderService) notifyShipped(ctx context.Context, order *models.Order) {

	user, err := s.userRepo.GetUserByID(ctx, order.UserID)
	if err != nil {
		slog.Warn("Shipment email skipped, user lookup failed", slog.String("orderId", order.ID.String()), slog.String("error", err.Error()))
		return
	}

	itemLines := ""
	for _, item := range order.Items {
		itemLines += fmt.Sprintf("- %s (x%d)\n", item.ProductName, item.Quantity)
	}

	req := &models.EmailNotificationRequest{
		Recipient: user.Email,
		Subject:   fmt.Sprintf("Your Latta Clothing Store Order #%s has been Shipped!", order.ID),
		Content: fmt.Sprintf(
			"Dear %s,\n\nYour order #%s has been shipped!\n\nOrder Details:\n%s\nShipping To:\n%s\n%s\nPhone: %s\n\nYou will be notified again once it is delivered.\nThank you for shopping with Latta Clothing Store!",
			user.Name, order.ID, itemLines, order.FullName, order.Address, order.Phone),
	}

	bgCtx := context.WithoutCancel(ctx)

	go func() {
		if _, err := s.notifications.SendEmail(bgCtx, req); err != nil {
			slog.Warn("Shipment email failed", slog.String("orderId", order.ID.String()), slog.String("error", err.Error()))
		}
	}()
}

func (s *orderService) notifyCancelled(ctx context.Context, order *models.Order) {

	user, err := s.userRepo.GetUserByID(ctx, order.UserID)
	if err != nil {
		slog.Warn("Cancellation email skipped, user lookup failed", slog.String("orderId", order.ID.String()), slog.String("error", err.Error()))
		return
	}

	req := &models.EmailNotificationRequest{
		Recipient: user.Email,
		Subject:   fmt.Sprintf("Your Latta Clothing Store Order #%s has been Cancelled", order.ID),
		Content: fmt.Sprintf(
			"Dear %s,\n\nYour order #%s has been cancelled as requested. If you were charged, the payment will be refunded.\n\nThank you for shopping with Latta Clothing Store!",
			user.Name, order.ID),
	}

	bgCtx := context.WithoutCancel(ctx)

	go func() {
		if _, err := s.notifications.SendEmail(bgCtx, req); err != nil {
			slog.Warn("Cancellation email failed", slog.String("orderId", order.ID.String()), slog.String("error", err.Error()))
		}
	}()
}
