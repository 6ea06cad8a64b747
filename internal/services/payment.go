package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/latta-clothing/storefront/internal/errors"
	"github.com/latta-clothing/storefront/internal/models"
	repository "github.com/latta-clothing/storefront/internal/repositories"
	"github.com/latta-clothing/storefront/pkg/khalti"
	pkgStripe "github.com/latta-clothing/storefront/pkg/stripe"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v81"
)

type PaymentService interface {
	CreateStripePayment(ctx context.Context, userID uuid.UUID, req *models.CreatePaymentRequest) (*models.PaymentResponse, error)
	VerifyKhaltiPayment(ctx context.Context, userID uuid.UUID, req *models.KhaltiVerifyRequest) (*models.Order, error)
	HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error
}

type paymentService struct {
	orderRepo    repository.OrderRepository
	stripeClient pkgStripe.Client
	khaltiClient khalti.Client
}

func NewPaymentService(orderRepo repository.OrderRepository, stripeClient pkgStripe.Client, khaltiClient khalti.Client) PaymentService {
	return &paymentService{
		orderRepo:    orderRepo,
		stripeClient: stripeClient,
		khaltiClient: khaltiClient,
	}
}

// CreateStripePayment opens a payment intent for an unpaid card order. The
// order total is decimal major units; Stripe takes minor units.
func (s *paymentService) CreateStripePayment(ctx context.Context, userID uuid.UUID, req *models.CreatePaymentRequest) (*models.PaymentResponse, error) {

	order, err := s.orderRepo.GetOrderByID(ctx, req.OrderID)
	if err != nil {
		return nil, errors.NotFoundError("Order not found").WithError(err)
	}

	if order.UserID != userID {
		return nil, errors.ForbiddenError("You don't have permission to pay for this order")
	}

	if order.PaymentStatus == models.PaymentStatusPaid {
		return nil, errors.BadRequestError("Order is already paid")
	}

	if order.PaymentMethod != models.PaymentMethodCard {
		return nil, errors.BadRequestError("Order was not placed with card payment")
	}

	amount := order.TotalPrice.Mul(decimal.NewFromInt(100)).IntPart()

	intent, err := s.stripeClient.CreatePaymentIntent(amount, req.Currency,
		fmt.Sprintf("Latta Clothing Store order %s", order.ID),
		map[string]string{"order_id": order.ID.String()})
	if err != nil {
		return nil, errors.ThirdPartyError("Failed to create payment intent").WithError(err)
	}

	if err := s.orderRepo.UpdatePaymentStatus(ctx, order.ID, models.PaymentStatusPending, intent.ID); err != nil {
		return nil, errors.DatabaseError("Failed to record payment reference").WithError(err)
	}

	return &models.PaymentResponse{
		PaymentIntent: &models.PaymentIntent{
			ID:     intent.ID,
			Amount: intent.Amount,
			Status: string(intent.Status),
		},
		ClientSecret: intent.ClientSecret,
	}, nil
}

// VerifyKhaltiPayment confirms a widget token against the Khalti gateway and
// marks the order paid. The caller supplies the amount in paisa; it must
// match the order total to the paisa.
func (s *paymentService) VerifyKhaltiPayment(ctx context.Context, userID uuid.UUID, req *models.KhaltiVerifyRequest) (*models.Order, error) {

	order, err := s.orderRepo.GetOrderByID(ctx, req.OrderID)
	if err != nil {
		return nil, errors.NotFoundError("Order not found").WithError(err)
	}

	if order.UserID != userID {
		return nil, errors.ForbiddenError("You don't have permission to pay for this order")
	}

	if order.PaymentStatus == models.PaymentStatusPaid {
		return nil, errors.BadRequestError("Order is already paid")
	}

	expectedPaisa := order.TotalPrice.Mul(decimal.NewFromInt(100)).IntPart()
	if req.Amount != expectedPaisa {
		return nil, errors.BadRequestError("Payment amount does not match the order total")
	}

	if err := s.khaltiClient.Verify(ctx, req.Token, req.Amount); err != nil {
		if updateErr := s.orderRepo.UpdatePaymentStatus(ctx, order.ID, models.PaymentStatusFailed, req.Token); updateErr != nil {
			slog.Warn("Failed to record failed payment", slog.String("orderId", order.ID.String()), slog.String("error", updateErr.Error()))
		}
		return nil, errors.ThirdPartyError("Khalti verification failed").WithError(err)
	}

	if err := s.orderRepo.UpdatePaymentStatus(ctx, order.ID, models.PaymentStatusPaid, req.Token); err != nil {
		return nil, errors.DatabaseError("Payment verified but failed to update order").WithError(err)
	}

	order.PaymentStatus = models.PaymentStatusPaid
	order.PaymentRef = req.Token

	return order, nil
}

// HandleStripeWebhook settles card orders from gateway callbacks. Events
// without an order_id in metadata are acknowledged and skipped.
func (s *paymentService) HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error {

	event, err := s.stripeClient.VerifyWebhookSignature(payload, signature)
	if err != nil {
		return errors.UnauthorizedError("Invalid webhook signature").WithError(err)
	}

	switch event.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed":
	default:
		slog.Debug("Ignoring stripe event", slog.String("type", string(event.Type)))
		return nil
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return errors.BadRequestError("Malformed webhook payload").WithError(err)
	}

	rawOrderID, ok := intent.Metadata["order_id"]
	if !ok {
		slog.Warn("Stripe event without order_id", slog.String("intentId", intent.ID))
		return nil
	}

	orderID, err := uuid.Parse(rawOrderID)
	if err != nil {
		return errors.BadRequestError("Invalid order_id in webhook metadata").WithError(err)
	}

	status := models.PaymentStatusPaid
	if event.Type == "payment_intent.payment_failed" {
		status = models.PaymentStatusFailed
	}

	if err := s.orderRepo.UpdatePaymentStatus(ctx, orderID, status, intent.ID); err != nil {
		return errors.DatabaseError("Failed to update payment status").WithError(err)
	}

	slog.Info("Payment status updated from webhook",
		slog.String("orderId", orderID.String()),
		slog.String("status", string(status)))

	return nil
}
