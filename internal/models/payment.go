package models

import (
	"github.com/google/uuid"
)

type CreatePaymentRequest struct {
	OrderID  uuid.UUID `json:"order_id" validate:"required"`
	Currency string    `json:"currency" validate:"required,iso4217"`
}

type PaymentIntent struct {
	ID     string `json:"id"`
	Amount int64  `json:"amount"`
	Status string `json:"status"`
}

type PaymentResponse struct {
	PaymentIntent *PaymentIntent `json:"payment_intent"`
	ClientSecret  string         `json:"client_secret"`
}

// KhaltiVerifyRequest carries the widget token and the amount in paisa, the
// smallest currency unit Khalti accepts.
type KhaltiVerifyRequest struct {
	OrderID uuid.UUID `json:"order_id" validate:"required"`
	Token   string    `json:"token" validate:"required"`
	Amount  int64     `json:"amount" validate:"required,min=1"`
}
