package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url,omitempty"`
	Available   bool            `json:"available"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Price travels as a string so the handler never parses currency through a
// float. The service converts it with decimal.NewFromString.
type CreateProductRequest struct {
	Name        string `json:"name" validate:"required,min=3,max=200"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price" validate:"required"`
	ImageURL    string `json:"image_url,omitempty" validate:"omitempty,url"`
}

type UpdateProductRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=3,max=200"`
	Description *string `json:"description,omitempty"`
	Price       *string `json:"price,omitempty"`
	ImageURL    *string `json:"image_url,omitempty" validate:"omitempty,url"`
	Available   *bool   `json:"available,omitempty"`
}
