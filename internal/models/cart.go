package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartEntry is one product line inside a session cart. UnitPrice is the
// catalog price captured when the product was first added, never re-read
// at checkout.
type CartEntry struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

func (e CartEntry) LineTotal() decimal.Decimal {
	return e.UnitPrice.Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// Cart is the pre-checkout basket of one session, keyed by product ID.
// An entry with quantity <= 0 is never stored; it is removed instead.
type Cart struct {
	SessionID string               `json:"session_id"`
	Items     map[string]CartEntry `json:"items"`
	UpdatedAt time.Time            `json:"updated_at"`
}

func NewCart(sessionID string) *Cart {
	return &Cart{
		SessionID: sessionID,
		Items:     make(map[string]CartEntry),
		UpdatedAt: time.Now(),
	}
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Total is the exact decimal sum of every line total.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero

	for _, entry := range c.Items {
		total = total.Add(entry.LineTotal())
	}

	return total
}

type CartLine struct {
	CartEntry
	LineTotal decimal.Decimal `json:"line_total"`
}

// Lines returns the cart entries in a stable order for rendering and for
// order materialization. Map iteration order is not stable, so lines are
// sorted by product ID.
func (c *Cart) Lines() []CartLine {
	lines := make([]CartLine, 0, len(c.Items))

	for _, entry := range c.Items {
		lines = append(lines, CartLine{CartEntry: entry, LineTotal: entry.LineTotal()})
	}

	sort.Slice(lines, func(i, j int) bool {
		return lines[i].ProductID.String() < lines[j].ProductID.String()
	})

	return lines
}

// QuantityAction is the explicit command applied by UpdateQuantity.
type QuantityAction string

const (
	QuantityIncrease QuantityAction = "increase"
	QuantityDecrease QuantityAction = "decrease"
)

type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
}

type UpdateQuantityRequest struct {
	ProductID uuid.UUID      `json:"product_id" validate:"required"`
	Action    QuantityAction `json:"action" validate:"required,oneof=increase decrease"`
}

// AddItemResponse carries the display data the storefront shows in its
// "added to cart" toast.
type AddItemResponse struct {
	CartCount   int             `json:"cart_count"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type CartView struct {
	Items []CartLine      `json:"items"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}
