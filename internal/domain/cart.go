package domain

import (
	"time"

	"github.com/google/uuid"
)

// Cart-related domain errors.
var (
	ErrCartEmpty       = &Error{Code: EINVALID, Message: "Cart is empty"}
	ErrInvalidQuantity = &Error{Code: EINVALID, Message: "Quantity must be at least 1"}
	ErrOutOfStock      = &Error{Code: ECONFLICT, Message: "Requested quantity exceeds available stock"}
)

// Cart is a buyer's mutable list of product lines. It exists only between
// "first add" and order creation; the order snapshot is the durable record.
type Cart struct {
	BuyerID   uuid.UUID
	Lines     []CartLine
	UpdatedAt time.Time
}

// CartLine references a product by id with a quantity. Price and name are
// never stored on the line; they are read live from the catalog so a stale
// cart cannot fix yesterday's price.
type CartLine struct {
	ProductID uuid.UUID
	Qty       int32
	AddedAt   time.Time
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Line returns the line for a product, or nil if absent.
func (c *Cart) Line(productID uuid.UUID) *CartLine {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return &c.Lines[i]
		}
	}
	return nil
}
