package service

import (
	"github.com/bazaarlabs/bazaar/internal/domain"
)

// Cart and catalog errors.
var (
	ErrProductNotFound = domain.ErrProductNotFound
	ErrCartEmpty       = domain.ErrCartEmpty
	ErrInvalidQuantity = domain.ErrInvalidQuantity
	ErrOutOfStock      = domain.ErrOutOfStock
)

// Order errors.
var (
	ErrOrderNotFound          = domain.ErrOrderNotFound
	ErrOrderItemNotFound      = domain.ErrOrderItemNotFound
	ErrPriceOrStockChanged    = domain.ErrPriceOrStockChanged
	ErrPaymentNotVerified     = domain.ErrPaymentNotVerified
	ErrUnauthorized           = domain.ErrUnauthorized
	ErrInvalidTransition      = domain.ErrInvalidTransition
	ErrConcurrentStatusChange = domain.ErrConcurrentStatusChange
)

// Return errors.
var (
	ErrOrderNotDelivered     = domain.ErrOrderNotDelivered
	ErrReturnAlreadyActioned = domain.ErrReturnAlreadyActioned
	ErrInvalidReturnState    = domain.ErrInvalidReturnState
	ErrReturnReasonRequired  = domain.Errorf(domain.EINVALID, "", "Return reason must not be empty")
)
