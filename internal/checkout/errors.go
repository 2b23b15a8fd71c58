package checkout

import "errors"

var (
	ErrInvalidCart        = errors.New("cart is empty or has a non-positive quantity")
	ErrMissingCustomerRef = errors.New("roll number is required")
	ErrBadPaymentMethod   = errors.New("unknown payment method")
)
