package status

import "errors"

var (
	ErrEventNotAvailable = errors.New("event: event not available")
	ErrEventNotFound     = errors.New("event: event not found")
	ErrSoldOut           = errors.New("inventory: no tickets available")

	ErrDiscountInvalid    = errors.New("discount: code invalid")
	ErrDiscountExpired    = errors.New("discount: code expired")
	ErrDiscountWrongGroup = errors.New("discount: not applicable to customer group")
	ErrDiscountCapReached = errors.New("discount: use limit reached")

	ErrPaymentNotFound  = errors.New("payment: payment not found")
	ErrPaymentCancelled = errors.New("payment: payment cancelled")
	ErrNotOwner         = errors.New("payment: not payment owner")

	ErrTicketNotFound   = errors.New("ticket: ticket not found")
	ErrTicketNotPaid    = errors.New("ticket: ticket not paid")
	ErrAlreadyCheckedIn = errors.New("ticket: already checked in")

	ErrUserNotFound = errors.New("user: user not found")
)
