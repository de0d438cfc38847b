package errors

import "errors"

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrOrderCancelled     = errors.New("order is cancelled")
	ErrInvalidPayload     = errors.New("invalid order payload")
	ErrInvalidZoneRange   = errors.New("invalid zone range")
	ErrInvalidInput       = errors.New("invalid input")
	ErrShopNotConnected   = errors.New("shop is not connected")
	ErrInvalidSignature   = errors.New("invalid signature")
	ErrUpstream           = errors.New("shop api unavailable")
)
