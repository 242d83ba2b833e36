package common

import "errors"

// Business logic errors
var (
	// General errors
	ErrNotFound = errors.New("resource not found")
	ErrNotOwner = errors.New("not the listing owner")

	// Messaging errors
	ErrSelfMessage = errors.New("cannot send a message to yourself")

	// Payment errors
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrGateway          = errors.New("payment gateway error")

	// Validation errors
	ErrValidation = errors.New("invalid input")
)
