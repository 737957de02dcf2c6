package errors

import "errors"

var (
	ErrNotFound = errors.New("reservation not found")

	ErrAlreadyConfirmed = errors.New("reservation is already confirmed")

	ErrDuplicateNumber = errors.New("reservation number already exists")

	// ErrSequenceExhausted is returned when the per-date sequence passes 999.
	// The three-digit suffix is a documented capacity limit; the generator
	// fails instead of widening the padding.
	ErrSequenceExhausted = errors.New("daily reservation sequence exhausted")
)
