package model

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotOwner          = errors.New("not owner")
	ErrAlreadySettled    = errors.New("already settled")
	// ErrInvalidCredentials covers unknown user names and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

var (
	ErrAccountNotFound = fmt.Errorf("account %w", ErrNotFound)
	ErrVideoNotFound   = fmt.Errorf("video %w", ErrNotFound)
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrAlreadyReferred = fmt.Errorf("user already has a referrer: %w", ErrConflict)
	ErrSlotChanged     = fmt.Errorf("featured slot changed during bid: %w", ErrConflict)
)

func NewValidationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

type BidTooLowError struct {
	Bid    int64
	MinBid int64
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("bid %d is below the minimum bid of %d", e.Bid, e.MinBid)
}

func (e *BidTooLowError) Is(target error) bool { return target == ErrValidation }

type InsufficientFundsError struct {
	Balance  int64
	Required int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: balance %d, required %d", e.Balance, e.Required)
}

func (e *InsufficientFundsError) Is(target error) bool { return target == ErrInsufficientFunds }
