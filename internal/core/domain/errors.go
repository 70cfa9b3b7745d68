package domain

import "errors"

var (
	// ErrAssetsNotMatching is returned when an existing order does not trade
	// the exact inverse asset pair of a candidate.
	ErrAssetsNotMatching = errors.New("assets not matching")
	// ErrZeroAmount is returned when an amount that must be positive is zero,
	// including a fill that would release no offered asset.
	ErrZeroAmount = errors.New("amount must be greater than zero")
	// ErrOverFill is returned when a fill exceeds the requested remaining.
	ErrOverFill = errors.New("fill exceeds requested remaining amount")
	// ErrPriceViolation is returned when an existing order is priced worse
	// than the candidate accepts.
	ErrPriceViolation = errors.New("order price is worse than the accepted one")
	// ErrUnauthorized is returned when an account consumes a note it is not
	// allowed to consume, like reclaiming an order it did not create.
	ErrUnauthorized = errors.New("account not authorized to consume note")
	// ErrStaleOrder is returned when the settlement layer refuses to consume
	// a note because it has been consumed or altered elsewhere.
	ErrStaleOrder = errors.New("order is stale, refresh and retry")
	// ErrAmountTooLarge is returned when an amount exceeds MaxAssetAmount.
	ErrAmountTooLarge = errors.New("amount exceeds max asset amount")
	// ErrInsufficientBalance is returned when an account cannot cover an
	// amount it must spend.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrCommitmentMismatch is returned when a presented note commitment
	// differs from the recomputed one.
	ErrCommitmentMismatch = errors.New("note commitment mismatch")
	// ErrInvalidNote is returned when a note can't be decoded as the expected
	// kind.
	ErrInvalidNote = errors.New("invalid note")
	// ErrNoMatchingOrders is returned when no discovered order can be traded
	// against a candidate.
	ErrNoMatchingOrders = errors.New("no matching orders available")
	// ErrOrderClosed is returned when mutating an order that is fully filled
	// or reclaimed.
	ErrOrderClosed = errors.New("order is closed")
	// ErrOrderNotFound is returned when an order record does not exist.
	ErrOrderNotFound = errors.New("order not found")
)
