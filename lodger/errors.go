/*
errors.go - Centralized error types for the tenancy engine

PURPOSE:
  All error types in one place for consistency and discoverability. The API
  layer classifies errors with the helpers at the bottom and maps them to
  HTTP status codes; none of these should ever crash the process.

ERROR CATEGORIES:
  1. Validation errors - malformed input (negative rent, bad split)
  2. State errors - operation illegal in the current lifecycle state
  3. Fund errors - pool violations (shortfall, mismatched split)
  4. Integrity violations - the one fatal class; indicates a bug, and
     freezes further mutation on the affected tenancy

USAGE:
  Callers match with errors.Is / errors.As:

    if errors.Is(err, lodger.ErrRentCapExceeded) { ... }

    var short *lodger.InsufficientFundsError
    if errors.As(err, &short) { log.Println(short.Pool) }
*/
package lodger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is returned for malformed input, e.g. zero rent or an
	// out-of-range payment day.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidState is returned when an operation is not legal in the
	// current lifecycle state.
	ErrInvalidState = errors.New("operation not valid in current state")

	// ErrAlreadyConfirmed is returned when confirming a payment twice.
	// The second confirmation must fail, never silently sum.
	ErrAlreadyConfirmed = errors.New("payment already confirmed")

	// ErrInsufficientFunds is returned when a deduction exceeds a pool.
	ErrInsufficientFunds = errors.New("insufficient funds in pool")

	// ErrAllocationMismatch is returned when a deduction split does not
	// sum to its total within tolerance.
	ErrAllocationMismatch = errors.New("allocation does not match total")

	// ErrRentCapExceeded is returned when an extension offer's rent is
	// above the pro-rated statutory cap.
	ErrRentCapExceeded = errors.New("rent cap exceeded")

	// ErrCapacityExceeded is returned when a landlord would exceed the
	// concurrent tenancy limit.
	ErrCapacityExceeded = errors.New("tenancy capacity exceeded")

	// ErrNotFound is returned when a referenced record doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrIntegrityViolation indicates a detected ledger inconsistency.
	// This should never occur; its presence at runtime means a bug, not
	// user error. Mutation on the tenancy halts.
	ErrIntegrityViolation = errors.New("ledger integrity violation")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError describes which field failed and why.
type ValidationError struct {
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Detail)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// InvalidStateError names the rejected operation and the state it met.
type InvalidStateError struct {
	Op      string
	Current string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s in state %q", e.Op, e.Current)
}

func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }

// AlreadyConfirmedError carries the payment that was double-confirmed.
type AlreadyConfirmedError struct {
	PaymentNumber int
}

func (e *AlreadyConfirmedError) Error() string {
	return fmt.Sprintf("payment %d already confirmed", e.PaymentNumber)
}

func (e *AlreadyConfirmedError) Unwrap() error { return ErrAlreadyConfirmed }

// InsufficientFundsError names which pool is short.
type InsufficientFundsError struct {
	Pool      string // "deposit" or "advance"
	Available Money
	Requested Money
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient %s funds: available %s, requested %s",
		e.Pool, e.Available, e.Requested)
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }

// AllocationMismatchError reports a split that doesn't sum to the total.
type AllocationMismatchError struct {
	Total       Money
	FromDeposit Money
	FromAdvance Money
}

func (e *AllocationMismatchError) Error() string {
	return fmt.Sprintf("deduction split %s + %s does not sum to total %s",
		e.FromDeposit, e.FromAdvance, e.Total)
}

func (e *AllocationMismatchError) Unwrap() error { return ErrAllocationMismatch }

// RentCapExceededError carries the computed maximum so the caller can
// surface it to the landlord.
type RentCapExceededError struct {
	Offered Money
	Maximum Money
}

func (e *RentCapExceededError) Error() string {
	return fmt.Sprintf("offered rent %s exceeds cap %s", e.Offered, e.Maximum)
}

func (e *RentCapExceededError) Unwrap() error { return ErrRentCapExceeded }

// CapacityExceededError reports the landlord at the concurrent limit.
type CapacityExceededError struct {
	LandlordID LandlordID
	Active     int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("landlord %s already has %d active tenancies (max %d)",
		e.LandlordID, e.Active, MaxActiveTenancies)
}

func (e *CapacityExceededError) Unwrap() error { return ErrCapacityExceeded }

// NotFoundError names the missing record.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// IntegrityViolationError freezes a tenancy for operator intervention.
type IntegrityViolationError struct {
	TenancyID TenancyID
	Detail    string
}

func (e *IntegrityViolationError) Error() string {
	return fmt.Sprintf("integrity violation on tenancy %s: %s", e.TenancyID, e.Detail)
}

func (e *IntegrityViolationError) Unwrap() error { return ErrIntegrityViolation }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input
// or an illegal-but-recoverable operation.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrAlreadyConfirmed) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrAllocationMismatch) ||
		errors.Is(err, ErrRentCapExceeded) ||
		errors.Is(err, ErrCapacityExceeded)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsFatal returns true for the integrity class that requires operator
// intervention rather than a user-facing message.
func IsFatal(err error) bool { return errors.Is(err, ErrIntegrityViolation) }
