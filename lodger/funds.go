/*
funds.go - Deposit and advance-rent fund allocation

PURPOSE:
  Tracks the pool of lodger money the landlord holds - the deposit and the
  advance month of rent collected at activation - and validates deductions
  against it. The conservation invariant:

    availableDeposit + sum(fromDeposit) == originalDeposit
    availableAdvance + sum(fromAdvance) == originalAdvance

  holds after every operation. Available balances never go negative and
  never exceed the originals; a violation is an IntegrityViolation, which
  freezes the tenancy for operator intervention.

VALIDATION ORDER:
  1. Split sums to total (tolerance 0.01) - AllocationMismatchError
  2. Each leg fits its pool - InsufficientFundsError naming the short pool
  Both checks run server-side against the pool itself; a client-echoed
  "total available" is never trusted.

SEE ALSO:
  - types.go: FundsPool, Deduction
  - lifecycle.go: Restricts deduction recording to active tenancies
*/
package lodger

import "time"

// =============================================================================
// POOL CONSTRUCTION
// =============================================================================

// NewFundsPool derives the pool from the tenancy's initial overpayment
// structure: the deposit (when applicable) plus the advance month of rent
// bundled into payment 1.
func NewFundsPool(t *Tenancy) *FundsPool {
	deposit := Money{}
	if t.DepositApplicable {
		deposit = t.DepositAmount
	}
	advance := t.MonthlyRent

	return &FundsPool{
		OriginalDeposit:  deposit,
		OriginalAdvance:  advance,
		AvailableDeposit: deposit,
		AvailableAdvance: advance,
	}
}

// =============================================================================
// DEDUCTIONS
// =============================================================================

// DeductionInput is a landlord's request to charge the pool.
type DeductionInput struct {
	Type        DeductionType
	Description string
	TotalAmount Money
	FromDeposit Money
	FromAdvance Money
}

// RecordDeduction validates the split against the live pool, decrements
// both legs, and appends the immutable Deduction record.
func (t *Tenancy) RecordDeduction(in DeductionInput, at time.Time) (*Deduction, error) {
	if t.Funds == nil {
		return nil, &InvalidStateError{Op: "record deduction", Current: "no funds pool"}
	}
	if err := t.Funds.checkIntegrity(t.ID); err != nil {
		return nil, err
	}

	if !in.TotalAmount.IsPositive() {
		return nil, &ValidationError{Field: "totalAmount", Detail: "must be positive"}
	}
	if in.FromDeposit.IsNegative() || in.FromAdvance.IsNegative() {
		return nil, &ValidationError{Field: "split", Detail: "pool amounts must not be negative"}
	}
	if !in.FromDeposit.Add(in.FromAdvance).WithinTolerance(in.TotalAmount, AllocationTolerance) {
		return nil, &AllocationMismatchError{
			Total:       in.TotalAmount,
			FromDeposit: in.FromDeposit,
			FromAdvance: in.FromAdvance,
		}
	}
	if in.FromDeposit.GreaterThan(t.Funds.AvailableDeposit) {
		return nil, &InsufficientFundsError{
			Pool:      "deposit",
			Available: t.Funds.AvailableDeposit,
			Requested: in.FromDeposit,
		}
	}
	if in.FromAdvance.GreaterThan(t.Funds.AvailableAdvance) {
		return nil, &InsufficientFundsError{
			Pool:      "advance",
			Available: t.Funds.AvailableAdvance,
			Requested: in.FromAdvance,
		}
	}

	t.Funds.AvailableDeposit = t.Funds.AvailableDeposit.Sub(in.FromDeposit)
	t.Funds.AvailableAdvance = t.Funds.AvailableAdvance.Sub(in.FromAdvance)

	if err := t.Funds.checkIntegrity(t.ID); err != nil {
		return nil, err
	}

	d := Deduction{
		ID:          NewDeductionID(),
		Type:        in.Type,
		Description: in.Description,
		TotalAmount: in.TotalAmount,
		FromDeposit: in.FromDeposit,
		FromAdvance: in.FromAdvance,
		CreatedAt:   at,
	}
	t.Deductions = append(t.Deductions, d)
	return &t.Deductions[len(t.Deductions)-1], nil
}

// MarkStatementGenerated stores the document reference for a deduction
// statement. Amounts stay immutable.
func (t *Tenancy) MarkStatementGenerated(id DeductionID, ref string) error {
	for i := range t.Deductions {
		if t.Deductions[i].ID == id {
			t.Deductions[i].StatementGenerated = true
			t.Deductions[i].StatementRef = ref
			return nil
		}
	}
	return &NotFoundError{Kind: "deduction", ID: string(id)}
}

// =============================================================================
// INTEGRITY
// =============================================================================

// checkIntegrity enforces 0 <= available <= original for both pools.
// A failure here indicates a bug, not user error.
func (f *FundsPool) checkIntegrity(id TenancyID) error {
	if f.AvailableDeposit.IsNegative() || f.AvailableDeposit.GreaterThan(f.OriginalDeposit) {
		return &IntegrityViolationError{
			TenancyID: id,
			Detail:    "deposit pool out of range: available " + f.AvailableDeposit.String(),
		}
	}
	if f.AvailableAdvance.IsNegative() || f.AvailableAdvance.GreaterThan(f.OriginalAdvance) {
		return &IntegrityViolationError{
			TenancyID: id,
			Detail:    "advance pool out of range: available " + f.AvailableAdvance.String(),
		}
	}
	return nil
}
