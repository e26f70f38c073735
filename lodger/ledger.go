/*
ledger.go - Payment submission, confirmation, and summary

PURPOSE:
  The two-step payment flow: the lodger submits a claim of payment, the
  landlord confirms it. Confirmation is the ONLY transition that moves
  RentPaid - a submission holds no financial weight until confirmed.

STATE RULES:
  submit:  pending/overdue -> submitted. Rejected once submitted or
           confirmed.
  confirm: any non-confirmed status -> confirmed. RentPaid += amount.
           Confirming twice is rejected (AlreadyConfirmedError), never
           silently summed. Submission fields are retained for audit.

OVERDUE:
  Derived at read time (dueDate < today and not submitted/confirmed),
  never persisted. A stored overdue flag goes stale the moment a payment
  arrives; a derived one cannot.

SEE ALSO:
  - types.go: PaymentRecord, StatusOn
  - lifecycle.go: Serializes these mutations per tenancy
*/
package lodger

import (
	"fmt"
	"time"
)

// =============================================================================
// INPUTS
// =============================================================================

// PaymentDetails carries the fields shared by submission and confirmation.
type PaymentDetails struct {
	Amount    Money
	Method    string
	Reference string
	Notes     string
}

func (d PaymentDetails) validate() error {
	if !d.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Detail: "must be positive"}
	}
	return nil
}

// =============================================================================
// MUTATIONS
// =============================================================================

// SubmitPayment records the lodger's claim that an instalment was paid.
// Does not touch RentPaid or balance.
func (t *Tenancy) SubmitPayment(number int, details PaymentDetails, at time.Time) error {
	if err := details.validate(); err != nil {
		return err
	}

	p := t.Payment(number)
	if p == nil {
		return &NotFoundError{Kind: "payment", ID: paymentRef(t.ID, number)}
	}
	if p.Status == PaymentSubmitted || p.Status == PaymentConfirmed {
		return &InvalidStateError{Op: "submit payment", Current: string(p.Status)}
	}

	p.Status = PaymentSubmitted
	p.Submission = &PaymentSubmission{
		Amount:      details.Amount,
		Method:      details.Method,
		Reference:   details.Reference,
		Notes:       details.Notes,
		SubmittedAt: at,
	}
	return nil
}

// ConfirmPayment records the landlord's confirmation and credits RentPaid.
// The submission record, if any, is kept for audit.
func (t *Tenancy) ConfirmPayment(number int, details PaymentDetails, at time.Time) error {
	if err := details.validate(); err != nil {
		return err
	}

	p := t.Payment(number)
	if p == nil {
		return &NotFoundError{Kind: "payment", ID: paymentRef(t.ID, number)}
	}
	if p.Status == PaymentConfirmed {
		return &AlreadyConfirmedError{PaymentNumber: number}
	}

	p.RentPaid = p.RentPaid.Add(details.Amount)
	p.Status = PaymentConfirmed
	p.Confirmation = &PaymentConfirmation{
		Amount:      details.Amount,
		Method:      details.Method,
		Reference:   details.Reference,
		Notes:       details.Notes,
		ConfirmedAt: at,
	}
	return nil
}

func paymentRef(id TenancyID, number int) string {
	return fmt.Sprintf("%s#%d", id, number)
}

// =============================================================================
// SUMMARY - Derived, lock-free read
// =============================================================================

// PaymentSummary is the ledger roll-up for a tenancy.
// Outstanding may be negative when the lodger is in credit.
type PaymentSummary struct {
	TotalPaid    Money
	TotalDue     Money
	Outstanding  Money
	OverdueCount int
}

// Summary computes the ledger roll-up as of the given day.
func (t *Tenancy) Summary(asOf Date) PaymentSummary {
	var s PaymentSummary
	for i := range t.Payments {
		p := &t.Payments[i]
		s.TotalPaid = s.TotalPaid.Add(p.RentPaid)
		s.TotalDue = s.TotalDue.Add(p.RentDue)
		if p.StatusOn(asOf) == PaymentOverdue {
			s.OverdueCount++
		}
	}
	s.Outstanding = s.TotalDue.Sub(s.TotalPaid)
	return s
}
