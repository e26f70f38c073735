/*
notice.go - Termination, breach, and extension state machines

PURPOSE:
  Three notice kinds share one record shape but run independent machines
  against the tenancy context:

  STANDARD_TERMINATION: issued with a statutory notice period from
    {0,3,7,14,28} days. effectiveDate = issueDate + period. A zero-day
    period is the immediate-termination path: the tenancy goes straight
    to TERMINATED in the same operation, and the intent stream flags it
    distinctly for audit.

  BREACH: a 7-day remedy-or-escalate warning.
    ACTIVE -> REMEDIED (landlord marks remedied)
    ACTIVE -> ESCALATED (only after remedyDeadline; spawns a standard
    termination with a fixed 7-day period)

  EXTENSION_OFFER: landlord-proposed term/rent change. The new rent is
    capped at a pro-rated 5%/annum increase:

      max = currentRent * (1 + 0.05 * extensionMonths / 12)

    Offers above the cap are rejected at creation. Pending offers past
    the 14-day response deadline are auto-accepted by the sweep; accept
    (manual or auto) applies the new rent and end date atomically with
    the status transition.

SEE ALSO:
  - constants.go: The deadline and cap figures
  - lifecycle.go: Locking and intent emission around these transitions
*/
package lodger

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RENT CAP
// =============================================================================

// MaxExtensionRent computes the highest rent an extension offer may carry:
// current * (1 + 0.05 * months / 12), rounded at the final step.
func MaxExtensionRent(current Money, extensionMonths int) Money {
	factor := decimal.NewFromInt(1).Add(
		AnnualRentCapRate.
			Mul(decimal.NewFromInt(int64(extensionMonths))).
			DivRound(decimal.NewFromInt(12), 8),
	)
	return current.MulRound(factor)
}

// =============================================================================
// STANDARD TERMINATION
// =============================================================================

// TerminationInput describes a standard termination notice.
type TerminationInput struct {
	Reason           string
	SubReason        string
	NoticePeriodDays int
}

// GiveNotice issues a standard termination. The tenancy moves to
// NOTICE_GIVEN, or directly to TERMINATED for a zero-day period.
func (t *Tenancy) GiveNotice(in TerminationInput, issuedAt Date, at time.Time) (*Notice, error) {
	if t.Status != StatusActive && t.Status != StatusExtended {
		return nil, &InvalidStateError{Op: "give notice", Current: string(t.Status)}
	}
	if !validNoticePeriod(in.NoticePeriodDays) {
		return nil, &ValidationError{Field: "noticePeriodDays", Detail: "must be one of 0, 3, 7, 14, 28"}
	}

	effective := issuedAt.AddDays(in.NoticePeriodDays)
	n := Notice{
		ID:               NewNoticeID(),
		Kind:             NoticeStandardTermination,
		IssuedAt:         issuedAt,
		Reason:           in.Reason,
		SubReason:        in.SubReason,
		NoticePeriodDays: in.NoticePeriodDays,
		EffectiveDate:    effective,
		CreatedAt:        at,
	}
	t.Notices = append(t.Notices, n)

	t.EndDate = &effective
	if in.NoticePeriodDays == 0 {
		// Immediate termination: irreversible, same operation.
		t.Status = StatusTerminated
	} else {
		t.Status = StatusNoticeGiven
	}
	return &t.Notices[len(t.Notices)-1], nil
}

// ApplyDueTermination moves NOTICE_GIVEN to TERMINATED once the notice's
// effective date has passed. Returns true if the transition fired.
func (t *Tenancy) ApplyDueTermination(now Date) bool {
	if t.Status != StatusNoticeGiven {
		return false
	}
	for i := range t.Notices {
		n := &t.Notices[i]
		if n.Kind == NoticeStandardTermination && n.EffectiveDate.BeforeOrEqual(now) {
			t.Status = StatusTerminated
			return true
		}
	}
	return false
}

func validNoticePeriod(days int) bool {
	for _, d := range ValidNoticePeriods {
		if d == days {
			return true
		}
	}
	return false
}

// =============================================================================
// BREACH
// =============================================================================

// IssueBreachNotice opens a breach with a 7-day remedy window.
func (t *Tenancy) IssueBreachNotice(breachType, description string, issuedAt Date, at time.Time) (*Notice, error) {
	if t.Status != StatusActive && t.Status != StatusExtended {
		return nil, &InvalidStateError{Op: "issue breach notice", Current: string(t.Status)}
	}
	if breachType == "" {
		return nil, &ValidationError{Field: "breachType", Detail: "must not be empty"}
	}

	n := Notice{
		ID:             NewNoticeID(),
		Kind:           NoticeBreach,
		IssuedAt:       issuedAt,
		BreachType:     breachType,
		Description:    description,
		RemedyDeadline: issuedAt.AddDays(BreachRemedyDays),
		BreachStatus:   BreachActive,
		CreatedAt:      at,
	}
	t.Notices = append(t.Notices, n)
	return &t.Notices[len(t.Notices)-1], nil
}

// MarkBreachRemedied closes an active breach.
func (t *Tenancy) MarkBreachRemedied(id NoticeID) error {
	n, err := t.breach(id)
	if err != nil {
		return err
	}
	if n.BreachStatus != BreachActive {
		return &InvalidStateError{Op: "remedy breach", Current: string(n.BreachStatus)}
	}
	n.BreachStatus = BreachRemedied
	return nil
}

// EscalateBreach converts an unremedied breach into a 7-day standard
// termination. Only legal after the remedy deadline, on an active breach.
func (t *Tenancy) EscalateBreach(id NoticeID, now Date, at time.Time) (*Notice, error) {
	n, err := t.breach(id)
	if err != nil {
		return nil, err
	}
	if n.BreachStatus != BreachActive {
		return nil, &InvalidStateError{Op: "escalate breach", Current: string(n.BreachStatus)}
	}
	if !now.After(n.RemedyDeadline) {
		return nil, &InvalidStateError{Op: "escalate breach", Current: "remedy deadline not passed"}
	}

	termination, err := t.GiveNotice(TerminationInput{
		Reason:           "breach",
		SubReason:        n.BreachType,
		NoticePeriodDays: EscalationNoticePeriodDays,
	}, now, at)
	if err != nil {
		return nil, err
	}

	// GiveNotice appended to t.Notices; re-resolve the breach pointer.
	n = t.Notice(id)
	n.BreachStatus = BreachEscalated
	n.EscalatedTo = termination.ID
	return termination, nil
}

func (t *Tenancy) breach(id NoticeID) (*Notice, error) {
	n := t.Notice(id)
	if n == nil {
		return nil, &NotFoundError{Kind: "notice", ID: string(id)}
	}
	if n.Kind != NoticeBreach {
		return nil, &InvalidStateError{Op: "breach operation", Current: string(n.Kind)}
	}
	return n, nil
}

// =============================================================================
// EXTENSION OFFER
// =============================================================================

// ExtensionInput describes a landlord's extension offer.
type ExtensionInput struct {
	ExtensionMonths int
	NewMonthlyRent  Money
}

// OfferExtension creates a pending extension offer. Offers above the
// pro-rated rent cap are rejected at creation, carrying the computed
// maximum for the caller to surface.
func (t *Tenancy) OfferExtension(in ExtensionInput, issuedAt Date, at time.Time) (*Notice, error) {
	if t.Status != StatusActive && t.Status != StatusExtended {
		return nil, &InvalidStateError{Op: "offer extension", Current: string(t.Status)}
	}
	if in.ExtensionMonths < 1 {
		return nil, &ValidationError{Field: "extensionMonths", Detail: "must be at least 1"}
	}
	if !in.NewMonthlyRent.IsPositive() {
		return nil, &ValidationError{Field: "newMonthlyRent", Detail: "must be positive"}
	}
	for i := range t.Notices {
		n := &t.Notices[i]
		if n.Kind == NoticeExtensionOffer && n.ExtensionStatus == ExtensionPending {
			return nil, &InvalidStateError{Op: "offer extension", Current: "offer already pending"}
		}
	}

	max := MaxExtensionRent(t.MonthlyRent, in.ExtensionMonths)
	if in.NewMonthlyRent.GreaterThan(max) {
		return nil, &RentCapExceededError{Offered: in.NewMonthlyRent, Maximum: max}
	}

	n := Notice{
		ID:               NewNoticeID(),
		Kind:             NoticeExtensionOffer,
		IssuedAt:         issuedAt,
		ExtensionMonths:  in.ExtensionMonths,
		NewMonthlyRent:   in.NewMonthlyRent,
		ResponseDeadline: issuedAt.AddDays(ExtensionResponseDays),
		ExtensionStatus:  ExtensionPending,
		CreatedAt:        at,
	}
	t.Notices = append(t.Notices, n)
	return &t.Notices[len(t.Notices)-1], nil
}

// RespondToExtension records the lodger's accept/reject on a pending
// offer. Acceptance applies the new rent and end date atomically with
// the status change. Offers only resolve while the tenancy is live: a
// pending offer left behind by a termination is dead, never applied.
func (t *Tenancy) RespondToExtension(id NoticeID, accept bool) error {
	if t.Status != StatusActive && t.Status != StatusExtended {
		return &InvalidStateError{Op: "respond to extension", Current: string(t.Status)}
	}
	n := t.Notice(id)
	if n == nil {
		return &NotFoundError{Kind: "notice", ID: string(id)}
	}
	if n.Kind != NoticeExtensionOffer {
		return &InvalidStateError{Op: "respond to extension", Current: string(n.Kind)}
	}
	if n.ExtensionStatus != ExtensionPending {
		return &InvalidStateError{Op: "respond to extension", Current: string(n.ExtensionStatus)}
	}

	if !accept {
		n.ExtensionStatus = ExtensionRejected
		return nil
	}
	n.ExtensionStatus = ExtensionAccepted
	t.applyExtension(n)
	return nil
}

// AutoAcceptExpiredExtensions transitions every pending offer past its
// response deadline to AUTO_ACCEPTED and applies it. Returns the offers
// that fired. The caller holds the tenancy lock, identical to a manual
// response. Tenancies that have left the live states keep their pending
// offers unresolved; auto-accept must never pull a terminated tenancy
// back to EXTENDED.
func (t *Tenancy) AutoAcceptExpiredExtensions(now Date) []*Notice {
	if t.Status != StatusActive && t.Status != StatusExtended {
		return nil
	}
	var fired []*Notice
	for i := range t.Notices {
		n := &t.Notices[i]
		if n.Kind != NoticeExtensionOffer || n.ExtensionStatus != ExtensionPending {
			continue
		}
		if !now.After(n.ResponseDeadline) {
			continue
		}
		n.ExtensionStatus = ExtensionAutoAccepted
		t.applyExtension(n)
		fired = append(fired, n)
	}
	return fired
}

// applyExtension applies an accepted offer: continuation instalments at
// the new rent, the new monthly rent, the pushed-out end date, and the
// EXTENDED status. No partial application - callers persist the whole
// aggregate or nothing.
func (t *Tenancy) applyExtension(n *Notice) {
	t.Payments = append(t.Payments, ExtendSchedule(t, n.ExtensionMonths, n.NewMonthlyRent)...)
	t.MonthlyRent = n.NewMonthlyRent

	base := t.StartDate.AddMonthsClamped(t.InitialTermMonths)
	if t.EndDate != nil {
		base = *t.EndDate
	}
	end := base.AddMonthsClamped(n.ExtensionMonths)
	t.EndDate = &end

	t.Status = StatusExtended
}
