/*
lifecycle.go - The Engine: command orchestration over the aggregate

PURPOSE:
  Every mutation enters here. A command acquires the per-tenancy lock,
  loads the aggregate, validates against current state, delegates to the
  ledger / allocator / notice machines, saves the whole aggregate, and
  returns it together with the side-effect intents for collaborators.

CROSS-CUTTING INVARIANTS ENFORCED HERE:
  - A landlord holds at most MaxActiveTenancies in {DRAFT, ACTIVE,
    EXTENDED} (checked at creation, under a landlord-keyed lock so
    concurrent creations cannot both pass the count).
  - Cancellation is legal only while unsigned; once ACTIVE, only
    notice-driven paths end a tenancy.
  - Mutations are serialized per tenancy; reads run lock-free against
    the latest committed state.
  - Intents are returned, never executed: dispatch happens after the
    save, outside the lock.

CLOCK:
  Deadline-gated rules (escalation, auto-accept) compare against the
  engine clock. Tests override Now; production leaves the default.

SEE ALSO:
  - ledger.go, funds.go, notice.go: The rules this orchestrates
  - api/handlers.go: The thin adapter in front of these commands
*/
package lodger

import (
	"context"
	"time"
)

// =============================================================================
// ENGINE
// =============================================================================

// Engine orchestrates tenancy commands over a Store.
type Engine struct {
	store         Store
	locks         *keyedLocks // per-tenancy writers
	landlordLocks *keyedLocks // serializes the creation cap check

	// Now is the engine clock. Override in tests.
	Now func() time.Time
}

func NewEngine(store Store) *Engine {
	return &Engine{
		store:         store,
		locks:         newKeyedLocks(),
		landlordLocks: newKeyedLocks(),
		Now:           time.Now,
	}
}

// today derives the engine's current calendar day.
func (e *Engine) today() Date { return DateOf(e.Now().UTC()) }

// =============================================================================
// CREATION / ACTIVATION / CANCELLATION
// =============================================================================

// CreateTenancyInput carries the landlord's draft agreement terms.
type CreateTenancyInput struct {
	LandlordID LandlordID
	LodgerID   LodgerID

	Address         Address
	RoomDescription string
	SharedAreas     []SharedArea

	StartDate         Date
	InitialTermMonths int

	MonthlyRent       Money
	DepositAmount     Money
	DepositApplicable bool

	PaymentType       PaymentType
	PaymentFrequency  PaymentFrequency
	PaymentDayOfMonth int
}

// CreateTenancy validates the terms, enforces the landlord's concurrent
// tenancy cap, and persists a DRAFT tenancy.
func (e *Engine) CreateTenancy(ctx context.Context, in CreateTenancyInput) (*Tenancy, []Intent, error) {
	if in.LandlordID == "" {
		return nil, nil, &ValidationError{Field: "landlordId", Detail: "must not be empty"}
	}
	if in.LodgerID == "" {
		return nil, nil, &ValidationError{Field: "lodgerId", Detail: "must not be empty"}
	}
	if in.StartDate.IsZero() {
		return nil, nil, &ValidationError{Field: "startDate", Detail: "must be set"}
	}
	if in.DepositApplicable && in.DepositAmount.IsNegative() {
		return nil, nil, &ValidationError{Field: "depositAmount", Detail: "must not be negative"}
	}

	now := e.Now()
	t := &Tenancy{
		ID:                NewTenancyID(),
		LandlordID:        in.LandlordID,
		LodgerID:          in.LodgerID,
		Address:           in.Address,
		RoomDescription:   in.RoomDescription,
		SharedAreas:       in.SharedAreas,
		StartDate:         in.StartDate,
		InitialTermMonths: in.InitialTermMonths,
		MonthlyRent:       in.MonthlyRent,
		DepositAmount:     in.DepositAmount,
		DepositApplicable: in.DepositApplicable,
		PaymentType:       in.PaymentType,
		PaymentFrequency:  in.PaymentFrequency,
		PaymentDayOfMonth: in.PaymentDayOfMonth,
		Status:            StatusDraft,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	// Reject degenerate schedule configs at creation, not activation.
	if err := validateScheduleConfig(t); err != nil {
		return nil, nil, err
	}

	// The count-then-save below must not race another creation for the
	// same landlord, or two calls could both pass the cap.
	unlock := e.landlordLocks.acquire(string(in.LandlordID))
	defer unlock()

	existing, err := e.store.ListByLandlord(ctx, in.LandlordID)
	if err != nil {
		return nil, nil, err
	}
	active := 0
	for _, other := range existing {
		if other.Status.CountsTowardCap() {
			active++
		}
	}
	if active >= MaxActiveTenancies {
		return nil, nil, &CapacityExceededError{LandlordID: in.LandlordID, Active: active}
	}

	if err := e.store.Save(ctx, t); err != nil {
		return nil, nil, err
	}

	intents := []Intent{Notify{
		UserID:  string(in.LodgerID),
		Type:    "tenancy_created",
		Title:   "Lodger agreement ready to sign",
		Message: "Your landlord has drafted a lodger agreement for " + in.Address.Street + ".",
	}}
	return t, intents, nil
}

// SignatureInput is the lodger's acceptance record.
type SignatureInput struct {
	SignatureText string
	PhotoIDRef    string
	DateOfBirth   Date
	IDExpiry      Date
}

// Activate records the lodger's signature, generates the full payment
// schedule and the funds pool, and moves the tenancy to ACTIVE.
func (e *Engine) Activate(ctx context.Context, id TenancyID, sig SignatureInput) (*Tenancy, []Intent, error) {
	if sig.SignatureText == "" {
		return nil, nil, &ValidationError{Field: "signatureText", Detail: "must not be empty"}
	}

	unlock := e.locks.acquire(string(id))
	defer unlock()

	t, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if t.Status != StatusDraft {
		return nil, nil, &InvalidStateError{Op: "activate", Current: string(t.Status)}
	}

	payments, err := GenerateSchedule(t)
	if err != nil {
		return nil, nil, err
	}

	now := e.Now()
	t.Payments = payments
	t.Funds = NewFundsPool(t)
	t.Signature = &Signature{
		SignatureText: sig.SignatureText,
		SignedAt:      now,
		PhotoIDRef:    sig.PhotoIDRef,
		DateOfBirth:   sig.DateOfBirth,
		IDExpiry:      sig.IDExpiry,
	}
	t.Status = StatusActive
	t.UpdatedAt = now

	if err := e.store.Save(ctx, t); err != nil {
		return nil, nil, err
	}

	intents := []Intent{
		GenerateAgreementPDF{TenancyID: t.ID},
		Notify{
			UserID:  string(t.LandlordID),
			Type:    "tenancy_activated",
			Title:   "Agreement signed",
			Message: "Your lodger has signed; the tenancy is now active.",
		},
	}
	return t, intents, nil
}

// Cancel withdraws a draft. Legal only before the lodger has signed.
func (e *Engine) Cancel(ctx context.Context, id TenancyID) (*Tenancy, []Intent, error) {
	unlock := e.locks.acquire(string(id))
	defer unlock()

	t, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if t.Signature != nil || t.Status != StatusDraft {
		return nil, nil, &InvalidStateError{Op: "cancel", Current: string(t.Status)}
	}

	t.Status = StatusCancelled
	t.UpdatedAt = e.Now()
	if err := e.store.Save(ctx, t); err != nil {
		return nil, nil, err
	}

	intents := []Intent{Notify{
		UserID:  string(t.LodgerID),
		Type:    "tenancy_cancelled",
		Title:   "Agreement withdrawn",
		Message: "The draft lodger agreement has been withdrawn.",
	}}
	return t, intents, nil
}

// AttachAgreement stores the document reference returned by the document
// collaborator for the signed agreement.
func (e *Engine) AttachAgreement(ctx context.Context, id TenancyID, ref string) error {
	unlock := e.locks.acquire(string(id))
	defer unlock()

	t, err := e.store.Get(ctx, id)
	if err != nil {
		return err
	}
	t.AgreementRef = ref
	t.UpdatedAt = e.Now()
	return e.store.Save(ctx, t)
}

// =============================================================================
// PAYMENTS
// =============================================================================

// SubmitPayment records the lodger's payment claim.
func (e *Engine) SubmitPayment(ctx context.Context, id TenancyID, number int, details PaymentDetails) (*Tenancy, []Intent, error) {
	return e.mutate(ctx, id, "submit payment", func(t *Tenancy) ([]Intent, error) {
		if err := t.SubmitPayment(number, details, e.Now()); err != nil {
			return nil, err
		}
		return []Intent{Notify{
			UserID:  string(t.LandlordID),
			Type:    "payment_submitted",
			Title:   "Payment submitted",
			Message: "Your lodger submitted rent payment " + paymentRef(t.ID, number) + " for confirmation.",
		}}, nil
	})
}

// ConfirmPayment records the landlord's confirmation and credits the ledger.
func (e *Engine) ConfirmPayment(ctx context.Context, id TenancyID, number int, details PaymentDetails) (*Tenancy, []Intent, error) {
	return e.mutate(ctx, id, "confirm payment", func(t *Tenancy) ([]Intent, error) {
		if err := t.ConfirmPayment(number, details, e.Now()); err != nil {
			return nil, err
		}
		return []Intent{Notify{
			UserID:  string(t.LodgerID),
			Type:    "payment_confirmed",
			Title:   "Payment confirmed",
			Message: "Your rent payment was confirmed by your landlord.",
		}}, nil
	})
}

// =============================================================================
// DEDUCTIONS
// =============================================================================

// RecordDeduction charges the funds pool. Landlord action, legal only on
// an ACTIVE tenancy; the split is re-validated against the live pool.
func (e *Engine) RecordDeduction(ctx context.Context, id TenancyID, in DeductionInput) (*Tenancy, []Intent, error) {
	return e.mutate(ctx, id, "record deduction", func(t *Tenancy) ([]Intent, error) {
		if t.Status != StatusActive {
			return nil, &InvalidStateError{Op: "record deduction", Current: string(t.Status)}
		}
		d, err := t.RecordDeduction(in, e.Now())
		if err != nil {
			return nil, err
		}
		return []Intent{
			GenerateDeductionStatement{TenancyID: t.ID, DeductionID: d.ID},
			Notify{
				UserID:  string(t.LodgerID),
				Type:    "deduction_recorded",
				Title:   "Deduction recorded",
				Message: "A deduction of " + d.TotalAmount.String() + " was recorded against your deposit/advance.",
			},
		}, nil
	})
}

// AttachDeductionStatement stores the generated statement reference.
func (e *Engine) AttachDeductionStatement(ctx context.Context, id TenancyID, deductionID DeductionID, ref string) error {
	_, _, err := e.mutate(ctx, id, "attach statement", func(t *Tenancy) ([]Intent, error) {
		return nil, t.MarkStatementGenerated(deductionID, ref)
	})
	return err
}

// =============================================================================
// NOTICES
// =============================================================================

// GiveNotice issues a standard termination. A zero-day period terminates
// immediately and is flagged distinctly in the intent stream.
func (e *Engine) GiveNotice(ctx context.Context, id TenancyID, in TerminationInput) (*Tenancy, []Intent, error) {
	return e.mutate(ctx, id, "give notice", func(t *Tenancy) ([]Intent, error) {
		n, err := t.GiveNotice(in, e.today(), e.Now())
		if err != nil {
			return nil, err
		}
		return []Intent{
			GenerateTerminationNotice{
				TenancyID:     t.ID,
				NoticeID:      n.ID,
				EffectiveDate: n.EffectiveDate,
				Immediate:     n.NoticePeriodDays == 0,
			},
			Notify{
				UserID:  string(t.LodgerID),
				Type:    "notice_given",
				Title:   "Termination notice",
				Message: "Your landlord has given notice effective " + n.EffectiveDate.String() + ".",
			},
		}, nil
	})
}

// IssueBreachNotice opens a 7-day remedy-or-escalate breach.
func (e *Engine) IssueBreachNotice(ctx context.Context, id TenancyID, breachType, description string) (*Tenancy, []Intent, error) {
	return e.mutate(ctx, id, "issue breach notice", func(t *Tenancy) ([]Intent, error) {
		n, err := t.IssueBreachNotice(breachType, description, e.today(), e.Now())
		if err != nil {
			return nil, err
		}
		return []Intent{
			GenerateBreachLetter{
				TenancyID:      t.ID,
				NoticeID:       n.ID,
				BreachType:     n.BreachType,
				Description:    n.Description,
				RemedyDeadline: n.RemedyDeadline,
			},
			Notify{
				UserID:  string(t.LodgerID),
				Type:    "breach_notice",
				Title:   "Breach notice",
				Message: "A breach notice was issued: " + n.BreachType + ". Remedy by " + n.RemedyDeadline.String() + ".",
			},
		}, nil
	})
}

// RemedyBreach marks an active breach as remedied.
func (e *Engine) RemedyBreach(ctx context.Context, id TenancyID, noticeID NoticeID) (*Tenancy, []Intent, error) {
	return e.mutate(ctx, id, "remedy breach", func(t *Tenancy) ([]Intent, error) {
		if err := t.MarkBreachRemedied(noticeID); err != nil {
			return nil, err
		}
		return []Intent{Notify{
			UserID:  string(t.LodgerID),
			Type:    "breach_remedied",
			Title:   "Breach remedied",
			Message: "The breach notice has been marked remedied.",
		}}, nil
	})
}

// EscalateBreach converts an unremedied breach into a 7-day termination.
func (e *Engine) EscalateBreach(ctx context.Context, id TenancyID, noticeID NoticeID) (*Tenancy, []Intent, error) {
	return e.mutate(ctx, id, "escalate breach", func(t *Tenancy) ([]Intent, error) {
		termination, err := t.EscalateBreach(noticeID, e.today(), e.Now())
		if err != nil {
			return nil, err
		}
		return []Intent{
			GenerateTerminationNotice{
				TenancyID:     t.ID,
				NoticeID:      termination.ID,
				EffectiveDate: termination.EffectiveDate,
			},
			Notify{
				UserID:  string(t.LodgerID),
				Type:    "breach_escalated",
				Title:   "Breach escalated",
				Message: "The unremedied breach was escalated; the tenancy ends " + termination.EffectiveDate.String() + ".",
			},
		}, nil
	})
}

// OfferExtension creates a rent-capped extension offer.
func (e *Engine) OfferExtension(ctx context.Context, id TenancyID, in ExtensionInput) (*Tenancy, []Intent, error) {
	return e.mutate(ctx, id, "offer extension", func(t *Tenancy) ([]Intent, error) {
		n, err := t.OfferExtension(in, e.today(), e.Now())
		if err != nil {
			return nil, err
		}
		return []Intent{
			GenerateExtensionOffer{TenancyID: t.ID, NoticeID: n.ID},
			Notify{
				UserID:  string(t.LodgerID),
				Type:    "extension_offered",
				Title:   "Extension offered",
				Message: "Your landlord offered to extend the tenancy at " + n.NewMonthlyRent.String() + "/month. Respond by " + n.ResponseDeadline.String() + ".",
			},
		}, nil
	})
}

// RespondToExtension records the lodger's accept/reject.
func (e *Engine) RespondToExtension(ctx context.Context, id TenancyID, noticeID NoticeID, accept bool) (*Tenancy, []Intent, error) {
	return e.mutate(ctx, id, "respond to extension", func(t *Tenancy) ([]Intent, error) {
		if err := t.RespondToExtension(noticeID, accept); err != nil {
			return nil, err
		}
		verdict := "rejected"
		if accept {
			verdict = "accepted"
		}
		return []Intent{Notify{
			UserID:  string(t.LandlordID),
			Type:    "extension_" + verdict,
			Title:   "Extension " + verdict,
			Message: "Your lodger " + verdict + " the extension offer.",
		}}, nil
	})
}

// =============================================================================
// DEADLINE SWEEP
// =============================================================================

// Sweep applies every deadline-driven transition due at the given day:
// pending extension offers past their response deadline auto-accept, and
// notice-given tenancies past their effective date terminate. Each
// tenancy is processed under its own lock, identical to a user action,
// so a sweep can never race a manual accept/reject.
func (e *Engine) Sweep(ctx context.Context, now Date) ([]Intent, error) {
	all, err := e.store.List(ctx)
	if err != nil {
		return nil, err
	}

	var intents []Intent
	for _, stale := range all {
		id := stale.ID
		_, out, err := e.mutateIfChanged(ctx, id, func(t *Tenancy) ([]Intent, bool) {
			var fired []Intent
			for _, n := range t.AutoAcceptExpiredExtensions(now) {
				fired = append(fired, Notify{
					UserID:  string(t.LandlordID),
					Type:    "extension_auto_accepted",
					Title:   "Extension auto-accepted",
					Message: "The extension offer passed its response deadline and was auto-accepted.",
				}, Notify{
					UserID:  string(t.LodgerID),
					Type:    "extension_auto_accepted",
					Title:   "Extension auto-accepted",
					Message: "Your extension offer was auto-accepted at the new rent " + n.NewMonthlyRent.String() + ".",
				})
			}
			if t.ApplyDueTermination(now) {
				fired = append(fired, Notify{
					UserID:  string(t.LandlordID),
					Type:    "tenancy_terminated",
					Title:   "Tenancy ended",
					Message: "The notice period has elapsed; the tenancy is now terminated.",
				})
			}
			return fired, len(fired) > 0
		})
		if err != nil {
			return intents, err
		}
		intents = append(intents, out...)
	}
	return intents, nil
}

// =============================================================================
// READS - Lock-free against latest committed state
// =============================================================================

func (e *Engine) GetTenancy(ctx context.Context, id TenancyID) (*Tenancy, error) {
	return e.store.Get(ctx, id)
}

func (e *Engine) ListByLandlord(ctx context.Context, landlordID LandlordID) ([]*Tenancy, error) {
	return e.store.ListByLandlord(ctx, landlordID)
}

// PaymentSummary computes the ledger roll-up for a tenancy.
func (e *Engine) PaymentSummary(ctx context.Context, id TenancyID) (PaymentSummary, error) {
	t, err := e.store.Get(ctx, id)
	if err != nil {
		return PaymentSummary{}, err
	}
	return t.Summary(e.today()), nil
}

// =============================================================================
// INTERNAL - Locked mutate-and-save
// =============================================================================

// mutate runs fn on the freshly loaded aggregate under the tenancy lock
// and saves on success. Intents are returned to the caller for
// post-commit dispatch; the lock is never held across collaborator I/O.
func (e *Engine) mutate(ctx context.Context, id TenancyID, op string, fn func(*Tenancy) ([]Intent, error)) (*Tenancy, []Intent, error) {
	unlock := e.locks.acquire(string(id))
	defer unlock()

	t, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	intents, err := fn(t)
	if err != nil {
		return nil, nil, err
	}

	t.UpdatedAt = e.Now()
	if err := e.store.Save(ctx, t); err != nil {
		return nil, nil, err
	}
	return t, intents, nil
}

// mutateIfChanged is the sweep variant: fn reports whether anything
// changed, and unchanged aggregates are not rewritten.
func (e *Engine) mutateIfChanged(ctx context.Context, id TenancyID, fn func(*Tenancy) ([]Intent, bool)) (*Tenancy, []Intent, error) {
	unlock := e.locks.acquire(string(id))
	defer unlock()

	t, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	intents, changed := fn(t)
	if !changed {
		return t, nil, nil
	}

	t.UpdatedAt = e.Now()
	if err := e.store.Save(ctx, t); err != nil {
		return nil, nil, err
	}
	return t, intents, nil
}
