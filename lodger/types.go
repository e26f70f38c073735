/*
Package lodger implements the tenancy lifecycle and financial ledger engine.

PURPOSE:
  This package contains the domain rules for lodger tenancies: payment
  schedule generation across heterogeneous cycles, a submit/confirm payment
  ledger, deposit/advance fund allocation, and the termination / breach /
  extension notice state machines. Everything outside these rules (UI,
  documents, notifications, auth) is an external collaborator reached
  through side-effect intents.

KEY CONCEPTS IN THIS FILE (types.go):
  - Tenancy: The aggregate root, single-writer per ID
  - PaymentRecord: One scheduled rent instalment with its payment state
  - FundsPool: Deposit + advance-rent balances available for deductions
  - Notice: Termination, breach, and extension records sharing one shape
  - Typed IDs: TenancyID, NoticeID, DeductionID prevent cross-wiring

DESIGN PRINCIPLES:
  1. Derived state stays derived: overdue status and balances are computed
     at read time, never persisted.
  2. Precision: all money is lodger.Money (integer pence).
  3. Mutation goes through the Engine (lifecycle.go), which serializes
     writers per tenancy.

SEE ALSO:
  - schedule.go: Builds the PaymentRecord sequence
  - lifecycle.go: The only legal mutation path
*/
package lodger

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type TenancyID string
type LandlordID string
type LodgerID string
type NoticeID string
type DeductionID string

func NewTenancyID() TenancyID     { return TenancyID(uuid.NewString()) }
func NewNoticeID() NoticeID       { return NoticeID(uuid.NewString()) }
func NewDeductionID() DeductionID { return DeductionID(uuid.NewString()) }

// =============================================================================
// TENANCY - Aggregate root
// =============================================================================

type TenancyStatus string

const (
	StatusDraft       TenancyStatus = "draft"
	StatusActive      TenancyStatus = "active"
	StatusExtended    TenancyStatus = "extended"
	StatusNoticeGiven TenancyStatus = "notice_given"
	StatusTerminated  TenancyStatus = "terminated"
	StatusCancelled   TenancyStatus = "cancelled"
)

// IsTerminal reports whether no further transitions are possible.
func (s TenancyStatus) IsTerminal() bool {
	return s == StatusTerminated || s == StatusCancelled
}

// CountsTowardCap reports whether the tenancy occupies one of the
// landlord's two concurrent slots.
func (s TenancyStatus) CountsTowardCap() bool {
	return s == StatusDraft || s == StatusActive || s == StatusExtended
}

type PaymentType string

const (
	PaymentCycle    PaymentType = "cycle"    // fixed interval between due dates
	PaymentCalendar PaymentType = "calendar" // fixed day of each month
)

type PaymentFrequency string

const (
	FreqWeekly     PaymentFrequency = "weekly"
	FreqBiWeekly   PaymentFrequency = "bi-weekly"
	FreqMonthly    PaymentFrequency = "monthly"
	FreqFourWeekly PaymentFrequency = "4-weekly"
)

type SharedArea string

const (
	AreaKitchen    SharedArea = "kitchen"
	AreaBathroom   SharedArea = "bathroom"
	AreaLivingRoom SharedArea = "living_room"
	AreaGarden     SharedArea = "garden"
	AreaUtility    SharedArea = "utility"
)

// Address is the structured property address.
type Address struct {
	HouseNumber string
	Street      string
	City        string
	County      string
	Postcode    string
}

// Signature records the lodger's acceptance of the agreement. Photo ID is
// an opaque storage reference; the engine never inspects file contents.
type Signature struct {
	SignatureText string
	SignedAt      time.Time
	PhotoIDRef    string
	DateOfBirth   Date
	IDExpiry      Date
}

// Tenancy is the aggregate root. Payments, notices, deductions and the
// funds pool are owned by the tenancy and persist/load with it.
type Tenancy struct {
	ID         TenancyID
	LandlordID LandlordID
	LodgerID   LodgerID

	Address         Address
	RoomDescription string
	SharedAreas     []SharedArea

	StartDate         Date
	InitialTermMonths int
	EndDate           *Date // nil until a notice or extension sets it

	MonthlyRent       Money
	DepositAmount     Money
	DepositApplicable bool

	PaymentType       PaymentType
	PaymentFrequency  PaymentFrequency // cycle mode only
	PaymentDayOfMonth int              // calendar mode only, 1..31

	Status    TenancyStatus
	Signature *Signature

	// AgreementRef is the stored-file reference returned by the document
	// collaborator after the signed agreement is generated.
	AgreementRef string

	Payments   []PaymentRecord
	Notices    []Notice
	Deductions []Deduction
	Funds      *FundsPool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Payment returns the record with the given number, or nil.
func (t *Tenancy) Payment(number int) *PaymentRecord {
	for i := range t.Payments {
		if t.Payments[i].PaymentNumber == number {
			return &t.Payments[i]
		}
	}
	return nil
}

// Notice returns the notice with the given ID, or nil.
func (t *Tenancy) Notice(id NoticeID) *Notice {
	for i := range t.Notices {
		if t.Notices[i].ID == id {
			return &t.Notices[i]
		}
	}
	return nil
}

// =============================================================================
// PAYMENT RECORD - One scheduled instalment
// =============================================================================

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSubmitted PaymentStatus = "submitted"
	PaymentConfirmed PaymentStatus = "confirmed"

	// PaymentOverdue is derived at read time, never persisted.
	PaymentOverdue PaymentStatus = "overdue"
)

// PaymentRecord is one row of the rent schedule. PaymentNumber is 1-based,
// sequential and immutable; due dates are strictly increasing.
type PaymentRecord struct {
	PaymentNumber int
	DueDate       Date
	RentDue       Money
	RentPaid      Money
	Status        PaymentStatus // stored status: pending/submitted/confirmed

	Submission   *PaymentSubmission
	Confirmation *PaymentConfirmation
}

// PaymentSubmission is the lodger-entered claim of payment, retained for
// audit even after confirmation.
type PaymentSubmission struct {
	Amount      Money
	Method      string
	Reference   string
	Notes       string
	SubmittedAt time.Time
}

// PaymentConfirmation is the landlord-entered confirmation. Confirmation
// is the only event that moves RentPaid.
type PaymentConfirmation struct {
	Amount      Money
	Method      string
	Reference   string
	Notes       string
	ConfirmedAt time.Time
}

// Balance is RentPaid - RentDue. Negative while underpaid.
func (p *PaymentRecord) Balance() Money { return p.RentPaid.Sub(p.RentDue) }

// StatusOn derives the effective status for a given day. A pending payment
// whose due date has passed reads as overdue; submitted and confirmed
// payments never do.
func (p *PaymentRecord) StatusOn(today Date) PaymentStatus {
	if p.Status == PaymentPending && p.DueDate.Before(today) {
		return PaymentOverdue
	}
	return p.Status
}

// =============================================================================
// FUNDS POOL - Deposit + advance rent available for deductions
// =============================================================================

// FundsPool tracks the original and remaining deposit and advance-rent
// balances. Available amounts only ever decrease, via confirmed deductions.
type FundsPool struct {
	OriginalDeposit  Money
	OriginalAdvance  Money
	AvailableDeposit Money
	AvailableAdvance Money
}

// TotalAvailable is the combined balance deductions can draw on.
func (f *FundsPool) TotalAvailable() Money {
	return f.AvailableDeposit.Add(f.AvailableAdvance)
}

type DeductionType string

const (
	DeductionDamage     DeductionType = "damage"
	DeductionUnpaidRent DeductionType = "unpaid_rent"
	DeductionCleaning   DeductionType = "cleaning"
	DeductionOther      DeductionType = "other"
)

// Deduction is an immutable landlord charge against the funds pool.
// Statement generation stores a document reference but never touches
// the amounts.
type Deduction struct {
	ID          DeductionID
	Type        DeductionType
	Description string
	TotalAmount Money
	FromDeposit Money
	FromAdvance Money

	StatementGenerated bool
	StatementRef       string

	CreatedAt time.Time
}

// =============================================================================
// NOTICE - Termination, breach, and extension records
// =============================================================================

type NoticeKind string

const (
	NoticeStandardTermination NoticeKind = "standard_termination"
	NoticeBreach              NoticeKind = "breach"
	NoticeExtensionOffer      NoticeKind = "extension_offer"
)

type BreachStatus string

const (
	BreachActive    BreachStatus = "active"
	BreachRemedied  BreachStatus = "remedied"
	BreachEscalated BreachStatus = "escalated"
)

type ExtensionStatus string

const (
	ExtensionPending      ExtensionStatus = "pending"
	ExtensionAccepted     ExtensionStatus = "accepted"
	ExtensionRejected     ExtensionStatus = "rejected"
	ExtensionAutoAccepted ExtensionStatus = "auto_accepted"
)

// Notice is the shared record shape for the three notice kinds. Only the
// fields for the notice's kind are populated.
type Notice struct {
	ID       NoticeID
	Kind     NoticeKind
	IssuedAt Date

	// Standard termination
	Reason           string
	SubReason        string
	NoticePeriodDays int
	EffectiveDate    Date

	// Breach
	BreachType     string
	Description    string
	RemedyDeadline Date
	BreachStatus   BreachStatus
	EscalatedTo    NoticeID // termination spawned by escalation

	// Extension offer
	ExtensionMonths  int
	NewMonthlyRent   Money
	ResponseDeadline Date
	ExtensionStatus  ExtensionStatus

	CreatedAt time.Time
}
