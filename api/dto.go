/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Amounts cross the API as decimal strings ("800.00"), never floats.
  Parsing goes through lodger.Money so client values are rounded to
  pence exactly once, at the boundary.

DATES:
  Calendar dates are "YYYY-MM-DD" strings; timestamps are RFC 3339.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - lodger/types.go: The domain model these mirror
*/
package api

import (
	"time"

	"github.com/haven/lodger-engine/lodger"
)

// =============================================================================
// TENANCY
// =============================================================================

// CreateTenancyRequest carries the landlord's draft agreement terms.
type CreateTenancyRequest struct {
	LandlordID string `json:"landlord_id"`
	LodgerID   string `json:"lodger_id"`

	Address         AddressDTO `json:"address"`
	RoomDescription string     `json:"room_description"`
	SharedAreas     []string   `json:"shared_areas"`

	StartDate         string `json:"start_date"`
	InitialTermMonths int    `json:"initial_term_months"`

	MonthlyRent       string `json:"monthly_rent"`
	DepositAmount     string `json:"deposit_amount"`
	DepositApplicable bool   `json:"deposit_applicable"`

	PaymentType       string `json:"payment_type"`
	PaymentFrequency  string `json:"payment_frequency,omitempty"`
	PaymentDayOfMonth int    `json:"payment_day_of_month,omitempty"`
}

type AddressDTO struct {
	HouseNumber string `json:"house_number"`
	Street      string `json:"street"`
	City        string `json:"city"`
	County      string `json:"county"`
	Postcode    string `json:"postcode"`
}

// TenancyDTO is the full aggregate view.
type TenancyDTO struct {
	ID         string `json:"id"`
	LandlordID string `json:"landlord_id"`
	LodgerID   string `json:"lodger_id"`

	Address         AddressDTO `json:"address"`
	RoomDescription string     `json:"room_description"`
	SharedAreas     []string   `json:"shared_areas"`

	StartDate         string  `json:"start_date"`
	InitialTermMonths int     `json:"initial_term_months"`
	EndDate           *string `json:"end_date,omitempty"`

	MonthlyRent       string `json:"monthly_rent"`
	DepositAmount     string `json:"deposit_amount"`
	DepositApplicable bool   `json:"deposit_applicable"`

	PaymentType       string `json:"payment_type"`
	PaymentFrequency  string `json:"payment_frequency,omitempty"`
	PaymentDayOfMonth int    `json:"payment_day_of_month,omitempty"`

	Status       string         `json:"status"`
	Signed       bool           `json:"signed"`
	SignedAt     *time.Time     `json:"signed_at,omitempty"`
	AgreementRef string         `json:"agreement_ref,omitempty"`
	Funds        *FundsDTO      `json:"funds,omitempty"`
	Payments     []PaymentDTO   `json:"payments,omitempty"`
	Notices      []NoticeDTO    `json:"notices,omitempty"`
	Deductions   []DeductionDTO `json:"deductions,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ActivateRequest carries the lodger's signature.
type ActivateRequest struct {
	SignatureText string `json:"signature_text"`
	PhotoIDRef    string `json:"photo_id_ref,omitempty"`
	DateOfBirth   string `json:"date_of_birth,omitempty"`
	IDExpiry      string `json:"id_expiry,omitempty"`
}

// =============================================================================
// PAYMENTS
// =============================================================================

// PaymentDTO is one schedule row. Status is the derived status for the
// engine's current day, so a late pending payment reads "overdue".
type PaymentDTO struct {
	PaymentNumber int    `json:"payment_number"`
	DueDate       string `json:"due_date"`
	RentDue       string `json:"rent_due"`
	RentPaid      string `json:"rent_paid"`
	Balance       string `json:"balance"`
	Status        string `json:"status"`

	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
}

// PaymentActionRequest is the shared body for submit and confirm.
type PaymentActionRequest struct {
	Amount    string `json:"amount"`
	Method    string `json:"method"`
	Reference string `json:"reference,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// SummaryDTO is the ledger roll-up.
type SummaryDTO struct {
	TotalPaid    string `json:"total_paid"`
	TotalDue     string `json:"total_due"`
	Outstanding  string `json:"outstanding"`
	OverdueCount int    `json:"overdue_count"`
}

// =============================================================================
// FUNDS & DEDUCTIONS
// =============================================================================

type FundsDTO struct {
	OriginalDeposit  string `json:"original_deposit"`
	OriginalAdvance  string `json:"original_advance"`
	AvailableDeposit string `json:"available_deposit"`
	AvailableAdvance string `json:"available_advance"`
	TotalAvailable   string `json:"total_available"`
}

type DeductionRequest struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	TotalAmount string `json:"total_amount"`
	FromDeposit string `json:"from_deposit"`
	FromAdvance string `json:"from_advance"`
}

type DeductionDTO struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Description  string    `json:"description"`
	TotalAmount  string    `json:"total_amount"`
	FromDeposit  string    `json:"from_deposit"`
	FromAdvance  string    `json:"from_advance"`
	StatementRef string    `json:"statement_ref,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// =============================================================================
// NOTICES
// =============================================================================

type TerminationRequest struct {
	Reason           string `json:"reason"`
	SubReason        string `json:"sub_reason,omitempty"`
	NoticePeriodDays int    `json:"notice_period_days"`
}

type BreachRequest struct {
	BreachType  string `json:"breach_type"`
	Description string `json:"description"`
}

type ExtensionRequest struct {
	ExtensionMonths int    `json:"extension_months"`
	NewMonthlyRent  string `json:"new_monthly_rent"`
}

type ExtensionResponseRequest struct {
	Accept bool `json:"accept"`
}

// NoticeDTO is the shared view of the three notice kinds. Only the
// fields for the notice's kind are populated.
type NoticeDTO struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	IssuedAt string `json:"issued_at"`

	Reason           string  `json:"reason,omitempty"`
	SubReason        string  `json:"sub_reason,omitempty"`
	NoticePeriodDays int     `json:"notice_period_days,omitempty"`
	EffectiveDate    *string `json:"effective_date,omitempty"`

	BreachType     string  `json:"breach_type,omitempty"`
	Description    string  `json:"description,omitempty"`
	RemedyDeadline *string `json:"remedy_deadline,omitempty"`
	BreachStatus   string  `json:"breach_status,omitempty"`
	EscalatedTo    string  `json:"escalated_to,omitempty"`

	ExtensionMonths  int     `json:"extension_months,omitempty"`
	NewMonthlyRent   string  `json:"new_monthly_rent,omitempty"`
	ResponseDeadline *string `json:"response_deadline,omitempty"`
	ExtensionStatus  string  `json:"extension_status,omitempty"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// =============================================================================
// DOMAIN -> DTO CONVERSION
// =============================================================================

func toTenancyDTO(t *lodger.Tenancy, today lodger.Date) TenancyDTO {
	dto := TenancyDTO{
		ID:         string(t.ID),
		LandlordID: string(t.LandlordID),
		LodgerID:   string(t.LodgerID),
		Address: AddressDTO{
			HouseNumber: t.Address.HouseNumber,
			Street:      t.Address.Street,
			City:        t.Address.City,
			County:      t.Address.County,
			Postcode:    t.Address.Postcode,
		},
		RoomDescription:   t.RoomDescription,
		StartDate:         t.StartDate.String(),
		InitialTermMonths: t.InitialTermMonths,
		MonthlyRent:       t.MonthlyRent.String(),
		DepositAmount:     t.DepositAmount.String(),
		DepositApplicable: t.DepositApplicable,
		PaymentType:       string(t.PaymentType),
		PaymentFrequency:  string(t.PaymentFrequency),
		PaymentDayOfMonth: t.PaymentDayOfMonth,
		Status:            string(t.Status),
		Signed:            t.Signature != nil,
		AgreementRef:      t.AgreementRef,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}

	for _, a := range t.SharedAreas {
		dto.SharedAreas = append(dto.SharedAreas, string(a))
	}
	if t.EndDate != nil {
		end := t.EndDate.String()
		dto.EndDate = &end
	}
	if t.Signature != nil {
		signedAt := t.Signature.SignedAt
		dto.SignedAt = &signedAt
	}
	if t.Funds != nil {
		f := toFundsDTO(t.Funds)
		dto.Funds = &f
	}
	for i := range t.Payments {
		dto.Payments = append(dto.Payments, toPaymentDTO(&t.Payments[i], today))
	}
	for i := range t.Notices {
		dto.Notices = append(dto.Notices, toNoticeDTO(&t.Notices[i]))
	}
	for i := range t.Deductions {
		dto.Deductions = append(dto.Deductions, toDeductionDTO(&t.Deductions[i]))
	}
	return dto
}

func toPaymentDTO(p *lodger.PaymentRecord, today lodger.Date) PaymentDTO {
	dto := PaymentDTO{
		PaymentNumber: p.PaymentNumber,
		DueDate:       p.DueDate.String(),
		RentDue:       p.RentDue.String(),
		RentPaid:      p.RentPaid.String(),
		Balance:       p.Balance().String(),
		Status:        string(p.StatusOn(today)),
	}
	if p.Submission != nil {
		at := p.Submission.SubmittedAt
		dto.SubmittedAt = &at
	}
	if p.Confirmation != nil {
		at := p.Confirmation.ConfirmedAt
		dto.ConfirmedAt = &at
	}
	return dto
}

func toFundsDTO(f *lodger.FundsPool) FundsDTO {
	return FundsDTO{
		OriginalDeposit:  f.OriginalDeposit.String(),
		OriginalAdvance:  f.OriginalAdvance.String(),
		AvailableDeposit: f.AvailableDeposit.String(),
		AvailableAdvance: f.AvailableAdvance.String(),
		TotalAvailable:   f.TotalAvailable().String(),
	}
}

func toDeductionDTO(d *lodger.Deduction) DeductionDTO {
	return DeductionDTO{
		ID:           string(d.ID),
		Type:         string(d.Type),
		Description:  d.Description,
		TotalAmount:  d.TotalAmount.String(),
		FromDeposit:  d.FromDeposit.String(),
		FromAdvance:  d.FromAdvance.String(),
		StatementRef: d.StatementRef,
		CreatedAt:    d.CreatedAt,
	}
}

func toNoticeDTO(n *lodger.Notice) NoticeDTO {
	dto := NoticeDTO{
		ID:       string(n.ID),
		Kind:     string(n.Kind),
		IssuedAt: n.IssuedAt.String(),
	}

	switch n.Kind {
	case lodger.NoticeStandardTermination:
		dto.Reason = n.Reason
		dto.SubReason = n.SubReason
		dto.NoticePeriodDays = n.NoticePeriodDays
		dto.EffectiveDate = dateRef(n.EffectiveDate)
	case lodger.NoticeBreach:
		dto.BreachType = n.BreachType
		dto.Description = n.Description
		dto.RemedyDeadline = dateRef(n.RemedyDeadline)
		dto.BreachStatus = string(n.BreachStatus)
		dto.EscalatedTo = string(n.EscalatedTo)
	case lodger.NoticeExtensionOffer:
		dto.ExtensionMonths = n.ExtensionMonths
		dto.NewMonthlyRent = n.NewMonthlyRent.String()
		dto.ResponseDeadline = dateRef(n.ResponseDeadline)
		dto.ExtensionStatus = string(n.ExtensionStatus)
	}
	return dto
}

func dateRef(d lodger.Date) *string {
	if d.IsZero() {
		return nil
	}
	s := d.String()
	return &s
}
