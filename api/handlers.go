/*
handlers.go - HTTP API handlers for the tenancy engine

PURPOSE:
  Exposes the tenancy lifecycle engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Tenancies:
    GET    /api/tenancies?landlord_id=X      List a landlord's tenancies
    POST   /api/tenancies                    Create draft tenancy
    GET    /api/tenancies/{id}               Get full aggregate
    POST   /api/tenancies/{id}/activate      Sign and activate
    POST   /api/tenancies/{id}/cancel        Withdraw unsigned draft

  Payments:
    GET    /api/tenancies/{id}/payments                  Schedule with derived statuses
    GET    /api/tenancies/{id}/payments/summary          Ledger roll-up
    POST   /api/tenancies/{id}/payments/{number}/submit  Lodger claims payment
    POST   /api/tenancies/{id}/payments/{number}/confirm Landlord confirms

  Funds:
    GET    /api/tenancies/{id}/funds         Pool balances
    POST   /api/tenancies/{id}/deductions    Record a deduction

  Notices:
    GET    /api/tenancies/{id}/notices                          All notices
    POST   /api/tenancies/{id}/notices/termination              Standard notice
    POST   /api/tenancies/{id}/notices/breach                   Breach notice
    POST   /api/tenancies/{id}/notices/breach/{nid}/remedy      Mark remedied
    POST   /api/tenancies/{id}/notices/breach/{nid}/escalate    Escalate
    POST   /api/tenancies/{id}/notices/extension                Offer extension
    POST   /api/tenancies/{id}/notices/extension/{nid}/respond  Accept/reject

  Admin:
    POST   /api/admin/sweep                  Run deadline sweep now

  Scenarios:
    GET    /api/scenarios                    List demo scenarios
    POST   /api/scenarios/load               Load a demo scenario

REQUEST FLOW:
  1. Parse HTTP request
  2. Call the engine command
  3. Dispatch returned intents (post-commit, outside the tenancy lock)
  4. Serialize response

ERROR HANDLING:
  Domain errors are classified, not string-matched:
  - 400: Validation errors (bad amounts, unknown enum values)
  - 404: Tenancy/notice/payment not found
  - 409: Illegal in current state (double confirm, cancel after signing,
         capacity exceeded)
  - 422: Fund/cap violations (insufficient funds, split mismatch,
         rent above cap)
  - 500: Store failures and integrity violations

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.
  Landlord/lodger identity is taken from request bodies.

SEE ALSO:
  - dto.go: Request/response data structures
  - lodger/lifecycle.go: The engine commands these wrap
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/haven/lodger-engine/lodger"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine     *lodger.Engine
	Dispatcher Dispatcher

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler over the engine.
func NewHandler(engine *lodger.Engine, dispatcher Dispatcher) *Handler {
	return &Handler{Engine: engine, Dispatcher: dispatcher}
}

// dispatch sends intents to collaborators after the command has committed.
func (h *Handler) dispatch(r *http.Request, intents []lodger.Intent) {
	if h.Dispatcher != nil && len(intents) > 0 {
		h.Dispatcher.Dispatch(r.Context(), intents)
	}
}

// =============================================================================
// TENANCY HANDLERS
// =============================================================================

// ListTenancies returns a landlord's tenancies.
// GET /api/tenancies?landlord_id=X
func (h *Handler) ListTenancies(w http.ResponseWriter, r *http.Request) {
	landlordID := r.URL.Query().Get("landlord_id")
	if landlordID == "" {
		writeError(w, http.StatusBadRequest, "landlord_id query parameter is required", nil)
		return
	}

	tenancies, err := h.Engine.ListByLandlord(r.Context(), lodger.LandlordID(landlordID))
	if err != nil {
		writeDomainError(w, "Failed to list tenancies", err)
		return
	}

	today := lodger.Today()
	dtos := make([]TenancyDTO, len(tenancies))
	for i, t := range tenancies {
		dtos[i] = toTenancyDTO(t, today)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateTenancy creates a draft tenancy.
// POST /api/tenancies
func (h *Handler) CreateTenancy(w http.ResponseWriter, r *http.Request) {
	var req CreateTenancyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	startDate, err := lodger.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date format (use YYYY-MM-DD)", err)
		return
	}
	rent, err := parseMoney(req.MonthlyRent)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid monthly_rent", err)
		return
	}
	deposit := lodger.Money{}
	if req.DepositAmount != "" {
		if deposit, err = parseMoney(req.DepositAmount); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid deposit_amount", err)
			return
		}
	}

	areas := make([]lodger.SharedArea, len(req.SharedAreas))
	for i, a := range req.SharedAreas {
		areas[i] = lodger.SharedArea(a)
	}

	t, intents, err := h.Engine.CreateTenancy(r.Context(), lodger.CreateTenancyInput{
		LandlordID: lodger.LandlordID(req.LandlordID),
		LodgerID:   lodger.LodgerID(req.LodgerID),
		Address: lodger.Address{
			HouseNumber: req.Address.HouseNumber,
			Street:      req.Address.Street,
			City:        req.Address.City,
			County:      req.Address.County,
			Postcode:    req.Address.Postcode,
		},
		RoomDescription:   req.RoomDescription,
		SharedAreas:       areas,
		StartDate:         startDate,
		InitialTermMonths: req.InitialTermMonths,
		MonthlyRent:       rent,
		DepositAmount:     deposit,
		DepositApplicable: req.DepositApplicable,
		PaymentType:       lodger.PaymentType(req.PaymentType),
		PaymentFrequency:  lodger.PaymentFrequency(req.PaymentFrequency),
		PaymentDayOfMonth: req.PaymentDayOfMonth,
	})
	if err != nil {
		writeDomainError(w, "Failed to create tenancy", err)
		return
	}

	h.dispatch(r, intents)
	writeJSON(w, http.StatusCreated, toTenancyDTO(t, lodger.Today()))
}

// GetTenancy returns the full aggregate.
// GET /api/tenancies/{id}
func (h *Handler) GetTenancy(w http.ResponseWriter, r *http.Request) {
	id := lodger.TenancyID(chi.URLParam(r, "id"))

	t, err := h.Engine.GetTenancy(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get tenancy", err)
		return
	}
	writeJSON(w, http.StatusOK, toTenancyDTO(t, lodger.Today()))
}

// ActivateTenancy records the lodger's signature and activates.
// POST /api/tenancies/{id}/activate
func (h *Handler) ActivateTenancy(w http.ResponseWriter, r *http.Request) {
	id := lodger.TenancyID(chi.URLParam(r, "id"))

	var req ActivateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	sig := lodger.SignatureInput{
		SignatureText: req.SignatureText,
		PhotoIDRef:    req.PhotoIDRef,
	}
	var err error
	if req.DateOfBirth != "" {
		if sig.DateOfBirth, err = lodger.ParseDate(req.DateOfBirth); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date_of_birth format (use YYYY-MM-DD)", err)
			return
		}
	}
	if req.IDExpiry != "" {
		if sig.IDExpiry, err = lodger.ParseDate(req.IDExpiry); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid id_expiry format (use YYYY-MM-DD)", err)
			return
		}
	}

	t, intents, err := h.Engine.Activate(r.Context(), id, sig)
	if err != nil {
		writeDomainError(w, "Failed to activate tenancy", err)
		return
	}

	h.dispatch(r, intents)
	writeJSON(w, http.StatusOK, toTenancyDTO(t, lodger.Today()))
}

// CancelTenancy withdraws an unsigned draft.
// POST /api/tenancies/{id}/cancel
func (h *Handler) CancelTenancy(w http.ResponseWriter, r *http.Request) {
	id := lodger.TenancyID(chi.URLParam(r, "id"))

	t, intents, err := h.Engine.Cancel(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to cancel tenancy", err)
		return
	}

	h.dispatch(r, intents)
	writeJSON(w, http.StatusOK, toTenancyDTO(t, lodger.Today()))
}

// =============================================================================
// PAYMENT HANDLERS
// =============================================================================

// ListPayments returns the schedule with statuses derived for today.
// GET /api/tenancies/{id}/payments
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	id := lodger.TenancyID(chi.URLParam(r, "id"))

	t, err := h.Engine.GetTenancy(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get tenancy", err)
		return
	}

	today := lodger.Today()
	dtos := make([]PaymentDTO, len(t.Payments))
	for i := range t.Payments {
		dtos[i] = toPaymentDTO(&t.Payments[i], today)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPaymentSummary returns the ledger roll-up.
// GET /api/tenancies/{id}/payments/summary
func (h *Handler) GetPaymentSummary(w http.ResponseWriter, r *http.Request) {
	id := lodger.TenancyID(chi.URLParam(r, "id"))

	s, err := h.Engine.PaymentSummary(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get payment summary", err)
		return
	}
	writeJSON(w, http.StatusOK, SummaryDTO{
		TotalPaid:    s.TotalPaid.String(),
		TotalDue:     s.TotalDue.String(),
		Outstanding:  s.Outstanding.String(),
		OverdueCount: s.OverdueCount,
	})
}

// SubmitPayment records the lodger's payment claim.
// POST /api/tenancies/{id}/payments/{number}/submit
func (h *Handler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	h.paymentAction(w, r, h.Engine.SubmitPayment)
}

// ConfirmPayment records the landlord's confirmation.
// POST /api/tenancies/{id}/payments/{number}/confirm
func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	h.paymentAction(w, r, h.Engine.ConfirmPayment)
}

type paymentCommand func(ctx context.Context, id lodger.TenancyID, number int, details lodger.PaymentDetails) (*lodger.Tenancy, []lodger.Intent, error)

func (h *Handler) paymentAction(w http.ResponseWriter, r *http.Request, cmd paymentCommand) {
	id := lodger.TenancyID(chi.URLParam(r, "id"))
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid payment number", err)
		return
	}

	var req PaymentActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	amount, err := parseMoney(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}

	t, intents, err := cmd(r.Context(), id, number, lodger.PaymentDetails{
		Amount:    amount,
		Method:    req.Method,
		Reference: req.Reference,
		Notes:     req.Notes,
	})
	if err != nil {
		writeDomainError(w, "Payment action failed", err)
		return
	}

	h.dispatch(r, intents)

	p := t.Payment(number)
	writeJSON(w, http.StatusOK, toPaymentDTO(p, lodger.Today()))
}

// =============================================================================
// FUNDS & DEDUCTION HANDLERS
// =============================================================================

// GetFunds returns the deposit/advance pool balances.
// GET /api/tenancies/{id}/funds
func (h *Handler) GetFunds(w http.ResponseWriter, r *http.Request) {
	id := lodger.TenancyID(chi.URLParam(r, "id"))

	t, err := h.Engine.GetTenancy(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get tenancy", err)
		return
	}
	if t.Funds == nil {
		writeError(w, http.StatusNotFound, "Tenancy has no funds pool (not yet activated)", nil)
		return
	}
	writeJSON(w, http.StatusOK, toFundsDTO(t.Funds))
}

// RecordDeduction charges the funds pool.
// POST /api/tenancies/{id}/deductions
func (h *Handler) RecordDeduction(w http.ResponseWriter, r *http.Request) {
	id := lodger.TenancyID(chi.URLParam(r, "id"))

	var req DeductionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	total, err := parseMoney(req.TotalAmount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid total_amount", err)
		return
	}
	fromDeposit, err := parseMoney(req.FromDeposit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from_deposit", err)
		return
	}
	fromAdvance, err := parseMoney(req.FromAdvance)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from_advance", err)
		return
	}

	t, intents, err := h.Engine.RecordDeduction(r.Context(), id, lodger.DeductionInput{
		Type:        lodger.DeductionType(req.Type),
		Description: req.Description,
		TotalAmount: total,
		FromDeposit: fromDeposit,
		FromAdvance: fromAdvance,
	})
	if err != nil {
		writeDomainError(w, "Failed to record deduction", err)
		return
	}

	h.dispatch(r, intents)

	// The newly appended deduction is last.
	d := &t.Deductions[len(t.Deductions)-1]
	writeJSON(w, http.StatusCreated, toDeductionDTO(d))
}

// =============================================================================
// NOTICE HANDLERS
// =============================================================================

// ListNotices returns every notice on the tenancy.
// GET /api/tenancies/{id}/notices
func (h *Handler) ListNotices(w http.ResponseWriter, r *http.Request) {
	id := lodger.TenancyID(chi.URLParam(r, "id"))

	t, err := h.Engine.GetTenancy(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get tenancy", err)
		return
	}

	dtos := make([]NoticeDTO, len(t.Notices))
	for i := range t.Notices {
		dtos[i] = toNoticeDTO(&t.Notices[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GiveNotice issues a standard termination notice.
// POST /api/tenancies/{id}/notices/termination
func (h *Handler) GiveNotice(w http.ResponseWriter, r *http.Request) {
	id := lodger.TenancyID(chi.URLParam(r, "id"))

	var req TerminationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	t, intents, err := h.Engine.GiveNotice(r.Context(), id, lodger.TerminationInput{
		Reason:           req.Reason,
		SubReason:        req.SubReason,
		NoticePeriodDays: req.NoticePeriodDays,
	})
	if err != nil {
		writeDomainError(w, "Failed to give notice", err)
		return
	}

	h.dispatch(r, intents)
	writeJSON(w, http.StatusCreated, toTenancyDTO(t, lodger.Today()))
}

// IssueBreachNotice opens a remedy-or-escalate breach.
// POST /api/tenancies/{id}/notices/breach
func (h *Handler) IssueBreachNotice(w http.ResponseWriter, r *http.Request) {
	id := lodger.TenancyID(chi.URLParam(r, "id"))

	var req BreachRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	t, intents, err := h.Engine.IssueBreachNotice(r.Context(), id, req.BreachType, req.Description)
	if err != nil {
		writeDomainError(w, "Failed to issue breach notice", err)
		return
	}

	h.dispatch(r, intents)
	writeJSON(w, http.StatusCreated, toTenancyDTO(t, lodger.Today()))
}

// RemedyBreach marks an active breach as remedied.
// POST /api/tenancies/{id}/notices/breach/{noticeId}/remedy
func (h *Handler) RemedyBreach(w http.ResponseWriter, r *http.Request) {
	id := lodger.TenancyID(chi.URLParam(r, "id"))
	noticeID := lodger.NoticeID(chi.URLParam(r, "noticeId"))

	t, intents, err := h.Engine.RemedyBreach(r.Context(), id, noticeID)
	if err != nil {
		writeDomainError(w, "Failed to remedy breach", err)
		return
	}

	h.dispatch(r, intents)
	writeJSON(w, http.StatusOK, toTenancyDTO(t, lodger.Today()))
}

// EscalateBreach converts an unremedied breach into a termination.
// POST /api/tenancies/{id}/notices/breach/{noticeId}/escalate
func (h *Handler) EscalateBreach(w http.ResponseWriter, r *http.Request) {
	id := lodger.TenancyID(chi.URLParam(r, "id"))
	noticeID := lodger.NoticeID(chi.URLParam(r, "noticeId"))

	t, intents, err := h.Engine.EscalateBreach(r.Context(), id, noticeID)
	if err != nil {
		writeDomainError(w, "Failed to escalate breach", err)
		return
	}

	h.dispatch(r, intents)
	writeJSON(w, http.StatusOK, toTenancyDTO(t, lodger.Today()))
}

// OfferExtension creates a rent-capped extension offer.
// POST /api/tenancies/{id}/notices/extension
func (h *Handler) OfferExtension(w http.ResponseWriter, r *http.Request) {
	id := lodger.TenancyID(chi.URLParam(r, "id"))

	var req ExtensionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	rent, err := parseMoney(req.NewMonthlyRent)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid new_monthly_rent", err)
		return
	}

	t, intents, err := h.Engine.OfferExtension(r.Context(), id, lodger.ExtensionInput{
		ExtensionMonths: req.ExtensionMonths,
		NewMonthlyRent:  rent,
	})
	if err != nil {
		writeDomainError(w, "Failed to offer extension", err)
		return
	}

	h.dispatch(r, intents)
	writeJSON(w, http.StatusCreated, toTenancyDTO(t, lodger.Today()))
}

// RespondToExtension records the lodger's accept/reject.
// POST /api/tenancies/{id}/notices/extension/{noticeId}/respond
func (h *Handler) RespondToExtension(w http.ResponseWriter, r *http.Request) {
	id := lodger.TenancyID(chi.URLParam(r, "id"))
	noticeID := lodger.NoticeID(chi.URLParam(r, "noticeId"))

	var req ExtensionResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	t, intents, err := h.Engine.RespondToExtension(r.Context(), id, noticeID, req.Accept)
	if err != nil {
		writeDomainError(w, "Failed to respond to extension", err)
		return
	}

	h.dispatch(r, intents)
	writeJSON(w, http.StatusOK, toTenancyDTO(t, lodger.Today()))
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// TriggerSweep runs the deadline sweep immediately.
// POST /api/admin/sweep
func (h *Handler) TriggerSweep(w http.ResponseWriter, r *http.Request) {
	intents, err := h.Engine.Sweep(r.Context(), lodger.Today())
	if err != nil {
		writeDomainError(w, "Sweep failed", err)
		return
	}

	h.dispatch(r, intents)
	writeJSON(w, http.StatusOK, map[string]any{
		"transitions": len(intents),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

// parseMoney converts a client decimal string ("800.00") to Money,
// rounding to pence at the boundary.
func parseMoney(s string) (lodger.Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return lodger.Money{}, err
	}
	return lodger.NewMoney(d), nil
}

// writeDomainError classifies a domain error into an HTTP status.
func writeDomainError(w http.ResponseWriter, msg string, err error) {
	switch {
	case lodger.IsNotFound(err):
		writeError(w, http.StatusNotFound, msg, err)
	case errors.Is(err, lodger.ErrValidation):
		writeError(w, http.StatusBadRequest, msg, err)
	case errors.Is(err, lodger.ErrInvalidState),
		errors.Is(err, lodger.ErrAlreadyConfirmed),
		errors.Is(err, lodger.ErrCapacityExceeded):
		writeError(w, http.StatusConflict, msg, err)
	case errors.Is(err, lodger.ErrInsufficientFunds),
		errors.Is(err, lodger.ErrAllocationMismatch),
		errors.Is(err, lodger.ErrRentCapExceeded):
		writeError(w, http.StatusUnprocessableEntity, msg, err)
	default:
		if lodger.IsFatal(err) {
			log.Printf("[API] Integrity violation: %v", err)
		}
		writeError(w, http.StatusInternalServerError, msg, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			log.Printf("[API] Failed to encode response: %v", err)
		}
	}
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	body := map[string]any{"error": msg}
	if err != nil {
		body["detail"] = err.Error()
	}
	writeJSON(w, status, body)
}
