/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
  Provides pre-built scenarios that populate the store with realistic
  data for testing and demos. Each scenario creates a tenancy in a
  particular lifecycle state through the same engine commands the API
  uses, so demo data can never violate an invariant.

AVAILABLE SCENARIOS:
  monthly-tenancy:   Activated calendar-monthly tenancy with confirmed
                     and overdue payments
  four-weekly:       4-weekly cycle tenancy showing the doubled first
                     instalment
  breach-flow:       Active tenancy with an open breach notice
  extension-offer:   Active tenancy with a pending rent-capped offer

HOW SCENARIOS WORK:
 1. Create tenancy via the engine (fresh landlord per load, so the
    two-tenancy cap never blocks a reload)
 2. Activate with a demo signature
 3. Run the commands that put it in the target state

USAGE VIA API:
  POST /api/scenarios/load
  {"scenario_id": "breach-flow"}

NOTE:
  Scenarios add data; they do not reset the database. Only use in
  development/demo environments.

SEE ALSO:
  - handlers.go: Shares the Handler these methods hang off
  - lodger/lifecycle.go: The commands scenarios drive
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/haven/lodger-engine/lodger"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "monthly-tenancy",
		Name:        "Monthly Tenancy",
		Description: "Calendar-monthly tenancy with confirmed and overdue payments",
	},
	{
		ID:          "four-weekly",
		Name:        "Four-Weekly Cycle",
		Description: "4-weekly payment cycle with doubled first instalment",
	},
	{
		ID:          "breach-flow",
		Name:        "Breach Flow",
		Description: "Active tenancy with an open breach notice awaiting remedy",
	},
	{
		ID:          "extension-offer",
		Name:        "Extension Offer",
		Description: "Active tenancy with a pending rent-capped extension offer",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the most recently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{
		ID:   h.currentScenario,
		Name: h.currentScenario,
	})
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	var t *lodger.Tenancy
	var err error

	switch req.ScenarioID {
	case "monthly-tenancy":
		t, err = h.loadMonthlyTenancy(ctx)
	case "four-weekly":
		t, err = h.loadFourWeekly(ctx)
	case "breach-flow":
		t, err = h.loadBreachFlow(ctx)
	case "extension-offer":
		t, err = h.loadExtensionOffer(ctx)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown scenario: %s", req.ScenarioID), nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.currentScenario = req.ScenarioID
	writeJSON(w, http.StatusOK, map[string]any{
		"scenario":    req.ScenarioID,
		"tenancy_id":  string(t.ID),
		"landlord_id": string(t.LandlordID),
		"lodger_id":   string(t.LodgerID),
	})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// demoTerms returns a baseline draft for scenarios to adjust. A fresh
// landlord per load keeps the concurrent-tenancy cap out of the way.
func demoTerms() lodger.CreateTenancyInput {
	return lodger.CreateTenancyInput{
		LandlordID: lodger.LandlordID("landlord-demo-" + uuid.NewString()[:8]),
		LodgerID:   lodger.LodgerID("lodger-demo-" + uuid.NewString()[:8]),
		Address: lodger.Address{
			HouseNumber: "42",
			Street:      "Marlborough Road",
			City:        "Bristol",
			County:      "Avon",
			Postcode:    "BS1 3NU",
		},
		RoomDescription:   "Double room, first floor, bay window",
		SharedAreas:       []lodger.SharedArea{lodger.AreaKitchen, lodger.AreaBathroom, lodger.AreaGarden},
		StartDate:         lodger.Today().AddDays(-90),
		InitialTermMonths: 6,
		MonthlyRent:       lodger.MustParseMoney("800.00"),
		DepositAmount:     lodger.MustParseMoney("800.00"),
		DepositApplicable: true,
		PaymentType:       lodger.PaymentCalendar,
		PaymentDayOfMonth: 1,
	}
}

func (h *Handler) activateDemo(ctx context.Context, id lodger.TenancyID) (*lodger.Tenancy, error) {
	t, _, err := h.Engine.Activate(ctx, id, lodger.SignatureInput{
		SignatureText: "Alex Demo",
		PhotoIDRef:    "docs/id/demo-passport.jpg",
		DateOfBirth:   lodger.NewDate(1994, 6, 12),
		IDExpiry:      lodger.Today().AddDays(365 * 3),
	})
	return t, err
}

func (h *Handler) loadMonthlyTenancy(ctx context.Context) (*lodger.Tenancy, error) {
	t, _, err := h.Engine.CreateTenancy(ctx, demoTerms())
	if err != nil {
		return nil, err
	}
	if t, err = h.activateDemo(ctx, t.ID); err != nil {
		return nil, err
	}

	// First instalment submitted and confirmed; the rest left to age into
	// overdue naturally.
	first := t.Payments[0]
	details := lodger.PaymentDetails{
		Amount:    first.RentDue,
		Method:    "bank_transfer",
		Reference: "DEMO-RENT-001",
	}
	if _, _, err = h.Engine.SubmitPayment(ctx, t.ID, 1, details); err != nil {
		return nil, err
	}
	t, _, err = h.Engine.ConfirmPayment(ctx, t.ID, 1, details)
	return t, err
}

func (h *Handler) loadFourWeekly(ctx context.Context) (*lodger.Tenancy, error) {
	in := demoTerms()
	in.PaymentType = lodger.PaymentCycle
	in.PaymentFrequency = lodger.FreqFourWeekly
	in.PaymentDayOfMonth = 0

	t, _, err := h.Engine.CreateTenancy(ctx, in)
	if err != nil {
		return nil, err
	}
	return h.activateDemo(ctx, t.ID)
}

func (h *Handler) loadBreachFlow(ctx context.Context) (*lodger.Tenancy, error) {
	t, _, err := h.Engine.CreateTenancy(ctx, demoTerms())
	if err != nil {
		return nil, err
	}
	if t, err = h.activateDemo(ctx, t.ID); err != nil {
		return nil, err
	}
	t, _, err = h.Engine.IssueBreachNotice(ctx, t.ID,
		"noise", "Repeated late-night noise complaints from neighbours")
	return t, err
}

func (h *Handler) loadExtensionOffer(ctx context.Context) (*lodger.Tenancy, error) {
	t, _, err := h.Engine.CreateTenancy(ctx, demoTerms())
	if err != nil {
		return nil, err
	}
	if t, err = h.activateDemo(ctx, t.ID); err != nil {
		return nil, err
	}
	t, _, err = h.Engine.OfferExtension(ctx, t.ID, lodger.ExtensionInput{
		ExtensionMonths: 6,
		NewMonthlyRent:  lodger.MustParseMoney("820.00"),
	})
	return t, err
}
