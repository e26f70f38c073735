/*
handlers_test.go - HTTP-level tests for the tenancy API

Drives the full stack through the chi router: JSON in, engine command,
intent dispatch, JSON out, and the domain-error -> status-code mapping.
*/
package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haven/lodger-engine/api"
	"github.com/haven/lodger-engine/lodger"
	"github.com/haven/lodger-engine/lodger/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	engine := lodger.NewEngine(store.NewMemory())
	handler := api.NewHandler(engine, api.NewLogDispatcher(engine))
	srv := httptest.NewServer(api.NewRouter(handler, nil))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, srv *httptest.Server, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		decoded = nil
	}
	return resp, decoded
}

func createBody(landlord string) map[string]any {
	return map[string]any{
		"landlord_id": landlord,
		"lodger_id":   "lodger-1",
		"address": map[string]any{
			"house_number": "42",
			"street":       "Marlborough Road",
			"city":         "Bristol",
			"postcode":     "BS1 4QA",
		},
		"room_description":     "Double room, first floor",
		"shared_areas":         []string{"kitchen", "bathroom"},
		"start_date":           "2030-01-01",
		"initial_term_months":  6,
		"monthly_rent":         "800.00",
		"deposit_amount":       "800.00",
		"deposit_applicable":   true,
		"payment_type":         "calendar",
		"payment_day_of_month": 1,
	}
}

// createActive drives a tenancy to ACTIVE through the API and returns its ID.
func createActive(t *testing.T, srv *httptest.Server, landlord string) string {
	t.Helper()

	resp, created := doJSON(t, srv, http.MethodPost, "/api/tenancies", createBody(landlord))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)

	resp, activated := doJSON(t, srv, http.MethodPost, "/api/tenancies/"+id+"/activate", map[string]any{
		"signature_text": "A. Lodger",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "active", activated["status"])
	return id
}

// =============================================================================
// LIFECYCLE OVER HTTP
// =============================================================================

func TestAPI_CreateActivateAndRead(t *testing.T) {
	// GIVEN: A fresh draft
	// WHEN: Activating over HTTP
	// THEN: The returned aggregate carries schedule, funds and agreement ref

	srv := newServer(t)
	id := createActive(t, srv, "landlord-1")

	resp, tenancy := doJSON(t, srv, http.MethodGet, "/api/tenancies/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "active", tenancy["status"])
	assert.Equal(t, true, tenancy["signed"])
	assert.Len(t, tenancy["payments"], 6)

	funds, ok := tenancy["funds"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "1600.00", funds["total_available"])

	// The dispatcher attached the generated agreement document.
	assert.Equal(t, "docs/agreements/"+id+".pdf", tenancy["agreement_ref"])
}

func TestAPI_ListRequiresLandlord(t *testing.T) {
	srv := newServer(t)

	resp, _ := doJSON(t, srv, http.MethodGet, "/api/tenancies", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	createActive(t, srv, "landlord-1")
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/tenancies?landlord_id=landlord-1", nil)
	require.NoError(t, err)
	listResp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer listResp.Body.Close()

	var list []map[string]any
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&list))
	assert.Len(t, list, 1)
}

func TestAPI_SubmitConfirmAndSummary(t *testing.T) {
	srv := newServer(t)
	id := createActive(t, srv, "landlord-1")

	pay := map[string]any{"amount": "1600.00", "method": "bank_transfer", "reference": "REF-001"}
	resp, payment := doJSON(t, srv, http.MethodPost, "/api/tenancies/"+id+"/payments/1/submit", pay)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "submitted", payment["status"])
	assert.Equal(t, "0.00", payment["rent_paid"])

	resp, payment = doJSON(t, srv, http.MethodPost, "/api/tenancies/"+id+"/payments/1/confirm", pay)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "confirmed", payment["status"])
	assert.Equal(t, "1600.00", payment["rent_paid"])

	resp, summary := doJSON(t, srv, http.MethodGet, "/api/tenancies/"+id+"/payments/summary", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1600.00", summary["total_paid"])
	assert.Equal(t, "5600.00", summary["total_due"])
	assert.Equal(t, "4000.00", summary["outstanding"])
}

func TestAPI_DeductionUpdatesFunds(t *testing.T) {
	srv := newServer(t)
	id := createActive(t, srv, "landlord-1")

	resp, deduction := doJSON(t, srv, http.MethodPost, "/api/tenancies/"+id+"/deductions", map[string]any{
		"type":         "damage",
		"description":  "Broken wardrobe door",
		"total_amount": "150.00",
		"from_deposit": "150.00",
		"from_advance": "0.00",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "150.00", deduction["total_amount"])
	// The dispatcher generated and attached the statement synchronously.
	assert.NotEmpty(t, deduction["id"])

	resp, funds := doJSON(t, srv, http.MethodGet, "/api/tenancies/"+id+"/funds", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "650.00", funds["available_deposit"])
	assert.Equal(t, "800.00", funds["available_advance"])
}

func TestAPI_NoticeFlow(t *testing.T) {
	srv := newServer(t)
	id := createActive(t, srv, "landlord-1")

	resp, tenancy := doJSON(t, srv, http.MethodPost, "/api/tenancies/"+id+"/notices/termination", map[string]any{
		"reason":             "landlord_needs_room",
		"notice_period_days": 28,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "notice_given", tenancy["status"])

	notices, ok := tenancy["notices"].([]any)
	require.True(t, ok)
	require.Len(t, notices, 1)
	notice := notices[0].(map[string]any)
	assert.Equal(t, "standard_termination", notice["kind"])
	assert.NotEmpty(t, notice["effective_date"])
}

// =============================================================================
// ERROR MAPPING
// =============================================================================

func TestAPI_ErrorStatusCodes(t *testing.T) {
	srv := newServer(t)

	// 400: malformed money
	bad := createBody("landlord-1")
	bad["monthly_rent"] = "eight hundred"
	resp, _ := doJSON(t, srv, http.MethodPost, "/api/tenancies", bad)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// 400: domain validation (invalid notice period)
	id := createActive(t, srv, "landlord-1")
	resp, _ = doJSON(t, srv, http.MethodPost, "/api/tenancies/"+id+"/notices/termination", map[string]any{
		"reason":             "x",
		"notice_period_days": 5,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// 404: unknown tenancy
	resp, _ = doJSON(t, srv, http.MethodGet, "/api/tenancies/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// 409: double confirm
	pay := map[string]any{"amount": "800.00", "method": "cash"}
	resp, _ = doJSON(t, srv, http.MethodPost, "/api/tenancies/"+id+"/payments/2/confirm", pay)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, srv, http.MethodPost, "/api/tenancies/"+id+"/payments/2/confirm", pay)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// 409: third concurrent tenancy for the landlord
	_, _ = doJSON(t, srv, http.MethodPost, "/api/tenancies", createBody("landlord-1"))
	resp, _ = doJSON(t, srv, http.MethodPost, "/api/tenancies", createBody("landlord-1"))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// 422: extension above the rent cap
	resp, body := doJSON(t, srv, http.MethodPost, "/api/tenancies/"+id+"/notices/extension", map[string]any{
		"extension_months": 6,
		"new_monthly_rent": "900.00",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, fmt.Sprint(body["detail"]), "820.00",
		"the computed maximum is surfaced to the client")

	// 422: deduction split mismatch
	resp, _ = doJSON(t, srv, http.MethodPost, "/api/tenancies/"+id+"/deductions", map[string]any{
		"type":         "damage",
		"description":  "x",
		"total_amount": "100.00",
		"from_deposit": "50.00",
		"from_advance": "45.00",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}
