package lodger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haven/lodger-engine/lodger"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// activeTenancy builds an in-memory ACTIVE tenancy with a generated
// calendar-monthly schedule, bypassing the engine.
func activeTenancy(t *testing.T) *lodger.Tenancy {
	t.Helper()

	tn := calendarTenancy(lodger.NewDate(2024, time.January, 1), 1, 6)
	tn.Status = lodger.StatusActive
	tn.DepositApplicable = true
	tn.DepositAmount = lodger.MustParseMoney("800.00")

	payments, err := lodger.GenerateSchedule(tn)
	require.NoError(t, err)
	tn.Payments = payments
	tn.Funds = lodger.NewFundsPool(tn)
	return tn
}

func details(amount string) lodger.PaymentDetails {
	return lodger.PaymentDetails{
		Amount:    lodger.MustParseMoney(amount),
		Method:    "bank_transfer",
		Reference: "REF-001",
	}
}

var clock = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

// =============================================================================
// SUBMIT / CONFIRM FLOW
// =============================================================================

func TestSubmitPayment_MovesPendingToSubmitted(t *testing.T) {
	// GIVEN: A pending instalment
	// WHEN: The lodger submits a payment claim
	// THEN: Status becomes SUBMITTED but RentPaid stays zero

	tn := activeTenancy(t)

	err := tn.SubmitPayment(2, details("800.00"), clock)
	require.NoError(t, err)

	p := tn.Payment(2)
	assert.Equal(t, lodger.PaymentSubmitted, p.Status)
	assert.True(t, p.RentPaid.IsZero(), "submission must not credit the ledger")
	require.NotNil(t, p.Submission)
	assert.Equal(t, "800.00", p.Submission.Amount.String())
	assert.Nil(t, p.Confirmation)
}

func TestSubmitPayment_RejectedOnceSubmittedOrConfirmed(t *testing.T) {
	tn := activeTenancy(t)

	require.NoError(t, tn.SubmitPayment(2, details("800.00"), clock))
	err := tn.SubmitPayment(2, details("800.00"), clock)
	assert.ErrorIs(t, err, lodger.ErrInvalidState)

	require.NoError(t, tn.ConfirmPayment(3, details("800.00"), clock))
	err = tn.SubmitPayment(3, details("800.00"), clock)
	assert.ErrorIs(t, err, lodger.ErrInvalidState)
}

func TestConfirmPayment_CreditsLedgerAndKeepsSubmission(t *testing.T) {
	// GIVEN: A submitted instalment
	// WHEN: The landlord confirms
	// THEN: RentPaid is credited and the submission survives for audit

	tn := activeTenancy(t)
	require.NoError(t, tn.SubmitPayment(2, details("800.00"), clock))

	err := tn.ConfirmPayment(2, details("800.00"), clock.Add(time.Hour))
	require.NoError(t, err)

	p := tn.Payment(2)
	assert.Equal(t, lodger.PaymentConfirmed, p.Status)
	assert.Equal(t, "800.00", p.RentPaid.String())
	assert.True(t, p.Balance().IsZero())
	assert.NotNil(t, p.Submission, "submission is audit trail, not scratch state")
	assert.NotNil(t, p.Confirmation)
}

func TestConfirmPayment_WithoutPriorSubmission(t *testing.T) {
	// Confirmation doesn't require a submission - a landlord can record
	// cash received directly.
	tn := activeTenancy(t)

	require.NoError(t, tn.ConfirmPayment(2, details("800.00"), clock))
	p := tn.Payment(2)
	assert.Equal(t, lodger.PaymentConfirmed, p.Status)
	assert.Nil(t, p.Submission)
}

func TestConfirmPayment_DoubleConfirmRejectedWithoutCrediting(t *testing.T) {
	// GIVEN: A confirmed instalment
	// WHEN: Confirming again
	// THEN: AlreadyConfirmedError, and RentPaid is unchanged

	tn := activeTenancy(t)
	require.NoError(t, tn.ConfirmPayment(2, details("800.00"), clock))

	err := tn.ConfirmPayment(2, details("800.00"), clock)
	assert.ErrorIs(t, err, lodger.ErrAlreadyConfirmed)

	var confErr *lodger.AlreadyConfirmedError
	require.ErrorAs(t, err, &confErr)
	assert.Equal(t, 2, confErr.PaymentNumber)

	assert.Equal(t, "800.00", tn.Payment(2).RentPaid.String(),
		"failed confirm must never sum")
}

func TestPayment_PartialAndOverpayment(t *testing.T) {
	tn := activeTenancy(t)

	// Partial: balance negative
	require.NoError(t, tn.ConfirmPayment(2, details("500.00"), clock))
	assert.Equal(t, "-300.00", tn.Payment(2).Balance().String())

	// Over: balance positive (lodger in credit)
	require.NoError(t, tn.ConfirmPayment(3, details("900.00"), clock))
	assert.Equal(t, "100.00", tn.Payment(3).Balance().String())
}

func TestPaymentActions_UnknownNumberAndBadAmount(t *testing.T) {
	tn := activeTenancy(t)

	err := tn.SubmitPayment(99, details("800.00"), clock)
	assert.ErrorIs(t, err, lodger.ErrNotFound)

	err = tn.ConfirmPayment(2, lodger.PaymentDetails{}, clock)
	assert.ErrorIs(t, err, lodger.ErrValidation)
}

// =============================================================================
// OVERDUE DERIVATION
// =============================================================================

func TestStatusOn_DerivesOverdueAtReadTime(t *testing.T) {
	// GIVEN: A pending instalment due 2024-02-01
	// THEN: It reads pending on/before the due date, overdue after,
	//       and never overdue once submitted or confirmed

	tn := activeTenancy(t)
	p := tn.Payment(2) // due 2024-02-01

	assert.Equal(t, lodger.PaymentPending, p.StatusOn(lodger.NewDate(2024, time.February, 1)))
	assert.Equal(t, lodger.PaymentOverdue, p.StatusOn(lodger.NewDate(2024, time.February, 2)))

	require.NoError(t, tn.SubmitPayment(2, details("800.00"), clock))
	assert.Equal(t, lodger.PaymentSubmitted, p.StatusOn(lodger.NewDate(2024, time.March, 1)))

	require.NoError(t, tn.ConfirmPayment(2, details("800.00"), clock))
	assert.Equal(t, lodger.PaymentConfirmed, p.StatusOn(lodger.NewDate(2030, time.January, 1)))

	// Deriving overdue on an untouched payment never writes back.
	p3 := tn.Payment(3) // due 2024-03-01
	assert.Equal(t, lodger.PaymentOverdue, p3.StatusOn(lodger.NewDate(2024, time.March, 2)))
	assert.Equal(t, lodger.PaymentPending, p3.Status,
		"stored status never holds the derived overdue value")
}

// =============================================================================
// SUMMARY
// =============================================================================

func TestSummary_RollsUpLedger(t *testing.T) {
	// Schedule: 1600 + 5 x 800 = 5600 total due.
	tn := activeTenancy(t)

	require.NoError(t, tn.ConfirmPayment(1, details("1600.00"), clock))
	require.NoError(t, tn.ConfirmPayment(2, details("800.00"), clock))

	// As of 2024-03-10: payment 3 (due Mar 1) is overdue, 4-6 still future.
	s := tn.Summary(lodger.NewDate(2024, time.March, 10))
	assert.Equal(t, "2400.00", s.TotalPaid.String())
	assert.Equal(t, "5600.00", s.TotalDue.String())
	assert.Equal(t, "3200.00", s.Outstanding.String())
	assert.Equal(t, 1, s.OverdueCount)
}

func TestSummary_NegativeOutstandingWhenInCredit(t *testing.T) {
	// GIVEN: Every instalment confirmed, the first overpaid by 400
	// THEN: Outstanding goes negative - the lodger is in credit

	tn := activeTenancy(t)
	require.NoError(t, tn.ConfirmPayment(1, details("2000.00"), clock))
	for n := 2; n <= 6; n++ {
		require.NoError(t, tn.ConfirmPayment(n, details("800.00"), clock))
	}

	s := tn.Summary(lodger.NewDate(2024, time.July, 1))
	assert.Equal(t, "6000.00", s.TotalPaid.String())
	assert.Equal(t, "5600.00", s.TotalDue.String())
	assert.Equal(t, "-400.00", s.Outstanding.String())
	assert.Zero(t, s.OverdueCount)
}
