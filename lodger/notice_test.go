package lodger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haven/lodger-engine/lodger"
)

// =============================================================================
// RENT CAP
// =============================================================================

func TestMaxExtensionRent_ProRatesFivePercentPerAnnum(t *testing.T) {
	// 800 * (1 + 0.05 * months/12)
	rent := lodger.MustParseMoney("800.00")

	assert.Equal(t, "820.00", lodger.MaxExtensionRent(rent, 6).String())
	assert.Equal(t, "840.00", lodger.MaxExtensionRent(rent, 12).String())
	assert.Equal(t, "810.00", lodger.MaxExtensionRent(rent, 3).String())
	// 1 month: 800 * (1 + 0.05/12) = 803.333... rounded half-up
	assert.Equal(t, "803.33", lodger.MaxExtensionRent(rent, 1).String())
}

// =============================================================================
// STANDARD TERMINATION
// =============================================================================

func TestGiveNotice_SetsEffectiveDateAndEndDate(t *testing.T) {
	// GIVEN: An active tenancy
	// WHEN: Giving 28 days notice on 2024-03-01
	// THEN: NOTICE_GIVEN, effective and end date 2024-03-29

	tn := activeTenancy(t)
	issued := lodger.NewDate(2024, time.March, 1)

	n, err := tn.GiveNotice(lodger.TerminationInput{
		Reason:           "landlord_needs_room",
		NoticePeriodDays: 28,
	}, issued, clock)
	require.NoError(t, err)

	assert.Equal(t, lodger.StatusNoticeGiven, tn.Status)
	assert.Equal(t, "2024-03-29", n.EffectiveDate.String())
	require.NotNil(t, tn.EndDate)
	assert.Equal(t, "2024-03-29", tn.EndDate.String())
}

func TestGiveNotice_ZeroDaysTerminatesImmediately(t *testing.T) {
	tn := activeTenancy(t)
	issued := lodger.NewDate(2024, time.March, 1)

	n, err := tn.GiveNotice(lodger.TerminationInput{
		Reason:           "serious_breach",
		NoticePeriodDays: 0,
	}, issued, clock)
	require.NoError(t, err)

	assert.Equal(t, lodger.StatusTerminated, tn.Status,
		"zero-day notice skips NOTICE_GIVEN entirely")
	assert.True(t, n.EffectiveDate.Equal(issued))
}

func TestGiveNotice_RejectsInvalidPeriodsAndStates(t *testing.T) {
	tn := activeTenancy(t)

	_, err := tn.GiveNotice(lodger.TerminationInput{Reason: "x", NoticePeriodDays: 5},
		lodger.NewDate(2024, time.March, 1), clock)
	assert.ErrorIs(t, err, lodger.ErrValidation, "period must be one of 0,3,7,14,28")

	draft := calendarTenancy(lodger.NewDate(2024, time.January, 1), 1, 6)
	draft.Status = lodger.StatusDraft
	_, err = draft.GiveNotice(lodger.TerminationInput{Reason: "x", NoticePeriodDays: 7},
		lodger.NewDate(2024, time.March, 1), clock)
	assert.ErrorIs(t, err, lodger.ErrInvalidState)
}

func TestApplyDueTermination_FiresOnlyOnceEffectiveDatePasses(t *testing.T) {
	tn := activeTenancy(t)
	issued := lodger.NewDate(2024, time.March, 1)
	_, err := tn.GiveNotice(lodger.TerminationInput{Reason: "x", NoticePeriodDays: 7}, issued, clock)
	require.NoError(t, err)

	assert.False(t, tn.ApplyDueTermination(lodger.NewDate(2024, time.March, 7)))
	assert.Equal(t, lodger.StatusNoticeGiven, tn.Status)

	assert.True(t, tn.ApplyDueTermination(lodger.NewDate(2024, time.March, 8)))
	assert.Equal(t, lodger.StatusTerminated, tn.Status)

	assert.False(t, tn.ApplyDueTermination(lodger.NewDate(2024, time.March, 9)),
		"terminal state never fires again")
}

// =============================================================================
// BREACH
// =============================================================================

func TestBreachNotice_SevenDayRemedyWindow(t *testing.T) {
	tn := activeTenancy(t)
	issued := lodger.NewDate(2024, time.March, 1)

	n, err := tn.IssueBreachNotice("noise", "Late-night noise", issued, clock)
	require.NoError(t, err)

	assert.Equal(t, lodger.BreachActive, n.BreachStatus)
	assert.Equal(t, "2024-03-08", n.RemedyDeadline.String())
	assert.Equal(t, lodger.StatusActive, tn.Status,
		"a breach notice alone does not change the tenancy status")
}

func TestBreach_RemedyClosesBreach(t *testing.T) {
	tn := activeTenancy(t)
	n, err := tn.IssueBreachNotice("noise", "Late-night noise",
		lodger.NewDate(2024, time.March, 1), clock)
	require.NoError(t, err)

	require.NoError(t, tn.MarkBreachRemedied(n.ID))
	assert.Equal(t, lodger.BreachRemedied, tn.Notice(n.ID).BreachStatus)

	// Re-remedy and escalate are both illegal on a closed breach.
	assert.ErrorIs(t, tn.MarkBreachRemedied(n.ID), lodger.ErrInvalidState)
	_, err = tn.EscalateBreach(n.ID, lodger.NewDate(2024, time.March, 20), clock)
	assert.ErrorIs(t, err, lodger.ErrInvalidState)
}

func TestBreach_EscalationGatedOnRemedyDeadline(t *testing.T) {
	// GIVEN: A breach issued 2024-03-01 (deadline 03-08)
	// WHEN: Escalating on the deadline day vs after it
	// THEN: On the day is rejected; after spawns a 7-day termination

	tn := activeTenancy(t)
	n, err := tn.IssueBreachNotice("smoking", "Smoking indoors",
		lodger.NewDate(2024, time.March, 1), clock)
	require.NoError(t, err)

	_, err = tn.EscalateBreach(n.ID, lodger.NewDate(2024, time.March, 8), clock)
	assert.ErrorIs(t, err, lodger.ErrInvalidState,
		"deadline day itself still allows remedy")

	termination, err := tn.EscalateBreach(n.ID, lodger.NewDate(2024, time.March, 9), clock)
	require.NoError(t, err)

	assert.Equal(t, lodger.NoticeStandardTermination, termination.Kind)
	assert.Equal(t, 7, termination.NoticePeriodDays)
	assert.Equal(t, "2024-03-16", termination.EffectiveDate.String())
	assert.Equal(t, "breach", termination.Reason)
	assert.Equal(t, "smoking", termination.SubReason)

	breach := tn.Notice(n.ID)
	assert.Equal(t, lodger.BreachEscalated, breach.BreachStatus)
	assert.Equal(t, termination.ID, breach.EscalatedTo)
	assert.Equal(t, lodger.StatusNoticeGiven, tn.Status)
}

// =============================================================================
// EXTENSION OFFER
// =============================================================================

func TestOfferExtension_EnforcesRentCap(t *testing.T) {
	// GIVEN: Rent 800, 6-month extension (cap 820.00)
	// THEN: 820.00 is accepted, 820.01 is rejected with the computed max

	tn := activeTenancy(t)
	issued := lodger.NewDate(2024, time.March, 1)

	_, err := tn.OfferExtension(lodger.ExtensionInput{
		ExtensionMonths: 6,
		NewMonthlyRent:  lodger.MustParseMoney("820.01"),
	}, issued, clock)
	assert.ErrorIs(t, err, lodger.ErrRentCapExceeded)

	var capErr *lodger.RentCapExceededError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, "820.00", capErr.Maximum.String())

	n, err := tn.OfferExtension(lodger.ExtensionInput{
		ExtensionMonths: 6,
		NewMonthlyRent:  lodger.MustParseMoney("820.00"),
	}, issued, clock)
	require.NoError(t, err)
	assert.Equal(t, lodger.ExtensionPending, n.ExtensionStatus)
	assert.Equal(t, "2024-03-15", n.ResponseDeadline.String())
}

func TestOfferExtension_OnePendingOfferAtATime(t *testing.T) {
	tn := activeTenancy(t)
	issued := lodger.NewDate(2024, time.March, 1)

	_, err := tn.OfferExtension(lodger.ExtensionInput{
		ExtensionMonths: 6, NewMonthlyRent: lodger.MustParseMoney("810.00"),
	}, issued, clock)
	require.NoError(t, err)

	_, err = tn.OfferExtension(lodger.ExtensionInput{
		ExtensionMonths: 3, NewMonthlyRent: lodger.MustParseMoney("805.00"),
	}, issued, clock)
	assert.ErrorIs(t, err, lodger.ErrInvalidState)
}

func TestRespondToExtension_AcceptAppliesRentScheduleAndEndDate(t *testing.T) {
	// GIVEN: A 6-month tenancy from 2024-01-01 with a pending 6-month
	//        offer at 820.00
	// WHEN: The lodger accepts
	// THEN: Rent, end date, continuation instalments and EXTENDED status
	//       all change together

	tn := activeTenancy(t)
	before := len(tn.Payments)

	n, err := tn.OfferExtension(lodger.ExtensionInput{
		ExtensionMonths: 6, NewMonthlyRent: lodger.MustParseMoney("820.00"),
	}, lodger.NewDate(2024, time.March, 1), clock)
	require.NoError(t, err)

	require.NoError(t, tn.RespondToExtension(n.ID, true))

	assert.Equal(t, lodger.ExtensionAccepted, tn.Notice(n.ID).ExtensionStatus)
	assert.Equal(t, lodger.StatusExtended, tn.Status)
	assert.Equal(t, "820.00", tn.MonthlyRent.String())
	require.NotNil(t, tn.EndDate)
	// start + 6 initial + 6 extension
	assert.Equal(t, "2025-01-01", tn.EndDate.String())

	require.Len(t, tn.Payments, before+6)
	cont := tn.Payments[before]
	assert.Equal(t, before+1, cont.PaymentNumber)
	assert.Equal(t, "2024-07-01", cont.DueDate.String())
	assert.Equal(t, "820.00", cont.RentDue.String())
}

func TestRespondToExtension_RejectLeavesTermsUntouched(t *testing.T) {
	tn := activeTenancy(t)
	before := len(tn.Payments)

	n, err := tn.OfferExtension(lodger.ExtensionInput{
		ExtensionMonths: 6, NewMonthlyRent: lodger.MustParseMoney("820.00"),
	}, lodger.NewDate(2024, time.March, 1), clock)
	require.NoError(t, err)

	require.NoError(t, tn.RespondToExtension(n.ID, false))

	assert.Equal(t, lodger.ExtensionRejected, tn.Notice(n.ID).ExtensionStatus)
	assert.Equal(t, lodger.StatusActive, tn.Status)
	assert.Equal(t, "800.00", tn.MonthlyRent.String())
	assert.Nil(t, tn.EndDate)
	assert.Len(t, tn.Payments, before)

	// A decided offer can't be re-answered.
	assert.ErrorIs(t, tn.RespondToExtension(n.ID, true), lodger.ErrInvalidState)
}

func TestPendingOffer_DiesWithTheTenancy(t *testing.T) {
	// GIVEN: A pending offer, then a 0-day termination (legal while the
	//        offer is outstanding)
	// WHEN: The offer is accepted manually or swept past its deadline
	// THEN: Both are refused; the tenancy stays TERMINATED at the old rent

	tn := activeTenancy(t)
	n, err := tn.OfferExtension(lodger.ExtensionInput{
		ExtensionMonths: 6, NewMonthlyRent: lodger.MustParseMoney("820.00"),
	}, lodger.NewDate(2024, time.March, 1), clock)
	require.NoError(t, err)

	_, err = tn.GiveNotice(lodger.TerminationInput{
		Reason: "serious_breach", NoticePeriodDays: 0,
	}, lodger.NewDate(2024, time.March, 5), clock)
	require.NoError(t, err)
	require.Equal(t, lodger.StatusTerminated, tn.Status)

	err = tn.RespondToExtension(n.ID, true)
	assert.ErrorIs(t, err, lodger.ErrInvalidState)

	fired := tn.AutoAcceptExpiredExtensions(lodger.NewDate(2024, time.March, 16))
	assert.Empty(t, fired)

	assert.Equal(t, lodger.StatusTerminated, tn.Status,
		"a terminal tenancy must never be pulled back to EXTENDED")
	assert.Equal(t, "800.00", tn.MonthlyRent.String())
	assert.Equal(t, lodger.ExtensionPending, tn.Notice(n.ID).ExtensionStatus)
	require.NotNil(t, tn.EndDate)
	assert.Equal(t, "2024-03-05", tn.EndDate.String())
}

func TestAutoAcceptExpiredExtensions_FiresOnlyPastDeadline(t *testing.T) {
	// Deadline 2024-03-15: nothing on the day, auto-accept the day after.

	tn := activeTenancy(t)
	n, err := tn.OfferExtension(lodger.ExtensionInput{
		ExtensionMonths: 6, NewMonthlyRent: lodger.MustParseMoney("820.00"),
	}, lodger.NewDate(2024, time.March, 1), clock)
	require.NoError(t, err)

	fired := tn.AutoAcceptExpiredExtensions(lodger.NewDate(2024, time.March, 15))
	assert.Empty(t, fired)
	assert.Equal(t, lodger.ExtensionPending, tn.Notice(n.ID).ExtensionStatus)

	fired = tn.AutoAcceptExpiredExtensions(lodger.NewDate(2024, time.March, 16))
	require.Len(t, fired, 1)
	assert.Equal(t, lodger.ExtensionAutoAccepted, tn.Notice(n.ID).ExtensionStatus)
	assert.Equal(t, lodger.StatusExtended, tn.Status)
	assert.Equal(t, "820.00", tn.MonthlyRent.String())
}
