package lodger_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haven/lodger-engine/lodger"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func calendarTenancy(startDate lodger.Date, dayOfMonth, termMonths int) *lodger.Tenancy {
	return &lodger.Tenancy{
		ID:                lodger.NewTenancyID(),
		StartDate:         startDate,
		InitialTermMonths: termMonths,
		MonthlyRent:       lodger.MustParseMoney("800.00"),
		PaymentType:       lodger.PaymentCalendar,
		PaymentDayOfMonth: dayOfMonth,
	}
}

func cycleTenancy(startDate lodger.Date, freq lodger.PaymentFrequency, termMonths int) *lodger.Tenancy {
	return &lodger.Tenancy{
		ID:                lodger.NewTenancyID(),
		StartDate:         startDate,
		InitialTermMonths: termMonths,
		MonthlyRent:       lodger.MustParseMoney("800.00"),
		PaymentType:       lodger.PaymentCycle,
		PaymentFrequency:  freq,
	}
}

// =============================================================================
// STRUCTURAL INVARIANTS
// =============================================================================

func TestGenerateSchedule_SequentialNumbersAndIncreasingDates(t *testing.T) {
	// GIVEN: Any valid configuration
	// WHEN: Generating the schedule
	// THEN: Numbers run 1..N with no gaps, due dates strictly increase

	configs := []*lodger.Tenancy{
		calendarTenancy(lodger.NewDate(2024, time.January, 15), 1, 6),
		cycleTenancy(lodger.NewDate(2024, time.January, 1), lodger.FreqWeekly, 6),
		cycleTenancy(lodger.NewDate(2024, time.January, 1), lodger.FreqBiWeekly, 6),
		cycleTenancy(lodger.NewDate(2024, time.January, 1), lodger.FreqFourWeekly, 6),
		cycleTenancy(lodger.NewDate(2024, time.January, 31), lodger.FreqMonthly, 12),
	}

	for _, tn := range configs {
		payments, err := lodger.GenerateSchedule(tn)
		require.NoError(t, err)
		require.NotEmpty(t, payments)

		for i, p := range payments {
			assert.Equal(t, i+1, p.PaymentNumber, "numbers must be sequential from 1")
			assert.Equal(t, lodger.PaymentPending, p.Status)
			assert.True(t, p.RentPaid.IsZero())
			if i > 0 {
				assert.True(t, payments[i-1].DueDate.Before(p.DueDate),
					"due dates must strictly increase: %s then %s",
					payments[i-1].DueDate, p.DueDate)
			}
		}
	}
}

func TestGenerateSchedule_FirstPaymentIsDoubleRentOnStartDate(t *testing.T) {
	// First instalment = current period + one period held in advance,
	// flat x2 for every frequency.

	start := lodger.NewDate(2024, time.January, 1)
	for _, freq := range []lodger.PaymentFrequency{
		lodger.FreqWeekly, lodger.FreqBiWeekly, lodger.FreqMonthly, lodger.FreqFourWeekly,
	} {
		payments, err := lodger.GenerateSchedule(cycleTenancy(start, freq, 6))
		require.NoError(t, err)
		assert.True(t, payments[0].DueDate.Equal(start), "freq %s", freq)
		assert.Equal(t, "1600.00", payments[0].RentDue.String(), "freq %s", freq)
	}
}

// =============================================================================
// CALENDAR MODE
// =============================================================================

func TestGenerateSchedule_Calendar_FixedDayOfMonth(t *testing.T) {
	// GIVEN: Start 2024-01-15, payments on the 1st, 6-month term
	// WHEN: Generating
	// THEN: Payment 1 on the start date, then the 1st of each following month

	payments, err := lodger.GenerateSchedule(
		calendarTenancy(lodger.NewDate(2024, time.January, 15), 1, 6))
	require.NoError(t, err)
	require.Len(t, payments, 6)

	assert.Equal(t, "2024-01-15", payments[0].DueDate.String())
	assert.Equal(t, "2024-02-01", payments[1].DueDate.String())
	assert.Equal(t, "2024-03-01", payments[2].DueDate.String())
	assert.Equal(t, "2024-06-01", payments[5].DueDate.String())

	for _, p := range payments[1:] {
		assert.Equal(t, "800.00", p.RentDue.String())
	}
}

func TestGenerateSchedule_Calendar_Day31ClampsToShortMonths(t *testing.T) {
	// Day 31 in February must become Feb 29 (2024 is a leap year),
	// never slide into March.

	payments, err := lodger.GenerateSchedule(
		calendarTenancy(lodger.NewDate(2024, time.January, 31), 31, 4))
	require.NoError(t, err)
	require.Len(t, payments, 4)

	assert.Equal(t, "2024-01-31", payments[0].DueDate.String())
	assert.Equal(t, "2024-02-29", payments[1].DueDate.String())
	assert.Equal(t, "2024-03-31", payments[2].DueDate.String())
	assert.Equal(t, "2024-04-30", payments[3].DueDate.String())
}

// =============================================================================
// CYCLE MODE
// =============================================================================

func TestGenerateSchedule_FourWeekly_DoubledFirstThenFlat(t *testing.T) {
	// GIVEN: 4-weekly cycle, 800.00/month, starting 2024-01-01
	// WHEN: Generating a 6-month schedule
	// THEN: 1600.00 on day one, then flat 800.00 every 28 days

	payments, err := lodger.GenerateSchedule(
		cycleTenancy(lodger.NewDate(2024, time.January, 1), lodger.FreqFourWeekly, 6))
	require.NoError(t, err)
	require.Len(t, payments, 7) // ceil(6 * 30.44 / 28)

	assert.Equal(t, "2024-01-01", payments[0].DueDate.String())
	assert.Equal(t, "1600.00", payments[0].RentDue.String())

	assert.Equal(t, "2024-01-29", payments[1].DueDate.String())
	assert.Equal(t, "800.00", payments[1].RentDue.String())

	assert.Equal(t, "2024-02-26", payments[2].DueDate.String())
	assert.Equal(t, "800.00", payments[2].RentDue.String())
}

func TestGenerateSchedule_WeeklyAndBiWeekly_ProRated(t *testing.T) {
	// Shorter-than-month cycles pro-rate over the 30.44-day average month.

	weekly, err := lodger.GenerateSchedule(
		cycleTenancy(lodger.NewDate(2024, time.January, 1), lodger.FreqWeekly, 6))
	require.NoError(t, err)
	assert.Len(t, weekly, 27) // ceil(6 * 30.44 / 7)
	assert.Equal(t, "183.97", weekly[1].RentDue.String())
	assert.Equal(t, "2024-01-08", weekly[1].DueDate.String())

	biWeekly, err := lodger.GenerateSchedule(
		cycleTenancy(lodger.NewDate(2024, time.January, 1), lodger.FreqBiWeekly, 6))
	require.NoError(t, err)
	assert.Len(t, biWeekly, 14) // ceil(6 * 30.44 / 14)
	assert.Equal(t, "367.94", biWeekly[1].RentDue.String())
	assert.Equal(t, "2024-01-15", biWeekly[1].DueDate.String())
}

func TestGenerateSchedule_MonthlyCycle_AnchorsOnStartDay(t *testing.T) {
	// A Jan-31 start steps Feb 29, Mar 31, Apr 30 - anchored on the start
	// day, not drifting to the clamped day.

	payments, err := lodger.GenerateSchedule(
		cycleTenancy(lodger.NewDate(2024, time.January, 31), lodger.FreqMonthly, 4))
	require.NoError(t, err)
	require.Len(t, payments, 4)

	assert.Equal(t, "2024-01-31", payments[0].DueDate.String())
	assert.Equal(t, "2024-02-29", payments[1].DueDate.String())
	assert.Equal(t, "2024-03-31", payments[2].DueDate.String())
	assert.Equal(t, "2024-04-30", payments[3].DueDate.String())
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestGenerateSchedule_RejectsDegenerateConfigs(t *testing.T) {
	zeroRent := calendarTenancy(lodger.NewDate(2024, time.January, 1), 1, 6)
	zeroRent.MonthlyRent = lodger.Money{}
	_, err := lodger.GenerateSchedule(zeroRent)
	assert.ErrorIs(t, err, lodger.ErrValidation)

	negativeRent := calendarTenancy(lodger.NewDate(2024, time.January, 1), 1, 6)
	negativeRent.MonthlyRent = lodger.MustParseMoney("-800.00")
	_, err = lodger.GenerateSchedule(negativeRent)
	assert.ErrorIs(t, err, lodger.ErrValidation)

	zeroTerm := calendarTenancy(lodger.NewDate(2024, time.January, 1), 1, 0)
	_, err = lodger.GenerateSchedule(zeroTerm)
	assert.ErrorIs(t, err, lodger.ErrValidation)

	badDay := calendarTenancy(lodger.NewDate(2024, time.January, 1), 32, 6)
	_, err = lodger.GenerateSchedule(badDay)
	assert.ErrorIs(t, err, lodger.ErrValidation)

	badFreq := cycleTenancy(lodger.NewDate(2024, time.January, 1), "fortnightly-ish", 6)
	_, err = lodger.GenerateSchedule(badFreq)
	var verr *lodger.ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Equal(t, "paymentFrequency", verr.Field)
}

// =============================================================================
// EXTENSION CONTINUATION
// =============================================================================

func TestExtendSchedule_ContinuesNumbersAndDatesAtNewRent(t *testing.T) {
	// GIVEN: A 6-month calendar schedule
	// WHEN: Extending 3 months at 820.00
	// THEN: 3 new records continue the numbering and monthly cadence

	tn := calendarTenancy(lodger.NewDate(2024, time.January, 1), 1, 6)
	payments, err := lodger.GenerateSchedule(tn)
	require.NoError(t, err)
	tn.Payments = payments

	extra := lodger.ExtendSchedule(tn, 3, lodger.MustParseMoney("820.00"))
	require.Len(t, extra, 3)

	assert.Equal(t, 7, extra[0].PaymentNumber)
	assert.Equal(t, "2024-07-01", extra[0].DueDate.String())
	assert.Equal(t, "820.00", extra[0].RentDue.String())

	assert.Equal(t, 9, extra[2].PaymentNumber)
	assert.Equal(t, "2024-09-01", extra[2].DueDate.String())
}

func TestExtendSchedule_WeeklyContinuationProRatesNewRent(t *testing.T) {
	tn := cycleTenancy(lodger.NewDate(2024, time.January, 1), lodger.FreqWeekly, 6)
	payments, err := lodger.GenerateSchedule(tn)
	require.NoError(t, err)
	tn.Payments = payments
	last := payments[len(payments)-1]

	extra := lodger.ExtendSchedule(tn, 2, lodger.MustParseMoney("850.00"))
	require.Len(t, extra, 9) // ceil(2 * 30.44 / 7)

	assert.Equal(t, last.PaymentNumber+1, extra[0].PaymentNumber)
	assert.True(t, extra[0].DueDate.Equal(last.DueDate.AddDays(7)))
	// 850 * 7 / 30.44 = 195.466..., rounded once
	assert.Equal(t, "195.47", extra[0].RentDue.String())
}
