/*
schedule.go - Payment schedule generation

PURPOSE:
  Turns a tenancy's cycle configuration into the ordered sequence of
  (dueDate, rentDue) instalments. Generation is a pure function of the
  tenancy fields: given the same tenancy it always produces the same
  schedule, so activation can safely be retried.

TWO MODES:
  CALENDAR: instalments fall on a fixed day of each month. Day-of-month
    overflow is clamped to the last day of short months (day 31 in
    February becomes Feb 28/29, never March).

  CYCLE: instalments step forward by a fixed interval - weekly (7),
    bi-weekly (14), 4-weekly (28) - or by calendar month for monthly.
    Monthly stepping anchors on the start day so a Jan-31 start yields
    Feb 28, Mar 31, not a drifting 28th.

AMOUNTS:
  Payment 1 is always monthlyRent x 2: the current period plus one period
  held in advance, regardless of frequency (observed product behavior).
  Weekly and bi-weekly instalments pro-rate the monthly rent over the
  average month: round(rent * periodDays / 30.44, 2), rounded once at the
  end. 4-weekly and monthly instalments charge the flat monthly rent.

SCHEDULE LENGTH:
  Bounded by initialTermMonths converted to the cycle's unit, rounded up
  so a partial final period still gets an instalment.

SEE ALSO:
  - constants.go: DaysPerMonth and the per-frequency day counts
  - lifecycle.go: Calls GenerateSchedule at activation
*/
package lodger

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SCHEDULE GENERATION
// =============================================================================

// GenerateSchedule produces the full instalment sequence for a tenancy.
// Rejects degenerate configurations rather than emitting a broken schedule.
func GenerateSchedule(t *Tenancy) ([]PaymentRecord, error) {
	if err := validateScheduleConfig(t); err != nil {
		return nil, err
	}

	count, err := scheduleLength(t.PaymentType, t.PaymentFrequency, t.InitialTermMonths)
	if err != nil {
		return nil, err
	}

	records := make([]PaymentRecord, 0, count)
	for i := 1; i <= count; i++ {
		records = append(records, PaymentRecord{
			PaymentNumber: i,
			DueDate:       dueDateFor(t, i),
			RentDue:       instalmentAmount(t, i),
			RentPaid:      Money{},
			Status:        PaymentPending,
		})
	}
	return records, nil
}

// ExtendSchedule appends continuation instalments for an accepted
// extension: the same cycle rules, the new rent, and no second advance.
func ExtendSchedule(t *Tenancy, extensionMonths int, newRent Money) []PaymentRecord {
	if len(t.Payments) == 0 || extensionMonths <= 0 {
		return nil
	}

	step := cycleStepDays(t.PaymentFrequency)
	var extra int
	if t.PaymentType == PaymentCalendar || t.PaymentFrequency == FreqMonthly {
		extra = extensionMonths
	} else {
		extra = periodsCeil(extensionMonths, step)
	}

	last := t.Payments[len(t.Payments)-1]
	records := make([]PaymentRecord, 0, extra)
	prevDue := last.DueDate
	for i := 1; i <= extra; i++ {
		n := last.PaymentNumber + i
		var due Date
		switch {
		case t.PaymentType == PaymentCalendar:
			due = clampedDayInMonth(prevDue.Year(), prevDue.Month()+1, t.PaymentDayOfMonth)
		case t.PaymentFrequency == FreqMonthly:
			due = clampedDayInMonth(t.StartDate.Year(), t.StartDate.Month()+monthsFromStart(n), t.StartDate.Day())
		default:
			due = prevDue.AddDays(step)
		}
		amount := newRent
		if scaled, ok := proRatedAmount(newRent, t.PaymentFrequency); ok {
			amount = scaled
		}
		records = append(records, PaymentRecord{
			PaymentNumber: n,
			DueDate:       due,
			RentDue:       amount,
			Status:        PaymentPending,
		})
		prevDue = due
	}
	return records
}

// =============================================================================
// DUE DATES
// =============================================================================

func dueDateFor(t *Tenancy, paymentNumber int) Date {
	if paymentNumber == 1 {
		return t.StartDate
	}

	if t.PaymentType == PaymentCalendar {
		// Day paymentDayOfMonth of each month following the start month.
		return clampedDayInMonth(
			t.StartDate.Year(),
			t.StartDate.Month()+monthsFromStart(paymentNumber),
			t.PaymentDayOfMonth,
		)
	}

	if t.PaymentFrequency == FreqMonthly {
		// Calendar-month stepping anchored on the start day.
		return clampedDayInMonth(
			t.StartDate.Year(),
			t.StartDate.Month()+monthsFromStart(paymentNumber),
			t.StartDate.Day(),
		)
	}

	return t.StartDate.AddDays(cycleStepDays(t.PaymentFrequency) * (paymentNumber - 1))
}

// monthsFromStart is the month offset of a payment relative to the start
// month, typed for clampedDayInMonth's out-of-range normalization.
func monthsFromStart(paymentNumber int) time.Month { return time.Month(paymentNumber - 1) }

func cycleStepDays(f PaymentFrequency) int {
	switch f {
	case FreqWeekly:
		return DaysWeekly
	case FreqBiWeekly:
		return DaysBiWeekly
	case FreqFourWeekly:
		return DaysFourWeek
	default:
		return 0 // monthly steps by calendar month, not days
	}
}

// =============================================================================
// AMOUNTS
// =============================================================================

func instalmentAmount(t *Tenancy, paymentNumber int) Money {
	if paymentNumber == 1 {
		// Current period plus advance, flat x2 for every frequency.
		return t.MonthlyRent.MulInt(2)
	}
	if amount, ok := proRatedAmount(t.MonthlyRent, t.PaymentFrequency); ok {
		return amount
	}
	return t.MonthlyRent
}

// proRatedAmount returns the scaled per-period amount for frequencies
// shorter than a month. 4-weekly and monthly (and calendar mode, where
// frequency is unset) charge the flat monthly rent.
func proRatedAmount(rent Money, f PaymentFrequency) (Money, bool) {
	switch f {
	case FreqWeekly:
		return rent.MulDiv(decimal.NewFromInt(DaysWeekly), DaysPerMonth), true
	case FreqBiWeekly:
		return rent.MulDiv(decimal.NewFromInt(DaysBiWeekly), DaysPerMonth), true
	default:
		return Money{}, false
	}
}

// =============================================================================
// LENGTH & VALIDATION
// =============================================================================

func scheduleLength(pt PaymentType, f PaymentFrequency, termMonths int) (int, error) {
	if pt == PaymentCalendar || f == FreqMonthly {
		return termMonths, nil
	}
	step := cycleStepDays(f)
	if step == 0 {
		return 0, &ValidationError{Field: "paymentFrequency", Detail: "unknown frequency " + string(f)}
	}
	return periodsCeil(termMonths, step), nil
}

// periodsCeil converts a term in months to whole periods of stepDays,
// rounding up so a partial final period is included.
func periodsCeil(termMonths, stepDays int) int {
	termDays := DaysPerMonth.Mul(decimal.NewFromInt(int64(termMonths)))
	periods := termDays.DivRound(decimal.NewFromInt(int64(stepDays)), 8)
	f, _ := periods.Float64()
	return int(math.Ceil(f))
}

func validateScheduleConfig(t *Tenancy) error {
	if !t.MonthlyRent.IsPositive() {
		return &ValidationError{Field: "monthlyRent", Detail: "must be positive"}
	}
	if t.InitialTermMonths < 1 {
		return &ValidationError{Field: "initialTermMonths", Detail: "must be at least 1"}
	}
	switch t.PaymentType {
	case PaymentCalendar:
		if t.PaymentDayOfMonth < 1 || t.PaymentDayOfMonth > 31 {
			return &ValidationError{Field: "paymentDayOfMonth", Detail: "must be between 1 and 31"}
		}
	case PaymentCycle:
		switch t.PaymentFrequency {
		case FreqWeekly, FreqBiWeekly, FreqMonthly, FreqFourWeekly:
		default:
			return &ValidationError{Field: "paymentFrequency", Detail: "unknown frequency " + string(t.PaymentFrequency)}
		}
	default:
		return &ValidationError{Field: "paymentType", Detail: "unknown payment type " + string(t.PaymentType)}
	}
	return nil
}
