/*
constants.go - Hoisted business constants

PURPOSE:
  Every statutory figure and policy number the engine relies on lives here,
  in one place. A future policy change (say, the rent-increase cap moving
  from 5% to 4%) touches this file and nothing else, and tests assert
  against the same names the production code uses.

SEE ALSO:
  - schedule.go: DaysPerMonth, frequency day counts
  - notice.go: cap and deadline constants
*/
package lodger

import "github.com/shopspring/decimal"

// =============================================================================
// PAYMENT SCHEDULING
// =============================================================================

// DaysPerMonth is the average Gregorian month length used to pro-rate
// monthly rent across non-monthly payment cycles.
var DaysPerMonth = decimal.RequireFromString("30.44")

// Fixed step sizes, in days, for cycle-based schedules. Monthly cycles step
// by calendar month (with day clamping) rather than a fixed day count.
const (
	DaysWeekly   = 7
	DaysBiWeekly = 14
	DaysFourWeek = 28
)

// =============================================================================
// NOTICES AND DEADLINES
// =============================================================================

const (
	// BreachRemedyDays is how long a lodger has to remedy a breach before
	// the landlord may escalate.
	BreachRemedyDays = 7

	// EscalationNoticePeriodDays is the notice period of the standard
	// termination spawned by escalating an unremedied breach.
	EscalationNoticePeriodDays = 7

	// ExtensionResponseDays is how long a lodger has to respond to an
	// extension offer before it is auto-accepted.
	ExtensionResponseDays = 14
)

// ValidNoticePeriods are the permitted notice periods, in days, for a
// standard termination. Zero is the immediate-termination path.
var ValidNoticePeriods = []int{0, 3, 7, 14, 28}

// =============================================================================
// RENT CAP AND CAPACITY
// =============================================================================

// AnnualRentCapRate is the maximum annual rent increase on extension.
// The cap is pro-rated by extension length:
//
//	max = current * (1 + AnnualRentCapRate * months / 12)
var AnnualRentCapRate = decimal.RequireFromString("0.05")

// MaxActiveTenancies is the most tenancies a landlord may hold in
// {DRAFT, ACTIVE, EXTENDED} at once. Lodger arrangements are capped at
// two occupants.
const MaxActiveTenancies = 2

// AllocationTolerance is the permitted mismatch between a deduction's
// total and the sum of its pool split.
var AllocationTolerance = MustParseMoney("0.01")
