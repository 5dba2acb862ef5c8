package freedom

import (
	"github.com/shopspring/decimal"
)

// Financial freedom is reached when annual expenses can be drawn from savings
// at the safe withdrawal rate.
const (
	safeWithdrawalRate = "0.03"
	maxProjectionYears = 50

	monthsPerYear = 12
)

var (
	swr    = decimal.RequireFromString(safeWithdrawalRate)
	twelve = decimal.NewFromInt(monthsPerYear)

	// 50/30/20 budget split over monthly income.
	needsShare   = decimal.RequireFromString("0.50")
	wantsShare   = decimal.RequireFromString("0.30")
	savingsShare = decimal.RequireFromString("0.20")
)

// Inputs are the raw monthly figures the projection runs on. ReturnRate is an
// annual percentage (7 means 7%).
type Inputs struct {
	InitialSavings  decimal.Decimal
	MonthlySavings  decimal.Decimal
	MonthlyExpenses decimal.Decimal
	MonthlyIncome   decimal.Decimal
	ReturnRate      decimal.Decimal
	Dependents      int
}

// YearPoint is one year of the compounding curve.
type YearPoint struct {
	Year    int
	Balance decimal.Decimal
}

// Recommendation is the 50/30/20 split of monthly income.
type Recommendation struct {
	Needs   decimal.Decimal
	Wants   decimal.Decimal
	Savings decimal.Decimal
}

// Projection is the full calculator output.
type Projection struct {
	TargetAmount   decimal.Decimal
	AnnualSavings  decimal.Decimal
	AnnualExpenses decimal.Decimal
	// YearsToTarget is -1 when the target is out of reach within the horizon.
	YearsToTarget  int
	Reachable      bool
	Curve          []YearPoint
	Recommendation *Recommendation
}

// TargetAmount converts annual expenses into the savings target at the safe
// withdrawal rate.
func TargetAmount(annualExpenses decimal.Decimal) decimal.Decimal {
	return annualExpenses.Div(swr).Round(2)
}

// Project runs the yearly compounding simulation: each year the balance grows
// by the return rate and receives the year's contributions, until it crosses
// the target or the horizon runs out.
func Project(in Inputs) Projection {
	annualSavings := in.MonthlySavings.Mul(twelve)
	annualExpenses := in.MonthlyExpenses.Mul(twelve)
	target := TargetAmount(annualExpenses)
	growth := decimal.NewFromInt(1).Add(in.ReturnRate.Div(decimal.NewFromInt(100)))

	projection := Projection{
		TargetAmount:   target,
		AnnualSavings:  annualSavings,
		AnnualExpenses: annualExpenses,
		YearsToTarget:  -1,
	}
	if in.MonthlyIncome.IsPositive() {
		projection.Recommendation = &Recommendation{
			Needs:   in.MonthlyIncome.Mul(needsShare).Round(2),
			Wants:   in.MonthlyIncome.Mul(wantsShare).Round(2),
			Savings: in.MonthlyIncome.Mul(savingsShare).Round(2),
		}
	}

	balance := in.InitialSavings
	projection.Curve = append(projection.Curve, YearPoint{Year: 0, Balance: balance.Round(2)})
	if balance.GreaterThanOrEqual(target) {
		projection.YearsToTarget = 0
		projection.Reachable = true
		return projection
	}

	for year := 1; year <= maxProjectionYears; year++ {
		balance = balance.Mul(growth).Add(annualSavings)
		projection.Curve = append(projection.Curve, YearPoint{Year: year, Balance: balance.Round(2)})
		if balance.GreaterThanOrEqual(target) {
			projection.YearsToTarget = year
			projection.Reachable = true
			break
		}
	}
	return projection
}
