package service

import (
	"eps-procurement/internal/apperr"

	"github.com/shopspring/decimal"
)

var (
	hundred             = decimal.NewFromInt(100)
	percentSumTolerance = decimal.RequireFromString("0.01")
)

// AllocationEntry is one (budget code, percentage) pair. Order matters:
// the last entry in the caller-supplied list absorbs the rounding
// remainder.
type AllocationEntry struct {
	BudgetCode string          `json:"budget_code"`
	Percentage decimal.Decimal `json:"allocation_percentage"`
}

// validateAllocationEntries runs every check before any mutation: list
// non-empty, each percentage in (0, 100], budget codes well-formed, and
// the sum within 0.01 of 100.
func validateAllocationEntries(entries []AllocationEntry) error {
	if len(entries) == 0 {
		return apperr.Validation("allocations", "budget allocations must not be empty")
	}

	sum := decimal.Zero
	for _, entry := range entries {
		if err := validateBudgetCodeFormat(entry.BudgetCode); err != nil {
			return err
		}
		if !entry.Percentage.IsPositive() || entry.Percentage.GreaterThan(hundred) {
			return apperr.Validation("allocation_percentage",
				"allocation percentage must be in (0, 100], got %s%%", entry.Percentage)
		}
		sum = sum.Add(entry.Percentage)
	}

	if sum.Sub(hundred).Abs().GreaterThan(percentSumTolerance) {
		return apperr.BusinessLogic("allocation percentages must sum to 100%%, got %s%%", sum)
	}

	return nil
}

// computeAllocationAmounts turns percentages into exact-cent amounts.
// Every entry but the last is total * percentage / 100 rounded to the
// cent; the last entry is the remainder, so the amounts always sum
// exactly to the total.
func computeAllocationAmounts(total decimal.Decimal, entries []AllocationEntry) []decimal.Decimal {
	amounts := make([]decimal.Decimal, len(entries))
	allocated := decimal.Zero

	for i, entry := range entries {
		if i == len(entries)-1 {
			amounts[i] = total.Sub(allocated)
			break
		}
		amount := total.Mul(entry.Percentage).Div(hundred).Round(2)
		amounts[i] = amount
		allocated = allocated.Add(amount)
	}

	return amounts
}
