package accounting

import (
	"github.com/opentally/bookkeeping_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ComputeImbalance returns sum(debit) - sum(credit) across all lines using
// exact decimal arithmetic. Zero means the entry balances. This is used both
// to surface a running difference to the caller and to gate the SUBMIT
// transition, so the same function must serve both paths.
func ComputeImbalance(lines []domain.LineItem) decimal.Decimal {
	imbalance := decimal.Zero
	for _, line := range lines {
		imbalance = imbalance.Add(line.DebitAmount).Sub(line.CreditAmount)
	}
	return imbalance
}

// TotalDebits returns the sum of all debit amounts. For a balanced entry this
// equals the total credits and represents the economic value of the entry.
func TotalDebits(lines []domain.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.DebitAmount)
	}
	return total
}
