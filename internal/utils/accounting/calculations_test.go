package accounting

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/opentally/bookkeeping_app/internal/core/domain"
)

func line(debit, credit string) domain.LineItem {
	return domain.LineItem{
		DebitAmount:  decimal.RequireFromString(debit),
		CreditAmount: decimal.RequireFromString(credit),
	}
}

func TestComputeImbalance(t *testing.T) {
	tests := []struct {
		name  string
		lines []domain.LineItem
		want  string
	}{
		{"no lines", nil, "0"},
		{"balanced pair", []domain.LineItem{line("100", "0"), line("0", "100")}, "0"},
		{"debit heavy", []domain.LineItem{line("100", "0"), line("0", "40")}, "60"},
		{"credit heavy", []domain.LineItem{line("10", "0"), line("0", "25")}, "-15"},
		{"fractional cents stay exact", []domain.LineItem{line("0.10", "0"), line("0.20", "0"), line("0", "0.30")}, "0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeImbalance(tc.lines)
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), "got %s want %s", got, tc.want)
		})
	}
}

func TestTotalDebits(t *testing.T) {
	lines := []domain.LineItem{line("100.50", "0"), line("0", "100.50"), line("9.50", "0")}
	assert.True(t, TotalDebits(lines).Equal(decimal.RequireFromString("110")))
}
