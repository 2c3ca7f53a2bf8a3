package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fieldmed/fieldsales-api/internal/domain"
)

func TestTierFor_Boundaries(t *testing.T) {
	tests := []struct {
		name        string
		outstanding float64
		want        domain.DebtTier
	}{
		{"zero", 0, domain.DebtTierClear},
		{"below warning", 999.99, domain.DebtTierClear},
		{"exactly warning threshold", 1000, domain.DebtTierClear},
		{"just above warning threshold", 1000.01, domain.DebtTierWarning},
		{"mid warning", 3000, domain.DebtTierWarning},
		{"exactly blocked threshold", 5000, domain.DebtTierWarning},
		{"just above blocked threshold", 5000.01, domain.DebtTierBlocked},
		{"far above blocked", 25000, domain.DebtTierBlocked},
		{"negative credit balance", -500, domain.DebtTierClear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.TierFor(tt.outstanding))
		})
	}
}

func TestColorFor(t *testing.T) {
	assert.Equal(t, domain.OrderColorGreen, domain.ColorFor(0))
	assert.Equal(t, domain.OrderColorGreen, domain.ColorFor(1000))
	assert.Equal(t, domain.OrderColorRed, domain.ColorFor(1000.01))
	assert.Equal(t, domain.OrderColorRed, domain.ColorFor(9000))
}

func TestInvoice_Outstanding_FallsBackToTotal(t *testing.T) {
	inv := &domain.Invoice{TotalAmount: 750}
	assert.Equal(t, 750.0, inv.Outstanding())

	partial := 250.0
	inv.OutstandingAmount = &partial
	assert.Equal(t, 250.0, inv.Outstanding())

	// an explicit zero is respected, not treated as missing
	zero := 0.0
	inv.OutstandingAmount = &zero
	assert.Equal(t, 0.0, inv.Outstanding())
}

func TestPaymentStatus_IsUnsettled(t *testing.T) {
	assert.True(t, domain.PaymentStatusPending.IsUnsettled())
	assert.True(t, domain.PaymentStatusPartiallyPaid.IsUnsettled())
	assert.True(t, domain.PaymentStatusOverdue.IsUnsettled())
	assert.False(t, domain.PaymentStatusPaid.IsUnsettled())
	assert.False(t, domain.PaymentStatus("cancelled").IsUnsettled())
}
