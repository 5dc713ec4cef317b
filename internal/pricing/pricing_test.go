package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"insurance-portal/internal/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeFinalPrice(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		tier     models.CoverageTier
		discount string
		expected string
	}{
		{name: "medium tier with ten percent discount", base: "1000", tier: models.CoverageMedium, discount: "10", expected: "1125"},
		{name: "discount over one hundred percent clamps to zero", base: "500", tier: models.CoverageBasic, discount: "150", expected: "0"},
		{name: "no discount basic tier", base: "800", tier: models.CoverageBasic, discount: "0", expected: "800"},
		{name: "premium tier", base: "1000", tier: models.CoveragePremium, discount: "0", expected: "1400"},
		{name: "exactly one hundred percent", base: "1200", tier: models.CoverageMedium, discount: "100", expected: "0"},
		{name: "fractional discount", base: "200", tier: models.CoverageBasic, discount: "12.5", expected: "175"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeFinalPrice(d(tt.base), tt.tier, d(tt.discount))
			assert.True(t, d(tt.expected).Equal(got), "expected %s, got %s", tt.expected, got)
		})
	}
}

func TestPriceWithCoverage(t *testing.T) {
	assert.True(t, d("1250").Equal(PriceWithCoverage(d("1000"), models.CoverageMedium)))
	assert.True(t, d("1000").Equal(PriceWithCoverage(d("1000"), models.CoverageBasic)))
}

func TestNewPreview(t *testing.T) {
	p := NewPreview(d("1000"), models.CoverageMedium, d("10"))

	assert.Equal(t, "Medium", p.CoverageLabel)
	assert.True(t, d("1250").Equal(p.PriceWithCoverage))
	assert.True(t, d("1125").Equal(p.FinalPrice))
}

func TestFinalPriceNeverNegative(t *testing.T) {
	for _, discount := range []string{"0", "50", "99.99", "100", "100.01", "250", "-10"} {
		got := ComputeFinalPrice(d("999.99"), models.CoveragePremium, d(discount))
		assert.False(t, got.IsNegative(), "discount %s produced %s", discount, got)
	}
}
