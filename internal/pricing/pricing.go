// Package pricing previews the final price of an offer before an agent saves it.
// The API recomputes the authoritative price on save; these values are advisory.
package pricing

import (
	"github.com/shopspring/decimal"

	"insurance-portal/internal/models"
)

var hundred = decimal.NewFromInt(100)

// PriceWithCoverage applies the coverage tier uplift: base * (1 + uplift/100)
func PriceWithCoverage(base decimal.Decimal, tier models.CoverageTier) decimal.Decimal {
	uplift := decimal.NewFromInt(int64(tier.UpliftPercent()))
	return base.Mul(decimal.NewFromInt(1).Add(uplift.Div(hundred)))
}

// ComputeFinalPrice applies the discount to the uplifted price and clamps at zero
func ComputeFinalPrice(base decimal.Decimal, tier models.CoverageTier, discountRate decimal.Decimal) decimal.Decimal {
	withCoverage := PriceWithCoverage(base, tier)
	final := withCoverage.Mul(decimal.NewFromInt(1).Sub(discountRate.Div(hundred)))
	if final.IsNegative() {
		return decimal.Zero
	}
	return final
}

// Preview is the quote dialog's price breakdown
type Preview struct {
	BasePrice         decimal.Decimal     `json:"basePrice"`
	CoverageAmount    models.CoverageTier `json:"coverageAmount"`
	CoverageLabel     string              `json:"coverageLabel"`
	DiscountRate      decimal.Decimal     `json:"discountRate"`
	PriceWithCoverage decimal.Decimal     `json:"priceWithCoverage"`
	FinalPrice        decimal.Decimal     `json:"finalPrice"`
}

// NewPreview computes every derived value of the breakdown
func NewPreview(base decimal.Decimal, tier models.CoverageTier, discountRate decimal.Decimal) Preview {
	return Preview{
		BasePrice:         base,
		CoverageAmount:    tier,
		CoverageLabel:     tier.Label(),
		DiscountRate:      discountRate,
		PriceWithCoverage: PriceWithCoverage(base, tier),
		FinalPrice:        ComputeFinalPrice(base, tier, discountRate),
	}
}

// PreviewOffer previews o with a candidate discount rate
func PreviewOffer(o models.Offer, discountRate decimal.Decimal) Preview {
	return NewPreview(o.BasePrice, o.CoverageAmount, discountRate)
}
