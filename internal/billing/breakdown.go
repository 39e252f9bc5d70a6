package billing

import (
	"github.com/shopspring/decimal"
)

const (
	// TaxRate is the value-added tax rate included in order totals.
	TaxRate = 0.16
	// TaxRateBasisPoints is TaxRate in basis points.
	TaxRateBasisPoints = 1600

	// ProcessorFixedFee is charged to the payer on every charge.
	ProcessorFixedFee Cents = 300
	// ProcessorPayerBasisPoints is the processor fee added to the charge, in
	// hundredths of a percent.
	ProcessorPayerBasisPoints = 200
	// ProcessorPayeeBasisPoints is the processor fee withheld from the
	// payee, in hundredths of a percent.
	ProcessorPayeeBasisPoints = 160

	basisPoints = 10000
)

// Amounts is a subtotal, tax and total triple.
type Amounts struct {
	Total    Cents `json:"total"`
	Subtotal Cents `json:"subtotal"`
	Taxes    Cents `json:"taxes"`
}

// Discount is the discount applied to the pre-tax subtotal.
type Discount struct {
	Percentage decimal.Decimal `json:"percentage"`
	Amount     Cents           `json:"amount"`
}

// Commission is the payment processor fee split.
type Commission struct {
	Client Cents `json:"client"`
	Own    Cents `json:"own"`
	Total  Cents `json:"total"`
}

// Breakdown holds every figure derived from a total and a discount.
type Breakdown struct {
	Original         Amounts    `json:"original"`
	Discount         Discount   `json:"discount"`
	Final            Amounts    `json:"final"`
	StripeCommission Commission `json:"stripeCommission"`
	Received         Cents      `json:"received"`
	NetReceived      Cents      `json:"netReceived"`
	Profit           Cents      `json:"profit"`
}

// ComputeBreakdown derives the breakdown for a tax-inclusive total and a
// discount percentage. Inputs are expected in [0, ∞) and [0, 100]; they are
// not validated.
func ComputeBreakdown(total, discountPercentage decimal.Decimal) Breakdown {
	totalCents := CentsFromDecimal(total)
	return ComputeBreakdownCents(totalCents, discountPercentage)
}

// ComputeBreakdownCents is ComputeBreakdown for a total already in cents.
func ComputeBreakdownCents(totalCents Cents, discountPercentage decimal.Decimal) Breakdown {
	t := int64(totalCents)

	subtotal := roundDiv(t*basisPoints, basisPoints+TaxRateBasisPoints)
	originalTaxes := t - subtotal

	discount := roundHalfUp(decimal.NewFromInt(subtotal).Mul(discountPercentage).Shift(-2))
	discounted := subtotal - discount

	finalTotal := roundDiv(discounted*(basisPoints+TaxRateBasisPoints), basisPoints)
	finalTaxes := finalTotal - discounted

	clientFee := roundDiv(finalTotal*ProcessorPayerBasisPoints, basisPoints) + int64(ProcessorFixedFee)
	ownFee := roundDiv(finalTotal*ProcessorPayeeBasisPoints, basisPoints)

	received := finalTotal - clientFee
	netReceived := received - ownFee

	return Breakdown{
		Original: Amounts{
			Total:    Cents(t),
			Subtotal: Cents(subtotal),
			Taxes:    Cents(originalTaxes),
		},
		Discount: Discount{
			Percentage: discountPercentage,
			Amount:     Cents(discount),
		},
		Final: Amounts{
			Total:    Cents(finalTotal),
			Subtotal: Cents(discounted),
			Taxes:    Cents(finalTaxes),
		},
		StripeCommission: Commission{
			Client: Cents(clientFee),
			Own:    Cents(ownFee),
			Total:  Cents(clientFee + ownFee),
		},
		Received:    Cents(received),
		NetReceived: Cents(netReceived),
		Profit:      Cents(netReceived - finalTaxes),
	}
}

// SumItems adds item costs given in currency units.
func SumItems(costs []decimal.Decimal) decimal.Decimal {
	return decimal.Sum(decimal.Zero, costs...)
}
