package service

import (
	"math"

	"hallbook/pkg/model"
)

// Quote computes the price breakdown for a rental. It is pure: identical
// inputs and an identical settings snapshot always produce the same result.
//
// VAT is the single business rounding point (round half up to a whole unit)
// and is computed from the unrounded subtotal. The stored subtotal and total
// are derived as sums of the stored integer fields, so the breakdown always
// satisfies subtotal = base + extra and total = subtotal + vat.
func Quote(persons int, hours float64, room model.Room, s model.Settings) model.PriceBreakdown {
	rawBase := float64(s.BaseRate) * float64(room.Multiplier()) * hours

	extraPersons := persons - s.BaseOccupancy
	if extraPersons < 0 {
		extraPersons = 0
	}
	rawExtra := float64(extraPersons) * float64(s.ExtraPersonRate) * hours

	vat := int64(math.Floor((rawBase+rawExtra)*s.VATPercent/100 + 0.5))

	basePrice := int64(math.Round(rawBase))
	extraFee := int64(math.Round(rawExtra))
	subtotal := basePrice + extraFee

	return model.PriceBreakdown{
		BasePrice: basePrice,
		ExtraFee:  extraFee,
		Subtotal:  subtotal,
		VAT:       vat,
		Total:     subtotal + vat,
	}
}
