package booking

import (
	"math"
	"strings"

	"maidbook/models"
)

const (
	taxRate      = 0.10
	discountRate = 0.10
)

// IsTaxablePlan reports whether the plan name follows the "daily" or
// "hourly" naming convention. Only those plans carry tax.
func IsTaxablePlan(planName string) bool {
	name := strings.ToLower(planName)
	return strings.Contains(name, "daily") || strings.Contains(name, "hourly")
}

// ComputePrice derives the full price breakdown. It is a pure function of its
// inputs; deltas must already be ordered deterministically by the caller.
func ComputePrice(planPrice float64, planName string, deltas []float64, subscribed bool) models.PriceBreakdown {
	addOns := 0.0
	for _, d := range deltas {
		addOns += d
	}
	subtotal := planPrice + addOns

	taxable := IsTaxablePlan(planName)
	tax := 0.0
	if taxable {
		tax = math.Round(subtotal * taxRate)
	}
	total := subtotal + tax

	final := total
	if subscribed {
		final = math.Round(total * (1 - discountRate))
	}

	return models.PriceBreakdown{
		PlanPrice:   planPrice,
		AddOnTotal:  addOns,
		Subtotal:    subtotal,
		Tax:         tax,
		Total:       total,
		Discount:    total - final,
		FinalAmount: final,
		Taxable:     taxable,
		Subscribed:  subscribed,
	}
}

// ToMinorUnits converts a whole-currency amount into gateway minor units.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
