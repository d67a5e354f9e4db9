package pricing

import "storefront-backend/internal/domain"

// Policy is the injectable tax/shipping configuration. All amounts are in the
// currency's minor unit.
type Policy struct {
	// TaxRateBps is the tax rate in basis points of itemsPrice (1000 = 10%).
	TaxRateBps int64
	// ShippingFlatCents is charged unless the free-shipping threshold applies.
	ShippingFlatCents int64
	// FreeShippingOverCents waives shipping when itemsPrice reaches it.
	// Zero disables free shipping.
	FreeShippingOverCents int64
}

type Amounts struct {
	ItemsCents    int64 `json:"itemsCents"`
	TaxCents      int64 `json:"taxCents"`
	ShippingCents int64 `json:"shippingCents"`
	TotalCents    int64 `json:"totalCents"`
}

// Price computes order amounts from a snapshot. Pure: no I/O, deterministic,
// safe to call for previews without reserving stock.
func Price(snapshot domain.CartSnapshot, policy Policy) Amounts {
	var items int64
	for _, it := range snapshot.Items {
		items += it.UnitPriceCents * int64(it.Quantity)
	}

	// Half-up rounding on the aggregate, not per line.
	tax := (items*policy.TaxRateBps + 5000) / 10000

	shipping := policy.ShippingFlatCents
	if items == 0 {
		shipping = 0
	} else if policy.FreeShippingOverCents > 0 && items >= policy.FreeShippingOverCents {
		shipping = 0
	}

	return Amounts{
		ItemsCents:    items,
		TaxCents:      tax,
		ShippingCents: shipping,
		TotalCents:    items + tax + shipping,
	}
}
