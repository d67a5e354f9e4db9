package pricing

import (
	"testing"

	"storefront-backend/internal/domain"
)

func snapshot(items ...domain.SnapshotItem) domain.CartSnapshot {
	return domain.CartSnapshot{UserID: "u1", Items: items}
}

func TestPriceTaxAndFlatShipping(t *testing.T) {
	snap := snapshot(domain.SnapshotItem{ProductID: "a", Quantity: 2, UnitPriceCents: 10000})
	got := Price(snap, Policy{TaxRateBps: 1000, ShippingFlatCents: 2000})

	if got.ItemsCents != 20000 {
		t.Fatalf("items: expected 20000, got %d", got.ItemsCents)
	}
	if got.TaxCents != 2000 {
		t.Fatalf("tax: expected 2000, got %d", got.TaxCents)
	}
	if got.ShippingCents != 2000 {
		t.Fatalf("shipping: expected 2000, got %d", got.ShippingCents)
	}
	if got.TotalCents != 24000 {
		t.Fatalf("total: expected 24000, got %d", got.TotalCents)
	}
}

func TestPriceTotalIsExactSum(t *testing.T) {
	snap := snapshot(
		domain.SnapshotItem{ProductID: "a", Quantity: 3, UnitPriceCents: 333},
		domain.SnapshotItem{ProductID: "b", Quantity: 1, UnitPriceCents: 19999},
	)
	got := Price(snap, Policy{TaxRateBps: 825, ShippingFlatCents: 499})
	if got.TotalCents != got.ItemsCents+got.TaxCents+got.ShippingCents {
		t.Fatalf("total %d != %d + %d + %d", got.TotalCents, got.ItemsCents, got.TaxCents, got.ShippingCents)
	}
}

func TestPriceTaxRoundsHalfUp(t *testing.T) {
	// 15 cents at 10% is 1.5 cents, rounds to 2.
	snap := snapshot(domain.SnapshotItem{ProductID: "a", Quantity: 1, UnitPriceCents: 15})
	got := Price(snap, Policy{TaxRateBps: 1000})
	if got.TaxCents != 2 {
		t.Fatalf("tax: expected 2, got %d", got.TaxCents)
	}
}

func TestPriceFreeShippingThreshold(t *testing.T) {
	policy := Policy{TaxRateBps: 0, ShippingFlatCents: 500, FreeShippingOverCents: 10000}

	below := Price(snapshot(domain.SnapshotItem{ProductID: "a", Quantity: 1, UnitPriceCents: 9999}), policy)
	if below.ShippingCents != 500 {
		t.Fatalf("below threshold: expected shipping 500, got %d", below.ShippingCents)
	}

	at := Price(snapshot(domain.SnapshotItem{ProductID: "a", Quantity: 1, UnitPriceCents: 10000}), policy)
	if at.ShippingCents != 0 {
		t.Fatalf("at threshold: expected shipping 0, got %d", at.ShippingCents)
	}
}

func TestPriceEmptySnapshotIsZero(t *testing.T) {
	got := Price(snapshot(), Policy{TaxRateBps: 1000, ShippingFlatCents: 2000})
	if got.ItemsCents != 0 || got.TaxCents != 0 || got.ShippingCents != 0 || got.TotalCents != 0 {
		t.Fatalf("expected all-zero amounts, got %+v", got)
	}
}

func TestPriceIsDeterministic(t *testing.T) {
	snap := snapshot(domain.SnapshotItem{ProductID: "a", Quantity: 7, UnitPriceCents: 1299})
	policy := Policy{TaxRateBps: 700, ShippingFlatCents: 999}
	first := Price(snap, policy)
	for i := 0; i < 10; i++ {
		if got := Price(snap, policy); got != first {
			t.Fatalf("call %d: expected %+v, got %+v", i, first, got)
		}
	}
}
