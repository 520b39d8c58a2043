package enums

import "testing"

func TestParseSaleType(t *testing.T) {
	got, err := ParseSaleType("wholesale")
	if err != nil || got != SaleTypeWholesale {
		t.Fatalf("expected wholesale, got %q (%v)", got, err)
	}
	if _, err := ParseSaleType("barter"); err == nil {
		t.Fatal("expected error for unknown sale type")
	}
	if SaleType("Retail").IsValid() {
		t.Fatal("sale types are case sensitive")
	}
}

func TestSaleTypePriceTier(t *testing.T) {
	cases := map[SaleType]PriceTier{
		SaleTypeRetail:    PriceTierRetail,
		SaleTypeWholesale: PriceTierWholesaleBase,
	}
	for saleType, want := range cases {
		got, ok := saleType.PriceTier()
		if !ok || got != want {
			t.Fatalf("%s: expected tier %s, got %s (%v)", saleType, want, got, ok)
		}
	}
	if _, ok := SaleType("barter").PriceTier(); ok {
		t.Fatal("unknown sale type must not map to a tier")
	}
}

func TestParsePriceTier(t *testing.T) {
	if got, err := ParsePriceTier("wholesale_base"); err != nil || got != PriceTierWholesaleBase {
		t.Fatalf("expected wholesale_base, got %q (%v)", got, err)
	}
	if _, err := ParsePriceTier("wholesale"); err == nil {
		t.Fatal("wholesale is a sale type, not a tier")
	}
}

func TestParsePaymentMethodAndRecurrence(t *testing.T) {
	if got, err := ParsePaymentMethod("mobile_money"); err != nil || got != PaymentMethodMobileMoney {
		t.Fatalf("expected mobile_money, got %q (%v)", got, err)
	}
	if _, err := ParsePaymentMethod("ach"); err == nil {
		t.Fatal("expected error for unknown payment method")
	}
	if got, err := ParseRecurrencePattern("monthly"); err != nil || got != RecurrenceMonthly {
		t.Fatalf("expected monthly, got %q (%v)", got, err)
	}
	if PriceSource("guess").IsValid() {
		t.Fatal("unknown price source must be invalid")
	}
}
