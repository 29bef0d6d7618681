package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/dferrantino/quotehub-backend/pkg/enums"
)

func money(amount string, currency enums.Currency) Money {
	return Money{Amount: decimal.RequireFromString(amount), Currency: currency}
}

func requireAmount(t *testing.T, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("expected amount %s, got %s", want, got)
	}
}

func requireSavings(t *testing.T, got *decimal.Decimal, want string) {
	t.Helper()
	if got == nil {
		t.Fatalf("expected savings %s, got nil", want)
	}
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("expected savings %s, got %s", want, got)
	}
}

func TestResolveWithoutOverride(t *testing.T) {
	got := Resolve(money("42.50", enums.CurrencyUSD), nil)
	requireAmount(t, got.Amount, "42.50")
	if got.Currency != enums.CurrencyUSD {
		t.Fatalf("expected USD, got %s", got.Currency)
	}
	if got.IsSpecial {
		t.Fatal("no override must not be special")
	}
	if got.SavingsPercent != nil {
		t.Fatalf("expected nil savings, got %s", got.SavingsPercent)
	}
}

func TestResolveDiscount(t *testing.T) {
	got := Resolve(money("200", enums.CurrencyUSD), Discount{Percent: decimal.NewFromInt(25)})
	requireAmount(t, got.Amount, "150.00")
	if got.Currency != enums.CurrencyUSD {
		t.Fatalf("discount must ride the default currency, got %s", got.Currency)
	}
	if !got.IsSpecial {
		t.Fatal("discount must be special")
	}
	requireSavings(t, got.SavingsPercent, "25")
}

func TestResolveDiscountRoundsHalfUp(t *testing.T) {
	// 10.01 * (1 - 50%) = 5.005, which rounds up to 5.01.
	got := Resolve(money("10.01", enums.CurrencyUSD), Discount{Percent: decimal.NewFromInt(50)})
	requireAmount(t, got.Amount, "5.01")

	got = Resolve(money("100", enums.CurrencyUSD), Discount{Percent: decimal.RequireFromString("12.35")})
	requireSavings(t, got.SavingsPercent, "12.4")
}

func TestResolveFixedSameCurrency(t *testing.T) {
	got := Resolve(money("100", enums.CurrencyUSD), FixedPrice{
		Amount:   decimal.NewFromInt(80),
		Currency: enums.CurrencyUSD,
	})
	requireAmount(t, got.Amount, "80.00")
	if !got.IsSpecial {
		t.Fatal("fixed override must be special")
	}
	requireSavings(t, got.SavingsPercent, "20")
}

func TestResolveFixedCrossCurrencyNeverComputesSavings(t *testing.T) {
	got := Resolve(money("100", enums.CurrencyUSD), FixedPrice{
		Amount:   decimal.NewFromInt(80),
		Currency: enums.CurrencyEUR,
	})
	requireAmount(t, got.Amount, "80.00")
	if got.Currency != enums.CurrencyEUR {
		t.Fatalf("override currency must win, got %s", got.Currency)
	}
	if got.SavingsPercent != nil {
		t.Fatalf("cross-currency savings must be nil, got %s", got.SavingsPercent)
	}
}

func TestResolveZeroDefault(t *testing.T) {
	got := Resolve(money("0", enums.CurrencyUSD), Discount{Percent: decimal.NewFromInt(50)})
	requireAmount(t, got.Amount, "0.00")
	if got.SavingsPercent != nil {
		t.Fatalf("zero default must not report savings, got %s", got.SavingsPercent)
	}

	got = Resolve(money("0", enums.CurrencyUSD), FixedPrice{
		Amount:   decimal.NewFromInt(5),
		Currency: enums.CurrencyUSD,
	})
	if got.SavingsPercent != nil {
		t.Fatalf("zero default must not report fixed savings, got %s", got.SavingsPercent)
	}
}

func TestResolveFixedAboveDefaultHidesSavings(t *testing.T) {
	got := Resolve(money("100", enums.CurrencyUSD), FixedPrice{
		Amount:   decimal.NewFromInt(120),
		Currency: enums.CurrencyUSD,
	})
	requireAmount(t, got.Amount, "120.00")
	if got.SavingsPercent != nil {
		t.Fatalf("negative savings must not be reported, got %s", got.SavingsPercent)
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	defaults := []Money{
		money("0", enums.CurrencyUSD),
		money("19.99", enums.CurrencyUSD),
		money("1234.56", enums.CurrencyEUR),
	}
	overrides := []Override{
		nil,
		FixedPrice{Amount: decimal.RequireFromString("17.77"), Currency: enums.CurrencyUSD},
		FixedPrice{Amount: decimal.RequireFromString("9.10"), Currency: enums.CurrencyGBP},
		Discount{Percent: decimal.RequireFromString("33.3")},
		Discount{Percent: decimal.NewFromInt(100)},
	}

	for _, def := range defaults {
		for _, override := range overrides {
			first := Resolve(def, override)
			second := Resolve(def, override)
			if !first.Amount.Equal(second.Amount) || first.Currency != second.Currency || first.IsSpecial != second.IsSpecial {
				t.Fatalf("resolution not deterministic for %v %v", def, override)
			}
			if (first.SavingsPercent == nil) != (second.SavingsPercent == nil) {
				t.Fatalf("savings presence not deterministic for %v %v", def, override)
			}
			if first.SavingsPercent != nil {
				if !first.SavingsPercent.Equal(*second.SavingsPercent) {
					t.Fatalf("savings not deterministic for %v %v", def, override)
				}
				if first.SavingsPercent.IsNegative() || first.SavingsPercent.GreaterThan(decimal.NewFromInt(100)) {
					t.Fatalf("savings %s outside [0,100]", first.SavingsPercent)
				}
			}
		}
	}
}

func TestResolveFullDiscountIsFree(t *testing.T) {
	got := Resolve(money("55.55", enums.CurrencyUSD), Discount{Percent: decimal.NewFromInt(100)})
	requireAmount(t, got.Amount, "0.00")
	requireSavings(t, got.SavingsPercent, "100")
}
