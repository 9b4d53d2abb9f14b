package shares

import (
	"errors"
	"math/big"
	"testing"

	"pgregory.net/rapid"
)

func coefficient() Ratio {
	return Ratio{Num: 1, Den: 8}
}

func mustPrice(t *testing.T, supply, amount uint64, coeff Ratio) *big.Int {
	t.Helper()
	price, err := Price(supply, amount, coeff)
	if err != nil {
		t.Fatalf("price(%d, %d) failed: %v", supply, amount, err)
	}
	return price
}

func TestPriceRejectsZeroAmount(t *testing.T) {
	if _, err := Price(0, 0, coefficient()); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := Price(5, 0, coefficient()); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestPriceRejectsZeroDenominator(t *testing.T) {
	if _, err := Price(1, 1, Ratio{Num: 1, Den: 0}); err == nil {
		t.Fatal("expected error for zero denominator")
	}
}

func TestFirstShareIsFree(t *testing.T) {
	price := mustPrice(t, 0, 1, coefficient())
	if price.Sign() != 0 {
		t.Fatalf("first share should be free, got %s", price)
	}
}

func TestPriceForSecondShare(t *testing.T) {
	price := mustPrice(t, 1, 1, coefficient())
	if price.Cmp(big.NewInt(125_000)) != 0 {
		t.Fatalf("expected 125000, got %s", price)
	}
}

func TestPriceForRangeOfShares(t *testing.T) {
	price := mustPrice(t, 2, 3, coefficient())
	if price.Cmp(big.NewInt(3_625_000)) != 0 {
		t.Fatalf("expected 3625000, got %s", price)
	}
}

func TestPriceForTenSharesAtSupplyOne(t *testing.T) {
	price := mustPrice(t, 1, 10, coefficient())
	if price.Cmp(big.NewInt(48_125_000)) != 0 {
		t.Fatalf("expected 48125000, got %s", price)
	}
}

func TestPriceBuyingTwoFromEmptyChargesSecondShare(t *testing.T) {
	// The free-share rule applies only to the exact (0, 1) trade; a two
	// share buy from an empty supply pays for the second share.
	price := mustPrice(t, 0, 2, coefficient())
	if price.Cmp(big.NewInt(125_000)) != 0 {
		t.Fatalf("expected 125000, got %s", price)
	}
}

func TestFirstShareIsFreeForAllCoefficients(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		coeff := Ratio{
			Num: rapid.Uint64Range(1, 1_000_000).Draw(t, "num"),
			Den: rapid.Uint64Range(1, 1_000_000).Draw(t, "den"),
		}
		price, err := Price(0, 1, coeff)
		if err != nil {
			t.Fatalf("price failed: %v", err)
		}
		if price.Sign() != 0 {
			t.Fatalf("first share priced at %s for coefficient %d/%d", price, coeff.Num, coeff.Den)
		}
	})
}

func TestPriceStrictlyIncreasingInAmount(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		supply := rapid.Uint64Range(0, 1_000_000).Draw(t, "supply")
		amount := rapid.Uint64Range(1, 10_000).Draw(t, "amount")
		// Denominators are capped at curveUnit so that every marginal share
		// costs at least one base unit and strictness is observable.
		coeff := Ratio{
			Num: rapid.Uint64Range(1, 1_000).Draw(t, "num"),
			Den: rapid.Uint64Range(1, curveUnit).Draw(t, "den"),
		}
		smaller, err := Price(supply, amount, coeff)
		if err != nil {
			t.Fatalf("price failed: %v", err)
		}
		larger, err := Price(supply, amount+1, coeff)
		if err != nil {
			t.Fatalf("price failed: %v", err)
		}
		if larger.Cmp(smaller) <= 0 {
			t.Fatalf("price(%d, %d) = %s not above price(%d, %d) = %s",
				supply, amount+1, larger, supply, amount, smaller)
		}
	})
}

func TestPriceNonDecreasingInSupply(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		supply := rapid.Uint64Range(0, 1_000_000).Draw(t, "supply")
		amount := rapid.Uint64Range(1, 10_000).Draw(t, "amount")
		coeff := Ratio{
			Num: rapid.Uint64Range(1, 1_000).Draw(t, "num"),
			Den: rapid.Uint64Range(1, 1_000_000).Draw(t, "den"),
		}
		lower, err := Price(supply, amount, coeff)
		if err != nil {
			t.Fatalf("price failed: %v", err)
		}
		higher, err := Price(supply+1, amount, coeff)
		if err != nil {
			t.Fatalf("price failed: %v", err)
		}
		if higher.Cmp(lower) < 0 {
			t.Fatalf("price(%d, %d) = %s below price(%d, %d) = %s",
				supply+1, amount, higher, supply, amount, lower)
		}
	})
}

func TestPriceHandlesLargeSupplies(t *testing.T) {
	// The summation for a supply near the uint64 ceiling stays within the
	// 256-bit range; only the coefficient scaling can push it over.
	price, err := Price(1<<40, 1<<20, coefficient())
	if err != nil {
		t.Fatalf("price failed: %v", err)
	}
	if price.Sign() <= 0 {
		t.Fatalf("expected a positive price, got %s", price)
	}
}
