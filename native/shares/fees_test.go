package shares

import (
	"math/big"
	"testing"
)

func TestSplitFeesFloorsEachFee(t *testing.T) {
	fees := SplitFees(big.NewInt(48_125_000), 500, 500)
	if fees.ProtocolFee.Cmp(big.NewInt(2_406_250)) != 0 {
		t.Fatalf("unexpected protocol fee: %s", fees.ProtocolFee)
	}
	if fees.SubjectFee.Cmp(big.NewInt(2_406_250)) != 0 {
		t.Fatalf("unexpected subject fee: %s", fees.SubjectFee)
	}
	if fees.TotalCost().Cmp(big.NewInt(52_937_500)) != 0 {
		t.Fatalf("unexpected total cost: %s", fees.TotalCost())
	}
	if fees.NetProceeds().Cmp(big.NewInt(43_312_500)) != 0 {
		t.Fatalf("unexpected net proceeds: %s", fees.NetProceeds())
	}
}

func TestSplitFeesRoundsDown(t *testing.T) {
	// 99 * 500 / 10000 = 4.95, floored to 4.
	fees := SplitFees(big.NewInt(99), 500, 250)
	if fees.ProtocolFee.Cmp(big.NewInt(4)) != 0 {
		t.Fatalf("unexpected protocol fee: %s", fees.ProtocolFee)
	}
	// 99 * 250 / 10000 = 2.475, floored to 2.
	if fees.SubjectFee.Cmp(big.NewInt(2)) != 0 {
		t.Fatalf("unexpected subject fee: %s", fees.SubjectFee)
	}
}

func TestSplitFeesZeroRates(t *testing.T) {
	fees := SplitFees(big.NewInt(1_000_000), 0, 0)
	if fees.ProtocolFee.Sign() != 0 || fees.SubjectFee.Sign() != 0 {
		t.Fatalf("expected zero fees, got %s and %s", fees.ProtocolFee, fees.SubjectFee)
	}
	if fees.TotalCost().Cmp(big.NewInt(1_000_000)) != 0 {
		t.Fatalf("total cost should equal price, got %s", fees.TotalCost())
	}
	if fees.NetProceeds().Cmp(big.NewInt(1_000_000)) != 0 {
		t.Fatalf("net proceeds should equal price, got %s", fees.NetProceeds())
	}
}

func TestSplitFeesNilPrice(t *testing.T) {
	fees := SplitFees(nil, 500, 500)
	if fees.Price.Sign() != 0 {
		t.Fatalf("nil price should normalise to zero, got %s", fees.Price)
	}
}
