package shares

import (
	"math/big"

	"github.com/holiman/uint256"
)

// curveUnit scales the dimensionless square summation into base monetary
// units. One summation step costs one millionth of the coefficient.
const curveUnit = 1_000_000

var six = uint256.NewInt(6)

// sumSquares returns sum k^2 for k = 0..x in closed form: x(x+1)(2x+1)/6.
// The inputs passed by Price never exceed 2^65, so the intermediate product
// stays below 2^198 and cannot overflow 256-bit arithmetic. The division by
// six is exact because x(x+1)(2x+1) is always divisible by 6.
func sumSquares(x *uint256.Int) *uint256.Int {
	next := new(uint256.Int).AddUint64(x, 1)
	odd := new(uint256.Int).Lsh(x, 1)
	odd.AddUint64(odd, 1)
	product := new(uint256.Int).Mul(x, next)
	product.Mul(product, odd)
	return product.Div(product, six)
}

// Price returns the cost, in base monetary units, of moving a subject's
// supply from supply to supply+amount on the discrete cubic growth curve.
// The cost is the sum of squared share indices over the minted range, scaled
// by curveUnit and the exact rational coefficient.
//
// The first share (supply 0, amount 1) is free. Calling with amount 0 is out
// of the function's domain and returns ErrInvalidAmount.
func Price(supply, amount uint64, coeff Ratio) (*big.Int, error) {
	if amount == 0 {
		return nil, ErrInvalidAmount
	}
	if err := coeff.Validate(); err != nil {
		return nil, err
	}

	lower := new(uint256.Int)
	if supply > 0 {
		lower = sumSquares(uint256.NewInt(supply - 1))
	}

	upper := new(uint256.Int)
	if supply != 0 || amount != 1 {
		// Highest share index being minted, computed in 256 bits so that
		// supply+amount near the uint64 ceiling cannot wrap.
		top := new(uint256.Int).AddUint64(uint256.NewInt(supply), amount)
		top.SubUint64(top, 1)
		upper = sumSquares(top)
	}

	// upper >= lower always holds here: sumSquares is non-decreasing and the
	// upper index supply+amount-1 is at least the lower index supply-1 for
	// every amount >= 1. In the free first-share case both terms are zero.
	summation, borrow := new(uint256.Int).SubOverflow(upper, lower)
	if borrow {
		return nil, ErrPriceOverflow
	}

	price, overflow := summation.MulOverflow(summation, uint256.NewInt(curveUnit))
	if overflow {
		return nil, ErrPriceOverflow
	}
	price, overflow = price.MulOverflow(price, uint256.NewInt(coeff.Num))
	if overflow {
		return nil, ErrPriceOverflow
	}
	price.Div(price, uint256.NewInt(coeff.Den))
	return price.ToBig(), nil
}
