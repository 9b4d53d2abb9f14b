package shares

import "math/big"

// bpsDenominator converts basis-point rates into fractions.
const bpsDenominator = 10_000

// FeeBreakdown summarises the fee split applied to a gross curve price.
type FeeBreakdown struct {
	Price       *big.Int
	ProtocolFee *big.Int
	SubjectFee  *big.Int
}

// SplitFees applies the two basis-point rates to the gross price, rounding
// each fee down to the integer monetary unit.
func SplitFees(price *big.Int, protocolBps, subjectBps uint32) FeeBreakdown {
	gross := new(big.Int)
	if price != nil {
		gross.Set(price)
	}
	return FeeBreakdown{
		Price:       gross,
		ProtocolFee: feeOf(gross, protocolBps),
		SubjectFee:  feeOf(gross, subjectBps),
	}
}

func feeOf(gross *big.Int, bps uint32) *big.Int {
	fee := new(big.Int).Mul(gross, big.NewInt(int64(bps)))
	return fee.Div(fee, big.NewInt(bpsDenominator))
}

// TotalCost is the buyer's required payment: price plus both fees.
func (f FeeBreakdown) TotalCost() *big.Int {
	total := new(big.Int).Add(f.Price, f.ProtocolFee)
	return total.Add(total, f.SubjectFee)
}

// NetProceeds is the seller's payout: price minus both fees.
func (f FeeBreakdown) NetProceeds() *big.Int {
	net := new(big.Int).Sub(f.Price, f.ProtocolFee)
	return net.Sub(net, f.SubjectFee)
}
