package shares

import (
	"fmt"
	"math/big"
)

// BaseDenom is the single monetary denomination recognised by the market.
const BaseDenom = "ufren"

// Ratio is an exact rational number used for the curve coefficient. Keeping
// the numerator and denominator separate avoids any floating-point drift in
// price computations.
type Ratio struct {
	Num uint64 `json:"num"`
	Den uint64 `json:"den"`
}

// Validate checks that the ratio denotes a usable rational.
func (r Ratio) Validate() error {
	if r.Den == 0 {
		return fmt.Errorf("ratio denominator must be non-zero")
	}
	return nil
}

// Params captures the market configuration fixed at daemon start: the payout
// target for protocol fees, the two fee rates in basis points, and the curve
// coefficient.
type Params struct {
	ProtocolFeeDestination [20]byte
	ProtocolFeeBps         uint32
	SubjectFeeBps          uint32
	CurveCoefficient       Ratio
}

// Validate checks the fee rates and coefficient for internal consistency.
func (p Params) Validate() error {
	if p.ProtocolFeeBps > bpsDenominator {
		return fmt.Errorf("protocol fee %d bps exceeds %d", p.ProtocolFeeBps, bpsDenominator)
	}
	if p.SubjectFeeBps > bpsDenominator {
		return fmt.Errorf("subject fee %d bps exceeds %d", p.SubjectFeeBps, bpsDenominator)
	}
	if err := p.CurveCoefficient.Validate(); err != nil {
		return fmt.Errorf("curve coefficient: %w", err)
	}
	return nil
}

// TradeDirection distinguishes buys from sells in trade records and events.
type TradeDirection string

const (
	DirectionBuy  TradeDirection = "buy"
	DirectionSell TradeDirection = "sell"
)

// Trade is the settlement record produced for every executed trade.
type Trade struct {
	Trader      [20]byte
	Subject     [20]byte
	Direction   TradeDirection
	Shares      uint64
	Price       *big.Int
	ProtocolFee *big.Int
	SubjectFee  *big.Int
	// Cost is the buyer's required total payment on a buy and the seller's
	// net proceeds on a sell.
	Cost *big.Int
	// Supply is the subject's total supply after the trade settled.
	Supply uint64
}

// Clone returns a deep copy of the trade record.
func (t *Trade) Clone() *Trade {
	if t == nil {
		return nil
	}
	clone := *t
	if t.Price != nil {
		clone.Price = new(big.Int).Set(t.Price)
	}
	if t.ProtocolFee != nil {
		clone.ProtocolFee = new(big.Int).Set(t.ProtocolFee)
	}
	if t.SubjectFee != nil {
		clone.SubjectFee = new(big.Int).Set(t.SubjectFee)
	}
	if t.Cost != nil {
		clone.Cost = new(big.Int).Set(t.Cost)
	}
	return &clone
}

// Transfer is an outbound value-transfer instruction. The engine only
// produces these descriptors; executing them is the caller's concern.
type Transfer struct {
	To     [20]byte
	Amount *big.Int
	Denom  string
}
