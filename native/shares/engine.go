package shares

import (
	"fmt"
	"math/big"

	"frenparty/core/events"
	"frenparty/crypto"
)

type engineState interface {
	SharesSupply(subject [20]byte) (uint64, error)
	SharesBalance(subject [20]byte, holder [20]byte) (uint64, error)
	SharesIncrement(subject [20]byte, holder [20]byte, amount uint64) error
	SharesDecrement(subject [20]byte, holder [20]byte, amount uint64) error
}

// Engine settles share trades against the ledger: it prices the trade on the
// curve, validates the business preconditions, mutates supply and balances,
// and produces the value-transfer instructions plus a trade record.
type Engine struct {
	state   engineState
	emitter events.Emitter
	params  Params
}

// NewEngine constructs a settlement engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{emitter: events.NoopEmitter{}}
}

// SetState configures the ledger backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetParams installs the market parameters. The engine serves whatever
// params it last accepted; callers install them once at startup.
func (e *Engine) SetParams(params Params) error {
	if err := params.Validate(); err != nil {
		return fmt.Errorf("shares engine: %w", err)
	}
	e.params = params
	return nil
}

// Params returns the currently installed market parameters.
func (e *Engine) Params() Params { return e.params }

func (e *Engine) emit(evt events.Event) {
	if e == nil || evt == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(evt)
}

func bech32Addr(addr [20]byte) string {
	return crypto.MustNewAddress(crypto.FrenPrefix, addr[:]).String()
}

// Buy settles a share purchase. The payment is the amount of BaseDenom that
// accompanied the request; any surplus beyond the required cost is not
// refunded here, it is reported through the trade record's Cost so the
// transport layer can settle the difference.
func (e *Engine) Buy(subject [20]byte, buyer [20]byte, amount uint64, payment *big.Int) (*Trade, []Transfer, error) {
	if e == nil || e.state == nil {
		return nil, nil, errNilState
	}
	if amount == 0 {
		return nil, nil, ErrInvalidAmount
	}
	supply, err := e.state.SharesSupply(subject)
	if err != nil {
		return nil, nil, err
	}
	if supply == 0 && subject != buyer {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotSubject, bech32Addr(subject))
	}
	price, err := Price(supply, amount, e.params.CurveCoefficient)
	if err != nil {
		return nil, nil, err
	}
	fees := SplitFees(price, e.params.ProtocolFeeBps, e.params.SubjectFeeBps)
	required := fees.TotalCost()
	paid := new(big.Int)
	if payment != nil {
		paid.Set(payment)
	}
	if paid.Cmp(required) < 0 {
		return nil, nil, &InsufficientPaymentError{Expected: required, Actual: paid}
	}
	if err := e.state.SharesIncrement(subject, buyer, amount); err != nil {
		return nil, nil, err
	}

	// A zero protocol fee suppresses both fee transfers on buys. Sells do
	// not share this behavior; see Sell.
	var transfers []Transfer
	if fees.ProtocolFee.Sign() != 0 {
		transfers = []Transfer{
			{To: e.params.ProtocolFeeDestination, Amount: fees.ProtocolFee, Denom: BaseDenom},
			{To: subject, Amount: fees.SubjectFee, Denom: BaseDenom},
		}
	}

	trade := &Trade{
		Trader:      buyer,
		Subject:     subject,
		Direction:   DirectionBuy,
		Shares:      amount,
		Price:       fees.Price,
		ProtocolFee: fees.ProtocolFee,
		SubjectFee:  fees.SubjectFee,
		Cost:        required,
		Supply:      supply + amount,
	}
	e.emit(TradeSettled{Trade: trade.Clone()})
	return trade, transfers, nil
}

// Sell settles a share sale. The price is computed with the post-removal
// supply as the curve's starting point, pricing the marginal block being
// sold. Three transfers are always produced, even when a fee is zero.
func (e *Engine) Sell(subject [20]byte, seller [20]byte, amount uint64) (*Trade, []Transfer, error) {
	if e == nil || e.state == nil {
		return nil, nil, errNilState
	}
	if amount == 0 {
		return nil, nil, ErrInvalidAmount
	}
	supply, err := e.state.SharesSupply(subject)
	if err != nil {
		return nil, nil, err
	}
	if supply <= amount {
		return nil, nil, fmt.Errorf("%w: supply %d, amount %d", ErrLastShare, supply, amount)
	}
	balance, err := e.state.SharesBalance(subject, seller)
	if err != nil {
		return nil, nil, err
	}
	if balance < amount {
		return nil, nil, fmt.Errorf("%w: balance %d, amount %d", ErrNotEnoughShares, balance, amount)
	}
	price, err := Price(supply-amount, amount, e.params.CurveCoefficient)
	if err != nil {
		return nil, nil, err
	}
	fees := SplitFees(price, e.params.ProtocolFeeBps, e.params.SubjectFeeBps)
	net := fees.NetProceeds()
	if err := e.state.SharesDecrement(subject, seller, amount); err != nil {
		return nil, nil, err
	}

	transfers := []Transfer{
		{To: seller, Amount: net, Denom: BaseDenom},
		{To: e.params.ProtocolFeeDestination, Amount: fees.ProtocolFee, Denom: BaseDenom},
		{To: subject, Amount: fees.SubjectFee, Denom: BaseDenom},
	}

	trade := &Trade{
		Trader:      seller,
		Subject:     subject,
		Direction:   DirectionSell,
		Shares:      amount,
		Price:       fees.Price,
		ProtocolFee: fees.ProtocolFee,
		SubjectFee:  fees.SubjectFee,
		Cost:        net,
		Supply:      supply - amount,
	}
	e.emit(TradeSettled{Trade: trade.Clone()})
	return trade, transfers, nil
}

// SharesSupply returns the subject's outstanding share supply.
func (e *Engine) SharesSupply(subject [20]byte) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, errNilState
	}
	return e.state.SharesSupply(subject)
}

// SharesBalance returns the holder's balance of the subject's shares.
func (e *Engine) SharesBalance(subject [20]byte, holder [20]byte) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, errNilState
	}
	return e.state.SharesBalance(subject, holder)
}

// BuyPrice quotes the raw curve price for buying amount shares.
func (e *Engine) BuyPrice(subject [20]byte, amount uint64) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	supply, err := e.state.SharesSupply(subject)
	if err != nil {
		return nil, err
	}
	return Price(supply, amount, e.params.CurveCoefficient)
}

// SellPrice quotes the raw curve price for selling amount shares. The quote
// uses supply-amount as the curve's starting point, matching settlement.
func (e *Engine) SellPrice(subject [20]byte, amount uint64) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	supply, err := e.state.SharesSupply(subject)
	if err != nil {
		return nil, err
	}
	if amount > supply {
		return nil, fmt.Errorf("%w: sell amount %d exceeds supply %d", ErrInvalidAmount, amount, supply)
	}
	return Price(supply-amount, amount, e.params.CurveCoefficient)
}

// BuyPriceAfterFee quotes the buyer's total cost including both fees.
func (e *Engine) BuyPriceAfterFee(subject [20]byte, amount uint64) (*big.Int, error) {
	price, err := e.BuyPrice(subject, amount)
	if err != nil {
		return nil, err
	}
	return SplitFees(price, e.params.ProtocolFeeBps, e.params.SubjectFeeBps).TotalCost(), nil
}

// SellPriceAfterFee quotes the seller's net proceeds after both fees.
func (e *Engine) SellPriceAfterFee(subject [20]byte, amount uint64) (*big.Int, error) {
	price, err := e.SellPrice(subject, amount)
	if err != nil {
		return nil, err
	}
	return SplitFees(price, e.params.ProtocolFeeBps, e.params.SubjectFeeBps).NetProceeds(), nil
}
