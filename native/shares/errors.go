package shares

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	errNilState = errors.New("shares engine: state not configured")

	// ErrInvalidAmount rejects zero or otherwise out-of-domain trade sizes.
	ErrInvalidAmount = errors.New("shares: amount must be positive")
	// ErrNotSubject rejects the first buy of a subject's shares by anyone
	// other than the subject itself.
	ErrNotSubject = errors.New("shares: only the subject may buy the first share")
	// ErrInsufficientPayment rejects buys whose attached payment does not
	// cover the price plus fees.
	ErrInsufficientPayment = errors.New("shares: insufficient payment")
	// ErrLastShare rejects sells that would remove the subject's final share.
	ErrLastShare = errors.New("shares: cannot sell the last share")
	// ErrNotEnoughShares rejects sells exceeding the seller's balance.
	ErrNotEnoughShares = errors.New("shares: not enough shares")
	// ErrLedgerUnderflow signals a decrement that would push a supply or
	// balance entry negative. The settlement checks keep this unreachable
	// for trades arriving through the engine.
	ErrLedgerUnderflow = errors.New("shares: ledger underflow")
	// ErrPriceOverflow signals that a price computation exceeded the
	// supported numeric range.
	ErrPriceOverflow = errors.New("shares: price computation overflow")
)

// InsufficientPaymentError carries the expected and actually supplied payment
// amounts so callers can report the exact shortfall.
type InsufficientPaymentError struct {
	Expected *big.Int
	Actual   *big.Int
}

func (e *InsufficientPaymentError) Error() string {
	return fmt.Sprintf("%v: expected %s%s, got %s%s",
		ErrInsufficientPayment, e.Expected, BaseDenom, e.Actual, BaseDenom)
}

// Unwrap lets errors.Is match the sentinel.
func (e *InsufficientPaymentError) Unwrap() error { return ErrInsufficientPayment }
