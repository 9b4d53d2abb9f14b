package state

import (
	"errors"
	"fmt"
	"math"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"frenparty/native/shares"
	"frenparty/storage"
)

var (
	sharesSupplyPrefix  = []byte("shares/supply:")
	sharesBalancePrefix = []byte("shares/balance:")
	marketParamsKey     = ethcrypto.Keccak256([]byte("shares/params"))
)

// Manager persists the shares ledger and market parameters in a key-value
// store. Keys are hashed with Keccak256 and values are RLP encoded.
type Manager struct {
	db storage.Database
}

// NewManager creates a state manager operating on the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

func supplyKey(subject [20]byte) []byte {
	buf := make([]byte, len(sharesSupplyPrefix)+len(subject))
	copy(buf, sharesSupplyPrefix)
	copy(buf[len(sharesSupplyPrefix):], subject[:])
	return ethcrypto.Keccak256(buf)
}

func balanceKey(subject [20]byte, holder [20]byte) []byte {
	buf := make([]byte, len(sharesBalancePrefix)+len(subject)+1+len(holder))
	copy(buf, sharesBalancePrefix)
	copy(buf[len(sharesBalancePrefix):], subject[:])
	buf[len(sharesBalancePrefix)+len(subject)] = ':'
	copy(buf[len(sharesBalancePrefix)+len(subject)+1:], holder[:])
	return ethcrypto.Keccak256(buf)
}

func (m *Manager) loadUint(key []byte) (uint64, error) {
	data, err := m.db.Get(key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var value uint64
	if err := rlp.DecodeBytes(data, &value); err != nil {
		return 0, err
	}
	return value, nil
}

// writeLedger commits the holder's balance and the subject's supply in a
// single batched write so a failure persists neither entry.
func (m *Manager) writeLedger(subject [20]byte, holder [20]byte, balance, supply uint64) error {
	balanceVal, err := rlp.EncodeToBytes(balance)
	if err != nil {
		return err
	}
	supplyVal, err := rlp.EncodeToBytes(supply)
	if err != nil {
		return err
	}
	return m.db.WriteBatch([]storage.Entry{
		{Key: balanceKey(subject, holder), Value: balanceVal},
		{Key: supplyKey(subject), Value: supplyVal},
	})
}

// SharesSupply returns the subject's total outstanding shares, zero when the
// subject has never been traded.
func (m *Manager) SharesSupply(subject [20]byte) (uint64, error) {
	return m.loadUint(supplyKey(subject))
}

// SharesBalance returns the holder's balance of the subject's shares, zero
// when absent.
func (m *Manager) SharesBalance(subject [20]byte, holder [20]byte) (uint64, error) {
	return m.loadUint(balanceKey(subject, holder))
}

// SharesIncrement adds amount to both the holder's balance and the subject's
// supply. Both entries are validated first and then committed as one batched
// write, so neither a failed check nor a failed write leaves a partial update.
func (m *Manager) SharesIncrement(subject [20]byte, holder [20]byte, amount uint64) error {
	supply, err := m.SharesSupply(subject)
	if err != nil {
		return err
	}
	balance, err := m.SharesBalance(subject, holder)
	if err != nil {
		return err
	}
	if amount > math.MaxUint64-supply || amount > math.MaxUint64-balance {
		return fmt.Errorf("shares state: increment of %d overflows", amount)
	}
	return m.writeLedger(subject, holder, balance+amount, supply+amount)
}

// SharesDecrement subtracts amount from both the holder's balance and the
// subject's supply. A decrement that would push either entry negative fails
// with ErrLedgerUnderflow before anything is written.
func (m *Manager) SharesDecrement(subject [20]byte, holder [20]byte, amount uint64) error {
	supply, err := m.SharesSupply(subject)
	if err != nil {
		return err
	}
	balance, err := m.SharesBalance(subject, holder)
	if err != nil {
		return err
	}
	if balance < amount {
		return fmt.Errorf("%w: balance %d below %d", shares.ErrLedgerUnderflow, balance, amount)
	}
	if supply < amount {
		return fmt.Errorf("%w: supply %d below %d", shares.ErrLedgerUnderflow, supply, amount)
	}
	return m.writeLedger(subject, holder, balance-amount, supply-amount)
}

type storedParams struct {
	ProtocolFeeDestination [20]byte
	ProtocolFeeBps         uint32
	SubjectFeeBps          uint32
	CoefficientNum         uint64
	CoefficientDen         uint64
}

// SetParams persists the market parameters.
func (m *Manager) SetParams(params shares.Params) error {
	encoded, err := rlp.EncodeToBytes(&storedParams{
		ProtocolFeeDestination: params.ProtocolFeeDestination,
		ProtocolFeeBps:         params.ProtocolFeeBps,
		SubjectFeeBps:          params.SubjectFeeBps,
		CoefficientNum:         params.CurveCoefficient.Num,
		CoefficientDen:         params.CurveCoefficient.Den,
	})
	if err != nil {
		return err
	}
	return m.db.Put(marketParamsKey, encoded)
}

// Params loads the persisted market parameters. The boolean reports whether
// any parameters were stored.
func (m *Manager) Params() (shares.Params, bool, error) {
	data, err := m.db.Get(marketParamsKey)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return shares.Params{}, false, nil
	}
	if err != nil {
		return shares.Params{}, false, err
	}
	stored := new(storedParams)
	if err := rlp.DecodeBytes(data, stored); err != nil {
		return shares.Params{}, false, err
	}
	return shares.Params{
		ProtocolFeeDestination: stored.ProtocolFeeDestination,
		ProtocolFeeBps:         stored.ProtocolFeeBps,
		SubjectFeeBps:          stored.SubjectFeeBps,
		CurveCoefficient: shares.Ratio{
			Num: stored.CoefficientNum,
			Den: stored.CoefficientDen,
		},
	}, true, nil
}
