package core

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"frenparty/native/shares"
	"frenparty/storage"
)

func addr(last byte) [20]byte {
	var out [20]byte
	out[19] = last
	return out
}

func testParams() shares.Params {
	return shares.Params{
		ProtocolFeeDestination: addr(0xFE),
		ProtocolFeeBps:         500,
		SubjectFeeBps:          500,
		CurveCoefficient:       shares.Ratio{Num: 1, Den: 8},
	}
}

func TestNodePersistsParamsOnFirstStart(t *testing.T) {
	db := storage.NewMemDB()
	params := testParams()

	node, err := NewNode(db, params)
	require.NoError(t, err)
	require.Equal(t, params, node.SharesParams())

	// A restart with the same params succeeds.
	restarted, err := NewNode(db, params)
	require.NoError(t, err)
	require.Equal(t, params, restarted.SharesParams())
}

func TestNodeRejectsChangedParams(t *testing.T) {
	db := storage.NewMemDB()
	params := testParams()

	_, err := NewNode(db, params)
	require.NoError(t, err)

	changed := params
	changed.ProtocolFeeBps = 100
	_, err = NewNode(db, changed)
	require.Error(t, err)
}

func TestNodeRejectsInvalidParams(t *testing.T) {
	invalid := testParams()
	invalid.CurveCoefficient.Den = 0
	_, err := NewNode(storage.NewMemDB(), invalid)
	require.Error(t, err)
}

func TestNodeSettlesTradesAgainstPersistentState(t *testing.T) {
	db := storage.NewMemDB()
	node, err := NewNode(db, testParams())
	require.NoError(t, err)

	subject, friend := addr(1), addr(2)

	_, _, err = node.SharesBuy(subject, subject, 1, big.NewInt(0))
	require.NoError(t, err)

	trade, transfers, err := node.SharesBuy(subject, friend, 10, big.NewInt(52_937_500))
	require.NoError(t, err)
	require.Equal(t, uint64(11), trade.Supply)
	require.Len(t, transfers, 2)

	// A fresh node over the same database sees the settled ledger.
	reopened, err := NewNode(db, testParams())
	require.NoError(t, err)
	supply, err := reopened.SharesSupply(subject)
	require.NoError(t, err)
	require.Equal(t, uint64(11), supply)
	balance, err := reopened.SharesBalance(subject, friend)
	require.NoError(t, err)
	require.Equal(t, uint64(10), balance)
}
