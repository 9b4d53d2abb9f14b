package core

import (
	"fmt"
	"math/big"
	"sync"

	"frenparty/core/events"
	"frenparty/core/state"
	"frenparty/native/shares"
	"frenparty/storage"
)

// Node owns the database, the ledger state manager, and the settlement
// engine, and exposes the market's boundary operations to the RPC layer.
// A single mutex serializes trades so each request settles as an
// all-or-nothing unit against shared ledger state.
type Node struct {
	mu     sync.Mutex
	db     storage.Database
	state  *state.Manager
	engine *shares.Engine
}

// NewNode wires a node on top of the supplied database. Market parameters
// are persisted on first start; on later starts the configured parameters
// must match the persisted ones, since the market prices all historical
// trades under a single fixed configuration.
func NewNode(db storage.Database, params shares.Params) (*Node, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("node: market params: %w", err)
	}
	manager := state.NewManager(db)
	stored, ok, err := manager.Params()
	if err != nil {
		return nil, fmt.Errorf("node: load market params: %w", err)
	}
	if ok {
		if stored != params {
			return nil, fmt.Errorf("node: configured market params differ from the persisted ones")
		}
	} else {
		if err := manager.SetParams(params); err != nil {
			return nil, fmt.Errorf("node: persist market params: %w", err)
		}
	}
	engine := shares.NewEngine()
	engine.SetState(manager)
	if err := engine.SetParams(params); err != nil {
		return nil, err
	}
	return &Node{db: db, state: manager, engine: engine}, nil
}

// SetEmitter configures the sink receiving trade events.
func (n *Node) SetEmitter(emitter events.Emitter) {
	n.engine.SetEmitter(emitter)
}

// SharesParams returns the active market parameters.
func (n *Node) SharesParams() shares.Params {
	return n.engine.Params()
}

// SharesBuy settles a buy of the subject's shares for the buyer.
func (n *Node) SharesBuy(subject [20]byte, buyer [20]byte, amount uint64, payment *big.Int) (*shares.Trade, []shares.Transfer, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.engine.Buy(subject, buyer, amount, payment)
}

// SharesSell settles a sell of the subject's shares by the seller.
func (n *Node) SharesSell(subject [20]byte, seller [20]byte, amount uint64) (*shares.Trade, []shares.Transfer, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.engine.Sell(subject, seller, amount)
}

// SharesSupply reports the subject's outstanding supply.
func (n *Node) SharesSupply(subject [20]byte) (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.engine.SharesSupply(subject)
}

// SharesBalance reports the holder's balance of the subject's shares.
func (n *Node) SharesBalance(subject [20]byte, holder [20]byte) (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.engine.SharesBalance(subject, holder)
}

// SharesBuyPrice quotes the raw curve price for a buy.
func (n *Node) SharesBuyPrice(subject [20]byte, amount uint64) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.engine.BuyPrice(subject, amount)
}

// SharesSellPrice quotes the raw curve price for a sell.
func (n *Node) SharesSellPrice(subject [20]byte, amount uint64) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.engine.SellPrice(subject, amount)
}

// SharesBuyPriceAfterFee quotes the buyer's total cost including fees.
func (n *Node) SharesBuyPriceAfterFee(subject [20]byte, amount uint64) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.engine.BuyPriceAfterFee(subject, amount)
}

// SharesSellPriceAfterFee quotes the seller's net proceeds after fees.
func (n *Node) SharesSellPriceAfterFee(subject [20]byte, amount uint64) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.engine.SellPriceAfterFee(subject, amount)
}

// Close releases the underlying database.
func (n *Node) Close() error {
	return n.db.Close()
}
