package shares

import (
	"math/big"
	"strconv"

	"frenparty/core/types"
)

const (
	// EventTypeTradeSettled is emitted once for every executed buy or sell.
	EventTypeTradeSettled = "shares.trade.settled"
)

// TradeSettled is the event payload for an executed trade.
type TradeSettled struct {
	Trade *Trade
}

// EventType implements the events.Event interface.
func (TradeSettled) EventType() string { return EventTypeTradeSettled }

// Event renders the trade record as text-valued attributes for log sinks
// and indexers.
func (e TradeSettled) Event() *types.Event {
	if e.Trade == nil {
		return &types.Event{Type: EventTypeTradeSettled, Attributes: map[string]string{}}
	}
	t := e.Trade
	return &types.Event{
		Type: EventTypeTradeSettled,
		Attributes: map[string]string{
			"trader":      bech32Addr(t.Trader),
			"subject":     bech32Addr(t.Subject),
			"direction":   string(t.Direction),
			"shares":      strconv.FormatUint(t.Shares, 10),
			"price":       bigString(t.Price),
			"protocolFee": bigString(t.ProtocolFee),
			"subjectFee":  bigString(t.SubjectFee),
			"supply":      strconv.FormatUint(t.Supply, 10),
		},
	}
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
