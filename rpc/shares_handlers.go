package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"frenparty/crypto"
	"frenparty/native/shares"
)

type sharesBuyParams struct {
	Subject string `json:"subject"`
	Buyer   string `json:"buyer"`
	Amount  uint64 `json:"amount"`
	Deposit string `json:"deposit"`
}

type sharesSellParams struct {
	Subject string `json:"subject"`
	Seller  string `json:"seller"`
	Amount  uint64 `json:"amount"`
}

type sharesPriceParams struct {
	Subject string `json:"subject"`
	Amount  uint64 `json:"amount"`
}

type sharesBalanceParams struct {
	Subject string `json:"subject"`
	Holder  string `json:"holder"`
}

type sharesSupplyParams struct {
	Subject string `json:"subject"`
}

type transferResult struct {
	To     string `json:"to"`
	Amount string `json:"amount"`
	Denom  string `json:"denom"`
}

type tradeResult struct {
	Trader      string           `json:"trader"`
	Subject     string           `json:"subject"`
	Direction   string           `json:"direction"`
	Shares      uint64           `json:"shares"`
	Price       string           `json:"price"`
	ProtocolFee string           `json:"protocolFee"`
	SubjectFee  string           `json:"subjectFee"`
	Cost        string           `json:"cost"`
	Supply      uint64           `json:"supply"`
	Transfers   []transferResult `json:"transfers"`
}

type priceResult struct {
	Amount string `json:"amount"`
	Denom  string `json:"denom"`
}

type balanceResult struct {
	Subject string `json:"subject"`
	Holder  string `json:"holder"`
	Balance uint64 `json:"balance"`
}

type supplyResult struct {
	Subject string `json:"subject"`
	Supply  uint64 `json:"supply"`
}

type paramsResult struct {
	ProtocolFeeDestination string `json:"protocolFeeDestination"`
	ProtocolFeeBps         uint32 `json:"protocolFeeBps"`
	SubjectFeeBps          uint32 `json:"subjectFeeBps"`
	CoefficientNum         uint64 `json:"coefficientNum"`
	CoefficientDen         uint64 `json:"coefficientDen"`
	Denom                  string `json:"denom"`
}

func decodeBech32(value string) ([20]byte, error) {
	var out [20]byte
	addr, err := crypto.DecodeAddress(strings.TrimSpace(value))
	if err != nil {
		return out, err
	}
	if addr.Prefix() != crypto.FrenPrefix {
		return out, fmt.Errorf("unexpected address prefix %q", addr.Prefix())
	}
	copy(out[:], addr.Bytes())
	return out, nil
}

func formatAddress(addr [20]byte) string {
	return crypto.MustNewAddress(crypto.FrenPrefix, addr[:]).String()
}

func parseAmount(value string) (*big.Int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return big.NewInt(0), nil
	}
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok || amount.Sign() < 0 {
		return nil, fmt.Errorf("invalid amount %q", value)
	}
	return amount, nil
}

func decodeSingleParam(req *RPCRequest, out interface{}) error {
	if len(req.Params) != 1 {
		return fmt.Errorf("exactly one parameter object expected")
	}
	return json.Unmarshal(req.Params[0], out)
}

func bigText(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func formatTrade(trade *shares.Trade, transfers []shares.Transfer) tradeResult {
	result := tradeResult{
		Trader:      formatAddress(trade.Trader),
		Subject:     formatAddress(trade.Subject),
		Direction:   string(trade.Direction),
		Shares:      trade.Shares,
		Price:       bigText(trade.Price),
		ProtocolFee: bigText(trade.ProtocolFee),
		SubjectFee:  bigText(trade.SubjectFee),
		Cost:        bigText(trade.Cost),
		Supply:      trade.Supply,
		Transfers:   make([]transferResult, 0, len(transfers)),
	}
	for _, transfer := range transfers {
		result.Transfers = append(result.Transfers, transferResult{
			To:     formatAddress(transfer.To),
			Amount: bigText(transfer.Amount),
			Denom:  transfer.Denom,
		})
	}
	return result
}

// writeEngineError maps the settlement error taxonomy onto JSON-RPC error
// payloads, surfacing the engine's message verbatim.
func writeEngineError(w http.ResponseWriter, id interface{}, err error) {
	var shortfall *shares.InsufficientPaymentError
	if errors.As(err, &shortfall) {
		writeError(w, http.StatusBadRequest, id, codeTradeRejected, err.Error(), map[string]string{
			"expected": bigText(shortfall.Expected),
			"actual":   bigText(shortfall.Actual),
		})
		return
	}
	switch {
	case errors.Is(err, shares.ErrInvalidAmount),
		errors.Is(err, shares.ErrNotSubject),
		errors.Is(err, shares.ErrLastShare),
		errors.Is(err, shares.ErrNotEnoughShares):
		writeError(w, http.StatusBadRequest, id, codeTradeRejected, err.Error(), nil)
	default:
		writeError(w, http.StatusInternalServerError, id, codeServerError, err.Error(), nil)
	}
}

func (s *Server) handleSharesBuy(w http.ResponseWriter, req *RPCRequest) {
	var params sharesBuyParams
	if err := decodeSingleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	subject, err := decodeBech32(params.Subject)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid subject address", err.Error())
		return
	}
	buyer, err := decodeBech32(params.Buyer)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid buyer address", err.Error())
		return
	}
	deposit, err := parseAmount(params.Deposit)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	trade, transfers, err := s.node.SharesBuy(subject, buyer, params.Amount, deposit)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, formatTrade(trade, transfers))
}

func (s *Server) handleSharesSell(w http.ResponseWriter, req *RPCRequest) {
	var params sharesSellParams
	if err := decodeSingleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	subject, err := decodeBech32(params.Subject)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid subject address", err.Error())
		return
	}
	seller, err := decodeBech32(params.Seller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid seller address", err.Error())
		return
	}
	trade, transfers, err := s.node.SharesSell(subject, seller, params.Amount)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, formatTrade(trade, transfers))
}

func (s *Server) handlePriceQuery(w http.ResponseWriter, req *RPCRequest, quote func([20]byte, uint64) (*big.Int, error)) {
	var params sharesPriceParams
	if err := decodeSingleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	subject, err := decodeBech32(params.Subject)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid subject address", err.Error())
		return
	}
	price, err := quote(subject, params.Amount)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, priceResult{Amount: bigText(price), Denom: shares.BaseDenom})
}

func (s *Server) handleSharesBuyPrice(w http.ResponseWriter, req *RPCRequest) {
	s.handlePriceQuery(w, req, s.node.SharesBuyPrice)
}

func (s *Server) handleSharesSellPrice(w http.ResponseWriter, req *RPCRequest) {
	s.handlePriceQuery(w, req, s.node.SharesSellPrice)
}

func (s *Server) handleSharesBuyPriceAfterFee(w http.ResponseWriter, req *RPCRequest) {
	s.handlePriceQuery(w, req, s.node.SharesBuyPriceAfterFee)
}

func (s *Server) handleSharesSellPriceAfterFee(w http.ResponseWriter, req *RPCRequest) {
	s.handlePriceQuery(w, req, s.node.SharesSellPriceAfterFee)
}

func (s *Server) handleSharesBalance(w http.ResponseWriter, req *RPCRequest) {
	var params sharesBalanceParams
	if err := decodeSingleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	subject, err := decodeBech32(params.Subject)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid subject address", err.Error())
		return
	}
	holder, err := decodeBech32(params.Holder)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid holder address", err.Error())
		return
	}
	balance, err := s.node.SharesBalance(subject, holder)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, balanceResult{Subject: params.Subject, Holder: params.Holder, Balance: balance})
}

func (s *Server) handleSharesSupply(w http.ResponseWriter, req *RPCRequest) {
	var params sharesSupplyParams
	if err := decodeSingleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	subject, err := decodeBech32(params.Subject)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid subject address", err.Error())
		return
	}
	supply, err := s.node.SharesSupply(subject)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, supplyResult{Subject: params.Subject, Supply: supply})
}

func (s *Server) handleSharesParams(w http.ResponseWriter, req *RPCRequest) {
	if len(req.Params) != 0 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "no parameters expected", nil)
		return
	}
	params := s.node.SharesParams()
	writeResult(w, req.ID, paramsResult{
		ProtocolFeeDestination: formatAddress(params.ProtocolFeeDestination),
		ProtocolFeeBps:         params.ProtocolFeeBps,
		SubjectFeeBps:          params.SubjectFeeBps,
		CoefficientNum:         params.CurveCoefficient.Num,
		CoefficientDen:         params.CurveCoefficient.Den,
		Denom:                  shares.BaseDenom,
	})
}
