package teller

import (
	"encoding/json"
	"fmt"
)

// Response shapes belong to the remote API. Every record below decodes only
// the members the client or the tool summaries read and keeps the body it was
// decoded from, which MarshalJSON returns unchanged. A record built in Go
// (no body) marshals its decoded members.

// ─── delta-neutral perps ─────────────────────────────────────────────────────

// DeltaNeutralOpportunityResponse is the only rewritten response: after
// filtering, count and opportunities replace the server's values while every
// other top-level member is kept.
type DeltaNeutralOpportunityResponse struct {
	Count         int
	Opportunities []DeltaNeutralOpportunity

	members map[string]json.RawMessage
}

func (r *DeltaNeutralOpportunityResponse) UnmarshalJSON(data []byte) error {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return err
	}
	if raw, ok := members["opportunities"]; ok {
		if err := json.Unmarshal(raw, &r.Opportunities); err != nil {
			return fmt.Errorf("opportunities: %w", err)
		}
	}
	if raw, ok := members["count"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &r.Count); err != nil {
			return fmt.Errorf("count: %w", err)
		}
	}
	r.members = members
	return nil
}

func (r DeltaNeutralOpportunityResponse) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(r.members)+2)
	for k, v := range r.members {
		out[k] = v
	}
	count, err := json.Marshal(r.Count)
	if err != nil {
		return nil, err
	}
	opportunities, err := json.Marshal(r.Opportunities)
	if err != nil {
		return nil, err
	}
	out["count"] = count
	out["opportunities"] = opportunities
	return json.Marshal(out)
}

// DeltaNeutralOpportunity is one funding-rate arbitrage record: borrow on a
// Teller pool, short the perp on the platform with the best funding APR.
type DeltaNeutralOpportunity struct {
	ChainID   int     `json:"chainId"`
	Coin      string  `json:"coin"`
	NetAprPct float64 `json:"netAprPct"`

	raw json.RawMessage
}

func (o *DeltaNeutralOpportunity) UnmarshalJSON(data []byte) error {
	type core DeltaNeutralOpportunity
	return decodeKept(data, (*core)(o), &o.raw)
}

func (o DeltaNeutralOpportunity) MarshalJSON() ([]byte, error) {
	type core DeltaNeutralOpportunity
	return encodeKept(o.raw, core(o))
}

// ─── borrow pools ────────────────────────────────────────────────────────────

// BorrowGeneralResponse also carries the server cache metadata (updated_at,
// ttl_ms); it is passed through and never used to gate results.
type BorrowGeneralResponse struct {
	Count int `json:"count"`

	raw json.RawMessage
}

func (r *BorrowGeneralResponse) UnmarshalJSON(data []byte) error {
	type core BorrowGeneralResponse
	return decodeKept(data, (*core)(r), &r.raw)
}

func (r BorrowGeneralResponse) MarshalJSON() ([]byte, error) {
	type core BorrowGeneralResponse
	return encodeKept(r.raw, core(r))
}

// ─── borrow terms ────────────────────────────────────────────────────────────

// BorrowTerms exposes the estimated maximum borrow in USD. A missing, null or
// non-numeric maxBorrowUsd leaves MaxBorrowUsd nil.
type BorrowTerms struct {
	MaxBorrowUsd *float64 `json:"maxBorrowUsd,omitempty"`

	raw json.RawMessage
}

func (t *BorrowTerms) UnmarshalJSON(data []byte) error {
	var probe struct {
		MaxBorrowUsd json.RawMessage `json:"maxBorrowUsd"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	t.MaxBorrowUsd = nil
	var v float64
	if len(probe.MaxBorrowUsd) > 0 && json.Unmarshal(probe.MaxBorrowUsd, &v) == nil && !isNull(probe.MaxBorrowUsd) {
		t.MaxBorrowUsd = &v
	}
	t.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (t BorrowTerms) MarshalJSON() ([]byte, error) {
	type core BorrowTerms
	return encodeKept(t.raw, core(t))
}

// ─── transactions ────────────────────────────────────────────────────────────

// BorrowTransactionsResponse holds unsigned, ABI-encoded calls the wallet has
// to submit, in order.
type BorrowTransactionsResponse struct {
	Summary BorrowTransactionSummary `json:"summary"`

	raw json.RawMessage
}

type BorrowTransactionSummary struct {
	TotalTransactions int `json:"totalTransactions"`
}

func (r *BorrowTransactionsResponse) UnmarshalJSON(data []byte) error {
	type core BorrowTransactionsResponse
	return decodeKept(data, (*core)(r), &r.raw)
}

func (r BorrowTransactionsResponse) MarshalJSON() ([]byte, error) {
	type core BorrowTransactionsResponse
	return encodeKept(r.raw, core(r))
}

type RepayTransactionsResponse struct {
	Summary RepayTransactionSummary `json:"summary"`

	raw json.RawMessage
}

type RepayTransactionSummary struct {
	LoanID          int64 `json:"loanId"`
	IsFullRepayment bool  `json:"isFullRepayment"`
}

func (r *RepayTransactionsResponse) UnmarshalJSON(data []byte) error {
	type core RepayTransactionsResponse
	return decodeKept(data, (*core)(r), &r.raw)
}

func (r RepayTransactionsResponse) MarshalJSON() ([]byte, error) {
	type core RepayTransactionsResponse
	return encodeKept(r.raw, core(r))
}

// ─── loans ───────────────────────────────────────────────────────────────────

type LoansResponse struct {
	Count int `json:"count"`

	raw json.RawMessage
}

func (r *LoansResponse) UnmarshalJSON(data []byte) error {
	type core LoansResponse
	return decodeKept(data, (*core)(r), &r.raw)
}

func (r LoansResponse) MarshalJSON() ([]byte, error) {
	type core LoansResponse
	return encodeKept(r.raw, core(r))
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// decodeKept decodes data into v and stores a private copy of data in raw.
func decodeKept(data []byte, v any, raw *json.RawMessage) error {
	if err := json.Unmarshal(data, v); err != nil {
		return err
	}
	*raw = append(json.RawMessage(nil), data...)
	return nil
}

// encodeKept returns raw when present, the encoding of v otherwise.
func encodeKept(raw json.RawMessage, v any) ([]byte, error) {
	if len(raw) > 0 {
		return raw, nil
	}
	return json.Marshal(v)
}

func isNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}
