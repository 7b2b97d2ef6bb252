// Package teller is the HTTP adapter for the Teller delta-neutral and lending API.
// Endpoints used (all GET, JSON):
//   - /perps/delta-neutral  delta-neutral opportunities (filtered locally)
//   - /borrow/general       borrow pools
//   - /borrow-terms         borrow terms for a wallet/collateral/pool
//   - /borrow-tx            encoded borrow transactions
//   - /loans/get-all        loans of a wallet
//   - /loans/repay-tx       encoded repay transactions
package teller

import (
	"context"
	"net/http"
	"time"
)

const (
	DefaultBaseURL = "https://delta-neutral-api.teller.org"
	DefaultTimeout = 15000 * time.Millisecond

	pathDeltaNeutral = "/perps/delta-neutral"
	pathBorrowPools  = "/borrow/general"
	pathBorrowTerms  = "/borrow-terms"
	pathBorrowTx     = "/borrow-tx"
	pathLoans        = "/loans/get-all"
	pathRepayTx      = "/loans/repay-tx"
)

// Config is resolved once at startup and never mutated by the client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client exposes one method per Teller API capability. It holds no mutable
// state and is safe for concurrent use.
type Client struct {
	cfg  Config
	exec *Executor
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	httpClient *http.Client
}

// WithHTTPClient sets the http.Client used for outbound calls.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = c }
}

// NewClient builds a Client. Empty or non-positive config fields fall back to
// DefaultBaseURL and DefaultTimeout.
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	return &Client{
		cfg:  cfg,
		exec: NewExecutor(cfg.BaseURL, cfg.Timeout, o.httpClient),
	}
}

// Config returns a copy of the client's configuration.
func (c *Client) Config() Config { return c.cfg }

// ─── parameter records ───────────────────────────────────────────────────────

// BorrowPoolsQuery fields are all optional; zero values are not sent.
type BorrowPoolsQuery struct {
	ChainID                int
	CollateralTokenAddress string
	BorrowTokenAddress     string
	PoolAddress            string
	TTLSeconds             int // cache TTL override
}

type BorrowTermsParams struct {
	Wallet          string
	ChainID         int
	CollateralToken string
	PoolAddress     string
}

// BorrowTransactionsParams amounts are base-unit integers encoded as strings.
// LoanDurationSeconds of 0 lets the server apply its 30 day default.
type BorrowTransactionsParams struct {
	WalletAddress          string
	CollateralTokenAddress string
	ChainID                int
	PoolAddress            string
	CollateralAmount       string
	PrincipalAmount        string
	LoanDurationSeconds    int
}

type LoansParams struct {
	WalletAddress string
	ChainID       int
}

// RepayTransactionsParams with an empty Amount requests a full repayment.
type RepayTransactionsParams struct {
	BidID         int64
	ChainID       int
	WalletAddress string
	Amount        string
}

// ─── operations ──────────────────────────────────────────────────────────────

// DeltaNeutralOpportunities fetches the full listing and applies f locally.
// Count in the result always equals len(Opportunities).
func (c *Client) DeltaNeutralOpportunities(ctx context.Context, f OpportunityFilter) (*DeltaNeutralOpportunityResponse, error) {
	var resp DeltaNeutralOpportunityResponse
	if err := c.exec.Get(ctx, pathDeltaNeutral, nil, &resp); err != nil {
		return nil, err
	}

	resp.Opportunities = FilterOpportunities(resp.Opportunities, f)
	resp.Count = len(resp.Opportunities)
	return &resp, nil
}

func (c *Client) BorrowPools(ctx context.Context, q BorrowPoolsQuery) (*BorrowGeneralResponse, error) {
	var resp BorrowGeneralResponse
	err := c.exec.Get(ctx, pathBorrowPools, []Param{
		{Name: "chainId", Value: nonZero(q.ChainID)},
		{Name: "collateral_token_address", Value: q.CollateralTokenAddress},
		{Name: "borrow_token_address", Value: q.BorrowTokenAddress},
		{Name: "pool_address", Value: q.PoolAddress},
		{Name: "ttl", Value: nonZero(q.TTLSeconds)},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) BorrowTerms(ctx context.Context, p BorrowTermsParams) (*BorrowTerms, error) {
	var resp BorrowTerms
	err := c.exec.Get(ctx, pathBorrowTerms, []Param{
		{Name: "wallet", Value: p.Wallet},
		{Name: "chainId", Value: p.ChainID},
		{Name: "collateralToken", Value: p.CollateralToken},
		{Name: "poolAddress", Value: p.PoolAddress},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) BorrowTransactions(ctx context.Context, p BorrowTransactionsParams) (*BorrowTransactionsResponse, error) {
	var resp BorrowTransactionsResponse
	err := c.exec.Get(ctx, pathBorrowTx, []Param{
		{Name: "walletAddress", Value: p.WalletAddress},
		{Name: "collateralTokenAddress", Value: p.CollateralTokenAddress},
		{Name: "chainId", Value: p.ChainID},
		{Name: "poolAddress", Value: p.PoolAddress},
		{Name: "collateralAmount", Value: p.CollateralAmount},
		{Name: "principalAmount", Value: p.PrincipalAmount},
		{Name: "loanDuration", Value: nonZero(p.LoanDurationSeconds)},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Loans(ctx context.Context, p LoansParams) (*LoansResponse, error) {
	var resp LoansResponse
	err := c.exec.Get(ctx, pathLoans, []Param{
		{Name: "walletAddress", Value: p.WalletAddress},
		{Name: "chainId", Value: p.ChainID},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) RepayTransactions(ctx context.Context, p RepayTransactionsParams) (*RepayTransactionsResponse, error) {
	var resp RepayTransactionsResponse
	err := c.exec.Get(ctx, pathRepayTx, []Param{
		{Name: "bidId", Value: p.BidID},
		{Name: "chainId", Value: p.ChainID},
		{Name: "walletAddress", Value: p.WalletAddress},
		{Name: "amount", Value: p.Amount},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// nonZero maps 0 to an absent parameter for optional integers.
func nonZero(v int) any {
	if v == 0 {
		return nil
	}
	return v
}
