package tool

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/matiasleandrokruk/tellermcp/internal/infra/teller"
	"github.com/matiasleandrokruk/tellermcp/internal/version"
)

const (
	BuiltinDeltaNeutralOpportunities = "get-delta-neutral-opportunities"
	BuiltinBorrowPools               = "get-borrow-pools"
	BuiltinBorrowTerms               = "get-borrow-terms"
	BuiltinBorrowTransactions        = "build-borrow-transactions"
	BuiltinWalletLoans               = "get-wallet-loans"
	BuiltinRepayTransactions         = "build-repay-transactions"

	serverInstructions = "Expose Teller delta-neutral and lending workflows via MCP tools"
)

// ─── tool inputs ─────────────────────────────────────────────────────────────

type deltaNeutralInput struct {
	ChainID      int      `json:"chainId,omitempty" jsonschema:"Chain ID to filter opportunities"`
	Coin         string   `json:"coin,omitempty" jsonschema:"Token symbol to filter (e.g., ETH, ARB)"`
	Limit        int      `json:"limit,omitempty" jsonschema:"Maximum number of opportunities to return"`
	MinNetAprPct *float64 `json:"minNetAprPct,omitempty" jsonschema:"Minimum net APR percentage to include"`
}

type borrowPoolsInput struct {
	ChainID                int    `json:"chainId,omitempty"`
	CollateralTokenAddress string `json:"collateralTokenAddress,omitempty"`
	BorrowTokenAddress     string `json:"borrowTokenAddress,omitempty"`
	PoolAddress            string `json:"poolAddress,omitempty"`
	TTL                    int    `json:"ttl,omitempty" jsonschema:"Cache TTL override in seconds"`
}

type borrowTermsInput struct {
	Wallet          string `json:"wallet"`
	ChainID         int    `json:"chainId"`
	CollateralToken string `json:"collateralToken"`
	PoolAddress     string `json:"poolAddress"`
}

type borrowTransactionsInput struct {
	WalletAddress          string `json:"walletAddress"`
	CollateralTokenAddress string `json:"collateralTokenAddress"`
	ChainID                int    `json:"chainId"`
	PoolAddress            string `json:"poolAddress"`
	CollateralAmount       string `json:"collateralAmount" jsonschema:"Collateral amount in wei/base units"`
	PrincipalAmount        string `json:"principalAmount" jsonschema:"Principal amount in wei/base units"`
	LoanDuration           int    `json:"loanDuration,omitempty" jsonschema:"Loan duration in seconds (defaults to 30 days if omitted)"`
}

type walletLoansInput struct {
	WalletAddress string `json:"walletAddress"`
	ChainID       int    `json:"chainId"`
}

type repayTransactionsInput struct {
	BidID         int64  `json:"bidId"`
	ChainID       int    `json:"chainId"`
	WalletAddress string `json:"walletAddress"`
	Amount        string `json:"amount,omitempty" jsonschema:"Optional partial repayment amount in wei"`
}

// ─── server wiring ───────────────────────────────────────────────────────────

// NewServer builds the MCP server with every builtin tool registered.
func NewServer(api LendingAPI, logger zerolog.Logger) (*mcp.Server, *ToolRegistry, error) {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    version.Name,
		Version: version.Version,
	}, &mcp.ServerOptions{
		Instructions: serverInstructions,
	})

	registry := NewToolRegistry(server, logger)
	if err := RegisterBuiltinTools(registry, api); err != nil {
		return nil, nil, err
	}
	return server, registry, nil
}

// RegisterBuiltinTools registers the six Teller tools.
func RegisterBuiltinTools(r *ToolRegistry, api LendingAPI) error {
	registrations := []func() error{
		func() error {
			return Register(r, Definition{
				Name:        BuiltinDeltaNeutralOpportunities,
				Description: "List delta-neutral arbitrage opportunities from Teller perps endpoint",
				Schema: schemaOpts(
					Positive("chainId"),
					[]SchemaOption{Range("limit", 1, 50)},
				),
			}, deltaNeutralHandler(api))
		},
		func() error {
			return Register(r, Definition{
				Name:        BuiltinBorrowPools,
				Description: "Get Teller borrow pools with optional filters",
				Schema: schemaOpts(
					Positive("chainId"),
					Address("collateralTokenAddress", "borrowTokenAddress", "poolAddress"),
					[]SchemaOption{Range("ttl", 60, 86_400)},
				),
			}, borrowPoolsHandler(api))
		},
		func() error {
			return Register(r, Definition{
				Name:        BuiltinBorrowTerms,
				Description: "Calculate borrow terms for a specific wallet, collateral token, and pool",
				Schema: schemaOpts(
					Positive("chainId"),
					Address("wallet", "collateralToken", "poolAddress"),
				),
			}, borrowTermsHandler(api))
		},
		func() error {
			return Register(r, Definition{
				Name:        BuiltinBorrowTransactions,
				Description: "Return encoded transactions required to borrow from a Teller pool",
				Schema: schemaOpts(
					Positive("chainId", "loanDuration"),
					Address("walletAddress", "collateralTokenAddress", "poolAddress"),
					[]SchemaOption{NonEmpty("collateralAmount"), NonEmpty("principalAmount")},
				),
			}, borrowTransactionsHandler(api))
		},
		func() error {
			return Register(r, Definition{
				Name:        BuiltinWalletLoans,
				Description: "List active and historical Teller loans for a wallet",
				Schema: schemaOpts(
					Positive("chainId"),
					Address("walletAddress"),
				),
			}, walletLoansHandler(api))
		},
		func() error {
			return Register(r, Definition{
				Name:        BuiltinRepayTransactions,
				Description: "Build repayment approval + repay transactions for a Teller loan",
				Schema: schemaOpts(
					Positive("chainId"),
					Address("walletAddress"),
					[]SchemaOption{Range("bidId", 0, 0), NonEmpty("amount")},
				),
			}, repayTransactionsHandler(api))
		},
	}

	for _, register := range registrations {
		if err := register(); err != nil {
			return err
		}
	}
	return nil
}

// ─── handlers ────────────────────────────────────────────────────────────────

func deltaNeutralHandler(api LendingAPI) HandlerFunc[deltaNeutralInput] {
	return func(ctx context.Context, in deltaNeutralInput) (string, any, error) {
		data, err := api.DeltaNeutralOpportunities(ctx, teller.OpportunityFilter{
			ChainID:      in.ChainID,
			Coin:         strings.ToUpper(strings.TrimSpace(in.Coin)),
			Limit:        in.Limit,
			MinNetAprPct: in.MinNetAprPct,
		})
		if err != nil {
			return "", nil, err
		}
		return opportunitiesSummary(data), data, nil
	}
}

func borrowPoolsHandler(api LendingAPI) HandlerFunc[borrowPoolsInput] {
	return func(ctx context.Context, in borrowPoolsInput) (string, any, error) {
		data, err := api.BorrowPools(ctx, teller.BorrowPoolsQuery{
			ChainID:                in.ChainID,
			CollateralTokenAddress: strings.TrimSpace(in.CollateralTokenAddress),
			BorrowTokenAddress:     strings.TrimSpace(in.BorrowTokenAddress),
			PoolAddress:            strings.TrimSpace(in.PoolAddress),
			TTLSeconds:             in.TTL,
		})
		if err != nil {
			return "", nil, err
		}
		return borrowPoolsSummary(data), data, nil
	}
}

func borrowTermsHandler(api LendingAPI) HandlerFunc[borrowTermsInput] {
	return func(ctx context.Context, in borrowTermsInput) (string, any, error) {
		data, err := api.BorrowTerms(ctx, teller.BorrowTermsParams{
			Wallet:          strings.TrimSpace(in.Wallet),
			ChainID:         in.ChainID,
			CollateralToken: strings.TrimSpace(in.CollateralToken),
			PoolAddress:     strings.TrimSpace(in.PoolAddress),
		})
		if err != nil {
			return "", nil, err
		}
		return borrowTermsSummary(data), data, nil
	}
}

func borrowTransactionsHandler(api LendingAPI) HandlerFunc[borrowTransactionsInput] {
	return func(ctx context.Context, in borrowTransactionsInput) (string, any, error) {
		data, err := api.BorrowTransactions(ctx, teller.BorrowTransactionsParams{
			WalletAddress:          strings.TrimSpace(in.WalletAddress),
			CollateralTokenAddress: strings.TrimSpace(in.CollateralTokenAddress),
			ChainID:                in.ChainID,
			PoolAddress:            strings.TrimSpace(in.PoolAddress),
			CollateralAmount:       in.CollateralAmount,
			PrincipalAmount:        in.PrincipalAmount,
			LoanDurationSeconds:    in.LoanDuration,
		})
		if err != nil {
			return "", nil, err
		}
		return borrowTransactionsSummary(data), data, nil
	}
}

func walletLoansHandler(api LendingAPI) HandlerFunc[walletLoansInput] {
	return func(ctx context.Context, in walletLoansInput) (string, any, error) {
		data, err := api.Loans(ctx, teller.LoansParams{
			WalletAddress: strings.TrimSpace(in.WalletAddress),
			ChainID:       in.ChainID,
		})
		if err != nil {
			return "", nil, err
		}
		return walletLoansSummary(data), data, nil
	}
}

func repayTransactionsHandler(api LendingAPI) HandlerFunc[repayTransactionsInput] {
	return func(ctx context.Context, in repayTransactionsInput) (string, any, error) {
		data, err := api.RepayTransactions(ctx, teller.RepayTransactionsParams{
			BidID:         in.BidID,
			ChainID:       in.ChainID,
			WalletAddress: strings.TrimSpace(in.WalletAddress),
			Amount:        in.Amount,
		})
		if err != nil {
			return "", nil, err
		}
		return repayTransactionsSummary(data), data, nil
	}
}
