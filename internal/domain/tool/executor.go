package tool

import (
	"context"

	"github.com/matiasleandrokruk/tellermcp/internal/infra/teller"
)

// LendingAPI is the runtime contract the builtin tools execute against.
// *teller.Client satisfies it.
type LendingAPI interface {
	DeltaNeutralOpportunities(ctx context.Context, f teller.OpportunityFilter) (*teller.DeltaNeutralOpportunityResponse, error)
	BorrowPools(ctx context.Context, q teller.BorrowPoolsQuery) (*teller.BorrowGeneralResponse, error)
	BorrowTerms(ctx context.Context, p teller.BorrowTermsParams) (*teller.BorrowTerms, error)
	BorrowTransactions(ctx context.Context, p teller.BorrowTransactionsParams) (*teller.BorrowTransactionsResponse, error)
	Loans(ctx context.Context, p teller.LoansParams) (*teller.LoansResponse, error)
	RepayTransactions(ctx context.Context, p teller.RepayTransactionsParams) (*teller.RepayTransactionsResponse, error)
}

var _ LendingAPI = (*teller.Client)(nil)
