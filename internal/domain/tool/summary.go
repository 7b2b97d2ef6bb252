package tool

import (
	"fmt"

	"github.com/matiasleandrokruk/tellermcp/internal/infra/teller"
)

func plural(n int, singular, many string) string {
	if n == 1 {
		return singular
	}
	return many
}

func opportunitiesSummary(data *teller.DeltaNeutralOpportunityResponse) string {
	return fmt.Sprintf("Returned %d delta-neutral %s.", data.Count, plural(data.Count, "opportunity", "opportunities"))
}

func borrowPoolsSummary(data *teller.BorrowGeneralResponse) string {
	return fmt.Sprintf("Returned %d borrow %s.", data.Count, plural(data.Count, "pool", "pools"))
}

func borrowTermsSummary(data *teller.BorrowTerms) string {
	maxUsd := "unknown"
	if data.MaxBorrowUsd != nil {
		maxUsd = fmt.Sprintf("%.2f", *data.MaxBorrowUsd)
	}
	return fmt.Sprintf("Borrow terms ready - est. max borrow %s USD.", maxUsd)
}

func borrowTransactionsSummary(data *teller.BorrowTransactionsResponse) string {
	n := data.Summary.TotalTransactions
	return fmt.Sprintf("Prepared %d borrow %s.", n, plural(n, "transaction", "transactions"))
}

func walletLoansSummary(data *teller.LoansResponse) string {
	return fmt.Sprintf("Found %d %s for this wallet.", data.Count, plural(data.Count, "loan", "loans"))
}

func repayTransactionsSummary(data *teller.RepayTransactionsResponse) string {
	detail := "partial repayment"
	if data.Summary.IsFullRepayment {
		detail = "full repayment"
	}
	return fmt.Sprintf("Prepared %s transactions for loan #%d.", detail, data.Summary.LoanID)
}
