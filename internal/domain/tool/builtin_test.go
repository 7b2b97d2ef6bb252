package tool

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/matiasleandrokruk/tellermcp/internal/infra/teller"
)

const (
	testWallet = "0x1111111111111111111111111111111111111111"
	testToken  = "0x2222222222222222222222222222222222222222"
	testPool   = "0x3333333333333333333333333333333333333333"
)

type fakeLendingAPI struct {
	mu  sync.Mutex
	err error

	filter    teller.OpportunityFilter
	pools     teller.BorrowPoolsQuery
	terms     teller.BorrowTermsParams
	borrowTxs teller.BorrowTransactionsParams
	loans     teller.LoansParams
	repay     teller.RepayTransactionsParams
}

func (f *fakeLendingAPI) DeltaNeutralOpportunities(_ context.Context, filter teller.OpportunityFilter) (*teller.DeltaNeutralOpportunityResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filter = filter
	if f.err != nil {
		return nil, f.err
	}
	return &teller.DeltaNeutralOpportunityResponse{
		Count: 1,
		Opportunities: []teller.DeltaNeutralOpportunity{
			{ChainID: 42161, Coin: "ETH", NetAprPct: 12.5},
		},
	}, nil
}

func (f *fakeLendingAPI) BorrowPools(_ context.Context, q teller.BorrowPoolsQuery) (*teller.BorrowGeneralResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pools = q
	if f.err != nil {
		return nil, f.err
	}
	return &teller.BorrowGeneralResponse{Count: 2}, nil
}

func (f *fakeLendingAPI) BorrowTerms(_ context.Context, p teller.BorrowTermsParams) (*teller.BorrowTerms, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.terms = p
	if f.err != nil {
		return nil, f.err
	}
	return decodeFixture[teller.BorrowTerms](`{"wallet":"` + p.Wallet + `","maxBorrowUsd":1500,"liquidationPrice":1800,"collateralPrice":null}`), nil
}

func (f *fakeLendingAPI) BorrowTransactions(_ context.Context, p teller.BorrowTransactionsParams) (*teller.BorrowTransactionsResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.borrowTxs = p
	if f.err != nil {
		return nil, f.err
	}
	return &teller.BorrowTransactionsResponse{
		Summary: teller.BorrowTransactionSummary{TotalTransactions: 2},
	}, nil
}

func (f *fakeLendingAPI) Loans(_ context.Context, p teller.LoansParams) (*teller.LoansResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loans = p
	if f.err != nil {
		return nil, f.err
	}
	return &teller.LoansResponse{Count: 1}, nil
}

func (f *fakeLendingAPI) RepayTransactions(_ context.Context, p teller.RepayTransactionsParams) (*teller.RepayTransactionsResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.repay = p
	if f.err != nil {
		return nil, f.err
	}
	return &teller.RepayTransactionsResponse{
		Summary: teller.RepayTransactionSummary{LoanID: p.BidID, IsFullRepayment: p.Amount == ""},
	}, nil
}

func decodeFixture[T any](body string) *T {
	v := new(T)
	if err := json.Unmarshal([]byte(body), v); err != nil {
		panic(err)
	}
	return v
}

func connectTestClient(t *testing.T, api LendingAPI) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	server, _, err := NewServer(api, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewServer returned error: %v", err)
	}

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server.Connect returned error: %v", err)
	}
	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client.Connect returned error: %v", err)
	}
	t.Cleanup(func() {
		_ = cs.Close()
		_ = ss.Close()
	})
	return cs
}

func callTool(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("CallTool(%s) returned error: %v", name, err)
	}
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("content[0] is %T; want *mcp.TextContent", res.Content[0])
	}
	return text.Text
}

func resultPayload(t *testing.T, res *mcp.CallToolResult) map[string]any {
	t.Helper()
	envelope, ok := res.StructuredContent.(map[string]any)
	if !ok {
		t.Fatalf("structured content is %T; want map", res.StructuredContent)
	}
	payload, ok := envelope["payload"].(map[string]any)
	if !ok {
		t.Fatalf("payload is %T; want map", envelope["payload"])
	}
	return payload
}

func TestNewServer_RegistersSixTools(t *testing.T) {
	t.Parallel()

	_, registry, err := NewServer(&fakeLendingAPI{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewServer returned error: %v", err)
	}
	want := []string{
		BuiltinBorrowTransactions,
		BuiltinRepayTransactions,
		BuiltinBorrowPools,
		BuiltinBorrowTerms,
		BuiltinDeltaNeutralOpportunities,
		BuiltinWalletLoans,
	}
	got := registry.Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Names()[%d] = %q; want %q", i, got[i], want[i])
		}
	}
}

func TestRegisterBuiltinTools_Twice_ReturnsError(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	if err := RegisterBuiltinTools(r, &fakeLendingAPI{}); err != nil {
		t.Fatalf("first RegisterBuiltinTools returned error: %v", err)
	}
	if err := RegisterBuiltinTools(r, &fakeLendingAPI{}); err == nil {
		t.Fatal("second RegisterBuiltinTools should fail")
	}
}

func TestBuiltinTools_ListTools_AdvertisesSchemas(t *testing.T) {
	t.Parallel()

	cs := connectTestClient(t, &fakeLendingAPI{})
	res, err := cs.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools returned error: %v", err)
	}
	if len(res.Tools) != 6 {
		t.Fatalf("ListTools returned %d tools; want 6", len(res.Tools))
	}
	for _, tl := range res.Tools {
		if tl.Description == "" {
			t.Fatalf("tool %s has no description", tl.Name)
		}
		if tl.InputSchema == nil {
			t.Fatalf("tool %s has no input schema", tl.Name)
		}
	}
}

func TestDeltaNeutralTool_NormalizesCoinAndWrapsPayload(t *testing.T) {
	t.Parallel()

	api := &fakeLendingAPI{}
	cs := connectTestClient(t, api)

	res := callTool(t, cs, BuiltinDeltaNeutralOpportunities, map[string]any{
		"chainId":      42161,
		"coin":         "  eth ",
		"limit":        5,
		"minNetAprPct": 3.5,
	})
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}
	if got := resultText(t, res); got != "Returned 1 delta-neutral opportunity." {
		t.Fatalf("summary = %q", got)
	}
	payload := resultPayload(t, res)
	if payload["count"] != float64(1) {
		t.Fatalf("payload count = %v; want 1", payload["count"])
	}

	api.mu.Lock()
	defer api.mu.Unlock()
	if api.filter.Coin != "ETH" || api.filter.ChainID != 42161 || api.filter.Limit != 5 {
		t.Fatalf("filter = %+v", api.filter)
	}
	if api.filter.MinNetAprPct == nil || *api.filter.MinNetAprPct != 3.5 {
		t.Fatalf("MinNetAprPct = %v; want 3.5", api.filter.MinNetAprPct)
	}
}

func TestDeltaNeutralTool_LimitOutOfRange_Rejected(t *testing.T) {
	t.Parallel()

	cs := connectTestClient(t, &fakeLendingAPI{})
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      BuiltinDeltaNeutralOpportunities,
		Arguments: map[string]any{"limit": 51},
	})
	if err == nil && !res.IsError {
		t.Fatal("limit 51 should be rejected")
	}
}

func TestBorrowPoolsTool_TrimsAddresses(t *testing.T) {
	t.Parallel()

	api := &fakeLendingAPI{}
	cs := connectTestClient(t, api)

	res := callTool(t, cs, BuiltinBorrowPools, map[string]any{
		"chainId":     8453,
		"poolAddress": " " + testPool + " ",
		"ttl":         120,
	})
	if got := resultText(t, res); got != "Returned 2 borrow pools." {
		t.Fatalf("summary = %q", got)
	}

	api.mu.Lock()
	defer api.mu.Unlock()
	if api.pools.PoolAddress != testPool || api.pools.TTLSeconds != 120 || api.pools.ChainID != 8453 {
		t.Fatalf("query = %+v", api.pools)
	}
}

func TestBorrowTermsTool_InvalidAddress_Rejected(t *testing.T) {
	t.Parallel()

	cs := connectTestClient(t, &fakeLendingAPI{})
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name: BuiltinBorrowTerms,
		Arguments: map[string]any{
			"wallet":          "0x123",
			"chainId":         1,
			"collateralToken": testToken,
			"poolAddress":     testPool,
		},
	})
	if err == nil && !res.IsError {
		t.Fatal("short wallet address should be rejected")
	}
}

func TestBorrowTermsTool_Summary(t *testing.T) {
	t.Parallel()

	cs := connectTestClient(t, &fakeLendingAPI{})
	res := callTool(t, cs, BuiltinBorrowTerms, map[string]any{
		"wallet":          testWallet,
		"chainId":         1,
		"collateralToken": testToken,
		"poolAddress":     testPool,
	})
	if got := resultText(t, res); got != "Borrow terms ready - est. max borrow 1500.00 USD." {
		t.Fatalf("summary = %q", got)
	}
	payload := resultPayload(t, res)
	if payload["wallet"] != testWallet || payload["liquidationPrice"] != float64(1800) {
		t.Fatalf("payload = %v; want server members passed through", payload)
	}
	if v, ok := payload["collateralPrice"]; !ok || v != nil {
		t.Fatalf("collateralPrice = %v (present %v); want explicit null", v, ok)
	}
}

func TestBorrowTransactionsTool_ForwardsAmounts(t *testing.T) {
	t.Parallel()

	api := &fakeLendingAPI{}
	cs := connectTestClient(t, api)

	res := callTool(t, cs, BuiltinBorrowTransactions, map[string]any{
		"walletAddress":          testWallet,
		"collateralTokenAddress": testToken,
		"chainId":                137,
		"poolAddress":            testPool,
		"collateralAmount":       "1000000000000000000",
		"principalAmount":        "500000",
	})
	if got := resultText(t, res); got != "Prepared 2 borrow transactions." {
		t.Fatalf("summary = %q", got)
	}

	api.mu.Lock()
	defer api.mu.Unlock()
	if api.borrowTxs.CollateralAmount != "1000000000000000000" || api.borrowTxs.PrincipalAmount != "500000" {
		t.Fatalf("params = %+v", api.borrowTxs)
	}
	if api.borrowTxs.LoanDurationSeconds != 0 {
		t.Fatalf("LoanDurationSeconds = %d; want 0 when omitted", api.borrowTxs.LoanDurationSeconds)
	}
}

func TestBorrowTransactionsTool_EmptyAmount_Rejected(t *testing.T) {
	t.Parallel()

	cs := connectTestClient(t, &fakeLendingAPI{})
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name: BuiltinBorrowTransactions,
		Arguments: map[string]any{
			"walletAddress":          testWallet,
			"collateralTokenAddress": testToken,
			"chainId":                137,
			"poolAddress":            testPool,
			"collateralAmount":       "",
			"principalAmount":        "1",
		},
	})
	if err == nil && !res.IsError {
		t.Fatal("empty collateralAmount should be rejected")
	}
}

func TestWalletLoansTool_Summary(t *testing.T) {
	t.Parallel()

	cs := connectTestClient(t, &fakeLendingAPI{})
	res := callTool(t, cs, BuiltinWalletLoans, map[string]any{
		"walletAddress": testWallet,
		"chainId":       1,
	})
	if got := resultText(t, res); got != "Found 1 loan for this wallet." {
		t.Fatalf("summary = %q", got)
	}
}

func TestRepayTransactionsTool_FullAndPartial(t *testing.T) {
	t.Parallel()

	cs := connectTestClient(t, &fakeLendingAPI{})

	full := callTool(t, cs, BuiltinRepayTransactions, map[string]any{
		"bidId":         0,
		"chainId":       1,
		"walletAddress": testWallet,
	})
	if got := resultText(t, full); got != "Prepared full repayment transactions for loan #0." {
		t.Fatalf("full summary = %q", got)
	}

	partial := callTool(t, cs, BuiltinRepayTransactions, map[string]any{
		"bidId":         77,
		"chainId":       1,
		"walletAddress": testWallet,
		"amount":        "1000",
	})
	if got := resultText(t, partial); got != "Prepared partial repayment transactions for loan #77." {
		t.Fatalf("partial summary = %q", got)
	}
}

func TestBuiltinTools_APIError_ReturnsToolError(t *testing.T) {
	t.Parallel()

	api := &fakeLendingAPI{err: &teller.RequestFailedError{Path: "/loans/get-all", StatusCode: 502, Body: "bad gateway"}}
	cs := connectTestClient(t, api)

	res := callTool(t, cs, BuiltinWalletLoans, map[string]any{
		"walletAddress": testWallet,
		"chainId":       1,
	})
	if !res.IsError {
		t.Fatal("expected IsError result")
	}
	if got := resultText(t, res); !strings.Contains(got, "request failed with 502") {
		t.Fatalf("error text = %q", got)
	}
}
