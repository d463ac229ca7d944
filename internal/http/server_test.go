package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bilancio/internal/apierr"
	"bilancio/internal/core"
	"bilancio/internal/tools"
	"bilancio/internal/ynab"
)

// stubAPI implements tools.BudgetAPI with just enough behavior to
// exercise the HTTP mapping; the tool layer has its own tests.
type stubAPI struct {
	userID  string
	authErr error
}

func (s *stubAPI) CheckAuth(ctx context.Context) (string, error) {
	return s.userID, s.authErr
}

func (s *stubAPI) GetBudgets(ctx context.Context) ([]core.Budget, error) { return nil, nil }

func (s *stubAPI) GetAccounts(ctx context.Context, budgetID string) ([]core.Account, error) {
	return nil, nil
}

func (s *stubAPI) GetCategories(ctx context.Context, budgetID string) ([]core.CategoryGroup, error) {
	return nil, nil
}

func (s *stubAPI) GetCategory(ctx context.Context, budgetID, categoryID string) (core.Category, error) {
	return core.Category{}, nil
}

func (s *stubAPI) UpdateCategory(ctx context.Context, budgetID, categoryID string, params ynab.UpdateCategoryParams) (core.Category, error) {
	return core.Category{}, nil
}

func (s *stubAPI) UpdateMonthCategory(ctx context.Context, budgetID, month, categoryID string, budgeted core.Milliunits) (core.Category, error) {
	return core.Category{}, nil
}

func (s *stubAPI) MoveCategoryFunds(ctx context.Context, budgetID, month, fromID, toID string, amount core.Milliunits) (ynab.FundsMove, error) {
	return ynab.FundsMove{}, nil
}

func (s *stubAPI) GetBudgetSummary(ctx context.Context, budgetID, month string) (ynab.BudgetSummary, error) {
	return ynab.BudgetSummary{}, nil
}

func (s *stubAPI) Transactions(filter ynab.TransactionFilter) (tools.Pager, error) {
	return nil, &apierr.Error{Kind: apierr.Server, Status: 500, Detail: "not wired in stub"}
}

func (s *stubAPI) CreateTransaction(ctx context.Context, budgetID string, params ynab.CreateTransactionParams) (core.Transaction, error) {
	return core.Transaction{}, nil
}

func (s *stubAPI) UpdateTransaction(ctx context.Context, budgetID, transactionID string, params ynab.UpdateTransactionParams) (core.Transaction, error) {
	return core.Transaction{}, nil
}

func (s *stubAPI) GetUnapprovedTransactions(ctx context.Context, budgetID string) ([]core.Transaction, error) {
	return nil, nil
}

func (s *stubAPI) GetScheduledTransactions(ctx context.Context, budgetID string) ([]core.ScheduledTransaction, error) {
	return nil, nil
}

func (s *stubAPI) CreateScheduledTransaction(ctx context.Context, budgetID string, params ynab.CreateScheduledTransactionParams) (core.ScheduledTransaction, error) {
	return core.ScheduledTransaction{}, nil
}

func (s *stubAPI) DeleteScheduledTransaction(ctx context.Context, budgetID, scheduledID string) error {
	return nil
}

func newTestServer(t *testing.T, api tools.BudgetAPI) *httptest.Server {
	t.Helper()
	registry := tools.NewRegistry(tools.NewService(api, time.Minute, nil))
	srv := NewServer(":0", registry)
	ts := httptest.NewServer(srv.Server.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url, body string) (*http.Response, envelope) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, &stubAPI{userID: "u-1"})
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListTools(t *testing.T) {
	ts := newTestServer(t, &stubAPI{})
	resp, err := http.Get(ts.URL + "/tools")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.True(t, env.OK)
	result := env.Result.(map[string]any)
	assert.Contains(t, result["tools"], "health_check")
}

func TestToolCallSuccess(t *testing.T) {
	ts := newTestServer(t, &stubAPI{userID: "u-1"})
	resp, env := postJSON(t, ts.URL+"/tools/health_check", `{}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, env.OK)
	result := env.Result.(map[string]any)
	assert.Equal(t, "ok", result["status"])
	assert.Equal(t, "u-1", result["user_id"])
}

func TestUnknownToolIsBadRequest(t *testing.T) {
	ts := newTestServer(t, &stubAPI{})
	resp, env := postJSON(t, ts.URL+"/tools/get_weather", `{}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.False(t, env.OK)
	assert.Equal(t, "validation", env.Error.Kind)
}

func TestAuthFailureMapsTo401(t *testing.T) {
	ts := newTestServer(t, &stubAPI{
		authErr: &apierr.Error{Kind: apierr.Auth, Status: 401, Detail: "unauthorized"},
	})
	resp, env := postJSON(t, ts.URL+"/tools/health_check", `{}`)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "auth", env.Error.Kind)
}

func TestRateLimitSurfacesRetryAfter(t *testing.T) {
	ts := newTestServer(t, &stubAPI{
		authErr: &apierr.Error{Kind: apierr.RateLimit, Status: 429, Detail: "slow down", RetryAfter: 7 * time.Second},
	})
	resp, env := postJSON(t, ts.URL+"/tools/health_check", `{}`)

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "7", resp.Header.Get("Retry-After"))
	assert.Equal(t, 7, env.Error.RetryAfter)
}

func TestValidationFailureMapsTo400(t *testing.T) {
	ts := newTestServer(t, &stubAPI{})
	resp, env := postJSON(t, ts.URL+"/tools/create_transaction", `{"amount":"twelve"}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation", env.Error.Kind)
}

func TestMethodRouting(t *testing.T) {
	ts := newTestServer(t, &stubAPI{})
	resp, err := http.Get(ts.URL + "/tools/health_check")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
