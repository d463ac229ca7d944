// Package tools exposes the named operations the surrounding tool host
// dispatches into. Every operation has a statically enumerated params
// struct validated before the first network call, and returns
// structured data with amounts already converted to decimal display
// form.
package tools

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"bilancio/internal/aggregate"
	"bilancio/internal/cache"
	"bilancio/internal/core"
	"bilancio/internal/ynab"
)

// defaultBudget is the remote API's alias for the most recently used
// budget, applied whenever a tool call omits budget_id.
const defaultBudget = "last-used"

// Pager yields transaction pages, mirroring the client's lazy listing.
type Pager interface {
	HasMore() bool
	Next(ctx context.Context) ([]core.Transaction, error)
}

// BudgetAPI is the slice of the client the tool layer consumes.
type BudgetAPI interface {
	CheckAuth(ctx context.Context) (string, error)
	GetBudgets(ctx context.Context) ([]core.Budget, error)
	GetAccounts(ctx context.Context, budgetID string) ([]core.Account, error)
	GetCategories(ctx context.Context, budgetID string) ([]core.CategoryGroup, error)
	GetCategory(ctx context.Context, budgetID, categoryID string) (core.Category, error)
	UpdateCategory(ctx context.Context, budgetID, categoryID string, params ynab.UpdateCategoryParams) (core.Category, error)
	UpdateMonthCategory(ctx context.Context, budgetID, month, categoryID string, budgeted core.Milliunits) (core.Category, error)
	MoveCategoryFunds(ctx context.Context, budgetID, month, fromID, toID string, amount core.Milliunits) (ynab.FundsMove, error)
	GetBudgetSummary(ctx context.Context, budgetID, month string) (ynab.BudgetSummary, error)
	Transactions(filter ynab.TransactionFilter) (Pager, error)
	CreateTransaction(ctx context.Context, budgetID string, params ynab.CreateTransactionParams) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, budgetID, transactionID string, params ynab.UpdateTransactionParams) (core.Transaction, error)
	GetUnapprovedTransactions(ctx context.Context, budgetID string) ([]core.Transaction, error)
	GetScheduledTransactions(ctx context.Context, budgetID string) ([]core.ScheduledTransaction, error)
	CreateScheduledTransaction(ctx context.Context, budgetID string, params ynab.CreateScheduledTransactionParams) (core.ScheduledTransaction, error)
	DeleteScheduledTransaction(ctx context.Context, budgetID, scheduledID string) error
}

// SummaryExporter writes a spending summary to an external sheet.
type SummaryExporter interface {
	Export(ctx context.Context, title string, summary core.SpendingSummary) (int, error)
}

// Service wires the client, the aggregation engine and the
// reference-data caches behind the tool operations.
type Service struct {
	api      BudgetAPI
	engine   *aggregate.Engine
	exporter SummaryExporter // nil disables export_summary

	accounts   *cache.Store[[]core.Account]
	categories *cache.Store[[]core.CategoryGroup]
	flight     singleflight.Group
}

// NewService builds the tool service. cacheTTL bounds how long account
// and category listings are reused before a re-fetch; exporter may be
// nil.
func NewService(api BudgetAPI, cacheTTL time.Duration, exporter SummaryExporter) *Service {
	return &Service{
		api:        api,
		engine:     aggregate.NewEngine(pagerSource{api: api}),
		exporter:   exporter,
		accounts:   cache.New[[]core.Account](cacheTTL),
		categories: cache.New[[]core.CategoryGroup](cacheTTL),
	}
}

// pagerSource adapts the client's transaction listing to the
// aggregation engine's source interface.
type pagerSource struct {
	api BudgetAPI
}

func (s pagerSource) Pages(f aggregate.Filter) (aggregate.Pager, error) {
	pager, err := s.api.Transactions(ynab.TransactionFilter{
		BudgetID:   f.BudgetID,
		SinceDate:  f.SinceDate,
		UntilDate:  f.UntilDate,
		AccountID:  f.AccountID,
		CategoryID: f.CategoryID,
		Search:     f.Search,
	})
	if err != nil {
		return nil, err
	}
	return pager, nil
}

// clientAPI adapts the concrete client to BudgetAPI: the pager return
// type is widened to the interface so the tool layer stays fakeable.
type clientAPI struct {
	*ynab.Client
}

func (a clientAPI) Transactions(filter ynab.TransactionFilter) (Pager, error) {
	return a.Client.Transactions(filter)
}

// NewClientAPI wraps the HTTP client as a BudgetAPI.
func NewClientAPI(c *ynab.Client) BudgetAPI {
	return clientAPI{Client: c}
}

// cachedAccounts serves the account listing through the TTL cache,
// deduping concurrent fetches for the same budget.
func (s *Service) cachedAccounts(ctx context.Context, budgetID string) ([]core.Account, error) {
	if accounts, ok := s.accounts.Get(budgetID); ok {
		return accounts, nil
	}

	v, err, _ := s.flight.Do("accounts:"+budgetID, func() (any, error) {
		accounts, err := s.api.GetAccounts(ctx, budgetID)
		if err != nil {
			return nil, err
		}
		s.accounts.Set(budgetID, accounts)
		return accounts, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]core.Account), nil
}

// cachedCategories is cachedAccounts for category groups.
func (s *Service) cachedCategories(ctx context.Context, budgetID string) ([]core.CategoryGroup, error) {
	if groups, ok := s.categories.Get(budgetID); ok {
		return groups, nil
	}

	v, err, _ := s.flight.Do("categories:"+budgetID, func() (any, error) {
		groups, err := s.api.GetCategories(ctx, budgetID)
		if err != nil {
			return nil, err
		}
		s.categories.Set(budgetID, groups)
		return groups, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]core.CategoryGroup), nil
}

// invalidateCategories drops the cached category listing after a
// mutation made it stale.
func (s *Service) invalidateCategories(budgetID string) {
	s.categories.Delete(budgetID)
}

func orDefaultBudget(budgetID string) string {
	if budgetID == "" {
		return defaultBudget
	}
	return budgetID
}

func parseOptionalDate(s, field string) (core.Date, error) {
	if s == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}, fmt.Errorf("%s: %w", field, err)
	}
	return d, nil
}
