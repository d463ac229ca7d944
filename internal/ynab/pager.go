package ynab

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"bilancio/internal/core"
)

// ErrNoMorePages is returned by Next once the sequence has ended.
var ErrNoMorePages = errors.New("no more pages")

// TransactionFilter is the statically enumerated parameter set for a
// transaction listing. All filtering is applied remotely; the pager
// never re-filters locally.
type TransactionFilter struct {
	// BudgetID selects the budget. Required.
	BudgetID string
	// SinceDate, when set, keeps only transactions on or after it.
	SinceDate core.Date
	// UntilDate, when set, keeps only transactions on or before it.
	UntilDate core.Date
	// AccountID restricts the listing to one account.
	AccountID string
	// CategoryID restricts the listing to one category. Mutually
	// exclusive with AccountID.
	CategoryID string
	// Search is free-text matching over payee and memo, applied by the
	// server.
	Search string
	// PageSize is the per-page item count; 0 uses the client default.
	PageSize int
	// Limit caps the total number of items yielded; 0 means unbounded.
	// When reached the pager stops early and discards any further
	// continuation token.
	Limit int
}

// Validate checks the filter before the first network call.
func (f TransactionFilter) Validate() error {
	if f.BudgetID == "" {
		return errors.New("budget ID is required")
	}
	if f.AccountID != "" && f.CategoryID != "" {
		return errors.New("account and category filters are mutually exclusive")
	}
	if !f.SinceDate.IsZero() && !f.UntilDate.IsZero() && f.UntilDate.Before(f.SinceDate.Time) {
		return errors.New("until date precedes since date")
	}
	if f.PageSize < 0 || f.PageSize > 1000 {
		return fmt.Errorf("invalid page size %d", f.PageSize)
	}
	if f.Limit < 0 {
		return fmt.Errorf("invalid item limit %d", f.Limit)
	}
	return nil
}

func (f TransactionFilter) path() string {
	switch {
	case f.AccountID != "":
		return "/budgets/" + f.BudgetID + "/accounts/" + f.AccountID + "/transactions"
	case f.CategoryID != "":
		return "/budgets/" + f.BudgetID + "/categories/" + f.CategoryID + "/transactions"
	default:
		return "/budgets/" + f.BudgetID + "/transactions"
	}
}

func (f TransactionFilter) query(pageSize int, cursor string) url.Values {
	q := url.Values{}
	if !f.SinceDate.IsZero() {
		q.Set("since_date", f.SinceDate.String())
	}
	if !f.UntilDate.IsZero() {
		q.Set("until_date", f.UntilDate.String())
	}
	if f.Search != "" {
		q.Set("q", f.Search)
	}
	q.Set("limit", strconv.Itoa(pageSize))
	if cursor != "" {
		q.Set("page", cursor)
	}
	return q
}

type transactionsEnvelope struct {
	Data struct {
		Transactions []core.Transaction `json:"transactions"`
		NextPage     string             `json:"next_page"`
	} `json:"data"`
}

// TransactionPager walks a paginated transaction listing lazily, one
// page per Next call. The sequence is finite and not restartable: after
// the last page, or after any failure, the pager is terminal and a new
// one must be constructed from the original filter.
type TransactionPager struct {
	client  *Client
	filter  TransactionFilter
	cursor  string
	yielded int
	done    bool
}

// Transactions validates the filter and returns a pager over the
// matching transactions. No network call is issued until Next.
func (c *Client) Transactions(filter TransactionFilter) (*TransactionPager, error) {
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("invalid transaction filter: %w", err)
	}
	return &TransactionPager{client: c, filter: filter}, nil
}

// HasMore reports whether another page may be fetched.
func (p *TransactionPager) HasMore() bool {
	return !p.done
}

// Next fetches one page. A failure from the executor propagates as-is,
// no partial page is exposed, and the pager becomes terminal.
func (p *TransactionPager) Next(ctx context.Context) ([]core.Transaction, error) {
	if p.done {
		return nil, ErrNoMorePages
	}

	pageSize := p.filter.PageSize
	if pageSize <= 0 {
		pageSize = p.client.pageSize
	}
	if p.filter.Limit > 0 {
		if remaining := p.filter.Limit - p.yielded; remaining < pageSize {
			pageSize = remaining
		}
	}

	var env transactionsEnvelope
	err := p.client.do(ctx, "GET", p.filter.path(), p.filter.query(pageSize, p.cursor), nil, &env)
	if err != nil {
		p.done = true
		return nil, err
	}

	txns := env.Data.Transactions
	p.cursor = env.Data.NextPage
	p.yielded += len(txns)

	if p.filter.Limit > 0 && p.yielded >= p.filter.Limit {
		txns = txns[:len(txns)-(p.yielded-p.filter.Limit)]
		p.done = true
		return txns, nil
	}
	if p.cursor == "" {
		p.done = true
	}
	return txns, nil
}
