package tools

import (
	"context"
	"encoding/json"
	"errors"

	"bilancio/internal/core"
	"bilancio/internal/ynab"
)

// defaultTransactionLimit bounds get_transactions results when the
// caller sets no limit, keeping tool responses a sane size.
const defaultTransactionLimit = 200

type getTransactionsParams struct {
	BudgetID   string `json:"budget_id"`
	SinceDate  string `json:"since_date,omitempty"`
	UntilDate  string `json:"until_date,omitempty"`
	AccountID  string `json:"account_id,omitempty"`
	CategoryID string `json:"category_id,omitempty"`
	Search     string `json:"search,omitempty"`
	// Limit caps the number of returned transactions; 0 applies the
	// default cap, a negative value is rejected.
	Limit int `json:"limit,omitempty"`
}

func (p getTransactionsParams) filter() (ynab.TransactionFilter, error) {
	since, err := parseOptionalDate(p.SinceDate, "since_date")
	if err != nil {
		return ynab.TransactionFilter{}, badParams(err)
	}
	until, err := parseOptionalDate(p.UntilDate, "until_date")
	if err != nil {
		return ynab.TransactionFilter{}, badParams(err)
	}

	limit := p.Limit
	if limit == 0 {
		limit = defaultTransactionLimit
	}
	f := ynab.TransactionFilter{
		BudgetID:   orDefaultBudget(p.BudgetID),
		SinceDate:  since,
		UntilDate:  until,
		AccountID:  p.AccountID,
		CategoryID: p.CategoryID,
		Search:     p.Search,
		Limit:      limit,
	}
	if err := f.Validate(); err != nil {
		return ynab.TransactionFilter{}, badParams(err)
	}
	return f, nil
}

// getTransactions lists transactions matching the filter, walking as
// many pages as the limit allows.
func (s *Service) getTransactions(ctx context.Context, raw json.RawMessage) (any, error) {
	var p getTransactionsParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	filter, err := p.filter()
	if err != nil {
		return nil, err
	}

	pager, err := s.api.Transactions(filter)
	if err != nil {
		return nil, err
	}

	var txns []core.Transaction
	for pager.HasMore() {
		page, err := pager.Next(ctx)
		if err != nil {
			return nil, err
		}
		txns = append(txns, page...)
	}

	return map[string]any{
		"transactions": toTransactionViews(txns),
		"count":        len(txns),
	}, nil
}

type createTransactionParams struct {
	BudgetID  string `json:"budget_id"`
	AccountID string `json:"account_id"`
	Date      string `json:"date"`
	// Amount is a signed decimal string: negative outflow, positive
	// inflow.
	Amount     string `json:"amount"`
	PayeeName  string `json:"payee_name,omitempty"`
	CategoryID string `json:"category_id,omitempty"`
	Memo       string `json:"memo,omitempty"`
	Cleared    string `json:"cleared,omitempty"`
	Approved   bool   `json:"approved,omitempty"`
}

// createTransaction records a new transaction.
func (s *Service) createTransaction(ctx context.Context, raw json.RawMessage) (any, error) {
	var p createTransactionParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	date, err := core.ParseDate(p.Date)
	if err != nil {
		return nil, badParams(err)
	}
	amount, err := core.ParseAmount(p.Amount)
	if err != nil {
		return nil, badParams(err)
	}

	params := ynab.CreateTransactionParams{
		AccountID:  p.AccountID,
		Date:       date,
		Amount:     amount,
		PayeeName:  p.PayeeName,
		CategoryID: p.CategoryID,
		Memo:       p.Memo,
		Cleared:    core.ClearedStatus(p.Cleared),
		Approved:   p.Approved,
	}
	if err := params.Validate(); err != nil {
		return nil, badParams(err)
	}

	txn, err := s.api.CreateTransaction(ctx, orDefaultBudget(p.BudgetID), params)
	if err != nil {
		return nil, err
	}
	return map[string]any{"transaction": toTransactionView(txn)}, nil
}

type updateTransactionParams struct {
	BudgetID      string  `json:"budget_id"`
	TransactionID string  `json:"transaction_id"`
	AccountID     *string `json:"account_id,omitempty"`
	Date          *string `json:"date,omitempty"`
	Amount        *string `json:"amount,omitempty"`
	PayeeName     *string `json:"payee_name,omitempty"`
	CategoryID    *string `json:"category_id,omitempty"`
	Memo          *string `json:"memo,omitempty"`
	Cleared       *string `json:"cleared,omitempty"`
	Approved      *bool   `json:"approved,omitempty"`
}

// updateTransaction changes the provided fields of an existing
// transaction; omitted fields keep their value.
func (s *Service) updateTransaction(ctx context.Context, raw json.RawMessage) (any, error) {
	var p updateTransactionParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	if p.TransactionID == "" {
		return nil, badParams(errors.New("transaction_id is required"))
	}

	params := ynab.UpdateTransactionParams{
		AccountID:  p.AccountID,
		PayeeName:  p.PayeeName,
		CategoryID: p.CategoryID,
		Memo:       p.Memo,
		Approved:   p.Approved,
	}
	if p.Date != nil {
		date, err := core.ParseDate(*p.Date)
		if err != nil {
			return nil, badParams(err)
		}
		params.Date = &date
	}
	if p.Amount != nil {
		amount, err := core.ParseAmount(*p.Amount)
		if err != nil {
			return nil, badParams(err)
		}
		params.Amount = &amount
	}
	if p.Cleared != nil {
		cleared := core.ClearedStatus(*p.Cleared)
		params.Cleared = &cleared
	}
	if err := params.Validate(); err != nil {
		return nil, badParams(err)
	}

	txn, err := s.api.UpdateTransaction(ctx, orDefaultBudget(p.BudgetID), p.TransactionID, params)
	if err != nil {
		return nil, err
	}
	return map[string]any{"transaction": toTransactionView(txn)}, nil
}

type getUnapprovedParams struct {
	BudgetID string `json:"budget_id"`
}

// getUnapprovedTransactions lists transactions awaiting approval.
func (s *Service) getUnapprovedTransactions(ctx context.Context, raw json.RawMessage) (any, error) {
	var p getUnapprovedParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}

	txns, err := s.api.GetUnapprovedTransactions(ctx, orDefaultBudget(p.BudgetID))
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"transactions": toTransactionViews(txns),
		"count":        len(txns),
	}, nil
}
