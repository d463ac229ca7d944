package ynab

import (
	"context"
	"errors"
	"fmt"

	"bilancio/internal/core"
)

type transactionEnvelope struct {
	Data struct {
		Transaction core.Transaction `json:"transaction"`
	} `json:"data"`
}

// GetTransaction fetches a single transaction by ID.
func (c *Client) GetTransaction(ctx context.Context, budgetID, transactionID string) (core.Transaction, error) {
	if budgetID == "" || transactionID == "" {
		return core.Transaction{}, errors.New("get transaction: budget and transaction IDs are required")
	}

	var env transactionEnvelope
	if err := c.do(ctx, "GET", "/budgets/"+budgetID+"/transactions/"+transactionID, nil, nil, &env); err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return env.Data.Transaction, nil
}

// CreateTransactionParams is the statically enumerated parameter set
// for creating a transaction.
type CreateTransactionParams struct {
	// AccountID is the account the transaction belongs to. Required.
	AccountID string
	// Date is the transaction date. Required.
	Date core.Date
	// Amount is signed: positive inflow, negative outflow.
	Amount core.Milliunits
	// PayeeName, CategoryID and Memo are optional.
	PayeeName  string
	CategoryID string
	Memo       string
	// Cleared defaults to uncleared when empty.
	Cleared  core.ClearedStatus
	Approved bool
}

// Validate checks the params before any network call.
func (p CreateTransactionParams) Validate() error {
	if p.AccountID == "" {
		return errors.New("account ID is required")
	}
	if p.Date.IsZero() {
		return core.ErrInvalidDate
	}
	if p.Cleared != "" && !p.Cleared.Valid() {
		return core.ErrInvalidCleared
	}
	return nil
}

type transactionBody struct {
	AccountID  string             `json:"account_id"`
	Date       core.Date          `json:"date"`
	Amount     core.Milliunits    `json:"amount"`
	PayeeName  string             `json:"payee_name,omitempty"`
	CategoryID string             `json:"category_id,omitempty"`
	Memo       string             `json:"memo,omitempty"`
	Cleared    core.ClearedStatus `json:"cleared"`
	Approved   bool               `json:"approved"`
}

// CreateTransaction creates a transaction and returns the remote state.
func (c *Client) CreateTransaction(ctx context.Context, budgetID string, params CreateTransactionParams) (core.Transaction, error) {
	if budgetID == "" {
		return core.Transaction{}, errors.New("create transaction: budget ID is required")
	}
	if err := params.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	cleared := params.Cleared
	if cleared == "" {
		cleared = core.Uncleared
	}
	body := map[string]transactionBody{"transaction": {
		AccountID:  params.AccountID,
		Date:       params.Date,
		Amount:     params.Amount,
		PayeeName:  params.PayeeName,
		CategoryID: params.CategoryID,
		Memo:       params.Memo,
		Cleared:    cleared,
		Approved:   params.Approved,
	}}

	var env transactionEnvelope
	if err := c.do(ctx, "POST", "/budgets/"+budgetID+"/transactions", nil, body, &env); err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	return env.Data.Transaction, nil
}

// UpdateTransactionParams carries the fields an update may change. Nil
// fields keep the transaction's existing value.
type UpdateTransactionParams struct {
	AccountID  *string
	Date       *core.Date
	Amount     *core.Milliunits
	PayeeName  *string
	CategoryID *string
	Memo       *string
	Cleared    *core.ClearedStatus
	Approved   *bool
}

// Validate checks the params before any network call.
func (p UpdateTransactionParams) Validate() error {
	if p.AccountID == nil && p.Date == nil && p.Amount == nil && p.PayeeName == nil &&
		p.CategoryID == nil && p.Memo == nil && p.Cleared == nil && p.Approved == nil {
		return errors.New("nothing to update")
	}
	if p.AccountID != nil && *p.AccountID == "" {
		return errors.New("account ID cannot be empty")
	}
	if p.Date != nil && p.Date.IsZero() {
		return core.ErrInvalidDate
	}
	if p.Cleared != nil && !p.Cleared.Valid() {
		return core.ErrInvalidCleared
	}
	return nil
}

// UpdateTransaction fetches the existing transaction, overlays the
// provided fields and writes the merged state back, returning what the
// remote system now holds.
func (c *Client) UpdateTransaction(ctx context.Context, budgetID, transactionID string, params UpdateTransactionParams) (core.Transaction, error) {
	if err := params.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	existing, err := c.GetTransaction(ctx, budgetID, transactionID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	merged := transactionBody{
		AccountID:  existing.AccountID,
		Date:       existing.Date,
		Amount:     existing.Amount,
		PayeeName:  existing.PayeeName,
		CategoryID: existing.CategoryID,
		Memo:       existing.Memo,
		Cleared:    existing.Cleared,
		Approved:   existing.Approved,
	}
	if params.AccountID != nil {
		merged.AccountID = *params.AccountID
	}
	if params.Date != nil {
		merged.Date = *params.Date
	}
	if params.Amount != nil {
		merged.Amount = *params.Amount
	}
	if params.PayeeName != nil {
		merged.PayeeName = *params.PayeeName
	}
	if params.CategoryID != nil {
		merged.CategoryID = *params.CategoryID
	}
	if params.Memo != nil {
		merged.Memo = *params.Memo
	}
	if params.Cleared != nil {
		merged.Cleared = *params.Cleared
	}
	if params.Approved != nil {
		merged.Approved = *params.Approved
	}

	body := map[string]transactionBody{"transaction": merged}
	var env transactionEnvelope
	if err := c.do(ctx, "PUT", "/budgets/"+budgetID+"/transactions/"+transactionID, nil, body, &env); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	return env.Data.Transaction, nil
}

// GetUnapprovedTransactions walks the full transaction listing and
// keeps the unapproved, non-deleted ones.
func (c *Client) GetUnapprovedTransactions(ctx context.Context, budgetID string) ([]core.Transaction, error) {
	pager, err := c.Transactions(TransactionFilter{BudgetID: budgetID})
	if err != nil {
		return nil, fmt.Errorf("get unapproved transactions: %w", err)
	}

	var out []core.Transaction
	for pager.HasMore() {
		txns, err := pager.Next(ctx)
		if err != nil {
			return nil, fmt.Errorf("get unapproved transactions: %w", err)
		}
		for _, txn := range txns {
			if !txn.Approved && !txn.Deleted {
				out = append(out, txn)
			}
		}
	}
	return out, nil
}
