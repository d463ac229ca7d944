package ynab

import (
	"context"
	"errors"
	"fmt"

	"bilancio/internal/core"
)

type scheduledEnvelope struct {
	Data struct {
		ScheduledTransactions []core.ScheduledTransaction `json:"scheduled_transactions"`
	} `json:"data"`
}

type scheduledSingleEnvelope struct {
	Data struct {
		ScheduledTransaction core.ScheduledTransaction `json:"scheduled_transaction"`
	} `json:"data"`
}

// scheduledFrequencies are the repetition values the remote API accepts.
var scheduledFrequencies = map[string]bool{
	"never": true, "daily": true, "weekly": true, "everyOtherWeek": true,
	"twiceAMonth": true, "every4Weeks": true, "monthly": true,
	"everyOtherMonth": true, "every3Months": true, "every4Months": true,
	"twiceAYear": true, "yearly": true, "everyOtherYear": true,
}

// GetScheduledTransactions lists the budget's scheduled transactions,
// skipping deleted ones.
func (c *Client) GetScheduledTransactions(ctx context.Context, budgetID string) ([]core.ScheduledTransaction, error) {
	if budgetID == "" {
		return nil, errors.New("get scheduled transactions: budget ID is required")
	}

	var env scheduledEnvelope
	if err := c.do(ctx, "GET", "/budgets/"+budgetID+"/scheduled_transactions", nil, nil, &env); err != nil {
		return nil, fmt.Errorf("get scheduled transactions: %w", err)
	}

	out := make([]core.ScheduledTransaction, 0, len(env.Data.ScheduledTransactions))
	for _, st := range env.Data.ScheduledTransactions {
		if st.Deleted {
			continue
		}
		out = append(out, st)
	}
	return out, nil
}

// CreateScheduledTransactionParams is the statically enumerated
// parameter set for creating a scheduled transaction.
type CreateScheduledTransactionParams struct {
	// AccountID is the account the transaction posts to. Required.
	AccountID string
	// Date is the first (or only) occurrence. Required.
	Date core.Date
	// Frequency is one of the remote API's repetition values; empty
	// means "never" (a one-off future transaction).
	Frequency string
	// Amount is signed: positive inflow, negative outflow.
	Amount core.Milliunits
	// PayeeName, CategoryID and Memo are optional.
	PayeeName  string
	CategoryID string
	Memo       string
}

// Validate checks the params before any network call.
func (p CreateScheduledTransactionParams) Validate() error {
	if p.AccountID == "" {
		return errors.New("account ID is required")
	}
	if p.Date.IsZero() {
		return core.ErrInvalidDate
	}
	if p.Frequency != "" && !scheduledFrequencies[p.Frequency] {
		return fmt.Errorf("invalid frequency %q", p.Frequency)
	}
	return nil
}

// CreateScheduledTransaction creates a scheduled transaction and
// returns the remote state.
func (c *Client) CreateScheduledTransaction(ctx context.Context, budgetID string, params CreateScheduledTransactionParams) (core.ScheduledTransaction, error) {
	if budgetID == "" {
		return core.ScheduledTransaction{}, errors.New("create scheduled transaction: budget ID is required")
	}
	if err := params.Validate(); err != nil {
		return core.ScheduledTransaction{}, fmt.Errorf("create scheduled transaction: %w", err)
	}

	frequency := params.Frequency
	if frequency == "" {
		frequency = "never"
	}
	body := map[string]map[string]any{"scheduled_transaction": {
		"account_id":  params.AccountID,
		"date":        params.Date.String(),
		"frequency":   frequency,
		"amount":      params.Amount,
		"payee_name":  params.PayeeName,
		"category_id": params.CategoryID,
		"memo":        params.Memo,
	}}

	var env scheduledSingleEnvelope
	if err := c.do(ctx, "POST", "/budgets/"+budgetID+"/scheduled_transactions", nil, body, &env); err != nil {
		return core.ScheduledTransaction{}, fmt.Errorf("create scheduled transaction: %w", err)
	}
	return env.Data.ScheduledTransaction, nil
}

// DeleteScheduledTransaction removes a scheduled transaction.
func (c *Client) DeleteScheduledTransaction(ctx context.Context, budgetID, scheduledID string) error {
	if budgetID == "" || scheduledID == "" {
		return errors.New("delete scheduled transaction: budget and scheduled transaction IDs are required")
	}

	if err := c.do(ctx, "DELETE", "/budgets/"+budgetID+"/scheduled_transactions/"+scheduledID, nil, nil, nil); err != nil {
		return fmt.Errorf("delete scheduled transaction: %w", err)
	}
	return nil
}
