package tools

import (
	"context"
	"encoding/json"
	"errors"

	"bilancio/internal/core"
	"bilancio/internal/ynab"
)

type getScheduledParams struct {
	BudgetID string `json:"budget_id"`
}

// getScheduledTransactions lists upcoming scheduled transactions.
func (s *Service) getScheduledTransactions(ctx context.Context, raw json.RawMessage) (any, error) {
	var p getScheduledParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}

	scheduled, err := s.api.GetScheduledTransactions(ctx, orDefaultBudget(p.BudgetID))
	if err != nil {
		return nil, err
	}

	views := make([]scheduledView, 0, len(scheduled))
	for _, st := range scheduled {
		views = append(views, toScheduledView(st))
	}
	return map[string]any{"scheduled_transactions": views}, nil
}

type createScheduledParams struct {
	BudgetID  string `json:"budget_id"`
	AccountID string `json:"account_id"`
	Date      string `json:"date"`
	Frequency string `json:"frequency,omitempty"`
	// Amount is a signed decimal string.
	Amount     string `json:"amount"`
	PayeeName  string `json:"payee_name,omitempty"`
	CategoryID string `json:"category_id,omitempty"`
	Memo       string `json:"memo,omitempty"`
}

// createScheduledTransaction sets up a future or repeating transaction.
func (s *Service) createScheduledTransaction(ctx context.Context, raw json.RawMessage) (any, error) {
	var p createScheduledParams
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

	params := ynab.CreateScheduledTransactionParams{
		AccountID:  p.AccountID,
		Date:       date,
		Frequency:  p.Frequency,
		Amount:     amount,
		PayeeName:  p.PayeeName,
		CategoryID: p.CategoryID,
		Memo:       p.Memo,
	}
	if err := params.Validate(); err != nil {
		return nil, badParams(err)
	}

	st, err := s.api.CreateScheduledTransaction(ctx, orDefaultBudget(p.BudgetID), params)
	if err != nil {
		return nil, err
	}
	return map[string]any{"scheduled_transaction": toScheduledView(st)}, nil
}

type deleteScheduledParams struct {
	BudgetID               string `json:"budget_id"`
	ScheduledTransactionID string `json:"scheduled_transaction_id"`
}

// deleteScheduledTransaction removes a scheduled transaction.
func (s *Service) deleteScheduledTransaction(ctx context.Context, raw json.RawMessage) (any, error) {
	var p deleteScheduledParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	if p.ScheduledTransactionID == "" {
		return nil, badParams(errors.New("scheduled_transaction_id is required"))
	}

	if err := s.api.DeleteScheduledTransaction(ctx, orDefaultBudget(p.BudgetID), p.ScheduledTransactionID); err != nil {
		return nil, err
	}
	return map[string]any{"deleted": true, "scheduled_transaction_id": p.ScheduledTransactionID}, nil
}
