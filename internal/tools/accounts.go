package tools

import (
	"context"
	"encoding/json"
)

type getAccountsParams struct {
	BudgetID string `json:"budget_id"`
}

// getAccounts lists open and closed accounts with display balances.
func (s *Service) getAccounts(ctx context.Context, raw json.RawMessage) (any, error) {
	var p getAccountsParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}

	accounts, err := s.cachedAccounts(ctx, orDefaultBudget(p.BudgetID))
	if err != nil {
		return nil, err
	}

	views := make([]accountView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, toAccountView(a))
	}
	return map[string]any{"accounts": views}, nil
}

type getBudgetsParams struct{}

// getBudgets lists the budgets the token can reach, so callers can pick
// a budget_id for everything else.
func (s *Service) getBudgets(ctx context.Context, raw json.RawMessage) (any, error) {
	var p getBudgetsParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}

	budgets, err := s.api.GetBudgets(ctx)
	if err != nil {
		return nil, err
	}

	type budgetView struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		LastModified string `json:"last_modified_on,omitempty"`
		Currency     string `json:"currency,omitempty"`
	}
	views := make([]budgetView, 0, len(budgets))
	for _, b := range budgets {
		views = append(views, budgetView{
			ID:           b.ID,
			Name:         b.Name,
			LastModified: b.LastModifiedOn,
			Currency:     b.CurrencyFormat.ISOCode,
		})
	}
	return map[string]any{"budgets": views}, nil
}

type healthCheckParams struct{}

// healthCheck verifies credentials and connectivity with a single
// user-info request.
func (s *Service) healthCheck(ctx context.Context, raw json.RawMessage) (any, error) {
	var p healthCheckParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}

	userID, err := s.api.CheckAuth(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{"status": "ok", "user_id": userID}, nil
}
