package tools

import (
	"context"
	"encoding/json"
	"errors"

	"bilancio/internal/core"
	"bilancio/internal/ynab"
)

type getCategoriesParams struct {
	BudgetID string `json:"budget_id"`
}

// getCategories lists category groups with their categories.
func (s *Service) getCategories(ctx context.Context, raw json.RawMessage) (any, error) {
	var p getCategoriesParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}

	groups, err := s.cachedCategories(ctx, orDefaultBudget(p.BudgetID))
	if err != nil {
		return nil, err
	}
	return map[string]any{"category_groups": toCategoryGroupViews(groups)}, nil
}

type getCategoryParams struct {
	BudgetID   string `json:"budget_id"`
	CategoryID string `json:"category_id"`
}

// getCategory fetches one category with its budgeted, activity and
// balance amounts.
func (s *Service) getCategory(ctx context.Context, raw json.RawMessage) (any, error) {
	var p getCategoryParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	if p.CategoryID == "" {
		return nil, badParams(errors.New("category_id is required"))
	}

	category, err := s.api.GetCategory(ctx, orDefaultBudget(p.BudgetID), p.CategoryID)
	if err != nil {
		return nil, err
	}
	return map[string]any{"category": toCategoryView(category)}, nil
}

type getBudgetSummaryParams struct {
	BudgetID string `json:"budget_id"`
	Month    string `json:"month"`
}

// getBudgetSummary sums budgeted, activity and balance across visible
// categories for one month.
func (s *Service) getBudgetSummary(ctx context.Context, raw json.RawMessage) (any, error) {
	var p getBudgetSummaryParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	month := p.Month
	if month == "" {
		month = "current"
	} else if _, err := core.ParseDate(month); err != nil {
		return nil, badParams(err)
	}

	summary, err := s.api.GetBudgetSummary(ctx, orDefaultBudget(p.BudgetID), month)
	if err != nil {
		return nil, err
	}
	return map[string]any{"summary": toBudgetSummaryView(summary)}, nil
}

type updateCategoryParams struct {
	BudgetID   string  `json:"budget_id"`
	CategoryID string  `json:"category_id"`
	Name       *string `json:"name,omitempty"`
	Note       *string `json:"note,omitempty"`
}

// updateCategory renames a category or rewrites its note.
func (s *Service) updateCategory(ctx context.Context, raw json.RawMessage) (any, error) {
	var p updateCategoryParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	if p.CategoryID == "" {
		return nil, badParams(errors.New("category_id is required"))
	}
	params := ynab.UpdateCategoryParams{Name: p.Name, Note: p.Note}
	if err := params.Validate(); err != nil {
		return nil, badParams(err)
	}

	budgetID := orDefaultBudget(p.BudgetID)
	category, err := s.api.UpdateCategory(ctx, budgetID, p.CategoryID, params)
	if err != nil {
		return nil, err
	}
	s.invalidateCategories(budgetID)
	return map[string]any{"category": toCategoryView(category)}, nil
}

type updateCategoryBudgetParams struct {
	BudgetID   string `json:"budget_id"`
	CategoryID string `json:"category_id"`
	Month      string `json:"month"`
	// Budgeted is the new budgeted amount as a decimal string.
	Budgeted string `json:"budgeted"`
}

// updateCategoryBudget sets the budgeted amount for a category in one
// month.
func (s *Service) updateCategoryBudget(ctx context.Context, raw json.RawMessage) (any, error) {
	var p updateCategoryBudgetParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	if p.CategoryID == "" {
		return nil, badParams(errors.New("category_id is required"))
	}
	if _, err := core.ParseDate(p.Month); err != nil {
		return nil, badParams(err)
	}
	budgeted, err := core.ParseAmount(p.Budgeted)
	if err != nil {
		return nil, badParams(err)
	}

	budgetID := orDefaultBudget(p.BudgetID)
	category, err := s.api.UpdateMonthCategory(ctx, budgetID, p.Month, p.CategoryID, budgeted)
	if err != nil {
		return nil, err
	}
	s.invalidateCategories(budgetID)
	return map[string]any{"category": toCategoryView(category)}, nil
}

type moveCategoryFundsParams struct {
	BudgetID       string `json:"budget_id"`
	Month          string `json:"month"`
	FromCategoryID string `json:"from_category_id"`
	ToCategoryID   string `json:"to_category_id"`
	// Amount is the positive decimal amount to move.
	Amount string `json:"amount"`
}

// moveCategoryFunds shifts budgeted funds between two categories in one
// month.
func (s *Service) moveCategoryFunds(ctx context.Context, raw json.RawMessage) (any, error) {
	var p moveCategoryFundsParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	if p.FromCategoryID == "" || p.ToCategoryID == "" {
		return nil, badParams(errors.New("from_category_id and to_category_id are required"))
	}
	if _, err := core.ParseDate(p.Month); err != nil {
		return nil, badParams(err)
	}
	amount, err := core.ParseAmount(p.Amount)
	if err != nil {
		return nil, badParams(err)
	}
	if amount <= 0 {
		return nil, badParams(errors.New("amount must be positive"))
	}

	budgetID := orDefaultBudget(p.BudgetID)
	move, err := s.api.MoveCategoryFunds(ctx, budgetID, p.Month, p.FromCategoryID, p.ToCategoryID, amount)
	if err != nil {
		return nil, err
	}
	s.invalidateCategories(budgetID)
	return map[string]any{"result": fundsMoveView{
		From:        toCategoryView(move.From),
		To:          toCategoryView(move.To),
		AmountMoved: move.AmountMoved.DisplayString(),
	}}, nil
}
