package ynab

import (
	"context"
	"fmt"

	"bilancio/internal/core"
)

type budgetsEnvelope struct {
	Data struct {
		Budgets []core.Budget `json:"budgets"`
	} `json:"data"`
}

type userEnvelope struct {
	Data struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	} `json:"data"`
}

// GetBudgets lists all budgets for the authenticated user.
func (c *Client) GetBudgets(ctx context.Context) ([]core.Budget, error) {
	var env budgetsEnvelope
	if err := c.do(ctx, "GET", "/budgets", nil, nil, &env); err != nil {
		return nil, fmt.Errorf("get budgets: %w", err)
	}
	return env.Data.Budgets, nil
}

// CheckAuth verifies credential validity and connectivity by fetching
// the authenticated user. Returns the user ID.
func (c *Client) CheckAuth(ctx context.Context) (string, error) {
	var env userEnvelope
	if err := c.do(ctx, "GET", "/user", nil, nil, &env); err != nil {
		return "", fmt.Errorf("check auth: %w", err)
	}
	return env.Data.User.ID, nil
}

// BudgetSummary is the month snapshot derived from the category
// listing: exact integer totals plus the per-category rows they were
// summed from.
type BudgetSummary struct {
	Month      string                  `json:"month"`
	Budgeted   core.Milliunits         `json:"budgeted"`
	Activity   core.Milliunits         `json:"activity"`
	Balance    core.Milliunits         `json:"balance"`
	Categories []BudgetSummaryCategory `json:"categories"`
}

type BudgetSummaryCategory struct {
	CategoryGroup string          `json:"category_group"`
	CategoryName  string          `json:"category_name"`
	Budgeted      core.Milliunits `json:"budgeted"`
	Activity      core.Milliunits `json:"activity"`
	Balance       core.Milliunits `json:"balance"`
}

// GetBudgetSummary sums budgeted, activity and balance across all
// visible categories. Totals are accumulated as integers; hidden and
// deleted categories are skipped.
func (c *Client) GetBudgetSummary(ctx context.Context, budgetID, month string) (BudgetSummary, error) {
	groups, err := c.GetCategories(ctx, budgetID)
	if err != nil {
		return BudgetSummary{}, fmt.Errorf("get budget summary: %w", err)
	}

	summary := BudgetSummary{Month: month}
	for _, group := range groups {
		if group.Hidden || group.Deleted {
			continue
		}
		for _, cat := range group.Categories {
			if cat.Hidden || cat.Deleted {
				continue
			}
			summary.Budgeted += cat.Budgeted
			summary.Activity += cat.Activity
			summary.Balance += cat.Balance
			summary.Categories = append(summary.Categories, BudgetSummaryCategory{
				CategoryGroup: group.Name,
				CategoryName:  cat.Name,
				Budgeted:      cat.Budgeted,
				Activity:      cat.Activity,
				Balance:       cat.Balance,
			})
		}
	}
	return summary, nil
}
