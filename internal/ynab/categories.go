package ynab

import (
	"context"
	"errors"
	"fmt"

	"bilancio/internal/apierr"
	"bilancio/internal/core"
)

type categoriesEnvelope struct {
	Data struct {
		CategoryGroups []core.CategoryGroup `json:"category_groups"`
	} `json:"data"`
}

type categoryEnvelope struct {
	Data struct {
		Category core.Category `json:"category"`
	} `json:"data"`
}

// GetCategories lists all category groups with their categories.
func (c *Client) GetCategories(ctx context.Context, budgetID string) ([]core.CategoryGroup, error) {
	if budgetID == "" {
		return nil, errors.New("get categories: budget ID is required")
	}

	var env categoriesEnvelope
	if err := c.do(ctx, "GET", "/budgets/"+budgetID+"/categories", nil, nil, &env); err != nil {
		return nil, fmt.Errorf("get categories: %w", err)
	}
	return env.Data.CategoryGroups, nil
}

// GetCategory fetches a single category by ID.
func (c *Client) GetCategory(ctx context.Context, budgetID, categoryID string) (core.Category, error) {
	if budgetID == "" || categoryID == "" {
		return core.Category{}, errors.New("get category: budget and category IDs are required")
	}

	var env categoryEnvelope
	if err := c.do(ctx, "GET", "/budgets/"+budgetID+"/categories/"+categoryID, nil, nil, &env); err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return env.Data.Category, nil
}

// UpdateCategoryParams carries the mutable category fields. Nil fields
// are left unchanged remotely.
type UpdateCategoryParams struct {
	Name *string `json:"name,omitempty"`
	Note *string `json:"note,omitempty"`
}

// Validate checks the params before any network call.
func (p UpdateCategoryParams) Validate() error {
	if p.Name == nil && p.Note == nil {
		return errors.New("nothing to update")
	}
	if p.Name != nil && *p.Name == "" {
		return errors.New("category name cannot be empty")
	}
	return nil
}

// UpdateCategory changes a category's name or note and returns the new
// remote state.
func (c *Client) UpdateCategory(ctx context.Context, budgetID, categoryID string, params UpdateCategoryParams) (core.Category, error) {
	if budgetID == "" || categoryID == "" {
		return core.Category{}, errors.New("update category: budget and category IDs are required")
	}
	if err := params.Validate(); err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}

	body := map[string]UpdateCategoryParams{"category": params}
	var env categoryEnvelope
	if err := c.do(ctx, "PATCH", "/budgets/"+budgetID+"/categories/"+categoryID, nil, body, &env); err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	return env.Data.Category, nil
}

// UpdateMonthCategory sets the budgeted amount for a category in the
// given month ("YYYY-MM-DD", first of month) and returns the new state.
func (c *Client) UpdateMonthCategory(ctx context.Context, budgetID, month, categoryID string, budgeted core.Milliunits) (core.Category, error) {
	if budgetID == "" || categoryID == "" {
		return core.Category{}, errors.New("update month category: budget and category IDs are required")
	}
	if _, err := core.ParseDate(month); err != nil {
		return core.Category{}, fmt.Errorf("update month category: %w", err)
	}

	body := map[string]map[string]core.Milliunits{
		"category": {"budgeted": budgeted},
	}
	var env categoryEnvelope
	path := "/budgets/" + budgetID + "/months/" + month + "/categories/" + categoryID
	if err := c.do(ctx, "PATCH", path, nil, body, &env); err != nil {
		return core.Category{}, fmt.Errorf("update month category: %w", err)
	}
	return env.Data.Category, nil
}

// FundsMove is the result of moving budgeted funds between two
// categories in one month.
type FundsMove struct {
	From        core.Category   `json:"from_category"`
	To          core.Category   `json:"to_category"`
	AmountMoved core.Milliunits `json:"amount_moved"`
}

// MoveCategoryFunds subtracts amount from one category's budgeted value
// and adds it to another's, in the given month. The two writes are not
// atomic remotely; a failure between them leaves the source already
// reduced, which the returned error makes explicit.
func (c *Client) MoveCategoryFunds(ctx context.Context, budgetID, month, fromID, toID string, amount core.Milliunits) (FundsMove, error) {
	if fromID == "" || toID == "" {
		return FundsMove{}, errors.New("move category funds: both category IDs are required")
	}
	if fromID == toID {
		return FundsMove{}, errors.New("move category funds: source and destination are the same category")
	}
	if amount <= 0 {
		return FundsMove{}, fmt.Errorf("move category funds: %w: amount must be positive", core.ErrInvalidAmount)
	}

	groups, err := c.GetCategories(ctx, budgetID)
	if err != nil {
		return FundsMove{}, fmt.Errorf("move category funds: %w", err)
	}

	budgeted := map[string]core.Milliunits{}
	for _, group := range groups {
		for _, cat := range group.Categories {
			if cat.ID == fromID || cat.ID == toID {
				budgeted[cat.ID] = cat.Budgeted
			}
		}
	}
	if _, ok := budgeted[fromID]; !ok {
		return FundsMove{}, &apierr.Error{Kind: apierr.NotFound, Detail: "source category not found"}
	}
	if _, ok := budgeted[toID]; !ok {
		return FundsMove{}, &apierr.Error{Kind: apierr.NotFound, Detail: "destination category not found"}
	}

	from, err := c.UpdateMonthCategory(ctx, budgetID, month, fromID, budgeted[fromID]-amount)
	if err != nil {
		return FundsMove{}, fmt.Errorf("move category funds: reduce source: %w", err)
	}
	to, err := c.UpdateMonthCategory(ctx, budgetID, month, toID, budgeted[toID]+amount)
	if err != nil {
		return FundsMove{}, fmt.Errorf("move category funds: source reduced but destination update failed: %w", err)
	}

	return FundsMove{From: from, To: to, AmountMoved: amount}, nil
}
