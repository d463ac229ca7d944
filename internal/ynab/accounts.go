package ynab

import (
	"context"
	"fmt"

	"bilancio/internal/core"
)

type accountsEnvelope struct {
	Data struct {
		Accounts []core.Account `json:"accounts"`
	} `json:"data"`
}

// GetAccounts lists the budget's accounts, skipping deleted ones.
func (c *Client) GetAccounts(ctx context.Context, budgetID string) ([]core.Account, error) {
	if budgetID == "" {
		return nil, fmt.Errorf("get accounts: budget ID is required")
	}

	var env accountsEnvelope
	if err := c.do(ctx, "GET", "/budgets/"+budgetID+"/accounts", nil, nil, &env); err != nil {
		return nil, fmt.Errorf("get accounts: %w", err)
	}

	accounts := make([]core.Account, 0, len(env.Data.Accounts))
	for _, a := range env.Data.Accounts {
		if a.Deleted {
			continue
		}
		accounts = append(accounts, a)
	}
	return accounts, nil
}
