package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"bilancio/internal/aggregate"
	"bilancio/internal/core"
)

type spendingSummaryParams struct {
	BudgetID    string `json:"budget_id"`
	Granularity string `json:"granularity,omitempty"`
	SinceDate   string `json:"since_date,omitempty"`
	UntilDate   string `json:"until_date,omitempty"`
	AccountID   string `json:"account_id,omitempty"`
	CategoryID  string `json:"category_id,omitempty"`
	Search      string `json:"search,omitempty"`
}

func (p spendingSummaryParams) aggregateFilter() (aggregate.Filter, core.Granularity, error) {
	granularity := core.Granularity(p.Granularity)
	if granularity == "" {
		granularity = core.GranularityMonth
	}
	if !granularity.Valid() {
		return aggregate.Filter{}, "", badParams(fmt.Errorf("invalid granularity %q", p.Granularity))
	}

	since, err := parseOptionalDate(p.SinceDate, "since_date")
	if err != nil {
		return aggregate.Filter{}, "", badParams(err)
	}
	until, err := parseOptionalDate(p.UntilDate, "until_date")
	if err != nil {
		return aggregate.Filter{}, "", badParams(err)
	}
	if p.AccountID != "" && p.CategoryID != "" {
		return aggregate.Filter{}, "", badParams(errors.New("account_id and category_id are mutually exclusive"))
	}

	return aggregate.Filter{
		BudgetID:   orDefaultBudget(p.BudgetID),
		SinceDate:  since,
		UntilDate:  until,
		AccountID:  p.AccountID,
		CategoryID: p.CategoryID,
		Search:     p.Search,
	}, granularity, nil
}

// getCategorySpendingSummary aggregates the matching transactions by
// category and period.
func (s *Service) getCategorySpendingSummary(ctx context.Context, raw json.RawMessage) (any, error) {
	var p spendingSummaryParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	filter, granularity, err := p.aggregateFilter()
	if err != nil {
		return nil, err
	}

	summary, err := s.engine.Summarize(ctx, filter, granularity)
	if err != nil {
		return nil, err
	}
	return map[string]any{"summary": toSummaryView(summary)}, nil
}

type compareYearsParams struct {
	BudgetID   string `json:"budget_id"`
	YearA      int    `json:"year_a"`
	YearB      int    `json:"year_b"`
	CategoryID string `json:"category_id,omitempty"`
}

// compareSpendingByYear computes per-category deltas between two years.
func (s *Service) compareSpendingByYear(ctx context.Context, raw json.RawMessage) (any, error) {
	var p compareYearsParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	if p.YearA <= 0 || p.YearB <= 0 {
		return nil, badParams(errors.New("year_a and year_b are required"))
	}
	if p.YearA == p.YearB {
		return nil, badParams(errors.New("year_a and year_b must differ"))
	}

	cmp, err := s.engine.CompareYears(ctx, orDefaultBudget(p.BudgetID), p.YearA, p.YearB, p.CategoryID)
	if err != nil {
		return nil, err
	}
	return map[string]any{"comparison": toComparisonView(cmp)}, nil
}

type exportSummaryParams struct {
	spendingSummaryParams
	// Title labels the exported sheet rows; defaults to the date range.
	Title string `json:"title,omitempty"`
}

// exportSummary aggregates like getCategorySpendingSummary, then writes
// the buckets to the configured spreadsheet.
func (s *Service) exportSummary(ctx context.Context, raw json.RawMessage) (any, error) {
	var p exportSummaryParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	filter, granularity, err := p.aggregateFilter()
	if err != nil {
		return nil, err
	}

	summary, err := s.engine.Summarize(ctx, filter, granularity)
	if err != nil {
		return nil, err
	}

	title := p.Title
	if title == "" {
		title = fmt.Sprintf("Spending by %s", granularity)
	}
	rows, err := s.exporter.Export(ctx, title, summary)
	if err != nil {
		return nil, err
	}
	return map[string]any{"exported_rows": rows, "title": title}, nil
}
