package tools

import (
	"bilancio/internal/core"
	"bilancio/internal/ynab"
)

// The view types mirror the domain types with every amount rendered as
// a decimal string. Integer milliunits never leave the service.

type accountView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	OnBudget bool   `json:"on_budget"`
	Closed   bool   `json:"closed"`
	Balance  string `json:"balance"`
}

func toAccountView(a core.Account) accountView {
	return accountView{
		ID:       a.ID,
		Name:     a.Name,
		Type:     a.Type,
		OnBudget: a.OnBudget,
		Closed:   a.Closed,
		Balance:  a.Balance.DisplayString(),
	}
}

type categoryView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Note     string `json:"note,omitempty"`
	Hidden   bool   `json:"hidden"`
	Budgeted string `json:"budgeted"`
	Activity string `json:"activity"`
	Balance  string `json:"balance"`
}

func toCategoryView(c core.Category) categoryView {
	return categoryView{
		ID:       c.ID,
		Name:     c.Name,
		Note:     c.Note,
		Hidden:   c.Hidden,
		Budgeted: c.Budgeted.DisplayString(),
		Activity: c.Activity.DisplayString(),
		Balance:  c.Balance.DisplayString(),
	}
}

type categoryGroupView struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Hidden     bool           `json:"hidden"`
	Categories []categoryView `json:"categories"`
}

func toCategoryGroupViews(groups []core.CategoryGroup) []categoryGroupView {
	out := make([]categoryGroupView, 0, len(groups))
	for _, g := range groups {
		if g.Deleted {
			continue
		}
		gv := categoryGroupView{ID: g.ID, Name: g.Name, Hidden: g.Hidden}
		for _, c := range g.Categories {
			if c.Deleted {
				continue
			}
			gv.Categories = append(gv.Categories, toCategoryView(c))
		}
		out = append(out, gv)
	}
	return out
}

type transactionView struct {
	ID           string `json:"id"`
	Date         string `json:"date"`
	Amount       string `json:"amount"`
	Memo         string `json:"memo,omitempty"`
	Cleared      string `json:"cleared"`
	Approved     bool   `json:"approved"`
	AccountName  string `json:"account_name,omitempty"`
	PayeeName    string `json:"payee_name,omitempty"`
	CategoryName string `json:"category_name,omitempty"`
}

func toTransactionView(t core.Transaction) transactionView {
	return transactionView{
		ID:           t.ID,
		Date:         t.Date.String(),
		Amount:       t.Amount.DisplayString(),
		Memo:         t.Memo,
		Cleared:      string(t.Cleared),
		Approved:     t.Approved,
		AccountName:  t.AccountName,
		PayeeName:    t.PayeeName,
		CategoryName: t.CategoryName,
	}
}

func toTransactionViews(txns []core.Transaction) []transactionView {
	out := make([]transactionView, 0, len(txns))
	for _, t := range txns {
		out = append(out, toTransactionView(t))
	}
	return out
}

type scheduledView struct {
	ID           string `json:"id"`
	DateNext     string `json:"date_next"`
	Frequency    string `json:"frequency"`
	Amount       string `json:"amount"`
	Memo         string `json:"memo,omitempty"`
	AccountName  string `json:"account_name,omitempty"`
	PayeeName    string `json:"payee_name,omitempty"`
	CategoryName string `json:"category_name,omitempty"`
}

func toScheduledView(st core.ScheduledTransaction) scheduledView {
	return scheduledView{
		ID:           st.ID,
		DateNext:     st.DateNext.String(),
		Frequency:    st.Frequency,
		Amount:       st.Amount.DisplayString(),
		Memo:         st.Memo,
		AccountName:  st.AccountName,
		PayeeName:    st.PayeeName,
		CategoryName: st.CategoryName,
	}
}

type budgetSummaryView struct {
	Month      string                      `json:"month"`
	Budgeted   string                      `json:"budgeted"`
	Activity   string                      `json:"activity"`
	Balance    string                      `json:"balance"`
	Categories []budgetSummaryCategoryView `json:"categories"`
}

type budgetSummaryCategoryView struct {
	CategoryGroup string `json:"category_group"`
	CategoryName  string `json:"category_name"`
	Budgeted      string `json:"budgeted"`
	Activity      string `json:"activity"`
	Balance       string `json:"balance"`
}

func toBudgetSummaryView(s ynab.BudgetSummary) budgetSummaryView {
	view := budgetSummaryView{
		Month:    s.Month,
		Budgeted: s.Budgeted.DisplayString(),
		Activity: s.Activity.DisplayString(),
		Balance:  s.Balance.DisplayString(),
	}
	for _, c := range s.Categories {
		view.Categories = append(view.Categories, budgetSummaryCategoryView{
			CategoryGroup: c.CategoryGroup,
			CategoryName:  c.CategoryName,
			Budgeted:      c.Budgeted.DisplayString(),
			Activity:      c.Activity.DisplayString(),
			Balance:       c.Balance.DisplayString(),
		})
	}
	return view
}

type fundsMoveView struct {
	From        categoryView `json:"from_category"`
	To          categoryView `json:"to_category"`
	AmountMoved string       `json:"amount_moved"`
}

type bucketView struct {
	Category string `json:"category"`
	Period   string `json:"period"`
	Total    string `json:"total"`
	Count    int    `json:"transaction_count"`
}

type summaryView struct {
	Granularity string       `json:"granularity"`
	Buckets     []bucketView `json:"buckets"`
	Total       string       `json:"total"`
}

func toSummaryView(s core.SpendingSummary) summaryView {
	view := summaryView{
		Granularity: string(s.Granularity),
		Buckets:     make([]bucketView, 0, len(s.Buckets)),
		Total:       s.Total().DisplayString(),
	}
	for _, b := range s.Buckets {
		view.Buckets = append(view.Buckets, bucketView{
			Category: b.Category,
			Period:   b.Period,
			Total:    b.Total.DisplayString(),
			Count:    b.Count,
		})
	}
	return view
}

type yearDeltaView struct {
	Category string   `json:"category"`
	TotalA   string   `json:"total_a"`
	TotalB   string   `json:"total_b"`
	Delta    string   `json:"delta"`
	Percent  *float64 `json:"percent_change,omitempty"`
	NoPrior  bool     `json:"no_prior_spending,omitempty"`
}

type comparisonView struct {
	YearA      int             `json:"year_a"`
	YearB      int             `json:"year_b"`
	Categories []yearDeltaView `json:"categories"`
}

func toComparisonView(c core.YearComparison) comparisonView {
	view := comparisonView{YearA: c.YearA, YearB: c.YearB}
	for _, d := range c.Categories {
		dv := yearDeltaView{
			Category: d.Category,
			TotalA:   d.TotalA.DisplayString(),
			TotalB:   d.TotalB.DisplayString(),
			Delta:    d.Delta.DisplayString(),
			NoPrior:  d.NoPrior,
		}
		if !d.NoPrior {
			percent := d.Percent
			dv.Percent = &percent
		}
		view.Categories = append(view.Categories, dv)
	}
	return view
}
