package sheets

import "bilancio/internal/core"

// buildRows renders a summary as sheet rows: a title row, a header row,
// one row per bucket and a closing total row. Amounts use the two-place
// display form so the sheet parses them as numbers.
func buildRows(title string, summary core.SpendingSummary) [][]any {
	rows := [][]any{
		{title},
		{"Period", "Category", "Total", "Transactions"},
	}
	for _, b := range summary.Buckets {
		rows = append(rows, []any{
			b.Period,
			b.Category,
			b.Total.DisplayString(),
			b.Count,
		})
	}
	rows = append(rows, []any{"", "Total", summary.Total().DisplayString(), ""})
	return rows
}
