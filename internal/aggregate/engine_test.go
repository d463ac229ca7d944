package aggregate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bilancio/internal/core"
)

// fakeSource serves canned pages and remembers the filters it saw.
type fakeSource struct {
	pages   [][]core.Transaction
	err     error
	filters []Filter
}

type fakePager struct {
	pages [][]core.Transaction
	err   error
	pos   int
}

func (s *fakeSource) Pages(filter Filter) (Pager, error) {
	s.filters = append(s.filters, filter)
	return &fakePager{pages: s.pages, err: s.err}, nil
}

func (p *fakePager) HasMore() bool {
	return p.pos < len(p.pages) || (p.err != nil && p.pos == len(p.pages))
}

func (p *fakePager) Next(ctx context.Context) ([]core.Transaction, error) {
	if p.pos >= len(p.pages) {
		p.pos++
		return nil, p.err
	}
	page := p.pages[p.pos]
	p.pos++
	return page, nil
}

func txn(id, date, category string, amount core.Milliunits) core.Transaction {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Transaction{
		ID:           id,
		Date:         d,
		Amount:       amount,
		CategoryName: category,
		Cleared:      core.Cleared,
		Approved:     true,
	}
}

func TestSummarizeMonthGranularity(t *testing.T) {
	// Groceries in January: 12000, 3500 and a -1500 refund.
	src := &fakeSource{pages: [][]core.Transaction{{
		txn("t-1", "2024-01-05", "Groceries", 12000),
		txn("t-2", "2024-01-12", "Groceries", 3500),
		txn("t-3", "2024-01-20", "Groceries", -1500),
	}}}
	engine := NewEngine(src)

	summary, err := engine.Summarize(context.Background(), Filter{BudgetID: "b-1"}, core.GranularityMonth)
	require.NoError(t, err)

	require.Len(t, summary.Buckets, 1)
	bucket := summary.Buckets[0]
	assert.Equal(t, "Groceries", bucket.Category)
	assert.Equal(t, "2024-01", bucket.Period)
	assert.EqualValues(t, 14000, bucket.Total)
	assert.Equal(t, 3, bucket.Count)
}

func TestSummarizeGroupsAcrossPeriodsAndCategories(t *testing.T) {
	src := &fakeSource{pages: [][]core.Transaction{
		{
			txn("t-1", "2024-01-05", "Groceries", 10000),
			txn("t-2", "2024-02-05", "Groceries", 20000),
		},
		{
			txn("t-3", "2024-01-09", "Travel", 5000),
			txn("t-4", "2024-01-11", "", 700), // no category reference
		},
	}}
	engine := NewEngine(src)

	summary, err := engine.Summarize(context.Background(), Filter{BudgetID: "b-1"}, core.GranularityMonth)
	require.NoError(t, err)

	require.Len(t, summary.Buckets, 4)
	// Ordered by period, then category.
	assert.Equal(t, core.Bucket{Category: "(uncategorized)", Period: "2024-01"}, summary.Buckets[0].Bucket)
	assert.Equal(t, core.Bucket{Category: "Groceries", Period: "2024-01"}, summary.Buckets[1].Bucket)
	assert.Equal(t, core.Bucket{Category: "Travel", Period: "2024-01"}, summary.Buckets[2].Bucket)
	assert.Equal(t, core.Bucket{Category: "Groceries", Period: "2024-02"}, summary.Buckets[3].Bucket)
	assert.EqualValues(t, 35700, summary.Total())
}

func TestSummarizeSkipsDeleted(t *testing.T) {
	deleted := txn("t-2", "2024-01-06", "Groceries", 99999)
	deleted.Deleted = true
	src := &fakeSource{pages: [][]core.Transaction{{
		txn("t-1", "2024-01-05", "Groceries", 1000),
		deleted,
	}}}
	engine := NewEngine(src)

	summary, err := engine.Summarize(context.Background(), Filter{BudgetID: "b-1"}, core.GranularityMonth)
	require.NoError(t, err)
	require.Len(t, summary.Buckets, 1)
	assert.EqualValues(t, 1000, summary.Buckets[0].Total)
	assert.Equal(t, 1, summary.Buckets[0].Count)
}

func TestSummarizeRejectsUnknownGranularity(t *testing.T) {
	engine := NewEngine(&fakeSource{})
	_, err := engine.Summarize(context.Background(), Filter{BudgetID: "b-1"}, core.Granularity("week"))
	require.Error(t, err)
}

func TestSummarizePropagatesSourceFailure(t *testing.T) {
	src := &fakeSource{
		pages: [][]core.Transaction{{txn("t-1", "2024-01-05", "Groceries", 1000)}},
		err:   errors.New("server (503): down"),
	}
	engine := NewEngine(src)

	_, err := engine.Summarize(context.Background(), Filter{BudgetID: "b-1"}, core.GranularityMonth)
	require.Error(t, err)
	// No partial summary leaks out alongside the failure.
	assert.EqualError(t, err, "server (503): down")
}

func TestSummarizeIsPartitionInvariant(t *testing.T) {
	txns := []core.Transaction{
		txn("t-1", "2023-03-01", "Groceries", 12000),
		txn("t-2", "2023-03-08", "Travel", 90000),
		txn("t-3", "2023-04-02", "Groceries", -4000),
		txn("t-4", "2023-04-15", "Groceries", 2500),
		txn("t-5", "2023-04-15", "Travel", 1),
	}

	whole := &fakeSource{pages: [][]core.Transaction{txns}}
	full, err := NewEngine(whole).Summarize(context.Background(), Filter{BudgetID: "b"}, core.GranularityMonth)
	require.NoError(t, err)

	// Summarize each single-transaction partition independently, then
	// merge by bucket key.
	var parts []core.SpendingSummary
	for _, one := range txns {
		src := &fakeSource{pages: [][]core.Transaction{{one}}}
		part, err := NewEngine(src).Summarize(context.Background(), Filter{BudgetID: "b"}, core.GranularityMonth)
		require.NoError(t, err)
		parts = append(parts, part)
	}

	merged := Merge(core.GranularityMonth, parts...)
	assert.Equal(t, full, merged)
}

func TestCompareYears(t *testing.T) {
	src := &fakeSource{pages: [][]core.Transaction{{
		txn("t-1", "2023-06-01", "Travel", 500000),
		txn("t-2", "2024-06-01", "Travel", 750000),
	}}}
	engine := NewEngine(src)

	cmp, err := engine.CompareYears(context.Background(), "b-1", 2023, 2024, "")
	require.NoError(t, err)

	require.Len(t, cmp.Categories, 1)
	travel := cmp.Categories[0]
	assert.Equal(t, "Travel", travel.Category)
	assert.EqualValues(t, 500000, travel.TotalA)
	assert.EqualValues(t, 750000, travel.TotalB)
	assert.EqualValues(t, 250000, travel.Delta)
	assert.Equal(t, 50.0, travel.Percent)
	assert.False(t, travel.NoPrior)

	// The union range covers both full years.
	require.Len(t, src.filters, 1)
	assert.Equal(t, "2023-01-01", src.filters[0].SinceDate.String())
	assert.Equal(t, "2024-12-31", src.filters[0].UntilDate.String())
}

func TestCompareYearsNoPriorSpending(t *testing.T) {
	src := &fakeSource{pages: [][]core.Transaction{{
		txn("t-1", "2024-02-01", "Hobbies", 30000),
	}}}
	engine := NewEngine(src)

	cmp, err := engine.CompareYears(context.Background(), "b-1", 2023, 2024, "")
	require.NoError(t, err)

	require.Len(t, cmp.Categories, 1)
	hobby := cmp.Categories[0]
	assert.True(t, hobby.NoPrior, "zero prior-year total must raise the sentinel, not a fault")
	assert.Zero(t, hobby.Percent)
	assert.EqualValues(t, 30000, hobby.Delta)
}

func TestCompareYearsIgnoresInterveningYears(t *testing.T) {
	src := &fakeSource{pages: [][]core.Transaction{{
		txn("t-1", "2022-02-01", "Travel", 100000),
		txn("t-2", "2023-02-01", "Travel", 999999), // between the compared years
		txn("t-3", "2024-02-01", "Travel", 150000),
	}}}
	engine := NewEngine(src)

	cmp, err := engine.CompareYears(context.Background(), "b-1", 2022, 2024, "")
	require.NoError(t, err)

	require.Len(t, cmp.Categories, 1)
	travel := cmp.Categories[0]
	assert.EqualValues(t, 100000, travel.TotalA)
	assert.EqualValues(t, 150000, travel.TotalB)
	assert.EqualValues(t, 50000, travel.Delta)
	assert.Equal(t, 50.0, travel.Percent)
}

func TestCompareYearsRejectsSameYear(t *testing.T) {
	engine := NewEngine(&fakeSource{})
	_, err := engine.CompareYears(context.Background(), "b-1", 2024, 2024, "")
	require.Error(t, err)
}
