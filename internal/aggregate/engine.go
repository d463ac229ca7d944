// Package aggregate turns paginated transaction streams into grouped
// spending summaries without retaining the transactions themselves:
// memory is bounded by the number of distinct (category, period)
// buckets, not by transaction count.
package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"bilancio/internal/core"
)

// Pager yields one page of transactions per Next call until exhausted.
type Pager interface {
	HasMore() bool
	Next(ctx context.Context) ([]core.Transaction, error)
}

// Filter selects which transactions feed an aggregation. All fields are
// applied remotely by the source.
type Filter struct {
	BudgetID   string
	SinceDate  core.Date
	UntilDate  core.Date
	AccountID  string
	CategoryID string
	Search     string
}

// Source produces a fresh pager for a filter. Aggregations always
// consume an entire sequence; a pager is never reused.
type Source interface {
	Pages(filter Filter) (Pager, error)
}

// uncategorized labels transactions with no category reference.
const uncategorized = "(uncategorized)"

type Engine struct {
	src Source
}

func NewEngine(src Source) *Engine {
	return &Engine{src: src}
}

// Summarize consumes the full transaction sequence for the filter and
// groups it by (category, period) at the requested granularity.
// Deleted transactions are skipped; totals are exact integer sums. A
// source failure propagates verbatim, never as a partial summary.
func (e *Engine) Summarize(ctx context.Context, filter Filter, granularity core.Granularity) (core.SpendingSummary, error) {
	if !granularity.Valid() {
		return core.SpendingSummary{}, fmt.Errorf("invalid granularity %q", granularity)
	}

	pager, err := e.src.Pages(filter)
	if err != nil {
		return core.SpendingSummary{}, err
	}

	acc := newAccumulator(granularity)
	var count int
	for pager.HasMore() {
		txns, err := pager.Next(ctx)
		if err != nil {
			return core.SpendingSummary{}, err
		}
		for _, txn := range txns {
			acc.add(txn)
		}
		count += len(txns)
	}

	summary := acc.summary()
	slog.DebugContext(ctx, "Built spending summary",
		"component", "aggregate",
		"transaction_count", count,
		"bucket_count", len(summary.Buckets))
	return summary, nil
}

// CompareYears summarizes the union of the two years at year
// granularity and derives per-category deltas from exactly the two
// compared years' totals. When the earlier year has no spending for a
// category, the delta is flagged NoPrior instead of dividing by zero.
func (e *Engine) CompareYears(ctx context.Context, budgetID string, yearA, yearB int, categoryID string) (core.YearComparison, error) {
	if yearA == yearB {
		return core.YearComparison{}, fmt.Errorf("years to compare must differ: %d", yearA)
	}

	first, last := yearA, yearB
	if first > last {
		first, last = last, first
	}

	filter := Filter{
		BudgetID:   budgetID,
		SinceDate:  core.NewDate(first, 1, 1),
		UntilDate:  core.NewDate(last, 12, 31),
		CategoryID: categoryID,
	}
	return e.compareWithFilter(ctx, filter, yearA, yearB)
}

func (e *Engine) compareWithFilter(ctx context.Context, filter Filter, yearA, yearB int) (core.YearComparison, error) {
	summary, err := e.Summarize(ctx, filter, core.GranularityYear)
	if err != nil {
		return core.YearComparison{}, err
	}

	periodA := fmt.Sprintf("%04d", yearA)
	periodB := fmt.Sprintf("%04d", yearB)

	type pair struct{ a, b core.Milliunits }
	totals := map[string]*pair{}
	var order []string
	for _, b := range summary.Buckets {
		if b.Period != periodA && b.Period != periodB {
			continue
		}
		p, ok := totals[b.Category]
		if !ok {
			p = &pair{}
			totals[b.Category] = p
			order = append(order, b.Category)
		}
		if b.Period == periodA {
			p.a += b.Total
		} else {
			p.b += b.Total
		}
	}
	sort.Strings(order)

	cmp := core.YearComparison{YearA: yearA, YearB: yearB}
	for _, category := range order {
		p := totals[category]
		delta := core.YearDelta{
			Category: category,
			TotalA:   p.a,
			TotalB:   p.b,
			Delta:    p.b - p.a,
		}
		if p.a == 0 {
			delta.NoPrior = true
		} else {
			delta.Percent = float64(delta.Delta) / float64(p.a) * 100
		}
		cmp.Categories = append(cmp.Categories, delta)
	}
	return cmp, nil
}

// accumulator holds the running totals per bucket. Only totals and
// counts are retained, never transactions.
type accumulator struct {
	granularity core.Granularity
	totals      map[core.Bucket]*bucketState
}

type bucketState struct {
	total core.Milliunits
	count int
}

func newAccumulator(granularity core.Granularity) *accumulator {
	return &accumulator{
		granularity: granularity,
		totals:      map[core.Bucket]*bucketState{},
	}
}

func (a *accumulator) add(txn core.Transaction) {
	if txn.Deleted {
		return
	}
	category := txn.CategoryName
	if category == "" {
		category = uncategorized
	}
	key := core.Bucket{Category: category, Period: core.PeriodOf(txn.Date, a.granularity)}
	state, ok := a.totals[key]
	if !ok {
		state = &bucketState{}
		a.totals[key] = state
	}
	state.total += txn.Amount
	state.count++
}

func (a *accumulator) merge(s core.SpendingSummary) {
	for _, b := range s.Buckets {
		state, ok := a.totals[b.Bucket]
		if !ok {
			state = &bucketState{}
			a.totals[b.Bucket] = state
		}
		state.total += b.Total
		state.count += b.Count
	}
}

func (a *accumulator) summary() core.SpendingSummary {
	buckets := make([]core.BucketTotal, 0, len(a.totals))
	for key, state := range a.totals {
		buckets = append(buckets, core.BucketTotal{
			Bucket: key,
			Total:  state.total,
			Count:  state.count,
		})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Period != buckets[j].Period {
			return buckets[i].Period < buckets[j].Period
		}
		return buckets[i].Category < buckets[j].Category
	})
	return core.SpendingSummary{Granularity: a.granularity, Buckets: buckets}
}

// Merge combines summaries built from disjoint partitions of the same
// transaction set. Aggregation is order-independent, so the result
// equals a single summary over the whole set.
func Merge(granularity core.Granularity, parts ...core.SpendingSummary) core.SpendingSummary {
	acc := newAccumulator(granularity)
	for _, part := range parts {
		acc.merge(part)
	}
	return acc.summary()
}
