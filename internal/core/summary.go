package core

import "fmt"

const (
	GranularityMonth Granularity = "month"
	GranularityYear  Granularity = "year"
)

// Granularity selects the period width of a spending summary bucket.
type Granularity string

// Valid reports whether g is a supported granularity.
func (g Granularity) Valid() bool {
	return g == GranularityMonth || g == GranularityYear
}

// Bucket is the (category, period) key transactions are grouped under.
type Bucket struct {
	Category string
	Period   string // "2024-01" at month granularity, "2024" at year
}

// PeriodOf derives the bucket period for a date at the given granularity.
func PeriodOf(d Date, g Granularity) string {
	if g == GranularityYear {
		return fmt.Sprintf("%04d", d.Year())
	}
	return fmt.Sprintf("%04d-%02d", d.Year(), d.Month())
}

// BucketTotal is the aggregate for one bucket: exact integer sum and
// transaction count.
type BucketTotal struct {
	Bucket
	Total Milliunits
	Count int
}

// SpendingSummary is the result of grouping a transaction stream by
// (category, period). Buckets are ordered by period, then category.
// Immutable once returned.
type SpendingSummary struct {
	Granularity Granularity
	Buckets     []BucketTotal
}

// Total sums all buckets.
func (s SpendingSummary) Total() Milliunits {
	var total Milliunits
	for _, b := range s.Buckets {
		total += b.Total
	}
	return total
}

// YearDelta compares one category's totals across two years. When the
// earlier year has no spending, Percent is meaningless and NoPrior is
// set instead.
type YearDelta struct {
	Category string
	TotalA   Milliunits
	TotalB   Milliunits
	Delta    Milliunits
	Percent  float64
	NoPrior  bool
}

// YearComparison is the per-category year-over-year result. Deltas are
// computed only from the two compared years' totals.
type YearComparison struct {
	YearA      int
	YearB      int
	Categories []YearDelta
}
