// Package dashboard contains the pure computation layer of the service:
// time-series bucketing, progress and breakdown math, the cross-domain
// activity feed, and role-based view assembly. Every function here is a
// deterministic function of its inputs (callers inject the clock) so the
// whole layer can be exercised without a store or a network.
package dashboard

import (
	"time"

	"github.com/shopspring/decimal"

	"kindra/internal/core"
)

// TrendWindowDays is the default trailing window for donation trends.
const TrendWindowDays = 14

// SeriesPoint is one calendar-day bucket of a time series.
type SeriesPoint struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}

// BucketByDay distributes records over a trailing window of windowDays UTC
// calendar days ending today (inclusive), oldest bucket first. Records whose
// day falls outside the window are silently excluded; days without records
// produce a zero-valued bucket, never a gap. The result always has exactly
// windowDays entries.
//
// Day boundaries are UTC on purpose: the upstream stores timestamps in UTC
// and local-midnight bucketing shifts donations across days depending on
// the server's timezone.
func BucketByDay[T any](
	records []T,
	windowDays int,
	now time.Time,
	amountOf func(T) decimal.Decimal,
	dateOf func(T) time.Time,
) []SeriesPoint {
	if windowDays <= 0 {
		return []SeriesPoint{}
	}

	today := dayOf(now)
	points := make([]SeriesPoint, windowDays)
	index := make(map[time.Time]int, windowDays)
	for i := 0; i < windowDays; i++ {
		day := today.AddDate(0, 0, i-(windowDays-1))
		points[i] = SeriesPoint{Label: day.Format("Jan 2"), Value: core.ZeroAmount()}
		index[day] = i
	}

	for _, r := range records {
		ts := dateOf(r)
		if ts.IsZero() {
			continue
		}
		i, ok := index[dayOf(ts)]
		if !ok {
			continue
		}
		points[i].Value = points[i].Value.Add(amountOf(r))
	}

	return points
}

// DonationTrends buckets completed-or-not donations by day, preferring the
// donation date and falling back to the record's creation time.
func DonationTrends(donations []core.Donation, windowDays int, now time.Time) []SeriesPoint {
	return BucketByDay(donations, windowDays, now,
		func(d core.Donation) decimal.Decimal { return d.Amount.Decimal },
		func(d core.Donation) time.Time {
			if !d.DonatedAt.IsZero() {
				return d.DonatedAt.Time
			}
			return d.CreatedAt.Time
		})
}

// dayOf truncates t to its UTC calendar day.
func dayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
