package dashboard

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"kindra/internal/core"
)

var testNow = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

func donation(id string, amount int64, donatedAt time.Time) core.Donation {
	return core.Donation{
		ID:        id,
		Amount:    core.AmountFromInt(amount),
		DonatedAt: core.Timestamp{Time: donatedAt},
	}
}

func TestBucketByDayCount(t *testing.T) {
	for _, windowDays := range []int{1, 7, 14, 30} {
		points := DonationTrends(nil, windowDays, testNow)
		if len(points) != windowDays {
			t.Errorf("windowDays=%d: got %d buckets, want %d", windowDays, len(points), windowDays)
		}
		for _, p := range points {
			if !p.Value.IsZero() {
				t.Errorf("windowDays=%d: empty input produced non-zero bucket %s", windowDays, p.Value)
			}
		}
	}
}

func TestBucketByDayAssignment(t *testing.T) {
	donations := []core.Donation{
		donation("d1", 5000, testNow),
		donation("d2", 3000, testNow.AddDate(0, 0, -1)),
	}

	points := DonationTrends(donations, 14, testNow)
	if len(points) != 14 {
		t.Fatalf("got %d buckets, want 14", len(points))
	}

	// Oldest first: today is the last bucket, yesterday the one before.
	if got := points[13].Value; !got.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("today bucket = %s, want 5000", got)
	}
	if got := points[12].Value; !got.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("yesterday bucket = %s, want 3000", got)
	}
	for i := 0; i < 12; i++ {
		if !points[i].Value.IsZero() {
			t.Errorf("bucket %d (%s) = %s, want 0", i, points[i].Label, points[i].Value)
		}
	}
}

func TestBucketByDaySumPreserved(t *testing.T) {
	donations := []core.Donation{
		donation("d1", 100, testNow),
		donation("d2", 250, testNow.AddDate(0, 0, -3)),
		donation("d3", 75, testNow.AddDate(0, 0, -13)),
		donation("d4", 9999, testNow.AddDate(0, 0, -14)), // just outside the window
		donation("d5", 1234, testNow.AddDate(0, 0, 1)),   // in the future
	}

	points := DonationTrends(donations, 14, testNow)
	sum := decimal.Zero
	for _, p := range points {
		sum = sum.Add(p.Value)
	}
	if want := decimal.NewFromInt(425); !sum.Equal(want) {
		t.Errorf("bucket sum = %s, want %s (in-window records only)", sum, want)
	}
}

func TestBucketByDayLabelsChronological(t *testing.T) {
	points := DonationTrends(nil, 5, testNow)
	want := []string{"Jun 11", "Jun 12", "Jun 13", "Jun 14", "Jun 15"}
	for i, p := range points {
		if p.Label != want[i] {
			t.Errorf("bucket %d label = %q, want %q", i, p.Label, want[i])
		}
	}
}

func TestBucketByDayUTCBoundaries(t *testing.T) {
	// 23:30 in UTC+3 is 20:30 UTC the same day; 01:00 UTC+3 is the
	// previous UTC day. Bucketing must follow the UTC calendar.
	nairobi := time.FixedZone("EAT", 3*3600)
	donations := []core.Donation{
		donation("d1", 10, time.Date(2025, 6, 15, 1, 0, 0, 0, nairobi)), // 2025-06-14 UTC
		donation("d2", 20, time.Date(2025, 6, 15, 23, 30, 0, 0, nairobi)),
	}

	points := DonationTrends(donations, 3, testNow)
	if got := points[1].Value; !got.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Jun 14 bucket = %s, want 10", got)
	}
	if got := points[2].Value; !got.Equal(decimal.NewFromInt(20)) {
		t.Errorf("Jun 15 bucket = %s, want 20", got)
	}
}

func TestBucketByDayMissingTimestampExcluded(t *testing.T) {
	donations := []core.Donation{
		{ID: "d1", Amount: core.AmountFromInt(500)}, // no dates at all
		donation("d2", 40, testNow),
	}

	points := DonationTrends(donations, 7, testNow)
	sum := decimal.Zero
	for _, p := range points {
		sum = sum.Add(p.Value)
	}
	if want := decimal.NewFromInt(40); !sum.Equal(want) {
		t.Errorf("sum = %s, want %s (dateless record excluded)", sum, want)
	}
}

func TestBucketByDayCreatedAtFallback(t *testing.T) {
	d := core.Donation{
		ID:        "d1",
		Amount:    core.AmountFromInt(60),
		CreatedAt: core.Timestamp{Time: testNow.AddDate(0, 0, -2)},
	}

	points := DonationTrends([]core.Donation{d}, 7, testNow)
	if got := points[4].Value; !got.Equal(decimal.NewFromInt(60)) {
		t.Errorf("created_at fallback bucket = %s, want 60", got)
	}
}

func TestBucketByDayZeroWindow(t *testing.T) {
	if got := DonationTrends(nil, 0, testNow); len(got) != 0 {
		t.Errorf("windowDays=0 returned %d buckets, want 0", len(got))
	}
}
