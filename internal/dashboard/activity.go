package dashboard

import (
	"fmt"
	"sort"
	"time"

	"kindra/internal/core"
)

// Activity event types. The type doubles as the id prefix, which is what
// keeps ids unique across collections that share numeric id spaces.
const (
	ActivityDonation  = "donation"
	ActivityVolunteer = "volunteer"
	ActivityCase      = "case"
	ActivityCampaign  = "campaign"
)

// DefaultFeedLimit caps the merged feed shown on the overview.
const DefaultFeedLimit = 6

// PerSourceCap limits how many records one source may contribute before the
// global merge, so one chatty collection cannot starve the others.
const PerSourceCap = 5

// ActivityEvent is one row of the merged cross-domain feed. Events are
// derived transiently from the snapshot and rebuilt on every refresh.
type ActivityEvent struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// ActivitySource is one collection's mapped contribution to the feed.
// Limit caps how many of its events survive the merge; zero means all.
type ActivitySource struct {
	Events []ActivityEvent
	Limit  int
}

// MergeActivity merges the per-source events into one feed: each source is
// capped to its limit (taking its first entries, i.e. the upstream's own
// relevance order), missing timestamps are pinned to now, and the result is
// sorted newest first with input order breaking ties, then truncated to
// limit. Two calls with identical inputs and the same now yield identical
// sequences.
func MergeActivity(sources []ActivitySource, limit int, now time.Time) []ActivityEvent {
	var merged []ActivityEvent
	for _, src := range sources {
		events := src.Events
		if src.Limit > 0 && len(events) > src.Limit {
			events = events[:src.Limit]
		}
		for _, ev := range events {
			if ev.Timestamp.IsZero() {
				ev.Timestamp = now
			}
			merged = append(merged, ev)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.After(merged[j].Timestamp)
	})

	if limit >= 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// DonationEvents maps donations to feed events.
func DonationEvents(donations []core.Donation) []ActivityEvent {
	events := make([]ActivityEvent, 0, len(donations))
	for _, d := range donations {
		events = append(events, ActivityEvent{
			ID:    fmt.Sprintf("%s-%s", ActivityDonation, d.ID),
			Type:  ActivityDonation,
			Title: "New Donation Received",
			Description: fmt.Sprintf("%s donated KES %s to %s",
				d.DisplayDonor(), d.Amount.String(), d.DisplayCampaign()),
			Timestamp: d.DonatedAt.Time,
		})
	}
	return events
}

// VolunteerEvents maps volunteer records to feed events.
func VolunteerEvents(volunteers []core.Volunteer) []ActivityEvent {
	events := make([]ActivityEvent, 0, len(volunteers))
	for _, v := range volunteers {
		events = append(events, ActivityEvent{
			ID:    fmt.Sprintf("%s-%s", ActivityVolunteer, v.ID),
			Type:  ActivityVolunteer,
			Title: "Volunteer Update",
			Description: fmt.Sprintf("%s status: %s",
				core.OrDefault(v.FullName, "Unnamed"), core.OrDefault(v.Status, "Unknown")),
			Timestamp: v.CreatedAt.Time,
		})
	}
	return events
}

// CaseEvents maps case records to feed events.
func CaseEvents(cases []core.Case) []ActivityEvent {
	events := make([]ActivityEvent, 0, len(cases))
	for _, c := range cases {
		events = append(events, ActivityEvent{
			ID:    fmt.Sprintf("%s-%s", ActivityCase, c.ID),
			Type:  ActivityCase,
			Title: "New Case Added",
			Description: fmt.Sprintf("Case %s for %s",
				core.OrDefault(c.CaseNumber, "Unknown"), core.OrDefault(c.ChildName, "Unnamed")),
			Timestamp: c.CreatedAt.Time,
		})
	}
	return events
}

// RecentActivity assembles the overview feed from the snapshot: all
// donations, plus capped volunteer and case contributions, merged and
// truncated to DefaultFeedLimit.
func RecentActivity(snap core.Snapshot, now time.Time) []ActivityEvent {
	return MergeActivity([]ActivitySource{
		{Events: DonationEvents(snap.Donations)},
		{Events: VolunteerEvents(snap.Volunteers), Limit: PerSourceCap},
		{Events: CaseEvents(snap.Cases), Limit: PerSourceCap},
	}, DefaultFeedLimit, now)
}
