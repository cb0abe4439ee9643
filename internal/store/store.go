// Package store holds the in-memory snapshot the dashboard reads from.
// Collections are replaced wholesale: a refresh either swaps a collection's
// slice for the new fetch result or leaves the previous one standing, so
// readers never observe a partially applied fetch.
package store

import (
	"fmt"
	"sync"
	"time"

	"kindra/internal/core"
)

// Store is the snapshot container shared by the refresh layer (writer) and
// the request handlers (readers). Last write wins per collection.
type Store struct {
	mu        sync.RWMutex
	snap      core.Snapshot
	fetchedAt map[string]time.Time

	greetedOn  string
	greetedIDs map[string]bool
}

func New() *Store {
	return &Store{
		fetchedAt:  make(map[string]time.Time),
		greetedIDs: make(map[string]bool),
	}
}

// Snapshot returns a copy of the current snapshot. Slices are cloned so a
// concurrent replace cannot show through a snapshot already handed out.
func (s *Store) Snapshot() core.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snap
	snap.Donations = cloneSlice(s.snap.Donations)
	snap.Campaigns = cloneSlice(s.snap.Campaigns)
	snap.Volunteers = cloneSlice(s.snap.Volunteers)
	snap.Tasks = cloneSlice(s.snap.Tasks)
	snap.Events = cloneSlice(s.snap.Events)
	snap.Cases = cloneSlice(s.snap.Cases)
	snap.Children = cloneSlice(s.snap.Children)
	snap.Families = cloneSlice(s.snap.Families)
	snap.Shelters = cloneSlice(s.snap.Shelters)
	snap.Incidents = cloneSlice(s.snap.Incidents)
	return snap
}

// Replace swaps one collection's contents. The records type must match the
// collection name; a mismatch is a programming error in the fetch layer and
// is reported rather than silently dropped.
func (s *Store) Replace(name string, records any, fetchedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch name {
	case core.CollectionDonations:
		v, ok := records.([]core.Donation)
		if !ok {
			return typeMismatch(name, records)
		}
		s.snap.Donations = v
	case core.CollectionCampaigns:
		v, ok := records.([]core.Campaign)
		if !ok {
			return typeMismatch(name, records)
		}
		s.snap.Campaigns = v
	case core.CollectionVolunteers:
		v, ok := records.([]core.Volunteer)
		if !ok {
			return typeMismatch(name, records)
		}
		s.snap.Volunteers = v
	case core.CollectionTasks:
		v, ok := records.([]core.Task)
		if !ok {
			return typeMismatch(name, records)
		}
		s.snap.Tasks = v
	case core.CollectionEvents:
		v, ok := records.([]core.Event)
		if !ok {
			return typeMismatch(name, records)
		}
		s.snap.Events = v
	case core.CollectionCases:
		v, ok := records.([]core.Case)
		if !ok {
			return typeMismatch(name, records)
		}
		s.snap.Cases = v
	case core.CollectionChildren:
		v, ok := records.([]core.Child)
		if !ok {
			return typeMismatch(name, records)
		}
		s.snap.Children = v
	case core.CollectionFamilies:
		v, ok := records.([]core.Family)
		if !ok {
			return typeMismatch(name, records)
		}
		s.snap.Families = v
	case core.CollectionShelters:
		v, ok := records.([]core.Shelter)
		if !ok {
			return typeMismatch(name, records)
		}
		s.snap.Shelters = v
	case core.CollectionIncidents:
		v, ok := records.([]core.Incident)
		if !ok {
			return typeMismatch(name, records)
		}
		s.snap.Incidents = v
	case core.CollectionSummary:
		v, ok := records.(core.Summary)
		if !ok {
			return typeMismatch(name, records)
		}
		s.snap.Summary = v
	default:
		return fmt.Errorf("%w: %q", core.ErrUnknownCollection, name)
	}

	s.fetchedAt[name] = fetchedAt
	return nil
}

// FetchedAt reports when a collection was last replaced. ok is false for a
// collection that has never been fetched this process lifetime.
func (s *Store) FetchedAt(name string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.fetchedAt[name]
	return t, ok
}

// Ready reports whether at least one collection has been loaded.
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fetchedAt) > 0
}

// ShouldGreet reports whether the identity gets the daily greeting, then
// marks it greeted. The flag is keyed by UTC calendar date: the first call
// per identity per UTC day returns true, every later call that day false.
// Rolling into a new day resets everyone.
func (s *Store) ShouldGreet(userID string, now time.Time) bool {
	if userID == "" {
		return false
	}

	day := now.UTC().Format("2006-01-02")

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.greetedOn != day {
		s.greetedOn = day
		s.greetedIDs = make(map[string]bool)
	}
	if s.greetedIDs[userID] {
		return false
	}
	s.greetedIDs[userID] = true
	return true
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

func typeMismatch(name string, records any) error {
	return fmt.Errorf("collection %q: unexpected record type %T", name, records)
}
