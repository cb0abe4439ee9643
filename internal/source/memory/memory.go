// Package memory serves collections from JSON fixture files, for local
// development and tests without the upstream API.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"kindra/internal/core"
)

// Source reads <dir>/<collection>.json on every fetch. A missing file is an
// empty collection, not an error, so a partial fixture set still boots.
type Source struct {
	dir string
}

func New(dir string) *Source {
	if dir == "" {
		dir = "data"
	}
	return &Source{dir: dir}
}

func (s *Source) Fetch(_ context.Context, collection string) (any, error) {
	switch collection {
	case core.CollectionDonations:
		return loadList[core.Donation](s.path(collection))
	case core.CollectionCampaigns:
		return loadList[core.Campaign](s.path(collection))
	case core.CollectionVolunteers:
		return loadList[core.Volunteer](s.path(collection))
	case core.CollectionTasks:
		return loadList[core.Task](s.path(collection))
	case core.CollectionEvents:
		return loadList[core.Event](s.path(collection))
	case core.CollectionCases:
		return loadList[core.Case](s.path(collection))
	case core.CollectionChildren:
		return loadList[core.Child](s.path(collection))
	case core.CollectionFamilies:
		return loadList[core.Family](s.path(collection))
	case core.CollectionShelters:
		return loadList[core.Shelter](s.path(collection))
	case core.CollectionIncidents:
		return loadList[core.Incident](s.path(collection))
	case core.CollectionSummary:
		var summary core.Summary
		data, err := os.ReadFile(s.path(collection))
		if os.IsNotExist(err) {
			return summary, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read summary fixture: %w", err)
		}
		if err := json.Unmarshal(data, &summary); err != nil {
			return nil, fmt.Errorf("decode summary fixture: %w", err)
		}
		return summary, nil
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownCollection, collection)
	}
}

func (s *Source) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

func loadList[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", filepath.Base(path), err)
	}

	var list []T
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode fixture %s: %w", filepath.Base(path), err)
	}
	return list, nil
}
