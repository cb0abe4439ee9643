// Package memory captures exported reports in process memory, for local
// development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	ports "kindra/internal/sheets"
)

type Store struct {
	mu      sync.Mutex
	reports []ports.Report
}

var _ ports.ReportWriter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// WriteReport stores the report and returns a synthetic reference.
func (s *Store) WriteReport(_ context.Context, r ports.Report) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, r)
	return fmt.Sprintf("mem:%d", len(s.reports)), nil
}

// Reports returns a copy of everything written so far.
func (s *Store) Reports() []ports.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ports.Report, len(s.reports))
	copy(out, s.reports)
	return out
}
