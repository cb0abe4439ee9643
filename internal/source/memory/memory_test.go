package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"kindra/internal/core"
)

func writeFixture(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
}

func TestFetchFromFixtures(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "donations.json", `[
		{"id": "1", "amount": "750.00", "payment_method": "M_PESA"},
		{"id": "2", "amount": 300}
	]`)

	s := New(dir)
	got, err := s.Fetch(context.Background(), core.CollectionDonations)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	donations := got.([]core.Donation)
	if len(donations) != 2 {
		t.Fatalf("got %d donations, want 2", len(donations))
	}
	if donations[0].Method != "M_PESA" {
		t.Errorf("method = %q", donations[0].Method)
	}
}

func TestFetchMissingFileIsEmpty(t *testing.T) {
	s := New(t.TempDir())
	got, err := s.Fetch(context.Background(), core.CollectionCampaigns)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if campaigns := got.([]core.Campaign); len(campaigns) != 0 {
		t.Errorf("missing fixture produced %d records", len(campaigns))
	}
}

func TestFetchSummaryFixture(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "summary.json", `{"overview": {"total_children": 12}}`)

	got, err := New(dir).Fetch(context.Background(), core.CollectionSummary)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if sum := got.(core.Summary); sum.Overview.TotalChildren != 12 {
		t.Errorf("total children = %d, want 12", sum.Overview.TotalChildren)
	}
}

func TestFetchMalformedFixture(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "cases.json", `{not json`)

	if _, err := New(dir).Fetch(context.Background(), core.CollectionCases); err == nil {
		t.Error("malformed fixture decoded without error")
	}
}

func TestFetchUnknownCollection(t *testing.T) {
	if _, err := New(t.TempDir()).Fetch(context.Background(), "expenses"); err == nil {
		t.Error("unknown collection accepted")
	}
}
