package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"kindra/internal/core"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL, "svc-token", nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestFetchDonationsPaginated(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/donations/" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer svc-token" {
			t.Errorf("authorization = %q", got)
		}
		w.Write([]byte(`{"count": 2, "next": null, "results": [
			{"id": "1", "amount": "2500.00", "status": "COMPLETED"},
			{"id": "2", "amount": 100, "donor_name": "Amina"}
		]}`))
	}))

	got, err := c.Fetch(context.Background(), core.CollectionDonations)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	donations, ok := got.([]core.Donation)
	if !ok {
		t.Fatalf("records type = %T", got)
	}
	if len(donations) != 2 {
		t.Fatalf("got %d donations, want 2", len(donations))
	}
	if donations[0].Amount.String() != "2500" {
		t.Errorf("amount = %s, want 2500", donations[0].Amount)
	}
	if donations[1].DonorName != "Amina" {
		t.Errorf("donor = %q", donations[1].DonorName)
	}
}

func TestFetchBareArray(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id": "s1", "name": "Haven", "current_occupancy": 4, "total_capacity": 10}]`))
	}))

	got, err := c.Fetch(context.Background(), core.CollectionShelters)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	shelters := got.([]core.Shelter)
	if len(shelters) != 1 || shelters[0].TotalCapacity != 10 {
		t.Errorf("shelters = %+v", shelters)
	}
}

func TestFetchSummary(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/reporting/dashboard/" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{
			"overview": {"total_children": 42, "active_cases": 7},
			"donations": {"total_this_year": "150000.50"},
			"shelter_homes": {"total_homes": 3, "total_capacity": 60, "current_occupancy": 41}
		}`))
	}))

	got, err := c.Fetch(context.Background(), core.CollectionSummary)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	sum := got.(core.Summary)
	if sum.Overview.TotalChildren != 42 {
		t.Errorf("total children = %d, want 42", sum.Overview.TotalChildren)
	}
	if sum.Donations.TotalThisYear.String() != "150000.5" {
		t.Errorf("total this year = %s", sum.Donations.TotalThisYear)
	}
}

func TestFetchUpstreamError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))

	if _, err := c.Fetch(context.Background(), core.CollectionCases); err == nil {
		t.Error("502 response did not surface an error")
	}
}

func TestFetchMalformedBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<!doctype html><p>maintenance</p>`))
	}))

	if _, err := c.Fetch(context.Background(), core.CollectionVolunteers); err == nil {
		t.Error("HTML body decoded without error")
	}
}

func TestFetchUnknownCollection(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	if _, err := c.Fetch(context.Background(), "expenses"); err == nil {
		t.Error("unknown collection accepted")
	}
}

func TestNewClientRejectsRelativeURL(t *testing.T) {
	if _, err := NewClient("localhost:8000", "", nil); err == nil {
		t.Error("relative base URL accepted")
	}
}
