package dashboard

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"kindra/internal/core"
)

func testSnapshot() core.Snapshot {
	snap := core.Snapshot{
		Donations: []core.Donation{
			{
				ID:         "1",
				DonorID:    "donor-7",
				DonorEmail: "wanjiru@example.org",
				CampaignID: "c1",
				Amount:     core.AmountFromInt(12000),
				Status:     "COMPLETED",
				DonatedAt:  core.Timestamp{Time: testNow.Add(-time.Hour)},
			},
			{
				ID:         "2",
				DonorID:    "donor-8",
				DonorEmail: "otieno@example.org",
				CampaignID: "c2",
				Amount:     core.AmountFromInt(500),
				Status:     "COMPLETED",
				DonatedAt:  core.Timestamp{Time: testNow.Add(-2 * time.Hour)},
			},
			{
				ID:         "3",
				DonorID:    "donor-7",
				CampaignID: "c1",
				Amount:     core.AmountFromInt(3000),
				Status:     "PENDING",
				DonatedAt:  core.Timestamp{Time: testNow.Add(-3 * time.Hour)},
			},
		},
		Campaigns: []core.Campaign{
			{ID: "c1", Title: "School Meals", Category: "EDUCATION", Status: "ACTIVE",
				TargetAmount: core.AmountFromInt(1000), RaisedAmount: core.AmountFromInt(250)},
			{ID: "c2", Title: "Winter Shelter", Category: "SHELTER", Status: "CLOSED"},
		},
		Volunteers: []core.Volunteer{{ID: "v1", FullName: "Amina", Status: "ACTIVE"}},
		Tasks: []core.Task{
			{ID: "t1", Status: "PENDING"},
			{ID: "t2", Status: "COMPLETED"},
			{ID: "t3", Status: "PENDING"},
		},
		Events:    []core.Event{{ID: "e1", IsActive: true}, {ID: "e2"}},
		Cases:     []core.Case{{ID: "k1", CaseNumber: "CW-001"}},
		Children:  []core.Child{{ID: "ch1"}, {ID: "ch2"}},
		Shelters:  []core.Shelter{{ID: "s1", Name: "Haven", CurrentOccupancy: 9, TotalCapacity: 12}},
		Incidents: []core.Incident{{ID: "i1", Severity: "HIGH"}},
	}
	snap.Summary.Overview.TotalChildren = 2
	snap.Summary.Overview.ActiveCases = 1
	snap.Summary.Overview.ActiveVolunteers = 1
	snap.Summary.Donations.TotalThisYear = core.AmountFromInt(15500)
	snap.Summary.Volunteers.TotalHoursThisYear = core.AmountFromInt(48)
	snap.Summary.ShelterHomes.TotalHomes = 1
	snap.Summary.ShelterHomes.TotalCapacity = core.AmountFromInt(12)
	snap.Summary.ShelterHomes.CurrentOccupancy = core.AmountFromInt(9)
	return snap
}

func oneVariant(v View) int {
	n := 0
	for _, p := range []bool{
		v.Admin != nil, v.Donor != nil, v.Volunteer != nil,
		v.CaseWorker != nil, v.ShelterPartner != nil, v.Placeholder != nil,
	} {
		if p {
			n++
		}
	}
	return n
}

func TestResolveTotal(t *testing.T) {
	snap := testSnapshot()
	roles := []string{
		"ADMIN", "DONOR", "VOLUNTEER", "CASE_WORKER", "SHELTER_PARTNER",
		"", "MANAGEMENT", "SOCIAL_MEDIA", "donor", "  admin  ", "garbage",
	}
	for _, role := range roles {
		v := Resolve(core.Identity{Role: core.ParseRole(role)}, snap, testNow)
		if got := oneVariant(v); got != 1 {
			t.Errorf("role %q: %d variants populated, want exactly 1", role, got)
		}
	}

	// Resolution against an empty snapshot must also succeed for every role.
	for _, role := range roles {
		v := Resolve(core.Identity{Role: core.ParseRole(role)}, core.Snapshot{}, testNow)
		if got := oneVariant(v); got != 1 {
			t.Errorf("role %q on empty snapshot: %d variants, want 1", role, got)
		}
	}
}

func TestResolveSuperuserOverride(t *testing.T) {
	v := Resolve(core.Identity{Role: core.RoleDonor, IsSuperuser: true}, testSnapshot(), testNow)
	if v.Role != core.RoleAdmin || v.Admin == nil {
		t.Errorf("superuser donor resolved to %q, want admin view", v.Role)
	}
}

func TestResolveUnrecognizedRole(t *testing.T) {
	v := Resolve(core.Identity{Role: core.ParseRole("MANAGEMENT")}, testSnapshot(), testNow)
	if v.Placeholder == nil {
		t.Fatal("unrecognized role did not produce a placeholder view")
	}
	if v.Placeholder.Title == "" || v.Placeholder.Message == "" {
		t.Error("placeholder view missing copy")
	}
}

func TestAdminView(t *testing.T) {
	av := NewAdminView(testSnapshot(), testNow)
	if !av.Stats.TotalDonations.Equal(decimal.NewFromInt(15500)) {
		t.Errorf("total donations = %s, want 15500", av.Stats.TotalDonations)
	}
	if av.Stats.DonationCount != 3 || av.Stats.TotalVolunteers != 1 || av.Stats.TotalChildren != 2 {
		t.Errorf("stats = %+v", av.Stats)
	}
	if len(av.Charts.DonationTrends) != TrendWindowDays {
		t.Errorf("trend buckets = %d, want %d", len(av.Charts.DonationTrends), TrendWindowDays)
	}
	if len(av.Activity) == 0 {
		t.Error("admin view has no activity feed")
	}
}

func TestDonorViewFiltering(t *testing.T) {
	tests := []struct {
		name     string
		identity core.Identity
	}{
		{"matched by donor id", core.Identity{DonorID: "donor-7"}},
		{"matched by email", core.Identity{Email: "WANJIRU@example.org"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dv := NewDonorView(tt.identity, testSnapshot(), testNow)
			// Donation 3 belongs to donor-7 but is PENDING; the id match
			// carries no email, so the email identity sees only donation 1.
			want := decimal.NewFromInt(12000)
			if !dv.Stats.TotalGiven.Equal(want) {
				t.Errorf("total given = %s, want %s (completed only)", dv.Stats.TotalGiven, want)
			}
			if dv.Stats.ImpactRank != "Silver Partner" {
				t.Errorf("impact rank = %q, want Silver Partner", dv.Stats.ImpactRank)
			}
			if len(dv.ActiveCampaigns) != 1 || dv.ActiveCampaigns[0].ID != "c1" {
				t.Errorf("active campaigns = %+v, want just c1", dv.ActiveCampaigns)
			}
		})
	}
}

func TestDonorViewSupportedCampaigns(t *testing.T) {
	dv := NewDonorView(core.Identity{DonorID: "donor-7"}, testSnapshot(), testNow)
	// Donations 1 and 3 both fund c1; pending records still count toward
	// the supported set, only totals require completion.
	if dv.Stats.SupportedCampaigns != 1 {
		t.Errorf("supported campaigns = %d, want 1", dv.Stats.SupportedCampaigns)
	}
}

func TestDonorViewNoMatches(t *testing.T) {
	dv := NewDonorView(core.Identity{DonorID: "donor-404"}, testSnapshot(), testNow)
	if !dv.Stats.TotalGiven.IsZero() {
		t.Errorf("total given = %s, want 0", dv.Stats.TotalGiven)
	}
	if dv.Stats.ImpactRank != "Bronze Partner" {
		t.Errorf("impact rank = %q, want Bronze Partner", dv.Stats.ImpactRank)
	}
	if len(dv.Charts.ImpactAllocation) != 0 {
		t.Errorf("impact allocation = %+v, want empty", dv.Charts.ImpactAllocation)
	}
}

func TestImpactAllocation(t *testing.T) {
	dv := NewDonorView(core.Identity{DonorID: "donor-7"}, testSnapshot(), testNow)
	alloc := dv.Charts.ImpactAllocation
	if len(alloc) != 1 {
		t.Fatalf("allocation groups = %d, want 1: %+v", len(alloc), alloc)
	}
	if alloc[0].Name != "Education" {
		t.Errorf("allocation group = %q, want Education", alloc[0].Name)
	}
	// Both matched donations fund c1, pending included: 12000 + 3000.
	if want := decimal.NewFromInt(15000); !alloc[0].Value.Equal(want) {
		t.Errorf("allocation value = %s, want %s", alloc[0].Value, want)
	}
}

func TestVolunteerView(t *testing.T) {
	vv := NewVolunteerView(testSnapshot())
	if vv.Stats.PendingTasks != 2 {
		t.Errorf("pending tasks = %d, want 2", vv.Stats.PendingTasks)
	}
	if vv.Stats.UpcomingEvents != 1 {
		t.Errorf("upcoming events = %d, want 1", vv.Stats.UpcomingEvents)
	}
	if len(vv.UrgentTasks) != 3 {
		t.Errorf("urgent tasks = %d, want 3", len(vv.UrgentTasks))
	}
}

func TestCaseWorkerView(t *testing.T) {
	cv := NewCaseWorkerView(testSnapshot())
	if cv.Stats.AssignedChildren != 2 || cv.Stats.TotalCases != 1 {
		t.Errorf("stats = %+v", cv.Stats)
	}
	if cv.Stats.PendingAssessments != nil {
		t.Error("pending assessments should be nil until a source exists")
	}
}

func TestShelterPartnerView(t *testing.T) {
	sv := NewShelterPartnerView(testSnapshot())
	if sv.Stats.Occupancy.Percentage != 75 {
		t.Errorf("occupancy = %d%%, want 75%%", sv.Stats.Occupancy.Percentage)
	}
	if len(sv.Shelters) != 1 || sv.Shelters[0].Name != "Haven" {
		t.Errorf("shelters = %+v", sv.Shelters)
	}
	if len(sv.Alerts) != 1 {
		t.Errorf("alerts = %d, want 1", len(sv.Alerts))
	}
}
