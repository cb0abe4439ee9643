package dashboard

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"kindra/internal/core"
)

// Resolve selects and builds the single view for an identity from a
// snapshot. It is a pure total function: every identity, including one with
// an empty or unknown role, maps to exactly one view and resolution never
// fails. The superuser flag overrides the role attribute.
func Resolve(identity core.Identity, snap core.Snapshot, now time.Time) View {
	switch identity.EffectiveRole() {
	case core.RoleAdmin:
		return View{Role: core.RoleAdmin, Admin: NewAdminView(snap, now)}
	case core.RoleDonor:
		return View{Role: core.RoleDonor, Donor: NewDonorView(identity, snap, now)}
	case core.RoleVolunteer:
		return View{Role: core.RoleVolunteer, Volunteer: NewVolunteerView(snap)}
	case core.RoleCaseWorker:
		return View{Role: core.RoleCaseWorker, CaseWorker: NewCaseWorkerView(snap)}
	case core.RoleShelterPartner:
		return View{Role: core.RoleShelterPartner, ShelterPartner: NewShelterPartnerView(snap)}
	default:
		return View{Role: core.RoleUnrecognized, Placeholder: NewPlaceholderView()}
	}
}

// NewAdminView aggregates organization-wide figures from every collection.
func NewAdminView(snap core.Snapshot, now time.Time) *AdminView {
	return &AdminView{
		Stats: AdminStats{
			TotalDonations:   snap.Summary.Donations.TotalThisYear.Decimal,
			DonationCount:    len(snap.Donations),
			ActiveVolunteers: snap.Summary.Overview.ActiveVolunteers,
			TotalVolunteers:  len(snap.Volunteers),
			ActiveCases:      snap.Summary.Overview.ActiveCases,
			TotalChildren:    snap.Summary.Overview.TotalChildren,
			ShelterCount:     snap.Summary.ShelterHomes.TotalHomes,
		},
		Charts: AdminCharts{
			DonationTrends:   DonationTrends(snap.Donations, TrendWindowDays, now),
			CampaignProgress: CampaignProgress(snap.Campaigns),
			DonationMethods:  MethodBreakdown(snap.Donations),
			ShelterCapacity:  ShelterCapacity(snap.Shelters),
		},
		Activity: RecentActivity(snap, now),
	}
}

// NewDonorView builds the personal giving view. Charts and totals come only
// from the donor's own records; the active campaign list is intentionally
// global (it is discovery content, not history).
func NewDonorView(identity core.Identity, snap core.Snapshot, now time.Time) *DonorView {
	mine := donorDonations(identity, snap.Donations)

	total := core.ZeroAmount()
	campaignSet := make(map[string]bool)
	for _, d := range mine {
		if d.IsCompleted() {
			total = total.Add(d.Amount.Decimal)
		}
		if d.CampaignID != "" {
			campaignSet[d.CampaignID] = true
		}
	}

	var active []core.Campaign
	for _, c := range snap.Campaigns {
		if c.IsActive() {
			active = append(active, c)
		}
	}

	return &DonorView{
		Stats: DonorStats{
			TotalGiven:         total,
			SupportedCampaigns: len(campaignSet),
			ImpactRank:         ImpactRank(total),
		},
		Charts: DonorCharts{
			PersonalTrends:   DonationTrends(mine, TrendWindowDays, now),
			ImpactAllocation: impactAllocation(mine, snap.Campaigns),
		},
		ActiveCampaigns: active,
	}
}

// NewVolunteerView counts pending work from pre-scoped collections; the
// fetch layer already limits tasks and events to the caller where the
// upstream supports it.
func NewVolunteerView(snap core.Snapshot) *VolunteerView {
	pending := 0
	for _, t := range snap.Tasks {
		if t.IsPending() {
			pending++
		}
	}
	upcoming := 0
	for _, e := range snap.Events {
		if e.IsActive {
			upcoming++
		}
	}
	return &VolunteerView{
		Stats: VolunteerStats{
			TotalHours:     snap.Summary.Volunteers.TotalHoursThisYear.Decimal,
			PendingTasks:   pending,
			UpcomingEvents: upcoming,
		},
		UrgentTasks: firstN(snap.Tasks, 3),
	}
}

// NewCaseWorkerView exposes caseload counts and the most recent cases.
func NewCaseWorkerView(snap core.Snapshot) *CaseWorkerView {
	return &CaseWorkerView{
		Stats: CaseWorkerStats{
			AssignedChildren:   len(snap.Children),
			TotalCases:         len(snap.Cases),
			PendingAssessments: nil, // not wired, see CaseWorkerStats
		},
		RecentCases: firstN(snap.Cases, 5),
	}
}

// NewShelterPartnerView exposes occupancy figures and incident alerts.
func NewShelterPartnerView(snap core.Snapshot) *ShelterPartnerView {
	homes := snap.Summary.ShelterHomes
	return &ShelterPartnerView{
		Stats: ShelterPartnerStats{
			TotalShelters:    homes.TotalHomes,
			TotalCapacity:    int(homes.TotalCapacity.IntPart()),
			CurrentOccupancy: int(homes.CurrentOccupancy.IntPart()),
			Occupancy:        Progress(homes.CurrentOccupancy.Decimal, homes.TotalCapacity.Decimal),
			ComplianceRate:   nil, // not wired, see ShelterPartnerStats
		},
		Shelters: ShelterCapacity(snap.Shelters),
		Alerts:   snap.Incidents,
	}
}

// NewPlaceholderView returns the static not-configured view.
func NewPlaceholderView() *PlaceholderView {
	return &PlaceholderView{
		Title:   "Welcome to Kindra Dashboard",
		Message: "Your specialized dashboard is being configured. Please check back shortly.",
	}
}

// donorDonations filters donations to those belonging to the identity,
// matching by donor id or by email. A record may carry only one of the two,
// so both are checked; when both are present and disagree, either match
// still claims the record (the upstream has no documented precedence rule,
// and tightening to id-and-email would drop legitimate records).
func donorDonations(identity core.Identity, donations []core.Donation) []core.Donation {
	var mine []core.Donation
	for _, d := range donations {
		byID := identity.DonorID != "" && d.DonorID == identity.DonorID
		byEmail := identity.Email != "" && strings.EqualFold(d.DonorEmail, identity.Email)
		if byID || byEmail {
			mine = append(mine, d)
		}
	}
	return mine
}

// impactAllocation sums a donor's giving by the category of the campaign
// each donation funded. Donations whose campaign is unknown fall into the
// OTHER bucket.
func impactAllocation(donations []core.Donation, campaigns []core.Campaign) []NameValue {
	byID := make(map[string]core.Campaign, len(campaigns))
	for _, c := range campaigns {
		if c.ID != "" {
			byID[c.ID] = c
		}
		if c.Slug != "" {
			byID[c.Slug] = c
		}
	}
	return BreakdownBy(donations, func(d core.Donation) string {
		if c, ok := byID[d.CampaignID]; ok && c.Category != "" {
			return c.Category
		}
		return "OTHER"
	}, func(d core.Donation) decimal.Decimal {
		return d.Amount.Decimal
	})
}
