package dashboard

import (
	"github.com/shopspring/decimal"

	"kindra/internal/core"
)

// View is the per-role view-model handed to the presentation layer. Exactly
// one of the variant pointers is non-nil, matching Role; constructors below
// are the only way variants are built, so a donor view cannot exist without
// the donor data it was computed from.
type View struct {
	Role core.Role `json:"role"`

	Admin          *AdminView          `json:"admin,omitempty"`
	Donor          *DonorView          `json:"donor,omitempty"`
	Volunteer      *VolunteerView      `json:"volunteer,omitempty"`
	CaseWorker     *CaseWorkerView     `json:"case_worker,omitempty"`
	ShelterPartner *ShelterPartnerView `json:"shelter_partner,omitempty"`
	Placeholder    *PlaceholderView    `json:"placeholder,omitempty"`
}

type AdminStats struct {
	TotalDonations   decimal.Decimal `json:"total_donations"`
	DonationCount    int             `json:"donation_count"`
	ActiveVolunteers int             `json:"active_volunteers"`
	TotalVolunteers  int             `json:"total_volunteers"`
	ActiveCases      int             `json:"active_cases"`
	TotalChildren    int             `json:"total_children"`
	ShelterCount     int             `json:"shelter_count"`
}

type AdminCharts struct {
	DonationTrends   []SeriesPoint         `json:"donation_trends"`
	CampaignProgress []CampaignProgressRow `json:"campaign_progress"`
	DonationMethods  []NameValue           `json:"donation_methods"`
	ShelterCapacity  []ShelterCapacityRow  `json:"shelter_capacity"`
}

// AdminView aggregates global totals across every collection; no
// per-identity filtering is applied.
type AdminView struct {
	Stats    AdminStats      `json:"stats"`
	Charts   AdminCharts     `json:"charts"`
	Activity []ActivityEvent `json:"activity"`
}

type DonorStats struct {
	TotalGiven         decimal.Decimal `json:"total_given"`
	SupportedCampaigns int             `json:"supported_campaigns"`
	ImpactRank         string          `json:"impact_rank"`
}

type DonorCharts struct {
	PersonalTrends   []SeriesPoint `json:"personal_trends"`
	ImpactAllocation []NameValue   `json:"impact_allocation"`
}

// DonorView is computed exclusively from the donor's own filtered records;
// ActiveCampaigns is discovery content and deliberately unfiltered.
type DonorView struct {
	Stats           DonorStats      `json:"stats"`
	Charts          DonorCharts     `json:"charts"`
	ActiveCampaigns []core.Campaign `json:"active_campaigns"`
}

type VolunteerStats struct {
	TotalHours     decimal.Decimal `json:"total_hours"`
	PendingTasks   int             `json:"pending_tasks"`
	UpcomingEvents int             `json:"upcoming_events"`
}

type VolunteerView struct {
	Stats       VolunteerStats `json:"stats"`
	UrgentTasks []core.Task    `json:"urgent_tasks"`
}

type CaseWorkerStats struct {
	AssignedChildren int `json:"assigned_children"`
	TotalCases       int `json:"total_cases"`

	// PendingAssessments has no upstream source yet; nil means "not wired",
	// so consumers cannot mistake it for a computed zero.
	// TODO: populate from the assessments endpoint once reporting exposes it.
	PendingAssessments *int `json:"pending_assessments"`
}

type CaseWorkerView struct {
	Stats       CaseWorkerStats `json:"stats"`
	RecentCases []core.Case     `json:"recent_cases"`
}

type ShelterPartnerStats struct {
	TotalShelters    int   `json:"total_shelters"`
	TotalCapacity    int   `json:"total_capacity"`
	CurrentOccupancy int   `json:"current_occupancy"`
	Occupancy        Ratio `json:"occupancy"`

	// ComplianceRate has no upstream source yet; nil means "not wired".
	// TODO: populate from shelter inspection reports once they are exposed.
	ComplianceRate *int `json:"compliance_rate"`
}

type ShelterPartnerView struct {
	Stats    ShelterPartnerStats  `json:"stats"`
	Shelters []ShelterCapacityRow `json:"shelters"`
	Alerts   []core.Incident      `json:"alerts"`
}

// PlaceholderView is the terminal state for identities whose role has no
// dashboard configured. Returning it is normal operation, not an error.
type PlaceholderView struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Impact rank tiers by lifetime giving, in KES.
var impactTiers = []struct {
	floor decimal.Decimal
	name  string
}{
	{decimal.NewFromInt(250000), "Platinum Partner"},
	{decimal.NewFromInt(50000), "Gold Partner"},
	{decimal.NewFromInt(10000), "Silver Partner"},
}

// ImpactRank maps a donor's lifetime total to a recognition tier.
func ImpactRank(total decimal.Decimal) string {
	for _, tier := range impactTiers {
		if total.GreaterThanOrEqual(tier.floor) {
			return tier.name
		}
	}
	return "Bronze Partner"
}

// firstN returns at most n leading elements without copying the backing data.
func firstN[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
