package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Collection names as exposed by the upstream API and used as keys by the
// store, the snapshot persistence layer and refresh messages.
const (
	CollectionDonations  = "donations"
	CollectionCampaigns  = "campaigns"
	CollectionVolunteers = "volunteers"
	CollectionTasks      = "tasks"
	CollectionEvents     = "events"
	CollectionCases      = "cases"
	CollectionChildren   = "children"
	CollectionFamilies   = "families"
	CollectionShelters   = "shelters"
	CollectionIncidents  = "incidents"
	CollectionSummary    = "summary"
)

// Collections lists every collection a refresh cycle covers.
var Collections = []string{
	CollectionDonations,
	CollectionCampaigns,
	CollectionVolunteers,
	CollectionTasks,
	CollectionEvents,
	CollectionCases,
	CollectionChildren,
	CollectionFamilies,
	CollectionShelters,
	CollectionIncidents,
	CollectionSummary,
}

var ErrUnknownCollection = errors.New("unknown collection")

type (
	// Donation is a single monetary gift as reported by the upstream API.
	// Records arrive sparse: only ID is reliably present, everything else
	// defaults at the point of use.
	Donation struct {
		ID            string    `json:"id"`
		DonorID       string    `json:"donor"`
		DonorName     string    `json:"donor_name"`
		DonorEmail    string    `json:"donor_email"`
		CampaignID    string    `json:"campaign"`
		CampaignTitle string    `json:"campaign_title"`
		Amount        Amount    `json:"amount"`
		Method        string    `json:"payment_method"`
		Status        string    `json:"status"`
		DonatedAt     Timestamp `json:"donation_date"`
		CreatedAt     Timestamp `json:"created_at"`
	}

	Campaign struct {
		ID           string `json:"id"`
		Slug         string `json:"slug"`
		Title        string `json:"title"`
		Category     string `json:"category"`
		Status       string `json:"status"`
		Urgency      string `json:"urgency"`
		TargetAmount Amount `json:"target_amount"`
		RaisedAmount Amount `json:"raised_amount"`
	}

	Volunteer struct {
		ID        string    `json:"id"`
		FullName  string    `json:"full_name"`
		Status    string    `json:"status"`
		Hours     Amount    `json:"total_hours"`
		CreatedAt Timestamp `json:"created_at"`
	}

	Task struct {
		ID         string    `json:"id"`
		Title      string    `json:"title"`
		Status     string    `json:"status"`
		Priority   string    `json:"priority"`
		AssigneeID string    `json:"assigned_to"`
		DueDate    Timestamp `json:"due_date"`
	}

	Event struct {
		ID       string    `json:"id"`
		Title    string    `json:"title"`
		IsActive bool      `json:"is_active"`
		StartsAt Timestamp `json:"start_date"`
	}

	Case struct {
		ID         string    `json:"id"`
		CaseNumber string    `json:"case_number"`
		ChildName  string    `json:"child_name"`
		Status     string    `json:"status"`
		CreatedAt  Timestamp `json:"created_at"`
		UpdatedAt  Timestamp `json:"updated_at"`
	}

	Child struct {
		ID          string `json:"id"`
		FullName    string `json:"full_name"`
		LegalStatus string `json:"legal_status"`
	}

	Family struct {
		ID         string `json:"id"`
		FamilyName string `json:"family_name"`
		Status     string `json:"status"`
	}

	Shelter struct {
		ID               string `json:"id"`
		Name             string `json:"name"`
		CurrentOccupancy int    `json:"current_occupancy"`
		TotalCapacity    int    `json:"total_capacity"`
	}

	Incident struct {
		ID          string    `json:"id"`
		Severity    string    `json:"severity"`
		Description string    `json:"description"`
		ReportedAt  Timestamp `json:"reported_at"`
	}

	// Summary carries the pre-aggregated figures the upstream reporting
	// endpoint computes server-side.
	Summary struct {
		Overview struct {
			TotalFamilies    int `json:"total_families"`
			TotalChildren    int `json:"total_children"`
			ActiveCases      int `json:"active_cases"`
			ActiveVolunteers int `json:"active_volunteers"`
		} `json:"overview"`
		Donations struct {
			TotalThisMonth  Amount `json:"total_this_month"`
			TotalThisYear   Amount `json:"total_this_year"`
			ActiveCampaigns int    `json:"active_campaigns"`
		} `json:"donations"`
		Volunteers struct {
			TotalHoursThisYear Amount `json:"total_hours_this_year"`
		} `json:"volunteers"`
		ShelterHomes struct {
			TotalHomes       int    `json:"total_homes"`
			TotalCapacity    Amount `json:"total_capacity"`
			CurrentOccupancy Amount `json:"current_occupancy"`
		} `json:"shelter_homes"`
	}
)

// Snapshot is a point-in-time copy of every collection. Consumers receive
// value copies, never live references to store internals.
type Snapshot struct {
	Donations  []Donation
	Campaigns  []Campaign
	Volunteers []Volunteer
	Tasks      []Task
	Events     []Event
	Cases      []Case
	Children   []Child
	Families   []Family
	Shelters   []Shelter
	Incidents  []Incident
	Summary    Summary
}

// Donation statuses considered settled money. Anything else (PENDING,
// FAILED, REFUNDED) is excluded from personal giving totals.
var completedStatuses = map[string]bool{
	"COMPLETED": true,
	"VERIFIED":  true,
	"SUCCESS":   true,
}

// IsCompleted reports whether the donation's amount should count as given.
func (d Donation) IsCompleted() bool {
	return completedStatuses[strings.ToUpper(strings.TrimSpace(d.Status))]
}

// DisplayDonor returns the donor name with the anonymous fallback.
func (d Donation) DisplayDonor() string {
	return OrDefault(d.DonorName, "Anonymous")
}

// DisplayCampaign returns the campaign title with the general-fund fallback.
func (d Donation) DisplayCampaign() string {
	return OrDefault(d.CampaignTitle, "General Fund")
}

// IsActive reports whether the campaign is currently accepting donations.
func (c Campaign) IsActive() bool {
	return strings.EqualFold(strings.TrimSpace(c.Status), "ACTIVE")
}

// IsPending reports whether the task still needs attention.
func (t Task) IsPending() bool {
	return strings.EqualFold(strings.TrimSpace(t.Status), "PENDING")
}

// OrDefault returns fallback when s is empty or whitespace.
func OrDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// ZeroAmount is the additive identity for monetary math.
func ZeroAmount() decimal.Decimal {
	return decimal.Zero
}
