package dashboard

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"kindra/internal/core"
)

func TestProgress(t *testing.T) {
	tests := []struct {
		name    string
		current int64
		target  int64
		want    int
	}{
		{"quarter funded", 250, 1000, 25},
		{"fully funded", 1000, 1000, 100},
		{"over funded", 1500, 1000, 150},
		{"zero target zero current", 0, 0, 0},
		{"zero target with current", 500, 0, 50000},
		{"negative target floored", 250, -10, 25000},
		{"rounds to nearest", 333, 1000, 33},
		{"rounds half up", 335, 1000, 34},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Progress(decimal.NewFromInt(tt.current), decimal.NewFromInt(tt.target))
			if r.Percentage != tt.want {
				t.Errorf("Progress(%d, %d).Percentage = %d, want %d", tt.current, tt.target, r.Percentage, tt.want)
			}
		})
	}
}

func TestBreakdownByCounts(t *testing.T) {
	donations := []core.Donation{
		{Method: "M_PESA"},
		{Method: "BANK_TRANSFER"},
		{Method: "M_PESA"},
		{Method: "M_PESA"},
	}

	got := MethodBreakdown(donations)
	want := []NameValue{
		{Name: "M Pesa", Value: decimal.NewFromInt(3)},
		{Name: "Bank Transfer", Value: decimal.NewFromInt(1)},
	}
	assertNameValues(t, got, want)
}

func TestBreakdownByFirstSeenOrder(t *testing.T) {
	donations := []core.Donation{
		{Method: "CASH"},
		{Method: "AIRTEL_MONEY"},
		{Method: "CASH"},
		{Method: "CARD"},
		{Method: "AIRTEL_MONEY"},
	}

	got := MethodBreakdown(donations)
	names := make([]string, len(got))
	for i, nv := range got {
		names[i] = nv.Name
	}
	want := []string{"Cash", "Airtel Money", "Card"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("breakdown order = %v, want %v", names, want)
	}
}

func TestBreakdownByMissingKey(t *testing.T) {
	got := MethodBreakdown([]core.Donation{{Method: ""}, {Method: "CASH"}})
	if len(got) != 2 {
		t.Fatalf("got %d groups, want 2", len(got))
	}
	if got[0].Name != "Unknown" {
		t.Errorf("empty method grouped as %q, want %q", got[0].Name, "Unknown")
	}
}

func TestBreakdownByWeighted(t *testing.T) {
	donations := []core.Donation{
		{Method: "CASH", Amount: core.AmountFromInt(100)},
		{Method: "CASH", Amount: core.AmountFromInt(50)},
	}

	got := BreakdownBy(donations,
		func(d core.Donation) string { return d.Method },
		func(d core.Donation) decimal.Decimal { return d.Amount.Decimal })
	want := []NameValue{{Name: "Cash", Value: decimal.NewFromInt(150)}}
	assertNameValues(t, got, want)
}

func TestCampaignProgress(t *testing.T) {
	campaigns := []core.Campaign{
		{
			Title:        "Back to School Drive for Nairobi County",
			RaisedAmount: core.AmountFromInt(250),
			TargetAmount: core.AmountFromInt(1000),
		},
		{
			RaisedAmount: core.AmountFromInt(10),
			TargetAmount: core.AmountFromInt(0),
		},
	}

	rows := CampaignProgress(campaigns)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Name != "Back to School Drive" {
		t.Errorf("long title = %q, want first 20 bytes", rows[0].Name)
	}
	if rows[0].Percentage != 25 {
		t.Errorf("percentage = %d, want 25", rows[0].Percentage)
	}
	if rows[1].Name != "Untitled" {
		t.Errorf("missing title = %q, want %q", rows[1].Name, "Untitled")
	}
	if rows[1].Percentage != 1000 {
		t.Errorf("zero-target percentage = %d, want 1000 (target floored to 1)", rows[1].Percentage)
	}
}

func TestShelterCapacity(t *testing.T) {
	shelters := []core.Shelter{
		{Name: "Mama Fatuma Children Home", CurrentOccupancy: 18, TotalCapacity: 24},
		{CurrentOccupancy: 5, TotalCapacity: 0},
	}

	rows := ShelterCapacity(shelters)
	if rows[0].Name != "Mama Fatuma Chi" {
		t.Errorf("long name = %q, want 15-rune truncation", rows[0].Name)
	}
	if rows[0].Current != 18 || rows[0].Total != 24 {
		t.Errorf("row 0 = %d/%d, want 18/24", rows[0].Current, rows[0].Total)
	}
	if rows[0].Percentage != 75 {
		t.Errorf("row 0 percentage = %d, want 75", rows[0].Percentage)
	}
	if rows[1].Name != "Unnamed" {
		t.Errorf("missing name = %q, want %q", rows[1].Name, "Unnamed")
	}
}

func TestTruncateKeepsRunesIntact(t *testing.T) {
	campaigns := []core.Campaign{
		{Title: strings.Repeat("é", 25), TargetAmount: core.AmountFromInt(1000)},
	}

	rows := CampaignProgress(campaigns)
	if !utf8.ValidString(rows[0].Name) {
		t.Fatalf("truncated name is not valid UTF-8: %q", rows[0].Name)
	}
	if want := strings.Repeat("é", 20); rows[0].Name != want {
		t.Errorf("name = %q, want %q", rows[0].Name, want)
	}

	shelters := []core.Shelter{
		{Name: "Nyumba ya Watoto wa Amani éé", TotalCapacity: 10},
	}
	got := ShelterCapacity(shelters)[0].Name
	if !utf8.ValidString(got) || utf8.RuneCountInString(got) != 15 {
		t.Errorf("shelter name = %q, want a valid 15-rune prefix", got)
	}
}

func assertNameValues(t *testing.T, got, want []NameValue) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d groups, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i].Name != want[i].Name || !got[i].Value.Equal(want[i].Value) {
			t.Errorf("group %d = {%s %s}, want {%s %s}", i, got[i].Name, got[i].Value, want[i].Name, want[i].Value)
		}
	}
}
