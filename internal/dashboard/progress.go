package dashboard

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"kindra/internal/core"
)

var one = decimal.NewFromInt(1)

var titleCaser = cases.Title(language.English)

// Ratio is a current/target pair with a precomputed percentage.
type Ratio struct {
	Current    decimal.Decimal `json:"current"`
	Target     decimal.Decimal `json:"target"`
	Percentage int             `json:"percentage"`
}

// Progress computes the percentage of target reached. A missing or zero
// target is floored to 1 so the result is always a defined number; the
// percentage is clamped at zero and never NaN or infinite.
func Progress(current, target decimal.Decimal) Ratio {
	denom := target
	if denom.LessThan(one) {
		denom = one
	}
	pct := current.Div(denom).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if pct < 0 {
		pct = 0
	}
	return Ratio{Current: current, Target: target, Percentage: int(pct)}
}

// NameValue is one row of a categorical breakdown.
type NameValue struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// BreakdownBy groups records by keyOf and sums weightOf per group (or counts
// records when weightOf is nil). Output order is the first-seen order of each
// key. Keys are normalized for display (underscores to spaces, title case)
// after grouping, so two keys that differ only in display form stay distinct.
func BreakdownBy[T any](records []T, keyOf func(T) string, weightOf func(T) decimal.Decimal) []NameValue {
	totals := make(map[string]decimal.Decimal)
	var order []string

	for _, r := range records {
		key := keyOf(r)
		if _, seen := totals[key]; !seen {
			order = append(order, key)
		}
		w := one
		if weightOf != nil {
			w = weightOf(r)
		}
		totals[key] = totals[key].Add(w)
	}

	out := make([]NameValue, 0, len(order))
	for _, key := range order {
		out = append(out, NameValue{Name: displayKey(key), Value: totals[key]})
	}
	return out
}

// displayKey turns API enum keys like FOOD_SECURITY into "Food Security".
func displayKey(key string) string {
	s := strings.ReplaceAll(key, "_", " ")
	return titleCaser.String(strings.ToLower(s))
}

// CampaignProgressRow is one campaign's funding progress for bar charts.
type CampaignProgressRow struct {
	Name       string          `json:"name"`
	Raised     decimal.Decimal `json:"raised"`
	Goal       decimal.Decimal `json:"goal"`
	Percentage int             `json:"percentage"`
}

// CampaignProgress maps campaigns to chart rows, truncating titles and
// defaulting the missing ones.
func CampaignProgress(campaigns []core.Campaign) []CampaignProgressRow {
	rows := make([]CampaignProgressRow, 0, len(campaigns))
	for _, c := range campaigns {
		r := Progress(c.RaisedAmount.Decimal, c.TargetAmount.Decimal)
		rows = append(rows, CampaignProgressRow{
			Name:       truncate(core.OrDefault(c.Title, "Untitled"), 20),
			Raised:     r.Current,
			Goal:       r.Target,
			Percentage: r.Percentage,
		})
	}
	return rows
}

// ShelterCapacityRow is one shelter's occupancy for capacity charts.
type ShelterCapacityRow struct {
	Name       string `json:"name"`
	Current    int    `json:"current"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
}

// ShelterCapacity maps shelters to occupancy rows. Capacity is floored to 1
// inside Progress, so an unconfigured shelter reads 0% rather than breaking
// the chart.
func ShelterCapacity(shelters []core.Shelter) []ShelterCapacityRow {
	rows := make([]ShelterCapacityRow, 0, len(shelters))
	for _, s := range shelters {
		r := Progress(decimal.NewFromInt(int64(s.CurrentOccupancy)), decimal.NewFromInt(int64(s.TotalCapacity)))
		rows = append(rows, ShelterCapacityRow{
			Name:       truncate(core.OrDefault(s.Name, "Unnamed"), 15),
			Current:    s.CurrentOccupancy,
			Total:      s.TotalCapacity,
			Percentage: r.Percentage,
		})
	}
	return rows
}

// MethodBreakdown counts donations per payment method.
func MethodBreakdown(donations []core.Donation) []NameValue {
	return BreakdownBy(donations, func(d core.Donation) string {
		return core.OrDefault(d.Method, "Unknown")
	}, nil)
}

// truncate cuts on rune boundaries so multi-byte names stay valid UTF-8.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
