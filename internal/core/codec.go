package core

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Amount is a monetary (or hour) figure decoded leniently. The upstream API
// serializes decimals as strings, older endpoints emit bare numbers, and
// sparse records omit or null the field; all of these decode without error,
// defaulting to zero.
type Amount struct {
	decimal.Decimal
}

// NewAmount wraps a decimal in an Amount.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

// AmountFromInt builds an Amount from a whole number, mostly for tests.
func AmountFromInt(n int64) Amount {
	return Amount{Decimal: decimal.NewFromInt(n)}
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		a.Decimal = ZeroAmount()
		return nil
	}
	s := string(data)
	if len(s) >= 2 && s[0] == '"' {
		var unquoted string
		if err := json.Unmarshal(data, &unquoted); err != nil {
			a.Decimal = ZeroAmount()
			return nil
		}
		s = strings.TrimSpace(unquoted)
	}
	if s == "" {
		a.Decimal = ZeroAmount()
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		// Malformed amounts coerce to zero rather than poisoning the record.
		a.Decimal = ZeroAmount()
		return nil
	}
	*a = NewAmount(d)
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

// Timestamp decodes the handful of shapes the upstream emits: RFC3339 with
// or without offset, bare dates, empty strings and nulls. Unparseable input
// yields the zero time, which downstream aggregation treats as "absent".
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		t.Time = time.Time{}
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	t.Time = time.Time{}
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}

// OrNow returns the timestamp, or now when the record carried none.
func (t Timestamp) OrNow(now time.Time) time.Time {
	if t.IsZero() {
		return now
	}
	return t.Time
}
