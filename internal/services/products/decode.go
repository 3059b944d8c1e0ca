package products

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Layouts accepted for auctionStart. Values without a zone are read as UTC.
var auctionStartLayouts = []struct {
	layout string
	zoned  bool
}{
	{time.RFC3339Nano, true},
	{"2006-01-02T15:04:05", false},
	{"2006-01-02T15:04", false},
}

// flexNumber accepts a JSON number or a numeric string, as sent by HTML
// form inputs. null and "" leave it unset.
type flexNumber struct {
	Value float64
	Valid bool
}

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			return nil
		}
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("invalid number %q", raw)
	}
	n.Value, n.Valid = f, true
	return nil
}

// flexTime accepts RFC3339 and the datetime-local form value
// "2006-01-02T15:04", with or without seconds.
type flexTime struct {
	time.Time
}

func (t *flexTime) UnmarshalJSON(data []byte) error {
	if strings.TrimSpace(string(data)) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid time: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	for _, l := range auctionStartLayouts {
		var (
			parsed time.Time
			err    error
		)
		if l.zoned {
			parsed, err = time.Parse(l.layout, s)
		} else {
			parsed, err = time.ParseInLocation(l.layout, s, time.UTC)
		}
		if err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("invalid time %q", s)
}

// UnmarshalJSON lets the numeric fields arrive as strings and auctionStart
// as a datetime-local value.
func (r *CreateProductRequest) UnmarshalJSON(data []byte) error {
	type plain CreateProductRequest
	aux := struct {
		*plain
		StartingPrice    flexNumber `json:"startingPrice"`
		BidIncrement     flexNumber `json:"bidIncrement"`
		AuctionStart     flexTime   `json:"auctionStart"`
		MaxRegistrations flexNumber `json:"maxRegistrations"`
	}{plain: (*plain)(r)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	r.StartingPrice = aux.StartingPrice.Value
	r.BidIncrement = nil
	if aux.BidIncrement.Valid {
		v := aux.BidIncrement.Value
		r.BidIncrement = &v
	}
	r.AuctionStart = aux.AuctionStart.Time

	m := aux.MaxRegistrations.Value
	if m != math.Trunc(m) || m > math.MaxInt32 || m < math.MinInt32 {
		return fmt.Errorf("maxRegistrations must be a whole number, got %v", m)
	}
	r.MaxRegistrations = int(m)
	return nil
}
