package graph

import (
	"strings"
	"time"
)

// Date is a calendar date parsed from an export field. Valid is false when
// the source text did not match the expected pattern; the record itself is
// still kept and the value persists as NULL.
type Date struct {
	Time  time.Time
	Valid bool
}

// Param returns the value bound for this date in an engine statement:
// the ISO calendar date, or nil when unparseable.
func (d Date) Param() any {
	if !d.Valid {
		return nil
	}
	return d.Time.Format("2006-01-02")
}

// Timestamp is an absolute instant parsed from an export field, with the
// same lenient semantics as Date.
type Timestamp struct {
	Time  time.Time
	Valid bool
}

// Param returns the value bound for this timestamp in an engine statement,
// or nil when unparseable.
func (t Timestamp) Param() any {
	if !t.Valid {
		return nil
	}
	return t.Time.UTC()
}

// parseDate tries each layout in order and returns the first match.
func parseDate(value string, layouts ...string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseConnectedOn parses the Connections "Connected On" field
// ("02 Jan 2006").
func ParseConnectedOn(value string) Date {
	t, ok := parseDate(value, "02 Jan 2006")
	return Date{Time: t, Valid: ok}
}

// ParseFollowedOn parses the Company Follows "Followed On" field
// ("Mon Jan 02 15:04:05 UTC 2006", zone name occasionally absent).
func ParseFollowedOn(value string) Timestamp {
	t, ok := parseDate(value,
		"Mon Jan 02 15:04:05 MST 2006",
		"Mon Jan 2 15:04:05 MST 2006",
		"Mon Jan 02 15:04:05 2006",
	)
	return Timestamp{Time: t, Valid: ok}
}

// ParseEndorsedOn parses the Endorsement_Received_Info "Endorsement Date"
// field ("2006/01/02 15:04:05 UTC").
func ParseEndorsedOn(value string) Timestamp {
	t, ok := parseDate(value,
		"2006/01/02 15:04:05 MST",
		"2006/01/02 15:04:05",
	)
	return Timestamp{Time: t, Valid: ok}
}

// ParseMessageTime parses the messages DATE field
// ("2006-01-02 15:04:05 UTC", zone suffix optional).
func ParseMessageTime(value string) Timestamp {
	t, ok := parseDate(value,
		"2006-01-02 15:04:05 MST",
		"2006-01-02 15:04:05",
	)
	return Timestamp{Time: t, Valid: ok}
}
