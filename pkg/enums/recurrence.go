package enums

import "fmt"

type RecurrencePattern string

const (
	RecurrenceDaily   RecurrencePattern = "daily"
	RecurrenceWeekly  RecurrencePattern = "weekly"
	RecurrenceMonthly RecurrencePattern = "monthly"
	RecurrenceYearly  RecurrencePattern = "yearly"
)

var validRecurrencePatterns = []RecurrencePattern{
	RecurrenceDaily,
	RecurrenceWeekly,
	RecurrenceMonthly,
	RecurrenceYearly,
}

// String implements fmt.Stringer.
func (r RecurrencePattern) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RecurrencePattern.
func (r RecurrencePattern) IsValid() bool {
	for _, candidate := range validRecurrencePatterns {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRecurrencePattern converts raw input into a RecurrencePattern.
func ParseRecurrencePattern(value string) (RecurrencePattern, error) {
	for _, candidate := range validRecurrencePatterns {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid recurrence pattern %q", value)
}
