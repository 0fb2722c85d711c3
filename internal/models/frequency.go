package models

import (
	"fmt"
	"time"
)

// CheckFrequency is a source's check cadence. Each frequency maps to its own
// queue; the set is fixed at these four values.
type CheckFrequency string

const (
	FrequencyHourly  CheckFrequency = "hourly"
	FrequencyDaily   CheckFrequency = "daily"
	FrequencyWeekly  CheckFrequency = "weekly"
	FrequencyMonthly CheckFrequency = "monthly"
)

const (
	hoursPerDay  = 24
	daysPerWeek  = 7
	daysPerMonth = 30
)

// Frequencies lists all check frequencies in scheduling order.
// Order matters: scheduling passes always walk tiers hourly first.
func Frequencies() []CheckFrequency {
	return []CheckFrequency{
		FrequencyHourly,
		FrequencyDaily,
		FrequencyWeekly,
		FrequencyMonthly,
	}
}

// ParseCheckFrequency validates and converts a raw string.
func ParseCheckFrequency(s string) (CheckFrequency, error) {
	freq := CheckFrequency(s)
	if !freq.Valid() {
		return "", fmt.Errorf("invalid check frequency %q", s)
	}
	return freq, nil
}

// Valid reports whether the frequency is one of the four known values.
func (f CheckFrequency) Valid() bool {
	switch f {
	case FrequencyHourly, FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	default:
		return false
	}
}

// Interval returns how long a source of this frequency stays fresh after a
// check. A source is due again once last_checked is older than this.
func (f CheckFrequency) Interval() time.Duration {
	switch f {
	case FrequencyHourly:
		return time.Hour
	case FrequencyDaily:
		return hoursPerDay * time.Hour
	case FrequencyWeekly:
		return daysPerWeek * hoursPerDay * time.Hour
	case FrequencyMonthly:
		return daysPerMonth * hoursPerDay * time.Hour
	default:
		return 0
	}
}

// QueueName returns the backing queue name for this frequency.
func (f CheckFrequency) QueueName() string {
	return string(f)
}

func (f CheckFrequency) String() string {
	return string(f)
}
