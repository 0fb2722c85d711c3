package models

import (
	"errors"
	"strings"
	"time"
)

// Check status values recorded by the content checker.
const (
	CheckStatusOK     = "ok"
	CheckStatusFailed = "failed"
)

// Source represents a registered content source.
type Source struct {
	ID              string         `json:"id" db:"id"`
	Name            string         `json:"name" db:"name"`
	URL             string         `json:"url" db:"url"`
	Description     string         `json:"description,omitempty" db:"description"`
	Active          bool           `json:"active" db:"active"`
	CheckFrequency  CheckFrequency `json:"check_frequency" db:"check_frequency"`
	LastChecked     *time.Time     `json:"last_checked,omitempty" db:"last_checked"`
	LastCheckStatus string         `json:"last_check_status,omitempty" db:"last_check_status"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" db:"updated_at"`
}

// Validate checks the fields a caller must supply before a source can be stored.
func (s *Source) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("source name is required")
	}
	if !strings.HasPrefix(s.URL, "http://") && !strings.HasPrefix(s.URL, "https://") {
		return errors.New("source url must start with http:// or https://")
	}
	if !s.CheckFrequency.Valid() {
		return errors.New("check_frequency must be one of hourly, daily, weekly, monthly")
	}
	return nil
}

// Due reports whether the source needs a check at the given time: never
// checked, or last checked longer ago than its frequency interval.
func (s *Source) Due(now time.Time) bool {
	if !s.Active {
		return false
	}
	if s.LastChecked == nil {
		return true
	}
	return now.Sub(*s.LastChecked) > s.CheckFrequency.Interval()
}
