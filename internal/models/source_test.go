package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSourceValidate(t *testing.T) {
	tests := []struct {
		name    string
		source  Source
		wantErr string
	}{
		{
			name: "valid",
			source: Source{
				Name:           "Example",
				URL:            "https://example.com",
				CheckFrequency: FrequencyDaily,
			},
		},
		{
			name: "missing name",
			source: Source{
				Name:           "   ",
				URL:            "https://example.com",
				CheckFrequency: FrequencyDaily,
			},
			wantErr: "name is required",
		},
		{
			name: "bad url scheme",
			source: Source{
				Name:           "Example",
				URL:            "ftp://example.com",
				CheckFrequency: FrequencyDaily,
			},
			wantErr: "http:// or https://",
		},
		{
			name: "unknown frequency",
			source: Source{
				Name:           "Example",
				URL:            "https://example.com",
				CheckFrequency: "fortnightly",
			},
			wantErr: "check_frequency",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.source.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestSourceDue(t *testing.T) {
	now := time.Now()
	recent := now.Add(-30 * time.Minute)
	stale := now.Add(-2 * time.Hour)

	tests := []struct {
		name   string
		source Source
		want   bool
	}{
		{
			name:   "never checked",
			source: Source{Active: true, CheckFrequency: FrequencyHourly},
			want:   true,
		},
		{
			name:   "recently checked",
			source: Source{Active: true, CheckFrequency: FrequencyHourly, LastChecked: &recent},
			want:   false,
		},
		{
			name:   "checked longer ago than interval",
			source: Source{Active: true, CheckFrequency: FrequencyHourly, LastChecked: &stale},
			want:   true,
		},
		{
			name:   "inactive sources are never due",
			source: Source{Active: false, CheckFrequency: FrequencyHourly},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.source.Due(now))
		})
	}
}
