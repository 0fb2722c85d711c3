package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrequencies_SchedulingOrder(t *testing.T) {
	assert.Equal(t, []CheckFrequency{
		FrequencyHourly,
		FrequencyDaily,
		FrequencyWeekly,
		FrequencyMonthly,
	}, Frequencies())
}

func TestParseCheckFrequency(t *testing.T) {
	for _, freq := range Frequencies() {
		parsed, err := ParseCheckFrequency(freq.String())
		require.NoError(t, err)
		assert.Equal(t, freq, parsed)
	}
}

func TestParseCheckFrequency_Invalid(t *testing.T) {
	for _, raw := range []string{"", "biweekly", "Hourly", "daily "} {
		_, err := ParseCheckFrequency(raw)
		assert.Error(t, err, "input %q", raw)
	}
}

func TestInterval(t *testing.T) {
	assert.Equal(t, time.Hour, FrequencyHourly.Interval())
	assert.Equal(t, 24*time.Hour, FrequencyDaily.Interval())
	assert.Equal(t, 7*24*time.Hour, FrequencyWeekly.Interval())
	assert.Equal(t, 30*24*time.Hour, FrequencyMonthly.Interval())
	assert.Zero(t, CheckFrequency("bogus").Interval())
}

func TestQueueName(t *testing.T) {
	assert.Equal(t, "hourly", FrequencyHourly.QueueName())
	assert.Equal(t, "monthly", FrequencyMonthly.QueueName())
}
