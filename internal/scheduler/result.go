package scheduler

import "github.com/jonesrussell/content-discovery/internal/models"

// Every public scheduler operation reports through one of these result types
// instead of returning an error: failures are normalized into the Success and
// Error fields so callers never need scheduling-specific error handling.

// Failure messages surfaced to callers of ScheduleImmediateCheck.
const (
	MsgSourceNotFound = "Source not found"
	MsgSourceInactive = "Source is inactive"
)

// ScheduleResult reports one scheduling pass.
type ScheduleResult struct {
	Success   bool                          `json:"success"`
	Scheduled map[models.CheckFrequency]int `json:"scheduled,omitempty"`
	Total     int                           `json:"total"`
	Error     string                        `json:"error,omitempty"`
}

// ImmediateCheckResult reports an on-demand single-source check.
type ImmediateCheckResult struct {
	Success    bool   `json:"success"`
	JobID      string `json:"job_id,omitempty"`
	SourceID   string `json:"source_id,omitempty"`
	SourceName string `json:"source_name,omitempty"`
	Error      string `json:"error,omitempty"`
}

// StatsResult reports a queue statistics snapshot. Stats is nil on failure;
// partial snapshots are never returned.
type StatsResult struct {
	Success bool               `json:"success"`
	Stats   *models.QueueStats `json:"stats,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// CleanupResult reports a job cleanup pass.
type CleanupResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func scheduleFailure(err error) ScheduleResult {
	return ScheduleResult{Error: err.Error()}
}

func immediateFailure(msg string) ImmediateCheckResult {
	return ImmediateCheckResult{Error: msg}
}
