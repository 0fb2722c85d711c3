package queue

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
)

// CheckPayload is the body of a source check job. Jobs carry only the source
// ID; everything else is re-read from the registry at processing time.
type CheckPayload struct {
	SourceID string `json:"source_id"`
}

// NewCheckTask builds an asynq task for checking the given source.
func NewCheckTask(sourceID string) (*asynq.Task, error) {
	payload, err := json.Marshal(CheckPayload{SourceID: sourceID})
	if err != nil {
		return nil, fmt.Errorf("marshal check payload: %w", err)
	}
	return asynq.NewTask(TypeSourceCheck, payload), nil
}

// ParseCheckPayload decodes a check job payload.
func ParseCheckPayload(data []byte) (CheckPayload, error) {
	var payload CheckPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, fmt.Errorf("unmarshal check payload: %w", err)
	}
	if payload.SourceID == "" {
		return payload, errors.New("check payload has no source_id")
	}
	return payload, nil
}
