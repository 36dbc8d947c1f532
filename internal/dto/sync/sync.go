package syncdto

import (
	"encoding/json"
	"time"

	"github.com/opencodefirst/codefirst/internal/model"
)

type RunData struct {
	ID         string          `json:"id"`
	Status     string          `json:"status"`
	Created    int             `json:"created"`
	Updated    int             `json:"updated"`
	Error      string          `json:"error,omitempty"`
	Summary    json.RawMessage `json:"summary,omitempty"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
}

type StatusResponse struct {
	Code string   `json:"code"`
	Data *RunData `json:"data"`
}

type RunListResponse struct {
	Code string    `json:"code"`
	Data []RunData `json:"data"`
}

// NewRunData 由执行记录转换
func NewRunData(run *model.SyncRun) *RunData {
	if run == nil {
		return nil
	}
	data := &RunData{
		ID:         run.ID,
		Status:     run.Status,
		Created:    run.Created,
		Updated:    run.Updated,
		Error:      run.ErrorMsg,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
	}
	if len(run.Summary) > 0 {
		data.Summary = json.RawMessage(run.Summary)
	}
	return data
}
