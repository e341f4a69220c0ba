package types

import (
	"time"

	"github.com/yumyai/panva/pkg/model"
)

type HealthResponse struct {
	Health      string    `json:"health"`
	Database    string    `json:"database,omitempty"`
	Initialized bool      `json:"initialized"`
	HomologyID  string    `json:"homology_id,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// JobResponse acknowledges a background job; poll Location for its state.
type JobResponse struct {
	JobID    string `json:"job_id"`
	Status   string `json:"status"`
	Location string `json:"location"`
}

type VariablePositionsResponse struct {
	Total             int                       `json:"total"`
	VariablePositions []*model.VariablePosition `json:"variablePositions"`
}

type HomologyListResponse struct {
	Total      int               `json:"total"`
	Homologies []*model.Homology `json:"homologies"`
}
