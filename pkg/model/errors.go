package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Defining possible error
var (
	ErrNotInitialized   = errors.New("no homology group loaded")
	ErrGroupNotFound    = errors.New("group not found")
	ErrEmptySelection   = errors.New("selection is empty")
	ErrUnknownTree      = errors.New("unknown tree")
	ErrInvalidPosition  = errors.New("position out of range")
	ErrInvalidDataIndex = errors.New("data index out of range")
	ErrUnknownOperator  = errors.New("unknown filter operator")
	ErrInvalidFilter    = errors.New("invalid filter")
	ErrInvalidSorting   = errors.New("invalid sorting")
	ErrInvalidReference = errors.New("invalid reference")
	ErrNoDefaultTree    = errors.New("default dendrogram missing")
	ErrDuplicateLeaf    = errors.New("duplicate leaf in default dendrogram")
)

type Severity int

const (
	SeverityWarning Severity = iota + 1
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// LoadError describes a dataset that could not be fetched or merged during a load.
type LoadError struct {
	Severity   Severity `json:"severity"`
	HomologyID string   `json:"homology_id"`
	Dataset    string   `json:"dataset"`
	Err        error    `json:"-"`
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s loading %s of homology %s: %v", e.Severity, e.Dataset, e.HomologyID, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func (e *LoadError) Fatal() bool {
	return e.Severity == SeverityFatal
}

// Message is the user facing form, used in JSON responses.
func (e *LoadError) Message() string {
	if e == nil {
		return ""
	}
	return e.Error()
}

func (e *LoadError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Severity   Severity `json:"severity"`
		HomologyID string   `json:"homology_id"`
		Dataset    string   `json:"dataset"`
		Message    string   `json:"message"`
	}{e.Severity, e.HomologyID, e.Dataset, e.Message()})
}

// supersedes reports whether next may replace current. Severity never downgrades.
func supersedes(next, current *LoadError) bool {
	if current == nil {
		return true
	}
	return next.Severity >= current.Severity
}
