package pipeline

import (
	"errors"
	"fmt"

	"subburn/internal/domain"
)

// ErrJobAlreadyRunning is returned when starting a second active job.
var ErrJobAlreadyRunning = errors.New("job already running")

// ErrNoRunningJob is returned when cancel is requested for idle state.
var ErrNoRunningJob = errors.New("no running job")

// FailureKind classifies a fatal pipeline failure.
type FailureKind string

const (
	KindValidation      FailureKind = "validation"
	KindDownload        FailureKind = "download"
	KindExtraction      FailureKind = "extraction"
	KindTranscription   FailureKind = "transcription"
	KindEmptyTranscript FailureKind = "empty-transcript"
	KindPersistence     FailureKind = "persistence"
	KindEncoding        FailureKind = "encoding"
)

// StageError is a fatal failure attributed to one pipeline stage. Raw
// adapter errors are wrapped into this type at the orchestrator boundary;
// nothing else reaches the observer.
type StageError struct {
	Stage domain.Stage
	Kind  FailureKind
	Err   error
}

// Error formats the failure with its stage and classification.
func (e *StageError) Error() string {
	if e.Stage == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Kind, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *StageError) Unwrap() error { return e.Err }

// stageFailure wraps err for the given stage and kind.
func stageFailure(stage domain.Stage, kind FailureKind, err error) *StageError {
	return &StageError{Stage: stage, Kind: kind, Err: err}
}
