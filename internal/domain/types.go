package domain

import "time"

// Stage identifies one discrete phase of the subtitle pipeline.
type Stage string

const (
	StageDownloadingModel Stage = "downloading-model"
	StageExtractingAudio  Stage = "extracting-audio"
	StageTranscribing     Stage = "transcribing"
	StageWritingSubtitles Stage = "writing-subtitles"
	StageTranslating      Stage = "translating"
	StageBurning          Stage = "burning"
)

// JobStatus tracks the overall lifecycle of one pipeline job.
type JobStatus string

const (
	JobStatusIdle      JobStatus = "idle"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// Terminal reports whether a status can no longer change.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	default:
		return false
	}
}

// StageSelection toggles the pipeline stages a job should run.
type StageSelection struct {
	Transcribe bool `json:"transcribe"`
	Translate  bool `json:"translate"`
	Burn       bool `json:"burn"`
}

// Any reports whether at least one stage is selected.
func (s StageSelection) Any() bool {
	return s.Transcribe || s.Translate || s.Burn
}

// Outputs lists the artifact paths a job produces.
type Outputs struct {
	SubtitlePath           string `json:"subtitlePath,omitempty"`
	TranslatedSubtitlePath string `json:"translatedSubtitlePath,omitempty"`
	VideoPath              string `json:"videoPath,omitempty"`
}

// Warning records a non-fatal problem encountered during a run.
type Warning struct {
	Stage   Stage  `json:"stage"`
	Message string `json:"message"`
}

// Job is the orchestrator's run-time record for one pipeline run.
type Job struct {
	ID           string         `json:"id"`
	SourcePath   string         `json:"sourcePath"`
	Stages       StageSelection `json:"stages"`
	Status       JobStatus      `json:"status"`
	CurrentStage Stage          `json:"currentStage,omitempty"`
	Progress     float64        `json:"progress"`
	Outputs      Outputs        `json:"outputs"`
	Warnings     []Warning      `json:"warnings,omitempty"`
	Err          string         `json:"error,omitempty"`
	StartedAt    time.Time      `json:"startedAt"`
	FinishedAt   time.Time      `json:"finishedAt,omitempty"`
}

// Segment is one timed text span produced by transcription.
type Segment struct {
	Start time.Duration `json:"start"`
	End   time.Duration `json:"end"`
	Text  string        `json:"text"`
}
