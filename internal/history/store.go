// Package history persists finished jobs in a local SQLite database so
// past runs can be listed after the process exits.
package history

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"subburn/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
    id TEXT PRIMARY KEY,
    source_path TEXT NOT NULL,
    stages TEXT NOT NULL,
    status TEXT NOT NULL,
    error TEXT NOT NULL DEFAULT '',
    subtitle_path TEXT NOT NULL DEFAULT '',
    translated_subtitle_path TEXT NOT NULL DEFAULT '',
    video_path TEXT NOT NULL DEFAULT '',
    started_at TIMESTAMP NOT NULL,
    finished_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS warnings (
    job_id TEXT NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
    stage TEXT NOT NULL,
    message TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_jobs_finished_at ON jobs(finished_at DESC);
`

// Store is a SQLite-backed archive of terminal job states.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates or opens the database at path and applies the schema.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	// Single writer at a time keeps the pure-Go driver predictable.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record archives one terminal job. Non-terminal jobs are rejected.
func (s *Store) Record(job domain.Job) error {
	if !job.Status.Terminal() {
		return fmt.Errorf("job %s is not terminal (status=%s)", job.ID, job.Status)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin history transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.Exec(`
        INSERT OR REPLACE INTO jobs
            (id, source_path, stages, status, error,
             subtitle_path, translated_subtitle_path, video_path,
             started_at, finished_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.SourcePath, encodeStages(job.Stages), string(job.Status), job.Err,
		job.Outputs.SubtitlePath, job.Outputs.TranslatedSubtitlePath, job.Outputs.VideoPath,
		job.StartedAt.UTC(), job.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert job record: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM warnings WHERE job_id = ?`, job.ID); err != nil {
		return fmt.Errorf("clear job warnings: %w", err)
	}
	for _, warning := range job.Warnings {
		if _, err := tx.Exec(`INSERT INTO warnings (job_id, stage, message) VALUES (?, ?, ?)`,
			job.ID, string(warning.Stage), warning.Message); err != nil {
			return fmt.Errorf("insert job warning: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit history transaction: %w", err)
	}
	s.logger.Debug("job recorded", "job", job.ID, "status", job.Status)
	return nil
}

// Recent returns up to limit archived jobs, newest first.
func (s *Store) Recent(limit int) ([]domain.Job, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
        SELECT id, source_path, stages, status, error,
               subtitle_path, translated_subtitle_path, video_path,
               started_at, finished_at
        FROM jobs ORDER BY finished_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query job records: %w", err)
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		var job domain.Job
		var stages, status string
		var startedAt, finishedAt time.Time
		if err := rows.Scan(&job.ID, &job.SourcePath, &stages, &status, &job.Err,
			&job.Outputs.SubtitlePath, &job.Outputs.TranslatedSubtitlePath, &job.Outputs.VideoPath,
			&startedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("scan job record: %w", err)
		}
		job.Stages = decodeStages(stages)
		job.Status = domain.JobStatus(status)
		job.StartedAt = startedAt
		job.FinishedAt = finishedAt
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate job records: %w", err)
	}

	for i := range jobs {
		warnings, err := s.warningsFor(jobs[i].ID)
		if err != nil {
			return nil, err
		}
		jobs[i].Warnings = warnings
	}
	return jobs, nil
}

// warningsFor loads the warnings archived with one job.
func (s *Store) warningsFor(jobID string) ([]domain.Warning, error) {
	rows, err := s.db.Query(`SELECT stage, message FROM warnings WHERE job_id = ?`, jobID)
	if err != nil {
		return nil, fmt.Errorf("query job warnings: %w", err)
	}
	defer rows.Close()

	var warnings []domain.Warning
	for rows.Next() {
		var warning domain.Warning
		var stage string
		if err := rows.Scan(&stage, &warning.Message); err != nil {
			return nil, fmt.Errorf("scan job warning: %w", err)
		}
		warning.Stage = domain.Stage(stage)
		warnings = append(warnings, warning)
	}
	return warnings, rows.Err()
}

// encodeStages flattens a stage selection into a comma list.
func encodeStages(stages domain.StageSelection) string {
	var parts []string
	if stages.Transcribe {
		parts = append(parts, "transcribe")
	}
	if stages.Translate {
		parts = append(parts, "translate")
	}
	if stages.Burn {
		parts = append(parts, "burn")
	}
	return strings.Join(parts, ",")
}

// decodeStages parses the comma list written by encodeStages.
func decodeStages(encoded string) domain.StageSelection {
	var stages domain.StageSelection
	for _, part := range strings.Split(encoded, ",") {
		switch part {
		case "transcribe":
			stages.Transcribe = true
		case "translate":
			stages.Translate = true
		case "burn":
			stages.Burn = true
		}
	}
	return stages
}
