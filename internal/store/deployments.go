package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type DeploymentStatus string

const (
	StatusStarted   DeploymentStatus = "started"
	StatusSucceeded DeploymentStatus = "succeeded"
	StatusFailed    DeploymentStatus = "failed"
	StatusSkipped   DeploymentStatus = "skipped"
)

// ErrNotFound is returned when a deployment or secret does not exist.
var ErrNotFound = errors.New("not found")

// Deployment is one recorded run of the pipeline.
type Deployment struct {
	ID         string           `json:"id"`
	AppName    string           `json:"appName"`
	Branch     string           `json:"branch"`
	Tag        string           `json:"tag"`
	ImageRef   string           `json:"imageRef"`
	Runner     string           `json:"runner"`
	Trigger    string           `json:"trigger"` // "cli" or "push"
	Status     DeploymentStatus `json:"status"`
	Error      string           `json:"error,omitempty"`
	StartedAt  time.Time        `json:"startedAt"`
	FinishedAt *time.Time       `json:"finishedAt,omitempty"`
}

func (s *Store) createDeploymentsTable() error {
	schema := `
CREATE TABLE IF NOT EXISTS deployments (
    id TEXT PRIMARY KEY,                    -- ULID, sortable
    app_name TEXT NOT NULL,
    branch TEXT NOT NULL,
    tag TEXT NOT NULL,
    image_ref TEXT NOT NULL,
    runner TEXT NOT NULL,
    triggered_by TEXT NOT NULL,
    status TEXT NOT NULL,
    error TEXT NOT NULL DEFAULT '',
    started_at DATETIME NOT NULL,
    finished_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_deployments_app_name ON deployments(app_name);
CREATE INDEX IF NOT EXISTS idx_deployments_branch ON deployments(branch);
`
	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create deployments table: %w", err)
	}
	return nil
}

func (s *Store) SaveDeployment(d Deployment) error {
	query := `INSERT INTO deployments (id, app_name, branch, tag, image_ref, runner, triggered_by, status, error, started_at, finished_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.Exec(query, d.ID, d.AppName, d.Branch, d.Tag, d.ImageRef, d.Runner,
		d.Trigger, d.Status, d.Error, d.StartedAt, d.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to save deployment '%s': %w", d.ID, err)
	}
	return nil
}

// FinishDeployment records the terminal status of a deployment.
func (s *Store) FinishDeployment(id string, status DeploymentStatus, errMsg string) error {
	query := `UPDATE deployments SET status = ?, error = ?, finished_at = ? WHERE id = ?`
	result, err := s.db.Exec(query, status, errMsg, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update deployment '%s': %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("deployment '%s': %w", id, ErrNotFound)
	}
	return nil
}

func (s *Store) GetDeployment(id string) (Deployment, error) {
	query := `SELECT id, app_name, branch, tag, image_ref, runner, triggered_by, status, error, started_at, finished_at
              FROM deployments WHERE id = ?`
	row := s.db.QueryRow(query, id)
	d, err := scanDeployment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Deployment{}, fmt.Errorf("deployment '%s': %w", id, ErrNotFound)
		}
		return Deployment{}, fmt.Errorf("failed to get deployment '%s': %w", id, err)
	}
	return d, nil
}

// ListDeployments returns the newest deployments first. ULIDs sort
// lexicographically by creation time, so ordering by id is ordering by time.
func (s *Store) ListDeployments(limit int) ([]Deployment, error) {
	query := `SELECT id, app_name, branch, tag, image_ref, runner, triggered_by, status, error, started_at, finished_at
              FROM deployments
              ORDER BY id DESC
              LIMIT ?`
	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list deployments: %w", err)
	}
	defer rows.Close()

	var deployments []Deployment
	for rows.Next() {
		d, err := scanDeployment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deployment: %w", err)
		}
		deployments = append(deployments, d)
	}
	return deployments, rows.Err()
}

// LastSuccessful returns the most recent succeeded deployment for a branch.
func (s *Store) LastSuccessful(branch string) (Deployment, error) {
	query := `SELECT id, app_name, branch, tag, image_ref, runner, triggered_by, status, error, started_at, finished_at
              FROM deployments
              WHERE branch = ? AND status = ?
              ORDER BY id DESC
              LIMIT 1`
	row := s.db.QueryRow(query, branch, StatusSucceeded)
	d, err := scanDeployment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Deployment{}, fmt.Errorf("no successful deployment for branch '%s': %w", branch, ErrNotFound)
		}
		return Deployment{}, fmt.Errorf("failed to query last successful deployment: %w", err)
	}
	return d, nil
}

// PruneDeployments keeps only the N most recent records.
func (s *Store) PruneDeployments(keep int) error {
	query := `
        DELETE FROM deployments
        WHERE id NOT IN (
            SELECT id FROM deployments
            ORDER BY id DESC
            LIMIT ?
        )
    `
	if _, err := s.db.Exec(query, keep); err != nil {
		return fmt.Errorf("failed to prune deployments: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeployment(row rowScanner) (Deployment, error) {
	var d Deployment
	var finishedAt sql.NullTime
	err := row.Scan(&d.ID, &d.AppName, &d.Branch, &d.Tag, &d.ImageRef, &d.Runner,
		&d.Trigger, &d.Status, &d.Error, &d.StartedAt, &finishedAt)
	if err != nil {
		return Deployment{}, err
	}
	if finishedAt.Valid {
		d.FinishedAt = &finishedAt.Time
	}
	return d, nil
}
