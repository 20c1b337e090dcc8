// Package engine implements the stub audit engine served by engined: a gorm
// audit store, a simulated KPI-extraction runner, and the KPI schema. It
// exists so the client has a counterparty with the real wire contract during
// development and end-to-end tests.
package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"kpiauditor/internal/config"
	"kpiauditor/internal/domain"
	"kpiauditor/internal/logger"
)

// ErrNotFound marks a lookup for an unknown audit id.
var ErrNotFound = errors.New("audit not found")

// ErrAlreadyTerminal marks a state transition attempted on a finalized audit.
var ErrAlreadyTerminal = errors.New("audit already in a terminal state")

// AuditRecord is the persisted form of an audit. Results and summary are
// stored as JSON text columns; the engine never queries inside them.
type AuditRecord struct {
	ID               string `gorm:"type:text;primaryKey"`
	CollegeName      string `gorm:"type:text;not null;index"`
	Status           string `gorm:"type:text;not null;index;default:processing"`
	Progress         int    `gorm:"default:0"`
	ProgressMessage  string `gorm:"type:text"`
	ResultsJSON      string `gorm:"type:text"`
	SummaryJSON      string `gorm:"type:text"`
	CreatedAt        time.Time
	CompletedAt      *time.Time
	TimeTakenSeconds *float64
}

// TableName returns the database table name for AuditRecord.
func (AuditRecord) TableName() string {
	return "audits"
}

// InitDB initializes the engine database based on configuration and runs
// migrations.
// Parameters:
//   - cfg: database configuration including driver and connection settings.
// Returns:
//   - *gorm.DB: initialized database handle.
//   - error: non-nil if connection or migration fails.
func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	var db *gorm.DB
	var err error

	switch cfg.Driver {
	case "postgres":
		db, err = gorm.Open(postgres.Open(cfg.DSN), gormConfig)
	case "sqlite", "":
		db, err = openSQLite(cfg.Path, gormConfig)
	default:
		logger.GetDefault().Warnf("Unknown database driver %q, defaulting to SQLite", cfg.Driver)
		db, err = openSQLite(cfg.Path, gormConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.AutoMigrate(&AuditRecord{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func openSQLite(path string, gormConfig *gorm.Config) (*gorm.DB, error) {
	if path == "" {
		path = "./data/audits.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return gorm.Open(sqlite.Open(path), gormConfig)
}

// Store persists audits and guards their status transitions.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store over the given database handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Create inserts a fresh processing audit.
// Parameters:
//   - id: engine-assigned audit id.
//   - collegeName: trimmed subject name.
// Returns:
//   - error: non-nil on insert failure.
func (s *Store) Create(id, collegeName string) error {
	rec := AuditRecord{
		ID:              id,
		CollegeName:     collegeName,
		Status:          string(domain.StatusProcessing),
		Progress:        0,
		ProgressMessage: "Starting audit...",
		ResultsJSON:     "[]",
		CreatedAt:       time.Now().UTC(),
	}
	return s.db.Create(&rec).Error
}

// UpdateProgress advances a processing audit. Updates on terminal audits are
// silently dropped so a late runner tick cannot resurrect a cancelled job.
func (s *Store) UpdateProgress(id string, progress int, message string) error {
	return s.db.Model(&AuditRecord{}).
		Where("id = ? AND status = ?", id, string(domain.StatusProcessing)).
		Updates(map[string]interface{}{
			"progress":         progress,
			"progress_message": message,
		}).Error
}

// Complete finalizes a processing audit with its results and summary.
// Returns ErrAlreadyTerminal when the audit was already finalized (for
// example by a cancellation that raced the runner).
func (s *Store) Complete(id string, results []domain.KPIResult, summary *domain.AuditSummary, timeTaken float64) error {
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	now := time.Now().UTC()
	res := s.db.Model(&AuditRecord{}).
		Where("id = ? AND status = ?", id, string(domain.StatusProcessing)).
		Updates(map[string]interface{}{
			"status":             string(domain.StatusCompleted),
			"progress":           100,
			"progress_message":   "Audit complete!",
			"results_json":       string(resultsJSON),
			"summary_json":       string(summaryJSON),
			"completed_at":       &now,
			"time_taken_seconds": timeTaken,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyTerminal
	}
	return nil
}

// Fail finalizes a processing audit as failed.
func (s *Store) Fail(id, message string) error {
	res := s.db.Model(&AuditRecord{}).
		Where("id = ? AND status = ?", id, string(domain.StatusProcessing)).
		Updates(map[string]interface{}{
			"status":           string(domain.StatusFailed),
			"progress_message": message,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyTerminal
	}
	return nil
}

// Cancel transitions a processing audit to cancelled. Returns
// ErrAlreadyTerminal when the audit had already reached a terminal state,
// and ErrNotFound when the id is unknown.
func (s *Store) Cancel(id string) error {
	res := s.db.Model(&AuditRecord{}).
		Where("id = ? AND status = ?", id, string(domain.StatusProcessing)).
		Updates(map[string]interface{}{
			"status":           string(domain.StatusCancelled),
			"progress_message": "Audit cancelled by user",
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := s.db.Model(&AuditRecord{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrAlreadyTerminal
	}
	return nil
}

// Get fetches the full audit snapshot.
func (s *Store) Get(id string) (*domain.AuditJob, error) {
	var rec AuditRecord
	if err := s.db.First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec.toJob()
}

// Delete removes an audit. Returns ErrNotFound for unknown ids.
func (s *Store) Delete(id string) error {
	res := s.db.Delete(&AuditRecord{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns the most recent audits, newest first.
func (s *Store) List(limit int) ([]domain.AuditListEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	var recs []AuditRecord
	err := s.db.Order("created_at DESC").Limit(limit).Find(&recs).Error
	if err != nil {
		return nil, err
	}

	entries := make([]domain.AuditListEntry, 0, len(recs))
	for i := range recs {
		rec := &recs[i]
		entry := domain.AuditListEntry{
			ID:          rec.ID,
			CollegeName: rec.CollegeName,
			Status:      domain.AuditStatus(rec.Status),
			CreatedAt:   rec.CreatedAt,
		}
		if rec.SummaryJSON != "" {
			var summary domain.AuditSummary
			if err := json.Unmarshal([]byte(rec.SummaryJSON), &summary); err == nil {
				cov := summary.CoveragePercentage
				entry.CoveragePercentage = &cov
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// toJob converts the persisted record to the wire snapshot.
func (rec *AuditRecord) toJob() (*domain.AuditJob, error) {
	job := &domain.AuditJob{
		ID:               rec.ID,
		CollegeName:      rec.CollegeName,
		Status:           domain.AuditStatus(rec.Status),
		Progress:         rec.Progress,
		ProgressMessage:  rec.ProgressMessage,
		Results:          []domain.KPIResult{},
		CreatedAt:        rec.CreatedAt,
		CompletedAt:      rec.CompletedAt,
		TimeTakenSeconds: rec.TimeTakenSeconds,
	}
	if rec.ResultsJSON != "" {
		if err := json.Unmarshal([]byte(rec.ResultsJSON), &job.Results); err != nil {
			return nil, fmt.Errorf("decode stored results: %w", err)
		}
	}
	if rec.SummaryJSON != "" {
		var summary domain.AuditSummary
		if err := json.Unmarshal([]byte(rec.SummaryJSON), &summary); err != nil {
			return nil, fmt.Errorf("decode stored summary: %w", err)
		}
		job.Summary = &summary
	}
	return job, nil
}
