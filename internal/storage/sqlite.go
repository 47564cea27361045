package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"

	"advisor-engine/internal/logging"
	"advisor-engine/internal/types"
)

// SQLiteStore implements RecordStore on an embedded SQLite database. Used
// by the demo binary and single-node deployments.
type SQLiteStore struct {
	db     *sql.DB
	logger logging.Logger
}

// NewSQLiteStore opens (creating if necessary) a SQLite-backed record store
func NewSQLiteStore(path string, logger logging.Logger) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// SQLite serializes writers; a single connection avoids SQLITE_BUSY churn
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db, logger: logger}
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS question_records (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			question_id TEXT NOT NULL,
			text TEXT NOT NULL,
			category TEXT NOT NULL,
			session_id TEXT NOT NULL,
			status TEXT NOT NULL,
			response TEXT,
			response_time_ms INTEGER,
			effectiveness_score REAL,
			follow_up_generated INTEGER NOT NULL DEFAULT 0,
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_question_records_user_time
			ON question_records (user_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_question_records_user_question
			ON question_records (user_id, question_id)`,
		`CREATE TABLE IF NOT EXISTS preference_values (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			pref_key TEXT NOT NULL,
			value TEXT NOT NULL,
			recorded_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_preference_values_user_key
			ON preference_values (user_id, pref_key, recorded_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration statement failed: %w", err)
		}
	}
	return nil
}

// StoreRecord appends a new tracking record
func (s *SQLiteStore) StoreRecord(ctx context.Context, record *types.QuestionRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("invalid record: %w", err)
	}

	metadataBytes, err := json.Marshal(record.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO question_records (
			id, user_id, question_id, text, category, session_id, status,
			response, response_time_ms, effectiveness_score,
			follow_up_generated, metadata, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.UserID,
		record.QuestionID,
		record.Text,
		string(record.Category),
		record.SessionID,
		string(record.Status),
		record.Response,
		record.ResponseTimeMs,
		record.EffectivenessScore,
		record.FollowUpGenerated,
		string(metadataBytes),
		record.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to store question record: %w", err)
	}
	return nil
}

// UpdateRecord rewrites the mutable response fields of an existing record
func (s *SQLiteStore) UpdateRecord(ctx context.Context, record *types.QuestionRecord) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE question_records SET
			status = ?, response = ?, response_time_ms = ?,
			effectiveness_score = ?, follow_up_generated = ?
		WHERE id = ?`,
		string(record.Status),
		record.Response,
		record.ResponseTimeMs,
		record.EffectivenessScore,
		record.FollowUpGenerated,
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update question record: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("question record %s not found", record.ID)
	}
	return nil
}

// LatestUnanswered returns the most recent ASKED record for the question
func (s *SQLiteStore) LatestUnanswered(ctx context.Context, userID, questionID string) (*types.QuestionRecord, error) {
	row := s.db.QueryRowContext(ctx, selectRecordColumns+`
		WHERE user_id = ? AND question_id = ? AND status = ?
		ORDER BY created_at DESC LIMIT 1`,
		userID, questionID, string(types.StatusAsked))

	record, err := s.scanRecordRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest unanswered record: %w", err)
	}
	return record, nil
}

// QueryRecords returns matching records sorted newest-first
func (s *SQLiteStore) QueryRecords(ctx context.Context, query *RecordQuery) ([]*types.QuestionRecord, error) {
	sqlQuery := selectRecordColumns + ` WHERE user_id = ?`
	args := []any{query.UserID}

	if query.QuestionID != "" {
		sqlQuery += " AND question_id = ?"
		args = append(args, query.QuestionID)
	}
	if query.Category != "" {
		sqlQuery += " AND category = ?"
		args = append(args, string(query.Category))
	}
	if query.Since != nil {
		sqlQuery += " AND created_at >= ?"
		args = append(args, *query.Since)
	}
	sqlQuery += " ORDER BY created_at DESC"
	if query.Limit > 0 {
		sqlQuery += " LIMIT ?"
		args = append(args, query.Limit)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query question records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*types.QuestionRecord
	for rows.Next() {
		record, err := s.scanRecordRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question record: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// QueryByPattern returns records across all users whose question ID or
// category matches the pattern, newest-first
func (s *SQLiteStore) QueryByPattern(ctx context.Context, pattern string, limit int) ([]*types.QuestionRecord, error) {
	sqlQuery := selectRecordColumns + `
		WHERE question_id = ? OR category = ?
		ORDER BY created_at DESC`
	args := []any{pattern, pattern}
	if limit > 0 {
		sqlQuery += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records by pattern: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*types.QuestionRecord
	for rows.Next() {
		record, err := s.scanRecordRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question record: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// StorePreferenceValue appends an observed preference value
func (s *SQLiteStore) StorePreferenceValue(ctx context.Context, value *PreferenceValue) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preference_values (user_id, pref_key, value, recorded_at)
		VALUES (?, ?, ?, ?)`,
		value.UserID, value.Key, value.Value, value.RecordedAt)
	if err != nil {
		return fmt.Errorf("failed to store preference value: %w", err)
	}
	return nil
}

// PreferenceHistory returns observed values for a key, newest-first
func (s *SQLiteStore) PreferenceHistory(ctx context.Context, userID, key string, limit int) ([]*PreferenceValue, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, pref_key, value, recorded_at
		FROM preference_values
		WHERE user_id = ? AND pref_key = ?
		ORDER BY recorded_at DESC LIMIT ?`,
		userID, key, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query preference history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var values []*PreferenceValue
	for rows.Next() {
		var v PreferenceValue
		if err := rows.Scan(&v.UserID, &v.Key, &v.Value, &v.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan preference value: %w", err)
		}
		values = append(values, &v)
	}
	return values, rows.Err()
}

// DeleteRecordsBefore removes records older than the cutoff
func (s *SQLiteStore) DeleteRecordsBefore(ctx context.Context, userID string, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM question_records WHERE user_id = ? AND created_at < ?`,
		userID, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old records: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted records: %w", err)
	}
	return deleted, nil
}

// Close releases the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) scanRecordRow(row rowScanner) (*types.QuestionRecord, error) {
	var record types.QuestionRecord
	var category, status, metadata string

	err := row.Scan(
		&record.ID,
		&record.UserID,
		&record.QuestionID,
		&record.Text,
		&category,
		&record.SessionID,
		&status,
		&record.Response,
		&record.ResponseTimeMs,
		&record.EffectivenessScore,
		&record.FollowUpGenerated,
		&metadata,
		&record.Timestamp,
	)
	if err != nil {
		return nil, err
	}

	record.Category = types.QuestionCategory(category)
	record.Status = types.QuestionStatus(status)
	if err := json.Unmarshal([]byte(metadata), &record.Metadata); err != nil {
		s.logger.Error("Failed to unmarshal record metadata", "record_id", record.ID, "error", err)
		record.Metadata = map[string]any{}
	}
	return &record, nil
}
