package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	// PostgreSQL driver
	_ "github.com/lib/pq"

	"advisor-engine/internal/logging"
	"advisor-engine/internal/types"
)

// PostgresStore implements RecordStore on PostgreSQL
type PostgresStore struct {
	db     *sql.DB
	logger logging.Logger
}

// NewPostgresStore opens a PostgreSQL-backed record store and ensures the
// schema exists
func NewPostgresStore(dsn string, logger logging.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	store := &PostgresStore{db: db, logger: logger}
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return store, nil
}

func (s *PostgresStore) migrate() error {
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
			response_time_ms BIGINT,
			effectiveness_score DOUBLE PRECISION,
			follow_up_generated BOOLEAN NOT NULL DEFAULT FALSE,
			metadata JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_question_records_user_time
			ON question_records (user_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_question_records_user_question
			ON question_records (user_id, question_id)`,
		`CREATE TABLE IF NOT EXISTS preference_values (
			id BIGSERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			pref_key TEXT NOT NULL,
			value TEXT NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL
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
func (s *PostgresStore) StoreRecord(ctx context.Context, record *types.QuestionRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("invalid record: %w", err)
	}

	metadataBytes, err := json.Marshal(record.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := `
		INSERT INTO question_records (
			id, user_id, question_id, text, category, session_id, status,
			response, response_time_ms, effectiveness_score,
			follow_up_generated, metadata, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err = s.db.ExecContext(ctx, query,
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
		metadataBytes,
		record.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to store question record: %w", err)
	}
	return nil
}

// UpdateRecord rewrites the mutable response fields of an existing record
func (s *PostgresStore) UpdateRecord(ctx context.Context, record *types.QuestionRecord) error {
	query := `
		UPDATE question_records SET
			status = $2, response = $3, response_time_ms = $4,
			effectiveness_score = $5, follow_up_generated = $6
		WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query,
		record.ID,
		string(record.Status),
		record.Response,
		record.ResponseTimeMs,
		record.EffectivenessScore,
		record.FollowUpGenerated,
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
func (s *PostgresStore) LatestUnanswered(ctx context.Context, userID, questionID string) (*types.QuestionRecord, error) {
	query := selectRecordColumns + `
		WHERE user_id = $1 AND question_id = $2 AND status = $3
		ORDER BY created_at DESC LIMIT 1`

	row := s.db.QueryRowContext(ctx, query, userID, questionID, string(types.StatusAsked))
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
func (s *PostgresStore) QueryRecords(ctx context.Context, query *RecordQuery) ([]*types.QuestionRecord, error) {
	sqlQuery := selectRecordColumns + ` WHERE user_id = $1`
	args := []any{query.UserID}

	if query.QuestionID != "" {
		args = append(args, query.QuestionID)
		sqlQuery += fmt.Sprintf(" AND question_id = $%d", len(args))
	}
	if query.Category != "" {
		args = append(args, string(query.Category))
		sqlQuery += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if query.Since != nil {
		args = append(args, *query.Since)
		sqlQuery += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	sqlQuery += " ORDER BY created_at DESC"
	if query.Limit > 0 {
		args = append(args, query.Limit)
		sqlQuery += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query question records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return s.scanRecords(rows)
}

// QueryByPattern returns records across all users whose question ID or
// category matches the pattern, newest-first
func (s *PostgresStore) QueryByPattern(ctx context.Context, pattern string, limit int) ([]*types.QuestionRecord, error) {
	sqlQuery := selectRecordColumns + `
		WHERE question_id = $1 OR category = $1
		ORDER BY created_at DESC`
	args := []any{pattern}
	if limit > 0 {
		args = append(args, limit)
		sqlQuery += " LIMIT $2"
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records by pattern: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return s.scanRecords(rows)
}

// StorePreferenceValue appends an observed preference value
func (s *PostgresStore) StorePreferenceValue(ctx context.Context, value *PreferenceValue) error {
	query := `
		INSERT INTO preference_values (user_id, pref_key, value, recorded_at)
		VALUES ($1, $2, $3, $4)`

	_, err := s.db.ExecContext(ctx, query, value.UserID, value.Key, value.Value, value.RecordedAt)
	if err != nil {
		return fmt.Errorf("failed to store preference value: %w", err)
	}
	return nil
}

// PreferenceHistory returns observed values for a key, newest-first
func (s *PostgresStore) PreferenceHistory(ctx context.Context, userID, key string, limit int) ([]*PreferenceValue, error) {
	query := `
		SELECT user_id, pref_key, value, recorded_at
		FROM preference_values
		WHERE user_id = $1 AND pref_key = $2
		ORDER BY recorded_at DESC LIMIT $3`

	rows, err := s.db.QueryContext(ctx, query, userID, key, limit)
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
func (s *PostgresStore) DeleteRecordsBefore(ctx context.Context, userID string, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM question_records WHERE user_id = $1 AND created_at < $2`,
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
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

const selectRecordColumns = `
	SELECT id, user_id, question_id, text, category, session_id, status,
		response, response_time_ms, effectiveness_score,
		follow_up_generated, metadata, created_at
	FROM question_records`

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresStore) scanRecordRow(row rowScanner) (*types.QuestionRecord, error) {
	var record types.QuestionRecord
	var category, status string
	var metadataBytes []byte

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
		&metadataBytes,
		&record.Timestamp,
	)
	if err != nil {
		return nil, err
	}

	record.Category = types.QuestionCategory(category)
	record.Status = types.QuestionStatus(status)
	if err := json.Unmarshal(metadataBytes, &record.Metadata); err != nil {
		s.logger.Error("Failed to unmarshal record metadata", "record_id", record.ID, "error", err)
		record.Metadata = map[string]any{}
	}
	return &record, nil
}

func (s *PostgresStore) scanRecords(rows *sql.Rows) ([]*types.QuestionRecord, error) {
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
