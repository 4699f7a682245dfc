package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/hiremind/backend/models"
)

const schemaVersion = 1

// SQLiteStore implements Store on a local SQLite database
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (and migrates) the database at path. ":memory:" gives a
// private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	// modernc sqlite uses DSN like: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// single writer; also keeps a :memory: database alive on one connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func migrate(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}
	if v >= schemaVersion {
		return tx.Commit()
	}

	// ---- Schema v1 ----
	stmts := []string{`
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  password TEXT NOT NULL DEFAULT '',
  gemini_api_key TEXT NOT NULL DEFAULT '',
  provider TEXT NOT NULL,
  google_id TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);`, `
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_google_id
ON users(google_id) WHERE google_id != '';`, `
CREATE TABLE IF NOT EXISTS resumes (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  file_name TEXT NOT NULL,
  file_path TEXT NOT NULL,
  uploaded_at TEXT NOT NULL,
  extracted_data TEXT
);`, `
CREATE INDEX IF NOT EXISTS idx_resumes_user_uploaded
ON resumes(user_id, uploaded_at DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d;`, schemaVersion)); err != nil {
		return err
	}
	return tx.Commit()
}

const userColumns = `id, name, email, password, gemini_api_key, provider, google_id, created_at, updated_at`

// CreateUser inserts a new user with a fresh ID
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
INSERT INTO users (`+userColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		user.ID, user.Name, user.Email, user.Password, user.EncryptedGeminiAPIKey,
		user.Provider, user.GoogleID, formatTime(now), formatTime(now),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}

	derive(user)
	return nil
}

// GetUserByID retrieves a user by ID
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.queryUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?;`, id)
}

// GetUserByEmail retrieves a user by email
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.queryUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?;`, email)
}

// GetUserByGoogleID retrieves a user by Google ID
func (s *SQLiteStore) GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	if googleID == "" {
		return nil, ErrNotFound
	}
	return s.queryUser(ctx, `SELECT `+userColumns+` FROM users WHERE google_id = ?;`, googleID)
}

// UpdateUser applies the non-nil fields of update and returns the stored user
func (s *SQLiteStore) UpdateUser(ctx context.Context, id string, update UserUpdate) (*models.User, error) {
	if update.IsEmpty() {
		return s.GetUserByID(ctx, id)
	}

	res, err := s.db.ExecContext(ctx, `
UPDATE users SET
  name = COALESCE(?, name),
  gemini_api_key = COALESCE(?, gemini_api_key),
  google_id = COALESCE(?, google_id),
  provider = COALESCE(?, provider),
  updated_at = ?
WHERE id = ?;`,
		nullable(update.Name), nullable(update.EncryptedGeminiAPIKey),
		nullable(update.GoogleID), nullable(update.Provider),
		formatTime(time.Now().UTC()), id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	return s.GetUserByID(ctx, id)
}

func (s *SQLiteStore) queryUser(ctx context.Context, query string, arg any) (*models.User, error) {
	var (
		user                 models.User
		createdAt, updatedAt string
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Name, &user.Email, &user.Password, &user.EncryptedGeminiAPIKey,
		&user.Provider, &user.GoogleID, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}

	user.CreatedAt = parseTime(createdAt)
	user.UpdatedAt = parseTime(updatedAt)
	return derive(&user), nil
}

const resumeColumns = `id, user_id, file_name, file_path, uploaded_at, extracted_data`

// CreateResume inserts a new resume record
func (s *SQLiteStore) CreateResume(ctx context.Context, resume *models.Resume) error {
	if resume.ID == "" {
		resume.ID = uuid.NewString()
	}
	if resume.UploadedAt.IsZero() {
		resume.UploadedAt = time.Now().UTC()
	}

	data, err := encodeExtracted(resume.ExtractedData)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO resumes (`+resumeColumns+`)
VALUES (?, ?, ?, ?, ?, ?);`,
		resume.ID, resume.UserID, resume.FileName, resume.FilePath, formatTime(resume.UploadedAt), data,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert resume: %w", err)
	}
	return nil
}

// GetResume returns the resume if it exists and belongs to userID
func (s *SQLiteStore) GetResume(ctx context.Context, userID, id string) (*models.Resume, error) {
	return s.queryResume(ctx, `SELECT `+resumeColumns+` FROM resumes WHERE id = ? AND user_id = ?;`, id, userID)
}

// GetLatestResume returns the most recently uploaded resume of userID
func (s *SQLiteStore) GetLatestResume(ctx context.Context, userID string) (*models.Resume, error) {
	return s.queryResume(ctx, `
SELECT `+resumeColumns+` FROM resumes
WHERE user_id = ?
ORDER BY uploaded_at DESC, rowid DESC
LIMIT 1;`, userID)
}

// ListResumes returns the resumes of userID, newest first
func (s *SQLiteStore) ListResumes(ctx context.Context, userID string) ([]*models.Resume, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT `+resumeColumns+` FROM resumes
WHERE user_id = ?
ORDER BY uploaded_at DESC, rowid DESC;`, userID)
	if err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}
	defer rows.Close()

	resumes := make([]*models.Resume, 0)
	for rows.Next() {
		resume, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		resumes = append(resumes, resume)
	}
	return resumes, rows.Err()
}

// UpdateResumeData replaces the extracted data of an owned resume
func (s *SQLiteStore) UpdateResumeData(ctx context.Context, userID, id string, data *models.ExtractedData) error {
	encoded, err := encodeExtracted(data)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `UPDATE resumes SET extracted_data = ? WHERE id = ? AND user_id = ?;`, encoded, id, userID)
	if err != nil {
		return fmt.Errorf("update resume: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteResume deletes an owned resume record
func (s *SQLiteStore) DeleteResume(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM resumes WHERE id = ? AND user_id = ?;`, id, userID)
	if err != nil {
		return fmt.Errorf("delete resume: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListResumePaths returns the stored file path of every resume
func (s *SQLiteStore) ListResumePaths(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT file_path FROM resumes WHERE file_path != '';`)
	if err != nil {
		return nil, fmt.Errorf("list resume paths: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

func (s *SQLiteStore) queryResume(ctx context.Context, query string, args ...any) (*models.Resume, error) {
	resume, err := scanResume(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return resume, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResume(row rowScanner) (*models.Resume, error) {
	var (
		resume     models.Resume
		uploadedAt string
		data       sql.NullString
	)
	if err := row.Scan(&resume.ID, &resume.UserID, &resume.FileName, &resume.FilePath, &uploadedAt, &data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan resume: %w", err)
	}

	resume.UploadedAt = parseTime(uploadedAt)
	if data.Valid && data.String != "" {
		var extracted models.ExtractedData
		if err := json.Unmarshal([]byte(data.String), &extracted); err != nil {
			return nil, fmt.Errorf("decode extracted data: %w", err)
		}
		resume.ExtractedData = &extracted
	}
	return &resume, nil
}

func encodeExtracted(data *models.ExtractedData) (sql.NullString, error) {
	if data == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode extracted data: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

// Timestamps are stored as fixed-width UTC text so they sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t
}
