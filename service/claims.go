package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jacob-mennell/fast-insurance-claims/model"
	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when a claim lookup misses.
	ErrNotFound = errors.New("claim not found")
	// ErrDuplicateClaimNumber is returned when an insert collides on claim_number.
	ErrDuplicateClaimNumber = errors.New("claim number already exists")
)

// ClaimStore persists claims in a local SQLite file. It is an explicitly
// constructed handle: main builds one and passes it down to the handlers.
type ClaimStore struct {
	db     *sql.DB
	dbPath string
}

// NewClaimStore creates or opens the claims database at the given path.
func NewClaimStore(path string) (*ClaimStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Wait out lock contention instead of surfacing SQLITE_BUSY to callers
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer at a time; concurrent creates queue on the pool and
	// duplicates fail on the UNIQUE constraint, not on a locked database
	db.SetMaxOpenConns(1)

	store := &ClaimStore{db: db, dbPath: path}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *ClaimStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *ClaimStore) Path() string {
	return s.dbPath
}

// initSchema creates the database schema. There is no migration system:
// schema changes require deleting the database file (development workflow).
func (s *ClaimStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS claims (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		claim_number TEXT NOT NULL UNIQUE,
		claimant_name TEXT NOT NULL,
		amount REAL NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		date_filed TEXT,
		description TEXT,
		is_approved INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_claims_status ON claims(status);

	CREATE TABLE IF NOT EXISTS claim_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		claim_id INTEGER,
		action TEXT NOT NULL,
		message TEXT NOT NULL,
		timestamp DATETIME NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Create inserts a new claim and returns it with its generated id.
// Concurrent creates with the same claim_number are resolved by the
// UNIQUE constraint: exactly one succeeds, the other gets
// ErrDuplicateClaimNumber.
func (s *ClaimStore) Create(ctx context.Context, req *model.ClaimCreate) (*model.Claim, error) {
	now := time.Now().UTC()

	claim := &model.Claim{
		ClaimNumber:  req.ClaimNumber,
		ClaimantName: req.ClaimantName,
		Amount:       *req.Amount,
		Status:       req.Status,
		DateFiled:    req.DateFiled,
		Description:  req.Description,
		IsApproved:   req.IsApproved,
		CreatedAt:    now,
	}
	if claim.Status == "" {
		claim.Status = model.StatusPending
	}
	if claim.DateFiled == "" {
		claim.DateFiled = now.Format(model.DateLayout)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO claims (claim_number, claimant_name, amount, status, date_filed, description, is_approved, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		claim.ClaimNumber, claim.ClaimantName, claim.Amount, claim.Status,
		claim.DateFiled, claim.Description, claim.IsApproved, claim.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("claim_number %q: %w", claim.ClaimNumber, ErrDuplicateClaimNumber)
		}
		return nil, fmt.Errorf("failed to insert claim: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read generated id: %w", err)
	}
	claim.ID = id

	return claim, nil
}

// List returns all claims in insertion order, or only those matching
// the given status when it is non-empty. An empty result is not an error.
func (s *ClaimStore) List(ctx context.Context, status string) ([]*model.Claim, error) {
	query := `SELECT id, claim_number, claimant_name, amount, status, date_filed, description, is_approved, created_at
	          FROM claims`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query claims: %w", err)
	}
	defer rows.Close()

	claims := make([]*model.Claim, 0)
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		claims = append(claims, claim)
	}
	return claims, rows.Err()
}

// GetByID returns the claim with the given id, or ErrNotFound.
func (s *ClaimStore) GetByID(ctx context.Context, id int64) (*model.Claim, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, claim_number, claimant_name, amount, status, date_filed, description, is_approved, created_at
		 FROM claims WHERE id = ?`, id)
	return scanClaimRow(row)
}

// GetByNumber returns the claim with the given claim_number, or ErrNotFound.
func (s *ClaimStore) GetByNumber(ctx context.Context, claimNumber string) (*model.Claim, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, claim_number, claimant_name, amount, status, date_filed, description, is_approved, created_at
		 FROM claims WHERE claim_number = ?`, claimNumber)
	return scanClaimRow(row)
}

// Resolve looks a claim up by numeric id when the identifier parses as
// an integer, otherwise by claim_number.
func (s *ClaimStore) Resolve(ctx context.Context, identifier string) (*model.Claim, error) {
	if id, err := strconv.ParseInt(identifier, 10, 64); err == nil {
		return s.GetByID(ctx, id)
	}
	return s.GetByNumber(ctx, identifier)
}

// Delete removes the claim with the given id. Deleting an absent claim
// returns ErrNotFound: deletion is not idempotent.
func (s *ClaimStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM claims WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete claim: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("claim %d: %w", id, ErrNotFound)
	}
	return nil
}

// Count returns the number of claims in the store.
func (s *ClaimStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM claims`).Scan(&n)
	return n, err
}

// InsertLog appends one row to the verbose creation log table.
func (s *ClaimStore) InsertLog(ctx context.Context, claimID *int64, action, message string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO claim_logs (claim_id, action, message, timestamp) VALUES (?, ?, ?, ?)`,
		claimID, action, message, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert log: %w", err)
	}
	return nil
}

// Logs returns all claim_logs rows in insertion order.
func (s *ClaimStore) Logs(ctx context.Context) ([]*model.ClaimLog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, claim_id, action, message, timestamp FROM claim_logs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query logs: %w", err)
	}
	defer rows.Close()

	logs := make([]*model.ClaimLog, 0)
	for rows.Next() {
		var entry model.ClaimLog
		var claimID sql.NullInt64
		if err := rows.Scan(&entry.ID, &claimID, &entry.Action, &entry.Message, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan log: %w", err)
		}
		if claimID.Valid {
			entry.ClaimID = &claimID.Int64
		}
		logs = append(logs, &entry)
	}
	return logs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClaim(row rowScanner) (*model.Claim, error) {
	var claim model.Claim
	var dateFiled, description sql.NullString
	err := row.Scan(
		&claim.ID, &claim.ClaimNumber, &claim.ClaimantName, &claim.Amount,
		&claim.Status, &dateFiled, &description, &claim.IsApproved, &claim.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	claim.DateFiled = dateFiled.String
	claim.Description = description.String
	return &claim, nil
}

func scanClaimRow(row *sql.Row) (*model.Claim, error) {
	claim, err := scanClaim(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan claim: %w", err)
	}
	return claim, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
