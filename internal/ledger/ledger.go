// Package ledger is the idempotent, Postgres-backed record of every
// meeting the system has created upstream, keyed by (token, scheduled
// label), and used to drive cancellation fan-out.
package ledger

import (
	"context"
	"errors"

	"github.com/cnluzhang/tencent-meeting-service/internal/domain"
	"github.com/cnluzhang/tencent-meeting-service/platform/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is the subset of *pgxpool.Pool the repository depends on,
// narrow enough that tests can substitute a fake row source without a
// real database.
type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// pgUniqueViolation is the Postgres error code for a unique-constraint
// violation, used here to detect the idempotent no-op case on Store
// without a select-then-insert race.
const pgUniqueViolation = "23505"

// Repository is the Postgres-backed ledger. It wraps a shared pool and is
// safe for concurrent use — each operation is a single statement or
// transaction, so no additional in-process locking is required beyond
// what Postgres already provides for the row(s) involved.
type Repository struct {
	pool querier
}

// New constructs a Repository over an existing connection pool.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Store inserts a new MeetingRecord. If a row with the same
// (token, scheduled_label, status) already exists, the call is a
// no-op and returns nil (the idempotent-reservation contract).
func (r *Repository) Store(ctx context.Context, rec domain.MeetingRecord) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO meeting_records
			(token, form_id, form_name, subject, room_label, room_id,
			 scheduled_at, scheduled_label, status, meeting_id,
			 operator_name, operator_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		rec.Token, rec.FormID, rec.FormName, rec.Subject, rec.RoomLabel, rec.RoomID,
		rec.ScheduledAt, rec.ScheduledLabel, string(rec.Status), rec.MeetingID,
		rec.OperatorName, rec.OperatorID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil
		}
		return apperr.LedgerFailure(err, "ledger: store token=%s label=%s", rec.Token, rec.ScheduledLabel)
	}
	return nil
}

// FindActive returns any row for token whose status is not CANCELLED, or
// nil if none exists.
func (r *Repository) FindActive(ctx context.Context, token string) (*domain.MeetingRecord, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT token, form_id, form_name, subject, room_label, room_id,
		       scheduled_at, scheduled_label, status, meeting_id,
		       created_at, cancelled_at, operator_name, operator_id
		FROM meeting_records
		WHERE token = $1 AND status <> 'CANCELLED'
		ORDER BY created_at
		LIMIT 1
	`, token)

	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.LedgerFailure(err, "ledger: find_active token=%s", token)
	}
	return &rec, nil
}

// FindAll returns every row for token, oldest first.
func (r *Repository) FindAll(ctx context.Context, token string) ([]domain.MeetingRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT token, form_id, form_name, subject, room_label, room_id,
		       scheduled_at, scheduled_label, status, meeting_id,
		       created_at, cancelled_at, operator_name, operator_id
		FROM meeting_records
		WHERE token = $1
		ORDER BY created_at
	`, token)
	if err != nil {
		return nil, apperr.LedgerFailure(err, "ledger: find_all token=%s", token)
	}
	defer rows.Close()

	var out []domain.MeetingRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, apperr.LedgerFailure(err, "ledger: scan row for token=%s", token)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.LedgerFailure(err, "ledger: iterate rows for token=%s", token)
	}
	return out, nil
}

// Cancel transitions every RESERVED row for token to CANCELLED, setting
// cancelled_at to now, and returns the (meeting_id, room_id) pairs that
// transitioned. Rows already CANCELLED are untouched and not returned. An
// empty-token match returns an empty slice, not an error.
func (r *Repository) Cancel(ctx context.Context, token string) ([]domain.CancelledPair, error) {
	rows, err := r.pool.Query(ctx, `
		UPDATE meeting_records
		SET status = 'CANCELLED', cancelled_at = now()
		WHERE token = $1 AND status = 'RESERVED'
		RETURNING meeting_id, room_id
	`, token)
	if err != nil {
		return nil, apperr.LedgerFailure(err, "ledger: cancel token=%s", token)
	}
	defer rows.Close()

	var pairs []domain.CancelledPair
	for rows.Next() {
		var p domain.CancelledPair
		if err := rows.Scan(&p.MeetingID, &p.RoomID); err != nil {
			return nil, apperr.LedgerFailure(err, "ledger: scan cancelled pair for token=%s", token)
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.LedgerFailure(err, "ledger: iterate cancelled pairs for token=%s", token)
	}
	return pairs, nil
}

// rowScanner abstracts pgx.Row and pgx.Rows, both of which implement Scan.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (domain.MeetingRecord, error) {
	var rec domain.MeetingRecord
	var status string
	err := row.Scan(
		&rec.Token, &rec.FormID, &rec.FormName, &rec.Subject, &rec.RoomLabel, &rec.RoomID,
		&rec.ScheduledAt, &rec.ScheduledLabel, &status, &rec.MeetingID,
		&rec.CreatedAt, &rec.CancelledAt, &rec.OperatorName, &rec.OperatorID,
	)
	if err != nil {
		return domain.MeetingRecord{}, err
	}
	rec.Status = domain.Status(status)
	return rec, nil
}
