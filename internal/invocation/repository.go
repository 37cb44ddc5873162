package invocation

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const (
	defaultLimit = 50
	maxLimit     = 200

	// timeFormat is fixed-width so created_at sorts lexically.
	timeFormat = "2006-01-02T15:04:05.000000000Z07:00"
)

// SQLiteRepository stores invocations in the invocations table.
type SQLiteRepository struct {
	db *sql.DB
}

var _ Repository = (*SQLiteRepository)(nil)

// NewSQLiteRepository creates a repository over an open, migrated database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Record inserts an invocation. ID and CreatedAt are generated if empty.
func (r *SQLiteRepository) Record(ctx context.Context, inv Invocation) error {
	if inv.Variant == "" || inv.Operation == "" {
		return ErrInvalidInvocation
	}
	if inv.ID == "" {
		inv.ID = NewID()
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now()
	}
	inv.CreatedAt = inv.CreatedAt.UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invocations (id, request_id, variant, operation, input, output, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, nullableString(inv.RequestID),
		string(inv.Variant), string(inv.Operation),
		nullableString(inv.Input), inv.Output,
		inv.CreatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting invocation: %w", err)
	}
	return nil
}

// nullableString maps "" to SQL NULL.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// List returns invocations matching the filter, newest first.
func (r *SQLiteRepository) List(ctx context.Context, filter Filter) (*ListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultLimit
	}
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	var conditions []string
	var args []any
	if filter.Variant != "" {
		conditions = append(conditions, "variant = ?")
		args = append(args, string(filter.Variant))
	}
	if filter.Operation != "" {
		conditions = append(conditions, "operation = ?")
		args = append(args, string(filter.Operation))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM invocations " + where //nolint:gosec // WHERE built from parameterised conditions
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting invocations: %w", err)
	}

	query := "SELECT id, request_id, variant, operation, input, output, created_at FROM invocations " + //nolint:gosec // as above
		where + " ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying invocations: %w", err)
	}
	defer rows.Close()

	invs := []Invocation{}
	for rows.Next() {
		var inv Invocation
		var requestID, input sql.NullString
		var createdAt string

		if err := rows.Scan(&inv.ID, &requestID, &inv.Variant, &inv.Operation,
			&input, &inv.Output, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning invocation: %w", err)
		}
		inv.RequestID = requestID.String
		inv.Input = input.String

		t, err := time.Parse(timeFormat, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing invocation timestamp %q: %w", createdAt, err)
		}
		inv.CreatedAt = t

		invs = append(invs, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invocations: %w", err)
	}

	return &ListResult{
		Invocations: invs,
		Total:       total,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}, nil
}
