package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spacehub-dev/operating-schedule/backend/internal/domain"
)

const closureColumns = `
	c.id, c.partner_id, c.scope, c.location_id, c.resource_type, c.resource_id,
	c.start_date, c.end_date, c.closure_type, c.is_recurring, c.reason, c.created_at, c.updated_at
`

// ListClosuresForLocation returns the location and resource_type closures of the location
// together with resource closures of every resource placed there, ordered by start date,
// creation time and id.
func (r *Repository) ListClosuresForLocation(ctx context.Context, partnerID, locationID uuid.UUID) ([]domain.ClosureEntry, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		SELECT ` + closureColumns + `
		FROM operating_closures c
		LEFT JOIN resources r ON c.resource_id = r.id
		WHERE c.partner_id = $1 AND (c.location_id = $2 OR r.location_id = $2)
		ORDER BY c.start_date, c.created_at, c.id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, partnerID, locationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	closures := make([]domain.ClosureEntry, 0)
	for rows.Next() {
		c, err := scanClosure(rows)
		if err != nil {
			return nil, err
		}
		closures = append(closures, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return closures, nil
}

func (r *Repository) GetClosure(ctx context.Context, partnerID, id uuid.UUID) (*domain.ClosureEntry, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		SELECT ` + closureColumns + `
		FROM operating_closures c
		WHERE c.id = $1 AND c.partner_id = $2
	`

	c, err := scanClosure(r.dbpool.QueryRowContext(ctx, query, id, partnerID))
	if err != nil {
		return nil, translateError(err)
	}

	return c, nil
}

func (r *Repository) CreateClosure(ctx context.Context, c *domain.ClosureEntry) error {
	if err := c.Validate(); err != nil {
		return err
	}

	ctx, cancel := r.txContext(ctx)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := checkClosureTarget(ctx, tx, c.PartnerID, c.Target); err != nil {
		return err
	}

	query := `
		INSERT INTO operating_closures
			(partner_id, scope, location_id, resource_type, resource_id, start_date, end_date, closure_type, is_recurring, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`
	args := append([]any{c.PartnerID}, closureArgs(c)...)
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return translateError(err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	c.Normalize()
	return nil
}

// UpdateClosure overwrites every editable field of the stored closure c.ID.
func (r *Repository) UpdateClosure(ctx context.Context, c *domain.ClosureEntry) error {
	if err := c.Validate(); err != nil {
		return err
	}

	ctx, cancel := r.txContext(ctx)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := checkClosureTarget(ctx, tx, c.PartnerID, c.Target); err != nil {
		return err
	}

	query := `
		UPDATE operating_closures
		SET
			scope = $1,
			location_id = $2,
			resource_type = $3,
			resource_id = $4,
			start_date = $5,
			end_date = $6,
			closure_type = $7,
			is_recurring = $8,
			reason = $9,
			updated_at = now()
		WHERE id = $10 AND partner_id = $11
		RETURNING created_at, updated_at
	`
	args := append(closureArgs(c), c.ID, c.PartnerID)
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&c.CreatedAt, &c.UpdatedAt); err != nil {
		return translateError(err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	c.Normalize()
	return nil
}

func (r *Repository) DeleteClosure(ctx context.Context, partnerID, id uuid.UUID) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `DELETE FROM operating_closures WHERE id = $1 AND partner_id = $2`

	result, err := r.dbpool.ExecContext(ctx, query, id, partnerID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClosure(row rowScanner) (*domain.ClosureEntry, error) {
	var raw struct {
		Scope        domain.ClosureScope
		LocationID   uuid.NullUUID
		ResourceType sql.NullString
		ResourceID   uuid.NullUUID
		StartDate    time.Time
		EndDate      time.Time
	}

	c := &domain.ClosureEntry{}
	dst := []any{
		&c.ID,
		&c.PartnerID,
		&raw.Scope,
		&raw.LocationID,
		&raw.ResourceType,
		&raw.ResourceID,
		&raw.StartDate,
		&raw.EndDate,
		&c.Type,
		&c.IsRecurring,
		&c.Reason,
		&c.CreatedAt,
		&c.UpdatedAt,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}

	target, err := domain.NewClosureTarget(raw.Scope, raw.LocationID.UUID, raw.ResourceType.String, raw.ResourceID.UUID)
	if err != nil {
		return nil, fmt.Errorf("closure %s: %w", c.ID, err)
	}
	c.Target = target
	c.StartDate = domain.DateOf(raw.StartDate)
	c.EndDate = domain.DateOf(raw.EndDate)
	c.Normalize()

	return c, nil
}

func closureArgs(c *domain.ClosureEntry) []any {
	t := c.Target
	return []any{
		string(t.Scope()),
		nullUUID(t.LocationID()),
		sql.NullString{String: t.ResourceType(), Valid: t.ResourceType() != ""},
		nullUUID(t.ResourceID()),
		c.StartDate.String(),
		c.EndDate.String(),
		string(c.Type),
		c.IsRecurring,
		c.Reason,
	}
}

func nullUUID(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// checkClosureTarget rejects targets that do not exist or belong to another partner.
func checkClosureTarget(ctx context.Context, q queryRower, partnerID uuid.UUID, t domain.ClosureTarget) error {
	var (
		query string
		args  []any
		what  string
	)
	switch t.Scope() {
	case domain.ClosureScopeLocation:
		query = `SELECT EXISTS (SELECT 1 FROM locations WHERE id = $1 AND partner_id = $2)`
		args = []any{t.LocationID(), partnerID}
		what = "location " + t.LocationID().String()
	case domain.ClosureScopeResourceType:
		query = `
			SELECT
				EXISTS (SELECT 1 FROM locations WHERE id = $1 AND partner_id = $2)
				AND EXISTS (SELECT 1 FROM resource_types WHERE partner_id = $2 AND code = $3)
		`
		args = []any{t.LocationID(), partnerID, t.ResourceType()}
		what = fmt.Sprintf("resource type %q at location %s", t.ResourceType(), t.LocationID())
	case domain.ClosureScopeResource:
		query = `SELECT EXISTS (SELECT 1 FROM resources WHERE id = $1 AND partner_id = $2)`
		args = []any{t.ResourceID(), partnerID}
		what = "resource " + t.ResourceID().String()
	default:
		return fmt.Errorf("%w: missing scope", domain.ErrInvalidClosure)
	}

	var exists bool
	if err := q.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s not found", domain.ErrInvalidClosure, what)
	}
	return nil
}
