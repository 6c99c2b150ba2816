package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/spacehub-dev/operating-schedule/backend/internal/config"
	"github.com/spacehub-dev/operating-schedule/backend/internal/domain"
)

type Repository struct {
	cfg    *config.Config
	dbpool *sql.DB
}

func NewRepository(cfg *config.Config, dbpool *sql.DB) *Repository {
	return &Repository{
		cfg:    cfg,
		dbpool: dbpool,
	}
}

func (r *Repository) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
}

func (r *Repository) txContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
}

// translateError turns driver level failures into domain errors. Anything it does not
// recognise is returned unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.ConstraintName {
	case "locations_partner_id_fkey", "resource_types_partner_id_fkey":
		return domain.ErrUnknownPartner
	case "locations_partner_name_key":
		return fmt.Errorf("%w: location name", domain.ErrDuplicate)
	case "resource_types_pkey":
		return fmt.Errorf("%w: resource type code", domain.ErrDuplicate)
	case "resources_resource_type_fkey":
		return fmt.Errorf("%w: unknown resource type", domain.ErrInvalidResource)
	case "resources_location_id_fkey":
		return fmt.Errorf("%w: unknown location", domain.ErrInvalidResource)
	case "location_operating_schedules_day_key", "resource_operating_schedules_day_key":
		return fmt.Errorf("%w: day appears more than once", domain.ErrInvalidSchedule)
	case "location_operating_schedules_hours_check", "resource_operating_schedules_hours_check":
		return fmt.Errorf("%w: open time must be before close time", domain.ErrInvalidSchedule)
	case "operating_closures_range_check":
		return fmt.Errorf("%w: start date is after end date", domain.ErrInvalidClosure)
	case "operating_closures_scope_check":
		return fmt.Errorf("%w: scope fields do not match scope", domain.ErrInvalidClosure)
	}
	return err
}
