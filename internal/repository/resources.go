package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spacehub-dev/operating-schedule/backend/internal/domain"
)

// UpsertResourceType registers a type code for the partner, relabelling it if it exists.
func (r *Repository) UpsertResourceType(ctx context.Context, rt *domain.ResourceType) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO resource_types (partner_id, code, label)
		VALUES ($1, $2, $3)
		ON CONFLICT (partner_id, code) DO UPDATE SET label = EXCLUDED.label
	`
	if _, err := r.dbpool.ExecContext(ctx, query, rt.PartnerID, rt.Code, rt.Label); err != nil {
		return translateError(err)
	}

	return nil
}

func (r *Repository) ListResourceTypes(ctx context.Context, partnerID uuid.UUID) ([]*domain.ResourceType, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		SELECT code, label FROM resource_types
		WHERE partner_id = $1
		ORDER BY code
	`

	rows, err := r.dbpool.QueryContext(ctx, query, partnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types := make([]*domain.ResourceType, 0)
	for rows.Next() {
		rt := &domain.ResourceType{PartnerID: partnerID}
		if err := rows.Scan(&rt.Code, &rt.Label); err != nil {
			return nil, err
		}
		types = append(types, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return types, nil
}

func (r *Repository) CreateResource(ctx context.Context, res *domain.Resource) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	// the location must belong to the same partner, otherwise nothing is inserted
	query := `
		INSERT INTO resources (partner_id, location_id, name, resource_type)
		SELECT $1, l.id, $3, $4
		FROM locations l WHERE l.id = $2 AND l.partner_id = $1
		RETURNING id, created_at
	`
	args := []any{res.PartnerID, res.LocationID, res.Name, res.Type}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&res.ID, &res.CreatedAt); err != nil {
		if err := translateError(err); !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: unknown location", domain.ErrInvalidResource)
	}

	return nil
}

func (r *Repository) GetResource(ctx context.Context, partnerID, id uuid.UUID) (*domain.Resource, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		SELECT location_id, name, resource_type, created_at
		FROM resources WHERE id = $1 AND partner_id = $2
	`

	res := &domain.Resource{
		ID:        id,
		PartnerID: partnerID,
	}
	dst := []any{&res.LocationID, &res.Name, &res.Type, &res.CreatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, id, partnerID).Scan(dst...); err != nil {
		return nil, translateError(err)
	}

	return res, nil
}

func (r *Repository) ListResourcesByLocation(ctx context.Context, partnerID, locationID uuid.UUID) ([]*domain.Resource, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		SELECT id, name, resource_type, created_at
		FROM resources WHERE partner_id = $1 AND location_id = $2
		ORDER BY name, id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, partnerID, locationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	resources := make([]*domain.Resource, 0)
	for rows.Next() {
		res := &domain.Resource{PartnerID: partnerID, LocationID: locationID}
		if err := rows.Scan(&res.ID, &res.Name, &res.Type, &res.CreatedAt); err != nil {
			return nil, err
		}
		resources = append(resources, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return resources, nil
}
