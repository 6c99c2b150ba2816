package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/spacehub-dev/operating-schedule/backend/internal/domain"
)

func (r *Repository) CreatePartner(ctx context.Context, p *domain.Partner) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO partners (name)
		VALUES ($1)
		RETURNING id, created_at
	`
	if err := r.dbpool.QueryRowContext(ctx, query, p.Name).Scan(&p.ID, &p.CreatedAt); err != nil {
		return translateError(err)
	}

	return nil
}

func (r *Repository) CreateLocation(ctx context.Context, l *domain.Location) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO locations (partner_id, name, address)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	if err := r.dbpool.QueryRowContext(ctx, query, l.PartnerID, l.Name, l.Address).Scan(&l.ID, &l.CreatedAt); err != nil {
		return translateError(err)
	}

	return nil
}

func (r *Repository) GetLocation(ctx context.Context, partnerID, id uuid.UUID) (*domain.Location, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		SELECT name, address, created_at
		FROM locations WHERE id = $1 AND partner_id = $2
	`

	l := &domain.Location{
		ID:        id,
		PartnerID: partnerID,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, id, partnerID).Scan(&l.Name, &l.Address, &l.CreatedAt); err != nil {
		return nil, translateError(err)
	}

	return l, nil
}

func (r *Repository) ListLocations(ctx context.Context, partnerID uuid.UUID) ([]*domain.Location, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		SELECT id, name, address, created_at
		FROM locations WHERE partner_id = $1
		ORDER BY name, id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, partnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locations := make([]*domain.Location, 0)
	for rows.Next() {
		l := &domain.Location{PartnerID: partnerID}
		if err := rows.Scan(&l.ID, &l.Name, &l.Address, &l.CreatedAt); err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return locations, nil
}
