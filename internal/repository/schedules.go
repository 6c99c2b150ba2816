package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/spacehub-dev/operating-schedule/backend/internal/domain"
)

// scheduleTable names the table and key column holding one scope's weekly rows.
type scheduleTable struct {
	name      string
	keyColumn string
	owner     string
}

var (
	locationScheduleTable = scheduleTable{name: "location_operating_schedules", keyColumn: "location_id", owner: "locations"}
	resourceScheduleTable = scheduleTable{name: "resource_operating_schedules", keyColumn: "resource_id", owner: "resources"}
)

// GetLocationSchedule always returns seven entries, Sunday first. Days without a stored
// row are filled with the default policy and marked IsDefault.
func (r *Repository) GetLocationSchedule(ctx context.Context, partnerID, locationID uuid.UUID) ([]domain.ScheduleEntry, error) {
	target := domain.LocationSchedule(locationID)
	entries, err := r.listScheduleRows(ctx, locationScheduleTable, target, partnerID)
	if err != nil {
		return nil, err
	}
	return domain.CompleteWeek(target, entries), nil
}

// GetResourceScheduleOverride returns only the stored rows. An empty result means the
// resource inherits its location's week entirely.
func (r *Repository) GetResourceScheduleOverride(ctx context.Context, partnerID, resourceID uuid.UUID) ([]domain.ScheduleEntry, error) {
	return r.listScheduleRows(ctx, resourceScheduleTable, domain.ResourceSchedule(resourceID), partnerID)
}

// ReplaceLocationSchedule swaps the whole week in one transaction. Concurrent callers
// are not detected: the last commit wins.
func (r *Repository) ReplaceLocationSchedule(ctx context.Context, partnerID, locationID uuid.UUID, entries []domain.ScheduleEntry) error {
	if err := domain.ValidateWeek(entries, true); err != nil {
		return err
	}
	return r.replaceScheduleRows(ctx, locationScheduleTable, partnerID, locationID, entries)
}

// ReplaceResourceSchedule swaps the override set. Zero entries clears the override.
func (r *Repository) ReplaceResourceSchedule(ctx context.Context, partnerID, resourceID uuid.UUID, entries []domain.ScheduleEntry) error {
	if err := domain.ValidateWeek(entries, false); err != nil {
		return err
	}
	return r.replaceScheduleRows(ctx, resourceScheduleTable, partnerID, resourceID, entries)
}

func (r *Repository) listScheduleRows(ctx context.Context, table scheduleTable, target domain.ScheduleTarget, partnerID uuid.UUID) ([]domain.ScheduleEntry, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := fmt.Sprintf(`
		SELECT day_of_week, is_closed, open_time, close_time
		FROM %s
		WHERE partner_id = $1 AND %s = $2
		ORDER BY day_of_week
	`, table.name, table.keyColumn)

	rows, err := r.dbpool.QueryContext(ctx, query, partnerID, target.ID())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.ScheduleEntry, 0, 7)
	for rows.Next() {
		var row struct {
			Day       int
			IsClosed  bool
			OpenTime  pgtype.Time
			CloseTime pgtype.Time
		}
		if err := rows.Scan(&row.Day, &row.IsClosed, &row.OpenTime, &row.CloseTime); err != nil {
			return nil, err
		}

		entry := domain.ScheduleEntry{
			Target:    target,
			DayOfWeek: time.Weekday(row.Day),
			IsClosed:  row.IsClosed,
		}
		if !row.IsClosed {
			if entry.OpenTime, err = parseTimeColumn(row.OpenTime); err != nil {
				return nil, err
			}
			if entry.CloseTime, err = parseTimeColumn(row.CloseTime); err != nil {
				return nil, err
			}
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *Repository) replaceScheduleRows(ctx context.Context, table scheduleTable, partnerID, targetID uuid.UUID, entries []domain.ScheduleEntry) error {
	ctx, cancel := r.txContext(ctx)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1 AND partner_id = $2)`, table.owner)
	if err := tx.QueryRowContext(ctx, query, targetID, partnerID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}

	query = fmt.Sprintf(`DELETE FROM %s WHERE partner_id = $1 AND %s = $2`, table.name, table.keyColumn)
	if _, err := tx.ExecContext(ctx, query, partnerID, targetID); err != nil {
		return err
	}

	query = fmt.Sprintf(`
		INSERT INTO %s (partner_id, %s, day_of_week, is_closed, open_time, close_time)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, table.name, table.keyColumn)
	for _, e := range entries {
		args := []any{partnerID, targetID, int(e.DayOfWeek), e.IsClosed, timeParam(e.OpenTime), timeParam(e.CloseTime)}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return translateError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// parseTimeColumn converts a TIME column. Postgres returns an end of day close as
// 24:00:00, which only fits TimeOfDay when taken from the microsecond count.
func parseTimeColumn(t pgtype.Time) (*domain.TimeOfDay, error) {
	if !t.Valid {
		return nil, nil
	}
	tod := domain.TimeOfDay(t.Microseconds / 1_000_000)
	if !tod.Valid() {
		return nil, fmt.Errorf("time column out of range: %d microseconds", t.Microseconds)
	}
	return &tod, nil
}

func timeParam(t *domain.TimeOfDay) any {
	if t == nil {
		return nil
	}
	return t.String()
}
