package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"artmatch/internal/domain"
)

// ScheduleRepository persiste como maximo una cita por par no ordenado (pair_key UNIQUE).
type ScheduleRepository interface {
	// InsertIfAbsent inserta la cita o, si el par ya tiene una, devuelve la existente con created=false.
	InsertIfAbsent(ctx context.Context, rec domain.ScheduleRecord) (domain.ScheduleRecord, bool, error)
	GetByPair(ctx context.Context, userA, userB string) (domain.ScheduleRecord, error)
	GetByID(ctx context.Context, id string) (domain.ScheduleRecord, error)
	ListForUser(ctx context.Context, userID string) ([]domain.ScheduleRecord, error)
	// DeleteForParticipant borra solo si userID participa; devuelve false si no borro nada.
	DeleteForParticipant(ctx context.Context, id, userID string) (bool, error)
}

type PgScheduleRepository struct {
	pool *pgxpool.Pool
}

func NewPgScheduleRepository(pool *pgxpool.Pool) *PgScheduleRepository {
	return &PgScheduleRepository{pool: pool}
}

const scheduleColumns = `id, user_a, user_b, event_id, start_at, end_at, location, note, created_at`

func (r *PgScheduleRepository) InsertIfAbsent(ctx context.Context, rec domain.ScheduleRecord) (domain.ScheduleRecord, bool, error) {
	const query = `
		INSERT INTO schedules (id, pair_key, user_a, user_b, event_id, start_at, end_at, location, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (pair_key) DO NOTHING
	`
	tag, err := r.pool.Exec(ctx, query,
		rec.ID,
		rec.PairKey(),
		rec.UserA,
		rec.UserB,
		rec.EventID,
		rec.Start,
		rec.End,
		rec.Location,
		rec.Note,
		rec.CreatedAt,
	)
	if err != nil {
		return domain.ScheduleRecord{}, false, err
	}
	if tag.RowsAffected() == 1 {
		return rec, true, nil
	}
	existing, err := r.GetByPair(ctx, rec.UserA, rec.UserB)
	if err != nil {
		return domain.ScheduleRecord{}, false, err
	}
	return existing, false, nil
}

func (r *PgScheduleRepository) GetByPair(ctx context.Context, userA, userB string) (domain.ScheduleRecord, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE pair_key = $1`
	return scanSchedule(r.pool.QueryRow(ctx, query, domain.PairKey(userA, userB)))
}

func (r *PgScheduleRepository) GetByID(ctx context.Context, id string) (domain.ScheduleRecord, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE id = $1`
	return scanSchedule(r.pool.QueryRow(ctx, query, id))
}

func (r *PgScheduleRepository) ListForUser(ctx context.Context, userID string) ([]domain.ScheduleRecord, error) {
	query := `SELECT ` + scheduleColumns + `
		FROM schedules
		WHERE user_a = $1 OR user_b = $1
		ORDER BY start_at ASC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ScheduleRecord
	for rows.Next() {
		rec, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PgScheduleRepository) DeleteForParticipant(ctx context.Context, id, userID string) (bool, error) {
	const query = `
		DELETE FROM schedules
		WHERE id = $1 AND (user_a = $2 OR user_b = $2)
	`
	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanSchedule(row pgx.Row) (domain.ScheduleRecord, error) {
	var s domain.ScheduleRecord
	err := row.Scan(
		&s.ID,
		&s.UserA,
		&s.UserB,
		&s.EventID,
		&s.Start,
		&s.End,
		&s.Location,
		&s.Note,
		&s.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ScheduleRecord{}, err
	}
	return s, err
}
