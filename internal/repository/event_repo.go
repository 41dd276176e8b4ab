package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"artmatch/internal/domain"
)

type EventRepository interface {
	List(ctx context.Context) ([]domain.Event, error)
}

type PgEventRepository struct {
	pool *pgxpool.Pool
}

func NewPgEventRepository(pool *pgxpool.Pool) *PgEventRepository {
	return &PgEventRepository{pool: pool}
}

// List respeta el orden del catalogo (position); el selector desempata por ese orden.
func (r *PgEventRepository) List(ctx context.Context) ([]domain.Event, error) {
	const query = `
		SELECT id, title, category, tags, location, duration_min
		FROM events
		ORDER BY position, id
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var (
			e    domain.Event
			tags []byte
		)
		if err := rows.Scan(&e.ID, &e.Title, &e.Category, &tags, &e.Location, &e.DurationMin); err != nil {
			return nil, err
		}
		if len(tags) > 0 {
			if err := json.Unmarshal(tags, &e.Tags); err != nil {
				return nil, fmt.Errorf("decode event tags %s: %w", e.ID, err)
			}
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
