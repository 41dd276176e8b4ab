package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"artmatch/internal/domain"
)

type ProfileRepository interface {
	Upsert(ctx context.Context, profile domain.PersonalityProfile) error
	GetByUserID(ctx context.Context, userID string) (domain.PersonalityProfile, error)
	// ListVectorsExcept devuelve la cohorte completa menos el usuario indicado, en una sola lectura.
	ListVectorsExcept(ctx context.Context, userID string) ([]domain.ProfileVector, error)
}

type PgProfileRepository struct {
	pool *pgxpool.Pool
}

func NewPgProfileRepository(pool *pgxpool.Pool) *PgProfileRepository {
	return &PgProfileRepository{pool: pool}
}

func (r *PgProfileRepository) Upsert(ctx context.Context, profile domain.PersonalityProfile) error {
	return upsertProfile(ctx, r.pool, profile)
}

func upsertProfile(ctx context.Context, db execer, profile domain.PersonalityProfile) error {
	traits, err := json.Marshal(profile.Traits)
	if err != nil {
		return fmt.Errorf("marshal traits: %w", err)
	}
	const query = `
		INSERT INTO profiles (user_id, vector, traits, summary, source, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			vector = EXCLUDED.vector,
			traits = EXCLUDED.traits,
			summary = EXCLUDED.summary,
			source = EXCLUDED.source,
			updated_at = EXCLUDED.updated_at
	`
	_, err = db.Exec(ctx, query,
		profile.UserID,
		pgvector.NewVector(toFloat32(profile.Vector)),
		traits,
		profile.Summary,
		string(profile.Source),
		profile.UpdatedAt,
	)
	return err
}

func (r *PgProfileRepository) GetByUserID(ctx context.Context, userID string) (domain.PersonalityProfile, error) {
	const query = `
		SELECT user_id, vector, traits, summary, source, updated_at
		FROM profiles
		WHERE user_id = $1
	`
	var (
		p      domain.PersonalityProfile
		vec    pgvector.Vector
		traits []byte
		source string
	)
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&vec,
		&traits,
		&p.Summary,
		&source,
		&p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.PersonalityProfile{}, err
	}
	if err != nil {
		return domain.PersonalityProfile{}, err
	}
	if len(traits) > 0 {
		if err := json.Unmarshal(traits, &p.Traits); err != nil {
			return domain.PersonalityProfile{}, fmt.Errorf("decode traits: %w", err)
		}
	}
	p.Vector = toFloat64(vec.Slice())
	p.Source = domain.ProfileSource(source)
	return p, nil
}

func (r *PgProfileRepository) ListVectorsExcept(ctx context.Context, userID string) ([]domain.ProfileVector, error) {
	const query = `
		SELECT p.user_id, u.name, p.vector, p.summary
		FROM profiles p
		JOIN users u ON u.id = p.user_id
		WHERE p.user_id <> $1
		ORDER BY p.user_id
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ProfileVector
	for rows.Next() {
		var (
			pv  domain.ProfileVector
			vec pgvector.Vector
		)
		if err := rows.Scan(&pv.UserID, &pv.Name, &vec, &pv.Summary); err != nil {
			return nil, err
		}
		pv.Vector = toFloat64(vec.Slice())
		out = append(out, pv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
