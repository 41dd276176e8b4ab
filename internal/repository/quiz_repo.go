package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"artmatch/internal/domain"
)

// QuizRepository guarda una sola entrega por usuario; la nueva reemplaza a la anterior.
type QuizRepository interface {
	Upsert(ctx context.Context, record domain.QuizRecord) error
	GetByUserID(ctx context.Context, userID string) (domain.QuizRecord, error)
	// UpdateAvailability reescribe solo los slots, sin tocar el resto de la entrega.
	UpdateAvailability(ctx context.Context, userID string, slots []string) error
}

type PgQuizRepository struct {
	pool *pgxpool.Pool
}

func NewPgQuizRepository(pool *pgxpool.Pool) *PgQuizRepository {
	return &PgQuizRepository{pool: pool}
}

func (r *PgQuizRepository) Upsert(ctx context.Context, record domain.QuizRecord) error {
	return upsertQuiz(ctx, r.pool, record)
}

func upsertQuiz(ctx context.Context, db execer, record domain.QuizRecord) error {
	a := record.Answers
	cols := make([][]byte, 0, 5)
	for _, v := range []any{nonNilStrings(a.Interests), nonNilStrings(a.Genres), nonNilStrings(a.Values), nonNilStrings(a.Availability), nonNilResponses(a.Responses)} {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal quiz column: %w", err)
		}
		cols = append(cols, b)
	}

	const query = `
		INSERT INTO quiz_responses (user_id, interests, genres, prefs, availability, responses, location, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			interests = EXCLUDED.interests,
			genres = EXCLUDED.genres,
			prefs = EXCLUDED.prefs,
			availability = EXCLUDED.availability,
			responses = EXCLUDED.responses,
			location = EXCLUDED.location,
			updated_at = EXCLUDED.updated_at
	`
	_, err := db.Exec(ctx, query,
		record.UserID,
		cols[0],
		cols[1],
		cols[2],
		cols[3],
		cols[4],
		a.Location,
		record.UpdatedAt,
	)
	return err
}

func (r *PgQuizRepository) GetByUserID(ctx context.Context, userID string) (domain.QuizRecord, error) {
	const query = `
		SELECT user_id, interests, genres, prefs, availability, responses, location, updated_at
		FROM quiz_responses
		WHERE user_id = $1
	`
	var (
		rec                                               domain.QuizRecord
		interests, genres, prefs, availability, responses []byte
	)
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&rec.UserID,
		&interests,
		&genres,
		&prefs,
		&availability,
		&responses,
		&rec.Answers.Location,
		&rec.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.QuizRecord{}, err
	}
	if err != nil {
		return domain.QuizRecord{}, err
	}

	targets := []struct {
		raw []byte
		out any
	}{
		{interests, &rec.Answers.Interests},
		{genres, &rec.Answers.Genres},
		{prefs, &rec.Answers.Values},
		{availability, &rec.Answers.Availability},
		{responses, &rec.Answers.Responses},
	}
	for _, t := range targets {
		if len(t.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(t.raw, t.out); err != nil {
			return domain.QuizRecord{}, fmt.Errorf("decode quiz column: %w", err)
		}
	}
	return rec, nil
}

func (r *PgQuizRepository) UpdateAvailability(ctx context.Context, userID string, slots []string) error {
	b, err := json.Marshal(nonNilStrings(slots))
	if err != nil {
		return fmt.Errorf("marshal availability: %w", err)
	}
	const query = `
		UPDATE quiz_responses
		SET availability = $2
		WHERE user_id = $1
	`
	_, err = r.pool.Exec(ctx, query, userID, b)
	return err
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilResponses(r []domain.QuizResponse) []domain.QuizResponse {
	if r == nil {
		return []domain.QuizResponse{}
	}
	return r
}
