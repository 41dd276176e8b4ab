package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"artmatch/internal/domain"
)

// execer lo cumplen tanto *pgxpool.Pool como pgx.Tx.
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// SubmissionRepository guarda una entrega del quiz junto con el perfil derivado de ella.
// Ninguna de las dos filas queda escrita si falla la otra.
type SubmissionRepository interface {
	SaveSubmission(ctx context.Context, quiz domain.QuizRecord, profile domain.PersonalityProfile) error
}

type PgSubmissionRepository struct {
	pool *pgxpool.Pool
}

func NewPgSubmissionRepository(pool *pgxpool.Pool) *PgSubmissionRepository {
	return &PgSubmissionRepository{pool: pool}
}

func (r *PgSubmissionRepository) SaveSubmission(ctx context.Context, quiz domain.QuizRecord, profile domain.PersonalityProfile) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := upsertQuiz(ctx, tx, quiz); err != nil {
			return fmt.Errorf("upsert quiz: %w", err)
		}
		if err := upsertProfile(ctx, tx, profile); err != nil {
			return fmt.Errorf("upsert profile: %w", err)
		}
		return nil
	})
}
