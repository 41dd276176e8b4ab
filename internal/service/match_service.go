package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"artmatch/internal/domain"
	"artmatch/internal/metrics"
	"artmatch/internal/repository"
)

const (
	DefaultMatchLimit = 10
	MaxMatchLimit     = 50
)

// MatchService rankea candidatos contra el perfil del solicitante.
type MatchService struct {
	logger   *zap.Logger
	profiles repository.ProfileRepository
}

func NewMatchService(logger *zap.Logger, profiles repository.ProfileRepository) *MatchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatchService{logger: logger, profiles: profiles}
}

// Rank devuelve los mejores candidatos. La cohorte se lee en una sola consulta,
// asi la media y el desvio salen de una foto consistente.
func (s *MatchService) Rank(ctx context.Context, requesterID string, limit int) (domain.MatchList, error) {
	me, err := s.profiles.GetByUserID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.MatchList{}, ErrProfileRequired
		}
		return domain.MatchList{}, fmt.Errorf("load requester profile: %w", err)
	}
	if len(me.Vector) == 0 {
		return domain.MatchList{}, ErrProfileRequired
	}

	candidates, err := s.profiles.ListVectorsExcept(ctx, requesterID)
	if err != nil {
		return domain.MatchList{}, fmt.Errorf("list candidate vectors: %w", err)
	}

	matches, cohort := RankCandidates(me.Vector, candidates)
	metrics.RecordRanking(cohort)
	if skipped := len(candidates) + 1 - cohort; skipped > 0 {
		s.logger.Debug("candidates with mismatched dimension scored as zero",
			zap.String("user_id", requesterID),
			zap.Int("skipped", skipped),
			zap.Int("dimension", len(me.Vector)),
		)
	}

	return domain.MatchList{
		Matches:   TopMatches(matches, limit),
		Dimension: len(me.Vector),
	}, nil
}

// RankCandidates puntua todos los candidatos, ordenados de mayor a menor (orden estable).
// La dimension comun es la del solicitante: candidatos de otro largo puntuan 0 y no entran
// en la cohorte. Devuelve tambien el tamano de la cohorte (solicitante incluido).
func RankCandidates(requester []float64, candidates []domain.ProfileVector) ([]domain.MatchScore, int) {
	dim := len(requester)
	cohort := make([][]float64, 0, len(candidates)+1)
	cohort = append(cohort, requester)
	for _, c := range candidates {
		if len(c.Vector) == dim {
			cohort = append(cohort, c.Vector)
		}
	}

	stats := MeanStd(cohort, dim)
	zMe := ZScore(requester, stats.Mean, stats.Std)

	scores := make([]domain.MatchScore, 0, len(candidates))
	for _, c := range candidates {
		score := 0.0
		if dim > 0 && len(c.Vector) == dim {
			score = RescaleUnit(CosineSim(zMe, ZScore(c.Vector, stats.Mean, stats.Std)))
		}
		scores = append(scores, domain.MatchScore{
			CandidateID: c.UserID,
			Name:        c.Name,
			Summary:     c.Summary,
			Score:       score,
		})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	return scores, len(cohort)
}

// TopMatches ordena de forma estable y recorta al limite ya acotado.
func TopMatches(scores []domain.MatchScore, limit int) []domain.MatchScore {
	sorted := make([]domain.MatchScore, len(scores))
	copy(sorted, scores)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	limit = ClampLimit(limit)
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// ClampLimit: 0 (sin limite pedido) => 10; el resto se acota a [1,50].
func ClampLimit(limit int) int {
	if limit == 0 {
		return DefaultMatchLimit
	}
	if limit < 1 {
		return 1
	}
	if limit > MaxMatchLimit {
		return MaxMatchLimit
	}
	return limit
}
