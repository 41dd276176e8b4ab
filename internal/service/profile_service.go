package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"artmatch/internal/domain"
	"artmatch/internal/repository"
)

// ProfileService guarda el quiz y el perfil derivado de cada usuario.
type ProfileService struct {
	logger   *zap.Logger
	users    repository.UserRepository
	quizzes  repository.QuizRepository
	profiles repository.ProfileRepository
	saver    repository.SubmissionRepository
	analyzer *ProfileAnalyzer
	limiter  QuizRateLimiter
}

func NewProfileService(
	logger *zap.Logger,
	users repository.UserRepository,
	quizzes repository.QuizRepository,
	profiles repository.ProfileRepository,
	saver repository.SubmissionRepository,
	analyzer *ProfileAnalyzer,
	limiter QuizRateLimiter,
) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if analyzer == nil {
		analyzer = NewProfileAnalyzer(nil, 0, logger)
	}
	return &ProfileService{
		logger:   logger,
		users:    users,
		quizzes:  quizzes,
		profiles: profiles,
		saver:    saver,
		analyzer: analyzer,
		limiter:  limiter,
	}
}

// MeView es lo que ve un usuario de si mismo.
type MeView struct {
	User    domain.User                `json:"user"`
	Quiz    *domain.QuizAnswers        `json:"quiz"`
	Profile *domain.PersonalityProfile `json:"profile"`
}

// SubmitQuiz valida la entrega, calcula el perfil y guarda ambos juntos (la entrega reemplaza la anterior).
// El analisis nunca falla; solo errores de validacion, limite o base de datos llegan al caller.
func (s *ProfileService) SubmitQuiz(ctx context.Context, userID string, answers domain.QuizAnswers) (domain.PersonalityProfile, error) {
	answers, err := SanitizeAnswers(answers)
	if err != nil {
		return domain.PersonalityProfile{}, err
	}
	if s.limiter != nil && !s.limiter.Allow(ctx, userID) {
		return domain.PersonalityProfile{}, ErrRateLimited
	}

	now := time.Now().UTC()
	profile := s.analyzer.Analyze(ctx, answers)
	profile.UserID = userID
	profile.UpdatedAt = now

	quiz := domain.QuizRecord{UserID: userID, Answers: answers, UpdatedAt: now}
	if err := s.saver.SaveSubmission(ctx, quiz, profile); err != nil {
		return domain.PersonalityProfile{}, fmt.Errorf("save submission: %w", err)
	}
	s.logger.Info("profile updated",
		zap.String("user_id", userID),
		zap.String("source", string(profile.Source)),
	)
	return profile, nil
}

func (s *ProfileService) Me(ctx context.Context, userID string) (MeView, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MeView{}, ErrUserNotFound
		}
		return MeView{}, fmt.Errorf("load user: %w", err)
	}
	view := MeView{User: user}

	quiz, err := s.quizzes.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		view.Quiz = &quiz.Answers
	case !errors.Is(err, pgx.ErrNoRows):
		return MeView{}, fmt.Errorf("load quiz: %w", err)
	}

	profile, err := s.profiles.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		view.Profile = &profile
	case !errors.Is(err, pgx.ErrNoRows):
		return MeView{}, fmt.Errorf("load profile: %w", err)
	}
	return view, nil
}

// SanitizeAnswers recorta espacios, deduplica los grupos categoricos y valida los slots.
// Una entrega sin ningun dato es invalida.
func SanitizeAnswers(a domain.QuizAnswers) (domain.QuizAnswers, error) {
	out := domain.QuizAnswers{
		Interests: dedupeFold(a.Interests),
		Genres:    dedupeFold(a.Genres),
		Values:    dedupeFold(a.Values),
		Location:  strings.TrimSpace(a.Location),
	}

	seen := make(map[string]struct{}, len(a.Availability))
	for _, label := range a.Availability {
		label = strings.Join(strings.Fields(label), " ")
		if label == "" {
			continue
		}
		if !ValidSlotLabel(label) {
			return domain.QuizAnswers{}, fmt.Errorf("%w: availability %q", ErrInvalidAnswers, label)
		}
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		out.Availability = append(out.Availability, label)
	}

	for _, r := range a.Responses {
		answer := strings.TrimSpace(r.Answer)
		if answer == "" {
			continue
		}
		out.Responses = append(out.Responses, domain.QuizResponse{
			Question: strings.TrimSpace(r.Question),
			Answer:   answer,
		})
	}

	if out.IsEmpty() {
		return domain.QuizAnswers{}, fmt.Errorf("%w: empty submission", ErrInvalidAnswers)
	}
	return out, nil
}

// dedupeFold conserva la primera aparicion de cada valor sin distinguir mayusculas.
func dedupeFold(items []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(items))
	for _, s := range items {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
