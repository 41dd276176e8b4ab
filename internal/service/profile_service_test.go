package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"artmatch/internal/domain"
	"artmatch/internal/llm"
)

type profileFixture struct {
	svc      *ProfileService
	quizzes  *fakeQuizRepo
	profiles *fakeProfileRepo
	saver    *fakeSubmissionRepo
}

func newProfileFixture(t *testing.T, limiter QuizRateLimiter, client llm.LLMClient) *profileFixture {
	t.Helper()
	users := newMockUserRepo()
	require.NoError(t, users.Create(context.Background(), domain.User{ID: "u1", Email: "u1@example.com", Name: "Uno"}))
	f := &profileFixture{quizzes: newFakeQuizRepo(), profiles: newFakeProfileRepo()}
	f.saver = &fakeSubmissionRepo{quizzes: f.quizzes, profiles: f.profiles}
	analyzer := NewProfileAnalyzer(client, time.Second, zap.NewNop())
	f.svc = NewProfileService(zap.NewNop(), users, f.quizzes, f.profiles, f.saver, analyzer, limiter)
	return f
}

func TestSanitizeAnswers(t *testing.T) {
	got, err := SanitizeAnswers(domain.QuizAnswers{
		Interests:    []string{" Poetry ", "poetry", "", "Film"},
		Genres:       []string{"JAZZ", "jazz"},
		Availability: []string{"Sat  14:00", "Sat 14:00", " "},
		Responses: []domain.QuizResponse{
			{Question: "q1", Answer: "  "},
			{Question: " q2 ", Answer: " yes "},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Poetry", "Film"}, got.Interests)
	assert.Len(t, got.Genres, 1)
	assert.Equal(t, []string{"Sat 14:00"}, got.Availability)
	assert.Equal(t, []domain.QuizResponse{{Question: "q2", Answer: "yes"}}, got.Responses)
}

func TestSanitizeAnswers_Rejects(t *testing.T) {
	_, err := SanitizeAnswers(domain.QuizAnswers{Interests: []string{"  "}})
	assert.ErrorIs(t, err, ErrInvalidAnswers, "empty submission")

	_, err = SanitizeAnswers(domain.QuizAnswers{Availability: []string{"someday"}})
	assert.ErrorIs(t, err, ErrInvalidAnswers, "malformed slot")
}

func TestProfileServiceSubmitQuiz_PersistsQuizAndProfile(t *testing.T) {
	f := newProfileFixture(t, nil, nil)

	answers := domain.QuizAnswers{Interests: []string{"museum"}, Genres: []string{"jazz"}, Availability: []string{"Sat 14:00"}}
	profile, err := f.svc.SubmitQuiz(context.Background(), "u1", answers)
	require.NoError(t, err)
	assert.Equal(t, "u1", profile.UserID)
	assert.Equal(t, domain.ProfileSourceFallback, profile.Source)
	assert.Len(t, profile.Vector, ProfileVectorDim)

	assert.Contains(t, f.quizzes.records, "u1")
	stored, ok := f.profiles.profiles["u1"]
	require.True(t, ok)
	assert.Equal(t, profile.Summary, stored.Summary)
	assert.Equal(t, f.quizzes.records["u1"].UpdatedAt, stored.UpdatedAt)

	// Reenviar reemplaza la entrega anterior.
	_, err = f.svc.SubmitQuiz(context.Background(), "u1", domain.QuizAnswers{Genres: []string{"edm"}})
	require.NoError(t, err)
	got := f.quizzes.records["u1"].Answers
	assert.Empty(t, got.Interests)
	assert.Equal(t, []string{"edm"}, got.Genres)
}

func TestProfileServiceSubmitQuiz_FailedSaveKeepsPreviousPair(t *testing.T) {
	f := newProfileFixture(t, nil, nil)
	first, err := f.svc.SubmitQuiz(context.Background(), "u1", domain.QuizAnswers{Genres: []string{"jazz"}})
	require.NoError(t, err)

	f.saver.err = errors.New("connection reset")
	_, err = f.svc.SubmitQuiz(context.Background(), "u1", domain.QuizAnswers{Genres: []string{"edm"}})
	require.Error(t, err)

	// Ni el quiz ni el perfil avanzan: siguen describiendo la misma entrega.
	assert.Equal(t, []string{"jazz"}, f.quizzes.records["u1"].Answers.Genres)
	assert.Equal(t, first.Vector, f.profiles.profiles["u1"].Vector)
}

func TestProfileServiceSubmitQuiz_ExternalFailureStillSucceeds(t *testing.T) {
	f := newProfileFixture(t, nil, &llm.MockClient{Err: errors.New("upstream 500")})

	profile, err := f.svc.SubmitQuiz(context.Background(), "u1", domain.QuizAnswers{Genres: []string{"jazz"}})
	require.NoError(t, err, "predictor failure must not surface")
	assert.Equal(t, domain.ProfileSourceFallback, profile.Source)
}

func TestProfileServiceSubmitQuiz_RateLimited(t *testing.T) {
	f := newProfileFixture(t, NewMemoryQuizRateLimiter(time.Hour, 1), nil)
	answers := domain.QuizAnswers{Genres: []string{"jazz"}}

	_, err := f.svc.SubmitQuiz(context.Background(), "u1", answers)
	require.NoError(t, err)
	_, err = f.svc.SubmitQuiz(context.Background(), "u1", answers)
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestProfileServiceMe(t *testing.T) {
	f := newProfileFixture(t, nil, nil)

	view, err := f.svc.Me(context.Background(), "u1")
	require.NoError(t, err)
	assert.Nil(t, view.Quiz)
	assert.Nil(t, view.Profile)

	_, err = f.svc.SubmitQuiz(context.Background(), "u1", domain.QuizAnswers{Genres: []string{"jazz"}})
	require.NoError(t, err)
	view, err = f.svc.Me(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, view.Quiz)
	assert.NotNil(t, view.Profile)
	assert.Equal(t, "Uno", view.User.Name)

	_, err = f.svc.Me(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
