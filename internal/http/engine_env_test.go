package http

import (
	"context"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"artmatch/internal/domain"
	"artmatch/internal/service"
)

// testEnv arma los handlers del motor sobre repositorios en memoria.
type testEnv struct {
	users     *mockUserRepo
	quizzes   *mockQuizRepo
	profiles  *mockProfileRepo
	schedules *mockScheduleRepo
	router    *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if err := RegisterValidators(); err != nil {
		t.Fatalf("register validators: %v", err)
	}

	env := &testEnv{
		users:     newMockUserRepo(),
		quizzes:   newMockQuizRepo(),
		profiles:  newMockProfileRepo(),
		schedules: &mockScheduleRepo{},
	}
	logger := zap.NewNop()
	catalog := service.NewEventCatalog([]domain.Event{
		{ID: "evt_rock", Title: "Rock Night", Category: "concert", Tags: []string{"rock", "live"}, Location: "Hall", DurationMin: 120},
		{ID: "evt_museum", Title: "Modern Art", Category: "museum", Tags: []string{"modern"}, Location: "Museum", DurationMin: 90},
	})
	analyzer := service.NewProfileAnalyzer(nil, 0, logger)

	profileH := NewProfileHandler(logger, service.NewProfileService(logger, env.users, env.quizzes, env.profiles, &mockSubmissionRepo{quizzes: env.quizzes, profiles: env.profiles}, analyzer, nil))
	matchH := NewMatchHandler(logger, service.NewMatchService(logger, env.profiles))
	scheduleH := NewScheduleHandler(logger, service.NewScheduleService(logger, env.users, env.quizzes, env.schedules, catalog, service.ScheduleConfig{}), catalog)

	r := gin.New()
	r.GET("/events", scheduleH.ListEvents)
	protected := r.Group("/", fakeAuth())
	protected.GET("/me", profileH.Me)
	protected.POST("/quiz", profileH.SubmitQuiz)
	protected.GET("/matches", matchH.ListMatches)
	protected.POST("/schedule", scheduleH.CreateSchedule)
	protected.GET("/schedule", scheduleH.ListSchedules)
	protected.GET("/schedule/with/:partnerId", scheduleH.GetWithPartner)
	protected.DELETE("/schedule/:id", scheduleH.DeleteSchedule)
	env.router = r
	return env
}

func (e *testEnv) addUser(t *testing.T, id, name string) {
	t.Helper()
	err := e.users.Create(context.Background(), domain.User{ID: id, Email: id + "@example.com", Name: name, CreatedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("create user %s: %v", id, err)
	}
}

func rockQuiz(availability ...string) map[string]any {
	return map[string]any{
		"interests":    []string{"live", "travel"},
		"genres":       []string{"rock"},
		"values":       []string{"honesty"},
		"availability": availability,
		"location":     "North Campus",
	}
}
