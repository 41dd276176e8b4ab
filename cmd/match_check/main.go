package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"artmatch/internal/config"
	"artmatch/internal/db"
	"artmatch/internal/domain"
	"artmatch/internal/llm"
	"artmatch/internal/service"
)

const (
	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
	colorCyan  = "\033[36m"
	colorReset = "\033[0m"
)

// match_check corre escenarios de punta a punta (quiz -> perfil -> ranking -> agenda)
// sobre repositorios en memoria. Con LLM_API_KEY usa el predictor externo; si no, el perfil determinista.
func main() {
	ctx := context.Background()
	_ = godotenv.Load()

	logger := zap.NewNop()
	if os.Getenv("MATCH_CHECK_VERBOSE") != "" {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	var llmClient llm.LLMClient
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("config not loaded (%v); running fully offline", err)
	} else if cfg.LLMAPIKey != "" {
		llmClient = llm.NewBreakerClient(
			llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, logger),
			llm.DefaultBreakerSettings(),
			logger,
		)
	}
	var timeout time.Duration
	scheduleCfg := service.ScheduleConfig{}
	if cfg != nil {
		timeout = cfg.LLMTimeout
		scheduleCfg.Location = cfg.Location()
		scheduleCfg.WithoutOverlap = cfg.ScheduleWithoutOverlap
	}
	analyzer := service.NewProfileAnalyzer(llmClient, timeout, logger)
	catalog := service.NewEventCatalog(db.SeedEvents)

	var passed, total int
	for _, sc := range scenarios(scheduleCfg.WithoutOverlap) {
		fmt.Printf("%s==== %s ====%s\n", colorCyan, sc.Name, colorReset)

		v, err := runScenario(ctx, logger, analyzer, catalog, scheduleCfg, sc)
		if err != nil {
			log.Fatalf("scenario %q failed: %v", sc.Name, err)
		}
		for _, line := range v.Reasoning {
			color := colorGreen
			if strings.HasPrefix(line, "[FAIL]") {
				color = colorRed
			}
			fmt.Printf("  %s%s%s\n", color, line, colorReset)
		}
		fmt.Printf("Checks: %d/%d\n\n", v.Passed, v.Total)
		passed += v.Passed
		total += v.Total
	}

	fmt.Println("==== Total ====")
	fmt.Printf("%d/%d checks passed\n", passed, total)
	if passed != total {
		os.Exit(1)
	}
}

func runScenario(
	ctx context.Context,
	logger *zap.Logger,
	analyzer *service.ProfileAnalyzer,
	catalog *service.EventCatalog,
	scheduleCfg service.ScheduleConfig,
	sc Scenario,
) (verdict, error) {
	userRepo := newMemoryUserRepo()
	quizRepo := newMemoryQuizRepo()
	profileRepo := newMemoryProfileRepo(userRepo)
	scheduleRepo := &memoryScheduleRepo{}

	userSvc := service.NewUserService(logger, userRepo)
	profileSvc := service.NewProfileService(logger, userRepo, quizRepo, profileRepo, &memorySubmissionRepo{quizzes: quizRepo, profiles: profileRepo}, analyzer, nil)
	matchSvc := service.NewMatchService(logger, profileRepo)
	scheduleSvc := service.NewScheduleService(logger, userRepo, quizRepo, scheduleRepo, catalog, scheduleCfg)

	ids := make(map[string]string, len(sc.Users))
	for _, du := range sc.Users {
		user, err := userSvc.Register(ctx, service.RegisterInput{
			Email:    du.Key + "@match-check.local",
			Name:     du.Name,
			Password: "match-check-password",
		})
		if err != nil {
			return verdict{}, fmt.Errorf("register %s: %w", du.Key, err)
		}
		ids[du.Key] = user.ID

		if du.Answers.IsEmpty() {
			continue
		}
		profile, err := profileSvc.SubmitQuiz(ctx, user.ID, du.Answers)
		if err != nil {
			return verdict{}, fmt.Errorf("submit quiz %s: %w", du.Key, err)
		}
		fmt.Printf("%s[%s]%s (%s) %s\n", colorGreen, du.Name, colorReset, profile.Source, formatTraits(profile.Traits))
		fmt.Printf("  %q\n", profile.Summary)
	}

	matches, err := matchSvc.Rank(ctx, ids[sc.Requester], 0)
	if err != nil {
		return verdict{}, fmt.Errorf("rank: %w", err)
	}
	for i, m := range matches.Matches {
		fmt.Printf("  #%d %-10s %.4f\n", i+1, m.Name, m.Score)
	}

	res, err := scheduleSvc.Schedule(ctx, ids[sc.Requester], ids[sc.Partner])
	if err != nil {
		return verdict{}, fmt.Errorf("schedule: %w", err)
	}
	if res.Scheduled != nil {
		title := res.Scheduled.EventID
		if res.Event != nil {
			title = res.Event.Title
		}
		fmt.Printf("%s[Agenda]%s %s @ %s (%s)\n", colorCyan, colorReset, title, res.Scheduled.Start.Format("Mon 2006-01-02 15:04 MST"), res.Note)
	} else {
		fmt.Printf("%s[Agenda]%s sin cita: %s\n", colorCyan, colorReset, res.Note)
	}

	return evaluateScenario(sc, ids, matches, res), nil
}

// scenarios: withoutOverlap sigue a SCHEDULE_WITHOUT_OVERLAP, que cambia el resultado esperado sin slots comunes.
func scenarios(withoutOverlap bool) []Scenario {
	rocker := domain.QuizAnswers{
		Interests:    []string{"live", "guitar", "travel"},
		Genres:       []string{"rock", "indie"},
		Values:       []string{"adventure", "honesty"},
		Availability: []string{"Sat 14:00", "Sun 18:00"},
		Location:     "North Campus",
		Responses: []domain.QuizResponse{
			{Question: "Ideal Friday night?", Answer: "A loud gig with friends"},
		},
	}
	return []Scenario{
		{
			Name: "Gemelos de gustos",
			Users: []demoUser{
				{Key: "ana", Name: "Ana", Answers: rocker},
				{Key: "bruno", Name: "Bruno", Answers: rocker},
				{Key: "carla", Name: "Carla", Answers: domain.QuizAnswers{
					Interests:    []string{"gallery", "photography"},
					Genres:       []string{"classical"},
					Values:       []string{"calm", "tradition"},
					Availability: []string{"Wed 10:00"},
					Location:     "Old Town",
				}},
			},
			Requester:        "ana",
			Partner:          "bruno",
			ExpectedTopMatch: "bruno",
			ExpectedEventID:  "evt_rock_1",
			ExpectScheduled:  true,
		},
		{
			Name: "Sin disponibilidad comun",
			Users: []demoUser{
				{Key: "diego", Name: "Diego", Answers: domain.QuizAnswers{
					Interests:    []string{"dance"},
					Genres:       []string{"edm", "electronic"},
					Availability: []string{"Fri 22:00"},
				}},
				{Key: "elena", Name: "Elena", Answers: domain.QuizAnswers{
					Interests:    []string{"modern", "gallery"},
					Genres:       []string{"jazz"},
					Availability: []string{"Tue 09:00"},
				}},
			},
			Requester:       "diego",
			Partner:         "elena",
			ExpectScheduled: withoutOverlap,
		},
		{
			Name: "Pareja sin quiz",
			Users: []demoUser{
				{Key: "fede", Name: "Fede", Answers: rocker},
				{Key: "gala", Name: "Gala"},
			},
			Requester:       "fede",
			Partner:         "gala",
			ExpectScheduled: false,
		},
	}
}
