package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"artmatch/internal/config"
	"artmatch/internal/db"
	apihttp "artmatch/internal/http"
	"artmatch/internal/llm"
	"artmatch/internal/repository"
	"artmatch/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal("ensure schema", zap.Error(err))
	}

	userRepo := repository.NewPgUserRepository(pool)
	quizRepo := repository.NewPgQuizRepository(pool)
	profileRepo := repository.NewPgProfileRepository(pool)
	scheduleRepo := repository.NewPgScheduleRepository(pool)
	eventRepo := repository.NewPgEventRepository(pool)
	submissionRepo := repository.NewPgSubmissionRepository(pool)

	events, err := eventRepo.List(ctx)
	if err != nil {
		logger.Fatal("load event catalog", zap.Error(err))
	}
	catalog := service.NewEventCatalog(events)
	logger.Info("event catalog loaded", zap.Int("events", catalog.Len()))

	var llmClient llm.LLMClient
	if cfg.LLMAPIKey != "" {
		httpClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, logger)
		llmClient = llm.NewBreakerClient(httpClient, llm.DefaultBreakerSettings(), logger)
	} else {
		logger.Warn("llm api key not configured; profiles use the deterministic fallback")
	}
	analyzer := service.NewProfileAnalyzer(llmClient, cfg.LLMTimeout, logger)

	var (
		quizLimiter service.QuizRateLimiter
		tokenStore  service.RefreshTokenStore
		redisClient *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			quizLimiter = service.NewRedisQuizRateLimiter(redisClient, cfg.QuizRateWindow, cfg.QuizRateLimit)
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
		}
		cancel()
	}
	if quizLimiter == nil {
		quizLimiter = service.NewMemoryQuizRateLimiter(cfg.QuizRateWindow, cfg.QuizRateLimit)
	}

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}

	userSvc := service.NewUserService(logger, userRepo)
	profileSvc := service.NewProfileService(logger, userRepo, quizRepo, profileRepo, submissionRepo, analyzer, quizLimiter)
	matchSvc := service.NewMatchService(logger, profileRepo)
	scheduleSvc := service.NewScheduleService(logger, userRepo, quizRepo, scheduleRepo, catalog, service.ScheduleConfig{
		Location:       cfg.Location(),
		WithoutOverlap: cfg.ScheduleWithoutOverlap,
	})

	router := apihttp.NewRouter(logger, jwtSvc, apihttp.Handlers{
		User:     apihttp.NewUserHandler(logger, userSvc, jwtSvc),
		Profile:  apihttp.NewProfileHandler(logger, profileSvc),
		Match:    apihttp.NewMatchHandler(logger, matchSvc),
		Schedule: apihttp.NewScheduleHandler(logger, scheduleSvc, catalog),
	}, func(ctx context.Context) error {
		return db.Ping(ctx, pool)
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
