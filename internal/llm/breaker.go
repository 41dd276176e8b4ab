package llm

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"artmatch/internal/metrics"
)

// ErrCircuitOpen indica que el circuito esta abierto y la llamada no se intento.
var ErrCircuitOpen = errors.New("llm circuit open")

// BreakerSettings configura el circuit breaker del predictor externo.
type BreakerSettings struct {
	Name        string
	MaxRequests uint32        // requests permitidos en half-open
	Interval    time.Duration // ventana de conteo en estado cerrado
	Timeout     time.Duration // tiempo abierto antes de pasar a half-open
	MinRequests uint32
	FailureRate float64
}

// DefaultBreakerSettings abre el circuito con 60% de fallas sobre al menos 5 requests.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Name:        "llm-profile",
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		MinRequests: 5,
		FailureRate: 0.6,
	}
}

// BreakerClient envuelve un LLMClient con un circuit breaker; con el circuito abierto
// devuelve ErrCircuitOpen al instante y el llamador cae a su fallback sin esperar el timeout.
type BreakerClient struct {
	inner  LLMClient
	cb     *gobreaker.CircuitBreaker[string]
	logger *zap.Logger
}

func NewBreakerClient(inner LLMClient, settings BreakerSettings, logger *zap.Logger) *BreakerClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings.Name == "" {
		settings.Name = DefaultBreakerSettings().Name
	}
	metrics.CircuitBreakerState.WithLabelValues(settings.Name).Set(0)

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= settings.FailureRate
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("llm circuit breaker state change",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return &BreakerClient{inner: inner, cb: cb, logger: logger}
}

func (b *BreakerClient) Generate(ctx context.Context, prompt Prompt) (string, error) {
	out, err := b.cb.Execute(func() (string, error) {
		return b.inner.Generate(ctx, prompt)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", ErrCircuitOpen
	}
	return out, err
}

// State expone el estado actual (para /healthz y tests).
func (b *BreakerClient) State() gobreaker.State {
	return b.cb.State()
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
