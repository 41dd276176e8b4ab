package llm

import (
	"context"
	"sync"
)

// MockClient permite tests sin llamar a un LLM real.
type MockClient struct {
	Response string
	Err      error
	// Hook opcional; si esta definido reemplaza Response/Err.
	GenerateFn func(ctx context.Context, prompt Prompt) (string, error)

	mu    sync.Mutex
	calls []Prompt
}

func (m *MockClient) Generate(ctx context.Context, prompt Prompt) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, prompt)
	m.mu.Unlock()
	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, prompt)
	}
	return m.Response, m.Err
}

// Calls devuelve cuantas veces se invoco Generate.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// LastPrompt devuelve el ultimo prompt recibido.
func (m *MockClient) LastPrompt() (Prompt, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return Prompt{}, false
	}
	return m.calls[len(m.calls)-1], true
}
