package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"artmatch/internal/domain"
	"artmatch/internal/repository"
	"artmatch/internal/service"
)

type mockUserRepo struct {
	mu           sync.Mutex
	usersByID    map[string]domain.User
	usersByEmail map[string]string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByID:    make(map[string]domain.User),
		usersByEmail: make(map[string]string),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.usersByEmail[user.Email]; taken {
		return repository.ErrDuplicate
	}
	m.usersByID[user.ID] = user
	m.usersByEmail[user.Email] = user.ID
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	id, ok := m.usersByEmail[email]
	m.mu.Unlock()
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(ctx, id)
}

type mockQuizRepo struct {
	mu      sync.Mutex
	records map[string]domain.QuizRecord
}

func newMockQuizRepo() *mockQuizRepo {
	return &mockQuizRepo{records: make(map[string]domain.QuizRecord)}
}

func (m *mockQuizRepo) Upsert(_ context.Context, record domain.QuizRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.UserID] = record
	return nil
}

func (m *mockQuizRepo) GetByUserID(_ context.Context, userID string) (domain.QuizRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[userID]
	if !ok {
		return domain.QuizRecord{}, pgx.ErrNoRows
	}
	return rec, nil
}

func (m *mockQuizRepo) UpdateAvailability(_ context.Context, userID string, slots []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.records[userID]
	rec.Answers.Availability = slots
	m.records[userID] = rec
	return nil
}

type mockProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]domain.PersonalityProfile
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{profiles: make(map[string]domain.PersonalityProfile)}
}

func (m *mockProfileRepo) Upsert(_ context.Context, profile domain.PersonalityProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[profile.UserID] = profile
	return nil
}

func (m *mockProfileRepo) GetByUserID(_ context.Context, userID string) (domain.PersonalityProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return domain.PersonalityProfile{}, pgx.ErrNoRows
	}
	return p, nil
}

func (m *mockProfileRepo) ListVectorsExcept(_ context.Context, userID string) ([]domain.ProfileVector, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ProfileVector
	for id, p := range m.profiles {
		if id == userID {
			continue
		}
		out = append(out, domain.ProfileVector{UserID: id, Name: id, Vector: p.Vector, Summary: p.Summary})
	}
	return out, nil
}

type mockSubmissionRepo struct {
	quizzes  *mockQuizRepo
	profiles *mockProfileRepo
}

func (m *mockSubmissionRepo) SaveSubmission(ctx context.Context, quiz domain.QuizRecord, profile domain.PersonalityProfile) error {
	if err := m.quizzes.Upsert(ctx, quiz); err != nil {
		return err
	}
	return m.profiles.Upsert(ctx, profile)
}

type mockScheduleRepo struct {
	mu      sync.Mutex
	records []domain.ScheduleRecord
}

func (m *mockScheduleRepo) InsertIfAbsent(_ context.Context, rec domain.ScheduleRecord) (domain.ScheduleRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.PairKey() == rec.PairKey() {
			return r, false, nil
		}
	}
	m.records = append(m.records, rec)
	return rec, true, nil
}

func (m *mockScheduleRepo) GetByPair(_ context.Context, userA, userB string) (domain.ScheduleRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := domain.PairKey(userA, userB)
	for _, r := range m.records {
		if r.PairKey() == key {
			return r, nil
		}
	}
	return domain.ScheduleRecord{}, pgx.ErrNoRows
}

func (m *mockScheduleRepo) GetByID(_ context.Context, id string) (domain.ScheduleRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.ScheduleRecord{}, pgx.ErrNoRows
}

func (m *mockScheduleRepo) ListForUser(_ context.Context, userID string) ([]domain.ScheduleRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ScheduleRecord
	for _, r := range m.records {
		if r.Involves(userID) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockScheduleRepo) DeleteForParticipant(_ context.Context, id, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.records {
		if r.ID == id && r.Involves(userID) {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func performRequest(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

const testUserHeader = "X-Test-User"

// fakeAuth reemplaza al middleware JWT: toma el usuario del header de test.
func fakeAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := c.GetHeader(testUserHeader); id != "" {
			c.Set(authClaimsKey, service.Claims{UserID: id})
		}
		c.Next()
	}
}

func performAs(r http.Handler, userID, method, path string, body any) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(testUserHeader, userID)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(rec *httptest.ResponseRecorder, out any) error {
	return json.Unmarshal(rec.Body.Bytes(), out)
}
