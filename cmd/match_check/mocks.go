package main

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"

	"artmatch/internal/domain"
	"artmatch/internal/repository"
)

// --- REPOSITORIOS EN MEMORIA ---
// Devuelven pgx.ErrNoRows igual que los de Postgres para que los servicios no noten la diferencia.

type memoryUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[string]domain.User)}
}

func (m *memoryUserRepo) Create(ctx context.Context, user domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *memoryUserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (m *memoryUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, pgx.ErrNoRows
}

type memoryQuizRepo struct {
	mu      sync.Mutex
	records map[string]domain.QuizRecord
}

func newMemoryQuizRepo() *memoryQuizRepo {
	return &memoryQuizRepo{records: make(map[string]domain.QuizRecord)}
}

func (m *memoryQuizRepo) Upsert(ctx context.Context, record domain.QuizRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.UserID] = record
	return nil
}

func (m *memoryQuizRepo) GetByUserID(ctx context.Context, userID string) (domain.QuizRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[userID]
	if !ok {
		return domain.QuizRecord{}, pgx.ErrNoRows
	}
	return rec, nil
}

func (m *memoryQuizRepo) UpdateAvailability(ctx context.Context, userID string, slots []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[userID]
	if !ok {
		return nil
	}
	rec.Answers.Availability = append([]string(nil), slots...)
	m.records[userID] = rec
	return nil
}

// memoryProfileRepo resuelve el nombre del candidato contra el repo de usuarios, como el JOIN de Postgres.
type memoryProfileRepo struct {
	mu       sync.Mutex
	users    *memoryUserRepo
	profiles map[string]domain.PersonalityProfile
	order    []string
}

func newMemoryProfileRepo(users *memoryUserRepo) *memoryProfileRepo {
	return &memoryProfileRepo{users: users, profiles: make(map[string]domain.PersonalityProfile)}
}

func (m *memoryProfileRepo) Upsert(ctx context.Context, profile domain.PersonalityProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[profile.UserID]; !ok {
		m.order = append(m.order, profile.UserID)
	}
	m.profiles[profile.UserID] = profile
	return nil
}

func (m *memoryProfileRepo) GetByUserID(ctx context.Context, userID string) (domain.PersonalityProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return domain.PersonalityProfile{}, pgx.ErrNoRows
	}
	return p, nil
}

func (m *memoryProfileRepo) ListVectorsExcept(ctx context.Context, userID string) ([]domain.ProfileVector, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ProfileVector
	for _, id := range m.order {
		if id == userID {
			continue
		}
		p := m.profiles[id]
		var name string
		if u, err := m.users.GetByID(ctx, id); err == nil {
			name = u.Name
		}
		out = append(out, domain.ProfileVector{UserID: id, Name: name, Vector: p.Vector, Summary: p.Summary})
	}
	return out, nil
}

type memoryScheduleRepo struct {
	mu      sync.Mutex
	records []domain.ScheduleRecord
}

func (m *memoryScheduleRepo) InsertIfAbsent(ctx context.Context, rec domain.ScheduleRecord) (domain.ScheduleRecord, bool, error) {
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

func (m *memoryScheduleRepo) GetByPair(ctx context.Context, userA, userB string) (domain.ScheduleRecord, error) {
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

func (m *memoryScheduleRepo) GetByID(ctx context.Context, id string) (domain.ScheduleRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.ScheduleRecord{}, pgx.ErrNoRows
}

func (m *memoryScheduleRepo) ListForUser(ctx context.Context, userID string) ([]domain.ScheduleRecord, error) {
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

func (m *memoryScheduleRepo) DeleteForParticipant(ctx context.Context, id, userID string) (bool, error) {
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

// memorySubmissionRepo escribe quiz y perfil uno tras otro; en memoria ninguno de los dos falla.
type memorySubmissionRepo struct {
	quizzes  *memoryQuizRepo
	profiles *memoryProfileRepo
}

func (m *memorySubmissionRepo) SaveSubmission(ctx context.Context, quiz domain.QuizRecord, profile domain.PersonalityProfile) error {
	if err := m.quizzes.Upsert(ctx, quiz); err != nil {
		return err
	}
	return m.profiles.Upsert(ctx, profile)
}
