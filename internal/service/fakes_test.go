package service

import (
	"context"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5"

	"artmatch/internal/domain"
)

type fakeQuizRepo struct {
	mu      sync.Mutex
	records map[string]domain.QuizRecord
	err     error
}

func newFakeQuizRepo() *fakeQuizRepo {
	return &fakeQuizRepo{records: make(map[string]domain.QuizRecord)}
}

func (f *fakeQuizRepo) Upsert(_ context.Context, rec domain.QuizRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.records[rec.UserID] = rec
	return nil
}

func (f *fakeQuizRepo) GetByUserID(_ context.Context, userID string) (domain.QuizRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.QuizRecord{}, f.err
	}
	rec, ok := f.records[userID]
	if !ok {
		return domain.QuizRecord{}, pgx.ErrNoRows
	}
	return rec, nil
}

func (f *fakeQuizRepo) UpdateAvailability(_ context.Context, userID string, slots []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	rec.Answers.Availability = append([]string(nil), slots...)
	f.records[userID] = rec
	return nil
}

func (f *fakeQuizRepo) availability(userID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[userID].Answers.Availability
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]domain.PersonalityProfile
	names    map[string]string
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{
		profiles: make(map[string]domain.PersonalityProfile),
		names:    make(map[string]string),
	}
}

func (f *fakeProfileRepo) Upsert(_ context.Context, p domain.PersonalityProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[p.UserID] = p
	return nil
}

func (f *fakeProfileRepo) GetByUserID(_ context.Context, userID string) (domain.PersonalityProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return domain.PersonalityProfile{}, pgx.ErrNoRows
	}
	return p, nil
}

func (f *fakeProfileRepo) ListVectorsExcept(_ context.Context, userID string) ([]domain.ProfileVector, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.ProfileVector, 0, len(f.profiles))
	for id, p := range f.profiles {
		if id == userID {
			continue
		}
		out = append(out, domain.ProfileVector{UserID: id, Name: f.names[id], Vector: p.Vector, Summary: p.Summary})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// fakeSubmissionRepo es todo o nada como la transaccion real: con err no escribe ninguna fila.
type fakeSubmissionRepo struct {
	quizzes  *fakeQuizRepo
	profiles *fakeProfileRepo
	err      error
}

func (f *fakeSubmissionRepo) SaveSubmission(ctx context.Context, quiz domain.QuizRecord, profile domain.PersonalityProfile) error {
	if f.err != nil {
		return f.err
	}
	if err := f.quizzes.Upsert(ctx, quiz); err != nil {
		return err
	}
	return f.profiles.Upsert(ctx, profile)
}

type fakeScheduleRepo struct {
	mu      sync.Mutex
	byPair  map[string]domain.ScheduleRecord
	inserts int
	// preempt simula otro request que inserta el mismo par justo antes que nosotros.
	preempt *domain.ScheduleRecord
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{byPair: make(map[string]domain.ScheduleRecord)}
}

func (f *fakeScheduleRepo) InsertIfAbsent(_ context.Context, rec domain.ScheduleRecord) (domain.ScheduleRecord, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.preempt != nil {
		f.byPair[f.preempt.PairKey()] = *f.preempt
		f.preempt = nil
	}
	if existing, ok := f.byPair[rec.PairKey()]; ok {
		return existing, false, nil
	}
	f.byPair[rec.PairKey()] = rec
	f.inserts++
	return rec, true, nil
}

func (f *fakeScheduleRepo) GetByPair(_ context.Context, a, b string) (domain.ScheduleRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.byPair[domain.PairKey(a, b)]
	if !ok {
		return domain.ScheduleRecord{}, pgx.ErrNoRows
	}
	return rec, nil
}

func (f *fakeScheduleRepo) GetByID(_ context.Context, id string) (domain.ScheduleRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.byPair {
		if rec.ID == id {
			return rec, nil
		}
	}
	return domain.ScheduleRecord{}, pgx.ErrNoRows
}

func (f *fakeScheduleRepo) ListForUser(_ context.Context, userID string) ([]domain.ScheduleRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ScheduleRecord
	for _, rec := range f.byPair {
		if rec.Involves(userID) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (f *fakeScheduleRepo) DeleteForParticipant(_ context.Context, id, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, rec := range f.byPair {
		if rec.ID == id && rec.Involves(userID) {
			delete(f.byPair, key)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeScheduleRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byPair)
}
