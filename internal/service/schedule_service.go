package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"artmatch/internal/domain"
	"artmatch/internal/metrics"
	"artmatch/internal/repository"
)

const (
	defaultEventDuration = 90 * time.Minute
	autoScheduleOffset   = 3 * 24 * time.Hour

	noteAutoScheduled     = "Auto-scheduled"
	noteSharedSlotPrefix  = "Auto-scheduled using shared slot: "
	noteNoOverlap         = "No shared availability yet; add more availability slots to get scheduled."
	notePartnerIncomplete = "Your match has not completed the quiz yet."
	noteNoEvents          = "No events available to schedule."
)

// ScheduleConfig agrupa la politica de agenda.
type ScheduleConfig struct {
	Location *time.Location
	// WithoutOverlap agenda igual (ahora + 3 dias) cuando no hay slots en comun.
	WithoutOverlap bool
}

// ScheduleService decide y persiste la cita de un par.
type ScheduleService struct {
	logger         *zap.Logger
	users          repository.UserRepository
	quizzes        repository.QuizRepository
	schedules      repository.ScheduleRepository
	catalog        *EventCatalog
	loc            *time.Location
	withoutOverlap bool
	now            func() time.Time
}

func NewScheduleService(
	logger *zap.Logger,
	users repository.UserRepository,
	quizzes repository.QuizRepository,
	schedules repository.ScheduleRepository,
	catalog *EventCatalog,
	cfg ScheduleConfig,
) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &ScheduleService{
		logger:         logger,
		users:          users,
		quizzes:        quizzes,
		schedules:      schedules,
		catalog:        catalog,
		loc:            loc,
		withoutOverlap: cfg.WithoutOverlap,
		now:            time.Now,
	}
}

// ScheduleResult: Scheduled nil significa "sin cita" y Note explica por que.
type ScheduleResult struct {
	Scheduled *domain.ScheduleRecord `json:"scheduled"`
	Event     *domain.Event          `json:"event,omitempty"`
	Created   bool                   `json:"created"`
	Note      string                 `json:"note,omitempty"`
}

type PartnerInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ScheduleSummary es una cita vista desde uno de los participantes.
type ScheduleSummary struct {
	ID        string        `json:"id"`
	Partner   PartnerInfo   `json:"partner"`
	Event     *domain.Event `json:"event,omitempty"`
	Start     time.Time     `json:"start"`
	End       time.Time     `json:"end"`
	Location  string        `json:"location"`
	Note      string        `json:"note"`
	SentByMe  bool          `json:"sent_by_me"`
	CreatedAt time.Time     `json:"created_at"`
}

// Schedule: CheckExisting -> ComputeOverlap -> SelectEvent -> ComputeTimeSlot -> Persist -> AdjustAvailability.
func (s *ScheduleService) Schedule(ctx context.Context, requesterID, partnerID string) (ScheduleResult, error) {
	requesterID = strings.TrimSpace(requesterID)
	partnerID = strings.TrimSpace(partnerID)
	if partnerID == "" {
		return ScheduleResult{}, ErrPartnerNotFound
	}
	if partnerID == requesterID {
		return ScheduleResult{}, ErrSelfSchedule
	}
	if _, err := s.users.GetByID(ctx, partnerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ScheduleResult{}, ErrPartnerNotFound
		}
		return ScheduleResult{}, fmt.Errorf("load partner: %w", err)
	}

	existing, err := s.schedules.GetByPair(ctx, requesterID, partnerID)
	if err == nil {
		metrics.RecordSchedule("existing")
		return s.resultFor(existing, false, ""), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return ScheduleResult{}, fmt.Errorf("check existing schedule: %w", err)
	}

	var (
		mine, theirs       domain.QuizRecord
		hasMine, hasTheirs bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		mine, hasMine, err = s.loadQuiz(gctx, requesterID)
		return err
	})
	g.Go(func() error {
		var err error
		theirs, hasTheirs, err = s.loadQuiz(gctx, partnerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return ScheduleResult{}, err
	}
	if !hasMine {
		return ScheduleResult{}, ErrProfileRequired
	}
	if !hasTheirs {
		metrics.RecordSchedule("partner_incomplete")
		return ScheduleResult{Note: notePartnerIncomplete}, nil
	}

	overlap := SharedAvailability(mine.Answers.Availability, theirs.Answers.Availability)
	if len(overlap) == 0 && !s.withoutOverlap {
		metrics.RecordSchedule("no_overlap")
		return ScheduleResult{Note: noteNoOverlap}, nil
	}

	event, ok := SelectEvent(TasteFromAnswers(mine.Answers), TasteFromAnswers(theirs.Answers), s.catalog)
	if !ok {
		event, ok = s.catalog.First()
	}
	if !ok {
		metrics.RecordSchedule("no_event")
		return ScheduleResult{Note: noteNoEvents}, nil
	}

	now := s.now()
	start, note := s.resolveStart(overlap, now)
	duration := time.Duration(event.DurationMin) * time.Minute
	if duration <= 0 {
		duration = defaultEventDuration
	}
	end := start.Add(duration)

	rec := domain.ScheduleRecord{
		ID:        uuid.NewString(),
		UserA:     requesterID,
		UserB:     partnerID,
		EventID:   event.ID,
		Start:     start,
		End:       end,
		Location:  event.Location,
		Note:      note,
		CreatedAt: now.UTC(),
	}
	stored, created, err := s.schedules.InsertIfAbsent(ctx, rec)
	if err != nil {
		return ScheduleResult{}, fmt.Errorf("persist schedule: %w", err)
	}
	if !created {
		// Otro request del mismo par gano la carrera.
		metrics.RecordSchedule("existing")
		return s.resultFor(stored, false, ""), nil
	}

	s.adjustAvailability(ctx, mine, start, end)
	s.adjustAvailability(ctx, theirs, start, end)

	metrics.RecordSchedule("created")
	s.logger.Info("schedule created",
		zap.String("schedule_id", stored.ID),
		zap.String("event_id", stored.EventID),
		zap.Time("start", stored.Start),
	)
	return s.resultFor(stored, true, note), nil
}

// resolveStart usa el primer slot comun parseable; si no hay ninguno, ahora + 3 dias.
func (s *ScheduleService) resolveStart(overlap []string, now time.Time) (time.Time, string) {
	for _, label := range overlap {
		slot, err := ParseSlot(label)
		if err != nil {
			continue
		}
		return slot.NextOccurrence(now, s.loc), noteSharedSlotPrefix + label
	}
	return now.In(s.loc).Add(autoScheduleOffset), noteAutoScheduled
}

// adjustAvailability no hace fallar la agenda: la cita ya quedo persistida.
func (s *ScheduleService) adjustAvailability(ctx context.Context, quiz domain.QuizRecord, start, end time.Time) {
	slots := quiz.Answers.Availability
	updated := RemoveOverlapping(slots, start, end, s.loc)
	if len(updated) == len(slots) {
		return
	}
	if err := s.quizzes.UpdateAvailability(ctx, quiz.UserID, updated); err != nil {
		s.logger.Warn("failed to adjust availability after booking",
			zap.String("user_id", quiz.UserID),
			zap.Error(err),
		)
	}
}

func (s *ScheduleService) loadQuiz(ctx context.Context, userID string) (domain.QuizRecord, bool, error) {
	rec, err := s.quizzes.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.QuizRecord{}, false, nil
		}
		return domain.QuizRecord{}, false, fmt.Errorf("load quiz %s: %w", userID, err)
	}
	if rec.UserID == "" {
		rec.UserID = userID
	}
	return rec, true, nil
}

func (s *ScheduleService) resultFor(rec domain.ScheduleRecord, created bool, note string) ScheduleResult {
	if note == "" {
		note = rec.Note
	}
	res := ScheduleResult{Scheduled: &rec, Created: created, Note: note}
	if e, ok := s.catalog.Get(rec.EventID); ok {
		res.Event = &e
	}
	return res
}

// Delete borra la cita solo si el solicitante participa en ella.
func (s *ScheduleService) Delete(ctx context.Context, scheduleID, requesterID string) error {
	deleted, err := s.schedules.DeleteForParticipant(ctx, strings.TrimSpace(scheduleID), requesterID)
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	if !deleted {
		s.logDeleteDenied(ctx, scheduleID, requesterID)
		return ErrScheduleNotFound
	}
	metrics.RecordSchedule("deleted")
	return nil
}

// logDeleteDenied distingue en el log un id inexistente de un no participante.
// Hacia el cliente ambos casos son el mismo 404.
func (s *ScheduleService) logDeleteDenied(ctx context.Context, scheduleID, requesterID string) {
	reason := "unknown_id"
	rec, err := s.schedules.GetByID(ctx, strings.TrimSpace(scheduleID))
	switch {
	case err == nil && !rec.Involves(requesterID):
		reason = "not_participant"
	case err == nil:
		reason = "concurrent_delete"
	case !errors.Is(err, pgx.ErrNoRows):
		s.logger.Warn("lookup schedule after failed delete", zap.String("schedule_id", scheduleID), zap.Error(err))
		return
	}
	s.logger.Info("schedule delete denied",
		zap.String("schedule_id", scheduleID),
		zap.String("user_id", requesterID),
		zap.String("reason", reason),
	)
}

// GetWithPartner devuelve la cita del par o un resultado vacio si no existe.
func (s *ScheduleService) GetWithPartner(ctx context.Context, userID, partnerID string) (ScheduleResult, error) {
	rec, err := s.schedules.GetByPair(ctx, userID, strings.TrimSpace(partnerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ScheduleResult{}, nil
		}
		return ScheduleResult{}, fmt.Errorf("get schedule with partner: %w", err)
	}
	return s.resultFor(rec, false, ""), nil
}

func (s *ScheduleService) ListForUser(ctx context.Context, userID string) ([]ScheduleSummary, error) {
	records, err := s.schedules.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}

	names := make(map[string]string)
	out := make([]ScheduleSummary, 0, len(records))
	for _, rec := range records {
		partnerID := rec.PartnerOf(userID)
		name, seen := names[partnerID]
		if !seen {
			if u, err := s.users.GetByID(ctx, partnerID); err == nil {
				name = u.Name
			} else if !errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("load partner %s: %w", partnerID, err)
			}
			names[partnerID] = name
		}

		summary := ScheduleSummary{
			ID:        rec.ID,
			Partner:   PartnerInfo{ID: partnerID, Name: name},
			Start:     rec.Start,
			End:       rec.End,
			Location:  rec.Location,
			Note:      rec.Note,
			SentByMe:  rec.UserA == userID,
			CreatedAt: rec.CreatedAt,
		}
		if e, ok := s.catalog.Get(rec.EventID); ok {
			summary.Event = &e
		}
		out = append(out, summary)
	}
	return out, nil
}
