package http

import (
	"net/http"
	"testing"

	"artmatch/internal/domain"
)

type scheduleResponse struct {
	Scheduled *domain.ScheduleRecord `json:"scheduled"`
	Event     *domain.Event          `json:"event"`
	Created   bool                   `json:"created"`
	Note      string                 `json:"note"`
}

func TestScheduleHandlerListEvents(t *testing.T) {
	env := newTestEnv(t)

	rec := performRequest(env.router, http.MethodGet, "/events", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Events []domain.Event `json:"events"`
	}
	if err := decodeBody(rec, &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Events) != 2 || resp.Events[0].ID != "evt_rock" {
		t.Fatalf("unexpected catalog: %+v", resp.Events)
	}
}

func TestScheduleHandlerCreate_Errors(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "u1", "Ana")
	env.addUser(t, "u2", "Bruno")

	cases := []struct {
		name string
		body any
		want int
	}{
		{name: "missing partner", body: map[string]string{}, want: http.StatusBadRequest},
		{name: "self", body: map[string]string{"partner_user_id": "u1"}, want: http.StatusBadRequest},
		{name: "unknown partner", body: map[string]string{"partner_user_id": "ghost"}, want: http.StatusBadRequest},
		{name: "requester without quiz", body: map[string]string{"partner_user_id": "u2"}, want: http.StatusPreconditionFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := performAs(env.router, "u1", http.MethodPost, "/schedule", tc.body)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestScheduleHandlerCreate_PartnerWithoutQuiz(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "u1", "Ana")
	env.addUser(t, "u2", "Bruno")
	performAs(env.router, "u1", http.MethodPost, "/quiz", rockQuiz("Sat 14:00"))

	rec := performAs(env.router, "u1", http.MethodPost, "/schedule", map[string]string{"partner_user_id": "u2"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp scheduleResponse
	if err := decodeBody(rec, &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Scheduled != nil || resp.Note == "" {
		t.Fatalf("expected no schedule with a note, got %+v", resp)
	}
}

func TestScheduleHandlerLifecycle(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "u1", "Ana")
	env.addUser(t, "u2", "Bruno")
	env.addUser(t, "u3", "Carla")
	performAs(env.router, "u1", http.MethodPost, "/quiz", rockQuiz("Sat 14:00", "Sun 18:00"))
	performAs(env.router, "u2", http.MethodPost, "/quiz", rockQuiz("Sat 14:00"))

	rec := performAs(env.router, "u1", http.MethodPost, "/schedule", map[string]string{"partner_user_id": "u2"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created scheduleResponse
	if err := decodeBody(rec, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Scheduled == nil || created.Scheduled.EventID != "evt_rock" {
		t.Fatalf("expected rock event, got %+v", created.Scheduled)
	}
	if created.Note != "Auto-scheduled using shared slot: Sat 14:00" {
		t.Fatalf("unexpected note %q", created.Note)
	}

	// El par inverso reutiliza la cita existente.
	rec = performAs(env.router, "u2", http.MethodPost, "/schedule", map[string]string{"partner_user_id": "u1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for existing schedule, got %d", rec.Code)
	}
	var again scheduleResponse
	if err := decodeBody(rec, &again); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if again.Created || again.Scheduled == nil || again.Scheduled.ID != created.Scheduled.ID {
		t.Fatalf("expected the same schedule, got %+v", again)
	}

	rec = performAs(env.router, "u2", http.MethodGet, "/schedule/with/u1", nil)
	var withPartner scheduleResponse
	if err := decodeBody(rec, &withPartner); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if withPartner.Scheduled == nil || withPartner.Scheduled.ID != created.Scheduled.ID {
		t.Fatalf("expected schedule with partner, got %+v", withPartner)
	}

	rec = performAs(env.router, "u2", http.MethodGet, "/schedule", nil)
	var listed struct {
		Schedules []struct {
			ID       string `json:"id"`
			SentByMe bool   `json:"sent_by_me"`
			Partner  struct {
				Name string `json:"name"`
			} `json:"partner"`
		} `json:"schedules"`
	}
	if err := decodeBody(rec, &listed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listed.Schedules) != 1 || listed.Schedules[0].SentByMe || listed.Schedules[0].Partner.Name != "Ana" {
		t.Fatalf("unexpected listing: %+v", listed.Schedules)
	}

	id := created.Scheduled.ID
	if rec := performAs(env.router, "u3", http.MethodDelete, "/schedule/"+id, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for non-participant, got %d", rec.Code)
	}
	if rec := performAs(env.router, "u1", http.MethodDelete, "/schedule/"+id, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on delete, got %d", rec.Code)
	}
	if rec := performAs(env.router, "u1", http.MethodDelete, "/schedule/"+id, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rec.Code)
	}

	rec = performAs(env.router, "u1", http.MethodGet, "/schedule/with/u2", nil)
	var gone scheduleResponse
	if err := decodeBody(rec, &gone); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if gone.Scheduled != nil {
		t.Fatalf("expected no schedule after delete")
	}
}
