package main

import (
	"fmt"
	"strings"

	"artmatch/internal/domain"
	"artmatch/internal/service"
)

// demoUser es un participante del escenario; Key es un alias legible, el ID real lo asigna el registro.
type demoUser struct {
	Key     string
	Name    string
	Answers domain.QuizAnswers
}

type Scenario struct {
	Name      string
	Users     []demoUser
	Requester string
	Partner   string

	ExpectedTopMatch string // alias; vacio = no se evalua
	ExpectedEventID  string
	ExpectScheduled  bool
}

// verdict resume el chequeo de un escenario. Passed/Total cuenta solo las expectativas declaradas.
type verdict struct {
	Passed    int
	Total     int
	Reasoning []string
}

func (v verdict) ok() bool {
	return v.Passed == v.Total
}

func (v *verdict) expect(cond bool, format string, args ...any) {
	v.Total++
	mark := "FAIL"
	if cond {
		v.Passed++
		mark = "ok"
	}
	v.Reasoning = append(v.Reasoning, fmt.Sprintf("[%s] %s", mark, fmt.Sprintf(format, args...)))
}

// evaluateScenario compara el ranking y la agenda obtenidos con lo que el escenario declara.
// ids traduce alias -> ID real.
func evaluateScenario(sc Scenario, ids map[string]string, matches domain.MatchList, res service.ScheduleResult) verdict {
	var v verdict

	if sc.ExpectedTopMatch != "" {
		want := ids[sc.ExpectedTopMatch]
		got := ""
		if len(matches.Matches) > 0 {
			got = matches.Matches[0].CandidateID
		}
		v.expect(got != "" && got == want, "top match for %s is %s (got %s)", sc.Requester, sc.ExpectedTopMatch, aliasFor(ids, got))
	}

	for i := 1; i < len(matches.Matches); i++ {
		if matches.Matches[i].Score > matches.Matches[i-1].Score {
			v.expect(false, "matches sorted by descending score (position %d)", i)
			break
		}
	}
	for _, m := range matches.Matches {
		if m.Score < 0 || m.Score > 1 {
			v.expect(false, "score for %s within [0,1] (got %.4f)", aliasFor(ids, m.CandidateID), m.Score)
		}
	}

	scheduled := res.Scheduled != nil
	v.expect(scheduled == sc.ExpectScheduled, "scheduled=%t (got %t, note %q)", sc.ExpectScheduled, scheduled, res.Note)

	if sc.ExpectedEventID != "" && scheduled {
		v.expect(res.Scheduled.EventID == sc.ExpectedEventID, "event %s (got %s)", sc.ExpectedEventID, res.Scheduled.EventID)
	}
	if scheduled && !res.Scheduled.End.After(res.Scheduled.Start) {
		v.expect(false, "schedule ends after it starts")
	}
	return v
}

func aliasFor(ids map[string]string, id string) string {
	if id == "" {
		return "<none>"
	}
	for alias, v := range ids {
		if v == id {
			return alias
		}
	}
	return id
}

func formatTraits(traits map[string]float64) string {
	parts := make([]string, 0, len(domain.TraitKeys))
	for _, k := range domain.TraitKeys {
		parts = append(parts, fmt.Sprintf("%s=%.2f", k, traits[k]))
	}
	return strings.Join(parts, " ")
}
