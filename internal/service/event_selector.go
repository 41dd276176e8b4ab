package service

import (
	"strings"

	"artmatch/internal/domain"
)

const (
	genreMatchWeight    = 2
	interestMatchWeight = 1
)

// EventCatalog es una copia inmutable del catalogo; se inyecta, no es estado global.
type EventCatalog struct {
	events []domain.Event
	byID   map[string]domain.Event
}

func NewEventCatalog(events []domain.Event) *EventCatalog {
	c := &EventCatalog{
		events: make([]domain.Event, len(events)),
		byID:   make(map[string]domain.Event, len(events)),
	}
	for i, e := range events {
		e.Tags = append([]string(nil), e.Tags...)
		c.events[i] = e
		c.byID[e.ID] = e
	}
	return c
}

// Events devuelve una copia en orden de catalogo.
func (c *EventCatalog) Events() []domain.Event {
	if c == nil {
		return nil
	}
	out := make([]domain.Event, len(c.events))
	copy(out, c.events)
	return out
}

func (c *EventCatalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.events)
}

func (c *EventCatalog) Get(id string) (domain.Event, bool) {
	if c == nil {
		return domain.Event{}, false
	}
	e, ok := c.byID[id]
	return e, ok
}

// First es el evento por defecto cuando el selector no encuentra nada.
func (c *EventCatalog) First() (domain.Event, bool) {
	if c.Len() == 0 {
		return domain.Event{}, false
	}
	return c.events[0], true
}

// TasteSet son los gustos de un usuario relevantes para elegir evento.
type TasteSet struct {
	Interests []string
	Genres    []string
}

func TasteFromAnswers(a domain.QuizAnswers) TasteSet {
	return TasteSet{Interests: a.Interests, Genres: a.Genres}
}

func (t TasteSet) isEmpty() bool {
	return len(toTagSet(t.Interests)) == 0 && len(toTagSet(t.Genres)) == 0
}

// SelectEvent puntua cada evento por coincidencia de gustos de ambos usuarios:
// +2 por genero y +1 por interes que coincida con la categoria o algun tag.
// Empates: gana el primero del catalogo. Sin datos de ninguno de los dos o catalogo vacio => false.
func SelectEvent(a, b TasteSet, catalog *EventCatalog) (domain.Event, bool) {
	if catalog.Len() == 0 || (a.isEmpty() && b.isEmpty()) {
		return domain.Event{}, false
	}

	best, bestScore := -1, -1
	for i, e := range catalog.events {
		score := scoreEvent(e, a) + scoreEvent(e, b)
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return catalog.events[best], true
}

func scoreEvent(e domain.Event, t TasteSet) int {
	tags := toTagSet(e.Tags)
	if c := normalizeTag(e.Category); c != "" {
		tags[c] = struct{}{}
	}
	score := 0
	for g := range toTagSet(t.Genres) {
		if _, ok := tags[g]; ok {
			score += genreMatchWeight
		}
	}
	for i := range toTagSet(t.Interests) {
		if _, ok := tags[i]; ok {
			score += interestMatchWeight
		}
	}
	return score
}

func normalizeTag(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// toTagSet normaliza y deduplica; descarta vacios.
func toTagSet(items []string) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, s := range items {
		if n := normalizeTag(s); n != "" {
			out[n] = struct{}{}
		}
	}
	return out
}
