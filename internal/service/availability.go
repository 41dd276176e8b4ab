package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// slotDuration es fija: los labels de disponibilidad no traen duracion.
const slotDuration = time.Hour

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// Slot es un label "<Weekday> HH:MM" ya parseado.
type Slot struct {
	Weekday time.Weekday
	Hour    int
	Minute  int
	Label   string
}

// ParseSlot acepta dia abreviado o completo (sin importar mayusculas) y hora 24h.
func ParseSlot(label string) (Slot, error) {
	fields := strings.Fields(label)
	if len(fields) != 2 {
		return Slot{}, fmt.Errorf("slot %q: expected \"<Weekday> HH:MM\"", label)
	}
	day, ok := weekdayNames[strings.ToLower(fields[0])]
	if !ok {
		return Slot{}, fmt.Errorf("slot %q: unknown weekday", label)
	}
	hh, mm, found := strings.Cut(fields[1], ":")
	if !found || len(mm) != 2 || len(hh) == 0 || len(hh) > 2 {
		return Slot{}, fmt.Errorf("slot %q: malformed time", label)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return Slot{}, fmt.Errorf("slot %q: hour out of range", label)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return Slot{}, fmt.Errorf("slot %q: minute out of range", label)
	}
	return Slot{Weekday: day, Hour: hour, Minute: minute, Label: label}, nil
}

// ValidSlotLabel se usa tambien como validador de binding en HTTP.
func ValidSlotLabel(label string) bool {
	_, err := ParseSlot(label)
	return err == nil
}

// NextOccurrence devuelve la proxima ocurrencia estrictamente posterior a now, en loc.
func (s Slot) NextOccurrence(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	days := (int(s.Weekday) - int(local.Weekday()) + 7) % 7
	candidate := time.Date(local.Year(), local.Month(), local.Day()+days, s.Hour, s.Minute, 0, 0, loc)
	if !candidate.After(now) {
		candidate = time.Date(local.Year(), local.Month(), local.Day()+days+7, s.Hour, s.Minute, 0, 0, loc)
	}
	return candidate
}

// SharedAvailability es la interseccion de a y b preservando el orden (y los duplicados) de a.
func SharedAvailability(a, b []string) []string {
	in := make(map[string]struct{}, len(b))
	for _, s := range b {
		in[s] = struct{}{}
	}
	out := make([]string, 0)
	for _, s := range a {
		if _, ok := in[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// RemoveOverlapping quita los slots cuyo intervalo de una hora pisa [start,end).
// Cada label se resuelve en la semana de la cita (la ocurrencia previa y la siguiente a start),
// no desde ahora: una cita que cae la semana que viene tambien bloquea los slots de ese dia.
// Los labels que no se pueden parsear se conservan.
func RemoveOverlapping(slots []string, start, end time.Time, loc *time.Location) []string {
	if loc == nil {
		loc = time.UTC
	}
	weekBefore := start.In(loc).AddDate(0, 0, -7)
	out := make([]string, 0, len(slots))
	for _, label := range slots {
		slot, err := ParseSlot(label)
		if err != nil {
			out = append(out, label)
			continue
		}
		prev := slot.NextOccurrence(weekBefore, loc)
		next := prev.AddDate(0, 0, 7)
		if intervalsOverlap(prev, prev.Add(slotDuration), start, end) ||
			intervalsOverlap(next, next.Add(slotDuration), start, end) {
			continue
		}
		out = append(out, label)
	}
	return out
}

func intervalsOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}
