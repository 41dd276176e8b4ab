package domain

import "time"

// ScheduleRecord es la cita acordada para un par de usuarios. Hay como maximo una por par no ordenado.
type ScheduleRecord struct {
	ID        string    `json:"id"`
	UserA     string    `json:"user_a"`
	UserB     string    `json:"user_b"`
	EventID   string    `json:"event_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Location  string    `json:"location"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

// PairKey devuelve la misma clave para (a,b) y (b,a).
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}

// PairKey de la cita.
func (s ScheduleRecord) PairKey() string {
	return PairKey(s.UserA, s.UserB)
}

// Involves indica si el usuario es uno de los participantes.
func (s ScheduleRecord) Involves(userID string) bool {
	return userID != "" && (s.UserA == userID || s.UserB == userID)
}

// PartnerOf devuelve el otro participante.
func (s ScheduleRecord) PartnerOf(userID string) string {
	if s.UserA == userID {
		return s.UserB
	}
	return s.UserA
}
