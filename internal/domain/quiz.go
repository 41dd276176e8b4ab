package domain

import "time"

// QuizAnswers es la foto inmutable de una entrega del quiz. Una nueva entrega reemplaza la anterior.
type QuizAnswers struct {
	Interests    []string       `json:"interests"`
	Genres       []string       `json:"genres"`
	Values       []string       `json:"values"`
	Availability []string       `json:"availability"` // "<Weekday> HH:MM", ej: "Sat 14:00"
	Location     string         `json:"location"`
	Responses    []QuizResponse `json:"responses"`
}

type QuizResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// IsEmpty indica si la entrega no aporta ningun dato.
func (a QuizAnswers) IsEmpty() bool {
	return len(a.Interests) == 0 &&
		len(a.Genres) == 0 &&
		len(a.Values) == 0 &&
		len(a.Availability) == 0 &&
		len(a.Responses) == 0 &&
		a.Location == ""
}

// QuizRecord es la fila persistida de quiz_responses.
type QuizRecord struct {
	UserID    string      `json:"user_id"`
	Answers   QuizAnswers `json:"answers"`
	UpdatedAt time.Time   `json:"updated_at"`
}
