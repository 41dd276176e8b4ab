package domain

// MatchScore es derivado, no se persiste.
type MatchScore struct {
	CandidateID string  `json:"user_id"`
	Name        string  `json:"name"`
	Summary     string  `json:"summary"`
	Score       float64 `json:"score"` // [0,1]
}

type MatchList struct {
	Matches   []MatchScore `json:"matches"`
	Dimension int          `json:"dimension"`
}
