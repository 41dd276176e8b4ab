package domain

import "time"

const (
	TraitOpenness          = "openness"
	TraitConscientiousness = "conscientiousness"
	TraitExtraversion      = "extraversion"
	TraitAgreeableness     = "agreeableness"
	TraitNeuroticism       = "neuroticism"
)

// TraitKeys fija el orden canonico de los rasgos Big Five dentro del vector.
var TraitKeys = []string{
	TraitOpenness,
	TraitConscientiousness,
	TraitExtraversion,
	TraitAgreeableness,
	TraitNeuroticism,
}

type ProfileSource string

const (
	ProfileSourceExternal ProfileSource = "external"
	ProfileSourceFallback ProfileSource = "fallback"
)

// PersonalityProfile es el resultado del analisis de un quiz.
// Vector = 5 rasgos + segmento hasheado; su largo es fijo para todo el despliegue.
type PersonalityProfile struct {
	UserID    string             `json:"user_id,omitempty"`
	Traits    map[string]float64 `json:"traits"`
	Vector    []float64          `json:"vector"`
	Summary   string             `json:"summary"`
	Source    ProfileSource      `json:"source"`
	UpdatedAt time.Time          `json:"updated_at,omitempty"`
}

// ProfileVector es un miembro de la cohorte tal como se lee de la base.
type ProfileVector struct {
	UserID  string
	Name    string
	Vector  []float64
	Summary string
}
