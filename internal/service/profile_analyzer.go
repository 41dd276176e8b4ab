package service

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"artmatch/internal/domain"
	"artmatch/internal/llm"
	"artmatch/internal/metrics"
)

const (
	defaultAnalysisTimeout = 15 * time.Second
	maxSummaryRunes        = 320
	defaultProfileSummary  = "Distinct profile across interests and process; see traits."
	fallbackStretch        = 1.35
	profileTemperature     = 0.4
)

// Micro-estilos para el resumen del predictor externo. Se eligen por hash, nunca al azar.
var microStyles = []string{
	"painterly", "brutalist", "documentary", "lyrical", "kinetic",
	"nocturne", "collage", "geometric", "organic", "neon",
}

var fallbackStyles = []string{
	"painterly", "minimalist", "surreal", "documentary", "lyrical",
	"geometric", "nocturne", "collage", "kinetic", "monochrome",
}

var (
	fallbackInterests = []string{"photography", "installation", "poetry", "ceramics"}
	fallbackGenres    = []string{"indie", "classical", "EDM", "jazz"}
)

// traitNudge ajusta un rasgo cuando el quiz contiene una respuesta puntual.
type traitNudge struct {
	group string // interest | genre | value
	value string
	trait string
	delta float64
}

var fallbackNudges = []traitNudge{
	{group: "interest", value: "poetry", trait: domain.TraitOpenness, delta: 0.08},
	{group: "interest", value: "installation", trait: domain.TraitOpenness, delta: 0.06},
	{group: "interest", value: "photography", trait: domain.TraitConscientiousness, delta: 0.05},
	{group: "genre", value: "edm", trait: domain.TraitExtraversion, delta: 0.10},
	{group: "genre", value: "rock", trait: domain.TraitExtraversion, delta: 0.05},
	{group: "genre", value: "classical", trait: domain.TraitConscientiousness, delta: 0.06},
	{group: "genre", value: "jazz", trait: domain.TraitOpenness, delta: 0.05},
	{group: "value", value: "community", trait: domain.TraitAgreeableness, delta: 0.08},
	{group: "value", value: "solitude", trait: domain.TraitExtraversion, delta: -0.08},
}

var (
	errExternalDisabled  = errors.New("external predictor disabled")
	errInvalidLLMJSON    = errors.New("parse llm response")
	errMissingTraits     = errors.New("llm response missing traits")
	errMissingSummary    = errors.New("llm response missing summary")
	errNoKnownTraitValue = errors.New("llm response has no usable trait value")
)

// ProfileAnalyzer produce un PersonalityProfile para un quiz y siempre tiene exito:
// primero intenta el predictor externo y ante cualquier falla usa el perfil determinista.
type ProfileAnalyzer struct {
	llmClient llm.LLMClient
	timeout   time.Duration
	logger    *zap.Logger
}

func NewProfileAnalyzer(llmClient llm.LLMClient, timeout time.Duration, logger *zap.Logger) *ProfileAnalyzer {
	if timeout <= 0 {
		timeout = defaultAnalysisTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileAnalyzer{
		llmClient: llmClient,
		timeout:   timeout,
		logger:    logger,
	}
}

// Analyze nunca devuelve error ni deja escapar un panic.
func (a *ProfileAnalyzer) Analyze(ctx context.Context, answers domain.QuizAnswers) (profile domain.PersonalityProfile) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("profile analysis panicked, using fallback", zap.Any("panic", r))
			metrics.RecordFallback("panic")
			profile = FallbackProfile(answers)
		}
		metrics.RecordProfile(string(profile.Source))
	}()

	external, err := a.externalProfile(ctx, answers)
	if err != nil {
		reason := fallbackReason(err)
		metrics.RecordFallback(reason)
		if !errors.Is(err, errExternalDisabled) {
			a.logger.Warn("external profile failed, using fallback", zap.String("reason", reason), zap.Error(err))
		}
		return FallbackProfile(answers)
	}
	return external
}

func (a *ProfileAnalyzer) externalProfile(ctx context.Context, answers domain.QuizAnswers) (domain.PersonalityProfile, error) {
	if a == nil || a.llmClient == nil {
		return domain.PersonalityProfile{}, errExternalDisabled
	}

	prompt, err := buildProfilePrompt(answers)
	if err != nil {
		return domain.PersonalityProfile{}, err
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	raw, err := a.llmClient.Generate(callCtx, prompt)
	if err != nil {
		metrics.ObserveLLM("error", time.Since(start))
		return domain.PersonalityProfile{}, fmt.Errorf("llm generate: %w", err)
	}
	metrics.ObserveLLM("ok", time.Since(start))

	traits, summary, err := parseExternalProfile(raw)
	if err != nil {
		return domain.PersonalityProfile{}, err
	}

	return domain.PersonalityProfile{
		Traits:  traits,
		Vector:  CombineVector(traits, answers),
		Summary: summary,
		Source:  domain.ProfileSourceExternal,
	}, nil
}

// externalProfileResponse se valida campo por campo: la respuesta del modelo no es confiable.
type externalProfileResponse struct {
	Traits  map[string]json.RawMessage `json:"traits"`
	Summary *json.RawMessage           `json:"summary"`
}

func parseExternalProfile(raw string) (map[string]float64, string, error) {
	var parsed externalProfileResponse
	if err := decodeLLMJSON(raw, &parsed); err != nil {
		return nil, "", fmt.Errorf("%w: %v", errInvalidLLMJSON, err)
	}
	if parsed.Traits == nil {
		return nil, "", errMissingTraits
	}
	if parsed.Summary == nil {
		return nil, "", errMissingSummary
	}
	var summary string
	if err := json.Unmarshal(*parsed.Summary, &summary); err != nil {
		return nil, "", errMissingSummary
	}

	values := make(map[string]float64, len(domain.TraitKeys))
	for _, k := range domain.TraitKeys {
		if v, ok := parseTraitValue(parsed.Traits[k]); ok {
			values[k] = v
		}
	}
	if len(values) == 0 {
		return nil, "", errNoKnownTraitValue
	}

	return normalizeTraits(values), normalizeSummary(summary), nil
}

// parseTraitValue acepta numeros y strings numericos; descarta no finitos.
func parseTraitValue(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, !math.IsNaN(f) && !math.IsInf(f, 0)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// normalizeTraits deja exactamente las 5 claves canonicas, acotadas a [0,1] (0.5 si faltan).
func normalizeTraits(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(domain.TraitKeys))
	for _, k := range domain.TraitKeys {
		v, ok := in[k]
		out[k] = clampTrait(v, ok)
	}
	return out
}

// normalizeSummary colapsa espacios y recorta a 320 caracteres.
func normalizeSummary(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimSpace(truncateRunes(s, maxSummaryRunes))
	if s == "" {
		return defaultProfileSummary
	}
	return s
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, errExternalDisabled):
		return "disabled"
	case errors.Is(err, llm.ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, errMissingTraits), errors.Is(err, errMissingSummary), errors.Is(err, errNoKnownTraitValue):
		return "invalid_schema"
	case errors.Is(err, errInvalidLLMJSON):
		return "invalid_json"
	default:
		return "transport"
	}
}

// quizPayload es la serializacion canonica del quiz: slices vacios en vez de null, orden de campos fijo.
type quizPayload struct {
	Interests    []string              `json:"interests"`
	Genres       []string              `json:"genres"`
	Values       []string              `json:"values"`
	Availability []string              `json:"availability"`
	Location     string                `json:"location"`
	Responses    []domain.QuizResponse `json:"responses"`
}

func newQuizPayload(a domain.QuizAnswers) quizPayload {
	return quizPayload{
		Interests:    nonNil(a.Interests),
		Genres:       nonNil(a.Genres),
		Values:       nonNil(a.Values),
		Availability: nonNil(a.Availability),
		Location:     a.Location,
		Responses:    nonNilResponses(a.Responses),
	}
}

func canonicalSeed(a domain.QuizAnswers) string {
	b, err := json.Marshal(newQuizPayload(a))
	if err != nil {
		// quizPayload solo tiene strings; Marshal no falla.
		return fmt.Sprintf("%v", a)
	}
	return string(b)
}

// microStyleFor elige un micro-estilo a partir del hash del payload.
func microStyleFor(payload []byte) string {
	sum := sha256.Sum256(payload)
	n := binary.BigEndian.Uint32(sum[:4])
	return microStyles[n%uint32(len(microStyles))]
}

func buildProfilePrompt(answers domain.QuizAnswers) (llm.Prompt, error) {
	payload := newQuizPayload(answers)
	compact, err := json.Marshal(payload)
	if err != nil {
		return llm.Prompt{}, fmt.Errorf("marshal quiz payload: %w", err)
	}
	pretty, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return llm.Prompt{}, fmt.Errorf("marshal quiz payload: %w", err)
	}

	shapeTraits := make(map[string]float64, len(domain.TraitKeys))
	for _, k := range domain.TraitKeys {
		shapeTraits[k] = 0.5
	}
	shape := map[string]any{"traits": shapeTraits, "summary": "string"}
	shapeJSON, err := json.MarshalIndent(shape, "", "  ")
	if err != nil {
		return llm.Prompt{}, fmt.Errorf("marshal response shape: %w", err)
	}

	system := `You are a precise personality profiler for an arts-matchmaking app.
Given a short quiz (interests, music genres, values, availability, location, and specific Q/A responses),
return 5 Big Five trait scores in [0,1] and a 1-2 sentence artistic description.
Write the description in a "` + microStyleFor(compact) + `" micro-style.
Requirements:
- Use at least 3 concrete details pulled from the user data (quote one literal choice).
- Avoid generic phrases like "blend of creativity and curiosity", "passionate about", "loves exploring", "seeks to", "driven by".
- Keep to 35-55 words, no bullet points.
Return JSON ONLY.`

	user := "Quiz responses:\n" + string(pretty) + "\n\nReturn JSON with this exact shape:\n" + string(shapeJSON)

	temp := profileTemperature
	return llm.Prompt{System: system, User: user, JSON: true, Temperature: &temp}, nil
}

// FallbackProfile deriva un perfil determinista sin llamadas externas.
// Mismo quiz => mismos rasgos, vector y resumen.
func FallbackProfile(answers domain.QuizAnswers) domain.PersonalityProfile {
	seed := canonicalSeed(answers)

	raw := make(map[string]float64, len(domain.TraitKeys))
	for _, k := range domain.TraitKeys {
		x := HashToUnit(seed + "|" + k)
		// Estirar alrededor de 0.5 para que los perfiles no se amontonen en el centro.
		raw[k] = clamp01(0.5 + (x-0.5)*fallbackStretch)
	}
	applyNudges(raw, answers)
	traits := normalizeTraits(raw)

	style := fallbackStyles[int(HashToUnit(seed+"|style")*float64(len(fallbackStyles)))]
	interest := firstNonEmpty(answers.Interests)
	if interest == "" {
		interest = pickDeterministic(seed, fallbackInterests)
	}
	genre := firstNonEmpty(answers.Genres)
	if genre == "" {
		genre = pickDeterministic(seed, fallbackGenres)
	}
	setting := "quiet studios"
	if traits[domain.TraitExtraversion] > 0.6 {
		setting = "collaborations"
	}
	summary := fmt.Sprintf("A %s lean: drawn to %s with %s undertones; prefers %s, balances craft and play.",
		style, interest, genre, setting)

	return domain.PersonalityProfile{
		Traits:  traits,
		Vector:  CombineVector(traits, answers),
		Summary: normalizeSummary(summary),
		Source:  domain.ProfileSourceFallback,
	}
}

func applyNudges(traits map[string]float64, answers domain.QuizAnswers) {
	groups := map[string]map[string]struct{}{
		"interest": toTagSet(answers.Interests),
		"genre":    toTagSet(answers.Genres),
		"value":    toTagSet(answers.Values),
	}
	for _, n := range fallbackNudges {
		if _, ok := groups[n.group][n.value]; ok {
			traits[n.trait] = clamp01(traits[n.trait] + n.delta)
		}
	}
}

func pickDeterministic(seed string, options []string) string {
	idx := int(HashToUnit(seed+"|"+strings.Join(options, ",")) * float64(len(options)))
	return options[idx]
}

func firstNonEmpty(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return strings.TrimSpace(items[0])
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilResponses(r []domain.QuizResponse) []domain.QuizResponse {
	if r == nil {
		return []domain.QuizResponse{}
	}
	return r
}
