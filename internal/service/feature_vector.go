package service

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
	"strconv"
	"strings"
	"unicode"

	"artmatch/internal/domain"
)

const (
	// HashedDim es el tamano del segmento hasheado del vector de perfil.
	HashedDim = 64
	// ProfileVectorDim = rasgos Big Five + segmento hasheado. Debe coincidir con la columna vector(69).
	ProfileVectorDim = 5 + HashedDim

	questionIDRunes = 32
)

// HashToIndex mapea un token normalizado a un bucket en [0, dim).
// Combina varios bytes del digest SHA-256 con XOR para repartir tokens que suelen aparecer juntos.
func HashToIndex(token string, dim int) int {
	if dim <= 0 {
		return 0
	}
	h := sha256.Sum256([]byte(token))
	folded := h[0] ^ h[5] ^ h[10] ^ h[15] ^ h[20] ^ h[25] ^ h[31]
	return int(folded) % dim
}

// HashToUnit mapea un string a un float determinista en [0,1).
func HashToUnit(s string) float64 {
	h := sha256.Sum256([]byte(s))
	n := binary.BigEndian.Uint32(h[0:4]) ^ binary.BigEndian.Uint32(h[4:8])
	return float64(n) / float64(1<<32)
}

// BuildHashedVector acumula los tokens del quiz en un vector de largo dim y lo normaliza (L2).
// Cada grupo categorico lleva su prefijo ("genre:jazz") para que el mismo texto en grupos distintos no colisione.
func BuildHashedVector(answers domain.QuizAnswers, dim int) []float64 {
	if dim <= 0 {
		return []float64{}
	}
	v := make([]float64, dim)

	push := func(prefix, value string) {
		value = strings.ToLower(strings.TrimSpace(value))
		if value == "" {
			return
		}
		v[HashToIndex(prefix+":"+value, dim)]++
	}

	for _, s := range answers.Interests {
		push("interest", s)
	}
	for _, s := range answers.Genres {
		push("genre", s)
	}
	for _, s := range answers.Values {
		push("value", s)
	}
	for _, s := range answers.Availability {
		push("slot", s)
	}
	for _, w := range locationWords(answers.Location) {
		push("loc", w)
	}
	// Respuestas libres: la respuesta y un id grueso de la pregunta, para que la misma
	// respuesta a preguntas distintas no caiga siempre en el mismo bucket.
	for i, r := range answers.Responses {
		idx := strconv.Itoa(i)
		push("resp"+idx, r.Answer)
		push("q"+idx, truncateRunes(strings.TrimSpace(r.Question), questionIDRunes))
	}

	l2Normalize(v)
	return v
}

// CombineVector concatena los 5 rasgos (orden canonico, acotados a [0,1]) con el segmento hasheado.
func CombineVector(traits map[string]float64, answers domain.QuizAnswers) []float64 {
	out := make([]float64, 0, ProfileVectorDim)
	for _, k := range domain.TraitKeys {
		x, ok := traits[k]
		out = append(out, clampTrait(x, ok))
	}
	return append(out, BuildHashedVector(answers, HashedDim)...)
}

// clampTrait acota a [0,1]; valores ausentes o no finitos valen 0.5.
func clampTrait(x float64, present bool) float64 {
	if !present || math.IsNaN(x) || math.IsInf(x, 0) {
		return 0.5
	}
	return clamp01(x)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func l2Normalize(v []float64) {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		norm = 1
	}
	for i := range v {
		v[i] /= norm
	}
}

func locationWords(location string) []string {
	return strings.FieldsFunc(location, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
	})
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
