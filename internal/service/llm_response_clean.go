package service

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var (
	fenceStartRe = regexp.MustCompile("(?is)^\\s*```(?:json)?\\s*")
	fenceEndRe   = regexp.MustCompile("(?is)\\s*```\\s*$")

	errNoJSONObject = errors.New("no json object in llm response")
)

// cleanLLMJSONResponse quita fences ```json ... ``` y BOM, dejando el contenido usable.
func cleanLLMJSONResponse(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	s = strings.TrimPrefix(s, "\uFEFF")
	s = fenceStartRe.ReplaceAllString(s, "")
	s = fenceEndRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// decodeLLMJSON intenta el contenido limpio y, si falla, el primer objeto balanceado dentro del texto
// (el modelo a veces envuelve el JSON en prosa).
func decodeLLMJSON(raw string, out any) error {
	cleaned := cleanLLMJSONResponse(raw)
	if err := json.Unmarshal([]byte(cleaned), out); err == nil {
		return nil
	}
	obj, ok := firstJSONObject(cleaned)
	if !ok {
		return errNoJSONObject
	}
	return json.Unmarshal([]byte(obj), out)
}

// firstJSONObject devuelve el primer objeto {...} balanceado, ignorando llaves dentro de strings.
func firstJSONObject(input string) (string, bool) {
	start := strings.IndexByte(input, '{')
	if start == -1 {
		return "", false
	}

	depth := 0
	inString, escaped := false, false
	for i := start; i < len(input); i++ {
		ch := input[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return input[start : i+1], true
			}
		}
	}
	return "", false
}
