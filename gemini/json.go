package gemini

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

var (
	jsonArrayPattern  = regexp.MustCompile(`(?s)\[.*\]`)
	jsonObjectPattern = regexp.MustCompile(`\{[\s\S]*\}`)
)

var errNoJSON = errors.New("no JSON found in model response")

// extractJSONArray returns the outermost [...] span of a model response
func extractJSONArray(text string) (string, error) {
	if m := jsonArrayPattern.FindString(text); m != "" {
		return m, nil
	}
	return "", errNoJSON
}

// extractJSONObject returns the outermost {...} span of a model response
func extractJSONObject(text string) (string, error) {
	if m := jsonObjectPattern.FindString(text); m != "" {
		return m, nil
	}
	return "", errNoJSON
}

// asString flattens a decoded JSON scalar to a trimmed string; null and
// non-scalar values become "".
func asString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
