package testkit

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Placeholders usable as values in expected response files. They match
// generated data such as ids, tokens and timestamps.
const (
	AnyValue     = "<any>"
	AnyString    = "<string>"
	AnyNumber    = "<number>"
	AnyTimestamp = "<timestamp>"
)

// checkBody compares the response against the expected file. Only keys
// present in the file are checked.
func checkBody(t *testing.T, s *Scenario, expected, actual []byte) {
	t.Helper()
	var want, got any
	require.NoError(t, json.Unmarshal(expected, &want), "[%s] response file is not JSON", s.Name)
	if !assert.NoError(t, json.Unmarshal(actual, &got), "[%s] response is not JSON: %s", s.Name, actual) {
		return
	}
	if diffs := DiffJSON("", want, got); len(diffs) > 0 {
		assert.Fail(t, "["+s.Name+"] response body mismatch",
			"%s\nbody: %s", strings.Join(diffs, "\n"), actual)
	}
}

// DiffJSON lists where actual departs from expected. Extra object keys in
// actual are ignored; arrays must match in length. Differences are
// reported in key order.
func DiffJSON(at string, expected, actual any) []string {
	switch want := expected.(type) {
	case map[string]any:
		got, ok := actual.(map[string]any)
		if !ok {
			return []string{fmt.Sprintf("  %s: want object, got %s", label(at), kind(actual))}
		}
		keys := make([]string, 0, len(want))
		for k := range want {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var out []string
		for _, k := range keys {
			v, ok := got[k]
			if !ok {
				out = append(out, fmt.Sprintf("  %s.%s: missing", label(at), k))
				continue
			}
			out = append(out, DiffJSON(at+"."+k, want[k], v)...)
		}
		return out

	case []any:
		got, ok := actual.([]any)
		if !ok {
			return []string{fmt.Sprintf("  %s: want array, got %s", label(at), kind(actual))}
		}
		var out []string
		if len(want) != len(got) {
			out = append(out, fmt.Sprintf("  %s: want %d elements, got %d", label(at), len(want), len(got)))
		}
		for i := 0; i < min(len(want), len(got)); i++ {
			out = append(out, DiffJSON(fmt.Sprintf("%s[%d]", at, i), want[i], got[i])...)
		}
		return out

	case string:
		if placeholderMatches(want, actual) {
			return nil
		}
	}

	if expected != actual {
		return []string{fmt.Sprintf("  %s: want %v, got %v", label(at), expected, actual)}
	}
	return nil
}

func placeholderMatches(p string, v any) bool {
	switch p {
	case AnyValue:
		return v != nil
	case AnyString:
		s, ok := v.(string)
		return ok && s != ""
	case AnyNumber:
		_, ok := v.(float64)
		return ok
	case AnyTimestamp:
		s, ok := v.(string)
		return ok && len(s) >= len("2006-01-02T15:04:05") && s[4] == '-' && s[10] == 'T'
	}
	return false
}

func kind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "bool"
	}
	return fmt.Sprintf("%T", v)
}

func label(at string) string {
	if at == "" {
		return "$"
	}
	return "$" + at
}
