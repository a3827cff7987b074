package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// readSources layers the files over the defaults. Missing files are
// skipped; malformed ones fail the load.
func readSources(jsonPath, yamlPath, envPath string) (map[string]string, error) {
	out := defaults()

	steps := []struct {
		path string
		read func(string, map[string]string) error
	}{
		{jsonPath, readJSON},
		{yamlPath, readYAML},
		{envPath, readDotEnv},
	}
	for _, s := range steps {
		if s.path == "" {
			continue
		}
		if err := s.read(s.path, out); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: %s: %w", s.path, err)
		}
	}

	for key := range out {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			out[key] = v
		}
	}
	return out, nil
}

func readJSON(path string, out map[string]string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return err
	}
	flattenInto(out, "", tree)
	return nil
}

func readYAML(path string, out map[string]string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return err
	}
	flattenInto(out, "", tree)
	return nil
}

func readDotEnv(path string, out map[string]string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	env, err := godotenv.Parse(f)
	if err != nil {
		return err
	}
	for k, v := range env {
		if k = normalize(k); k != "" {
			out[k] = strings.TrimSpace(v)
		}
	}
	return nil
}

// flattenInto copies scalars from tree into out. Nested maps extend the
// key with an underscore; lists become comma-separated values.
func flattenInto(out map[string]string, prefix string, tree map[string]any) {
	for k, v := range tree {
		key := normalize(k)
		if key == "" {
			continue
		}
		if prefix != "" {
			key = prefix + "_" + key
		}
		switch val := v.(type) {
		case map[string]any:
			flattenInto(out, key, val)
		case []any:
			parts := make([]string, 0, len(val))
			for _, item := range val {
				if s, ok := scalar(item); ok {
					parts = append(parts, s)
				}
			}
			out[key] = strings.Join(parts, ",")
		default:
			if s, ok := scalar(val); ok {
				out[key] = s
			}
		}
	}
}

func scalar(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), true
	case bool, int, int64, uint64, float64:
		return fmt.Sprint(val), true
	}
	return "", false
}
