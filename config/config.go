// Package config resolves settings from, lowest precedence first, built-in
// defaults, config/app.json, config/app.yaml, .env and the process
// environment. Keys are upper-case; nested file sections are joined with
// underscores, so `mail: {host: x}` in YAML is MAIL_HOST.
package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Files consulted by Load.
var (
	JSONPath = "config/app.json"
	YAMLPath = "config/app.yaml"
	EnvPath  = ".env"
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaults()
)

// Load reads the config files once. Every getter calls it, so an explicit
// call is only needed to see the error.
func Load() error {
	loadOnce.Do(func() {
		loaded, err := readSources(JSONPath, YAMLPath, EnvPath)
		if err != nil {
			loadErr = err
			return
		}
		mu.Lock()
		values = loaded
		mu.Unlock()
	})
	return loadErr
}

// Set overrides one key at runtime. An empty value restores the
// environment or default lookup.
func Set(key, value string) {
	_ = Load()
	mu.Lock()
	values[normalize(key)] = value
	mu.Unlock()
}

func lookup(key, fallback string) string {
	mu.RLock()
	v := strings.TrimSpace(values[key])
	mu.RUnlock()
	if v != "" {
		return v
	}
	if v = strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Get returns key, or fallback when it is unset everywhere.
func Get(key, fallback string) string {
	_ = Load()
	return lookup(normalize(key), fallback)
}

// Bool parses key as a boolean, returning fallback when unset or malformed.
func Bool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(Get(key, ""))
	if err != nil {
		return fallback
	}
	return b
}

func Int(key string, fallback int) int {
	n, err := strconv.Atoi(Get(key, ""))
	if err != nil {
		return fallback
	}
	return n
}

// Duration accepts time.ParseDuration syntax ("90s", "5m").
func Duration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(Get(key, ""))
	if err != nil {
		return fallback
	}
	return d
}

// List splits a comma-separated value, dropping blanks.
func List(key string, fallback []string) []string {
	raw := Get(key, "")
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func normalize(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}
