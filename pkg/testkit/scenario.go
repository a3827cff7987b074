// Package testkit drives HTTP tests from JSON scenario files and provides
// the in-memory database used by service tests.
//
// A scenario describes one request and what must happen:
//   - the request (method, URL, body file, headers, optional signed-in user)
//   - the expected status code and, optionally, the expected JSON body
//   - mock steps for outgoing HTTP calls and mail
//
// Scenario files sit in a testdata directory next to the test:
//
//	testdata/
//	  place_order.json        ← scenario
//	  place_order_req.json    ← request body
//	  place_order_res.json    ← expected response body
//
//	func TestOrderScenarios(t *testing.T) {
//	    testkit.FreshDB(t)
//	    testkit.RunDir(t, kernel.NewHTTPKernel().Handler(), "testdata")
//	}
package testkit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ─── Schema ───────────────────────────────────────────────────────────────────

// Scenario is a single REST API test case loaded from a JSON file.
type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	RequestMethod   string            `json:"requestMethod"`
	RequestURL      string            `json:"requestUrl"`
	RequestFileName string            `json:"requestFileName"` // relative to the scenario file
	Headers         map[string]string `json:"headers"`

	// AsUser signs a bearer token for the given identity.
	AsUser *Identity `json:"asUser"`

	ResponseFileName string `json:"responseFileName"`
	ExpectedCode     int    `json:"expectedCode"`

	// IsMockRequired fails outgoing calls that no step matches.
	IsMockRequired bool `json:"isMockRequired"`

	NetUtilMockStep []MockStep `json:"netUtilMockStep"`

	dir string
}

// Identity is the caller a scenario runs as.
type Identity struct {
	ID   uint   `json:"id"`
	Role string `json:"role"`
}

// MockStep describes one intercepted side effect.
//
//	"httprequest" intercepts calls made through pkg/http
//	"sendmail"    intercepts pkg/mail deliveries
//	anything else names a Hook registered with RegisterHook
type MockStep struct {
	Method string `json:"method"`

	// IsMock false documents a real dependency without intercepting it.
	IsMock bool `json:"isMock"`

	// MatchURL prefix-matches the outgoing URL for "httprequest". Empty
	// matches every request.
	MatchURL string `json:"matchUrl"`

	// MatchMethod restricts an "httprequest" step to one HTTP verb.
	MatchMethod string `json:"matchMethod,omitempty"`

	ReturnData MockReturnData `json:"returnData"`
}

// MockReturnData is the synthetic result of a mock step.
type MockReturnData struct {
	// StatusCode is the HTTP status for "httprequest". For function mocks a
	// value of 400 or more makes the intercepted call fail.
	StatusCode int `json:"statusCode"`

	// Body is base64 encoded. For "httprequest" it is the response body; for
	// function mocks a failing step uses it as the error text.
	Body string `json:"body"`
}

// ─── Loading ──────────────────────────────────────────────────────────────────

// LoadScenario reads and validates a scenario from a JSON file.
func LoadScenario(path string) (*Scenario, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: resolve path %q: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", abs, err)
	}

	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", abs, err)
	}

	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("testkit: invalid scenario %q: %w", abs, err)
	}

	s.dir = filepath.Dir(abs)
	return &s, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.RequestURL == "" {
		return fmt.Errorf("requestUrl is required")
	}
	if s.ExpectedCode == 0 {
		return fmt.Errorf("expectedCode is required")
	}
	if s.RequestMethod == "" {
		s.RequestMethod = "GET"
	}
	if s.AsUser != nil && s.AsUser.ID == 0 {
		return fmt.Errorf("asUser.id is required")
	}
	for i, step := range s.NetUtilMockStep {
		if step.Method == "" {
			return fmt.Errorf("netUtilMockStep[%d].method is required", i)
		}
	}
	return nil
}

// RequestBodyPath returns the request body file resolved against the
// scenario directory, or "" when none is set.
func (s *Scenario) RequestBodyPath() string {
	return s.resolve(s.RequestFileName)
}

// ResponseBodyPath returns the expected response file, or "".
func (s *Scenario) ResponseBodyPath() string {
	return s.resolve(s.ResponseFileName)
}

func (s *Scenario) resolve(name string) string {
	if name == "" {
		return ""
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}

// LoadAllFromDir loads every *.json file in dir that parses as a scenario.
// Request and response body files are skipped by their _req/_res suffix.
func LoadAllFromDir(dir string) ([]*Scenario, []error) {
	entries, err := scenarioFiles(dir)
	if err != nil {
		return nil, []error{err}
	}

	var (
		scenarios []*Scenario
		errs      []error
	)
	for _, path := range entries {
		s, err := LoadScenario(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, errs
}

func scenarioFiles(dir string) ([]string, error) {
	all, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("testkit: glob %q: %w", dir, err)
	}
	var out []string
	for _, p := range all {
		base := filepath.Base(p)
		if strings.HasSuffix(base, "_req.json") || strings.HasSuffix(base, "_res.json") {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("testkit: no scenario files found in %q", dir)
	}
	return out, nil
}

