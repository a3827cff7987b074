package testkit

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/shashiranjanraj/cafe/pkg/auth"
	"github.com/shashiranjanraj/cafe/pkg/event"
	cafehttp "github.com/shashiranjanraj/cafe/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run loads one scenario file and runs it as a subtest.
func Run(t *testing.T, handler http.Handler, path string) {
	t.Helper()
	s, err := LoadScenario(path)
	require.NoError(t, err)
	t.Run(s.Name, func(t *testing.T) { RunScenario(t, handler, s) })
}

// RunDir runs every scenario in dir in file name order. The handler's
// state carries over, so a later file can rely on what an earlier one did.
func RunDir(t *testing.T, handler http.Handler, dir string) {
	t.Helper()
	scenarios, errs := LoadAllFromDir(dir)
	for _, err := range errs {
		t.Error(err)
	}
	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) { RunScenario(t, handler, s) })
	}
}

// RunScenario fires the request with outgoing HTTP and mail intercepted,
// waits for event listeners, then checks status, body and mocks.
func RunScenario(t *testing.T, handler http.Handler, s *Scenario) {
	t.Helper()

	mt := NewMockTransport(s)
	cafehttp.UseTransport(mt)
	t.Cleanup(cafehttp.ResetTransport)

	restore, err := ArmHooks(s)
	t.Cleanup(restore)
	require.NoError(t, err, "[%s] arm hooks", s.Name)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, buildRequest(t, s))
	event.Wait()

	assert.Equal(t, s.ExpectedCode, rec.Code, "[%s] status code\nbody: %s", s.Name, rec.Body.String())

	if p := s.ResponseBodyPath(); p != "" {
		want, err := os.ReadFile(p)
		require.NoError(t, err, "[%s] read response file", s.Name)
		checkBody(t, s, want, rec.Body.Bytes())
	}

	for _, err := range append(mt.AssertAllCalled(), UnreachedHooks(s)...) {
		assert.NoError(t, err, "[%s]", s.Name)
	}
}

func buildRequest(t *testing.T, s *Scenario) *http.Request {
	t.Helper()

	var body io.Reader
	if p := s.RequestBodyPath(); p != "" {
		data, err := os.ReadFile(p)
		require.NoError(t, err, "[%s] read request file", s.Name)
		body = bytes.NewReader(data)
	}

	req := httptest.NewRequest(strings.ToUpper(s.RequestMethod), s.RequestURL, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if s.AsUser != nil {
		token, err := auth.GenerateToken(s.AsUser.ID, s.AsUser.Role)
		require.NoError(t, err, "[%s] sign token", s.Name)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}
	return req
}
