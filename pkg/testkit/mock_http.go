package testkit

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// MethodHTTPRequest names mock steps that answer outgoing pkg/http calls.
const MethodHTTPRequest = "httprequest"

// MockTransport answers outgoing requests from a scenario's "httprequest"
// steps. Steps are tried in file order; the first match wins.
type MockTransport struct {
	mu       sync.Mutex
	steps    []*httpStep
	strict   bool
	requests []RecordedRequest
}

type httpStep struct {
	MockStep
	calls int
}

// RecordedRequest is one intercepted outgoing call.
type RecordedRequest struct {
	Method string
	URL    string
	Body   []byte
}

func NewMockTransport(s *Scenario) *MockTransport {
	mt := &MockTransport{strict: s.IsMockRequired}
	for _, step := range s.NetUtilMockStep {
		if step.Method == MethodHTTPRequest && step.IsMock {
			mt.steps = append(mt.steps, &httpStep{MockStep: step})
		}
	}
	return mt
}

func (mt *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		req.Body.Close()
	}

	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.requests = append(mt.requests, RecordedRequest{Method: req.Method, URL: req.URL.String(), Body: body})

	for _, st := range mt.steps {
		if st.matches(req) {
			st.calls++
			return respond(req, st.ReturnData)
		}
	}

	if mt.strict {
		return nil, fmt.Errorf("testkit: no mock step for %s %s", req.Method, req.URL)
	}
	return &http.Response{
		StatusCode: http.StatusNotFound,
		Status:     "404 Not Found",
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       io.NopCloser(strings.NewReader(`{"error":"no mock configured"}`)),
		Request:    req,
	}, nil
}

func (st *httpStep) matches(req *http.Request) bool {
	if st.MatchMethod != "" && !strings.EqualFold(st.MatchMethod, req.Method) {
		return false
	}
	return st.MatchURL == "" || strings.HasPrefix(req.URL.String(), st.MatchURL)
}

// Requests returns every call the transport saw, matched or not.
func (mt *MockTransport) Requests() []RecordedRequest {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	return append([]RecordedRequest(nil), mt.requests...)
}

// AssertAllCalled lists the steps nothing reached.
func (mt *MockTransport) AssertAllCalled() []error {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	var errs []error
	for _, st := range mt.steps {
		if st.calls == 0 {
			errs = append(errs, fmt.Errorf("testkit: http mock %s %q was never called", st.MatchMethod, st.MatchURL))
		}
	}
	return errs
}

func respond(req *http.Request, rd MockReturnData) (*http.Response, error) {
	code := rd.StatusCode
	if code == 0 {
		code = http.StatusOK
	}
	body, err := decodeBody(rd.Body)
	if err != nil {
		return nil, fmt.Errorf("testkit: mock body: %w", err)
	}
	return &http.Response{
		StatusCode:    code,
		Status:        fmt.Sprintf("%d %s", code, http.StatusText(code)),
		Header:        http.Header{"Content-Type": {"application/json"}},
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}, nil
}
