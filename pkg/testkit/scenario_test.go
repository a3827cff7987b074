package testkit_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cafehttp "github.com/shashiranjanraj/cafe/pkg/http"
	"github.com/shashiranjanraj/cafe/pkg/mail"
	"github.com/shashiranjanraj/cafe/pkg/middleware"
	"github.com/shashiranjanraj/cafe/pkg/testkit"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// fixtureHandler exercises every side effect the runner can intercept.
func fixtureHandler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("/signup", func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false})
			return
		}

		resp, err := cafehttp.Post("https://verify.example.com/v1/check").Body(in).Send()
		if err != nil {
			writeJSON(w, http.StatusBadGateway, map[string]any{"success": false, "error": err.Error()})
			return
		}
		var check struct {
			Verified bool `json:"verified"`
		}
		resp.JSON(&check) //nolint:errcheck

		out := map[string]any{"success": true, "verified": check.Verified, "mailed": true}
		if err := mail.To(in.Email).Subject("Welcome").Body("<p>Hi</p>").Send(); err != nil {
			out["mailed"] = false
			out["mailError"] = err.Error()
		}
		writeJSON(w, http.StatusCreated, out)
	})

	whoami := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := middleware.UserIDFromCtx(r)
		role, _ := middleware.RoleFromCtx(r)
		writeJSON(w, http.StatusOK, map[string]any{"id": id, "role": role})
	})
	mux.Handle("/whoami", middleware.Authenticate(middleware.AuthMiddleware(whoami)))

	return mux
}

func TestRunDir(t *testing.T) {
	testkit.RunDir(t, fixtureHandler(), "testdata")
}

func TestLoadScenario(t *testing.T) {
	s, err := testkit.LoadScenario("testdata/02_signup.json")
	require.NoError(t, err)

	assert.Equal(t, "POST", s.RequestMethod)
	assert.Equal(t, 201, s.ExpectedCode)
	assert.True(t, s.IsMockRequired)
	require.Len(t, s.NetUtilMockStep, 2)
	assert.Equal(t, "https://verify.example.com/", s.NetUtilMockStep[0].MatchURL)
	assert.Equal(t, testkit.MethodSendMail, s.NetUtilMockStep[1].Method)
	assert.FileExists(t, s.RequestBodyPath())
}

func TestLoadAllFromDirSkipsBodyFiles(t *testing.T) {
	scenarios, errs := testkit.LoadAllFromDir("testdata")
	assert.Empty(t, errs)
	assert.Len(t, scenarios, 5)
}

func TestLoadScenarioRejectsMissingFields(t *testing.T) {
	_, err := testkit.LoadScenario("testdata/02_signup_req.json")
	assert.Error(t, err)
}

func TestMailHookCountsDeliveries(t *testing.T) {
	s := &testkit.Scenario{
		Name:            "mail only",
		NetUtilMockStep: []testkit.MockStep{{Method: testkit.MethodSendMail, IsMock: true}},
	}
	restore, err := testkit.ArmHooks(s)
	require.NoError(t, err)
	defer restore()

	assert.Len(t, testkit.UnreachedHooks(s), 1)
	require.NoError(t, mail.To("bo@example.com").Subject("Hello").Text("hi").Send())

	mailer := testkit.Hooked(testkit.MethodSendMail)
	assert.Equal(t, 1, mailer.Count())
	mailer.AssertCalled(t, "Call", []byte("Hello"))
	assert.Empty(t, testkit.UnreachedHooks(s))
}

func TestFailingHookReturnsBody(t *testing.T) {
	s := &testkit.Scenario{
		Name: "smtp down",
		NetUtilMockStep: []testkit.MockStep{{
			Method:     testkit.MethodSendMail,
			IsMock:     true,
			ReturnData: testkit.MockReturnData{StatusCode: 503, Body: "c210cCBkb3du"}, // smtp down
		}},
	}
	restore, err := testkit.ArmHooks(s)
	require.NoError(t, err)
	defer restore()

	err = mail.To("bo@example.com").Subject("Hello").Text("hi").Send()
	assert.EqualError(t, err, "smtp down")
}

func TestCustomHook(t *testing.T) {
	var installed, removed bool
	testkit.RegisterHook("sms", testkit.NewHook(func(*testkit.Hook) func() {
		installed = true
		return func() { removed = true }
	}))

	s := &testkit.Scenario{
		Name:            "sms",
		IsMockRequired:  true,
		NetUtilMockStep: []testkit.MockStep{{Method: "sms", IsMock: true}, {Method: "fax", IsMock: true}},
	}
	restore, err := testkit.ArmHooks(s)
	assert.ErrorContains(t, err, "fax")
	restore()
	assert.True(t, installed)
	assert.True(t, removed)
}

func TestMockTransportURLMatching(t *testing.T) {
	s := &testkit.Scenario{
		Name:           "mock transport",
		IsMockRequired: true,
		NetUtilMockStep: []testkit.MockStep{{
			Method:     testkit.MethodHTTPRequest,
			IsMock:     true,
			MatchURL:   "https://api.example.com/",
			ReturnData: testkit.MockReturnData{StatusCode: 200, Body: "eyJvayI6dHJ1ZX0="}, // {"ok":true}
		}},
	}
	mt := testkit.NewMockTransport(s)

	resp, err := mt.RoundTrip(httptest.NewRequest(http.MethodGet, "https://api.example.com/users", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, mt.AssertAllCalled())

	_, err = mt.RoundTrip(httptest.NewRequest(http.MethodGet, "https://unexpected.com/api", nil))
	assert.Error(t, err)

	reqs := mt.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "https://api.example.com/users", reqs[0].URL)
}

func TestMockTransportMethodMatching(t *testing.T) {
	s := &testkit.Scenario{
		Name: "method filter",
		NetUtilMockStep: []testkit.MockStep{{
			Method:      testkit.MethodHTTPRequest,
			IsMock:      true,
			MatchMethod: http.MethodPost,
			ReturnData:  testkit.MockReturnData{StatusCode: http.StatusAccepted},
		}},
	}
	mt := testkit.NewMockTransport(s)

	resp, err := mt.RoundTrip(httptest.NewRequest(http.MethodGet, "https://hooks.example.com/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Len(t, mt.AssertAllCalled(), 1)

	resp, err = mt.RoundTrip(httptest.NewRequest(http.MethodPost, "https://hooks.example.com/", strings.NewReader(`{"event":"order.placed"}`)))
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Empty(t, mt.AssertAllCalled())
	assert.JSONEq(t, `{"event":"order.placed"}`, string(mt.Requests()[1].Body))
}

func TestDiffJSONIgnoresExtraKeys(t *testing.T) {
	var exp, act any
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Latte","sizes":[1,2]}`), &exp))
	require.NoError(t, json.Unmarshal([]byte(`{"id":4,"sizes":[1,2],"name":"Latte"}`), &act))
	assert.Empty(t, testkit.DiffJSON("", exp, act))

	require.NoError(t, json.Unmarshal([]byte(`{"name":"Mocha","sizes":[1]}`), &act))
	assert.Len(t, testkit.DiffJSON("", exp, act), 2)
}

func TestDiffJSONPlaceholders(t *testing.T) {
	var exp, act any
	require.NoError(t, json.Unmarshal([]byte(`{"id":"<number>","token":"<string>","at":"<timestamp>","meta":"<any>"}`), &exp))

	require.NoError(t, json.Unmarshal([]byte(`{"id":7,"token":"abc","at":"2026-01-02T10:00:00Z","meta":{"x":1}}`), &act))
	assert.Empty(t, testkit.DiffJSON("", exp, act))

	require.NoError(t, json.Unmarshal([]byte(`{"id":"7","token":"","at":"yesterday","meta":null}`), &act))
	assert.Len(t, testkit.DiffJSON("", exp, act), 4)
}
