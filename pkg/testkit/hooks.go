package testkit

import (
	"encoding/base64"
	"errors"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/cafe/pkg/mail"
	"github.com/stretchr/testify/mock"
)

// MethodSendMail is the step method that intercepts pkg/mail deliveries.
const MethodSendMail = "sendmail"

// Hook stands in for a side effect that does not go through pkg/http.
// Its installer swaps the real implementation for one that calls Call.
// The embedded mock records every payload, so tests can assert on them:
//
//	testkit.Hooked(testkit.MethodSendMail).AssertCalled(t, "Call", []byte("Welcome"))
type Hook struct {
	mock.Mock

	install func(*Hook) (restore func())

	mu    sync.Mutex
	calls int
	fail  error
}

// NewHook returns a hook that install wires in when a scenario names it.
func NewHook(install func(*Hook) (restore func())) *Hook {
	h := &Hook{install: install}
	h.reset()
	return h
}

// Call records payload and returns the failure armed by the scenario.
func (h *Hook) Call(payload []byte) error {
	h.mu.Lock()
	h.calls++
	fail := h.fail
	h.mu.Unlock()

	h.Called(payload)
	return fail
}

// Count is the number of Call invocations since the hook was last armed.
func (h *Hook) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}

func (h *Hook) reset() {
	h.mu.Lock()
	h.calls = 0
	h.fail = nil
	h.mu.Unlock()

	h.Mock.ExpectedCalls = nil
	h.Mock.Calls = nil
	h.On("Call", mock.Anything).Return()
}

var (
	hooksMu sync.RWMutex
	hooks   = map[string]*Hook{
		MethodSendMail: NewHook(func(h *Hook) func() {
			return mail.UseTransport(func(_ mail.SMTP, e mail.Envelope) error {
				return h.Call([]byte(e.Subject))
			})
		}),
	}
)

// RegisterHook adds or replaces the hook for a step method.
func RegisterHook(method string, h *Hook) {
	hooksMu.Lock()
	hooks[method] = h
	hooksMu.Unlock()
}

// Hooked returns the hook for method, or nil.
func Hooked(method string) *Hook {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return hooks[method]
}

// ArmHooks resets and installs every hook the scenario's mock steps name.
// A step with a status of 400 or more makes its hook fail, with the
// decoded body as the error text. The returned func uninstalls them.
func ArmHooks(s *Scenario) (restore func(), err error) {
	var undo []func()
	restore = func() {
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
	}

	armed := map[string]bool{}
	for i, step := range s.NetUtilMockStep {
		if step.Method == MethodHTTPRequest || !step.IsMock || armed[step.Method] {
			continue
		}
		h := Hooked(step.Method)
		if h == nil {
			if s.IsMockRequired {
				return restore, fmt.Errorf("testkit: step %d: no hook for %q", i, step.Method)
			}
			continue
		}
		armed[step.Method] = true
		h.reset()

		if step.ReturnData.StatusCode >= 400 {
			msg, err := decodeBody(step.ReturnData.Body)
			if err != nil {
				return restore, fmt.Errorf("testkit: step %d: %w", i, err)
			}
			if len(msg) == 0 {
				msg = []byte(step.Method + " failed")
			}
			h.mu.Lock()
			h.fail = errors.New(string(msg))
			h.mu.Unlock()
		}
		if h.install != nil {
			undo = append(undo, h.install(h))
		}
	}
	return restore, nil
}

// UnreachedHooks lists the armed hooks the scenario never triggered.
func UnreachedHooks(s *Scenario) []error {
	var errs []error
	seen := map[string]bool{}
	for _, step := range s.NetUtilMockStep {
		if step.Method == MethodHTTPRequest || !step.IsMock || seen[step.Method] {
			continue
		}
		seen[step.Method] = true
		if h := Hooked(step.Method); h != nil && h.Count() == 0 {
			errs = append(errs, fmt.Errorf("testkit: %q was never called during %q", step.Method, s.Name))
		}
	}
	return errs
}

// decodeBody accepts padded or unpadded base64.
func decodeBody(body string) ([]byte, error) {
	if body == "" {
		return nil, nil
	}
	if b, err := base64.StdEncoding.DecodeString(body); err == nil {
		return b, nil
	}
	b, err := base64.RawStdEncoding.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("base64 decode: %w", err)
	}
	return b, nil
}
