package http_test

import (
	"encoding/json"
	"io"
	gohttp "net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shashiranjanraj/cafe/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostSendsJSON(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "secret", r.Header.Get("X-Signature"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(gohttp.StatusAccepted)
	}))
	defer srv.Close()

	resp, err := http.Post(srv.URL).
		Header("X-Signature", "secret").
		Body(map[string]any{"invoiceNumber": "A1B2C3D4"}).
		Send()
	require.NoError(t, err)

	assert.True(t, resp.OK())
	assert.Equal(t, "A1B2C3D4", got["invoiceNumber"])
}

func TestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(gohttp.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"ok":true}`)) //nolint:errcheck
	}))
	defer srv.Close()

	resp, err := http.Get(srv.URL).Retry(3, time.Millisecond).Send()
	require.NoError(t, err)

	var body struct{ OK bool }
	require.NoError(t, resp.JSON(&body))
	assert.True(t, body.OK)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		calls.Add(1)
		w.WriteHeader(gohttp.StatusBadRequest)
	}))
	defer srv.Close()

	resp, err := http.Post(srv.URL).Retry(3, time.Millisecond).Send()
	require.NoError(t, err)

	assert.Error(t, resp.Throw())
	assert.Equal(t, int32(1), calls.Load())
}

func TestSignedRequestVerifies(t *testing.T) {
	var sig, ts string
	var raw []byte
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		sig = r.Header.Get(http.SignatureHeader)
		ts = r.Header.Get(http.TimestampHeader)
		raw, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	_, err := http.Post(srv.URL).Body(map[string]any{"event": "order.placed"}).Sign("s3cret").Send()
	require.NoError(t, err)

	require.NotEmpty(t, ts)
	assert.Equal(t, http.Signature([]byte("s3cret"), ts, raw), sig)
	assert.NotEqual(t, http.Signature([]byte("other"), ts, raw), sig)
}

func TestUnsignedWithoutSecret(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		assert.Empty(t, r.Header.Get(http.SignatureHeader))
	}))
	defer srv.Close()

	_, err := http.Post(srv.URL).Body("hi").Sign("").Send()
	require.NoError(t, err)
}

func TestTooManyRequestsHonoursRetryAfter(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(gohttp.StatusTooManyRequests)
			return
		}
		w.WriteHeader(gohttp.StatusNoContent)
	}))
	defer srv.Close()

	start := time.Now()
	resp, err := http.Get(srv.URL).Retry(2, time.Hour).Send()
	require.NoError(t, err)
	assert.Equal(t, gohttp.StatusNoContent, resp.StatusCode)
	assert.Less(t, time.Since(start), 5*time.Second)
}
