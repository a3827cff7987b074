package reqid_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/cafe/pkg/reqid"
)

func serve(header string) (ctxID, respID string) {
	h := reqid.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = reqid.FromCtx(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(reqid.Header, header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return ctxID, rec.Header().Get(reqid.Header)
}

func TestMiddlewareKeepsInboundID(t *testing.T) {
	ctxID, respID := serve("gw-42.a_b")
	assert.Equal(t, "gw-42.a_b", ctxID)
	assert.Equal(t, ctxID, respID)
}

func TestMiddlewareMintsUUID(t *testing.T) {
	ctxID, respID := serve("")
	_, err := uuid.Parse(ctxID)
	assert.NoError(t, err)
	assert.Equal(t, ctxID, respID)
}

func TestMiddlewareReplacesMalformedID(t *testing.T) {
	for _, bad := range []string{"has space", "line\nbreak", strings.Repeat("a", 65)} {
		ctxID, _ := serve(bad)
		assert.NotEqual(t, bad, ctxID)
		_, err := uuid.Parse(ctxID)
		assert.NoError(t, err, bad)
	}
}
