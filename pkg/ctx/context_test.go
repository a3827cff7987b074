package ctx_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	appctx "github.com/shashiranjanraj/cafe/pkg/ctx"
	"github.com/shashiranjanraj/cafe/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	appctx.Wrap(func(c *appctx.Context) {
		c.Success([]int{1, 2})
	})(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["data"], 2)
}

func TestSucceedFlattensFields(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/Cart/UpdateQuantity", nil)
	appctx.Wrap(func(c *appctx.Context) {
		c.Succeed(map[string]any{"subtotal": 360.0, "cartCount": 3})
	})(rec, req)

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, 360.0, body["subtotal"])
	assert.Equal(t, 3.0, body["cartCount"])
}

func TestFailUsesStatusOK(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	appctx.Wrap(func(c *appctx.Context) {
		c.Fail("Order not found.")
	})(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Order not found.", body["error"])
}

func TestBindJSONValid(t *testing.T) {
	rec := httptest.NewRecorder()
	body := `{"name":"John","email":"john@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	appctx.Wrap(func(c *appctx.Context) {
		var input struct {
			Name  string `json:"name"  validate:"required"`
			Email string `json:"email" validate:"required,email"`
		}
		require.True(t, c.BindJSON(&input))
		assert.Equal(t, "John", input.Name)
		c.Success(nil)
	})(rec, req)

	assert.Equal(t, true, decode(t, rec)["success"])
}

func TestBindJSONInvalidReportsFirstError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":""}`))
	req.Header.Set("Content-Type", "application/json")

	appctx.Wrap(func(c *appctx.Context) {
		var input struct {
			Name string `json:"name" validate:"required"`
		}
		assert.False(t, c.BindJSON(&input))
	})(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "The name field is required.", body["error"])
}

func TestBindJSONMalformed(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))

	appctx.Wrap(func(c *appctx.Context) {
		var input struct{ Name string }
		assert.False(t, c.BindJSON(&input))
	})(rec, req)

	assert.Contains(t, decode(t, rec)["error"], "invalid JSON")
}

func TestQueryUint(t *testing.T) {
	cases := map[string]bool{
		"/?id=12":  true,
		"/?id=0":   false,
		"/?id=abc": false,
		"/":        false,
	}
	for target, ok := range cases {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		appctx.Wrap(func(c *appctx.Context) {
			id, err := c.QueryUint("id")
			if ok {
				assert.NoError(t, err, target)
				assert.Equal(t, uint(12), id)
			} else {
				assert.Error(t, err, target)
			}
		})(httptest.NewRecorder(), req)
	}
}

func TestIdentityFromMiddlewareContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(middleware.WithIdentity(req.Context(), 9, "admin"))

	appctx.Wrap(func(c *appctx.Context) {
		assert.Equal(t, uint(9), c.UserID())
		assert.Equal(t, "admin", c.Role())
	})(httptest.NewRecorder(), req)
}

func TestFormFileRejectsOversizedUpload(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "latte.png")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("x"), 3<<20))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	appctx.Wrap(func(c *appctx.Context) {
		_, _, err := c.FormFile("image", 1<<20)
		assert.Error(t, err)
	})(httptest.NewRecorder(), req)
}

func TestFormFileReturnsPart(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "latte.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("png"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	appctx.Wrap(func(c *appctx.Context) {
		f, header, err := c.FormFile("image", 1<<20)
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "latte.png", header.Filename)
		assert.EqualValues(t, 3, header.Size)
	})(httptest.NewRecorder(), req)
}
