// Package ctx is the request handle controllers receive instead of the
// (http.ResponseWriter, *http.Request) pair. It binds input, exposes the
// caller's identity and writes the response envelope.
//
//	func (ctl *CartController) GetCart(c *ctx.Context) {
//	    cart, err := ctl.cart.Get(c.Context(), c.UserID())
//	    if err != nil {
//	        c.Fail("Unable to load your cart.")
//	        return
//	    }
//	    c.Success(cart)
//	}
package ctx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/shashiranjanraj/cafe/pkg/bind"
	"github.com/shashiranjanraj/cafe/pkg/logger"
	"github.com/shashiranjanraj/cafe/pkg/middleware"
	"github.com/shashiranjanraj/cafe/pkg/response"
	"github.com/shashiranjanraj/cafe/pkg/session"
	"github.com/shashiranjanraj/cafe/pkg/validate"
)

type HandlerFunc func(c *Context)

// Wrap adapts h for the router.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h(&Context{W: w, R: r})
	}
}

type Context struct {
	W http.ResponseWriter
	R *http.Request
}

func (c *Context) Context() context.Context { return c.R.Context() }

// Log is the request-scoped logger, tagged with the request id.
func (c *Context) Log() *slog.Logger { return logger.WithCtx(c.R.Context()) }

// ─── Input ───────────────────────────────────────────────────────────────────

func (c *Context) Query(key string) string {
	return strings.TrimSpace(c.R.URL.Query().Get(key))
}

// QueryUint parses a positive id from the query string.
func (c *Context) QueryUint(key string) (uint, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, fmt.Errorf("ctx: %s is missing", key)
	}
	n, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("ctx: %s=%q is not a positive id", key, raw)
	}
	return uint(n), nil
}

// FormFile parses a multipart body of at most limit bytes and returns the
// named file.
func (c *Context) FormFile(field string, limit int64) (multipart.File, *multipart.FileHeader, error) {
	c.R.Body = http.MaxBytesReader(c.W, c.R.Body, limit+1<<20)
	if err := c.R.ParseMultipartForm(limit); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, nil, fmt.Errorf("ctx: upload exceeds %d bytes", limit)
		}
		return nil, nil, fmt.Errorf("ctx: multipart: %w", err)
	}
	return c.R.FormFile(field)
}

// BindJSON decodes and validates the body. On failure it has already
// answered the request, so the handler just returns:
//
//	var in PlaceOrderInput
//	if !c.BindJSON(&in) {
//	    return
//	}
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.R, dest)
	switch {
	case err != nil:
		c.Fail(err.Error())
		return false
	case !errs.Empty():
		c.ValidationError(errs)
		return false
	}
	return true
}

// ─── Identity ────────────────────────────────────────────────────────────────

// UserID is 0 for anonymous callers.
func (c *Context) UserID() uint {
	id, _ := middleware.UserIDFromCtx(c.R)
	return id
}

func (c *Context) Role() string {
	role, _ := middleware.RoleFromCtx(c.R)
	return role
}

func (c *Context) Session() *session.Session { return session.FromCtx(c.R) }

// ─── Output ──────────────────────────────────────────────────────────────────

func (c *Context) JSON(status int, v any) { response.Write(c.W, c.R, status, v) }

// Success sends {"success":true,"data":...}.
func (c *Context) Success(data any) {
	c.JSON(http.StatusOK, response.Envelope{Success: true, Data: data})
}

// Succeed puts fields next to "success" at the top level, for clients that
// read flat keys such as subtotal or cartCount.
func (c *Context) Succeed(fields map[string]any) {
	body := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["success"] = true
	c.JSON(http.StatusOK, body)
}

func (c *Context) Message(msg string) {
	c.JSON(http.StatusOK, response.Envelope{Success: true, Message: msg})
}

func (c *Context) Done(msg string, data any) {
	c.JSON(http.StatusOK, response.Envelope{Success: true, Message: msg, Data: data})
}

// Fail reports a domain failure. The status stays 200.
func (c *Context) Fail(msg string) {
	c.JSON(http.StatusOK, response.Envelope{Success: false, Error: msg})
}

// ValidationError answers 200 with the first message as "error" and every
// field message under "errors".
func (c *Context) ValidationError(errs validate.Errors) {
	msg := errs.First()
	if msg == "" {
		msg = "Validation failed"
	}
	c.JSON(http.StatusOK, response.Envelope{Success: false, Error: msg, Errors: errs.Map()})
}
