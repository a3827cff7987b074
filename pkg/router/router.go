// Package router puts named routes and prefix groups on top of chi.
//
//	r := router.New()
//	admin := r.Group("/Menu", rbac.Can(models.PermManageMenu))
//	admin.Post("/AddProduct", "menu.products.add", ctx.Wrap(ctl.AddProduct))
//	r.Path("menu.products.add") // "/Menu/AddProduct", true
package router

import (
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/cafe/pkg/response"
)

type Middleware func(http.Handler) http.Handler

// Route is one row of the route table. Method is "*" for Handle mounts.
type Route struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Name   string `json:"name"`
}

// Group mounts routes under a shared prefix and middleware stack.
type Group struct {
	root   *Router
	prefix string
	stack  []Middleware
}

// Router owns the chi mux and the route table. Its route methods mount at
// the root.
type Router struct {
	base Group
	mux  chi.Router

	mu    sync.RWMutex
	named map[string]string
	table []Route
}

// New returns a router whose 404 and 405 replies use the JSON envelope.
func New() *Router {
	mux := chi.NewRouter()
	mux.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusNotFound, "Not Found")
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r := &Router{mux: mux, named: map[string]string{}}
	r.base = Group{root: r}
	return r
}

func (r *Router) Handler() http.Handler { return r.mux }

func (r *Router) Group(prefix string, mws ...Middleware) *Group { return r.base.Group(prefix, mws...) }

func (r *Router) Get(path, name string, h http.HandlerFunc, mws ...Middleware) {
	r.base.Get(path, name, h, mws...)
}

func (r *Router) Post(path, name string, h http.HandlerFunc, mws ...Middleware) {
	r.base.Post(path, name, h, mws...)
}

func (r *Router) Put(path, name string, h http.HandlerFunc, mws ...Middleware) {
	r.base.Put(path, name, h, mws...)
}

func (r *Router) Delete(path, name string, h http.HandlerFunc, mws ...Middleware) {
	r.base.Delete(path, name, h, mws...)
}

func (r *Router) Handle(path, name string, h http.Handler, mws ...Middleware) {
	r.base.Handle(path, name, h, mws...)
}

// Use appends global middleware. chi requires this before any route.
func (r *Router) Use(mws ...Middleware) {
	for _, mw := range mws {
		r.mux.Use(mw)
	}
}

// Routes returns the table ordered by path, then method.
func (r *Router) Routes() []Route {
	r.mu.RLock()
	out := slices.Clone(r.table)
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b Route) int {
		if c := strings.Compare(a.Path, b.Path); c != 0 {
			return c
		}
		return strings.Compare(a.Method, b.Method)
	})
	return out
}

func (r *Router) Path(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.named[name]
	return p, ok
}

// URL fills the {param} placeholders of a named route, escaping values.
func (r *Router) URL(name string, params map[string]string) (string, error) {
	p, ok := r.Path(name)
	if !ok {
		return "", fmt.Errorf("router: no route named %q", name)
	}
	for k, v := range params {
		p = strings.ReplaceAll(p, "{"+k+"}", url.PathEscape(v))
	}
	if strings.ContainsAny(p, "{}") {
		return "", fmt.Errorf("router: route %q needs more parameters: %s", name, p)
	}
	return p, nil
}

func (r *Router) add(rt Route, h http.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rt.Name != "" {
		if prev, dup := r.named[rt.Name]; dup {
			panic(fmt.Sprintf("router: name %q already used by %s", rt.Name, prev))
		}
		r.named[rt.Name] = rt.Path
	}
	r.table = append(r.table, rt)

	if rt.Method == "*" {
		r.mux.Handle(rt.Path, h)
	} else {
		r.mux.Method(rt.Method, rt.Path, h)
	}
}

// ─── Group ───────────────────────────────────────────────────────────────────

// Group nests a prefix; its middleware runs after the parent's.
func (g *Group) Group(prefix string, mws ...Middleware) *Group {
	return &Group{
		root:   g.root,
		prefix: join(g.prefix, prefix),
		stack:  append(slices.Clone(g.stack), mws...),
	}
}

func (g *Group) Get(path, name string, h http.HandlerFunc, mws ...Middleware) {
	g.Method(http.MethodGet, path, name, h, mws...)
}

func (g *Group) Post(path, name string, h http.HandlerFunc, mws ...Middleware) {
	g.Method(http.MethodPost, path, name, h, mws...)
}

func (g *Group) Put(path, name string, h http.HandlerFunc, mws ...Middleware) {
	g.Method(http.MethodPut, path, name, h, mws...)
}

func (g *Group) Delete(path, name string, h http.HandlerFunc, mws ...Middleware) {
	g.Method(http.MethodDelete, path, name, h, mws...)
}

// Method mounts h for one HTTP verb.
func (g *Group) Method(method, path, name string, h http.Handler, mws ...Middleware) {
	g.root.add(Route{Method: method, Path: join(g.prefix, path), Name: name}, g.wrap(h, mws))
}

// Handle mounts h for every verb (metrics, GraphQL, static files).
func (g *Group) Handle(path, name string, h http.Handler, mws ...Middleware) {
	g.root.add(Route{Method: "*", Path: join(g.prefix, path), Name: name}, g.wrap(h, mws))
}

// wrap applies the group stack, then the route's own middleware.
func (g *Group) wrap(h http.Handler, extra []Middleware) http.Handler {
	all := append(slices.Clone(g.stack), extra...)
	for i := len(all) - 1; i >= 0; i-- {
		h = all[i](h)
	}
	return h
}

func join(parts ...string) string {
	var segs []string
	for _, p := range parts {
		if p = strings.Trim(p, "/"); p != "" {
			segs = append(segs, p)
		}
	}
	return "/" + strings.Join(segs, "/")
}
