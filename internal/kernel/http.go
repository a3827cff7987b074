// Package kernel assembles the HTTP handler: global middleware, the route
// table and static file serving for uploaded images.
package kernel

import (
	"net/http"
	"time"

	"github.com/shashiranjanraj/cafe/app/routes"
	"github.com/shashiranjanraj/cafe/config"
	"github.com/shashiranjanraj/cafe/pkg/metrics"
	"github.com/shashiranjanraj/cafe/pkg/middleware"
	"github.com/shashiranjanraj/cafe/pkg/reqid"
	"github.com/shashiranjanraj/cafe/pkg/router"
	"github.com/shashiranjanraj/cafe/pkg/session"
)

type HTTPKernel struct {
	router *router.Router
}

func NewHTTPKernel() *HTTPKernel {
	r := router.New()

	// Outermost first: metrics see total latency, recovery guards the rest,
	// and the request id exists before anything logs.
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.CORSFromConfig()))
	r.Use(middleware.RateLimit(config.Int("RATE_LIMIT", 200), time.Minute))
	r.Use(session.Middleware(sessionOptions()))
	r.Use(middleware.Authenticate)

	routes.RegisterAPI(r)

	if config.StorageDefault() == "local" {
		files := http.StripPrefix("/storage/", http.FileServer(http.Dir(config.StorageLocalRoot())))
		r.Handle("/storage/*", "storage", files)
	}

	return &HTTPKernel{router: r}
}

func (k *HTTPKernel) Handler() http.Handler {
	return k.router.Handler()
}

// Router exposes the route table for route:list.
func (k *HTTPKernel) Router() *router.Router {
	return k.router
}

func sessionOptions() session.Options {
	opts := session.DefaultOptions()
	opts.TTL = config.Duration("SESSION_TTL", opts.TTL)
	opts.Secure = config.AppEnv() == "production"
	return opts
}
