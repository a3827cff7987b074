// Package rbac guards routes by role or by named permission. Roles map to
// permissions in a Policy; "*" grants everything.
//
//	rbac.Grant("admin", "*")
//	menuAdmin := menu.Group("", rbac.Can("menu.manage"))
package rbac

import (
	"net/http"
	"sync"

	"github.com/shashiranjanraj/cafe/pkg/logger"
	"github.com/shashiranjanraj/cafe/pkg/middleware"
	"github.com/shashiranjanraj/cafe/pkg/response"
)

const Wildcard = "*"

type Policy struct {
	mu     sync.RWMutex
	grants map[string]map[string]bool
}

func NewPolicy() *Policy {
	return &Policy{grants: map[string]map[string]bool{}}
}

// Grant adds perms to role. Granting twice is harmless.
func (p *Policy) Grant(role string, perms ...string) *Policy {
	p.mu.Lock()
	defer p.mu.Unlock()
	set, ok := p.grants[role]
	if !ok {
		set = map[string]bool{}
		p.grants[role] = set
	}
	for _, perm := range perms {
		set[perm] = true
	}
	return p
}

func (p *Policy) Allows(role, perm string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	set := p.grants[role]
	return set[Wildcard] || set[perm]
}

// Can admits requests whose role holds every one of perms, and answers
// 403 otherwise.
func (p *Policy) Can(perms ...string) func(http.Handler) http.Handler {
	return guard(func(role string) bool {
		for _, perm := range perms {
			if !p.Allows(role, perm) {
				return false
			}
		}
		return true
	}, perms)
}

// HasRole admits only the listed roles.
func HasRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return guard(func(role string) bool { return allowed[role] }, roles)
}

func guard(ok func(role string) bool, wanted []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, _ := middleware.RoleFromCtx(r)
			if !ok(role) {
				uid, _ := middleware.UserIDFromCtx(r)
				logger.WithCtx(r.Context()).Warn("rbac: access denied",
					"user_id", uid, "role", role, "requires", wanted, "path", r.URL.Path)
				response.Forbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

var std = NewPolicy()

func Grant(role string, perms ...string) { std.Grant(role, perms...) }

func Allows(role, perm string) bool { return std.Allows(role, perm) }

func Can(perms ...string) func(http.Handler) http.Handler { return std.Can(perms...) }
