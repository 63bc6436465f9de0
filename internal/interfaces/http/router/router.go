// Package router declares the API routes together with the access each one
// requires, and mounts them on a gin engine below /api/<version>.
package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopadmin/backoffice/internal/interfaces/http/middleware"
)

// RouteRegistrar is anything that can add routes to a gin group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router collects registrars and mounts them in one pass on Setup.
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

type RouterOption func(*Router)

func WithAPIVersion(version string) RouterOption {
	return func(r *Router) { r.apiVersion = version }
}

func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

func (r *Router) BasePath() string {
	return "/api/" + r.apiVersion
}

func (r *Router) Setup() {
	base := r.engine.Group(r.BasePath())
	for _, reg := range r.registrars {
		reg.RegisterRoutes(base)
	}
}

// Access is the gate a route sits behind.
type Access int

const (
	AccessPublic        Access = iota // no token needed
	AccessAuthenticated               // any valid access token
	AccessPermission                  // valid token whose role grants a named permission
)

var accessNames = [...]string{"public", "authenticated", "permission"}

func (a Access) String() string {
	if a < 0 || int(a) >= len(accessNames) {
		return fmt.Sprintf("Access(%d)", int(a))
	}
	return accessNames[a]
}

// RouteInfo describes one declared route. Path includes every group prefix
// but not the API base path.
type RouteInfo struct {
	Method     string
	Path       string
	Access     Access
	Permission string
}

type route struct {
	RouteInfo
	handlers []gin.HandlerFunc
}

// DomainGroup is a prefix with its routes, subgroups and middleware. Routes
// declared Authenticated or Protected are wrapped by the group's guard when
// registered; registering one on a group without a guard panics rather than
// serve it open.
type DomainGroup struct {
	name       string
	prefix     string
	guard      *middleware.Guard
	middleware []gin.HandlerFunc
	routes     []route
	subgroups  []*DomainGroup
}

func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// WithGuard sets the guard for this group and for subgroups created later.
func (dg *DomainGroup) WithGuard(guard *middleware.Guard) *DomainGroup {
	dg.guard = guard
	return dg
}

func (dg *DomainGroup) Use(mw ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, mw...)
	return dg
}

func (dg *DomainGroup) declare(method, path string, access Access, permission string, handlers []gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, route{
		RouteInfo: RouteInfo{Method: method, Path: path, Access: access, Permission: permission},
		handlers:  handlers,
	})
	return dg
}

// Public declares a route anyone may call.
func (dg *DomainGroup) Public(method, path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.declare(method, path, AccessPublic, "", handlers)
}

func (dg *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Public(http.MethodGet, path, handlers...)
}

func (dg *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Public(http.MethodPost, path, handlers...)
}

// Authenticated declares a route open to any caller with a valid access token.
func (dg *DomainGroup) Authenticated(method, path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.declare(method, path, AccessAuthenticated, "", handlers)
}

// Protected declares a route that needs permission. The token is always
// checked first, so a bad token is a 401 even where the permission is missing.
func (dg *DomainGroup) Protected(method, path, permission string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.declare(method, path, AccessPermission, permission, handlers)
}

// Group opens a subgroup that inherits the current guard.
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	sub := NewDomainGroup(name, prefix).WithGuard(dg.guard)
	dg.subgroups = append(dg.subgroups, sub)
	return sub
}

func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix, dg.middleware...)
	for _, r := range dg.routes {
		group.Handle(r.Method, r.Path, dg.gated(r)...)
	}
	for _, sub := range dg.subgroups {
		sub.RegisterRoutes(group)
	}
}

func (dg *DomainGroup) gated(r route) []gin.HandlerFunc {
	var gate []gin.HandlerFunc
	switch r.Access {
	case AccessPublic:
		return r.handlers
	case AccessAuthenticated:
		dg.mustGuard(r)
		gate = []gin.HandlerFunc{dg.guard.Authenticated()}
	default:
		dg.mustGuard(r)
		gate = dg.guard.Protect(r.Permission)
	}
	return append(gate, r.handlers...)
}

func (dg *DomainGroup) mustGuard(r route) {
	if dg.guard == nil {
		panic(fmt.Sprintf("router: %s %s%s is %s but group %q has no guard",
			r.Method, dg.prefix, r.Path, r.Access, dg.name))
	}
}

// Routes lists the declared routes of the group and its subgroups.
func (dg *DomainGroup) Routes() []RouteInfo {
	return dg.collect("")
}

func (dg *DomainGroup) collect(parent string) []RouteInfo {
	base := parent + dg.prefix
	out := make([]RouteInfo, 0, len(dg.routes))
	for _, r := range dg.routes {
		info := r.RouteInfo
		info.Path = base + info.Path
		out = append(out, info)
	}
	for _, sub := range dg.subgroups {
		out = append(out, sub.collect(base)...)
	}
	return out
}

func (dg *DomainGroup) Guard() *middleware.Guard { return dg.guard }
func (dg *DomainGroup) Name() string             { return dg.name }
func (dg *DomainGroup) Prefix() string           { return dg.prefix }
