// Package server assembles the back-office HTTP API: repositories, services,
// the authorization guard, the middleware chain and the routes.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	_ "github.com/shopadmin/backoffice/docs"
	appidentity "github.com/shopadmin/backoffice/internal/application/identity"
	"github.com/shopadmin/backoffice/internal/domain/identity"
	"github.com/shopadmin/backoffice/internal/infrastructure/auth"
	"github.com/shopadmin/backoffice/internal/infrastructure/cache"
	"github.com/shopadmin/backoffice/internal/infrastructure/config"
	"github.com/shopadmin/backoffice/internal/infrastructure/event"
	"github.com/shopadmin/backoffice/internal/infrastructure/logger"
	"github.com/shopadmin/backoffice/internal/infrastructure/persistence"
	"github.com/shopadmin/backoffice/internal/infrastructure/telemetry"
	"github.com/shopadmin/backoffice/internal/interfaces/http/handler"
	"github.com/shopadmin/backoffice/internal/interfaces/http/middleware"
	"github.com/shopadmin/backoffice/internal/interfaces/http/router"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/shopadmin/backoffice"

// Deps are the long-lived resources the server is built on. Config, Logger,
// DB and Stores are required.
type Deps struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *persistence.Database
	Stores *cache.Stores

	// TracerProvider and Meter default to the global providers
	TracerProvider trace.TracerProvider
	Meter          metric.Meter

	Version string
}

// Server is the assembled HTTP API
type Server struct {
	cfg          *config.Config
	logger       *zap.Logger
	engine       *gin.Engine
	httpServer   *http.Server
	bus          *event.Bus
	limiter      *middleware.RateLimiter
	bootstrapper *appidentity.Bootstrapper
	guard        *middleware.Guard
	api          *router.Router
	groups       []*router.DomainGroup
}

// New wires the application. It does not touch the database schema and does
// not seed anything; call Bootstrap for that.
func New(deps Deps) (*Server, error) {
	if deps.Config == nil || deps.Logger == nil || deps.DB == nil || deps.Stores == nil {
		return nil, errors.New("server: config, logger, database and stores are required")
	}
	cfg := deps.Config
	log := deps.Logger

	meter := deps.Meter
	if meter == nil {
		meter = otel.Meter(instrumentationName)
	}
	authMetrics, err := telemetry.NewAuthMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("create auth metrics: %w", err)
	}

	userRepo := persistence.NewGormUserRepository(deps.DB.DB)
	roleRepo := persistence.NewGormRoleRepository(deps.DB.DB)
	permRepo := persistence.NewGormPermissionRepository(deps.DB.DB)

	bus := event.NewBus(log.Named("events"))
	audit := appidentity.NewAuditLogHandler(log.Named("audit"))
	bus.Subscribe(audit, audit.EventTypes()...)

	tokens := auth.NewTokenService(cfg.JWT)
	authService := appidentity.NewAuthService(userRepo, roleRepo, tokens, log.Named("auth"),
		appidentity.WithLoginThrottle(deps.Stores.Throttle),
		appidentity.WithRevocationStore(deps.Stores.Revocations),
		appidentity.WithEventPublisher(bus),
		appidentity.WithAuthMetrics(authMetrics),
	)
	permissionService := appidentity.NewPermissionService(permRepo, bus, log)
	roleService := appidentity.NewRoleService(roleRepo, permRepo, bus, log)
	userService := appidentity.NewUserService(userRepo, roleRepo, bus, log)

	systemHandler := handler.NewSystemHandler(cfg.App.Name, deps.Version, deps.DB)
	handlers := router.Handlers{
		Auth:        handler.NewAuthHandler(authService, cfg.Cookie),
		Permissions: handler.NewPermissionHandler(permissionService),
		Roles:       handler.NewRoleHandler(roleService),
		Users:       handler.NewUserHandler(userService),
		System:      systemHandler,
	}
	guard := middleware.NewGuard(authService, log, authMetrics)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, fmt.Errorf("set trusted proxies: %w", err)
	}

	s := &Server{
		cfg:          cfg,
		logger:       log,
		engine:       engine,
		bus:          bus,
		bootstrapper: appidentity.NewBootstrapper(permRepo, roleRepo, userRepo, cfg.Bootstrap, log),
		guard:        guard,
		groups:       router.APIGroups(guard, handlers),
	}

	// RequestID runs first so every later middleware can log it. Tracing
	// wraps the rest of the chain, SpanStatus must run inside its span.
	engine.Use(middleware.RequestID())
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		Enabled:        cfg.Telemetry.Enabled,
		TracerProvider: deps.TracerProvider,
	}))
	engine.Use(middleware.SpanStatus())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.SecurityHeaders(middleware.DefaultSecurityConfig()))
	engine.Use(middleware.CORS(corsConfig(cfg.HTTP)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if cfg.HTTP.RateLimitEnabled {
		s.limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(s.limiter))
	}
	engine.Use(middleware.HTTPMetrics(meter))
	engine.Use(middleware.Profiling("/health", "/swagger"))

	engine.GET("/health", systemHandler.Health)
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:    cfg.Swagger.Enabled,
			AllowedIPs: cfg.Swagger.AllowedIPs,
		}),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)
	engine.NoRoute(systemHandler.NoRoute)

	s.api = router.NewRouter(engine)
	for _, g := range s.groups {
		s.api.Register(g)
	}
	s.api.Setup()

	s.httpServer = &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	return s, nil
}

func corsConfig(cfg config.HTTPConfig) middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.CORSAllowOrigins
	if len(cfg.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.CORSAllowMethods
	}
	if len(cfg.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.CORSAllowHeaders
	}
	return cors
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Guard returns the authorization guard shared by every protected route
func (s *Server) Guard() *middleware.Guard {
	return s.guard
}

// Mount registers further route groups below the API prefix. Groups
// without a guard of their own get the server's.
func (s *Server) Mount(groups ...*router.DomainGroup) {
	api := s.engine.Group(s.api.BasePath())
	for _, g := range groups {
		if g.Guard() == nil {
			g.WithGuard(s.guard)
		}
		g.RegisterRoutes(api)
		s.groups = append(s.groups, g)
	}
}

// Routes lists every API route below the version prefix with its access rule
func (s *Server) Routes() []router.RouteInfo {
	var out []router.RouteInfo
	for _, g := range s.groups {
		out = append(out, g.Routes()...)
	}
	return out
}

// Bootstrap seeds the permission catalog and the configured administrator
func (s *Server) Bootstrap(ctx context.Context) error {
	return s.bootstrapper.Run(ctx)
}

// Start starts the event bus and serves HTTP until Shutdown is called.
// It returns nil after a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	if err := s.bus.Start(ctx); err != nil {
		return fmt.Errorf("start event bus: %w", err)
	}
	// Builds the stand-in hash so the first login for an unknown email is
	// not slower than the rest.
	go identity.RejectPassword("")

	s.logger.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests, then stops the rate limiter sweeper and
// the event bus
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.limiter != nil {
		s.limiter.Stop()
	}
	if busErr := s.bus.Stop(ctx); busErr != nil {
		s.logger.Warn("Event bus did not stop cleanly", zap.Error(busErr))
	}
	return err
}
