// Package api wires the HTTP+WebSocket surface described in spec.md §6
// ("Wire: HTTP"/"Wire: WebSocket") onto internal/service and
// internal/session. Grounded structurally on the teacher's pkg/api: one
// Server struct holding the echo instance plus every dependency as a
// field, required dependencies taken by NewServer, optional per-component
// services wired afterward via Set* setters, routes registered once up
// front in setupRoutes.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/afrodite-backend/corectl/internal/cache"
	"github.com/afrodite-backend/corectl/internal/config"
	"github.com/afrodite-backend/corectl/internal/metrics"
	"github.com/afrodite-backend/corectl/internal/service"
	"github.com/afrodite-backend/corectl/internal/session"
	"github.com/afrodite-backend/corectl/internal/store"
)

// maxUploadBytes bounds request bodies server-wide, set above the largest
// legitimate media upload to account for JSON/multipart envelope overhead,
// mirroring the teacher's BodyLimit rationale.
const maxUploadBytes = 12 * 1024 * 1024

// Server is the HTTP+WebSocket API server.
type Server struct {
	echo       *echo.Echo
	httpServer *http.Server
	cfg        *config.Config
	cache      *cache.Cache
	dbClient   *store.Client
	metrics    *metrics.Registry
	logger     *slog.Logger

	sessionStore session.Store

	accountService    *service.AccountService    // nil if components.account is disabled
	profileService    *service.ProfileService    // nil if components.profile is disabled
	mediaService      *service.MediaService      // nil if components.media is disabled
	moderationService *service.ModerationService // nil until set (admin review)
	newsService       *service.NewsService       // nil until set
}

// NewServer constructs a Server with its required dependencies wired and
// every route registered. Per-component services are attached afterward
// via the Set* methods.
func NewServer(
	cfg *config.Config,
	c *cache.Cache,
	dbClient *store.Client,
	sessionStore session.Store,
	reg *metrics.Registry,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		echo:         echo.New(),
		cfg:          cfg,
		cache:        c,
		dbClient:     dbClient,
		metrics:      reg,
		logger:       logger,
		sessionStore: sessionStore,
	}
	s.echo.HideBanner = true
	s.setupRoutes()
	return s
}

func (s *Server) SetAccountService(svc *service.AccountService)       { s.accountService = svc }
func (s *Server) SetProfileService(svc *service.ProfileService)       { s.profileService = svc }
func (s *Server) SetMediaService(svc *service.MediaService)           { s.mediaService = svc }
func (s *Server) SetModerationService(svc *service.ModerationService) { s.moderationService = svc }
func (s *Server) SetNewsService(svc *service.NewsService)             { s.newsService = svc }

// ValidateWiring checks that every service spec.md §6's `components`
// section enables for this process has actually been wired via its Set*
// method, catching a startup configuration/wiring mismatch before it
// surfaces as a 503 at request time.
func (s *Server) ValidateWiring() error {
	var errs []error
	if s.cfg.Components.Account && s.accountService == nil {
		errs = append(errs, fmt.Errorf("components.account enabled but accountService not set"))
	}
	if s.cfg.Components.Profile && s.profileService == nil {
		errs = append(errs, fmt.Errorf("components.profile enabled but profileService not set"))
	}
	if s.cfg.Components.Media && s.mediaService == nil {
		errs = append(errs, fmt.Errorf("components.media enabled but mediaService not set"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("server wiring incomplete: %w", errors.Join(errs...))
	}
	return nil
}

// setupRoutes registers every API route.
func (s *Server) setupRoutes() {
	s.echo.Use(middleware.BodyLimit(maxUploadBytes))
	s.echo.Use(securityHeaders())

	s.echo.GET("/health", s.healthHandler)

	v1 := s.echo.Group("/api/v1")
	v1.GET("/ws", s.wsHandler)

	v1.POST("/accounts", s.createAccountHandler)

	authed := v1.Group("", authAccount(s.cache))
	authed.POST("/accounts/deletion", s.requestDeletionHandler)
	authed.DELETE("/accounts/deletion", s.cancelDeletionHandler)

	authed.GET("/profile", s.getProfileHandler)
	authed.PUT("/profile", s.updateProfileHandler)

	authed.GET("/media", s.listMediaHandler)
	authed.POST("/media/:slot", s.uploadMediaHandler)
	authed.DELETE("/media/:contentId", s.deleteMediaHandler)
	authed.PUT("/media/:contentId/reference", s.setMediaReferenceHandler)

	admin := v1.Group("/admin", authAccount(s.cache), requirePermission(cache.PermissionModerator, cache.PermissionAdmin))
	admin.GET("/moderation/escalated", s.listEscalatedHandler)
	admin.POST("/moderation/resolve", s.resolveModerationHandler)
	admin.POST("/news", s.publishNewsHandler)
}

// Start begins serving on addr (spec.md §6 "socket.listen_addr"), blocking
// until the listener stops or ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.echo,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
