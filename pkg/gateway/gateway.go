package gateway

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	apiv1 "github.com/loopmsg/wabridge/pkg/api/v1"
	"github.com/loopmsg/wabridge/pkg/auth"
	"github.com/loopmsg/wabridge/pkg/common"
	"github.com/loopmsg/wabridge/pkg/oauth"
	"github.com/loopmsg/wabridge/pkg/providers"
	"github.com/loopmsg/wabridge/pkg/repository"
	"github.com/loopmsg/wabridge/pkg/types"
)

const defaultShutdownTimeout = 30 * time.Second

type Gateway struct {
	Config      types.AppConfig
	BackendRepo *repository.PostgresBackend
	httpServer  *http.Server
	echo        *echo.Echo
	ctx         context.Context
	cancelFunc  context.CancelFunc

	sessions    *auth.SessionManager
	googleOAuth *oauth.GoogleClient
	resolver    *oauth.TokenResolver
	gmail       *providers.GmailClient
	calendar    *providers.CalendarClient
}

func NewGateway() (*Gateway, error) {
	configManager, err := common.NewConfigManager[types.AppConfig]()
	if err != nil {
		return nil, err
	}
	config := configManager.GetConfig()
	applyEnvOverrides(&config)

	// Setup logging
	if config.PrettyLogs {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	backendRepo, err := repository.NewPostgresBackend(config.Database.Postgres)
	if err != nil {
		return nil, err
	}
	if err := backendRepo.RunMigrations(); err != nil {
		return nil, err
	}

	googleOAuth := oauth.NewGoogleClient(config.OAuth.Google)
	if !googleOAuth.IsConfigured() {
		log.Warn().Msg("google oauth not configured, integrations will be unavailable")
	}

	ctx, cancel := context.WithCancel(context.Background())
	gateway := &Gateway{
		Config:      config,
		BackendRepo: backendRepo,
		ctx:         ctx,
		cancelFunc:  cancel,
		sessions:    auth.NewSessionManager(config.Gateway.SessionKey),
		googleOAuth: googleOAuth,
		resolver:    oauth.NewTokenResolver(googleOAuth, backendRepo),
		gmail:       providers.NewGmailClient(config.Providers.Gmail),
		calendar:    providers.NewCalendarClient(config.Providers.Calendar),
	}

	return gateway, nil
}

// applyEnvOverrides lets deployments pass secrets via the environment
// instead of the config file
func applyEnvOverrides(config *types.AppConfig) {
	if v := os.Getenv("GOOGLE_CLIENT_ID"); v != "" {
		config.OAuth.Google.ClientID = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_SECRET"); v != "" {
		config.OAuth.Google.ClientSecret = v
	}
	if v := os.Getenv("APP_URL"); v != "" {
		config.AppURL = v
	}
	if v := os.Getenv("SESSION_KEY"); v != "" {
		config.Gateway.SessionKey = v
	}
}

func (g *Gateway) initHTTP() error {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Pre(middleware.RemoveTrailingSlash())

	if g.Config.Gateway.HTTP.EnablePrettyLogs {
		e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
			Format: "${time_rfc3339} ${method} ${uri} ${status} ${latency_human}\n",
		}))
	}

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: g.Config.Gateway.HTTP.CORS.AllowedOrigins,
		AllowHeaders: g.Config.Gateway.HTTP.CORS.AllowedHeaders,
		AllowMethods: g.Config.Gateway.HTTP.CORS.AllowedMethods,
	}))

	e.Use(middleware.Recover())

	g.echo = e
	g.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", g.Config.Gateway.HTTP.Host, g.Config.Gateway.HTTP.Port),
		Handler: e,
	}

	base := e.Group(apiv1.HttpServerBaseRoute)
	sessionMW := apiv1.NewSessionAuthMiddleware(g.sessions, g.BackendRepo)

	apiv1.NewHealthGroup(base.Group("/health"), g.BackendRepo)
	apiv1.NewOAuthGroup(base, g.googleOAuth, g.BackendRepo, g.sessions, g.Config.AppURL, sessionMW)

	secured := e.Group(apiv1.HttpServerBaseRoute, sessionMW)
	apiv1.NewGmailGroup(secured, g.BackendRepo, g.resolver, g.gmail)
	apiv1.NewCalendarGroup(secured, g.BackendRepo, g.resolver, g.calendar)
	apiv1.NewConnectionGroup(secured, g.BackendRepo)
	apiv1.NewPinGroup(secured, g.BackendRepo)

	return nil
}

// StartAsync starts the HTTP server without blocking
func (g *Gateway) StartAsync() error {
	if err := g.initHTTP(); err != nil {
		return err
	}

	go func() {
		if err := g.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server failed")
		}
	}()

	log.Info().
		Str("host", g.Config.Gateway.HTTP.Host).
		Int("port", g.Config.Gateway.HTTP.Port).
		Msg("gateway http server running")

	return nil
}

// Start runs the gateway until a termination signal arrives
func (g *Gateway) Start() error {
	if err := g.StartAsync(); err != nil {
		return err
	}

	terminationSignal := make(chan os.Signal, 1)
	signal.Notify(terminationSignal, os.Interrupt, syscall.SIGTERM)
	<-terminationSignal

	log.Info().Msg("termination signal received. shutting down...")
	g.shutdown()

	return nil
}

// Shutdown gracefully shuts down the gateway (exported for external use)
func (g *Gateway) Shutdown() {
	g.shutdown()
}

func (g *Gateway) shutdown() {
	timeout := g.Config.Gateway.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return g.httpServer.Shutdown(ctx)
	})

	if g.BackendRepo != nil {
		eg.Go(func() error {
			return g.BackendRepo.Close()
		})
	}

	g.cancelFunc()

	if err := eg.Wait(); err != nil {
		log.Error().Err(err).Msg("failed to shutdown gateway gracefully")
	}

	log.Info().Msg("gateway stopped")
}
