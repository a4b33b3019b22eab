// Package server wires storage, token issuance and the session service
// together and runs the gRPC and OAuth2 HTTP endpoints until shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/identitykeeper/internal/logging"
	"github.com/dmitrijs2005/identitykeeper/internal/server/auth"
	"github.com/dmitrijs2005/identitykeeper/internal/server/config"
	"github.com/dmitrijs2005/identitykeeper/internal/server/oauth"
	"github.com/dmitrijs2005/identitykeeper/internal/server/passwords"
	"github.com/dmitrijs2005/identitykeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/identitykeeper/internal/server/services"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/identitykeeper/internal/server/grpc"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	grpcServer  *gs.GRPCServer
	httpServer  *oauth.HTTPServer
}

func NewApp(c *config.Config) (*App, error) {

	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	return newApp(c, logger, db, repomanager.NewPostgresRepositoryManager()), nil
}

func newApp(c *config.Config, logger logging.Logger, db *sql.DB, m repomanager.RepositoryManager) *App {

	hasher := passwords.NewBcryptHasher(bcrypt.DefaultCost)
	keys := auth.NewKeyManager(c.SecretKey, logger)
	recorder := services.NewTokenRecorder(db, m, logger)
	tokens := auth.NewTokenService(keys, recorder, c.AccessTokenValidityDuration, c.RefreshTokenValidityDuration, logger)
	reconciler := services.NewIdentityReconciler(db, m, hasher, logger)
	sessions := services.NewSessionService(db, m, tokens, hasher, reconciler, logger)

	provider := oauth.Provider{
		ClientID:     c.GoogleClientID,
		ClientSecret: c.GoogleClientSecret,
		RedirectURL:  c.GoogleRedirectURL,
		Endpoint:     oauth.GoogleEndpoint,
		UserInfoURL:  oauth.GoogleUserInfoURL,
	}

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		repomanager: m,
		grpcServer:  gs.NewGRPCServer(c.EndpointAddrGRPC, logger, sessions, tokens),
		httpServer:  oauth.NewHTTPServer(c.EndpointAddrHTTP, logger, provider, c.OAuth2RedirectURI, sessions),
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run applies migrations, then serves gRPC and HTTP until ctx is cancelled,
// a shutdown signal arrives, or either server fails.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.db.Close()

	app.initSignalHandler(cancelFunc)

	app.logger.Info(ctx, "Starting app...")

	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		app.logger.Error(ctx, "migrations failed", "error", err)
		return fmt.Errorf("migrations: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.grpcServer.Run(gctx) })
	g.Go(func() error { return app.httpServer.Run(gctx) })

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, "server stopped with error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
	return err
}
