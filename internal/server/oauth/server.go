// Package oauth serves the browser side of federated login: it sends the
// user to the identity provider, takes the authorization code back, and
// hands the asserted identity to the session service.
package oauth

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/identitykeeper/internal/logging"
	"github.com/dmitrijs2005/identitykeeper/internal/server/services"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
)

const (
	PathAuthorize = "/oauth2/authorization/google"
	PathCallback  = "/login/oauth2/code/google"
	PathHealth    = "/healthz"

	shutdownTimeout = 5 * time.Second
)

// GoogleEndpoint and GoogleUserInfoURL point at Google's OAuth2 service.
var GoogleEndpoint = oauth2.Endpoint{
	AuthURL:   "https://accounts.google.com/o/oauth2/v2/auth",
	TokenURL:  "https://oauth2.googleapis.com/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

const GoogleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// FederatedSessions turns a provider assertion into a local session.
type FederatedSessions interface {
	FederatedLogin(ctx context.Context, a services.Assertion) (*services.LoginResult, error)
}

// Provider describes the OAuth2 client registration.
type Provider struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Endpoint     oauth2.Endpoint
	UserInfoURL  string
}

type HTTPServer struct {
	address     string
	oauth       *oauth2.Config
	userInfoURL string
	frontend    string
	sessions    FederatedSessions
	logger      logging.Logger
}

func NewHTTPServer(a string, l logging.Logger, p Provider, frontendRedirectURI string, sessions FederatedSessions) *HTTPServer {
	return &HTTPServer{
		address: a,
		oauth: &oauth2.Config{
			ClientID:     p.ClientID,
			ClientSecret: p.ClientSecret,
			RedirectURL:  p.RedirectURL,
			Endpoint:     p.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: p.UserInfoURL,
		frontend:    frontendRedirectURI,
		sessions:    sessions,
		logger:      l.With("module", "oauth_server"),
	}
}

// Handler builds the gin engine with all routes.
func (s *HTTPServer) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET(PathHealth, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	r.GET(PathAuthorize, s.authorize)
	r.GET(PathCallback, s.callback)

	return r
}

func (s *HTTPServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug(c.Request.Context(), "http",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *HTTPServer) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

// Serve accepts connections on lis until ctx is done, then shuts down.
func (s *HTTPServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
		case <-done:
			return
		}
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn(ctx, "HTTP shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
