// Package grpc exposes the session service over gRPC with the JSON codec.
package grpc

import (
	"context"
	"errors"
	"net"

	"github.com/dmitrijs2005/identitykeeper/internal/api"
	"github.com/dmitrijs2005/identitykeeper/internal/logging"
	"github.com/dmitrijs2005/identitykeeper/internal/server/models"
	"github.com/dmitrijs2005/identitykeeper/internal/server/services"
	"google.golang.org/grpc"
)

// Sessions is the part of services.SessionService the RPC surface uses.
type Sessions interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.Account, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	Logout(ctx context.Context, accountID string) (int64, error)
	ChangePassword(ctx context.Context, accountID, currentPassword, newPassword string) error
	Profile(ctx context.Context, accountID string) (*services.AccountSummary, error)
	ProfileByEmail(ctx context.Context, email string) (*services.AccountSummary, error)
	UpdateProfile(ctx context.Context, accountID string, firstName, lastName *string) (*services.AccountSummary, error)
}

// TokenAuthenticator validates an access token and returns its subject.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

type GRPCServer struct {
	address  string
	sessions Sessions
	tokens   TokenAuthenticator
	logger   logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, sessions Sessions, tokens TokenAuthenticator) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		sessions: sessions,
		tokens:   tokens,
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	api.RegisterSessionServiceServer(srv, s)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Stopping gRPC server...")
			srv.GracefulStop()
		case <-done:
		}
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}

	return nil
}
