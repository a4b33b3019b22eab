package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/identitykeeper/internal/api"
	"github.com/dmitrijs2005/identitykeeper/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Session is what the server told us about the logged-in account.
type Session struct {
	AccountID   string
	Email       string
	FirstName   string
	LastName    string
	IsFederated bool
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      *api.SessionServiceClient

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AuthorizationHeaderName, common.TokenType+" "+token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	if token := s.AccessToken(); token != "" {
		ctx = withAccessToken(ctx, token)
	}

	err := invoker(ctx, method, req, reply, cc, opts...)

	// There is no refresh endpoint, so an expired access token ends the session.
	if st, ok := status.FromError(err); ok && st.Code() == codes.Unauthenticated && st.Message() == common.ErrTokenExpired.Error() {
		s.clearTokens()
	}

	return err
}

func NewGRPCClient(endpointURL string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	if err := c.initGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) initGRPCClient(opts ...grpc.DialOption) error {

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = api.NewSessionServiceClient(conn)
	return nil
}

func (s *GRPCClient) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

func (s *GRPCClient) LoggedIn() bool {
	return s.AccessToken() != ""
}

func (s *GRPCClient) setTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken, s.refreshToken = access, refresh
}

func (s *GRPCClient) clearTokens() {
	s.setTokens("", "")
}

func (s *GRPCClient) Register(ctx context.Context, firstName, lastName, email, password string) (string, error) {

	req := &api.RegisterRequest{FirstName: firstName, LastName: lastName, Email: email, Password: password}

	resp, err := s.client.Register(ctx, req)
	if err != nil {
		return "", s.mapError(err)
	}

	return resp.AccountID, nil
}

// Login authenticates with email and password and keeps the issued tokens.
func (s *GRPCClient) Login(ctx context.Context, email, password string) (*Session, error) {

	resp, err := s.client.Login(ctx, &api.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, s.mapError(err)
	}

	s.setTokens(resp.AccessToken, resp.RefreshToken)

	return &Session{
		AccountID:   resp.AccountID,
		Email:       resp.Email,
		FirstName:   resp.FirstName,
		LastName:    resp.LastName,
		IsFederated: resp.IsFederated,
	}, nil
}

// Logout revokes every refresh token of the account server-side and drops
// the local tokens. The local tokens are dropped even if the call fails.
func (s *GRPCClient) Logout(ctx context.Context) (int64, error) {
	if !s.LoggedIn() {
		return 0, ErrNotLoggedIn
	}
	defer s.clearTokens()

	resp, err := s.client.Logout(ctx, &api.LogoutRequest{})
	if err != nil {
		return 0, s.mapError(err)
	}
	return resp.Revoked, nil
}

func (s *GRPCClient) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	if !s.LoggedIn() {
		return ErrNotLoggedIn
	}

	req := &api.ChangePasswordRequest{CurrentPassword: currentPassword, NewPassword: newPassword}
	if _, err := s.client.ChangePassword(ctx, req); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) Profile(ctx context.Context) (*Session, error) {
	if !s.LoggedIn() {
		return nil, ErrNotLoggedIn
	}

	resp, err := s.client.GetProfile(ctx, &api.GetProfileRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return profileSession(resp), nil
}

// UpdateProfile changes the names that are non-nil.
func (s *GRPCClient) UpdateProfile(ctx context.Context, firstName, lastName *string) (*Session, error) {
	if !s.LoggedIn() {
		return nil, ErrNotLoggedIn
	}

	resp, err := s.client.UpdateProfile(ctx, &api.UpdateProfileRequest{FirstName: firstName, LastName: lastName})
	if err != nil {
		return nil, s.mapError(err)
	}
	return profileSession(resp), nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {

	resp, err := s.client.Ping(ctx, &api.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}

	if resp.Status != "OK" {
		return ErrUnavailable
	}

	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func profileSession(p *api.ProfileResponse) *Session {
	return &Session{
		AccountID:   p.AccountID,
		Email:       p.Email,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		IsFederated: p.IsFederated,
	}
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.FailedPrecondition:
		return common.ErrFederatedAccount
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", common.ErrorValidation, st.Message())
	case codes.AlreadyExists:
		return common.ErrorAlreadyExists
	case codes.NotFound:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
