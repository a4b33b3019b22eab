package grpc

import (
	"context"

	"github.com/dmitrijs2005/identitykeeper/internal/api"
	"github.com/dmitrijs2005/identitykeeper/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Register(ctx context.Context, req *api.RegisterRequest) (*api.RegisterResponse, error) {

	s.logger.Info(ctx, "Registration request")

	account, err := s.sessions.Register(ctx, services.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Registered", "account_id", account.ID)
	return &api.RegisterResponse{AccountID: account.ID, Email: account.Email}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error) {

	result, err := s.sessions.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &api.LoginResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		TokenType:    result.TokenType,
		AccountID:    result.Account.ID,
		FirstName:    result.Account.FirstName,
		LastName:     result.Account.LastName,
		Email:        result.Account.Email,
		IsFederated:  result.Account.IsFederated,
	}, nil
}

func (s *GRPCServer) Logout(ctx context.Context, _ *api.LogoutRequest) (*api.LogoutResponse, error) {
	principal, ok := principalFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}

	n, err := s.sessions.Logout(ctx, principal.ID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &api.LogoutResponse{Revoked: n}, nil
}

func (s *GRPCServer) ChangePassword(ctx context.Context, req *api.ChangePasswordRequest) (*api.ChangePasswordResponse, error) {
	principal, ok := principalFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}

	if err := s.sessions.ChangePassword(ctx, principal.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &api.ChangePasswordResponse{}, nil
}

func (s *GRPCServer) GetProfile(ctx context.Context, _ *api.GetProfileRequest) (*api.ProfileResponse, error) {
	principal, ok := principalFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}

	p, err := s.sessions.Profile(ctx, principal.ID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return profileResponse(p), nil
}

func (s *GRPCServer) UpdateProfile(ctx context.Context, req *api.UpdateProfileRequest) (*api.ProfileResponse, error) {
	principal, ok := principalFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}

	p, err := s.sessions.UpdateProfile(ctx, principal.ID, req.FirstName, req.LastName)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return profileResponse(p), nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *api.PingRequest) (*api.PingResponse, error) {

	return &api.PingResponse{Status: "OK"}, nil

}

func profileResponse(p *services.AccountSummary) *api.ProfileResponse {
	return &api.ProfileResponse{
		AccountID:   p.ID,
		Email:       p.Email,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		IsFederated: p.IsFederated,
	}
}
