package grpc

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/identitykeeper/internal/api"
	"github.com/dmitrijs2005/identitykeeper/internal/common"
	"github.com/dmitrijs2005/identitykeeper/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const principalKey ctxKey = "principal"

// publicMethods can be called without an access token.
var publicMethods = map[string]struct{}{
	api.FullMethodRegister: {},
	api.FullMethodLogin:    {},
	api.FullMethodPing:     {},
}

// principalFromContext returns the account attached by accessTokenInterceptor.
func principalFromContext(ctx context.Context) (*services.AccountSummary, bool) {
	p, ok := ctx.Value(principalKey).(*services.AccountSummary)
	return p, ok && p != nil
}

// bearerToken reads the access token from "authorization: Bearer <jwt>" or,
// failing that, from "access_token".
func bearerToken(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	for _, v := range md.Get(common.AuthorizationHeaderName) {
		if len(v) > len(common.TokenType) && strings.EqualFold(v[:len(common.TokenType)+1], common.TokenType+" ") {
			return strings.TrimSpace(v[len(common.TokenType)+1:])
		}
	}
	if values := md.Get(common.AccessTokenHeaderName); len(values) > 0 {
		return strings.TrimSpace(values[0])
	}
	return ""
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	if _, public := publicMethods[info.FullMethod]; public {
		return handler(ctx, req)
	}

	accessToken := bearerToken(ctx)
	if accessToken == "" {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	subject, err := s.tokens.Authenticate(ctx, accessToken)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, status.Error(codes.Unauthenticated, "token expired")
		}
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	principal, err := s.sessions.ProfileByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, status.Error(codes.Unauthenticated, "unknown account")
		}
		return nil, s.toStatus(ctx, err)
	}

	return handler(context.WithValue(ctx, principalKey, principal), req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Debug(ctx, "rpc", "method", info.FullMethod, "code", status.Code(err).String(), "duration", time.Since(start))
	return resp, err
}
