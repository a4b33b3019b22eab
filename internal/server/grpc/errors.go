package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/identitykeeper/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps service errors onto gRPC status codes. Storage and internal
// failures get a generic message; details only go to the log.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, "authentication failed")
	case errors.Is(err, common.ErrAccessDenied):
		return status.Error(codes.PermissionDenied, "access denied")
	case errors.Is(err, common.ErrFederatedAccount):
		return status.Error(codes.FailedPrecondition, common.ErrFederatedAccount.Error())
	case errors.Is(err, common.ErrorValidation), errors.Is(err, common.ErrMissingEmail):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, "email is already taken")
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	default:
		s.logger.Error(ctx, "request failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}
