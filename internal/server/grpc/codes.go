package grpc

import (
	"errors"

	"github.com/dstepanenko/tasktrack/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// MapError translates the core error taxonomy into a wire status. The choice
// of error kind is made by the services; this mapping only reshapes it.
// Ownership mismatches arrive here already collapsed into
// common.ErrorNotFound, so they map to NotFound like any missing resource.
func MapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrorConflict):
		return status.Error(codes.AlreadyExists, "already exists")
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrWrongTokenKind),
		errors.Is(err, common.ErrUnknownSubject):
		return status.Error(codes.Unauthenticated, "unauthorized")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
