// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"

	"github.com/oggyb/spotme/internal/blob"
	"github.com/oggyb/spotme/internal/entitlement"
	"github.com/oggyb/spotme/internal/identity"
	"github.com/oggyb/spotme/internal/session"
	"github.com/oggyb/spotme/internal/swipe"
	"github.com/oggyb/spotme/internal/utils/pagination"
)

// ErrRateLimited is returned by the rate limiting interceptor.
var ErrRateLimited = errors.New("too many requests, slow down")

type mapping struct {
	err  error
	code codes.Code
}

// domain errors whose own message is shown to the user
var table = []mapping{
	{identity.ErrWrongPassword, codes.Unauthenticated},
	{identity.ErrUnknownEmail, codes.Unauthenticated},
	{identity.ErrInvalidToken, codes.Unauthenticated},
	{session.ErrNotSignedIn, codes.Unauthenticated},
	{identity.ErrEmailInUse, codes.AlreadyExists},
	{entitlement.ErrUpgradeRequired, codes.PermissionDenied},
	{session.ErrOnboardingRequired, codes.FailedPrecondition},
	{swipe.ErrFeedNotLoaded, codes.FailedPrecondition},
	{swipe.ErrFeedExhausted, codes.FailedPrecondition},
	{swipe.ErrRetryable, codes.Unavailable},
	{swipe.ErrInvalidDirection, codes.InvalidArgument},
	{session.ErrInvalidUpdate, codes.InvalidArgument},
	{pagination.ErrInvalidToken, codes.InvalidArgument},
	{blob.ErrUnsupportedType, codes.InvalidArgument},
	{ErrRateLimited, codes.ResourceExhausted},
}

// Map converts repo/infra errors into gRPC-friendly status errors.
// Keeps service layer clean by centralizing error mapping.
func Map(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	for _, m := range table {
		if errors.Is(err, m.err) {
			return status.Error(m.code, err.Error())
		}
	}

	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return status.Error(codes.InvalidArgument, verrs.Error())

	case errors.Is(err, gorm.ErrRecordNotFound):
		return status.Error(codes.NotFound, "record not found")

	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request timed out")

	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request was canceled")

	default:
		// unknown storage or network failures are worth retrying
		return status.Error(codes.Unavailable, err.Error())
	}
}

// InvalidArgument creates a gRPC InvalidArgument error.
// Use this in service layer for bad input validation.
func InvalidArgument(msg string) error {
	return status.Error(codes.InvalidArgument, msg)
}

// PermissionDenied creates a gRPC PermissionDenied error.
func PermissionDenied(msg string) error {
	return status.Error(codes.PermissionDenied, msg)
}
