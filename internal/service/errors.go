package service

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/YashMarke130105/pen-perfect-playground/internal/auth"
	"github.com/YashMarke130105/pen-perfect-playground/internal/exporter"
	"github.com/YashMarke130105/pen-perfect-playground/internal/preview"
	"github.com/YashMarke130105/pen-perfect-playground/internal/storage"
	"github.com/YashMarke130105/pen-perfect-playground/pkg/api/v1/apiv1connect"
)

// toConnectError maps domain errors onto Connect codes. Errors that are
// already Connect errors pass through unchanged.
func toConnectError(err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}

	switch {
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrPermissionDenied):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, storage.ErrEmailExists), errors.Is(err, auth.ErrEmailExists):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, exporter.ErrNotHTML),
		errors.Is(err, exporter.ErrTooLarge):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrRevokedToken):
		return connect.NewError(connect.CodeUnauthenticated, err)
	case errors.Is(err, preview.ErrBusy):
		return connect.NewError(connect.CodeResourceExhausted, err)
	case errors.Is(err, preview.ErrClosed):
		return connect.NewError(connect.CodeUnavailable, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

// ProtectedProcedures are the procedures that always need a session. The
// services check again themselves; listing them lets the interceptor reject
// early with the sign-in redirect.
func ProtectedProcedures() []string {
	return []string{
		apiv1connect.AuthServiceSignOutProcedure,
		apiv1connect.AuthServiceUpdateProfileProcedure,
		apiv1connect.ProjectServiceSaveProjectProcedure,
		apiv1connect.ProjectServiceDeleteProjectProcedure,
	}
}
