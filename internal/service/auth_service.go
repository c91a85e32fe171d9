package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/YashMarke130105/pen-perfect-playground/internal/auth"
	"github.com/YashMarke130105/pen-perfect-playground/internal/middleware"
	"github.com/YashMarke130105/pen-perfect-playground/internal/models"
	"github.com/YashMarke130105/pen-perfect-playground/internal/session"
	"github.com/YashMarke130105/pen-perfect-playground/internal/storage"
	v1 "github.com/YashMarke130105/pen-perfect-playground/pkg/api/v1"
	"github.com/YashMarke130105/pen-perfect-playground/pkg/api/v1/apiv1connect"
)

var errUsernameRequired = errors.New("username is required")

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	apiv1connect.UnimplementedAuthServiceHandler

	authenticator auth.Authenticator
	users         storage.UserStore
	sessions      *auth.Sessions
	hub           *session.Hub
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, users storage.UserStore, sessions *auth.Sessions, hub *session.Hub, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		users:         users,
		sessions:      sessions,
		hub:           hub,
		logger:        logger,
	}
}

// SignUp creates a new account and signs it in.
func (s *AuthService) SignUp(ctx context.Context, req *connect.Request[v1.SignUpRequest]) (*connect.Response[v1.SignUpResponse], error) {
	s.logger.Info("SignUp request", "email", req.Msg.Email)

	if req.Msg.Email == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, auth.ErrInvalidCredentials)
	}
	if err := s.authenticator.ValidateCredential(req.Msg.Password); err != nil {
		return nil, toConnectError(err)
	}
	username := CleanText(req.Msg.Username)
	if username == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errUsernameRequired)
	}

	user, err := s.authenticator.Register(ctx, req.Msg.Email, username, req.Msg.Password)
	if err != nil {
		s.logger.Error("Sign-up failed", "email", req.Msg.Email, "error", err)
		return nil, toConnectError(err)
	}

	token, err := s.sessions.Issue(user)
	if err != nil {
		s.logger.Error("Failed to issue token", "user_id", user.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.publish(session.EventSignedUp, user)
	s.logger.Info("User signed up", "user_id", user.ID)

	return connect.NewResponse(&v1.SignUpResponse{
		Account: accountToProto(user),
		Token:   token,
	}), nil
}

// SignIn authenticates a user and returns a session token.
func (s *AuthService) SignIn(ctx context.Context, req *connect.Request[v1.SignInRequest]) (*connect.Response[v1.SignInResponse], error) {
	s.logger.Info("SignIn request", "email", req.Msg.Email)

	user, err := s.authenticator.Authenticate(ctx, req.Msg.Email, req.Msg.Password)
	if err != nil {
		s.logger.Warn("Sign-in failed", "email", req.Msg.Email)
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidCredentials)
	}

	token, err := s.sessions.Issue(user)
	if err != nil {
		s.logger.Error("Failed to issue token", "user_id", user.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.publish(session.EventSignedIn, user)
	s.logger.Info("User signed in", "user_id", user.ID)

	return connect.NewResponse(&v1.SignInResponse{
		Account: accountToProto(user),
		Token:   token,
	}), nil
}

// SignOut revokes the presented session token.
func (s *AuthService) SignOut(ctx context.Context, req *connect.Request[v1.SignOutRequest]) (*connect.Response[v1.SignOutResponse], error) {
	claims := middleware.GetClaims(ctx)
	if claims == nil {
		return nil, middleware.Unauthenticated(auth.ErrMissingToken)
	}

	if err := s.sessions.Revoke(ctx, claims); err != nil {
		s.logger.Error("Failed to revoke token", "user_id", claims.UserID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.hub.Publish(session.Event{
		Type:    session.EventSignedOut,
		UserID:  claims.UserID,
		TokenID: claims.ID,
		At:      time.Now(),
	})
	s.logger.Info("User signed out", "user_id", claims.UserID)

	return connect.NewResponse(&v1.SignOutResponse{}), nil
}

// GetSession returns the signed-in account. A signed-out caller is not an
// error; the response just reports SignedIn false.
func (s *AuthService) GetSession(ctx context.Context, req *connect.Request[v1.GetSessionRequest]) (*connect.Response[v1.GetSessionResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return connect.NewResponse(&v1.GetSessionResponse{}), nil
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return connect.NewResponse(&v1.GetSessionResponse{}), nil
	}
	if err != nil {
		s.logger.Error("GetSession failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&v1.GetSessionResponse{
		SignedIn: true,
		Account:  accountToProto(user),
	}), nil
}

// UpdateProfile changes the caller's username.
func (s *AuthService) UpdateProfile(ctx context.Context, req *connect.Request[v1.UpdateProfileRequest]) (*connect.Response[v1.UpdateProfileResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, middleware.Unauthenticated(auth.ErrMissingToken)
	}

	username := CleanText(req.Msg.Username)
	if username == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errUsernameRequired)
	}

	user, err := s.users.UpdateUsername(ctx, userID, username)
	if err != nil {
		s.logger.Error("UpdateProfile failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	s.publish(session.EventProfileUpdated, user)
	s.logger.Info("Profile updated", "user_id", user.ID)

	return connect.NewResponse(&v1.UpdateProfileResponse{Account: accountToProto(user)}), nil
}

func (s *AuthService) publish(kind session.EventType, user *models.User) {
	s.hub.Publish(session.Event{
		Type:     kind,
		UserID:   user.ID,
		Username: user.Username,
		At:       time.Now(),
	})
}
