package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/uniconsult/internal/app/models"
	"github.com/yigit/uniconsult/internal/app/models/dto"
	"github.com/yigit/uniconsult/internal/app/repositories"
	"github.com/yigit/uniconsult/internal/pkg/apperrors"
	"github.com/yigit/uniconsult/internal/pkg/auth"
	"github.com/yigit/uniconsult/internal/pkg/metrics"
)

// Session is a verified identity resolved from a token
type Session struct {
	ID   uuid.UUID
	User *models.User
}

// AuthService handles authentication operations
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	// Authenticate verifies the token signature, the live session row and loads
	// the current user. Any failure is an authentication error.
	Authenticate(ctx context.Context, token string) (*Session, error)
	Logout(ctx context.Context, sessionID uuid.UUID) error
	Me(ctx context.Context, userID int64) (*models.User, error)
	CleanupSessions(ctx context.Context) (int64, error)
}

type authServiceImpl struct {
	userRepo    repositories.IUserRepository
	sessionRepo repositories.ISessionRepository
	jwtService  *auth.JWTService
	logger      zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repositories.IUserRepository,
	sessionRepo repositories.ISessionRepository,
	jwtService *auth.JWTService,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		jwtService:  jwtService,
		logger:      logger,
	}
}

// Register creates a student or faculty account
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*models.User, error) {
	if !req.Role.CanSelfRegister() {
		return nil, apperrors.NewValidationError("Role must be either student or faculty")
	}

	u := req.NewUser()
	if err := createAccount(ctx, s.userRepo, u, req.Password, s.logger); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("userID", u.ID).
		Str("email", u.Email).
		Str("role", string(u.RoleType)).
		Msg("User registered")
	return u, nil
}

// Login checks credentials and opens a session
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("invalid").Inc()
			return nil, apperrors.NewUnauthorizedError("Invalid credentials")
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		s.logger.Warn().Str("email", email).Msg("Password mismatch")
		return nil, apperrors.NewUnauthorizedError("Invalid credentials")
	}

	session := &models.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		ExpiresAt: s.jwtService.SessionExpiry(),
	}
	if err := s.sessionRepo.CreateSession(ctx, session); err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("error creating session: %w", err)
	}

	token, err := s.jwtService.GenerateSessionToken(user, session.ID, session.ExpiresAt)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.logger.Info().Int64("userID", user.ID).Str("sessionID", session.ID.String()).Msg("User logged in")

	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   int64(time.Until(session.ExpiresAt).Seconds()),
			ExpiresAt:   session.ExpiresAt.UTC(),
		},
		User: dto.NewUserResponse(user),
	}, nil
}

// Authenticate resolves a token into a verified session
func (s *authServiceImpl) Authenticate(ctx context.Context, token string) (*Session, error) {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	sessionID, err := claims.SessionID()
	if err != nil {
		return nil, err
	}

	session, err := s.sessionRepo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != claims.UserID {
		s.logger.Warn().Str("sessionID", sessionID.String()).Int64("claimedUserID", claims.UserID).Msg("Token user does not own session")
		return nil, apperrors.ErrTokenInvalid
	}

	// Role comes from the store, not from the token
	user, err := s.userRepo.GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrUnauthenticated
		}
		return nil, err
	}
	return &Session{ID: session.ID, User: user}, nil
}

// Logout revokes the session
func (s *authServiceImpl) Logout(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.sessionRepo.RevokeSession(ctx, sessionID); err != nil {
		return err
	}
	s.logger.Info().Str("sessionID", sessionID.String()).Msg("Session revoked")
	return nil
}

// Me returns the current user
func (s *authServiceImpl) Me(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.NewResourceNotFoundError("User not found")
		}
		return nil, err
	}
	return user, nil
}

// CleanupSessions deletes expired sessions
func (s *authServiceImpl) CleanupSessions(ctx context.Context) (int64, error) {
	return s.sessionRepo.CleanupExpiredSessions(ctx)
}
