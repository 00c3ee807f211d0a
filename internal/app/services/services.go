// Package services implements the consultation scheduling operations on top of
// the repositories.
//
// Services defined in this package:
//   - AuthService: registration, login, session verification and logout
//   - FacultyStatusService: faculty availability listing and updates
//   - ConsultationService: booking, listing and the consultation lifecycle
//   - AdminService: faculty account management, user listing and reports
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/uniconsult/internal/app/models"
	"github.com/yigit/uniconsult/internal/app/repositories"
	"github.com/yigit/uniconsult/internal/pkg/apperrors"
	"github.com/yigit/uniconsult/internal/pkg/auth"
)

// StatusPublisher receives status feed events. Implemented by the websocket hub.
type StatusPublisher interface {
	Publish(eventType string, payload interface{})
}

// Feed event types
const (
	EventFacultyStatus  = "faculty_status"
	EventFacultyRemoved = "faculty_removed"
)

type nopPublisher struct{}

func (nopPublisher) Publish(string, interface{}) {}

// createAccount hashes password and stores u, mapping uniqueness failures to
// user-facing conflicts. Faculty accounts get their Offline status from the repository.
func createAccount(ctx context.Context, users repositories.IUserRepository, u *models.User, password string, logger zerolog.Logger) error {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Name == "" || u.Email == "" || password == "" {
		return apperrors.NewValidationError("Name, email and password are required")
	}

	exists, err := users.EmailExists(ctx, u.Email)
	if err != nil {
		return fmt.Errorf("error checking email: %w", err)
	}
	if exists {
		return apperrors.NewCustomError(apperrors.ErrEmailAlreadyExists, "An account with this email already exists")
	}

	if u.IsFaculty() && u.FacultyID != nil {
		taken, err := users.FacultyIDExists(ctx, *u.FacultyID)
		if err != nil {
			return fmt.Errorf("error checking faculty id: %w", err)
		}
		if taken {
			return apperrors.NewCustomError(apperrors.ErrIdentifierExists, "Faculty ID is already in use")
		}
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	u.Password = hash

	if err := users.CreateUser(ctx, u); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrEmailAlreadyExists):
			return apperrors.NewCustomError(apperrors.ErrEmailAlreadyExists, "An account with this email already exists")
		case errors.Is(err, apperrors.ErrIdentifierExists):
			return apperrors.NewCustomError(apperrors.ErrIdentifierExists, "Faculty ID is already in use")
		}
		logger.Error().Err(err).Str("email", u.Email).Msg("Failed to create user")
		return err
	}
	return nil
}
