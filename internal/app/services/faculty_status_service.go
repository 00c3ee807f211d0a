package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	authz "github.com/yigit/uniconsult/internal/app/auth"
	"github.com/yigit/uniconsult/internal/app/models"
	"github.com/yigit/uniconsult/internal/app/models/dto"
	"github.com/yigit/uniconsult/internal/app/repositories"
	"github.com/yigit/uniconsult/internal/pkg/apperrors"
	"github.com/yigit/uniconsult/internal/pkg/metrics"
)

// FacultyStatusService manages faculty availability
type FacultyStatusService interface {
	ListStatuses(ctx context.Context) ([]*models.FacultyStatus, error)
	// SetStatus overwrites the availability of facultyID. Setting the same value
	// twice is harmless; last_updated never decreases.
	SetStatus(ctx context.Context, p authz.Principal, facultyID int64, status models.AvailabilityStatus) (*models.FacultyStatus, error)
}

type facultyStatusServiceImpl struct {
	userRepo   repositories.IUserRepository
	statusRepo repositories.IFacultyStatusRepository
	publisher  StatusPublisher
	logger     zerolog.Logger
	now        func() time.Time
}

// NewFacultyStatusService creates a new FacultyStatusService. publisher may be nil.
func NewFacultyStatusService(
	userRepo repositories.IUserRepository,
	statusRepo repositories.IFacultyStatusRepository,
	publisher StatusPublisher,
	logger zerolog.Logger,
) FacultyStatusService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &facultyStatusServiceImpl{
		userRepo:   userRepo,
		statusRepo: statusRepo,
		publisher:  publisher,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *facultyStatusServiceImpl) ListStatuses(ctx context.Context) ([]*models.FacultyStatus, error) {
	return s.statusRepo.ListStatuses(ctx)
}

func (s *facultyStatusServiceImpl) SetStatus(ctx context.Context, p authz.Principal, facultyID int64, status models.AvailabilityStatus) (*models.FacultyStatus, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("Status must be one of: Available, In Class, Offline")
	}
	if err := authz.CanSetStatus(p, facultyID); err != nil {
		return nil, err
	}

	faculty, err := s.userRepo.GetUserByID(ctx, facultyID)
	if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, err
	}
	if faculty == nil || !faculty.IsFaculty() {
		return nil, apperrors.NewResourceNotFoundError("Faculty member not found")
	}

	updated, err := s.statusRepo.Upsert(ctx, facultyID, status, s.now().UTC())
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.NewResourceNotFoundError("Faculty member not found")
		}
		return nil, err
	}
	updated.FacultyName = faculty.Name

	metrics.StatusUpdatesTotal.WithLabelValues(string(status)).Inc()
	s.publisher.Publish(EventFacultyStatus, dto.NewFacultyStatusResponse(updated))
	s.logger.Info().
		Int64("facultyID", facultyID).
		Str("status", string(status)).
		Int64("by", p.UserID).
		Msg("Faculty status updated")
	return updated, nil
}
