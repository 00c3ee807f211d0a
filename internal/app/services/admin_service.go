package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/yigit/uniconsult/internal/app/models"
	"github.com/yigit/uniconsult/internal/app/models/dto"
	"github.com/yigit/uniconsult/internal/app/repositories"
	"github.com/yigit/uniconsult/internal/pkg/apperrors"
)

// AdminService groups administrator operations
type AdminService interface {
	ListFaculty(ctx context.Context) ([]*models.User, error)
	CreateFaculty(ctx context.Context, req *dto.CreateFacultyRequest) (*models.User, error)
	// DeleteFaculty removes a faculty account together with its status and consultations
	DeleteFaculty(ctx context.Context, id int64) error
	ListUsers(ctx context.Context) ([]*models.User, error)
	ConsultationReport(ctx context.Context, facultyID int64, status models.ConsultationStatus) (*models.ConsultationReport, error)
}

type adminServiceImpl struct {
	userRepo         repositories.IUserRepository
	statusRepo       repositories.IFacultyStatusRepository
	consultationRepo repositories.IConsultationRepository
	publisher        StatusPublisher
	logger           zerolog.Logger
}

// NewAdminService creates a new AdminService. publisher may be nil.
func NewAdminService(
	userRepo repositories.IUserRepository,
	statusRepo repositories.IFacultyStatusRepository,
	consultationRepo repositories.IConsultationRepository,
	publisher StatusPublisher,
	logger zerolog.Logger,
) AdminService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &adminServiceImpl{
		userRepo:         userRepo,
		statusRepo:       statusRepo,
		consultationRepo: consultationRepo,
		publisher:        publisher,
		logger:           logger,
	}
}

func (s *adminServiceImpl) ListFaculty(ctx context.Context) ([]*models.User, error) {
	return s.userRepo.ListByRole(ctx, models.RoleFaculty)
}

func (s *adminServiceImpl) CreateFaculty(ctx context.Context, req *dto.CreateFacultyRequest) (*models.User, error) {
	u := req.NewUser()
	if err := createAccount(ctx, s.userRepo, u, req.Password, s.logger); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("userID", u.ID).Str("email", u.Email).Msg("Faculty account created")
	return u, nil
}

func (s *adminServiceImpl) DeleteFaculty(ctx context.Context, id int64) error {
	u, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
		return err
	}
	if !u.IsFaculty() {
		return apperrors.NewResourceNotFoundError("Faculty member not found")
	}

	if err := s.userRepo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return apperrors.NewResourceNotFoundError("Faculty member not found")
		}
		return err
	}

	s.publisher.Publish(EventFacultyRemoved, map[string]int64{"faculty_id": id})
	s.logger.Info().Int64("facultyID", id).Msg("Faculty account deleted")
	return nil
}

func (s *adminServiceImpl) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.userRepo.ListUsers(ctx)
}

func (s *adminServiceImpl) ConsultationReport(ctx context.Context, facultyID int64, status models.ConsultationStatus) (*models.ConsultationReport, error) {
	if status != "" && !status.Valid() {
		return nil, apperrors.NewValidationError("Status must be one of: Scheduled, Cancelled, Completed")
	}

	list, err := s.consultationRepo.List(ctx, models.ConsultationFilter{FacultyID: facultyID, Status: status})
	if err != nil {
		return nil, err
	}
	statuses, err := s.statusRepo.ListStatuses(ctx)
	if err != nil {
		return nil, err
	}
	return models.NewConsultationReport(list, statuses), nil
}
