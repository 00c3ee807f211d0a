package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	authz "github.com/yigit/uniconsult/internal/app/auth"
	"github.com/yigit/uniconsult/internal/app/models"
	"github.com/yigit/uniconsult/internal/app/repositories"
	"github.com/yigit/uniconsult/internal/pkg/apperrors"
	"github.com/yigit/uniconsult/internal/pkg/email"
	"github.com/yigit/uniconsult/internal/pkg/lock"
	"github.com/yigit/uniconsult/internal/pkg/metrics"
)

const lockPollInterval = 25 * time.Millisecond

// BookingOptions tunes slot locking and the completion sweep
type BookingOptions struct {
	LockTTL       time.Duration
	LockWait      time.Duration
	// TxTimeout bounds the check-and-insert transaction. Keep it below LockTTL.
	TxTimeout     time.Duration
	CompleteGrace time.Duration
}

// ListParams selects consultations. Exactly one of StudentID, FacultyID or All must be set.
type ListParams struct {
	authz.ListScope
	Status models.ConsultationStatus
}

// ConsultationService handles consultation booking and lifecycle
type ConsultationService interface {
	List(ctx context.Context, p authz.Principal, params ListParams) ([]*models.Consultation, error)
	Book(ctx context.Context, p authz.Principal, studentID, facultyID int64, at time.Time) (*models.Consultation, error)
	Cancel(ctx context.Context, p authz.Principal, id int64, reason string, by models.RoleType) (*models.Consultation, error)
	Complete(ctx context.Context, p authz.Principal, id int64) (*models.Consultation, error)
	// CompleteElapsed completes Scheduled consultations older than the grace period
	CompleteElapsed(ctx context.Context) (int64, error)
}

type consultationServiceImpl struct {
	userRepo         repositories.IUserRepository
	consultationRepo repositories.IConsultationRepository
	locker           lock.Locker
	mailer           email.EmailService
	opts             BookingOptions
	logger           zerolog.Logger
	now              func() time.Time
}

// NewConsultationService creates a new ConsultationService
func NewConsultationService(
	userRepo repositories.IUserRepository,
	consultationRepo repositories.IConsultationRepository,
	locker lock.Locker,
	mailer email.EmailService,
	opts BookingOptions,
	logger zerolog.Logger,
) ConsultationService {
	return &consultationServiceImpl{
		userRepo:         userRepo,
		consultationRepo: consultationRepo,
		locker:           locker,
		mailer:           mailer,
		opts:             opts,
		logger:           logger,
		now:              time.Now,
	}
}

func scopeCount(s authz.ListScope) int {
	n := 0
	if s.StudentID != 0 {
		n++
	}
	if s.FacultyID != 0 {
		n++
	}
	if s.All {
		n++
	}
	return n
}

// List returns the consultations a caller may see, newest slot first
func (s *consultationServiceImpl) List(ctx context.Context, p authz.Principal, params ListParams) ([]*models.Consultation, error) {
	switch scopeCount(params.ListScope) {
	case 0:
		return nil, apperrors.NewValidationError("One of student_id, faculty_id or all=true is required")
	case 1:
	default:
		return nil, apperrors.NewValidationError("Only one of student_id, faculty_id or all=true may be given")
	}
	if params.Status != "" && !params.Status.Valid() {
		return nil, apperrors.NewValidationError("Status must be one of: Scheduled, Cancelled, Completed")
	}
	if err := authz.CanListConsultations(p, params.ListScope); err != nil {
		return nil, err
	}

	return s.consultationRepo.List(ctx, models.ConsultationFilter{
		StudentID: params.StudentID,
		FacultyID: params.FacultyID,
		Status:    params.Status,
	})
}

func slotLockKey(facultyID int64, slot time.Time) string {
	return fmt.Sprintf("consultation:%d:%d", facultyID, slot.Unix())
}

// Book schedules a consultation for the calling student
func (s *consultationServiceImpl) Book(ctx context.Context, p authz.Principal, studentID, facultyID int64, at time.Time) (*models.Consultation, error) {
	if err := authz.CanBookFor(p, studentID); err != nil {
		metrics.BookingsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	slot := models.SlotInstant(at)
	if !slot.After(s.now()) {
		metrics.BookingsTotal.WithLabelValues("rejected").Inc()
		return nil, apperrors.NewValidationError("Consultation time must be in the future").WithDetails(map[string]interface{}{"field": "datetime"})
	}

	faculty, err := s.userRepo.GetUserByID(ctx, facultyID)
	if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
		metrics.BookingsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	if !faculty.IsFaculty() {
		metrics.BookingsTotal.WithLabelValues("rejected").Inc()
		return nil, apperrors.NewValidationError("Selected faculty member does not exist").WithDetails(map[string]interface{}{"field": "faculty_id"})
	}

	release, err := lock.Acquire(ctx, s.locker, slotLockKey(facultyID, slot), s.opts.LockTTL, s.opts.LockWait, lockPollInterval)
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			metrics.BookingsTotal.WithLabelValues("conflict").Inc()
			return nil, apperrors.NewCustomError(apperrors.ErrSlotBusy, "Time slot is being booked by someone else")
		}
		metrics.BookingsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("error locking slot: %w", err)
	}
	defer release()

	txCtx := ctx
	if s.opts.TxTimeout > 0 {
		var cancel context.CancelFunc
		txCtx, cancel = context.WithTimeout(ctx, s.opts.TxTimeout)
		defer cancel()
	}

	c := &models.Consultation{StudentID: studentID, FacultyID: facultyID, Datetime: slot}
	if err := s.consultationRepo.CreateScheduled(txCtx, c); err != nil {
		if errors.Is(err, apperrors.ErrSlotTaken) {
			metrics.BookingsTotal.WithLabelValues("conflict").Inc()
			return nil, apperrors.NewCustomError(apperrors.ErrSlotTaken, "Time slot already booked")
		}
		metrics.BookingsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.BookingsTotal.WithLabelValues("created").Inc()

	c.FacultyName = faculty.Name
	if student, err := s.userRepo.GetUserByID(ctx, studentID); err == nil {
		c.StudentName = student.Name
		s.notify(func() error {
			return s.mailer.SendBookingNotice(email.BookingNotice{
				ToEmail:  faculty.Email,
				ToName:   faculty.Name,
				Student:  student.Name,
				Datetime: slot,
			})
		}, c.ID)
	}

	s.logger.Info().
		Int64("consultationID", c.ID).
		Int64("studentID", studentID).
		Int64("facultyID", facultyID).
		Time("datetime", slot).
		Msg("Consultation booked")
	return c, nil
}

// loadForTransition fetches the consultation a transition will act on
func (s *consultationServiceImpl) loadForTransition(ctx context.Context, id int64) (*models.Consultation, error) {
	c, err := s.consultationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrConsultationNotFound) {
			return nil, apperrors.NewCustomError(apperrors.ErrConsultationNotFound, "Consultation does not exist")
		}
		return nil, err
	}
	return c, nil
}

func notScheduled(status models.ConsultationStatus) error {
	return apperrors.NewCustomError(apperrors.ErrConsultationNotScheduled,
		fmt.Sprintf("Consultation is already %s", strings.ToLower(string(status))))
}

func (s *consultationServiceImpl) transition(ctx context.Context, c *models.Consultation, to models.ConsultationStatus, reason *string, by *models.RoleType) (*models.Consultation, error) {
	if c.Status != models.ConsultationScheduled {
		return nil, notScheduled(c.Status)
	}

	updated, err := s.consultationRepo.Transition(ctx, c.ID, to, reason, by)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrConsultationNotFound):
			return nil, apperrors.NewCustomError(apperrors.ErrConsultationNotFound, "Consultation does not exist")
		case errors.Is(err, apperrors.ErrConsultationNotScheduled):
			// Lost a race with another transition
			return nil, apperrors.NewCustomError(apperrors.ErrConsultationNotScheduled, "Consultation is no longer scheduled")
		}
		return nil, err
	}
	updated.StudentName = c.StudentName
	updated.FacultyName = c.FacultyName
	return updated, nil
}

// Cancel cancels a scheduled consultation on behalf of one of its participants
func (s *consultationServiceImpl) Cancel(ctx context.Context, p authz.Principal, id int64, reason string, by models.RoleType) (*models.Consultation, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.NewValidationError("Cancellation reason is required").WithDetails(map[string]interface{}{"field": "reason"})
	}
	if by != models.RoleStudent && by != models.RoleFaculty {
		return nil, apperrors.NewValidationError("cancelled_by_role must be student or faculty").WithDetails(map[string]interface{}{"field": "cancelled_by_role"})
	}

	c, err := s.loadForTransition(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.CanCancel(p, c, by); err != nil {
		return nil, err
	}

	updated, err := s.transition(ctx, c, models.ConsultationCancelled, &reason, &by)
	if err != nil {
		return nil, err
	}
	metrics.TransitionsTotal.WithLabelValues(string(models.ConsultationCancelled), string(by)).Inc()

	s.notifyCancellation(ctx, p, updated, reason, by)
	s.logger.Info().
		Int64("consultationID", id).
		Str("by", string(by)).
		Int64("userID", p.UserID).
		Msg("Consultation cancelled")
	return updated, nil
}

func (s *consultationServiceImpl) notifyCancellation(ctx context.Context, p authz.Principal, c *models.Consultation, reason string, by models.RoleType) {
	other, err := s.userRepo.GetUserByID(ctx, c.Counterpart(p.UserID))
	if err != nil {
		s.logger.Warn().Err(err).Int64("consultationID", c.ID).Msg("Could not load counterpart for cancellation notice")
		return
	}
	self := c.StudentName
	if by == models.RoleFaculty {
		self = c.FacultyName
	}
	s.notify(func() error {
		return s.mailer.SendCancellationNotice(email.CancellationNotice{
			ToEmail:     other.Email,
			ToName:      other.Name,
			CancelledBy: string(by),
			With:        self,
			Datetime:    c.Datetime,
			Reason:      reason,
		})
	}, c.ID)
}

func (s *consultationServiceImpl) notify(send func() error, consultationID int64) {
	if s.mailer == nil {
		return
	}
	if err := send(); err != nil {
		s.logger.Warn().Err(err).Int64("consultationID", consultationID).Msg("Failed to send consultation email")
	}
}

// Complete marks a scheduled consultation as held
func (s *consultationServiceImpl) Complete(ctx context.Context, p authz.Principal, id int64) (*models.Consultation, error) {
	c, err := s.loadForTransition(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.CanComplete(p, c); err != nil {
		return nil, err
	}

	updated, err := s.transition(ctx, c, models.ConsultationCompleted, nil, nil)
	if err != nil {
		return nil, err
	}
	metrics.TransitionsTotal.WithLabelValues(string(models.ConsultationCompleted), string(models.RoleFaculty)).Inc()
	s.logger.Info().Int64("consultationID", id).Int64("userID", p.UserID).Msg("Consultation completed")
	return updated, nil
}

func (s *consultationServiceImpl) CompleteElapsed(ctx context.Context) (int64, error) {
	cutoff := s.now().UTC().Add(-s.opts.CompleteGrace)
	n, err := s.consultationRepo.CompleteElapsed(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.TransitionsTotal.WithLabelValues(string(models.ConsultationCompleted), "sweep").Add(float64(n))
		s.logger.Info().Int64("count", n).Time("cutoff", cutoff).Msg("Completed elapsed consultations")
	}
	return n, nil
}
