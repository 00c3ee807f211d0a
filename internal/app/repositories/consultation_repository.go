package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/uniconsult/internal/app/models"
	"github.com/yigit/uniconsult/internal/db"
	"github.com/yigit/uniconsult/internal/pkg/apperrors"
	"github.com/yigit/uniconsult/internal/pkg/dberrors"
	"github.com/yigit/uniconsult/internal/pkg/logger"
)

// Partial unique index over Scheduled rows
const constraintScheduledSlot = "consultations_scheduled_slot_key"

var consultationColumns = []string{
	"c.id", "c.student_id", "c.faculty_id", "c.datetime", "c.status",
	"c.reason", "c.cancelled_by_role", "c.created_at", "c.updated_at",
}

// IConsultationRepository defines the data access methods for consultations
type IConsultationRepository interface {
	// List returns consultations matching filter joined with participant names, newest slot first
	List(ctx context.Context, filter models.ConsultationFilter) ([]*models.Consultation, error)
	GetByID(ctx context.Context, id int64) (*models.Consultation, error)
	// CreateScheduled checks the slot and inserts c as Scheduled in one transaction.
	// Returns apperrors.ErrSlotTaken when another Scheduled row holds the slot.
	CreateScheduled(ctx context.Context, c *models.Consultation) error
	// Transition moves a Scheduled consultation to a terminal status with a single
	// conditional update. Non-Scheduled rows are never touched.
	Transition(ctx context.Context, id int64, to models.ConsultationStatus, reason *string, by *models.RoleType) (*models.Consultation, error)
	// CompleteElapsed marks Scheduled consultations with datetime before cutoff as Completed
	CompleteElapsed(ctx context.Context, cutoff time.Time) (int64, error)
}

// ConsultationRepository handles consultation database operations
type ConsultationRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewConsultationRepository creates a new ConsultationRepository
func NewConsultationRepository(db *pgxpool.Pool) *ConsultationRepository {
	return &ConsultationRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *ConsultationRepository) selectJoined() squirrel.SelectBuilder {
	cols := append(append([]string{}, consultationColumns...), "s.name", "f.name")
	return r.sb.Select(cols...).
		From("consultations c").
		Join("users s ON s.id = c.student_id").
		Join("users f ON f.id = c.faculty_id")
}

func scanConsultation(row pgx.Row, withNames bool) (*models.Consultation, error) {
	c := &models.Consultation{}
	dest := []any{
		&c.ID, &c.StudentID, &c.FacultyID, &c.Datetime, &c.Status,
		&c.Reason, &c.CancelledByRole, &c.CreatedAt, &c.UpdatedAt,
	}
	if withNames {
		dest = append(dest, &c.StudentName, &c.FacultyName)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	c.Datetime = c.Datetime.UTC()
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return c, nil
}

// List retrieves consultations by filter
func (r *ConsultationRepository) List(ctx context.Context, filter models.ConsultationFilter) ([]*models.Consultation, error) {
	q := r.selectJoined()
	if filter.StudentID != 0 {
		q = q.Where(squirrel.Eq{"c.student_id": filter.StudentID})
	}
	if filter.FacultyID != 0 {
		q = q.Where(squirrel.Eq{"c.faculty_id": filter.FacultyID})
	}
	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"c.status": filter.Status})
	}

	query, args, err := q.OrderBy("c.datetime DESC", "c.id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list consultations query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list consultations query")
		return nil, fmt.Errorf("error listing consultations: %w", err)
	}
	defer rows.Close()

	list := make([]*models.Consultation, 0)
	for rows.Next() {
		c, err := scanConsultation(rows, true)
		if err != nil {
			return nil, fmt.Errorf("error scanning consultation row: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// GetByID retrieves a single consultation with participant names
func (r *ConsultationRepository) GetByID(ctx context.Context, id int64) (*models.Consultation, error) {
	query, args, err := r.selectJoined().Where(squirrel.Eq{"c.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get consultation query: %w", err)
	}

	c, err := scanConsultation(r.db.QueryRow(ctx, query, args...), true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrConsultationNotFound
		}
		logger.Error().Err(err).Int64("consultationID", id).Msg("Error scanning consultation row")
		return nil, fmt.Errorf("error retrieving consultation: %w", err)
	}
	return c, nil
}

// CreateScheduled books a slot
func (r *ConsultationRepository) CreateScheduled(ctx context.Context, c *models.Consultation) error {
	c.Datetime = models.SlotInstant(c.Datetime)
	c.Status = models.ConsultationScheduled

	existsSQL, existsArgs, err := r.sb.Select("1").From("consultations").
		Where(squirrel.Eq{
			"faculty_id": c.FacultyID,
			"datetime":   c.Datetime,
			"status":     models.ConsultationScheduled,
		}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build slot check query: %w", err)
	}

	insertSQL, insertArgs, err := r.sb.Insert("consultations").
		Columns("student_id", "faculty_id", "datetime", "status").
		Values(c.StudentID, c.FacultyID, c.Datetime, c.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create consultation query: %w", err)
	}

	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		var taken bool
		if err := tx.QueryRow(ctx, "SELECT EXISTS("+existsSQL+")", existsArgs...).Scan(&taken); err != nil {
			logger.Error().Err(err).Int64("facultyID", c.FacultyID).Msg("Error checking slot availability")
			return fmt.Errorf("error checking slot: %w", err)
		}
		if taken {
			return apperrors.ErrSlotTaken
		}

		if err := tx.QueryRow(ctx, insertSQL, insertArgs...).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			switch {
			case dberrors.IsDuplicateConstraintError(err, constraintScheduledSlot):
				return apperrors.ErrSlotTaken
			case dberrors.IsForeignKeyViolation(err):
				return apperrors.ErrUserNotFound
			}
			logger.Error().Err(err).Int64("facultyID", c.FacultyID).Int64("studentID", c.StudentID).Msg("Error executing create consultation query")
			return fmt.Errorf("error creating consultation: %w", err)
		}
		return nil
	})
}

// Transition applies a Scheduled -> terminal status change
func (r *ConsultationRepository) Transition(ctx context.Context, id int64, to models.ConsultationStatus, reason *string, by *models.RoleType) (*models.Consultation, error) {
	if !models.ConsultationScheduled.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: cannot move to %s", apperrors.ErrBadRequest, to)
	}

	q := r.sb.Update("consultations").
		Set("status", to).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": models.ConsultationScheduled})
	if reason != nil {
		q = q.Set("reason", *reason)
	}
	if by != nil {
		q = q.Set("cancelled_by_role", *by)
	}

	query, args, err := q.Suffix("RETURNING id, student_id, faculty_id, datetime, status, reason, cancelled_by_role, created_at, updated_at").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build transition query: %w", err)
	}

	c, err := scanConsultation(r.db.QueryRow(ctx, query, args...), false)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		logger.Error().Err(err).Int64("consultationID", id).Str("to", string(to)).Msg("Error executing transition query")
		return nil, fmt.Errorf("error updating consultation: %w", err)
	}

	// Nothing matched: tell a missing row apart from one already in a terminal state
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: already %s", apperrors.ErrConsultationNotScheduled, current.Status)
}

// CompleteElapsed completes consultations whose slot has passed
func (r *ConsultationRepository) CompleteElapsed(ctx context.Context, cutoff time.Time) (int64, error) {
	query, args, err := r.sb.Update("consultations").
		Set("status", models.ConsultationCompleted).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"status": models.ConsultationScheduled}).
		Where(squirrel.Lt{"datetime": cutoff.UTC()}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build complete elapsed query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing complete elapsed query")
		return 0, fmt.Errorf("error completing consultations: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}
