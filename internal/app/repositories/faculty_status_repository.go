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
	"github.com/yigit/uniconsult/internal/pkg/apperrors"
	"github.com/yigit/uniconsult/internal/pkg/dberrors"
	"github.com/yigit/uniconsult/internal/pkg/logger"
)

// IFacultyStatusRepository defines the data access methods for faculty availability
type IFacultyStatusRepository interface {
	// ListStatuses returns every faculty member's status joined with their name, ordered by name
	ListStatuses(ctx context.Context) ([]*models.FacultyStatus, error)
	GetByFacultyID(ctx context.Context, facultyID int64) (*models.FacultyStatus, error)
	// Upsert writes status for facultyID. last_updated never moves backwards.
	Upsert(ctx context.Context, facultyID int64, status models.AvailabilityStatus, at time.Time) (*models.FacultyStatus, error)
}

// FacultyStatusRepository handles faculty_status database operations
type FacultyStatusRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewFacultyStatusRepository creates a new FacultyStatusRepository
func NewFacultyStatusRepository(db *pgxpool.Pool) *FacultyStatusRepository {
	return &FacultyStatusRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *FacultyStatusRepository) selectJoined() squirrel.SelectBuilder {
	return r.sb.Select("fs.id", "fs.faculty_id", "fs.status", "fs.last_updated", "u.name").
		From("faculty_status fs").
		Join("users u ON u.id = fs.faculty_id").
		Where(squirrel.Eq{"u.role": models.RoleFaculty})
}

func scanFacultyStatus(row pgx.Row) (*models.FacultyStatus, error) {
	s := &models.FacultyStatus{}
	if err := row.Scan(&s.ID, &s.FacultyID, &s.Status, &s.LastUpdated, &s.FacultyName); err != nil {
		return nil, err
	}
	s.LastUpdated = s.LastUpdated.UTC()
	return s, nil
}

// ListStatuses retrieves all faculty statuses
func (r *FacultyStatusRepository) ListStatuses(ctx context.Context) ([]*models.FacultyStatus, error) {
	query, args, err := r.selectJoined().OrderBy("u.name", "fs.faculty_id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list statuses query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list statuses query")
		return nil, fmt.Errorf("error listing faculty statuses: %w", err)
	}
	defer rows.Close()

	list := make([]*models.FacultyStatus, 0)
	for rows.Next() {
		s, err := scanFacultyStatus(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning faculty status row: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// GetByFacultyID retrieves one faculty member's status
func (r *FacultyStatusRepository) GetByFacultyID(ctx context.Context, facultyID int64) (*models.FacultyStatus, error) {
	query, args, err := r.selectJoined().Where(squirrel.Eq{"fs.faculty_id": facultyID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get status query: %w", err)
	}

	s, err := scanFacultyStatus(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrFacultyStatusNotFound
		}
		logger.Error().Err(err).Int64("facultyID", facultyID).Msg("Error scanning faculty status row")
		return nil, fmt.Errorf("error retrieving faculty status: %w", err)
	}
	return s, nil
}

// Upsert inserts or overwrites the status row of facultyID
func (r *FacultyStatusRepository) Upsert(ctx context.Context, facultyID int64, status models.AvailabilityStatus, at time.Time) (*models.FacultyStatus, error) {
	query, args, err := r.sb.Insert("faculty_status").
		Columns("faculty_id", "status", "last_updated").
		Values(facultyID, status, at.UTC()).
		Suffix(`ON CONFLICT (faculty_id) DO UPDATE
			SET status = EXCLUDED.status,
			    last_updated = GREATEST(faculty_status.last_updated, EXCLUDED.last_updated)
			RETURNING id, faculty_id, status, last_updated`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build upsert status query: %w", err)
	}

	s := &models.FacultyStatus{}
	err = r.db.QueryRow(ctx, query, args...).Scan(&s.ID, &s.FacultyID, &s.Status, &s.LastUpdated)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("facultyID", facultyID).Msg("Error executing upsert status query")
		return nil, fmt.Errorf("error updating faculty status: %w", err)
	}
	s.LastUpdated = s.LastUpdated.UTC()
	return s, nil
}
