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

// Constraint names from migrations/001_init.sql
const (
	constraintUserEmail     = "users_email_key"
	constraintUserFacultyID = "users_faculty_id_key"
)

var userColumns = []string{"id", "name", "email", "password", "role", "student_id", "faculty_id", "department", "created_at"}

// IUserRepository defines the interface for user-related database operations
type IUserRepository interface {
	// CreateUser inserts u and, for faculty, its Offline status row in one transaction.
	// u.ID and u.CreatedAt are filled in on success.
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	FacultyIDExists(ctx context.Context, facultyID string) (bool, error)
	// ListUsers returns every user ordered by role then name
	ListUsers(ctx context.Context) ([]*models.User, error)
	// ListByRole returns users of one role ordered by name
	ListByRole(ctx context.Context, role models.RoleType) ([]*models.User, error)
	// DeleteUser removes a user. Status rows, sessions and consultations cascade.
	DeleteUser(ctx context.Context, id int64) error
	CountUsers(ctx context.Context) (int64, error)
}

// UserRepository handles user database operations
type UserRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanUser(row pgx.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.RoleType,
		&u.StudentID, &u.FacultyID, &u.Department, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser creates a new user
func (r *UserRepository) CreateUser(ctx context.Context, u *models.User) error {
	insertSQL, args, err := r.sb.Insert("users").
		Columns("name", "email", "password", "role", "student_id", "faculty_id", "department").
		Values(u.Name, u.Email, u.Password, u.RoleType, u.StudentID, u.FacultyID, u.Department).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create user SQL")
		return fmt.Errorf("failed to build create user query: %w", err)
	}

	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, insertSQL, args...).Scan(&u.ID, &u.CreatedAt); err != nil {
			switch {
			case dberrors.IsDuplicateConstraintError(err, constraintUserEmail):
				return apperrors.ErrEmailAlreadyExists
			case dberrors.IsDuplicateConstraintError(err, constraintUserFacultyID):
				return apperrors.ErrIdentifierExists
			}
			logger.Error().Err(err).Str("email", u.Email).Msg("Error executing create user query")
			return fmt.Errorf("error creating user: %w", err)
		}

		if !u.IsFaculty() {
			return nil
		}

		statusSQL, statusArgs, err := r.sb.Insert("faculty_status").
			Columns("faculty_id", "status", "last_updated").
			Values(u.ID, models.StatusOffline, time.Now().UTC()).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build faculty status query: %w", err)
		}
		if _, err := tx.Exec(ctx, statusSQL, statusArgs...); err != nil {
			logger.Error().Err(err).Int64("facultyID", u.ID).Msg("Error creating initial faculty status")
			return fmt.Errorf("error creating faculty status: %w", err)
		}
		return nil
	})
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.User, error) {
	query, args, err := r.sb.Select(userColumns...).From("users").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	u, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Msg("Error scanning user row")
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	return u, nil
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetUserByEmail retrieves a user by email
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"email": email})
}

func (r *UserRepository) exists(ctx context.Context, where squirrel.Sqlizer) (bool, error) {
	inner, args, err := r.sb.Select("1").From("users").Where(where).ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build exists query: %w", err)
	}

	var found bool
	if err := r.db.QueryRow(ctx, "SELECT EXISTS("+inner+")", args...).Scan(&found); err != nil {
		logger.Error().Err(err).Msg("Error executing exists query")
		return false, fmt.Errorf("error checking user existence: %w", err)
	}
	return found, nil
}

// EmailExists checks if an email already exists
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, squirrel.Eq{"email": email})
}

// FacultyIDExists checks if a faculty identifier is already taken
func (r *UserRepository) FacultyIDExists(ctx context.Context, facultyID string) (bool, error) {
	return r.exists(ctx, squirrel.Eq{"faculty_id": facultyID})
}

func (r *UserRepository) list(ctx context.Context, q squirrel.SelectBuilder) ([]*models.User, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list users query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list users query")
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ListUsers returns all users
func (r *UserRepository) ListUsers(ctx context.Context) ([]*models.User, error) {
	return r.list(ctx, r.sb.Select(userColumns...).From("users").OrderBy("role", "name", "id"))
}

// ListByRole returns all users holding role
func (r *UserRepository) ListByRole(ctx context.Context, role models.RoleType) ([]*models.User, error) {
	return r.list(ctx, r.sb.Select(userColumns...).From("users").
		Where(squirrel.Eq{"role": role}).
		OrderBy("name", "id"))
}

// DeleteUser deletes a user
func (r *UserRepository) DeleteUser(ctx context.Context, id int64) error {
	query, args, err := r.sb.Delete("users").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete user query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", id).Msg("Error executing delete user query")
		return fmt.Errorf("error deleting user: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// CountUsers returns the number of accounts
func (r *UserRepository) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting users: %w", err)
	}
	return n, nil
}
