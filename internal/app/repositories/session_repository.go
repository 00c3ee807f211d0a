package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/uniconsult/internal/app/models"
	"github.com/yigit/uniconsult/internal/pkg/apperrors"
	"github.com/yigit/uniconsult/internal/pkg/dberrors"
	"github.com/yigit/uniconsult/internal/pkg/logger"
)

// Revoked sessions are kept this long before cleanup removes them
const revokedSessionRetention = 30 * 24 * time.Hour

// ISessionRepository defines the data access methods for login sessions
type ISessionRepository interface {
	CreateSession(ctx context.Context, s *models.Session) error
	// GetSession returns an active session, or ErrTokenNotFound, ErrTokenRevoked or ErrTokenExpired
	GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error)
	RevokeSession(ctx context.Context, id uuid.UUID) error
	RevokeAllUserSessions(ctx context.Context, userID int64) error
	CleanupExpiredSessions(ctx context.Context) (int64, error)
}

// SessionRepository handles session database operations
type SessionRepository struct {
	db  *pgxpool.Pool
	sb  squirrel.StatementBuilderType
	now func() time.Time
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{
		db:  db,
		sb:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		now: time.Now,
	}
}

// CreateSession stores a new session
func (r *SessionRepository) CreateSession(ctx context.Context, s *models.Session) error {
	sql, args, err := r.sb.Insert("sessions").
		Columns("id", "user_id", "expires_at", "revoked").
		Values(s.ID, s.UserID, s.ExpiresAt.UTC(), false).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create session SQL")
		return fmt.Errorf("failed to build create session query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&s.CreatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "sessions_pkey") {
			logger.Warn().Str("sessionID", s.ID.String()).Msg("Attempted to create duplicate session")
			return apperrors.ErrTokenInvalid
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("userID", s.UserID).Msg("Error executing create session query")
		return fmt.Errorf("error creating session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by id
func (r *SessionRepository) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	sql, args, err := r.sb.Select("id", "user_id", "expires_at", "revoked", "created_at").
		From("sessions").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get session SQL")
		return nil, fmt.Errorf("failed to build get session query: %w", err)
	}

	s := &models.Session{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&s.ID, &s.UserID, &s.ExpiresAt, &s.Revoked, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTokenNotFound
		}
		logger.Error().Err(err).Str("sessionID", id.String()).Msg("Error scanning session row")
		return nil, fmt.Errorf("error retrieving session: %w", err)
	}

	if s.Revoked {
		return nil, apperrors.ErrTokenRevoked
	}
	if !s.Active(r.now()) {
		return nil, apperrors.ErrTokenExpired
	}
	return s, nil
}

// RevokeSession revokes a session
func (r *SessionRepository) RevokeSession(ctx context.Context, id uuid.UUID) error {
	sql, args, err := r.sb.Update("sessions").
		Set("revoked", true).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building revoke session SQL")
		return fmt.Errorf("failed to build revoke session query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("sessionID", id.String()).Msg("Error executing revoke session query")
		return fmt.Errorf("error revoking session: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrTokenNotFound
	}
	return nil
}

// RevokeAllUserSessions revokes every active session of a user
func (r *SessionRepository) RevokeAllUserSessions(ctx context.Context, userID int64) error {
	sql, args, err := r.sb.Update("sessions").
		Set("revoked", true).
		Where(squirrel.Eq{"user_id": userID, "revoked": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build revoke user sessions query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error executing revoke user sessions query")
		return fmt.Errorf("error revoking user sessions: %w", err)
	}
	return nil
}

// CleanupExpiredSessions removes expired sessions and old revoked ones
func (r *SessionRepository) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	now := r.now()

	sql, args, err := r.sb.Delete("sessions").
		Where(squirrel.Or{
			squirrel.Lt{"expires_at": now},
			squirrel.And{
				squirrel.Eq{"revoked": true},
				squirrel.Lt{"created_at": now.Add(-revokedSessionRetention)},
			},
		}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building cleanup sessions SQL")
		return 0, fmt.Errorf("failed to build cleanup sessions query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing cleanup sessions query")
		return 0, fmt.Errorf("error cleaning up sessions: %w", err)
	}

	deleted := cmdTag.RowsAffected()
	logger.Info().Int64("deletedCount", deleted).Msg("Cleaned up expired sessions")
	return deleted, nil
}
