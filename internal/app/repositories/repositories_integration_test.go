package repositories

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/uniconsult/internal/app/migrations"
	"github.com/yigit/uniconsult/internal/app/models"
	"github.com/yigit/uniconsult/internal/pkg/apperrors"
)

// ===========================================================================
// Helpers
// ===========================================================================

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("UNICONSULT_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("UNICONSULT_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, migrations.NewMigrator(pool, zerolog.Nop()).MigrateFromDirectory(ctx, "../../../migrations"))
	_, err = pool.Exec(ctx, "TRUNCATE sessions, consultations, faculty_status, users RESTART IDENTITY CASCADE")
	require.NoError(t, err)
	return pool
}

func strPtr(s string) *string { return &s }

func createUser(t *testing.T, repo *UserRepository, name, email string, role models.RoleType, facultyID *string) *models.User {
	t.Helper()
	u := &models.User{Name: name, Email: email, Password: "hash", RoleType: role, FacultyID: facultyID}
	require.NoError(t, repo.CreateUser(context.Background(), u))
	return u
}

// ===========================================================================
// Users & faculty status
// ===========================================================================

func TestUserRepository_FacultyGetsOfflineStatus(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	users := NewUserRepository(pool)
	statuses := NewFacultyStatusRepository(pool)

	f := createUser(t, users, "Dr. A", "a@uni.edu", models.RoleFaculty, strPtr("F100"))
	s, err := statuses.GetByFacultyID(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOffline, s.Status)
	assert.Equal(t, "Dr. A", s.FacultyName)

	u := &models.User{Name: "Dup", Email: "a@uni.edu", Password: "x", RoleType: models.RoleStudent}
	assert.ErrorIs(t, users.CreateUser(ctx, u), apperrors.ErrEmailAlreadyExists)

	u = &models.User{Name: "Dup", Email: "b@uni.edu", Password: "x", RoleType: models.RoleFaculty, FacultyID: strPtr("F100")}
	assert.ErrorIs(t, users.CreateUser(ctx, u), apperrors.ErrIdentifierExists)

	// Failed faculty insert left no orphan status row
	list, err := statuses.ListStatuses(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestFacultyStatusRepository_UpsertMonotonic(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	f := createUser(t, NewUserRepository(pool), "Dr. A", "a@uni.edu", models.RoleFaculty, strPtr("F1"))
	repo := NewFacultyStatusRepository(pool)

	later := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	s, err := repo.Upsert(ctx, f.ID, models.StatusAvailable, later)
	require.NoError(t, err)
	assert.True(t, s.LastUpdated.Equal(later))

	s, err = repo.Upsert(ctx, f.ID, models.StatusInClass, later.Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, models.StatusInClass, s.Status)
	assert.True(t, s.LastUpdated.Equal(later), "last_updated moved backwards")
}

// ===========================================================================
// Consultations
// ===========================================================================

func TestConsultationRepository_Lifecycle(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	users := NewUserRepository(pool)
	repo := NewConsultationRepository(pool)

	f := createUser(t, users, "Dr. A", "a@uni.edu", models.RoleFaculty, strPtr("F1"))
	s := createUser(t, users, "Stu", "s@uni.edu", models.RoleStudent, nil)
	slot := time.Now().Add(48 * time.Hour)

	c := &models.Consultation{StudentID: s.ID, FacultyID: f.ID, Datetime: slot}
	require.NoError(t, repo.CreateScheduled(ctx, c))
	assert.NotZero(t, c.ID)

	dup := &models.Consultation{StudentID: s.ID, FacultyID: f.ID, Datetime: slot}
	assert.ErrorIs(t, repo.CreateScheduled(ctx, dup), apperrors.ErrSlotTaken)

	list, err := repo.List(ctx, models.ConsultationFilter{FacultyID: f.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Stu", list[0].StudentName)
	assert.Equal(t, "Dr. A", list[0].FacultyName)

	role := models.RoleStudent
	cancelled, err := repo.Transition(ctx, c.ID, models.ConsultationCancelled, strPtr("sick"), &role)
	require.NoError(t, err)
	assert.Equal(t, models.ConsultationCancelled, cancelled.Status)

	_, err = repo.Transition(ctx, c.ID, models.ConsultationCompleted, nil, nil)
	assert.ErrorIs(t, err, apperrors.ErrConsultationNotScheduled)
	_, err = repo.Transition(ctx, 9999, models.ConsultationCancelled, strPtr("x"), &role)
	assert.ErrorIs(t, err, apperrors.ErrConsultationNotFound)

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "sick", *got.Reason)

	// Slot is free again once the earlier booking is cancelled
	require.NoError(t, repo.CreateScheduled(ctx, &models.Consultation{StudentID: s.ID, FacultyID: f.ID, Datetime: slot}))

	require.NoError(t, users.DeleteUser(ctx, f.ID))
	list, err = repo.List(ctx, models.ConsultationFilter{StudentID: s.ID})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestConsultationRepository_ConcurrentBooking(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	users := NewUserRepository(pool)
	repo := NewConsultationRepository(pool)

	f := createUser(t, users, "Dr. A", "a@uni.edu", models.RoleFaculty, strPtr("F1"))
	s1 := createUser(t, users, "S1", "s1@uni.edu", models.RoleStudent, nil)
	s2 := createUser(t, users, "S2", "s2@uni.edu", models.RoleStudent, nil)
	slot := time.Now().Add(24 * time.Hour)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, sid := range []int64{s1.ID, s2.ID} {
		wg.Add(1)
		go func(i int, sid int64) {
			defer wg.Done()
			errs[i] = repo.CreateScheduled(ctx, &models.Consultation{StudentID: sid, FacultyID: f.ID, Datetime: slot})
		}(i, sid)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, apperrors.ErrSlotTaken)
		}
	}
	assert.Equal(t, 1, ok)

	n, err := repo.CompleteElapsed(ctx, slot.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

// ===========================================================================
// Sessions
// ===========================================================================

func TestSessionRepository(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	u := createUser(t, NewUserRepository(pool), "Stu", "s@uni.edu", models.RoleStudent, nil)
	repo := NewSessionRepository(pool)

	s := &models.Session{ID: uuid.New(), UserID: u.ID, ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, repo.CreateSession(ctx, s))

	got, err := repo.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.UserID)

	require.NoError(t, repo.RevokeSession(ctx, s.ID))
	_, err = repo.GetSession(ctx, s.ID)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)

	_, err = repo.GetSession(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrTokenNotFound)

	expired := &models.Session{ID: uuid.New(), UserID: u.ID, ExpiresAt: time.Now().Add(-time.Minute)}
	require.NoError(t, repo.CreateSession(ctx, expired))
	_, err = repo.GetSession(ctx, expired.ID)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)

	n, err := repo.CleanupExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
