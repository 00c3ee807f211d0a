package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/uniconsult/internal/app/models"
	appRepos "github.com/yigit/uniconsult/internal/app/repositories"
	"github.com/yigit/uniconsult/internal/pkg/apperrors"
	"github.com/yigit/uniconsult/internal/pkg/auth"
	"github.com/yigit/uniconsult/internal/pkg/helpers"
)

// Options controls what CreateDefaultData writes
type Options struct {
	AdminName     string
	AdminEmail    string
	AdminPassword string
	DemoFaculty   bool
}

type demoFaculty struct {
	name       string
	email      string
	facultyID  string
	department string
	status     appModels.AvailabilityStatus
}

var demoFacultyMembers = []demoFaculty{
	{"Dr. Ada Lovelace", "ada@uniconsult.com", "F001", "Computer Science", appModels.StatusAvailable},
	{"Prof. Charles Babbage", "charles@uniconsult.com", "F002", "Mathematics", appModels.StatusInClass},
}

const demoFacultyPassword = "password123"

// CreateDefaultData creates the admin account on an empty database and,
// when enabled, the demo faculty members with their initial statuses.
func CreateDefaultData(
	ctx context.Context,
	userRepo appRepos.IUserRepository,
	statusRepo appRepos.IFacultyStatusRepository,
	opts Options,
	lgr zerolog.Logger,
) error {
	lgr.Info().Msg("Checking/Creating default data...")
	var finalErr error // collected so one failure does not stop the rest

	count, err := userRepo.CountUsers(ctx)
	if err != nil {
		lgr.Error().Err(err).Msg("Error counting users")
		return err
	}

	if count == 0 {
		if err := createAdmin(ctx, userRepo, opts); err != nil {
			lgr.Error().Err(err).Msg("Error creating admin user")
			finalErr = errors.Join(finalErr, err)
		} else {
			lgr.Info().Str("email", opts.AdminEmail).Msg("Default admin user created successfully")
		}
	} else {
		lgr.Info().Int64("users", count).Msg("Users already exist, skipping admin creation")
	}

	if opts.DemoFaculty {
		finalErr = errors.Join(finalErr, createDemoFaculty(ctx, userRepo, statusRepo, lgr))
	}

	lgr.Info().Msg("Default data check/creation finished.")
	return finalErr
}

func createAdmin(ctx context.Context, userRepo appRepos.IUserRepository, opts Options) error {
	email := strings.ToLower(strings.TrimSpace(opts.AdminEmail))
	if email == "" || opts.AdminPassword == "" {
		return errors.New("admin email and password must be configured")
	}
	name := strings.TrimSpace(opts.AdminName)
	if name == "" {
		name = "Administrator"
	}

	hash, err := auth.HashPassword(opts.AdminPassword)
	if err != nil {
		return err
	}

	return userRepo.CreateUser(ctx, &appModels.User{
		Name:     name,
		Email:    email,
		Password: hash,
		RoleType: appModels.RoleAdmin,
	})
}

func createDemoFaculty(
	ctx context.Context,
	userRepo appRepos.IUserRepository,
	statusRepo appRepos.IFacultyStatusRepository,
	lgr zerolog.Logger,
) error {
	existing, err := userRepo.ListByRole(ctx, appModels.RoleFaculty)
	if err != nil {
		return fmt.Errorf("error listing faculty: %w", err)
	}
	if len(existing) > 0 {
		lgr.Info().Int("faculty", len(existing)).Msg("Faculty already exist, skipping demo faculty")
		return nil
	}

	hash, err := auth.HashPassword(demoFacultyPassword)
	if err != nil {
		return err
	}

	var finalErr error
	for _, d := range demoFacultyMembers {
		u := &appModels.User{
			Name:       d.name,
			Email:      d.email,
			Password:   hash,
			RoleType:   appModels.RoleFaculty,
			FacultyID:  helpers.NilIfBlank(d.facultyID),
			Department: helpers.NilIfBlank(d.department),
		}
		if err := userRepo.CreateUser(ctx, u); err != nil {
			if errors.Is(err, apperrors.ErrEmailAlreadyExists) || errors.Is(err, apperrors.ErrIdentifierExists) {
				continue
			}
			lgr.Error().Err(err).Str("email", d.email).Msg("Error creating demo faculty")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		if _, err := statusRepo.Upsert(ctx, u.ID, d.status, time.Now()); err != nil {
			lgr.Error().Err(err).Int64("facultyID", u.ID).Msg("Error setting demo faculty status")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		lgr.Info().Str("name", d.name).Msg("Seeded demo faculty")
	}
	return finalErr
}
