package seed

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appModels "github.com/eparask/courselab/internal/app/models"
	appRepos "github.com/eparask/courselab/internal/app/repositories"
	"github.com/eparask/courselab/internal/pkg/apperrors"
	"github.com/eparask/courselab/internal/pkg/auth"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// defaultCourses is the catalog created on first startup. Courses are
// reference data; offerings are always created over the API.
var defaultCourses = []appModels.Course{
	{Code: "CS101", Title: "Introduction to Programming"},
	{Code: "CS201", Title: "Data Structures"},
	{Code: "CS301", Title: "Operating Systems"},
	{Code: "CS310", Title: "Database Systems"},
	{Code: "CS350", Title: "Computer Networks"},
	{Code: "MATH201", Title: "Discrete Mathematics"},
}

// CreateDefaultData seeds the course catalog and a default teacher account
// if they don't exist.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data (courses, teacher account)...")
	var finalErr error

	for _, course := range defaultCourses {
		query, args, err := psql.Insert("courses").
			Columns("code", "title").
			Values(course.Code, course.Title).
			Suffix("ON CONFLICT ON CONSTRAINT uq_courses_code DO NOTHING").
			ToSql()
		if err != nil {
			finalErr = errors.Join(finalErr, err)
			continue
		}
		if _, err := dbPool.Exec(ctx, query, args...); err != nil {
			lgr.Error().Err(err).Str("code", course.Code).Msg("Error seeding catalog course")
			finalErr = errors.Join(finalErr, err)
		}
	}

	userRepo := appRepos.NewUserRepository(dbPool)
	exists, err := userRepo.UsernameExists(ctx, "teacher")
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking if default teacher exists")
		return errors.Join(finalErr, err)
	}
	if exists {
		lgr.Info().Msg("Default teacher account already exists, skipping creation")
		return finalErr
	}

	lgr.Info().Msg("Creating default teacher account...")
	hashedPassword, err := auth.HashPassword("Teacher123!")
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing default teacher password")
		return errors.Join(finalErr, err)
	}

	teacher := &appModels.User{
		Username: "teacher",
		Password: hashedPassword,
		Role:     appModels.RoleTeacher,
	}
	teacherID, err := userRepo.CreateUser(ctx, teacher)
	if err != nil && !errors.Is(err, apperrors.ErrUsernameAlreadyTaken) {
		lgr.Error().Err(err).Msg("Error creating default teacher account")
		finalErr = errors.Join(finalErr, err)
	} else if err == nil {
		lgr.Info().Int64("teacherID", teacherID).Msg("Default teacher account created")
	}

	lgr.Info().Msg("Default data check/creation finished.")
	return finalErr
}
