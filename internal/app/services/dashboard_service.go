package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/eparask/courselab/internal/app/models"
	"github.com/eparask/courselab/internal/app/repositories"
	"github.com/eparask/courselab/internal/pkg/cache"
	"github.com/eparask/courselab/internal/pkg/helpers"
)

// AllowedDashboardDays are the accepted values of the days window filter.
var AllowedDashboardDays = map[int]bool{3: true, 7: true, 14: true, 30: true}

// DefaultDashboardDays is used when the requested window is absent or not
// one of the allowed values.
const DefaultDashboardDays = 7

// DashboardService aggregates per-teacher statistics over their offerings.
// Results are cached briefly; the cache degrades to a no-op when Redis is
// not configured.
type DashboardService struct {
	csRepo    repositories.CourseSemesterRepository
	statsRepo repositories.StatsRepository
	cache     *cache.Client
	cacheTTL  time.Duration
	logger    zerolog.Logger

	// now is swappable for deterministic date arithmetic in tests
	now func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	csRepo repositories.CourseSemesterRepository,
	statsRepo repositories.StatsRepository,
	cacheClient *cache.Client,
	cacheTTL time.Duration,
	logger zerolog.Logger,
) *DashboardService {
	return &DashboardService{
		csRepo:    csRepo,
		statsRepo: statsRepo,
		cache:     cacheClient,
		cacheTTL:  cacheTTL,
		logger:    logger,
		now:       time.Now,
	}
}

// NormalizeDays maps an arbitrary requested window onto an allowed one
func NormalizeDays(days int) int {
	if AllowedDashboardDays[days] {
		return days
	}
	return DefaultDashboardDays
}

// ComputeStats aggregates the dashboard numbers for one teacher.
// days must already be normalized. A courseSemesterID filter referring to
// an offering the teacher does not own is silently ignored.
func (s *DashboardService) ComputeStats(ctx context.Context, teacherID int64, days int, courseSemesterID *int64) (*models.DashboardStats, error) {
	cacheKey := s.statsCacheKey(teacherID, days, courseSemesterID)
	if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
		stats := &models.DashboardStats{}
		if err := json.Unmarshal(cached, stats); err == nil {
			return stats, nil
		}
		// A corrupt entry is dropped and recomputed
		_ = s.cache.Delete(ctx, cacheKey)
	}

	ownedIDs, err := s.csRepo.ListOwnedIDs(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	scope := ownedIDs
	if courseSemesterID != nil {
		for _, id := range ownedIDs {
			if id == *courseSemesterID {
				scope = []int64{id}
				break
			}
		}
	}

	today := helpers.Midnight(s.now())
	upcomingFrom := today
	upcomingTo := today.AddDate(0, 0, days)
	overdueCutoff := today.AddDate(0, 0, -7)

	stats := &models.DashboardStats{ActiveCourses: len(scope)}

	if stats.UniqueStudents, err = s.statsRepo.CountUniqueStudents(ctx, scope); err != nil {
		return nil, err
	}
	if stats.UpcomingLabs, err = s.statsRepo.CountSessionsBetween(ctx, scope, upcomingFrom, upcomingTo); err != nil {
		return nil, err
	}
	if stats.LabGradesDone, stats.LabGradesNull, err = s.statsRepo.CountLabGrades(ctx, scope); err != nil {
		return nil, err
	}
	if stats.FaSubmitted, stats.FaGraded, stats.FaAvg, err = s.statsRepo.FinalAssignmentStats(ctx, scope); err != nil {
		return nil, err
	}
	if stats.OverdueUngraded, err = s.statsRepo.CountOverdueUngradedSessions(ctx, scope, overdueCutoff); err != nil {
		return nil, err
	}
	if stats.NoAttendanceSessions, err = s.statsRepo.CountNoAttendanceSessions(ctx, scope); err != nil {
		return nil, err
	}
	if stats.PerCourse, err = s.statsRepo.PerCourseRows(ctx, scope, upcomingFrom, upcomingTo); err != nil {
		return nil, err
	}

	// Four weekly grading-activity buckets, oldest first: bucket k covers
	// sessions dated in [today-7k, today-7k+6]
	for k := 4; k >= 1; k-- {
		from := today.AddDate(0, 0, -7*k)
		to := from.AddDate(0, 0, 6)
		count, err := s.statsRepo.CountGradedBetween(ctx, scope, from, to)
		if err != nil {
			return nil, err
		}
		stats.AttendanceTrend[4-k] = count
	}

	if payload, err := json.Marshal(stats); err == nil {
		if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to cache dashboard stats")
		}
	}

	return stats, nil
}

func (s *DashboardService) statsCacheKey(teacherID int64, days int, courseSemesterID *int64) string {
	course := "all"
	if courseSemesterID != nil {
		course = fmt.Sprintf("%d", *courseSemesterID)
	}
	return fmt.Sprintf("dashboard:stats:%d:%d:%s", teacherID, days, course)
}
