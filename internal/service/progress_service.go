package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-assignment-hub/internal/dto"
	"github.com/noah-isme/gema-assignment-hub/internal/models"
	"github.com/noah-isme/gema-assignment-hub/internal/repository"
)

const recentCompletedLimit = 5

// ProgressService aggregates a learner's assignments into a progress report. It also listens to
// assignment events so cached reports never outlive the data they summarise.
type ProgressService interface {
	EventPublisher
	GetProgress(ctx context.Context, actor Actor, studentID uint) (dto.StudentProgressResponse, bool, error)
}

type progressService struct {
	assignments repository.AssignmentRepository
	students    repository.StudentRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
}

// NewProgressService builds the progress aggregator. A nil cache disables caching.
func NewProgressService(assignments repository.AssignmentRepository, students repository.StudentRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) ProgressService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &progressService{
		assignments: assignments,
		students:    students,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "progress_service").Logger(),
	}
}

func progressCacheKey(studentID uint) string {
	return fmt.Sprintf("progress:student:%d", studentID)
}

// GetProgress returns the report and whether it was served from cache.
func (s *progressService) GetProgress(ctx context.Context, actor Actor, studentID uint) (dto.StudentProgressResponse, bool, error) {
	if studentID == 0 && actor.IsStudent() {
		studentID = actor.ID
	}

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentProgressResponse{}, false, ErrStudentNotFound
		}
		return dto.StudentProgressResponse{}, false, err
	}
	if !actor.canActForStudent(student) {
		return dto.StudentProgressResponse{}, false, ErrForbidden
	}

	cacheKey := progressCacheKey(studentID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.StudentProgressResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("student_id", studentID).Msg("progress cache hit")
				return response, true, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read progress cache")
		}
	}

	assignments, err := s.assignments.List(ctx, repository.AssignmentFilter{StudentID: &studentID})
	if err != nil {
		return dto.StudentProgressResponse{}, false, err
	}

	response := buildProgress(studentID, assignments)

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store progress cache")
			}
		}
	}

	return response, false, nil
}

// Publish drops the cached report of the student an assignment event concerns.
func (s *progressService) Publish(ctx context.Context, eventType string, assignment models.Assignment) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, progressCacheKey(assignment.StudentID)).Err(); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Uint("student_id", assignment.StudentID).Msg("failed to invalidate progress cache")
	}
}

// buildProgress expects assignments newest first.
func buildProgress(studentID uint, assignments []models.Assignment) dto.StudentProgressResponse {
	summary := dto.ProgressSummary{}
	subjects := map[string]*subjectTally{}
	pending := make([]dto.AssignmentProgress, 0)
	completed := make([]dto.CompletedActivity, 0, recentCompletedLimit)

	var scoreTotal, scored int
	for _, assignment := range assignments {
		summary.TotalAssignments++

		subject := strings.TrimSpace(assignment.Subject)
		tally, ok := subjects[strings.ToLower(subject)]
		if !ok {
			tally = &subjectTally{name: subject}
			subjects[strings.ToLower(subject)] = tally
		}
		tally.assignments++

		switch assignment.Status {
		case models.AssignmentStatusCompleted:
			summary.Completed++
			tally.completed++
			if assignment.Score != nil {
				scoreTotal += *assignment.Score
				scored++
				tally.scoreTotal += *assignment.Score
				tally.scored++
			}
			if len(completed) < recentCompletedLimit {
				completed = append(completed, completedActivity(assignment))
			}
			continue
		case models.AssignmentStatusInProgress:
			summary.InProgress++
		default:
			summary.NotStarted++
		}

		pending = append(pending, dto.AssignmentProgress{
			AssignmentID: assignment.ID,
			Subject:      assignment.Subject,
			Topics:       assignment.Topics,
			Purpose:      string(assignment.Purpose),
			Status:       string(assignment.Status),
			Answered:     answeredCount(assignment.Questions),
			Questions:    len(assignment.Questions),
			UpdatedAt:    assignment.UpdatedAt,
		})
	}

	if scored > 0 {
		summary.AverageScore = roundTenth(float64(scoreTotal) / float64(scored))
	}
	if summary.TotalAssignments > 0 {
		summary.CompletionRate = roundTenth(float64(summary.Completed) / float64(summary.TotalAssignments) * 100)
	}

	return dto.StudentProgressResponse{
		StudentID:         studentID,
		Summary:           summary,
		Subjects:          subjectBreakdown(subjects),
		Pending:           pending,
		RecentlyCompleted: completed,
	}
}

type subjectTally struct {
	name        string
	assignments int
	completed   int
	scoreTotal  int
	scored      int
}

func subjectBreakdown(tallies map[string]*subjectTally) []dto.SubjectProgress {
	breakdown := make([]dto.SubjectProgress, 0, len(tallies))
	for _, tally := range tallies {
		item := dto.SubjectProgress{
			Subject:     tally.name,
			Assignments: tally.assignments,
			Completed:   tally.completed,
		}
		if tally.scored > 0 {
			item.AverageScore = roundTenth(float64(tally.scoreTotal) / float64(tally.scored))
		}
		breakdown = append(breakdown, item)
	}
	sort.Slice(breakdown, func(i, j int) bool { return breakdown[i].Subject < breakdown[j].Subject })
	return breakdown
}

func completedActivity(assignment models.Assignment) dto.CompletedActivity {
	activity := dto.CompletedActivity{
		AssignmentID: assignment.ID,
		Subject:      assignment.Subject,
		Topics:       assignment.Topics,
		CompletedAt:  assignment.UpdatedAt,
	}
	if assignment.Score != nil {
		activity.Score = *assignment.Score
	}
	if assignment.AISuggestion != nil {
		activity.AISuggestion = *assignment.AISuggestion
	}
	return activity
}

func answeredCount(questions []models.Question) int {
	count := 0
	for _, question := range questions {
		if strings.TrimSpace(question.StudentAnswer) != "" {
			count++
		}
	}
	return count
}

func roundTenth(value float64) float64 {
	return math.Round(value*10) / 10
}

type publisherChain []EventPublisher

// ChainPublishers fans every event out to each non-nil publisher in order.
func ChainPublishers(publishers ...EventPublisher) EventPublisher {
	chain := make(publisherChain, 0, len(publishers))
	for _, publisher := range publishers {
		if publisher != nil {
			chain = append(chain, publisher)
		}
	}
	return chain
}

func (c publisherChain) Publish(ctx context.Context, eventType string, assignment models.Assignment) {
	for _, publisher := range c {
		publisher.Publish(ctx, eventType, assignment)
	}
}
