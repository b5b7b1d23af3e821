package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-assignment-hub/internal/dto"
	"github.com/noah-isme/gema-assignment-hub/internal/models"
	"github.com/noah-isme/gema-assignment-hub/internal/observability"
	"github.com/noah-isme/gema-assignment-hub/internal/repository"
	"github.com/noah-isme/gema-assignment-hub/pkg/ai"
)

const (
	maxSuggestedTopics = 25
	exploredTopics     = 5
)

// TopicService suggests topics to study for a student's grade.
type TopicService interface {
	Suggestions(ctx context.Context, actor Actor, studentID uint, subject string) (dto.TopicSuggestionsResponse, error)
	Explore(ctx context.Context, actor Actor, studentID uint, subject string) (dto.TopicExplorationResponse, error)
}

type topicService struct {
	students  repository.StudentRepository
	generator ai.TextGenerator
	cache     *redis.Client
	ttl       time.Duration
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewTopicService constructs the topic service. Suggestions are cached per grade and subject when cache is set.
func NewTopicService(students repository.StudentRepository, generator ai.TextGenerator, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) TopicService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &topicService{
		students:  students,
		generator: generator,
		cache:     cache,
		ttl:       ttl,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "topic_service").Logger(),
	}
}

func (s *topicService) Suggestions(ctx context.Context, actor Actor, studentID uint, subject string) (dto.TopicSuggestionsResponse, error) {
	student, subject, err := s.resolve(ctx, actor, studentID, subject)
	if err != nil {
		return dto.TopicSuggestionsResponse{}, err
	}

	result := dto.TopicSuggestionsResponse{Subject: subject, Grade: student.Grade, Topics: []string{}}

	key := topicCacheKey(student.Grade, subject)
	if topics, ok := s.fetchCache(ctx, key); ok {
		result.Topics = topics
		result.CacheHit = true
		return result, nil
	}

	text, err := s.generator.GenerateText(ctx, SuggestTopicsPrompt(student.Grade, subject))
	if err != nil {
		s.logger.Warn().Err(err).Str("subject", subject).Msg("topic suggestion request failed")
		return result, nil
	}

	var payload struct {
		Topics []ai.Text `json:"topics"`
	}
	if err := ai.DecodeObject(text, &payload); err != nil {
		observability.SanitizerFallbacks().WithLabelValues("topics").Inc()
		s.logger.Warn().Err(err).Str("subject", subject).Msg("topic suggestions could not be parsed")
		return result, nil
	}

	seen := make(map[string]struct{}, len(payload.Topics))
	for _, raw := range payload.Topics {
		topic := scrubText(s.sanitizer, raw.String())
		if topic == "" {
			continue
		}
		if _, dup := seen[strings.ToLower(topic)]; dup {
			continue
		}
		seen[strings.ToLower(topic)] = struct{}{}
		result.Topics = append(result.Topics, topic)
		if len(result.Topics) == maxSuggestedTopics {
			break
		}
	}

	if len(result.Topics) > 0 {
		s.writeCache(ctx, key, result.Topics)
	}

	return result, nil
}

func (s *topicService) Explore(ctx context.Context, actor Actor, studentID uint, subject string) (dto.TopicExplorationResponse, error) {
	student, subject, err := s.resolve(ctx, actor, studentID, subject)
	if err != nil {
		return dto.TopicExplorationResponse{}, err
	}

	result := dto.TopicExplorationResponse{Subject: subject, Grade: student.Grade, Topics: []dto.TopicOverview{}}

	text, err := s.generator.GenerateText(ctx, ExploreTopicsPrompt(student.Grade, subject))
	if err != nil {
		s.logger.Warn().Err(err).Str("subject", subject).Msg("topic exploration request failed")
		return result, nil
	}

	var payload struct {
		Topics []struct {
			TopicName   ai.Text `json:"topicName"`
			Explanation ai.Text `json:"explanation"`
			Example     ai.Text `json:"example"`
			QuickTip    ai.Text `json:"quickTip"`
		} `json:"topics"`
	}
	if err := ai.DecodeObject(text, &payload); err != nil {
		observability.SanitizerFallbacks().WithLabelValues("exploration").Inc()
		s.logger.Warn().Err(err).Str("subject", subject).Msg("topic exploration could not be parsed")
		return result, nil
	}

	for _, raw := range payload.Topics {
		overview := dto.TopicOverview{
			TopicName:   scrubText(s.sanitizer, raw.TopicName.String()),
			Explanation: scrubText(s.sanitizer, raw.Explanation.String()),
			Example:     scrubText(s.sanitizer, raw.Example.String()),
			QuickTip:    scrubText(s.sanitizer, raw.QuickTip.String()),
		}
		if overview.TopicName == "" {
			continue
		}
		result.Topics = append(result.Topics, overview)
		if len(result.Topics) == exploredTopics {
			break
		}
	}

	return result, nil
}

func (s *topicService) resolve(ctx context.Context, actor Actor, studentID uint, subject string) (models.Student, string, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return models.Student{}, "", fmt.Errorf("%w: subject is required", ErrInvalidInput)
	}
	if studentID == 0 && actor.IsStudent() {
		studentID = actor.ID
	}

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Student{}, "", ErrStudentNotFound
		}
		return models.Student{}, "", err
	}
	if !actor.canActForStudent(student) {
		return models.Student{}, "", ErrForbidden
	}

	return student, subject, nil
}

func (s *topicService) fetchCache(ctx context.Context, key string) ([]string, bool) {
	if s.cache == nil {
		return nil, false
	}
	payload, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read topic cache")
		}
		return nil, false
	}

	var topics []string
	if err := json.Unmarshal([]byte(payload), &topics); err != nil {
		s.logger.Warn().Err(err).Msg("failed to decode topic cache")
		return nil, false
	}
	return topics, true
}

func (s *topicService) writeCache(ctx context.Context, key string, topics []string) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(topics)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode topic cache")
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to store topic cache")
	}
}

func topicCacheKey(grade, subject string) string {
	normalize := func(value string) string {
		return strings.Join(strings.Fields(strings.ToLower(value)), "_")
	}
	return strings.Join([]string{"topics:v1", normalize(grade), normalize(subject)}, ":")
}

// SuggestTopicsPrompt asks for a list of topic names around the student's grade level.
func SuggestTopicsPrompt(grade, subject string) string {
	return fmt.Sprintf("You are an expert curriculum planner. A parent is creating an assignment for their child. "+
		"Student's Grade: %s. Subject: %s. Generate a list of 20-25 relevant academic topics for this subject. "+
		"The list should include topics appropriate for the student's current grade level, as well as some more "+
		"challenging topics from one or two grades above to help them get ahead. "+
		"Return the output as a single JSON object with one key: \"topics\". The value should be an array of strings. "+
		"For example: {\"topics\": [\"Topic 1\", \"Topic 2\"]}. %s",
		orNotAvailable(grade), subject, outputRules)
}

// ExploreTopicsPrompt asks for a handful of study cards a student can pick a self-quiz topic from.
func ExploreTopicsPrompt(grade, subject string) string {
	return fmt.Sprintf("A %s student wants to learn about %q. Suggest %d specific topics. "+
		"For each topic, provide a brief \"explanation\", a simple \"example\", and a \"quickTip\". "+
		"Return a JSON object with a \"topics\" array where each element is an object with "+
		"\"topicName\", \"explanation\", \"example\", and \"quickTip\" keys. %s",
		orNotAvailable(grade), subject, exploredTopics, outputRules)
}
