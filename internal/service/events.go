package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-assignment-hub/internal/models"
	"github.com/noah-isme/gema-assignment-hub/internal/observability"
)

// Assignment event types.
const (
	EventAssignmentCreated    = "assignment.created"
	EventAssignmentProgressed = "assignment.progressed"
	EventAssignmentCompleted  = "assignment.completed"
	EventAssignmentDeleted    = "assignment.deleted"
)

// AssignmentEvent is published for the external notifier whenever an assignment changes state.
type AssignmentEvent struct {
	Type          string    `json:"type"`
	Source        string    `json:"source"`
	AssignmentID  uint      `json:"assignment_id"`
	StudentID     uint      `json:"student_id"`
	ParentID      uint      `json:"parent_id"`
	Subject       string    `json:"subject"`
	Status        string    `json:"status"`
	Score         *int      `json:"score,omitempty"`
	AISuggestion  *string   `json:"ai_suggestion,omitempty"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	SentAt        time.Time `json:"sent_at"`
}

// EventPublisher delivers assignment events. Implementations never fail the calling use case.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, assignment models.Assignment)
}

type brokerPublisher struct {
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	logger       zerolog.Logger
	nodeID       string
	now          func() time.Time
}

// NewEventPublisher publishes to the redis channel "<base>:assignments" and the NATS subject
// "<base>.assignments". Either client may be nil.
func NewEventPublisher(redisClient *redis.Client, natsConn *nats.Conn, channelBase string, logger zerolog.Logger) EventPublisher {
	channel := ""
	subject := ""
	if channelBase != "" {
		channel = channelBase + ":assignments"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".assignments"
	}

	return &brokerPublisher{
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
		logger:       logger.With().Str("component", "event_publisher").Logger(),
		nodeID:       uuid.NewString(),
		now:          time.Now,
	}
}

func (p *brokerPublisher) Publish(ctx context.Context, eventType string, assignment models.Assignment) {
	event := AssignmentEvent{
		Type:          eventType,
		Source:        p.nodeID,
		AssignmentID:  assignment.ID,
		StudentID:     assignment.StudentID,
		ParentID:      assignment.ParentID,
		Subject:       assignment.Subject,
		Status:        string(assignment.Status),
		Score:         assignment.Score,
		AISuggestion:  assignment.AISuggestion,
		CorrelationID: observability.CorrelationID(ctx),
		SentAt:        p.now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn().Err(err).Str("type", eventType).Msg("failed to encode assignment event")
		return
	}

	published := false

	if p.redis != nil && p.redisChannel != "" {
		if err := p.redis.Publish(ctx, p.redisChannel, payload).Err(); err != nil {
			p.logger.Warn().Err(err).Str("type", eventType).Msg("failed to publish assignment event to redis")
		} else {
			published = true
		}
	}

	if p.nats != nil && p.natsSubject != "" {
		if err := p.nats.Publish(p.natsSubject, payload); err != nil {
			p.logger.Warn().Err(err).Str("type", eventType).Msg("failed to publish assignment event to nats")
		} else {
			published = true
		}
	}

	if published {
		observability.EventsPublished().WithLabelValues(eventType).Inc()
	}
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, models.Assignment) {}
