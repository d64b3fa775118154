package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sdhealth/pathway-tracker/cmd/pathway-server/models"
	"github.com/sdhealth/pathway-tracker/common/logger"
	"github.com/sdhealth/pathway-tracker/common/redis"
)

// DecisionEventStream is the redis stream decision events are appended to
const DecisionEventStream = "pathway.decision.events"

// DecisionEvent is published after a decision point commits. Consumers
// (notification fanout, downstream sync) read it off the stream.
type DecisionEvent struct {
	EventID         string              `json:"event_id"`
	DecisionPointID int64               `json:"decision_point_id"`
	OnPathwayID     int64               `json:"on_pathway_id"`
	ClinicianID     int64               `json:"clinician_id"`
	DecisionType    models.DecisionType `json:"decision_type"`
	Discharged      bool                `json:"discharged"`
	OccurredAt      time.Time           `json:"occurred_at"`
}

// EventPublisher emits decision lifecycle events
type EventPublisher interface {
	PublishDecisionCreated(ctx context.Context, event *DecisionEvent) error
}

// RedisEventPublisher appends decision events to a redis stream
type RedisEventPublisher struct {
	redis *redis.Client
	log   *logger.Logger
}

var _ EventPublisher = (*RedisEventPublisher)(nil)

// NewRedisEventPublisher creates a stream-backed publisher
func NewRedisEventPublisher(client *redis.Client, log *logger.Logger) *RedisEventPublisher {
	return &RedisEventPublisher{redis: client, log: log}
}

// PublishDecisionCreated appends one event to the decision stream
func (p *RedisEventPublisher) PublishDecisionCreated(ctx context.Context, event *DecisionEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal decision event: %w", err)
	}

	id, err := p.redis.AddToStream(ctx, DecisionEventStream, map[string]interface{}{
		"event": string(payload),
	})
	if err != nil {
		return fmt.Errorf("failed to publish decision event: %w", err)
	}

	p.log.DebugContext(ctx, "published decision event",
		"stream_id", id,
		"decision_point_id", event.DecisionPointID)

	return nil
}
