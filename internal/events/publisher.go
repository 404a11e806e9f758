// Package events publishes job lifecycle notifications to NATS JetStream so
// downstream consumers (webhooks, notifications) can react to job state
// changes without polling the API.
package events

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const (
	streamName     = "JOBS"
	subjectPattern = "jobs.>"
)

// JobEvent describes one job state transition.
type JobEvent struct {
	JobID        uuid.UUID  `json:"job_id"`
	ConfigType   string     `json:"config_type"`
	ConnectionID *uuid.UUID `json:"connection_id,omitempty"`
	SourceID     *uuid.UUID `json:"source_id,omitempty"`
	Status       string     `json:"status"`
	Timestamp    time.Time  `json:"timestamp"`
}

// Publisher emits job lifecycle events.
type Publisher interface {
	PublishJobEvent(event JobEvent) error
}

// NopPublisher discards events. Used when no NATS URL is configured.
type NopPublisher struct{}

// PublishJobEvent does nothing.
func (NopPublisher) PublishJobEvent(event JobEvent) error {
	return nil
}

// JetStreamPublisher publishes job events to a NATS JetStream stream.
type JetStreamPublisher struct {
	js nats.JetStreamContext
}

// NewJetStreamPublisher creates a publisher and ensures the JOBS stream exists.
func NewJetStreamPublisher(js nats.JetStreamContext) (*JetStreamPublisher, error) {
	// Ensure stream exists (idempotent operation)
	if _, err := js.StreamInfo(streamName); err != nil {
		log.Printf("Stream %s not found, attempting to create it...", streamName)
		_, createErr := js.AddStream(&nats.StreamConfig{
			Name:     streamName,
			Subjects: []string{subjectPattern},
			Storage:  nats.FileStorage,
		})
		if createErr != nil {
			return nil, fmt.Errorf("failed to create NATS stream %s: %w", streamName, createErr)
		}
		log.Printf("Successfully created NATS stream %s", streamName)
	}
	return &JetStreamPublisher{js: js}, nil
}

// Subject returns the NATS subject for a job status, e.g. "jobs.succeeded".
func Subject(status string) string {
	return "jobs." + status
}

// PublishJobEvent publishes one event to the jobs.<status> subject.
func (p *JetStreamPublisher) PublishJobEvent(event JobEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal job event for job %s: %w", event.JobID, err)
	}

	pubAck, err := p.js.Publish(Subject(event.Status), payload)
	if err != nil {
		return fmt.Errorf("failed to publish job event for job %s to subject %s: %w", event.JobID, Subject(event.Status), err)
	}

	log.Printf("Published job event for job %s to subject %s (Stream: %s, Sequence: %d)",
		event.JobID, Subject(event.Status), pubAck.Stream, pubAck.Sequence)
	return nil
}
