// Package pubsub publishes notice events to Google Cloud Pub/Sub.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/JakeFAU/govjobs-ingestor/internal/notice"
)

// EventSaved is the event attribute value for newly stored notices.
const EventSaved = "notice.saved"

// Publisher wraps a Pub/Sub topic publisher.
type Publisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
}

// New creates a Publisher for an existing topic publisher.
func New(publisher *pubsub.Publisher) *Publisher {
	return &Publisher{publisher: publisher}
}

// Dial connects to Pub/Sub and returns a Publisher for topic. Close releases
// the client.
func Dial(ctx context.Context, projectID, topic string) (*Publisher, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	return &Publisher{client: client, publisher: client.Publisher(topic)}, nil
}

// Publish marshals the payload to JSON and waits for the server ack. The topic
// argument is ignored; the publisher is bound to a single topic.
func (p *Publisher) Publish(ctx context.Context, _ string, payload any) (string, error) {
	if p.publisher == nil {
		return "", fmt.Errorf("pubsub publisher is not configured")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	msg := &pubsub.Message{Data: data, Attributes: attributesFor(payload)}
	id, err := p.publisher.Publish(ctx, msg).Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish message: %w", err)
	}
	return id, nil
}

// Close flushes pending messages and closes the client when Dial created it.
func (p *Publisher) Close() error {
	if p.publisher != nil {
		p.publisher.Stop()
	}
	if p.client != nil {
		if err := p.client.Close(); err != nil {
			return fmt.Errorf("close pubsub client: %w", err)
		}
	}
	return nil
}

func attributesFor(payload any) map[string]string {
	ev, ok := payload.(notice.SavedEvent)
	if !ok {
		return nil
	}
	return map[string]string{
		"event":    EventSaved,
		"source":   ev.SourceName,
		"category": string(ev.Category),
		"state":    ev.State,
	}
}
