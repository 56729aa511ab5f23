package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"token-platform/domain/model"
	"token-platform/domain/repository"
	"token-platform/infrastructure/logger"

	"cloud.google.com/go/pubsub"
)

func NewPubSub(ctx context.Context, projectID string) (*pubsub.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("pubsub project id not configured")
	}
	return pubsub.NewClient(ctx, projectID)
}

// EventPublisher publishes domain events as JSON messages on one topic.
type EventPublisher struct {
	client    *pubsub.Client
	topicName string

	once  sync.Once
	topic *pubsub.Topic
	err   error
}

func NewEventPublisher(client *pubsub.Client, topicName string) *EventPublisher {
	return &EventPublisher{client: client, topicName: topicName}
}

var _ repository.IEventPublisher = (*EventPublisher)(nil)

func (p *EventPublisher) Publish(ctx context.Context, event model.Event) error {
	if p.client == nil {
		return nil
	}
	topic, err := p.ensureTopic(ctx)
	if err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	serverID, err := topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{"type": event.Type, "event_id": event.ID},
	}).Get(ctx)
	if err != nil {
		logger.GetLogger().WithField("error", err).WithField("type", event.Type).Error("pubsub publish failed")
		return err
	}
	logger.GetLogger().WithField("server ID", serverID).WithField("type", event.Type).Debug("Message published")
	return nil
}

// ensureTopic creates the topic on first use if it does not exist yet.
func (p *EventPublisher) ensureTopic(ctx context.Context) (*pubsub.Topic, error) {
	p.once.Do(func() {
		topic := p.client.Topic(p.topicName)
		exists, err := topic.Exists(ctx)
		if err != nil {
			p.err = err
			return
		}
		if !exists {
			logger.GetLogger().WithField("topic", p.topicName).Info("Topic doesn't exist - creating it")
			if topic, err = p.client.CreateTopic(ctx, p.topicName); err != nil {
				p.err = err
				return
			}
		}
		p.topic = topic
	})
	return p.topic, p.err
}

// Close flushes pending messages.
func (p *EventPublisher) Close() {
	if p.topic != nil {
		p.topic.Stop()
	}
}
