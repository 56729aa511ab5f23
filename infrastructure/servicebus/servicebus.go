package servicebus

import (
	"context"
	"encoding/json"
	"fmt"

	"token-platform/domain/model"
	"token-platform/domain/repository"
	"token-platform/infrastructure/logger"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
)

// NewServiceBus prefers a connection string and falls back to the default
// Azure credential chain against namespace.
func NewServiceBus(ctx context.Context, namespace, connectionString string) (*azservicebus.Client, error) {
	if connectionString != "" {
		return azservicebus.NewClientFromConnectionString(connectionString, nil)
	}
	if namespace == "" {
		return nil, fmt.Errorf("service bus namespace not configured")
	}
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, err
	}
	return azservicebus.NewClient(namespace, cred, nil)
}

// EventSender forwards domain events to a Service Bus queue.
type EventSender struct {
	client *azservicebus.Client
	queue  string
}

func NewEventSender(client *azservicebus.Client, queue string) *EventSender {
	return &EventSender{client: client, queue: queue}
}

var _ repository.IEventPublisher = (*EventSender)(nil)

func (s *EventSender) Publish(ctx context.Context, event model.Event) error {
	if s.client == nil {
		return nil
	}
	msg, err := buildMessage(event)
	if err != nil {
		return err
	}
	sender, err := s.client.NewSender(s.queue, nil)
	if err != nil {
		logger.GetLogger().
			WithField("error", err).
			Error("Error while making new sender service bus.")
		return err
	}
	defer func(sender *azservicebus.Sender) {
		if err := sender.Close(context.Background()); err != nil {
			logger.GetLogger().
				WithField("error", err).
				Error("Error while closing sender.")
		}
	}(sender)

	if err := sender.SendMessage(ctx, msg, nil); err != nil {
		logger.GetLogger().WithField("error", err).WithField("type", event.Type).Error("Error while sending message.")
		return err
	}
	return nil
}

func buildMessage(event model.Event) (*azservicebus.Message, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	contentType := "application/json"
	subject := event.Type
	messageID := event.ID
	return &azservicebus.Message{
		Body:        body,
		ContentType: &contentType,
		Subject:     &subject,
		MessageID:   &messageID,
		ApplicationProperties: map[string]interface{}{
			"user_id": event.UserID,
		},
	}, nil
}
