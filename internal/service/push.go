package service

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

type pushService struct {
	client *messaging.Client
}

// NewPushService initializes a Firebase Cloud Messaging client from a service
// account credentials file.
func NewPushService(ctx context.Context, credentialsFile string) (PushService, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize messaging client: %w", err)
	}
	return &pushService{client: client}, nil
}

func (s *pushService) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}
	if _, err := s.client.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send push message: %w", err)
	}
	return nil
}

// noopPushService is used when no Firebase credentials are configured.
type noopPushService struct{}

func NewNoopPushService() PushService {
	return noopPushService{}
}

func (noopPushService) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	return nil
}
