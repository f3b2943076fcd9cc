package push

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
)

// FCMSender gửi thông báo đẩy qua Firebase Cloud Messaging: broadcast
// tới topic hoặc gửi thẳng tới một device token.
type FCMSender struct {
	client *messaging.Client
}

func NewFCMSender(ctx context.Context, app *firebase.App) (*FCMSender, error) {
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("lỗi khởi tạo FCM client: %w", err)
	}
	return &FCMSender{client: client}, nil
}

func (s *FCMSender) SendToTopic(ctx context.Context, topic, title, body string) (string, error) {
	message := &messaging.Message{
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Topic: topic,
	}
	messageID, err := s.client.Send(ctx, message)
	if err != nil {
		return "", fmt.Errorf("FCMSender.SendToTopic (topic '%s'): %w", topic, err)
	}
	return messageID, nil
}

func (s *FCMSender) SendToToken(ctx context.Context, token, title, body string) (string, error) {
	message := &messaging.Message{
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Token: token,
	}
	messageID, err := s.client.Send(ctx, message)
	if err != nil {
		return "", fmt.Errorf("FCMSender.SendToToken: %w", err)
	}
	return messageID, nil
}
