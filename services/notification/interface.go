package notification

import (
	"context"
	"errors"
	"fmt"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// ErrNoDevice means the account has no registered push token.
var ErrNoDevice = errors.New("no registered device")

// Dispatcher delivers one push to one device token.
type Dispatcher interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}

// FCMDispatcher sends pushes through Firebase Cloud Messaging.
type FCMDispatcher struct {
	client *messaging.Client
	logger *zap.Logger
}

func NewFCMDispatcher(client *messaging.Client, logger *zap.Logger) (*FCMDispatcher, error) {
	if client == nil {
		return nil, fmt.Errorf("notification dispatcher initialization error: messaging client is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FCMDispatcher{client: client, logger: logger}, nil
}

func (d *FCMDispatcher) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	if token == "" {
		return ErrNoDevice
	}
	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}

	id, err := d.client.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to send FCM message: %w", err)
	}
	d.logger.Debug("FCM message sent", zap.String("messageId", id))
	return nil
}

// LogDispatcher only logs. Used when Firebase is not configured.
type LogDispatcher struct {
	Logger *zap.Logger
}

func (d LogDispatcher) Send(_ context.Context, token, title, body string, data map[string]string) error {
	if token == "" {
		return ErrNoDevice
	}
	if d.Logger != nil {
		d.Logger.Info("Push (log only)", zap.String("title", title), zap.String("body", body), zap.Any("data", data))
	}
	return nil
}
