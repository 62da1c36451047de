package firebase

import (
	"context"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// App holds the initialized Firebase app and messaging client used for
// best-effort push delivery of notifications.
type App struct {
	FirebaseApp     *firebase.App
	MessagingClient *messaging.Client

	log *zap.Logger
}

// InitFirebase initializes the Firebase application and messaging client
func InitFirebase(ctx context.Context, credentialsPath string, log *zap.Logger) (*App, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("firebase credentials path not provided")
	}
	if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("firebase credentials file not found at %s", credentialsPath)
	}

	opt := option.WithCredentialsFile(credentialsPath)

	firebaseApp, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	messagingClient, err := firebaseApp.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firebase messaging client: %w", err)
	}

	return &App{FirebaseApp: firebaseApp, MessagingClient: messagingClient, log: log}, nil
}

// SendPush delivers a push notification to a device token. Failures are
// logged and swallowed: push is a courtesy layer over the in-app
// notification row, never the source of truth.
func (a *App) SendPush(ctx context.Context, deviceToken, title, body string) {
	if a == nil || a.MessagingClient == nil || deviceToken == "" {
		return
	}
	msg := &messaging.Message{
		Token: deviceToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
	}
	if _, err := a.MessagingClient.Send(ctx, msg); err != nil {
		a.log.Warn("push delivery failed", zap.Error(err))
	}
}
