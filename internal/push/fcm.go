package push

import (
	"context"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCMSink sends notifications through Firebase Cloud Messaging.
type FCMSink struct {
	client *messaging.Client
}

// NewFCMSink builds an FCM client from service-account credentials.
// The private key in env files carries literal \n sequences; the SDK
// expects real newlines in the PEM.
func NewFCMSink(ctx context.Context, projectID, clientEmail, privateKey string) (*FCMSink, error) {
	privateKey = strings.ReplaceAll(privateKey, "\\n", "\n")

	credsJSON := fmt.Sprintf(`{
		"type": "service_account",
		"project_id": %q,
		"private_key": %q,
		"client_email": %q,
		"token_uri": "https://oauth2.googleapis.com/token"
	}`, projectID, privateKey, clientEmail)

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsJSON([]byte(credsJSON)))
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("get messaging client: %w", err)
	}

	return &FCMSink{client: client}, nil
}

// Send delivers one notification to one token, with APNs sound and badge
// overrides for the iOS client.
func (s *FCMSink) Send(ctx context.Context, token string, n *Notification) error {
	sound := n.Sound
	if sound == "" {
		sound = "default"
	}
	badge := n.Badge

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: sound,
					Badge: &badge,
				},
			},
		},
	}

	if _, err := s.client.Send(ctx, msg); err != nil {
		return fmt.Errorf("fcm send: %w", err)
	}
	return nil
}
