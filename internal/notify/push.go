package notify

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/model"
)

// ErrExpired is returned when a push subscription is no longer valid
// (410 Gone); callers should drop the subscription.
var ErrExpired = errors.New("push subscription expired")

// Payload is the JSON delivered to the push service.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Tag   string `json:"tag,omitempty"`
}

// Service sends web push notifications, currently only new-device sign-in
// alerts.
type Service struct {
	publicKey  string
	privateKey string
	subscriber string
	logger     *slog.Logger
}

// NewService returns nil when the VAPID keys are not configured; callers
// treat a nil service as push disabled.
func NewService(publicKey, privateKey, subscriber string, logger *slog.Logger) *Service {
	if publicKey == "" || privateKey == "" {
		return nil
	}
	return &Service{
		publicKey:  publicKey,
		privateKey: privateKey,
		subscriber: subscriber,
		logger:     logger,
	}
}

// VAPIDPublicKey is exposed so clients can subscribe.
func (s *Service) VAPIDPublicKey() string { return s.publicKey }

// Send pushes a payload to one subscription.
func (s *Service) Send(sub model.PushSubscription, payload Payload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	resp, err := webpush.SendNotification(data, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		Subscriber:      s.subscriber,
		TTL:             86400,
	})
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		return ErrExpired
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("push service returned %d", resp.StatusCode)
	}
	return nil
}

// SignInAlert notifies every subscription of the user about a sign-in from
// a previously unseen device. Best-effort: failures are logged, expired
// subscriptions reported back for pruning.
func (s *Service) SignInAlert(subs []model.PushSubscription, userID, platform string) []string {
	var expired []string
	body := "New sign-in to your account"
	if platform != "" {
		body = "New sign-in from a " + platform + " device"
	}
	for _, sub := range subs {
		if sub.UserID != userID {
			continue
		}
		err := s.Send(sub, Payload{Title: "New device sign-in", Body: body, Tag: "signin"})
		switch {
		case errors.Is(err, ErrExpired):
			expired = append(expired, sub.ID)
		case err != nil:
			s.logger.Warn("push sign-in alert", "error", err)
		}
	}
	return expired
}
