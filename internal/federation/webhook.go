package federation

import (
	"context"

	"github.com/lukelittle/claroz/internal/core"
)

// HandleWebhook acknowledges a notification from a federation server.
// Signature verification and applying profile updates are known gaps: no
// verification scheme is specified by the protocol subset this system
// consumes, so the event is acknowledged without acting on it.
func (s *Service) HandleWebhook(_ context.Context, event core.WebhookEvent) error {
	if err := s.verifyWebhookSignature(event); err != nil {
		s.Logger.Warn("webhook signature not verified", "type", event.Type, "error", err)
	}

	switch event.Type {
	case "profile.update":
		s.Logger.Info("acknowledged profile.update webhook", "handle", event.Handle)
	default:
		s.Logger.Warn("unknown webhook event type", "type", event.Type)
	}

	return nil
}

func (s *Service) verifyWebhookSignature(_ core.WebhookEvent) error {
	return core.ErrNotImplemented
}
