package slack

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestService_NilReceiver(t *testing.T) {
	var s *Service

	t.Run("NotifyModerationEscalated is no-op", func(_ *testing.T) {
		s.NotifyModerationEscalated(context.Background(), "item-1", "profile_text", "contains slur")
	})

	t.Run("NotifyAdmin is no-op", func(_ *testing.T) {
		s.NotifyAdmin(context.Background(), "subject", "body")
	})
}

func TestNewService(t *testing.T) {
	t.Run("returns nil when token empty", func(t *testing.T) {
		assert.Nil(t, NewService(ServiceConfig{Token: "", Channel: "C123"}))
	})

	t.Run("returns nil when channel empty", func(t *testing.T) {
		assert.Nil(t, NewService(ServiceConfig{Token: "xoxb-test", Channel: ""}))
	})

	t.Run("returns service when configured", func(t *testing.T) {
		assert.NotNil(t, NewService(ServiceConfig{Token: "xoxb-test", Channel: "C123"}))
	})
}
