package scheduler

import (
	"context"
	"fmt"

	"fullhouse_client/internal/api/transport"
	"fullhouse_client/internal/chat"
	"fullhouse_client/platform/apperr"
	"fullhouse_client/platform/events"
	"fullhouse_client/platform/logger"

	"github.com/hibiken/asynq"
)

// PreferenceAPI is the remote endpoint completed conversations are posted to.
type PreferenceAPI interface {
	SaveChatPreferences(ctx context.Context, token string, payload transport.ChatPreferencePayload) (transport.ChatPreferenceResponse, error)
}

// Syncer delivers preference payloads to the API.
type Syncer struct {
	api PreferenceAPI
	log *logger.Logger
}

func NewSyncer(api PreferenceAPI, log *logger.Logger) *Syncer {
	if log == nil {
		log = logger.NewNop()
	}
	return &Syncer{api: api, log: log}
}

// Sync posts one payload. Client-side rejections are wrapped with asynq.SkipRetry.
func (s *Syncer) Sync(ctx context.Context, payload ChatPreferencesSyncPayload) (transport.ChatPreferenceResponse, error) {
	log := s.log.WithContext(ctx).WithSessionID(payload.SessionID)

	res, err := s.api.SaveChatPreferences(ctx, "", payload.Preferences)
	if err != nil {
		log.Warn("preference sync failed", "error", err)
		if permanent(err) {
			return res, fmt.Errorf("%w: %w", asynq.SkipRetry, err)
		}
		return res, err
	}

	leadID := int64(0)
	if res.LeadID != nil {
		leadID = *res.LeadID
	}
	log.Info("preferences synced", "saved", res.Saved, "lead_id", leadID, "interest_level", res.InterestLevel)
	return res, nil
}

// EnqueuePreferenceSync delivers inline. Used when no queue is configured.
func (s *Syncer) EnqueuePreferenceSync(ctx context.Context, payload ChatPreferencesSyncPayload) error {
	_, err := s.Sync(ctx, payload)
	return err
}

func permanent(err error) bool {
	switch apperr.GetKind(err) {
	case apperr.KindValidation, apperr.KindBadRequest, apperr.KindNotFound,
		apperr.KindUnauthorized, apperr.KindForbidden, apperr.KindConflict:
		return true
	}
	return false
}

// SubscribePreferenceSync enqueues every completed conversation.
func SubscribePreferenceSync(bus events.Bus, enq PreferenceEnqueuer, log *logger.Logger) {
	if log == nil {
		log = logger.NewNop()
	}
	bus.Subscribe(chat.EventConversationCompleted, events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		done, ok := event.(chat.ConversationCompleted)
		if !ok {
			return nil
		}
		if err := enq.EnqueuePreferenceSync(ctx, PayloadFromConversation(done)); err != nil {
			log.WithContext(ctx).WithSessionID(done.SessionID).Error("enqueue preference sync", "error", err)
			return err
		}
		return nil
	}))
}

var (
	_ PreferenceEnqueuer = (*Client)(nil)
	_ PreferenceEnqueuer = (*Syncer)(nil)
)
