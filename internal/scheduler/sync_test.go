package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"

	"fullhouse_client/internal/api/transport"
	"fullhouse_client/internal/chat"
	"fullhouse_client/platform/apperr"
	"fullhouse_client/platform/events"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu    sync.Mutex
	calls []transport.ChatPreferencePayload
	err   error
}

func (f *fakeAPI) SaveChatPreferences(_ context.Context, _ string, payload transport.ChatPreferencePayload) (transport.ChatPreferenceResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, payload)
	if f.err != nil {
		return transport.ChatPreferenceResponse{}, f.err
	}
	id := int64(77)
	return transport.ChatPreferenceResponse{LeadID: &id, Saved: true}, nil
}

type fakeEnqueuer struct {
	payloads []ChatPreferencesSyncPayload
}

func (f *fakeEnqueuer) EnqueuePreferenceSync(_ context.Context, p ChatPreferencesSyncPayload) error {
	f.payloads = append(f.payloads, p)
	return nil
}

func completed() chat.ConversationCompleted {
	pid := int64(12)
	return chat.ConversationCompleted{
		SessionID:  "sess-1",
		ContactKey: "ana@example.com",
		PropertyID: &pid,
		Preferences: chat.Preferences{
			chat.KeyPropertyType: "apartamento",
			chat.KeyZone:         "Chapinero",
			chat.KeyBudget:       int64(350000),
			chat.KeyBedrooms:     int64(3),
			chat.KeyParking:      true,
		},
		LastMessage: "si",
	}
}

func TestPayloadFromConversation(t *testing.T) {
	p := PayloadFromConversation(completed())

	assert.Equal(t, "sess-1", p.SessionID)
	prefs := p.Preferences
	assert.Equal(t, "si", prefs.Mensaje)
	assert.Equal(t, "chat_web", prefs.Canal)
	assert.Equal(t, "ana@example.com", prefs.Contacto)
	assert.Equal(t, "apartamento", prefs.TipoPropiedad)
	assert.Equal(t, "Chapinero", prefs.Zona)
	require.NotNil(t, prefs.Presupuesto)
	assert.Equal(t, int64(350000), *prefs.Presupuesto)
	require.NotNil(t, prefs.Habitaciones)
	assert.Equal(t, int64(3), *prefs.Habitaciones)
	assert.Nil(t, prefs.Banos)
	require.NotNil(t, prefs.Garaje)
	assert.True(t, *prefs.Garaje)
	assert.Equal(t, int64(12), *prefs.PropertyID)
}

func TestTaskPayloadKeepsIntegers(t *testing.T) {
	task, err := NewChatPreferencesSyncTask(PayloadFromConversation(completed()))
	require.NoError(t, err)
	assert.Equal(t, TaskChatPreferencesSync, task.Type())

	parsed, err := ParseChatPreferencesSyncPayload(task)
	require.NoError(t, err)
	assert.Equal(t, int64(350000), *parsed.Preferences.Presupuesto)
}

func TestSubscribeEnqueuesCompletedConversations(t *testing.T) {
	bus := events.NewInMemoryBus(nil)
	enq := &fakeEnqueuer{}
	SubscribePreferenceSync(bus, enq, nil)

	require.NoError(t, bus.PublishSync(context.Background(), completed()))
	require.Len(t, enq.payloads, 1)
	assert.Equal(t, "sess-1", enq.payloads[0].SessionID)
}

func TestWorkerPostsPreferences(t *testing.T) {
	api := &fakeAPI{}
	w := newWorker(api, nil)

	task, err := NewChatPreferencesSyncTask(PayloadFromConversation(completed()))
	require.NoError(t, err)

	require.NoError(t, w.mux.ProcessTask(context.Background(), task))
	require.Len(t, api.calls, 1)
	assert.Equal(t, "Chapinero", api.calls[0].Zona)
}

func TestWorkerSkipsRetryOnRejection(t *testing.T) {
	api := &fakeAPI{err: apperr.FromStatus(422, "mensaje requerido")}
	w := newWorker(api, nil)
	task, _ := NewChatPreferencesSyncTask(ChatPreferencesSyncPayload{SessionID: "x"})

	err := w.mux.ProcessTask(context.Background(), task)
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestWorkerRetriesTransportFailures(t *testing.T) {
	api := &fakeAPI{err: apperr.Transport(errors.New("connection refused"))}
	w := newWorker(api, nil)
	task, _ := NewChatPreferencesSyncTask(ChatPreferencesSyncPayload{SessionID: "x"})

	err := w.mux.ProcessTask(context.Background(), task)
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestWorkerRejectsMalformedPayload(t *testing.T) {
	w := newWorker(&fakeAPI{}, nil)

	err := w.mux.ProcessTask(context.Background(), asynq.NewTask(TaskChatPreferencesSync, []byte("{")))
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestSyncerEnqueuesInline(t *testing.T) {
	api := &fakeAPI{}
	s := NewSyncer(api, nil)

	require.NoError(t, s.EnqueuePreferenceSync(context.Background(), PayloadFromConversation(completed())))
	assert.Len(t, api.calls, 1)
}
