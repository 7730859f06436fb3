package scheduler

import (
	"encoding/json"

	"fullhouse_client/internal/api/transport"
	"fullhouse_client/internal/chat"

	"github.com/hibiken/asynq"
)

const TaskChatPreferencesSync = "chat.preferences.sync"

// syncChannel is reported to the API as the capture channel.
const syncChannel = "chat_web"

// ChatPreferencesSyncPayload carries a completed conversation. Preferences are
// typed before enqueueing so integers survive the JSON round trip.
type ChatPreferencesSyncPayload struct {
	SessionID   string                          `json:"sessionId"`
	Preferences transport.ChatPreferencePayload `json:"preferences"`
}

func NewChatPreferencesSyncTask(payload ChatPreferencesSyncPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskChatPreferencesSync, data), nil
}

func ParseChatPreferencesSyncPayload(task *asynq.Task) (ChatPreferencesSyncPayload, error) {
	var payload ChatPreferencesSyncPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ChatPreferencesSyncPayload{}, err
	}
	return payload, nil
}

// PayloadFromConversation maps the collected answers onto the API's field names.
func PayloadFromConversation(e chat.ConversationCompleted) ChatPreferencesSyncPayload {
	prefs := e.Preferences
	out := transport.ChatPreferencePayload{
		Mensaje:    e.LastMessage,
		Canal:      syncChannel,
		Contacto:   e.ContactKey,
		PropertyID: e.PropertyID,
	}
	if v, ok := prefs.String(chat.KeyPropertyType); ok {
		out.TipoPropiedad = v
	}
	if v, ok := prefs.String(chat.KeyZone); ok {
		out.Zona = v
	}
	if v, ok := prefs.Int(chat.KeyBudget); ok {
		out.Presupuesto = &v
	}
	if v, ok := prefs.Int(chat.KeyBedrooms); ok {
		out.Habitaciones = &v
	}
	if v, ok := prefs.Int(chat.KeyBathrooms); ok {
		out.Banos = &v
	}
	if v, ok := prefs.Bool(chat.KeyParking); ok {
		out.Garaje = &v
	}
	return ChatPreferencesSyncPayload{SessionID: e.SessionID, Preferences: out}
}
