package chat

import "fullhouse_client/platform/events"

// Event names published by the collector.
const (
	EventStepAdvanced          = "chat.step_advanced"
	EventConversationCompleted = "chat.conversation_completed"
	EventTurnFailed            = "chat.turn_failed"
	EventPropertyPrefilled     = "chat.property_prefilled"
)

// StepAdvanced is published once per step when its answer is accepted.
type StepAdvanced struct {
	events.BaseEvent
	SessionID string `json:"sessionId"`
	StepIndex int    `json:"stepIndex"`
	StepKey   string `json:"stepKey"`
	Seq       uint64 `json:"seq"`
}

func (StepAdvanced) EventName() string { return EventStepAdvanced }

// ConversationCompleted is published when the last step is answered.
type ConversationCompleted struct {
	events.BaseEvent
	SessionID   string      `json:"sessionId"`
	ContactKey  string      `json:"contactKey,omitempty"`
	PropertyID  *int64      `json:"propertyId,omitempty"`
	Preferences Preferences `json:"preferences"`
	// LastMessage is the answer that completed the flow.
	LastMessage string `json:"lastMessage"`
}

func (ConversationCompleted) EventName() string { return EventConversationCompleted }

// TurnFailed is published when the analyzer call fails.
type TurnFailed struct {
	events.BaseEvent
	SessionID string `json:"sessionId"`
	StepIndex int    `json:"stepIndex"`
	Seq       uint64 `json:"seq"`
	Message   string `json:"message"`
}

func (TurnFailed) EventName() string { return EventTurnFailed }

// PropertyPrefilled is published the one time a session is seeded from a property.
type PropertyPrefilled struct {
	events.BaseEvent
	SessionID  string   `json:"sessionId"`
	PropertyID int64    `json:"propertyId"`
	SeededKeys []string `json:"seededKeys"`
}

func (PropertyPrefilled) EventName() string { return EventPropertyPrefilled }
