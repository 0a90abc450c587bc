package models

// TriggerKind classifies an inbound chat event.
type TriggerKind string

const (
	TriggerCommand  TriggerKind = "command"
	TriggerFreeText TriggerKind = "free_text"
	TriggerButton   TriggerKind = "button"
)

// Event is one inbound input from the chat transport, already classified
// by the router. Payload carries the command token, button token, or the
// raw text, depending on Trigger.
type Event struct {
	UserID  int64
	Trigger TriggerKind
	Payload string
}

// Choice is one tappable option offered with an outbound message. Label
// is shown to the user; Token is what comes back when tapped.
type Choice struct {
	Label string
	Token string
}

// Message is one outbound chat message with an optional ordered choice set.
type Message struct {
	Text    string
	Choices []Choice
}

// Response is a raw inbound message from the messaging transport before
// routing: who sent it, the text, and the unix timestamp.
type Response struct {
	From string
	Body string
	Time int64
}
