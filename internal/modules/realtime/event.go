package realtime

// Event is one room-scoped occurrence pushed to every live connection of
// a user. Channel is the wire-level "type"; NotificationID ties the event
// back to its persisted record so that clients can de-duplicate the
// generic and the type-named emission of the same occurrence.
type Event struct {
	Channel        string `json:"type"`
	NotificationID int64  `json:"notification_id,omitempty"`
	Payload        any    `json:"payload,omitempty"`
}

// ChannelNotification is the generic channel every client listens on;
// it carries the full notification record.
const ChannelNotification = "notification"

const (
	EventAuthenticated = "authenticated"
	EventError         = "error"
	EventPong          = "pong"
)

// clientMessage is what we accept from the socket. Only authenticate
// (with a verifiable token, never a bare user id) and ping are handled.
type clientMessage struct {
	Type  string `json:"type"`
	Token string `json:"token,omitempty"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newErrorEvent(code, message string) *Event {
	return &Event{
		Channel: EventError,
		Payload: errorPayload{Code: code, Message: message},
	}
}
