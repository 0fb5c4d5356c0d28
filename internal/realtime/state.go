package realtime

// State is the lifecycle state of the channel.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "disconnected"
	}
}

// Event names exchanged with the broker.
const (
	EventJoin                      = "join"
	EventSendMessage               = "sendMessage"
	EventNewMessage                = "newMessage"
	EventNewMessageNotification    = "newMessageNotification"
	EventNewJobNotification        = "newJobNotification"
	EventNewPostNotification       = "newPostNotification"
	EventNewConnectionNotification = "newConnectionNotification"
)
