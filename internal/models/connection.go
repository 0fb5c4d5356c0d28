package models

import "fmt"

// ConnectionStatus is the state of a network relationship between two users.
type ConnectionStatus string

const (
	ConnectionNone      ConnectionStatus = "none"
	ConnectionPending   ConnectionStatus = "pending"
	ConnectionConnected ConnectionStatus = "connected"
)

// ConnectionRequest is a directed request that collapses into a symmetric
// connection once accepted.
type ConnectionRequest struct {
	RequesterID string           `json:"requesterId"`
	TargetID    string           `json:"targetId"`
	Status      ConnectionStatus `json:"status"`
}

var allowedTransitions = map[ConnectionStatus][]ConnectionStatus{
	ConnectionNone:      {ConnectionPending},
	ConnectionPending:   {ConnectionConnected, ConnectionNone},
	ConnectionConnected: {ConnectionNone},
}

// CanTransition reports whether from -> to is allowed.
func CanTransition(from, to ConnectionStatus) bool {
	if from == "" {
		from = ConnectionNone
	}
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition moves the request to status to, or returns ErrInvalidTransition.
func (r *ConnectionRequest) Transition(to ConnectionStatus) error {
	if !CanTransition(r.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.statusOrNone(), to)
	}
	r.Status = to
	return nil
}

// Incoming reports whether the request is pending and awaits userID's answer.
func (r ConnectionRequest) Incoming(userID string) bool {
	return r.Status == ConnectionPending && r.TargetID == userID
}

// Counterpart returns the other user in the relationship.
func (r ConnectionRequest) Counterpart(userID string) string {
	if r.RequesterID == userID {
		return r.TargetID
	}
	return r.RequesterID
}

func (r ConnectionRequest) statusOrNone() ConnectionStatus {
	if r.Status == "" {
		return ConnectionNone
	}
	return r.Status
}

// Contact is a user as listed in the network views.
type Contact struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Role           Role   `json:"role,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// ConnectionList is the backend view of the current user's network.
type ConnectionList struct {
	Connections     []Contact `json:"connections"`
	PendingRequests []Contact `json:"pendingRequests"`
	SentRequests    []Contact `json:"sentRequests,omitempty"`
}
