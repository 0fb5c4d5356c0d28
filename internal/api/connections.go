package api

import (
	"context"
	"net/http"

	"huntx-client/internal/models"
)

// Connections returns the network of the signed-in user.
func (c *Client) Connections(ctx context.Context) (models.ConnectionList, error) {
	var out connectionList
	if err := c.read(ctx, "list connections", request{
		method: http.MethodGet,
		route:  "/connections/list",
		path:   "/connections/list",
		auth:   true,
	}, &out); err != nil {
		return models.ConnectionList{}, err
	}
	return models.ConnectionList{
		Connections:     contacts(out.Connections),
		PendingRequests: contacts(out.PendingRequests),
		SentRequests:    contacts(out.SentRequests),
	}, nil
}

// ConnectionAction is one of the POST /connections/:action endpoints.
type ConnectionAction string

const (
	ActionConnect ConnectionAction = "connect"
	ActionAccept  ConnectionAction = "accept"
	ActionReject  ConnectionAction = "reject"
	ActionRemove  ConnectionAction = "remove"
)

type connectionActionRequest struct {
	UserID string `json:"userId"`
}

// ConnectionAction performs action against userID.
func (c *Client) ConnectionAction(ctx context.Context, action ConnectionAction, userID string) error {
	return c.write(ctx, string(action)+" connection", request{
		method: http.MethodPost,
		route:  "/connections/" + string(action),
		path:   "/connections/" + string(action),
		body:   connectionActionRequest{UserID: userID},
		auth:   true,
	}, nil)
}

// Users lists every registered user. Filtering happens on the client.
func (c *Client) Users(ctx context.Context) ([]models.Contact, error) {
	var out []ref
	if err := c.read(ctx, "list users", request{
		method: http.MethodGet,
		route:  "/users/list",
		path:   "/users/list",
		auth:   true,
	}, &out); err != nil {
		return nil, err
	}
	return contacts(out), nil
}
