package api

import (
	"context"
	"net/http"

	"huntx-client/internal/models"
)

// Notifications lists the notifications of the signed-in user, newest first.
func (c *Client) Notifications(ctx context.Context) ([]models.Notification, error) {
	var out notificationList
	if err := c.read(ctx, "list notifications", request{
		method: http.MethodGet,
		route:  "/notifications/list",
		path:   "/notifications/list",
		auth:   true,
	}, &out); err != nil {
		return nil, err
	}
	list := make([]models.Notification, 0, len(out.Notifications))
	for _, n := range out.Notifications {
		list = append(list, n.model())
	}
	return list, nil
}

// MarkNotificationsRead marks every notification read on the backend.
func (c *Client) MarkNotificationsRead(ctx context.Context) error {
	return c.read(ctx, "mark notifications read", request{
		method: http.MethodPost,
		route:  "/notifications/mark-read",
		path:   "/notifications/mark-read",
		body:   struct{}{},
		auth:   true,
	}, nil)
}
