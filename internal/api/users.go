package api

import (
	"context"
	"net/http"

	"huntx-client/internal/models"
)

// Profile returns the signed-in user's profile.
func (c *Client) Profile(ctx context.Context) (models.Profile, error) {
	var out wireProfile
	if err := c.read(ctx, "get profile", request{
		method: http.MethodGet,
		route:  "/users/profile",
		path:   "/users/profile",
		auth:   true,
	}, &out); err != nil {
		return models.Profile{}, err
	}
	return out.model(), nil
}

// UpdateProfile applies update and returns the stored profile.
func (c *Client) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (models.Profile, error) {
	var out wireProfile
	if err := c.write(ctx, "update profile", request{
		method: http.MethodPut,
		route:  "/users/profile",
		path:   "/users/profile",
		body:   update,
		auth:   true,
	}, &out); err != nil {
		return models.Profile{}, err
	}
	return out.model(), nil
}
