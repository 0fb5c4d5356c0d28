// Package profile reads and edits the signed-in user's profile.
package profile

import (
	"context"
	"log"
	"strings"

	"huntx-client/internal/models"
)

// API is the part of the REST client used by the service.
type API interface {
	Profile(ctx context.Context) (models.Profile, error)
	UpdateProfile(ctx context.Context, update models.ProfileUpdate) (models.Profile, error)
}

// NameSetter receives display name changes. The session store implements it.
type NameSetter interface {
	SetDisplayName(ctx context.Context, name string) error
}

type Service struct {
	api   API
	names NameSetter
}

func NewService(client API, names NameSetter) *Service {
	return &Service{api: client, names: names}
}

// Get returns the signed-in user's profile.
func (s *Service) Get(ctx context.Context) (models.Profile, error) {
	return s.api.Profile(ctx)
}

// Update applies update. A changed name is propagated to the session.
func (s *Service) Update(ctx context.Context, update models.ProfileUpdate) (models.Profile, error) {
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return models.Profile{}, models.Errorf(models.KindSend, "update profile", models.ErrValidation, "name is required")
		}
		update.Name = &name
	}

	p, err := s.api.UpdateProfile(ctx, update)
	if err != nil {
		return models.Profile{}, err
	}
	if p.Name != "" && s.names != nil {
		if err := s.names.SetDisplayName(ctx, p.Name); err != nil {
			log.Printf("profile saved but display name not updated: %v", err)
		}
	}
	return p, nil
}
