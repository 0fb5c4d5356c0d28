// Package session owns the authenticated identity of the client.
package session

import (
	"context"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"sync"

	"huntx-client/internal/listeners"
	"huntx-client/internal/models"
	"huntx-client/internal/repositories"
	"huntx-client/internal/telemetry"
)

// AuthAPI is the part of the REST client used by the store.
type AuthAPI interface {
	SignIn(ctx context.Context, creds models.Credentials) (models.AuthResult, error)
	SignUp(ctx context.Context, req models.SignUpRequest) (string, error)
}

// Store holds the current session. Every change is persisted before it becomes
// visible to readers and listeners.
type Store struct {
	auth  AuthAPI
	repo  repositories.SessionRepository
	audit *telemetry.AuditEmitter

	// persistMu serializes persist-then-swap so two mutations never interleave.
	persistMu sync.Mutex
	mu        sync.RWMutex
	current   models.Session

	listeners listeners.Registry[models.Session]
}

func NewStore(auth AuthAPI, repo repositories.SessionRepository, audit *telemetry.AuditEmitter) *Store {
	return &Store{
		auth:    auth,
		repo:    repo,
		audit:   audit,
		current: models.Session{Theme: models.ThemeLight},
	}
}

// Init loads the persisted session. A record with only one of token and user id
// is discarded and cleared from storage.
func (s *Store) Init(ctx context.Context) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	loaded, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if loaded.Theme != models.ThemeDark {
		loaded.Theme = models.ThemeLight
	}

	partial := (loaded.Token == "") != (loaded.UserID == "")
	if partial {
		log.Printf("discarding partial persisted session user_id=%s", loaded.UserID)
		if err := s.repo.Clear(ctx); err != nil {
			return fmt.Errorf("clear partial session: %w", err)
		}
		loaded = models.Session{Theme: models.ThemeLight}
	}
	if !loaded.Valid() {
		loaded = models.Session{Theme: loaded.Theme}
	}

	s.swap(loaded)
	return nil
}

// SignIn validates creds, authenticates against the backend and stores the
// resulting session.
func (s *Store) SignIn(ctx context.Context, creds models.Credentials) (models.Session, error) {
	const op = "signin"
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || creds.Password == "" {
		return models.Session{}, models.Errorf(models.KindAuth, op, models.ErrValidation, "all fields are required")
	}

	res, err := s.auth.SignIn(ctx, creds)
	if err != nil {
		s.audit.Emit(ctx, "warn", "signin_failed", err.Error(), "")
		return models.Session{}, err
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	next := models.Session{
		UserID:      res.UserID,
		Token:       res.Token,
		Role:        res.Role,
		DisplayName: res.DisplayName,
		Theme:       s.Theme(),
	}
	if err := s.repo.Save(ctx, next); err != nil {
		return models.Session{}, models.NewError(models.KindAuth, op, fmt.Errorf("persist session: %w", err))
	}
	s.swap(next)
	log.Printf("signed in user_id=%s role=%s", next.UserID, next.Role)
	s.audit.Emit(ctx, "info", "signin", "user signed in", next.UserID)
	return next, nil
}

// SignUp creates an account. It does not sign the user in.
func (s *Store) SignUp(ctx context.Context, req models.SignUpRequest) (string, error) {
	const op = "signup"
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return "", models.Errorf(models.KindAuth, op, models.ErrValidation, "all fields are required")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return "", models.Errorf(models.KindAuth, op, models.ErrValidation, "invalid email address")
	}
	role, ok := models.ParseRole(string(req.Role))
	if !ok {
		return "", models.Errorf(models.KindAuth, op, models.ErrValidation, "role must be %q or %q", models.RoleJobSeeker, models.RoleEmployer)
	}
	req.Role = role

	msg, err := s.auth.SignUp(ctx, req)
	if err != nil {
		return "", err
	}
	s.audit.Emit(ctx, "info", "signup", "account created", "")
	return msg, nil
}

// SignOut clears every session key together. The theme returns to light.
func (s *Store) SignOut(ctx context.Context) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	prev, _ := s.Current()
	if err := s.repo.Clear(ctx); err != nil {
		return models.NewError(models.KindAuth, "signout", fmt.Errorf("clear session: %w", err))
	}
	s.swap(models.Session{Theme: models.ThemeLight})
	if prev.UserID != "" {
		log.Printf("signed out user_id=%s", prev.UserID)
		s.audit.Emit(ctx, "info", "signout", "user signed out", prev.UserID)
	}
	return nil
}

// Current returns the session and whether it is valid.
func (s *Store) Current() (models.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.current.Valid()
}

// Token is the bearer token of the current session, or "".
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Token
}

// Theme returns the current color preference.
func (s *Store) Theme() models.Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current.Theme == "" {
		return models.ThemeLight
	}
	return s.current.Theme
}

// ToggleTheme flips the theme and persists it with the rest of the session.
func (s *Store) ToggleTheme(ctx context.Context) (models.Theme, error) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	next, _ := s.Current()
	next.Theme = s.Theme().Toggle()
	if err := s.repo.Save(ctx, next); err != nil {
		return s.Theme(), fmt.Errorf("persist theme: %w", err)
	}
	s.swap(next)
	return next.Theme, nil
}

// SetDisplayName updates the name shown for the signed-in user.
func (s *Store) SetDisplayName(ctx context.Context, name string) error {
	const op = "set display name"
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Errorf(models.KindSend, op, models.ErrValidation, "name is required")
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	next, ok := s.Current()
	if !ok {
		return models.NewError(models.KindAuth, op, models.ErrNotSignedIn)
	}
	if next.DisplayName == name {
		return nil
	}
	next.DisplayName = name
	if err := s.repo.Save(ctx, next); err != nil {
		return models.NewError(models.KindSend, op, fmt.Errorf("persist session: %w", err))
	}
	s.swap(next)
	s.audit.Emit(ctx, "info", "profile_update", "display name changed", next.UserID)
	return nil
}

// OnChange registers fn for every session change, including sign-out.
func (s *Store) OnChange(fn func(models.Session)) (cancel func()) {
	return s.listeners.Add(fn)
}

func (s *Store) swap(next models.Session) {
	s.mu.Lock()
	s.current = next
	s.mu.Unlock()
	s.listeners.Notify(next)
}
