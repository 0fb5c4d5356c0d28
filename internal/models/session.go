package models

import "strings"

// Role is the account type chosen at sign-up.
type Role string

const (
	RoleJobSeeker Role = "Job Seeker"
	RoleEmployer  Role = "Employer"
)

// ParseRole accepts the wire value as well as the compact spellings used on the CLI.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "")) {
	case "jobseeker", "seeker":
		return RoleJobSeeker, true
	case "employer":
		return RoleEmployer, true
	}
	return "", false
}

// Theme is the UI color preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Toggle returns the opposite theme. Unknown values toggle to dark.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Session is the authenticated identity of the current user.
type Session struct {
	UserID      string `json:"userId"`
	Token       string `json:"-"`
	Role        Role   `json:"role"`
	DisplayName string `json:"displayName"`
	Theme       Theme  `json:"theme"`
}

// Valid reports whether both halves of the identity are present.
func (s Session) Valid() bool {
	return s.Token != "" && s.UserID != ""
}

// Credentials are submitted on sign-in.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUpRequest is submitted on account creation.
type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// AuthResult is the normalized sign-in response.
type AuthResult struct {
	Token       string
	Role        Role
	UserID      string
	DisplayName string
}
