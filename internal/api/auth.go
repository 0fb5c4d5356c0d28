package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"huntx-client/internal/models"
)

// SignIn exchanges credentials for a session token. Rejections by the backend are
// reported as ErrInvalidCredentials, everything else as ErrNetworkFailure.
func (c *Client) SignIn(ctx context.Context, creds models.Credentials) (models.AuthResult, error) {
	const op = "signin"

	var resp authResponse
	err := c.do(ctx, request{method: http.MethodPost, route: "/auth/signin", path: "/auth/signin", body: creds}, &resp)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			switch statusErr.Status {
			case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
				return models.AuthResult{}, &models.Error{Kind: models.KindAuth, Op: op, Message: statusErr.Message, Err: fmt.Errorf("%w: %w", models.ErrInvalidCredentials, statusErr)}
			}
			return models.AuthResult{}, &models.Error{Kind: models.KindAuth, Op: op, Message: statusErr.Message, Err: fmt.Errorf("%w: %w", models.ErrNetworkFailure, statusErr)}
		}
		if errors.Is(err, models.ErrShapeMismatch) {
			return models.AuthResult{}, models.NewError(models.KindAuth, op, err)
		}
		return models.AuthResult{}, models.NewError(models.KindAuth, op, fmt.Errorf("%w: %w", models.ErrNetworkFailure, err))
	}

	role, _ := models.ParseRole(resp.Role)
	result := models.AuthResult{Token: resp.Token, Role: role, UserID: resp.UserID, DisplayName: resp.Name}
	if resp.User != nil {
		if result.UserID == "" {
			result.UserID = resp.User.ID
		}
		if result.DisplayName == "" {
			result.DisplayName = resp.User.Name
		}
	}
	if result.UserID == "" || result.DisplayName == "" {
		claims := TokenClaims(resp.Token)
		if result.UserID == "" {
			result.UserID = claims.UserID
		}
		if result.DisplayName == "" {
			result.DisplayName = claims.Name
		}
	}
	if result.UserID == "" {
		return models.AuthResult{}, models.Errorf(models.KindAuth, op, models.ErrShapeMismatch, "sign-in response carries no user id")
	}
	return result, nil
}

// SignUp creates an account and returns the backend's confirmation text.
func (c *Client) SignUp(ctx context.Context, req models.SignUpRequest) (string, error) {
	const op = "signup"

	var resp messageResponse
	err := c.do(ctx, request{method: http.MethodPost, route: "/auth/signup", path: "/auth/signup", body: req}, &resp)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.Status < http.StatusInternalServerError {
			return "", &models.Error{Kind: models.KindAuth, Op: op, Message: statusErr.Message, Err: fmt.Errorf("%w: %w", models.ErrValidation, statusErr)}
		}
		if errors.Is(err, models.ErrShapeMismatch) {
			return "", models.NewError(models.KindAuth, op, err)
		}
		return "", models.NewError(models.KindAuth, op, fmt.Errorf("%w: %w", models.ErrNetworkFailure, err))
	}
	return resp.Message, nil
}

// Claims are the identity fields carried in a session token.
type Claims struct {
	UserID string
	Name   string
	Role   string
}

// TokenClaims reads identity claims from token without verifying the signature.
// A malformed token yields empty claims.
func TokenClaims(token string) Claims {
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return Claims{}
	}
	var claims Claims
	for _, key := range []string{"id", "userId", "_id", "sub"} {
		if v, ok := mc[key].(string); ok && v != "" {
			claims.UserID = v
			break
		}
	}
	if v, ok := mc["name"].(string); ok {
		claims.Name = v
	}
	if v, ok := mc["role"].(string); ok {
		claims.Role = v
	}
	return claims
}
