package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"huntx-client/internal/models"
	"huntx-client/internal/observability"
	"huntx-client/internal/telemetry"
)

// TokenSource supplies the bearer token of the current session.
type TokenSource interface {
	Token() string
}

// Client talks to the job-board REST backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	tracer     trace.Tracer
}

// NewClient builds a client for baseURL. tokens may be nil for unauthenticated use
// and set later with SetTokenSource.
func NewClient(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/") + "/api",
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
		tracer:     otel.Tracer("huntx-client/api"),
	}
}

// SetTokenSource replaces the bearer token source.
func (c *Client) SetTokenSource(tokens TokenSource) {
	c.tokens = tokens
}

// StatusError is a non-2xx backend answer.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Message)
}

// validator is implemented by response types that check their own shape.
type validator interface {
	validate() error
}

type request struct {
	method string
	route  string // metric and span label, e.g. "/jobs/list/:id"
	path   string
	query  url.Values
	body   any
	auth   bool
}

// read performs a call whose failure is a FetchError.
func (c *Client) read(ctx context.Context, op string, req request, out any) error {
	if err := c.do(ctx, req, out); err != nil {
		return classify(models.KindFetch, op, err)
	}
	return nil
}

// write performs a call whose failure is a SendError.
func (c *Client) write(ctx context.Context, op string, req request, out any) error {
	if err := c.do(ctx, req, out); err != nil {
		return classify(models.KindSend, op, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, req request, out any) error {
	ctx, span := c.tracer.Start(ctx, "api "+req.method+" "+req.route, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	var token string
	if req.auth {
		if c.tokens != nil {
			token = c.tokens.Token()
		}
		if token == "" {
			span.SetStatus(codes.Error, "not signed in")
			return models.ErrNotSignedIn
		}
	}

	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	requestID := telemetry.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	httpReq.Header.Set(observability.RequestIDHeader, requestID)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	span.SetAttributes(
		attribute.String("http.method", req.method),
		attribute.String("http.route", req.route),
		attribute.String("request.id", requestID),
	)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		observability.ObserveAPIRequest(req.method, req.route, 0, time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")
		return fmt.Errorf("%w: %w", models.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()
	observability.ObserveAPIRequest(req.method, req.route, resp.StatusCode, time.Since(start))
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		statusErr := &StatusError{Status: resp.StatusCode, Message: backendMessage(bodyBytes)}
		span.SetStatus(codes.Error, statusErr.Error())
		return statusErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		span.SetStatus(codes.Error, "decode")
		return fmt.Errorf("%w: decode: %v", models.ErrShapeMismatch, err)
	}
	if v, ok := out.(validator); ok {
		if err := v.validate(); err != nil {
			span.SetStatus(codes.Error, "shape")
			return fmt.Errorf("%w: %v", models.ErrShapeMismatch, err)
		}
	}
	return nil
}

func backendMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(body))
}

// classify turns a transport level error into a client Error of the given kind.
func classify(kind models.ErrorKind, op string, err error) error {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return &models.Error{Kind: kind, Op: op, Message: statusErr.Message, Err: causeForStatus(statusErr.Status, statusErr)}
	}
	return models.NewError(kind, op, err)
}

func causeForStatus(status int, err error) error {
	var cause error
	switch {
	case status == http.StatusUnauthorized:
		cause = models.ErrNotSignedIn
	case status == http.StatusForbidden:
		cause = models.ErrForbidden
	case status == http.StatusNotFound:
		cause = models.ErrNotFound
	case status == http.StatusBadRequest, status == http.StatusConflict, status == http.StatusUnprocessableEntity:
		cause = models.ErrValidation
	default:
		cause = models.ErrNetworkFailure
	}
	return fmt.Errorf("%w: %w", cause, err)
}
