// Package api is the typed client for the Spotly backend. It owns the wire
// formats of the admin endpoints and translates remote failures into the
// shared error taxonomy; callers never see raw HTTP statuses.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Mousaahmad63636/spotlymobile/internal/domain"
	"github.com/Mousaahmad63636/spotlymobile/pkg/httpclient"
	"github.com/Mousaahmad63636/spotlymobile/pkg/logger"
)

var (
	remoteRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spotly_admin_remote_requests_total",
			Help: "Requests issued to the Spotly backend by endpoint and outcome.",
		},
		[]string{"endpoint", "outcome"},
	)
	remoteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spotly_admin_remote_request_duration_seconds",
			Help:    "Latency of Spotly backend calls by endpoint.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
)

// Doer issues an HTTP request. Both httpclient.Client and
// httpclient.BreakerClient satisfy this.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// TokenSource supplies the current bearer token, or "" when logged out.
type TokenSource interface {
	Token() string
}

// Client talks to the Spotly backend REST API.
type Client struct {
	baseURL string
	http    Doer
	tokens  TokenSource
	logger  *slog.Logger
	tracer  trace.Tracer
}

// New creates a backend client. baseURL is the API root, e.g.
// "https://api.spotlylb.com/api"; a trailing slash is tolerated.
func New(baseURL string, doer Doer, tokens TokenSource, log *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    doer,
		tokens:  tokens,
		logger:  log,
		tracer:  otel.Tracer("spotly-admin/api"),
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// Login authenticates against the backend and returns the bearer token and
// account. It does not check the role; session admission is the caller's job.
func (c *Client) Login(ctx context.Context, email, password string) (string, domain.User, error) {
	var out loginResponse
	err := c.call(ctx, "login", http.MethodPost, "/users/login", loginRequest{Email: email, Password: password}, &out)
	if err != nil {
		return "", domain.User{}, err
	}
	c.logger.InfoContext(ctx, "logged in",
		slog.String("user_id", out.User.ID),
		slog.String("role", out.User.Role),
	)
	return out.Token, out.User, nil
}

// Orders fetches the complete admin order list.
func (c *Client) Orders(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	if err := c.call(ctx, "orders", http.MethodGet, "/orders", nil, &out); err != nil {
		return nil, err
	}
	c.logger.InfoContext(ctx, "orders fetched", slog.Int("count", len(out)))
	return out, nil
}

// Order fetches a single order by its backend ID.
func (c *Client) Order(ctx context.Context, id string) (domain.Order, error) {
	var out domain.Order
	if err := c.call(ctx, "order", http.MethodGet, "/orders/"+url.PathEscape(id), nil, &out); err != nil {
		return domain.Order{}, err
	}
	return out, nil
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

// UpdateOrderStatus asks the backend to move an order to a new status and
// returns the order from the update response. That order may be partial;
// service.Orders re-fetches the full record afterwards.
func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status domain.Status) (domain.Order, error) {
	var out domain.Order
	err := c.call(ctx, "update_status", http.MethodPut, "/orders/"+url.PathEscape(id),
		statusUpdateRequest{Status: string(status)}, &out)
	if err != nil {
		return domain.Order{}, err
	}
	c.logger.InfoContext(ctx, "order status updated",
		slog.String("order_id", id),
		slog.String("status", string(status)),
	)
	return out, nil
}

// Profile fetches the account behind the current token.
func (c *Client) Profile(ctx context.Context) (domain.User, error) {
	var out domain.User
	if err := c.call(ctx, "profile", http.MethodGet, "/users/profile", nil, &out); err != nil {
		return domain.User{}, err
	}
	return out, nil
}

// RegisterDeviceToken associates a push-notification device token with the
// logged-in admin account.
func (c *Client) RegisterDeviceToken(ctx context.Context, token string) error {
	return c.call(ctx, "register_device", http.MethodPut, "/users/fcm-token",
		map[string]string{"fcmToken": token}, nil)
}

// call performs one backend request: marshal, auth and correlation headers,
// span, metrics, error mapping, decode. out may be nil when the response body
// is irrelevant.
func (c *Client) call(ctx context.Context, endpoint, method, path string, in, out any) error {
	ctx, span := c.tracer.Start(ctx, "api."+endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("endpoint", endpoint),
		),
	)
	defer span.End()

	start := time.Now()
	err := c.do(ctx, method, path, in, out)
	remoteDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if err != nil {
		remoteRequests.WithLabelValues(endpoint, "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.WarnContext(ctx, "backend call failed",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()),
		)
		return err
	}
	remoteRequests.WithLabelValues(endpoint, "success").Inc()
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body *bytes.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.tokens.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	cid := logger.CorrelationIDFromContext(ctx)
	if cid == "" {
		cid = uuid.NewString()
	}
	req.Header.Set("X-Correlation-ID", cid)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return httpclient.MapTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpclient.ParseResponseError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
