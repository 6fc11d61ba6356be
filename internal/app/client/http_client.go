package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/exp/slog"

	"eventkeeper/internal/app/client/config"
	"eventkeeper/internal/domain/event"
	"eventkeeper/internal/domain/user"
)

var ErrUnauthorized = errors.New("not logged in or session expired")

// Authority is the remote source of truth for events.
type Authority interface {
	List(ctx context.Context) ([]event.Event, error)
	Create(ctx context.Context, e event.Event) (event.Event, error)
	Update(ctx context.Context, id string, e event.Event) (event.Event, error)
	Delete(ctx context.Context, id string) error
}

// HTTPClient talks to the eventkeeper server. It implements Authority.
type HTTPClient struct {
	client    *http.Client
	log       *slog.Logger
	baseURL   string
	userAgent string

	mu    sync.RWMutex
	token string
}

func NewHTTPClient(cfg *config.Config, log *slog.Logger) *HTTPClient {
	client := &http.Client{
		Timeout: cfg.RequestTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        20,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 4,
		},
	}

	scheme := "http://"
	if cfg.EnableTLS {
		scheme = "https://"
	}

	return &HTTPClient{
		client:    client,
		log:       log.With("component", "http_client"),
		baseURL:   scheme + cfg.ServerAddress,
		userAgent: "EventKeeper-Client/1.0",
	}
}

// SetToken sets the bearer token sent with every request.
func (h *HTTPClient) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = token
}

func (h *HTTPClient) HasToken() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token != ""
}

// HealthCheck reports whether the server answers at all.
func (h *HTTPClient) HealthCheck(ctx context.Context) error {
	resp, err := h.doRequest(ctx, "health", http.MethodGet, "/api/v1/health", nil)
	if err != nil {
		return err
	}
	return h.parseResponse("health", resp, nil)
}

func (h *HTTPClient) List(ctx context.Context) ([]event.Event, error) {
	resp, err := h.doRequest(ctx, "list events", http.MethodGet, "/api/v1/events", nil)
	if err != nil {
		return nil, err
	}

	var out event.ListResponse
	if err := h.parseResponse("list events", resp, &out); err != nil {
		return nil, err
	}
	if out.Events == nil {
		out.Events = []event.Event{}
	}
	return out.Events, nil
}

func (h *HTTPClient) Create(ctx context.Context, e event.Event) (event.Event, error) {
	resp, err := h.doRequest(ctx, "create event", http.MethodPost, "/api/v1/events", event.NewRequest(e))
	if err != nil {
		return event.Event{}, err
	}
	return h.parseEvent("create event", resp)
}

func (h *HTTPClient) Update(ctx context.Context, id string, e event.Event) (event.Event, error) {
	resp, err := h.doRequest(ctx, "update event", http.MethodPut, "/api/v1/events/"+url.PathEscape(id), event.NewRequest(e))
	if err != nil {
		return event.Event{}, err
	}
	updated, err := h.parseEvent("update event", resp)
	return updated, notFound(err, id)
}

func (h *HTTPClient) Delete(ctx context.Context, id string) error {
	resp, err := h.doRequest(ctx, "delete event", http.MethodDelete, "/api/v1/events/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	return notFound(h.parseResponse("delete event", resp, nil), id)
}

func (h *HTTPClient) Register(ctx context.Context, login, password string) error {
	req := user.Credentials{Login: login, Password: password}

	resp, err := h.doRequest(ctx, "register", http.MethodPost, "/api/v1/auth/register", req)
	if err != nil {
		return err
	}

	var out struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	if err := h.parseResponse("register", resp, &out); err != nil {
		return err
	}
	if out.Status != event.StatusOk {
		return fmt.Errorf("register: %s", out.Error)
	}
	return nil
}

// Login authenticates and keeps the returned token for later calls.
func (h *HTTPClient) Login(ctx context.Context, login, password string) (string, error) {
	req := user.Credentials{Login: login, Password: password}

	resp, err := h.doRequest(ctx, "login", http.MethodPost, "/api/v1/auth/login", req)
	if err != nil {
		return "", err
	}

	var out struct {
		Token  string `json:"token"`
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	if err := h.parseResponse("login", resp, &out); err != nil {
		return "", err
	}
	if out.Status != event.StatusOk || out.Token == "" {
		return "", fmt.Errorf("login: %s", out.Error)
	}

	h.SetToken(out.Token)
	return out.Token, nil
}

func (h *HTTPClient) doRequest(ctx context.Context, op, method, path string, body any) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: marshal body: %w", op, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", h.userAgent)
	h.mu.RLock()
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
	h.mu.RUnlock()

	h.log.Debug("sending request", "method", method, "url", req.URL.String())

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	return resp, nil
}

func (h *HTTPClient) parseResponse(op string, resp *http.Response, result any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	h.log.Debug("response received", "op", op, "status", resp.StatusCode)

	if resp.StatusCode == http.StatusUnauthorized {
		return &TransportError{Op: op, Status: resp.StatusCode, Err: ErrUnauthorized}
	}
	if resp.StatusCode >= 300 {
		var errResp struct {
			Error  string `json:"error"`
			Detail string `json:"detail"`
		}
		msg := http.StatusText(resp.StatusCode)
		if err := json.Unmarshal(body, &errResp); err == nil {
			switch {
			case errResp.Error != "":
				msg = errResp.Error
			case errResp.Detail != "":
				msg = errResp.Detail
			}
		}
		return &TransportError{Op: op, Status: resp.StatusCode, Err: errors.New(msg)}
	}

	if result != nil && len(body) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			return &TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode body: %w", err)}
		}
	}
	return nil
}

func (h *HTTPClient) parseEvent(op string, resp *http.Response) (event.Event, error) {
	var out event.Response
	if err := h.parseResponse(op, resp, &out); err != nil {
		return event.Event{}, err
	}
	if out.Event == nil {
		return event.Event{}, &TransportError{Op: op, Status: resp.StatusCode, Err: errors.New("response carries no event")}
	}
	return *out.Event, nil
}

// notFound turns a 404 on an id-addressed call into event.ErrNotFound.
func notFound(err error, id string) error {
	var te *TransportError
	if errors.As(err, &te) && te.Status == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", te.Op, id, event.ErrNotFound)
	}
	return err
}
