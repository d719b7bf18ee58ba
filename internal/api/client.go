// Package api is a thin client for the VoiceWriter REST API.
//
// Every endpoint answers with the envelope {code, data, message}. A non-zero
// code comes back as *StatusError; anything that prevents reading an
// envelope at all (dial errors, timeouts, malformed bodies) wraps
// ErrTransport. The client never retries and never caches.
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
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"voicewriter-go/internal/model"
)

const defaultTimeout = 10 * time.Second

// maxBody caps how much of a response is read.
const maxBody = 4 << 20

// ErrTransport marks failures below the application envelope.
var ErrTransport = errors.New("api: transport failure")

// StatusError is an application-level failure reported by the server.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api: code %d: %s", e.Code, e.Message)
}

// envelope is the wire wrapper of every response.
type envelope struct {
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client. Its timeout is kept.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithLogger sets the logger used for failed requests.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// Client is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	log        *zap.Logger
}

// New creates a Client rooted at baseURL (e.g. "http://localhost:8080/api/v1").
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("api: baseURL must not be empty")
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("api: parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api: base url %q is not absolute", baseURL)
	}
	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: defaultTimeout},
		log:        zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// ---- scenes ----

func (c *Client) Scenes(ctx context.Context) ([]model.Scene, error) {
	return get[[]model.Scene](ctx, c, "/scenes")
}

func (c *Client) Scene(ctx context.Context, id int64) (model.Scene, error) {
	return get[model.Scene](ctx, c, "/scenes/"+itoa(id))
}

// ---- sentences ----

func (c *Client) Sentences(ctx context.Context) ([]model.Sentence, error) {
	return get[[]model.Sentence](ctx, c, "/sentences")
}

func (c *Client) Sentence(ctx context.Context, id int64) (model.Sentence, error) {
	return get[model.Sentence](ctx, c, "/sentences/"+itoa(id))
}

func (c *Client) SentencesByScene(ctx context.Context, sceneID int64) ([]model.Sentence, error) {
	return get[[]model.Sentence](ctx, c, "/sentences/scene/"+itoa(sceneID))
}

// ---- audio ----

// AudioURL resolves a playable locator for a sentence's audio. The server
// may return a path relative to its origin; the result is always absolute.
func (c *Client) AudioURL(ctx context.Context, sentenceID int64) (string, error) {
	loc, err := get[model.AudioLocation](ctx, c, "/audio/"+itoa(sentenceID))
	if err != nil {
		return "", err
	}
	return c.ResolveURL(loc.URL)
}

// ResolveURL makes ref absolute against the API origin. Empty stays empty.
func (c *Client) ResolveURL(ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("api: parse audio url %q: %w", ref, err)
	}
	return c.baseURL.ResolveReference(u).String(), nil
}

// ---- progress ----

func (c *Client) Progress(ctx context.Context, userID string) ([]model.UserProgress, error) {
	if userID == "" {
		return nil, errors.New("api: progress: user id must not be empty")
	}
	return get[[]model.UserProgress](ctx, c, "/progress/"+url.PathEscape(userID))
}

// SaveProgress upserts p.
func (c *Client) SaveProgress(ctx context.Context, p model.UserProgress) error {
	return c.do(ctx, http.MethodPost, "/progress", p, nil)
}

// ---- plumbing ----

func get[T any](ctx context.Context, c *Client, path string) (T, error) {
	var out T
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: %s %s: encode body: %w", method, path, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return fmt.Errorf("api: %s %s: build request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("%w: %s %s: read body: %w", ErrTransport, method, path, err)
	}

	// Error statuses still carry an envelope when the server produced them.
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.log.Warn("non-envelope response",
			zap.String("method", method), zap.String("path", path), zap.Int("status", resp.StatusCode))
		return fmt.Errorf("%w: %s %s: status %d: decode envelope: %w", ErrTransport, method, path, resp.StatusCode, err)
	}
	if env.Code != 0 {
		c.log.Info("application error",
			zap.String("method", method), zap.String("path", path),
			zap.Int("code", env.Code), zap.String("message", env.Message))
		return &StatusError{Code: env.Code, Message: env.Message}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%w: %s %s: status %d", ErrTransport, method, path, resp.StatusCode)
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: %s %s: decode data: %w", ErrTransport, method, path, err)
	}
	return nil
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
