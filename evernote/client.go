// Package evernote talks to the Evernote HTTP gateway used by this
// deployment. The bot core only depends on the Client interface; the
// gateway implementation lives here.
package evernote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"evernotebot/core/logger"
	"log/slog"

	"github.com/google/uuid"
)

// Client is the note-service capability consumed by the bot core.
type Client interface {
	ListNotebooks(ctx context.Context, accessToken string) ([]Notebook, error)
	CreateNote(ctx context.Context, accessToken string, draft NoteDraft) (string, error)
}

// Config holds Evernote gateway settings.
type Config struct {
	BaseURL        string `yaml:"base_url" envconfig:"EVERNOTE_BASE_URL"`
	ConsumerKey    string `yaml:"consumer_key" envconfig:"EVERNOTE_CONSUMER_KEY"`
	ConsumerSecret string `yaml:"consumer_secret" envconfig:"EVERNOTE_CONSUMER_SECRET"`
	Sandbox        bool   `yaml:"sandbox" envconfig:"EVERNOTE_SANDBOX"`
	TimeoutSeconds int    `yaml:"timeout_seconds" envconfig:"EVERNOTE_TIMEOUT_SECONDS"`
}

const (
	defaultDialTimeout     = 5 * time.Second
	defaultClientTimeout   = 15 * time.Second
	defaultIdleConnTimeout = 30 * time.Second
)

// HTTPClient implements Client over the JSON gateway.
type HTTPClient struct {
	cfg  Config
	http *http.Client
}

// NewHTTPClient builds a gateway client with a transport tuned the same
// way as the Telegram client.
func NewHTTPClient(cfg Config) *HTTPClient {
	timeout := defaultClientTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: defaultDialTimeout, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     defaultIdleConnTimeout,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &HTTPClient{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout, Transport: transport},
	}
}

type listNotebooksResponse struct {
	Notebooks []Notebook `json:"notebooks"`
}

// ListNotebooks fetches the authoritative notebook list for the token.
func (c *HTTPClient) ListNotebooks(ctx context.Context, accessToken string) ([]Notebook, error) {
	var out listNotebooksResponse
	if err := c.call(ctx, http.MethodGet, "/v1/notebooks", accessToken, nil, &out); err != nil {
		return nil, fmt.Errorf("evernote: list notebooks: %w", err)
	}
	return out.Notebooks, nil
}

type createNoteRequest struct {
	Title        string `json:"title"`
	Text         string `json:"text"`
	NotebookGUID string `json:"notebook_guid,omitempty"`
}

type createNoteResponse struct {
	GUID string `json:"guid"`
}

// CreateNote creates a note and returns its guid. An empty
// draft.NotebookGUID targets the default notebook.
func (c *HTTPClient) CreateNote(ctx context.Context, accessToken string, draft NoteDraft) (string, error) {
	req := createNoteRequest{
		Title:        draft.Title,
		Text:         draft.Text,
		NotebookGUID: draft.NotebookGUID,
	}
	var out createNoteResponse
	if err := c.call(ctx, http.MethodPost, "/v1/notes", accessToken, req, &out); err != nil {
		return "", fmt.Errorf("evernote: create note: %w", err)
	}
	if out.GUID == "" {
		return "", fmt.Errorf("evernote: create note: empty guid in response")
	}
	return out.GUID, nil
}

func (c *HTTPClient) call(ctx context.Context, method, path, accessToken string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("X-Request-ID", reqID)
	req.Header.Set("X-Consumer-Key", c.cfg.ConsumerKey)
	if c.cfg.Sandbox {
		req.Header.Set("X-Evernote-Sandbox", "1")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	took := time.Since(start)
	if err != nil {
		logger.Error(ctx, "evernote", "call.fail",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("request_id", reqID),
			slog.Duration("duration", logger.RoundMS(took)),
			slog.String("err", err.Error()),
		)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		logger.Error(ctx, "evernote", "call.fail",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("request_id", reqID),
			slog.Int("http_code", resp.StatusCode),
			slog.Duration("duration", logger.RoundMS(took)),
		)
		return fmt.Errorf("unexpected status %s: %s", resp.Status, logger.SanitizeLimit(string(payload), 256))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	logger.Debug(ctx, "evernote", "call.success",
		slog.String("method", method),
		slog.String("path", path),
		slog.String("request_id", reqID),
		slog.Duration("duration", logger.RoundMS(took)),
	)
	return nil
}
