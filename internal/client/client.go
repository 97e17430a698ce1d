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
	"strings"
	"time"

	"github.com/dshills/codeoverview/internal/collect"
	"github.com/dshills/codeoverview/internal/overview"
	"github.com/dshills/codeoverview/internal/redact"
)

// FallbackOverview is reported when the endpoint answers without text.
const FallbackOverview = "No review generated"

// ErrDiffRequired is returned when a review is requested without a diff.
var ErrDiffRequired = errors.New("diff is required")

// StatusError is a non-2xx answer from an endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("endpoint error (status %d): %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// Client talks to the generation and chat endpoints.
type Client struct {
	generateURL string
	chatURL     string
	httpCli     *http.Client
	redactor    *redact.Redactor
}

// Option configures a Client.
type Option func(*Client)

// WithChatURL sets the chat endpoint address.
func WithChatURL(u string) Option {
	return func(c *Client) { c.chatURL = u }
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpCli = h }
}

// WithRedactor redacts the diff and collected files before upload.
func WithRedactor(r *redact.Redactor) Option {
	return func(c *Client) { c.redactor = r }
}

// New creates a client for the generation endpoint at generateURL.
func New(generateURL string, opts ...Option) *Client {
	c := &Client{
		generateURL: generateURL,
		httpCli:     &http.Client{Timeout: 5 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ReviewRequest is one overview request.
type ReviewRequest struct {
	Diff   string
	Prompt string
	// Source is a directory whose files are sent as extra context.
	Source string
}

// Result is the generation endpoint's answer.
type Result struct {
	Overview   string `json:"overview"`
	OverviewID string `json:"overview_id"`
}

type generateRequest struct {
	Code   string `json:"code"`
	Prompt string `json:"prompt"`
}

// Review submits a diff for an overview. When a source directory is given its
// files are collected and appended to the prompt.
func (c *Client) Review(ctx context.Context, req ReviewRequest) (Result, error) {
	if req.Diff == "" {
		return Result{}, ErrDiffRequired
	}
	if c.generateURL == "" {
		return Result{}, errors.New("generation endpoint URL is not configured")
	}

	prompt := req.Prompt
	if req.Source != "" {
		extra, err := collect.Dir(req.Source, collect.Options{Redactor: c.redactor})
		if err != nil {
			return Result{}, fmt.Errorf("collecting context: %w", err)
		}
		prompt = overview.ReviewPrompt(req.Prompt, extra)
	}

	var res Result
	body := generateRequest{Code: c.redactor.Text(req.Diff), Prompt: prompt}
	if err := c.postJSON(ctx, c.generateURL, body, &res); err != nil {
		return Result{}, fmt.Errorf("requesting overview: %w", err)
	}
	if res.Overview == "" {
		res.Overview = FallbackOverview
	}
	return res, nil
}

type chatRequest struct {
	OverviewID  string          `json:"overviewId"`
	ChatHistory []overview.Turn `json:"chatHistory"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// Chat sends the transcript for an overview and returns the model's reply.
func (c *Client) Chat(ctx context.Context, id string, history []overview.Turn) (string, error) {
	if id == "" {
		return "", overview.ErrEmptyID
	}
	if c.chatURL == "" {
		return "", errors.New("chat endpoint URL is not configured")
	}
	if history == nil {
		history = []overview.Turn{}
	}

	var res chatResponse
	if err := c.postJSON(ctx, c.chatURL, chatRequest{OverviewID: id, ChatHistory: history}, &res); err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}
	return res.Response, nil
}

func (c *Client) postJSON(ctx context.Context, u string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

// ViewerURL returns the shareable link for an overview.
func ViewerURL(base, id string) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "overviewId=" + url.QueryEscape(id)
}
