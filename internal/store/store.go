package store

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

	"golang.org/x/oauth2"

	"github.com/dshills/codeoverview/internal/overview"
)

const (
	defaultBaseURL    = "https://firestore.googleapis.com/v1"
	DefaultCollection = "codeoverviews"
)

// ErrNotFound is returned when the requested document does not exist.
var ErrNotFound = errors.New("overview not found")

// StatusError is a non-2xx answer from the document store.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("document store error (status %d): %s", e.StatusCode, e.Body)
}

// Client reads and writes overview documents through the Firestore REST API.
type Client struct {
	project    string
	collection string
	baseURL    string
	tokens     oauth2.TokenSource
	httpCli    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root, such as the
// Firestore emulator.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpCli = h }
}

// WithCollection overrides the collection holding overview documents.
func WithCollection(name string) Option {
	return func(c *Client) { c.collection = name }
}

// New creates a store client for the given project. Requests are authorized
// with tokens from ts.
func New(projectID string, ts oauth2.TokenSource, opts ...Option) (*Client, error) {
	if projectID == "" {
		return nil, errors.New("store: project id is required")
	}
	if ts == nil {
		return nil, errors.New("store: token source is required")
	}
	c := &Client{
		project:    projectID,
		collection: DefaultCollection,
		baseURL:    defaultBaseURL,
		tokens:     ts,
		httpCli:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) collectionURL() string {
	return fmt.Sprintf("%s/projects/%s/databases/(default)/documents/%s",
		c.baseURL, url.PathEscape(c.project), url.PathEscape(c.collection))
}

func (c *Client) documentURL(id string) string {
	return c.collectionURL() + "/" + url.PathEscape(id)
}

// Create stores a new document with the overview ID, text and timestamp.
func (c *Client) Create(ctx context.Context, doc overview.Document) error {
	if doc.ID == "" {
		return overview.ErrEmptyID
	}
	ts := doc.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	body := document{Fields: map[string]value{
		"overview_id": stringValue(doc.ID),
		"text":        stringValue(doc.Text),
		"timestamp":   timestampValue(ts),
	}}
	if doc.ChatHistory != nil {
		body.Fields["chatHistory"] = turnsValue(doc.ChatHistory)
	}

	u := c.collectionURL() + "?documentId=" + url.QueryEscape(doc.ID)
	if err := c.do(ctx, http.MethodPost, u, body, nil); err != nil {
		return fmt.Errorf("creating overview %s: %w", doc.ID, err)
	}
	return nil
}

// Get fetches a document by ID. A missing document yields ErrNotFound.
func (c *Client) Get(ctx context.Context, id string) (overview.Document, error) {
	if id == "" {
		return overview.Document{}, overview.ErrEmptyID
	}
	var raw document
	if err := c.do(ctx, http.MethodGet, c.documentURL(id), nil, &raw); err != nil {
		return overview.Document{}, fmt.Errorf("fetching overview %s: %w", id, err)
	}
	doc, err := decodeDocument(raw)
	if err != nil {
		return overview.Document{}, fmt.Errorf("decoding overview %s: %w", id, err)
	}
	if doc.ID == "" {
		doc.ID = id
	}
	return doc, nil
}

// Exists reports whether a document with the given ID is stored.
func (c *Client) Exists(ctx context.Context, id string) (bool, error) {
	if strings.TrimSpace(id) == "" {
		return false, nil
	}
	_, err := c.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UpdateChatHistory replaces the document's chat transcript with turns,
// leaving every other field untouched.
func (c *Client) UpdateChatHistory(ctx context.Context, id string, turns []overview.Turn) error {
	if id == "" {
		return overview.ErrEmptyID
	}
	body := document{Fields: map[string]value{"chatHistory": turnsValue(turns)}}
	u := c.documentURL(id) + "?updateMask.fieldPaths=chatHistory"
	if err := c.do(ctx, http.MethodPatch, u, body, nil); err != nil {
		return fmt.Errorf("updating chat history of %s: %w", id, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, u string, in, out any) error {
	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	tok, err := c.tokens.Token()
	if err != nil {
		return fmt.Errorf("obtaining access token: %w", err)
	}
	tok.SetAuthHeader(req)

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
	}
	return nil
}
