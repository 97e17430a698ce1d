package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dshills/codeoverview/internal/logging"
	"github.com/dshills/codeoverview/internal/overview"
)

// DefaultMaxBodyBytes bounds request bodies. Diffs with collected repository
// context can be large, so the limit is generous.
const DefaultMaxBodyBytes int64 = 16 << 20

// ErrNotConfigured is reported when the endpoint has no document store or
// generation model to talk to.
var ErrNotConfigured = errors.New("document store project and credentials must be configured")

// Store is the document store the endpoints read and write.
type Store interface {
	Create(ctx context.Context, doc overview.Document) error
	Get(ctx context.Context, id string) (overview.Document, error)
	UpdateChatHistory(ctx context.Context, id string, turns []overview.Turn) error
}

// Option customizes handler construction.
type Option func(*options)

type options struct {
	logger       logrus.FieldLogger
	clock        func() time.Time
	newID        func() string
	maxBodyBytes int64
}

func buildOptions(opts []Option) options {
	o := options{
		logger:       logging.Discard(),
		clock:        func() time.Time { return time.Now().UTC() },
		newID:        overview.NewID,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithLogger overrides the default discarding logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock allows tests to control document timestamps.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithIDGenerator overrides how overview identifiers are minted.
func WithIDGenerator(f func() string) Option {
	return func(o *options) {
		if f != nil {
			o.newID = f
		}
	}
}

// WithMaxBodyBytes sets the request body limit.
func WithMaxBodyBytes(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxBodyBytes = n
		}
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeUpstreamError relays an upstream failure's text to the caller.
func writeUpstreamError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: "Worker error", Message: err.Error()})
}

func methodNotAllowed(w http.ResponseWriter) {
	w.Header().Set("Allow", "POST, OPTIONS")
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// decodeBody reads a single JSON object into dst, rejecting unknown fields.
// It returns the HTTP status to answer with on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, limit int64, dst any) (int, error) {
	if r.Body == nil {
		return http.StatusBadRequest, errors.New("invalid JSON: empty body")
	}
	reader := http.MaxBytesReader(w, r.Body, limit)
	defer reader.Close()

	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return http.StatusRequestEntityTooLarge, errors.New("payload exceeds limit")
		}
		if errors.Is(err, io.EOF) {
			return http.StatusBadRequest, errors.New("invalid JSON: empty body")
		}
		return http.StatusBadRequest, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return http.StatusRequestEntityTooLarge, errors.New("payload exceeds limit")
		}
		return http.StatusBadRequest, errors.New("invalid JSON: trailing data after object")
	}
	return 0, nil
}
