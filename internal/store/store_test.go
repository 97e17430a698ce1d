package store

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/dshills/codeoverview/internal/overview"
)

const docPath = "/projects/proj/databases/(default)/documents/codeoverviews"

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok", TokenType: "Bearer"})
	c, err := New("proj", ts, WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	require.NoError(t, err)
	return c
}

func TestNew_Validation(t *testing.T) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"})
	_, err := New("", ts)
	assert.Error(t, err)
	_, err = New("proj", nil)
	assert.Error(t, err)
}

func TestCreate(t *testing.T) {
	var gotBody map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, docPath, r.URL.Path)
		assert.Equal(t, "abc-123", r.URL.Query().Get("documentId"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"name":"x"}`))
	})

	ts := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	err := c.Create(context.Background(), overview.Document{ID: "abc-123", Text: "Summary.", Timestamp: ts})
	require.NoError(t, err)

	fields := gotBody["fields"].(map[string]any)
	assert.Equal(t, map[string]any{"stringValue": "abc-123"}, fields["overview_id"])
	assert.Equal(t, map[string]any{"stringValue": "Summary."}, fields["text"])
	assert.Equal(t, map[string]any{"timestampValue": "2025-03-04T05:06:07Z"}, fields["timestamp"])
	assert.NotContains(t, fields, "chatHistory")
}

func TestCreate_EmptyID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	err := c.Create(context.Background(), overview.Document{Text: "x"})
	assert.ErrorIs(t, err, overview.ErrEmptyID)
}

func TestCreate_UpstreamError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"status":"PERMISSION_DENIED"}}`))
	})
	err := c.Create(context.Background(), overview.Document{ID: "a", Text: "x"})
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusForbidden, se.StatusCode)
	assert.Contains(t, err.Error(), "PERMISSION_DENIED")
}

func TestGet(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, docPath+"/abc", r.URL.Path)
		w.Write([]byte(`{
			"name": "projects/proj/databases/(default)/documents/codeoverviews/abc",
			"fields": {
				"overview_id": {"stringValue": "abc"},
				"text": {"stringValue": "The diff adds a handler."},
				"timestamp": {"timestampValue": "2025-03-04T05:06:07.123456Z"},
				"chatHistory": {"arrayValue": {"values": [
					{"mapValue": {"fields": {"user": {"stringValue": "You"}, "text": {"stringValue": "why?"}}}},
					{"mapValue": {"fields": {"user": {"stringValue": "AI"}, "text": {"stringValue": "because"}}}}
				]}}
			}
		}`))
	})

	doc, err := c.Get(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", doc.ID)
	assert.Equal(t, "The diff adds a handler.", doc.Text)
	assert.Equal(t, 2025, doc.Timestamp.Year())
	assert.Equal(t, []overview.Turn{
		{User: "You", Text: "why?"},
		{User: "AI", Text: "because"},
	}, doc.ChatHistory)
}

func TestGet_NoHistory(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"fields":{"text":{"stringValue":"t"}}}`))
	})
	doc, err := c.Get(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", doc.ID)
	assert.Nil(t, doc.ChatHistory)
}

func TestGet_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	_, err := c.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExists(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case docPath + "/present":
			w.Write([]byte(`{"fields":{}}`))
		case docPath + "/broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	ok, err := c.Exists(context.Background(), "present")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Exists(context.Background(), "absent")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.Exists(context.Background(), "  ")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.Exists(context.Background(), "broken")
	assert.Error(t, err)
}

func TestUpdateChatHistory(t *testing.T) {
	var raw []byte
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, docPath+"/abc", r.URL.Path)
		assert.Equal(t, []string{"chatHistory"}, r.URL.Query()["updateMask.fieldPaths"])
		raw, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{}`))
	})

	err := c.UpdateChatHistory(context.Background(), "abc", []overview.Turn{
		{User: "You", Text: "hi"},
		{User: "AI", Text: "hello"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"fields":{"chatHistory":{"arrayValue":{"values":[
		{"mapValue":{"fields":{"user":{"stringValue":"You"},"text":{"stringValue":"hi"}}}},
		{"mapValue":{"fields":{"user":{"stringValue":"AI"},"text":{"stringValue":"hello"}}}}
	]}}}}`, string(raw))
}

// memoryFirestore keeps documents as raw Firestore field maps, applying
// PATCH update masks the way the REST API does.
type memoryFirestore struct {
	mu   sync.Mutex
	docs map[string]map[string]json.RawMessage
}

func (m *memoryFirestore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var body struct {
		Fields map[string]json.RawMessage `json:"fields"`
	}
	if r.Method != http.MethodGet {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	switch r.Method {
	case http.MethodPost:
		m.docs[r.URL.Query().Get("documentId")] = body.Fields
	case http.MethodPatch:
		id := r.URL.Path[len(docPath)+1:]
		doc, ok := m.docs[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		for _, field := range r.URL.Query()["updateMask.fieldPaths"] {
			doc[field] = body.Fields[field]
		}
	case http.MethodGet:
		doc, ok := m.docs[r.URL.Path[len(docPath)+1:]]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"fields": doc})
		return
	}
	w.Write([]byte(`{}`))
}

func TestChatHistory_RoundTrip(t *testing.T) {
	fs := &memoryFirestore{docs: make(map[string]map[string]json.RawMessage)}
	c := newTestClient(t, fs.ServeHTTP)
	ctx := context.Background()

	ts := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	require.NoError(t, c.Create(ctx, overview.Document{ID: "abc", Text: "Summary.", Timestamp: ts}))

	first := []overview.Turn{
		{User: overview.SpeakerHuman, Text: "what changed?"},
		{User: overview.SpeakerAI, Text: "a handler"},
	}
	require.NoError(t, c.UpdateChatHistory(ctx, "abc", first))
	second := append(append([]overview.Turn{}, first...),
		overview.Turn{User: overview.SpeakerHuman, Text: "tests?"},
		overview.Turn{User: overview.SpeakerAI, Text: "none yet"},
	)
	require.NoError(t, c.UpdateChatHistory(ctx, "abc", second))

	doc, err := c.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", doc.ID)
	assert.Equal(t, "Summary.", doc.Text)
	assert.True(t, ts.Equal(doc.Timestamp))
	assert.Equal(t, second, doc.ChatHistory)
}

func TestUpdateChatHistory_Empty(t *testing.T) {
	var raw []byte
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{}`))
	})
	require.NoError(t, c.UpdateChatHistory(context.Background(), "abc", nil))
	assert.JSONEq(t, `{"fields":{"chatHistory":{"arrayValue":{}}}}`, string(raw))
}

func TestTokenError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	defer server.Close()

	c, err := New("proj", failingSource{}, WithBaseURL(server.URL))
	require.NoError(t, err)
	_, err = c.Get(context.Background(), "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access token")
}

type failingSource struct{}

func (failingSource) Token() (*oauth2.Token, error) {
	return nil, errors.New("sign-in refused")
}
