package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAnthropic_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Error("Missing API key header")
		}
		if r.Header.Get("anthropic-version") != anthropicAPIVersion {
			t.Error("Missing anthropic-version header")
		}
		json.NewEncoder(w).Encode(anthropicResponse{
			Content: []anthropicBlock{
				{Type: "text", Text: "Summ"},
				{Type: "tool_use"},
				{Type: "text", Text: "ary."},
			},
			Usage: anthropicUsage{InputTokens: 100, OutputTokens: 10},
		})
	}))
	defer server.Close()

	a := &Anthropic{apiKey: "test-key", model: "claude-haiku-4-5", baseURL: server.URL, client: server.Client()}
	resp, err := a.Generate(context.Background(), Prompt{User: "test"})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if resp.Text != "Summary." {
		t.Errorf("Text = %q, want %q", resp.Text, "Summary.")
	}
	if resp.TokensUsed != 110 {
		t.Errorf("TokensUsed = %d, want 110", resp.TokensUsed)
	}
}

func TestAnthropic_AuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
		w.Write([]byte(`{"error":"unauthorized"}`))
	}))
	defer server.Close()

	a := &Anthropic{apiKey: "bad-key", model: "m", baseURL: server.URL, client: server.Client()}
	_, err := a.Generate(context.Background(), Prompt{User: "test"})
	if err == nil {
		t.Fatal("Expected auth error")
	}
	if !IsAuthError(err) {
		t.Errorf("Expected auth error, got: %v", err)
	}
}
