package providers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

const defaultWorkersAIURL = "https://api.cloudflare.com/client/v4"

// WorkersAI implements the Generator interface for Cloudflare Workers AI.
type WorkersAI struct {
	accountID string
	apiToken  string
	model     string
	baseURL   string
	client    *http.Client
}

// NewWorkersAI creates a Workers AI generator from CLOUDFLARE_ACCOUNT_ID and
// CLOUDFLARE_API_TOKEN.
func NewWorkersAI(model string) (*WorkersAI, error) {
	account := os.Getenv("CLOUDFLARE_ACCOUNT_ID")
	token := os.Getenv("CLOUDFLARE_API_TOKEN")
	if account == "" || token == "" {
		return nil, fmt.Errorf("CLOUDFLARE_ACCOUNT_ID and CLOUDFLARE_API_TOKEN environment variables must be set")
	}
	baseURL := os.Getenv("CODEOVERVIEW_WORKERSAI_BASE_URL")
	if baseURL == "" {
		baseURL = defaultWorkersAIURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &WorkersAI{
		accountID: account,
		apiToken:  token,
		model:     model,
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: 120 * time.Second},
	}, nil
}

func (w *WorkersAI) Name() string { return "workersai" }

func (w *WorkersAI) Generate(ctx context.Context, p Prompt) (Completion, error) {
	body := workersAIRequest{MaxTokens: maxTokensOr(p.MaxTokens, 1024)}
	if p.System == "" {
		body.Prompt = p.User
	} else {
		body.Messages = []openaiMessage{
			{Role: "system", Content: p.System},
			{Role: "user", Content: p.User},
		}
	}
	if p.Temperature > 0 {
		body.Temperature = &p.Temperature
	}

	url := fmt.Sprintf("%s/accounts/%s/ai/run/%s", w.baseURL, w.accountID, w.model)
	headers := map[string]string{"Authorization": "Bearer " + w.apiToken}

	var result workersAIResponse
	if err := postJSON(ctx, w.client, url, headers, body, &result); err != nil {
		return Completion{}, err
	}
	if !result.Success {
		return Completion{}, fmt.Errorf("workers ai: %s", result.errorText())
	}
	return Completion{
		Text:       result.Result.Response,
		TokensUsed: result.Result.Usage.TotalTokens,
	}, nil
}

type workersAIRequest struct {
	Prompt      string          `json:"prompt,omitempty"`
	Messages    []openaiMessage `json:"messages,omitempty"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature *float64        `json:"temperature,omitempty"`
}

type workersAIResponse struct {
	Result  workersAIResult  `json:"result"`
	Success bool             `json:"success"`
	Errors  []workersAIError `json:"errors"`
}

type workersAIResult struct {
	Response string      `json:"response"`
	Usage    openaiUsage `json:"usage"`
}

type workersAIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (r workersAIResponse) errorText() string {
	if len(r.Errors) == 0 {
		return "request was not successful"
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = fmt.Sprintf("%d: %s", e.Code, e.Message)
	}
	return strings.Join(msgs, "; ")
}
