package intent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/moadev/moabot/common/retry"
)

const (
	defaultBase    = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
	defaultTimeout = 30 * time.Second
)

// systemPrompt instructs the model to answer in Korean and to reach for a
// tool whenever the message is actionable. The current date is appended so
// relative phrases resolve correctly on the model side as well.
const systemPrompt = "항상 한국어로만 답변해. 필요하면 함수(tool)를 호출해서 작업을 수행해. " +
	"삭제/수정처럼 돌이킬 수 없는 작업은 식별자(ID)가 없으면 먼저 확인 질문을 해."

// Config configures the OpenAI-compatible provider.
type Config struct {
	// APIKey is the bearer token used to authenticate against the API.
	APIKey string

	// BaseURL overrides the API endpoint. Useful for local models or any
	// OpenAI-compatible gateway. Defaults to https://api.openai.com/v1.
	BaseURL string

	// Model is the chat model to use. Defaults to gpt-4o-mini.
	Model string

	// Timeout is the HTTP request timeout. Defaults to 30 s.
	Timeout time.Duration
}

// openAIProvider implements Provider using the chat completions API with
// function calling.
type openAIProvider struct {
	cfg    Config
	tools  []Tool
	client *http.Client
}

// New returns a Provider backed by the OpenAI (or compatible) chat API,
// advertising the given tool catalogue on every call. The returned provider
// is safe for concurrent use.
func New(cfg Config, tools []Tool) Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBase
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &openAIProvider{
		cfg:    cfg,
		tools:  tools,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// --- wire types ---

type chatMessage struct {
	Role      string     `json:"role"`
	Content   string     `json:"content,omitempty"`
	ToolCalls []toolCall `json:"tool_calls,omitempty"`
}

type toolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type chatTool struct {
	Type     string `json:"type"`
	Function struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Parameters  json.RawMessage `json:"parameters"`
	} `json:"function"`
}

type chatRequest struct {
	Model      string        `json:"model"`
	Messages   []chatMessage `json:"messages"`
	Tools      []chatTool    `json:"tools,omitempty"`
	ToolChoice string        `json:"tool_choice,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// errTransient wraps failures worth one retry: throttling, 5xx, transport.
var errTransient = errors.New("intent: transient upstream failure")

// Resolve implements Provider.
func (p *openAIProvider) Resolve(ctx context.Context, req Request) (*Result, error) {
	system := systemPrompt
	if req.Today != "" {
		system += " 오늘 날짜는 " + req.Today + "이다."
	}

	body := chatRequest{
		Model: p.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: req.Message},
		},
		ToolChoice: "auto",
	}
	for _, t := range p.tools {
		ct := chatTool{Type: "function"}
		ct.Function.Name = t.Name
		ct.Function.Description = t.Description
		ct.Function.Parameters = t.Parameters
		body.Tools = append(body.Tools, ct)
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("intent: encode request: %w", err)
	}

	var parsed chatResponse
	call := func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/chat/completions", bytes.NewReader(encoded))
		if err != nil {
			return fmt.Errorf("intent: build request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

		resp, err := p.client.Do(httpReq)
		if err != nil {
			return fmt.Errorf("%w: %v", errTransient, err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		if err != nil {
			return fmt.Errorf("%w: read response: %v", errTransient, err)
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: %w", errTransient, ErrRateLimit)
		}
		if resp.StatusCode >= 500 {
			return fmt.Errorf("%w: LLM returned status %d", errTransient, resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("%w: LLM returned status %d: %s", ErrMalformedOutput, resp.StatusCode, truncate(string(raw), 200))
		}
		if err := json.Unmarshal(raw, &parsed); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedOutput, err)
		}
		return nil
	}

	err = retry.Do(ctx, retry.Config{
		MaxAttempts:  2,
		InitialDelay: time.Second,
		ShouldRetry: func(err error) bool {
			return errors.Is(err, errTransient)
		},
	}, call)
	if err != nil {
		if errors.Is(err, ErrRateLimit) {
			return nil, ErrRateLimit
		}
		return nil, err
	}

	if len(parsed.Choices) == 0 {
		return nil, ErrMalformedOutput
	}
	msg := parsed.Choices[0].Message

	if len(msg.ToolCalls) == 0 {
		return &Result{Reply: strings.TrimSpace(msg.Content)}, nil
	}

	tc := msg.ToolCalls[0]
	if tc.Function.Name == "" {
		return nil, ErrMalformedOutput
	}
	args := make(map[string]any)
	if tc.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
			return nil, fmt.Errorf("%w: tool arguments: %v", ErrMalformedOutput, err)
		}
	}
	return &Result{Invocation: &Invocation{Name: tc.Function.Name, Arguments: args}}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
