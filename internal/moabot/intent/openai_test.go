package intent_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/moadev/moabot/internal/moabot/intent"
)

func fakeLLM(t *testing.T, respond func(w http.ResponseWriter, body map[string]any)) intent.Provider {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		respond(w, body)
	}))
	t.Cleanup(srv.Close)
	return intent.New(intent.Config{APIKey: "test-key", BaseURL: srv.URL}, []intent.Tool{
		{Name: "create_expense", Description: "지출 등록", Parameters: json.RawMessage(`{"type":"object"}`)},
	})
}

func TestResolve_ToolCall(t *testing.T) {
	p := fakeLLM(t, func(w http.ResponseWriter, body map[string]any) {
		if tools, ok := body["tools"].([]any); !ok || len(tools) != 1 {
			t.Errorf("tool catalogue not advertised: %v", body["tools"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"message": map[string]any{
					"tool_calls": []map[string]any{{
						"id":   "call_1",
						"type": "function",
						"function": map[string]any{
							"name":      "create_expense",
							"arguments": `{"date":"2026-08-28","amount":4500,"category":"외식"}`,
						},
					}},
				},
			}},
		})
	})

	res, err := p.Resolve(context.Background(), intent.Request{Message: "어제 커피 4500원 썼어", Today: "2026-08-29"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Invocation == nil || res.Invocation.Name != "create_expense" {
		t.Fatalf("invocation = %+v", res.Invocation)
	}
	if got := res.Invocation.Arguments["amount"].(float64); got != 4500 {
		t.Fatalf("amount = %v", got)
	}
}

func TestResolve_PlainReply(t *testing.T) {
	p := fakeLLM(t, func(w http.ResponseWriter, body map[string]any) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"message": map[string]any{"content": "안녕하세요!"},
			}},
		})
	})

	res, err := p.Resolve(context.Background(), intent.Request{Message: "안녕"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Invocation != nil || res.Reply != "안녕하세요!" {
		t.Fatalf("result = %+v", res)
	}
}

func TestResolve_RateLimit(t *testing.T) {
	p := fakeLLM(t, func(w http.ResponseWriter, body map[string]any) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := p.Resolve(context.Background(), intent.Request{Message: "지출 보여줘"})
	if !errors.Is(err, intent.ErrRateLimit) {
		t.Fatalf("err = %v, want ErrRateLimit", err)
	}
}

func TestResolve_MalformedBody(t *testing.T) {
	p := fakeLLM(t, func(w http.ResponseWriter, body map[string]any) {
		_, _ = w.Write([]byte("not json"))
	})

	_, err := p.Resolve(context.Background(), intent.Request{Message: "x"})
	if !errors.Is(err, intent.ErrMalformedOutput) {
		t.Fatalf("err = %v, want ErrMalformedOutput", err)
	}
}

func TestResolve_RetriesOnceOn5xx(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"content": "ok"}}},
		})
	}))
	defer srv.Close()

	p := intent.New(intent.Config{APIKey: "k", BaseURL: srv.URL}, nil)
	res, err := p.Resolve(context.Background(), intent.Request{Message: "x"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if calls != 2 || res.Reply != "ok" {
		t.Fatalf("calls = %d, reply = %q", calls, res.Reply)
	}
}
