package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *DeepSeekClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewDeepSeekClient("test-key",
		WithBaseURL(srv.URL),
		WithModel("deepseek-chat"),
		WithRateLimit(1000, 1000))
	if err != nil {
		t.Fatalf("NewDeepSeekClient: %v", err)
	}
	return c
}

func TestNewDeepSeekClientRequiresKey(t *testing.T) {
	if _, err := NewDeepSeekClient(""); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("err = %v, want ErrNoAPIKey", err)
	}
}

func TestChatSendsRequestAndParsesReply(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":    "cmpl-1",
			"model": "deepseek-chat",
			"choices": []map[string]any{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": "source=cnn"}, "finish_reason": "stop"},
			},
			"usage": map[string]int{"prompt_tokens": 120, "completion_tokens": 40, "total_tokens": 160},
		})
	})

	resp, err := c.Chat(context.Background(), []Message{
		SystemMessage("You are a media analyst."),
		{Role: RoleUser, Content: "Analyze these articles."},
	}, &ChatOptions{Temperature: 0.2, MaxTokens: 2048})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotReq.Model != "deepseek-chat" || len(gotReq.Messages) != 2 {
		t.Errorf("request = %+v", gotReq)
	}
	if gotReq.Temperature == nil || *gotReq.Temperature != 0.2 {
		t.Errorf("temperature not forwarded: %+v", gotReq.Temperature)
	}
	if resp.Content != "source=cnn" {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.Usage.TotalTokens != 160 {
		t.Errorf("TotalTokens = %d", resp.Usage.TotalTokens)
	}
}

func TestChatEmptyContentIsError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"model": "deepseek-chat",
			"choices": []map[string]any{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": "   "}},
			},
		})
	})
	if _, err := c.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, nil); !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("err = %v, want ErrEmptyResponse", err)
	}
}

func TestChatMapsAPIErrors(t *testing.T) {
	cases := []struct {
		status int
		code   string
		want   error
	}{
		{http.StatusUnauthorized, "invalid_api_key", ErrNoAPIKey},
		{http.StatusTooManyRequests, "rate_limit", ErrRateLimit},
		{http.StatusBadRequest, "context_length_exceeded", ErrContextLength},
	}
	for _, tc := range cases {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]string{"message": "nope", "code": tc.code},
			})
		})
		if _, err := c.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, nil); !errors.Is(err, tc.want) {
			t.Errorf("status %d: err = %v, want %v", tc.status, err, tc.want)
		}
	}
}

func TestPing(t *testing.T) {
	status := http.StatusOK
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.WriteHeader(status)
	})

	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
	status = http.StatusUnauthorized
	if err := c.Ping(context.Background()); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("Ping 401: err = %v, want ErrNoAPIKey", err)
	}
	status = http.StatusServiceUnavailable
	if err := c.Ping(context.Background()); !errors.Is(err, ErrProviderDown) {
		t.Errorf("Ping 503: err = %v, want ErrProviderDown", err)
	}
}
