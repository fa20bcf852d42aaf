package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/elguarir/gitex-assistant/internal/domain"
	domchat "github.com/elguarir/gitex-assistant/internal/domain/chat"
)

func newTestChatModel(t *testing.T, handler http.HandlerFunc) *ChatModel {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewChatModel(&ChatConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})
}

func writeSSE(w http.ResponseWriter, chunks ...string) {
	w.Header().Set("Content-Type", "text/event-stream")
	for _, c := range chunks {
		fmt.Fprintf(w, "data: %s\n\n", c)
	}
	fmt.Fprint(w, "data: [DONE]\n\n")
}

func TestStream_TextDeltas(t *testing.T) {
	model := newTestChatModel(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		writeSSE(w,
			`{"id":"1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":"Hello"}}]}`,
			`{"id":"1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":" world"}}]}`,
			`{"id":"1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{},"finish_reason":"stop"}]}`,
		)
	})

	var sb strings.Builder
	completion, err := model.Stream(
		context.Background(),
		[]domchat.Message{domchat.User("hi")},
		nil,
		func(text string) error {
			sb.WriteString(text)
			return nil
		},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if completion.Text != "Hello world" {
		t.Errorf("unexpected completion text: %q", completion.Text)
	}
	if sb.String() != "Hello world" {
		t.Errorf("deltas not forwarded in order: %q", sb.String())
	}
	if len(completion.ToolCalls) != 0 {
		t.Errorf("no tool calls expected, got %v", completion.ToolCalls)
	}
}

func TestStream_ToolCallFragmentsAccumulated(t *testing.T) {
	model := newTestChatModel(t, func(w http.ResponseWriter, _ *http.Request) {
		writeSSE(w,
			`{"id":"1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"id":"call_1","type":"function","function":{"name":"searchExhibitors","arguments":"{\"qu"}}]}}]}`,
			`{"id":"1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"function":{"arguments":"ery\":\"robots\"}"}}]}}]}`,
			`{"id":"1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{},"finish_reason":"tool_calls"}]}`,
		)
	})

	completion, err := model.Stream(
		context.Background(),
		[]domchat.Message{domchat.User("robots")},
		nil,
		nil,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(completion.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(completion.ToolCalls))
	}
	call := completion.ToolCalls[0]
	if call.ID != "call_1" || call.Name != "searchExhibitors" {
		t.Errorf("unexpected call identity: %+v", call)
	}
	if call.Arguments != `{"query":"robots"}` {
		t.Errorf("arguments not reassembled: %q", call.Arguments)
	}
}

func TestStream_APIError(t *testing.T) {
	model := newTestChatModel(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream unavailable"}}`))
	})

	_, err := model.Stream(context.Background(), []domchat.Message{domchat.User("hi")}, nil, nil)
	if !errors.Is(err, domain.ErrChatProvider) {
		t.Fatalf("expected ErrChatProvider, got %v", err)
	}
}

func TestStream_DeltaSinkErrorAborts(t *testing.T) {
	model := newTestChatModel(t, func(w http.ResponseWriter, _ *http.Request) {
		writeSSE(w,
			`{"id":"1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":"Hello"}}]}`,
		)
	})

	sinkErr := errors.New("client went away")
	_, err := model.Stream(
		context.Background(),
		[]domchat.Message{domchat.User("hi")},
		nil,
		func(string) error { return sinkErr },
	)
	if !errors.Is(err, sinkErr) {
		t.Fatalf("expected sink error to propagate, got %v", err)
	}
}

func TestToAPIMessages_RolesAndToolWiring(t *testing.T) {
	msgs := []domchat.Message{
		domchat.System("rules"),
		domchat.User("hi"),
		domchat.AssistantToolCalls("", []domchat.ToolCall{
			{ID: "c1", Name: "searchExhibitors", Arguments: `{"query":"x"}`},
		}),
		domchat.ToolResult("c1", `[]`),
	}

	api := toAPIMessages(msgs)
	if len(api) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(api))
	}
	if api[0].Role != "system" || api[1].Role != "user" {
		t.Errorf("unexpected roles: %s %s", api[0].Role, api[1].Role)
	}
	if len(api[2].ToolCalls) != 1 || api[2].ToolCalls[0].ID != "c1" {
		t.Errorf("tool calls not mapped: %+v", api[2].ToolCalls)
	}
	if api[3].ToolCallID != "c1" {
		t.Errorf("tool result not bound: %+v", api[3])
	}
}
