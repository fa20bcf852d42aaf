package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/elguarir/gitex-assistant/internal/domain"
	domchat "github.com/elguarir/gitex-assistant/internal/domain/chat"
	"github.com/elguarir/gitex-assistant/internal/metrics"
)

// ChatModel is a streaming chat completion provider using the
// OpenAI-compatible API.
type ChatModel struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// ChatConfig holds the chat provider settings.
type ChatConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// NewChatModel creates an OpenAI-compatible streaming chat provider.
func NewChatModel(cfg *ChatConfig) *ChatModel {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &ChatModel{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

// Stream implements the chat model contract: one streamed completion
// over the full history. Text deltas go to onDelta as they arrive; tool
// call fragments are accumulated by index and returned whole.
func (m *ChatModel) Stream(
	ctx context.Context,
	msgs []domchat.Message,
	tools []domchat.ToolSpec,
	onDelta domchat.DeltaFunc,
) (domchat.Completion, error) {
	req := openai.ChatCompletionRequest{
		Model:    m.model,
		Messages: toAPIMessages(msgs),
		Tools:    toAPITools(tools),
	}

	start := time.Now()
	stream, err := m.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues(m.model, "error").Inc()
		return domchat.Completion{}, parseChatAPIError(err)
	}
	defer stream.Close()

	acc := newToolCallAccumulator()
	var text string

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			metrics.ChatRequestsTotal.WithLabelValues(m.model, "error").Inc()
			return domchat.Completion{}, parseChatAPIError(err)
		}
		if len(resp.Choices) == 0 {
			continue
		}

		delta := resp.Choices[0].Delta
		if delta.Content != "" {
			text += delta.Content
			if onDelta != nil {
				if err := onDelta(delta.Content); err != nil {
					return domchat.Completion{}, fmt.Errorf("deliver delta: %w", err)
				}
			}
		}
		acc.add(delta.ToolCalls)
	}

	metrics.ChatRequestsTotal.WithLabelValues(m.model, "success").Inc()
	metrics.ChatRequestDuration.WithLabelValues(m.model).Observe(time.Since(start).Seconds())

	return domchat.Completion{Text: text, ToolCalls: acc.calls()}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (m *ChatModel) HealthCheck(ctx context.Context) error {
	if _, err := m.client.ListModels(ctx); err != nil {
		return parseChatAPIError(err)
	}
	return nil
}

// toolCallAccumulator reassembles tool calls from stream fragments. The
// provider splits one call across many chunks: the first fragment of a
// call carries id and name, later fragments append argument text, all
// correlated by index.
type toolCallAccumulator struct {
	order []int
	byIdx map[int]*domchat.ToolCall
}

func newToolCallAccumulator() *toolCallAccumulator {
	return &toolCallAccumulator{byIdx: make(map[int]*domchat.ToolCall)}
}

func (a *toolCallAccumulator) add(fragments []openai.ToolCall) {
	for _, f := range fragments {
		idx := 0
		if f.Index != nil {
			idx = *f.Index
		}
		call, ok := a.byIdx[idx]
		if !ok {
			call = &domchat.ToolCall{}
			a.byIdx[idx] = call
			a.order = append(a.order, idx)
		}
		if f.ID != "" {
			call.ID = f.ID
		}
		if f.Function.Name != "" {
			call.Name = f.Function.Name
		}
		call.Arguments += f.Function.Arguments
	}
}

func (a *toolCallAccumulator) calls() []domchat.ToolCall {
	if len(a.order) == 0 {
		return nil
	}
	out := make([]domchat.ToolCall, 0, len(a.order))
	for _, idx := range a.order {
		out = append(out, *a.byIdx[idx])
	}
	return out
}

func toAPIMessages(msgs []domchat.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		apiMsg := openai.ChatCompletionMessage{
			Role:       string(m.Role),
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		for _, c := range m.ToolCalls {
			apiMsg.ToolCalls = append(apiMsg.ToolCalls, openai.ToolCall{
				ID:   c.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      c.Name,
					Arguments: c.Arguments,
				},
			})
		}
		out = append(out, apiMsg)
	}
	return out
}

func toAPITools(tools []domchat.ToolSpec) []openai.Tool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return out
}

// parseChatAPIError wraps provider failures with domain.ErrChatProvider.
func parseChatAPIError(err error) error {
	wrap := domain.ErrChatProvider

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("chat API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("chat API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("chat request failed: %w", wrap)
}
