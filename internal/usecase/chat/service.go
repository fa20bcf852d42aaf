package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/elguarir/gitex-assistant/internal/domain"
	domchat "github.com/elguarir/gitex-assistant/internal/domain/chat"
	domsearch "github.com/elguarir/gitex-assistant/internal/domain/search"
	"github.com/elguarir/gitex-assistant/internal/metrics"
	"github.com/elguarir/gitex-assistant/internal/tool"
)

// Service runs one conversational turn: a bounded loop of reasoning
// steps and tool executions against the exhibitor search.
type Service struct {
	model    Model
	searcher Searcher
	maxSteps int
	logger   *zap.Logger
}

// New creates a chat orchestration service. maxSteps bounds the number
// of reasoning steps per turn.
func New(model Model, searcher Searcher, maxSteps int, logger *zap.Logger) *Service {
	if maxSteps <= 0 {
		maxSteps = 3
	}
	return &Service{model: model, searcher: searcher, maxSteps: maxSteps, logger: logger}
}

// Run executes a turn over the given history, streaming text deltas to
// onDelta. The history is not mutated; the system prompt is prepended
// internally. When the step budget runs out the turn ends with whatever
// text has streamed.
func (s *Service) Run(ctx context.Context, history []domchat.Message, onDelta domchat.DeltaFunc) error {
	msgs := make([]domchat.Message, 0, len(history)+1+2*s.maxSteps)
	msgs = append(msgs, domchat.System(systemPrompt))
	msgs = append(msgs, history...)

	tools := tool.Catalog()

	for step := 0; step < s.maxSteps; step++ {
		completion, err := s.model.Stream(ctx, msgs, tools, onDelta)
		if err != nil {
			return fmt.Errorf("%w: reasoning step %d: %w", domain.ErrChatProvider, step+1, err)
		}

		if len(completion.ToolCalls) == 0 {
			return nil
		}

		msgs = append(msgs, domchat.AssistantToolCalls(completion.Text, completion.ToolCalls))
		for _, call := range completion.ToolCalls {
			if err := ctx.Err(); err != nil {
				return err
			}
			msgs = append(msgs, domchat.ToolResult(call.ID, s.executeTool(ctx, call)))
		}
	}

	s.logger.Debug("Turn ended at step budget", zap.Int("max_steps", s.maxSteps))
	return nil
}

// executeTool runs a single tool call. Failures of any kind become a
// structured error payload the model can react to; they never abort the
// turn.
func (s *Service) executeTool(ctx context.Context, call domchat.ToolCall) string {
	if call.Name != tool.SearchExhibitorsName {
		metrics.ToolCallsTotal.WithLabelValues(call.Name, "unknown").Inc()
		return errorPayload(fmt.Sprintf("unknown tool %q", call.Name))
	}

	args, filter, err := tool.ParseSearchArgs(call.Arguments)
	if err != nil {
		metrics.ToolCallsTotal.WithLabelValues(call.Name, "invalid_args").Inc()
		s.logger.Warn("Rejected tool call arguments", zap.Error(err))
		return errorPayload(err.Error())
	}

	results, err := s.searcher.Search(ctx, args.Query, filter)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			metrics.ToolCallsTotal.WithLabelValues(call.Name, "canceled").Inc()
			return errorPayload("search canceled")
		}
		metrics.ToolCallsTotal.WithLabelValues(call.Name, "error").Inc()
		s.logger.Error("Tool search failed", zap.String("query", args.Query), zap.Error(err))
		return errorPayload("search is temporarily unavailable")
	}

	metrics.ToolCallsTotal.WithLabelValues(call.Name, "ok").Inc()
	return resultPayload(results)
}

// resultRow is the wire shape of one search hit handed back to the model.
type resultRow struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	StandNumber string            `json:"stand_number,omitempty"`
	Country     string            `json:"country,omitempty"`
	LogoURL     string            `json:"logo_url,omitempty"`
	ProfileURL  string            `json:"profile_url,omitempty"`
	Products    []domain.Product  `json:"products"`
	SocialLinks map[string]string `json:"social_links"`
	Similarity  float64           `json:"similarity"`
}

func resultPayload(results []domsearch.Result) string {
	rows := make([]resultRow, len(results))
	for i, r := range results {
		rows[i] = resultRow{
			ID:          r.Exhibitor.ID,
			Name:        r.Exhibitor.Name,
			Description: r.Exhibitor.Description,
			StandNumber: r.Exhibitor.StandNumber,
			Country:     r.Exhibitor.Country,
			LogoURL:     r.Exhibitor.LogoURL,
			ProfileURL:  r.Exhibitor.ProfileURL,
			Products:    r.Exhibitor.Products,
			SocialLinks: r.Exhibitor.SocialLinks,
			Similarity:  r.Similarity,
		}
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return errorPayload("failed to encode search results")
	}
	return string(data)
}

func errorPayload(msg string) string {
	data, _ := json.Marshal(map[string]string{"error": msg})
	return string(data)
}
