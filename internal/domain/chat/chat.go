// Package chat holds the conversation entities shared between the
// orchestration loop and the model transport.
package chat

import (
	"context"
	"encoding/json"
)

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleSystem carries the assistant's operating rules.
	RoleSystem Role = "system"
	// RoleUser is an end-user message.
	RoleUser Role = "user"
	// RoleAssistant is model output, plain text or tool calls.
	RoleAssistant Role = "assistant"
	// RoleTool is a tool execution result fed back to the model.
	RoleTool Role = "tool"
)

// ToolCall is a structured capability invocation emitted by the model.
// Arguments is the raw JSON argument object, validated downstream.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// Message is one entry of the append-only conversation history.
type Message struct {
	Role       Role
	Content    string
	ToolCalls  []ToolCall // assistant messages only
	ToolCallID string     // tool messages only
}

// System builds a system message.
func System(text string) Message { return Message{Role: RoleSystem, Content: text} }

// User builds a user message.
func User(text string) Message { return Message{Role: RoleUser, Content: text} }

// AssistantToolCalls builds the assistant message recording emitted tool
// calls (with any text produced before them).
func AssistantToolCalls(text string, calls []ToolCall) Message {
	return Message{Role: RoleAssistant, Content: text, ToolCalls: calls}
}

// ToolResult builds the tool-result message for a given call.
func ToolResult(callID string, payload string) Message {
	return Message{Role: RoleTool, Content: payload, ToolCallID: callID}
}

// ToolSpec declares a callable capability offered to the model.
// Parameters is a JSON Schema object describing the arguments.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// Completion is the outcome of one reasoning step: either final text or
// one or more tool calls to execute (text may accompany tool calls).
type Completion struct {
	Text      string
	ToolCalls []ToolCall
}

// DeltaFunc receives streamed text chunks in generation order.
// Returning an error aborts the stream.
type DeltaFunc func(text string) error

// Model is one reasoning step against the language model. The full
// message history and the tool catalog go in; text is streamed through
// onDelta as it is generated.
type Model interface {
	Stream(ctx context.Context, msgs []Message, tools []ToolSpec, onDelta DeltaFunc) (Completion, error)
}
