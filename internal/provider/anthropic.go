package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/petasbytes/go-swarm/agent"
	"github.com/petasbytes/go-swarm/memory"
)

const (
	DefaultAnthropicModel = anthropic.ModelClaude3_7SonnetLatest
	defaultMaxTokens      = 1024
)

// Anthropic completes conversations through the Messages API. System messages
// become the request's system prompt; tool results travel as user-role
// tool_result blocks, grouped per assistant turn.
type Anthropic struct {
	client    *anthropic.Client
	maxTokens int64
}

// NewAnthropicClient returns a client using the API key from the env unless
// opts supply one.
func NewAnthropicClient(opts ...option.RequestOption) *anthropic.Client {
	c := anthropic.NewClient(opts...)
	return &c
}

func NewAnthropic(client *anthropic.Client, maxTokens int64) *Anthropic {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Anthropic{client: client, maxTokens: maxTokens}
}

func (a *Anthropic) Complete(ctx context.Context, model string, msgs []memory.Message, tools []agent.Schema) (memory.Message, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: a.maxTokens,
	}
	var system []string
	for i := 0; i < len(msgs); i++ {
		m := msgs[i]
		switch m.Role {
		case memory.RoleSystem:
			if m.Content != "" {
				system = append(system, m.Content)
			}
		case memory.RoleUser:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		case memory.RoleAssistant:
			params.Messages = append(params.Messages, assistantParam(m))
		case memory.RoleTool:
			// Consecutive tool results answer one assistant turn and share a user message.
			var blocks []anthropic.ContentBlockParamUnion
			for ; i < len(msgs) && msgs[i].Role == memory.RoleTool; i++ {
				blocks = append(blocks, anthropic.NewToolResultBlock(msgs[i].ToolCallID, msgs[i].Content, false))
			}
			i--
			params.Messages = append(params.Messages, anthropic.NewUserMessage(blocks...))
		}
	}
	if len(system) > 0 {
		params.System = []anthropic.TextBlockParam{{Text: strings.Join(system, "\n\n")}}
	}
	if len(tools) > 0 {
		params.Tools = anthropicTools(tools)
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return memory.Message{}, fmt.Errorf("anthropic messages: %w", err)
	}

	var text []string
	var calls []memory.ToolCall
	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			text = append(text, v.Text)
		case anthropic.ToolUseBlock:
			// Pass raw JSON input through to the tool implementation
			calls = append(calls, memory.ToolCall{ID: v.ID, Name: v.Name, Arguments: v.JSON.Input.Raw()})
		}
	}
	return memory.Assistant(strings.Join(text, "\n"), calls...), nil
}

func assistantParam(m memory.Message) anthropic.MessageParam {
	var blocks []anthropic.ContentBlockParamUnion
	if m.Content != "" {
		blocks = append(blocks, anthropic.NewTextBlock(m.Content))
	}
	for _, c := range m.ToolCalls {
		input := json.RawMessage(c.Arguments)
		if strings.TrimSpace(c.Arguments) == "" || !json.Valid(input) {
			input = json.RawMessage("{}")
		}
		blocks = append(blocks, anthropic.NewToolUseBlock(c.ID, input, c.Name))
	}
	return anthropic.NewAssistantMessage(blocks...)
}

func anthropicTools(schemas []agent.Schema) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(schemas))
	for _, s := range schemas {
		required := s.Required
		if required == nil {
			required = []string{}
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        s.Name,
			Description: anthropic.String(s.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: s.Parameters,
				Required:   required,
			},
		}})
	}
	return out
}

func anthropicStatus(err error) int {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
