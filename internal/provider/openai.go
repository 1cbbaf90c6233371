package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/petasbytes/go-swarm/agent"
	"github.com/petasbytes/go-swarm/memory"
)

// OpenAI completes conversations through the Chat Completions API.
type OpenAI struct {
	client *openai.Client
}

// OpenAIOption adjusts the client configuration before it is built.
type OpenAIOption func(*openai.ClientConfig)

// WithOpenAIBaseURL points the client at a compatible endpoint.
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(c *openai.ClientConfig) {
		if url != "" {
			c.BaseURL = url
		}
	}
}

func NewOpenAI(apiKey string, opts ...OpenAIOption) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	for _, opt := range opts {
		opt(&cfg)
	}
	return &OpenAI{client: openai.NewClientWithConfig(cfg)}
}

func (o *OpenAI) Complete(ctx context.Context, model string, msgs []memory.Message, tools []agent.Schema) (memory.Message, error) {
	req := openai.ChatCompletionRequest{
		Model:    model,
		Messages: make([]openai.ChatCompletionMessage, 0, len(msgs)),
	}
	for _, m := range msgs {
		req.Messages = append(req.Messages, toOpenAIMessage(m))
	}
	if len(tools) > 0 {
		defs, err := openAITools(tools)
		if err != nil {
			return memory.Message{}, err
		}
		req.Tools = defs
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return memory.Message{}, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return memory.Message{}, errors.New("openai returned no choices")
	}
	return fromOpenAIMessage(resp.Choices[0].Message), nil
}

func toOpenAIMessage(m memory.Message) openai.ChatCompletionMessage {
	out := openai.ChatCompletionMessage{Content: m.Content}
	switch m.Role {
	case memory.RoleSystem:
		out.Role = openai.ChatMessageRoleSystem
	case memory.RoleUser:
		out.Role = openai.ChatMessageRoleUser
	case memory.RoleAssistant:
		out.Role = openai.ChatMessageRoleAssistant
		for _, c := range m.ToolCalls {
			out.ToolCalls = append(out.ToolCalls, openai.ToolCall{
				ID:   c.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      c.Name,
					Arguments: c.Arguments,
				},
			})
		}
	case memory.RoleTool:
		out.Role = openai.ChatMessageRoleTool
		out.ToolCallID = m.ToolCallID
	}
	return out
}

func fromOpenAIMessage(m openai.ChatCompletionMessage) memory.Message {
	var calls []memory.ToolCall
	for _, c := range m.ToolCalls {
		calls = append(calls, memory.ToolCall{ID: c.ID, Name: c.Function.Name, Arguments: c.Function.Arguments})
	}
	return memory.Assistant(m.Content, calls...)
}

func openAITools(schemas []agent.Schema) ([]openai.Tool, error) {
	out := make([]openai.Tool, 0, len(schemas))
	for _, s := range schemas {
		params, err := s.ParametersJSON()
		if err != nil {
			return nil, err
		}
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        s.Name,
				Description: s.Description,
				Parameters:  params,
			},
		})
	}
	return out, nil
}

// openAIStatus extracts the HTTP status from an SDK error, or 0.
func openAIStatus(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
