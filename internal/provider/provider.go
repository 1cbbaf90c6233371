package provider

import (
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/petasbytes/go-swarm/internal/runner"
)

const (
	NameOpenAI    = "openai"
	NameAnthropic = "anthropic"
)

// Settings selects and configures a provider.
type Settings struct {
	Name      string
	APIKey    string
	BaseURL   string
	MaxTokens int64
}

// New builds the Completer named by s.Name. An empty API key falls back to
// the SDK's own environment lookup for Anthropic and to OPENAI_API_KEY
// (read by the caller) for OpenAI.
func New(s Settings) (runner.Completer, error) {
	switch strings.ToLower(s.Name) {
	case "", NameOpenAI:
		var opts []OpenAIOption
		if s.BaseURL != "" {
			opts = append(opts, WithOpenAIBaseURL(s.BaseURL))
		}
		return NewOpenAI(s.APIKey, opts...), nil
	case NameAnthropic:
		var opts []option.RequestOption
		if s.APIKey != "" {
			opts = append(opts, option.WithAPIKey(s.APIKey))
		}
		if s.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(s.BaseURL))
		}
		return NewAnthropic(NewAnthropicClient(opts...), s.MaxTokens), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", s.Name)
	}
}
