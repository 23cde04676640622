package ai

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/christopherklint97/kalendr/internal/assistant"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAICompat talks to any OpenAI-compatible chat completions endpoint.
// The default base URL is the Hugging Face inference router.
type OpenAICompat struct {
	client openai.Client
	model  string
	logger *slog.Logger
}

func NewOpenAICompat(baseURL, apiKey, model string, logger *slog.Logger) *OpenAICompat {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(1),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAICompat{
		client: openai.NewClient(opts...),
		model:  model,
		logger: logger,
	}
}

func (o *OpenAICompat) Name() string { return "openai" }

func (o *OpenAICompat) Respond(ctx context.Context, req Request) (*assistant.Response, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(buildSystemPrompt(req)),
	}
	for _, m := range req.History {
		switch m.Role {
		case "assistant":
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}
	messages = append(messages, openai.UserMessage(req.Text))

	start := time.Now()
	completion, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.model),
		Messages: messages,
	})
	if err != nil {
		return nil, fmt.Errorf("requesting completion: %w", err)
	}

	o.logger.Debug("completion received",
		"model", o.model,
		"choices", len(completion.Choices),
		"elapsed", time.Since(start),
	)

	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("completion has no choices")
	}
	return decodeResponse(completion.Choices[0].Message.Content)
}
