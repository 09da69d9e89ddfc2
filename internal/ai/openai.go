package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	apperrors "github.com/sablewood/chronicle/internal/platform/errors"
	"github.com/sablewood/chronicle/internal/platform/timeouts"
)

// OpenAIClient is a stateless adapter over the OpenAI chat completions API.
type OpenAIClient struct {
	client openai.Client
	model  openai.ChatModel
}

// NewOpenAIClient creates an adapter for the given API key and model.
func NewOpenAIClient(apiKey, model string) (*OpenAIClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}
	return &OpenAIClient{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  openai.ChatModel(model),
	}, nil
}

// Complete sends one chat completion request. Each call carries its own
// timeout so an abandoned turn cannot hold its session lock indefinitely.
func (c *OpenAIClient) Complete(ctx context.Context, packet PromptPacket) (Completion, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeouts.ModelCall)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(packet.System),
			openai.UserMessage(packet.User),
		},
	}
	if packet.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(packet.MaxTokens))
	}
	if packet.WantJSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		}
	}

	response, err := c.client.Chat.Completions.New(callCtx, params)
	if err != nil {
		return Completion{}, apperrors.Wrap(apperrors.CodeModelCallFailed, "chat completion failed", err)
	}
	if len(response.Choices) == 0 {
		return Completion{}, apperrors.New(apperrors.CodeModelEmptyCompletion, "completion has no choices")
	}
	content := strings.TrimSpace(response.Choices[0].Message.Content)
	if content == "" {
		return Completion{}, apperrors.New(apperrors.CodeModelEmptyCompletion, "completion content is empty")
	}
	return Completion{Content: content, Model: string(response.Model)}, nil
}
