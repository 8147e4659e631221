package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// ChatClient captures the subset of the OpenAI SDK used by OpenAIClient,
// satisfied by openai.Client's Chat.Completions service.
type ChatClient interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// OpenAIOptions configures OpenAIClient.
type OpenAIOptions struct {
	Model string
}

// OpenAIClient implements Client on top of the OpenAI Chat Completions API.
type OpenAIClient struct {
	chat  ChatClient
	model string
}

// NewOpenAIClient builds a Client backed by chat.
func NewOpenAIClient(chat ChatClient, opts OpenAIOptions) (*OpenAIClient, error) {
	if chat == nil {
		return nil, errors.New("llm: openai chat client is required")
	}
	if opts.Model == "" {
		return nil, errors.New("llm: openai model identifier is required")
	}
	return &OpenAIClient{chat: chat, model: opts.Model}, nil
}

// NewOpenAIClientFromAPIKey constructs a client using the default OpenAI HTTP
// transport.
func NewOpenAIClientFromAPIKey(apiKey, model string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("llm: api key is required")
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return NewOpenAIClient(&client.Chat.Completions, OpenAIOptions{Model: model})
}

// Complete implements Client.
func (c *OpenAIClient) Complete(ctx context.Context, messages []Message, toolSpecs []ToolSpec) (Response, error) {
	if len(messages) == 0 {
		return Response{}, errors.New("llm: openai: messages are required")
	}
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: encodeOpenAIMessages(messages),
	}
	if len(toolSpecs) > 0 {
		params.Tools = encodeOpenAITools(toolSpecs)
	}

	resp, err := c.chat.New(ctx, params)
	if err != nil {
		return Response{}, fmt.Errorf("llm: openai chat completion: %w", err)
	}
	return translateOpenAIResponse(resp), nil
}

func encodeOpenAIMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case "system":
			out = append(out, openai.SystemMessage(m.Content))
		case "assistant":
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

func encodeOpenAITools(specs []ToolSpec) []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, 0, len(specs))
	for _, spec := range specs {
		out = append(out, openai.ChatCompletionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:        spec.Name,
				Description: openai.String(spec.Description),
			},
		})
	}
	return out
}

func translateOpenAIResponse(resp *openai.ChatCompletion) Response {
	if resp == nil || len(resp.Choices) == 0 {
		return Response{}
	}
	choice := resp.Choices[0]
	out := Response{Content: choice.Message.Content}
	for _, call := range choice.Message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: json.RawMessage(call.Function.Arguments),
		})
	}
	return out
}
