package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"
)

// MessagesClient captures the subset of the Anthropic SDK used by
// AnthropicClient, satisfied by *sdk.MessageService so tests can substitute a
// fake.
type MessagesClient interface {
	New(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
	NewStreaming(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) *ssestream.Stream[sdk.MessageStreamEventUnion]
}

// AnthropicOptions configures AnthropicClient.
type AnthropicOptions struct {
	// Model is the Claude model identifier requested for every Complete call.
	Model string
	// MaxTokens caps the completion length.
	MaxTokens int
}

// AnthropicClient implements Client on top of the Anthropic Messages API.
type AnthropicClient struct {
	msg    MessagesClient
	model  string
	maxTok int
}

// NewAnthropicClient builds a Client backed by msg.
func NewAnthropicClient(msg MessagesClient, opts AnthropicOptions) (*AnthropicClient, error) {
	if msg == nil {
		return nil, errors.New("llm: anthropic messages client is required")
	}
	if opts.Model == "" {
		return nil, errors.New("llm: anthropic model identifier is required")
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &AnthropicClient{msg: msg, model: opts.Model, maxTok: maxTokens}, nil
}

// NewAnthropicClientFromAPIKey constructs a client using the default
// Anthropic HTTP transport.
func NewAnthropicClientFromAPIKey(apiKey, model string) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, errors.New("llm: api key is required")
	}
	ac := sdk.NewClient(option.WithAPIKey(apiKey))
	return NewAnthropicClient(&ac.Messages, AnthropicOptions{Model: model})
}

// Complete implements Client.
func (c *AnthropicClient) Complete(ctx context.Context, messages []Message, toolSpecs []ToolSpec) (Response, error) {
	conversation, system, err := encodeAnthropicMessages(messages)
	if err != nil {
		return Response{}, err
	}
	params := sdk.MessageNewParams{
		MaxTokens: int64(c.maxTok),
		Messages:  conversation,
		Model:     sdk.Model(c.model),
	}
	if len(system) > 0 {
		params.System = system
	}
	if len(toolSpecs) > 0 {
		params.Tools = encodeAnthropicTools(toolSpecs)
	}

	msg, err := c.msg.New(ctx, params)
	if err != nil {
		return Response{}, fmt.Errorf("llm: anthropic messages.new: %w", err)
	}
	return translateAnthropicResponse(msg), nil
}

func encodeAnthropicMessages(messages []Message) ([]sdk.MessageParam, []sdk.TextBlockParam, error) {
	conversation := make([]sdk.MessageParam, 0, len(messages))
	var system []sdk.TextBlockParam
	for _, m := range messages {
		switch m.Role {
		case "system":
			if m.Content != "" {
				system = append(system, sdk.TextBlockParam{Text: m.Content})
			}
		case "user":
			conversation = append(conversation, sdk.NewUserMessage(sdk.NewTextBlock(m.Content)))
		case "assistant":
			conversation = append(conversation, sdk.NewAssistantMessage(sdk.NewTextBlock(m.Content)))
		default:
			return nil, nil, fmt.Errorf("llm: anthropic: unsupported message role %q", m.Role)
		}
	}
	if len(conversation) == 0 {
		return nil, nil, errors.New("llm: anthropic: at least one user/assistant message is required")
	}
	return conversation, system, nil
}

func encodeAnthropicTools(specs []ToolSpec) []sdk.ToolUnionParam {
	out := make([]sdk.ToolUnionParam, 0, len(specs))
	for _, spec := range specs {
		schema := sdk.ToolInputSchemaParam{}
		tool := sdk.ToolUnionParamOfTool(schema, spec.Name)
		if tool.OfTool != nil {
			tool.OfTool.Description = sdk.String(spec.Description)
		}
		out = append(out, tool)
	}
	return out
}

func translateAnthropicResponse(msg *sdk.Message) Response {
	var resp Response
	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			resp.Content += block.Text
		case "tool_use":
			args, _ := json.Marshal(block.Input)
			resp.ToolCalls = append(resp.ToolCalls, ToolCall{ID: block.ID, Name: block.Name, Arguments: args})
		}
	}
	return resp
}
