package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// RuntimeClient mirrors the subset of the AWS Bedrock runtime client used by
// BedrockClient, satisfied by *bedrockruntime.Client.
type RuntimeClient interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockOptions configures BedrockClient.
type BedrockOptions struct {
	// ModelID is the Bedrock inference profile or foundation model ARN/ID.
	ModelID string
}

// BedrockClient implements Client on top of the AWS Bedrock Converse API.
type BedrockClient struct {
	runtime RuntimeClient
	modelID string
}

// NewBedrockClient builds a Client backed by runtime.
func NewBedrockClient(runtime RuntimeClient, opts BedrockOptions) (*BedrockClient, error) {
	if runtime == nil {
		return nil, errors.New("llm: bedrock runtime client is required")
	}
	if opts.ModelID == "" {
		return nil, errors.New("llm: bedrock model id is required")
	}
	return &BedrockClient{runtime: runtime, modelID: opts.ModelID}, nil
}

// Complete implements Client.
func (c *BedrockClient) Complete(ctx context.Context, messages []Message, toolSpecs []ToolSpec) (Response, error) {
	conversation, system, err := encodeBedrockMessages(messages)
	if err != nil {
		return Response{}, err
	}
	input := &bedrockruntime.ConverseInput{
		ModelId:  &c.modelID,
		Messages: conversation,
	}
	if len(system) > 0 {
		input.System = system
	}
	if len(toolSpecs) > 0 {
		input.ToolConfig = encodeBedrockTools(toolSpecs)
	}

	out, err := c.runtime.Converse(ctx, input)
	if err != nil {
		return Response{}, fmt.Errorf("llm: bedrock converse: %w", err)
	}
	return translateBedrockResponse(out), nil
}

func encodeBedrockMessages(messages []Message) ([]brtypes.Message, []brtypes.SystemContentBlock, error) {
	conversation := make([]brtypes.Message, 0, len(messages))
	var system []brtypes.SystemContentBlock
	for _, m := range messages {
		switch m.Role {
		case "system":
			if m.Content != "" {
				system = append(system, &brtypes.SystemContentBlockMemberText{Value: m.Content})
			}
		case "user":
			conversation = append(conversation, brtypes.Message{
				Role:    brtypes.ConversationRoleUser,
				Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: m.Content}},
			})
		case "assistant":
			conversation = append(conversation, brtypes.Message{
				Role:    brtypes.ConversationRoleAssistant,
				Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: m.Content}},
			})
		default:
			return nil, nil, fmt.Errorf("llm: bedrock: unsupported message role %q", m.Role)
		}
	}
	if len(conversation) == 0 {
		return nil, nil, errors.New("llm: bedrock: at least one user/assistant message is required")
	}
	return conversation, system, nil
}

func encodeBedrockTools(specs []ToolSpec) *brtypes.ToolConfiguration {
	tools := make([]brtypes.Tool, 0, len(specs))
	for _, spec := range specs {
		name, desc := spec.Name, spec.Description
		tools = append(tools, &brtypes.ToolMemberToolSpec{
			Value: brtypes.ToolSpecification{
				Name:        &name,
				Description: &desc,
			},
		})
	}
	return &brtypes.ToolConfiguration{Tools: tools}
}

func translateBedrockResponse(out *bedrockruntime.ConverseOutput) Response {
	var resp Response
	msgOutput, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return resp
	}
	for _, block := range msgOutput.Value.Content {
		switch b := block.(type) {
		case *brtypes.ContentBlockMemberText:
			resp.Content += b.Value
		case *brtypes.ContentBlockMemberToolUse:
			args, _ := json.Marshal(b.Value.Input)
			name := ""
			if b.Value.Name != nil {
				name = *b.Value.Name
			}
			id := ""
			if b.Value.ToolUseId != nil {
				id = *b.Value.ToolUseId
			}
			resp.ToolCalls = append(resp.ToolCalls, ToolCall{ID: id, Name: name, Arguments: args})
		}
	}
	return resp
}
