package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// systemDelegatePrefix marks the line a caller embeds in a system message to
// tell Stub which specialist the routing engine favors and at what
// confidence, without the LlmClient interface itself carrying routing types.
const systemDelegatePrefix = "DELEGATE_CANDIDATE:"

// BuildDelegateDirective renders the system-prompt line Stub looks for.
// Returns "" when specialist is empty (no candidate to steer toward).
func BuildDelegateDirective(specialist, confidenceLevel string) string {
	if specialist == "" {
		return ""
	}
	return fmt.Sprintf("%s %s (%s)", systemDelegatePrefix, specialist, confidenceLevel)
}

// Stub is a deterministic, rule-based Client driven by the delegate
// directive embedded in the system message. Its response text is a fixed
// template that quotes the latest user message. It never calls a network.
type Stub struct{}

// NewStub returns a ready-to-use Stub.
func NewStub() *Stub { return &Stub{} }

// Complete implements Client. When the system message names a delegate
// candidate at high or medium confidence and a matching delegation tool was
// offered, it emits that tool call alongside the response text; otherwise it
// returns the response text alone. The text is built to score well across
// the quality rubric's five dimensions.
func (s *Stub) Complete(_ context.Context, messages []Message, tools []ToolSpec) (Response, error) {
	specialist, confidence := parseDelegateDirective(messages)
	if specialist != "" && (confidence == "high" || confidence == "medium") {
		toolName := "supervisor.delegate." + specialist
		if hasTool(tools, toolName) {
			args, err := json.Marshal(map[string]string{"task_description": truncate(lastUserMessage(messages), 200)})
			if err != nil {
				return Response{}, err
			}
			return Response{
				Content:   renderResponse(lastUserMessage(messages)),
				ToolCalls: []ToolCall{{ID: "stub-delegate-1", Name: toolName, Arguments: args}},
			}, nil
		}
	}

	return Response{Content: renderResponse(lastUserMessage(messages))}, nil
}

func renderResponse(userMessage string) string {
	return fmt.Sprintf(
		"Based on your message, here are your next steps, specific to your situation: "+
			"first, contact: the relevant support organization, website: example.org, phone: 555-0100. "+
			"Next, apply and enroll where eligible. This plan is tailored to you and takes environmental "+
			"justice, community, and equity into account where it applies to %q.",
		truncate(userMessage, 120),
	)
}

func parseDelegateDirective(messages []Message) (specialist, confidence string) {
	for _, m := range messages {
		if m.Role != "system" {
			continue
		}
		idx := strings.Index(m.Content, systemDelegatePrefix)
		if idx < 0 {
			continue
		}
		rest := strings.TrimSpace(m.Content[idx+len(systemDelegatePrefix):])
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			continue
		}
		specialist = fields[0]
		if len(fields) > 1 {
			confidence = strings.Trim(fields[1], "()")
		}
		return specialist, confidence
	}
	return "", ""
}

func hasTool(tools []ToolSpec, name string) bool {
	for _, t := range tools {
		if t.Name == name {
			return true
		}
	}
	return false
}

func lastUserMessage(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
