// Package delegation implements the supervisor's delegation-tool protocol:
// a typed "supervisor.delegate.<specialist>" tool identifier per specialist,
// a registry the supervisor node invokes without re-deriving the specialist
// name from string manipulation, and JSON schema validation of the
// delegation payload.
package delegation

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/state"
	"github.com/thependalorian/climate-orchestrator/runtime/agent/tools"
)

// identPrefix namespaces every delegation tool identifier.
const identPrefix = "supervisor.delegate."

// Ident returns the typed tool identifier for delegating to specialist.
func Ident(specialist string) tools.Ident {
	return tools.Ident(identPrefix + specialist)
}

// Specialist extracts the specialist name from a delegation tool identifier,
// returning ok=false if ident does not name a delegation tool.
func Specialist(ident tools.Ident) (string, bool) {
	s := string(ident)
	if len(s) <= len(identPrefix) || s[:len(identPrefix)] != identPrefix {
		return "", false
	}
	return s[len(identPrefix):], true
}

// Payload is the delegation tool call's argument shape: the task the
// specialist is being handed, surfaced back to it as conversational context.
type Payload struct {
	TaskDescription string `json:"task_description"`
}

// payloadSchema is the JSON schema every delegation call's payload must
// satisfy.
const payloadSchema = `{
	"type": "object",
	"properties": {
		"task_description": {"type": "string", "minLength": 1}
	},
	"required": ["task_description"]
}`

// Command is the result of invoking a delegation tool: a Goto target plus
// the state patch to apply before the jump.
type Command struct {
	Goto  string
	Patch state.Patch
}

// Registry validates and invokes delegation tool calls for the configured
// set of specialists.
type Registry struct {
	specialists map[string]bool
	schema      *jsonschema.Schema
}

// NewRegistry returns a Registry that recognizes delegation calls to any of
// specialists.
func NewRegistry(specialists []string) (*Registry, error) {
	var schemaDoc any
	if err := json.Unmarshal([]byte(payloadSchema), &schemaDoc); err != nil {
		return nil, fmt.Errorf("delegation: unmarshal schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("delegation-payload.json", schemaDoc); err != nil {
		return nil, fmt.Errorf("delegation: add schema resource: %w", err)
	}
	schema, err := c.Compile("delegation-payload.json")
	if err != nil {
		return nil, fmt.Errorf("delegation: compile schema: %w", err)
	}

	set := make(map[string]bool, len(specialists))
	for _, s := range specialists {
		set[s] = true
	}
	return &Registry{specialists: set, schema: schema}, nil
}

// Invoke validates payloadJSON against the delegation payload schema and, if
// ident names a known specialist, returns the Command that hands the turn
// off to it with handoff_count incremented and the task recorded as a
// pending assistant-to-specialist handoff. now should come from the calling
// WorkflowContext's deterministic clock, not time.Now(), so replay stays
// deterministic.
func (r *Registry) Invoke(ident tools.Ident, payloadJSON []byte, fromNode string, now time.Time) (Command, error) {
	specialist, ok := Specialist(ident)
	if !ok {
		return Command{}, fmt.Errorf("delegation: %q is not a delegation tool identifier", ident)
	}
	if !r.specialists[specialist] {
		return Command{}, fmt.Errorf("delegation: unknown specialist %q", specialist)
	}

	var payloadDoc any
	if err := json.Unmarshal(payloadJSON, &payloadDoc); err != nil {
		return Command{}, fmt.Errorf("delegation: unmarshal payload: %w", err)
	}
	if err := r.schema.Validate(payloadDoc); err != nil {
		return Command{}, fmt.Errorf("delegation: invalid payload: %w", err)
	}

	var payload Payload
	if err := json.Unmarshal(payloadJSON, &payload); err != nil {
		return Command{}, fmt.Errorf("delegation: unmarshal payload: %w", err)
	}

	return Command{
		Goto: specialist,
		Patch: state.Patch{
			IncrementHandoff: true,
			SpecialistHandoffs: []state.HandoffRecord{{
				FromNode:        fromNode,
				ToNode:          specialist,
				Timestamp:       now,
				TaskDescription: payload.TaskDescription,
			}},
		},
	}, nil
}
