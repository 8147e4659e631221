package tools

import "encoding/json"

// AnyJSONCodec is a pre-built codec for the `any` type. It uses standard JSON
// marshaling/unmarshaling and is suitable for integrations where the concrete
// type is not known at compile time.
var AnyJSONCodec = JSONCodec[any]{
	ToJSON: json.Marshal,
	FromJSON: func(data []byte) (any, error) {
		if len(data) == 0 {
			return nil, nil
		}
		var out any
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, err
		}
		return out, nil
	},
}

type (
	// ToolSpec enumerates the metadata and JSON codecs for a delegation tool.
	//
	// This is distilled from a codegen-oriented ToolSpec that also carried
	// paging, confirmation, server-data and agent-as-tool fields. None of
	// those design-time concerns have a counterpart in this orchestrator's
	// supervisor/specialist delegation protocol, so they were dropped rather
	// than carried as dead weight.
	ToolSpec struct {
		// Name is the globally unique tool identifier (e.g. "supervisor.delegate").
		Name Ident
		// Description provides human-readable context for the LLM collaborator.
		Description string
		// Tags carries optional metadata labels used by policy or UI layers.
		Tags []string
		// Payload describes the request schema for the tool.
		Payload TypeSpec
		// Result describes the response schema for the tool.
		Result TypeSpec
	}

	// TypeSpec describes the payload or result schema for a tool.
	TypeSpec struct {
		// Name is the Go identifier associated with the type.
		Name string
		// Schema contains the JSON schema definition used to validate instances
		// of the type before they cross the tool invocation boundary.
		Schema []byte
		// ExampleJSON optionally contains a canonical example JSON document for
		// this type.
		ExampleJSON []byte
		// Codec serializes and deserializes values matching the type.
		Codec JSONCodec[any]
	}

	// JSONCodec serializes and deserializes strongly typed values to and from JSON.
	JSONCodec[T any] struct {
		// ToJSON encodes the value into canonical JSON.
		ToJSON func(T) ([]byte, error)
		// FromJSON decodes the JSON payload into the typed value.
		FromJSON func([]byte) (T, error)
	}
)
