// Command orchestrator runs a short scripted conversation through the
// orchestrator package end to end, using the in-memory engine, state
// store, and event sink so it needs no external services.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/thependalorian/climate-orchestrator/internal/config"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/eventsink"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/llm"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/statestore/inmem"
	"github.com/thependalorian/climate-orchestrator/runtime/agent/engine"
	engineinmem "github.com/thependalorian/climate-orchestrator/runtime/agent/engine/inmem"
)

const (
	userID         = "demo-user"
	conversationID = "demo-conversation"
)

func main() {
	ctx := context.Background()

	var eng engine.Engine = engineinmem.New()
	store := inmem.New()
	events := eventsink.NewInMemory()

	o, err := orchestrator.New(ctx, eng, config.Default(), llm.NewStub(), store, events, nil)
	if err != nil {
		log.Fatalf("orchestrator: %v", err)
	}

	turns := []string{
		"I'm a military veteran interested in clean energy careers",
		"Thanks, that's all I needed.",
	}

	for _, message := range turns {
		fmt.Printf("user: %s\n", message)
		result, err := o.RunTurn(ctx, userID, conversationID, message)
		if err != nil {
			log.Fatalf("run turn: %v", err)
		}
		printTurn(result)
		if result.Kind == orchestrator.TurnCompleted {
			break
		}
	}

	fmt.Println("\n--- events published ---")
	for _, e := range events.Events() {
		fmt.Printf("%s: node=%s kind=%s\n", e.ConversationID, e.Node, e.Kind)
	}
}

func printTurn(result orchestrator.TurnResult) {
	fmt.Printf("turn outcome: %s (specialist=%s, handoffs=%d)\n", result.Kind, result.State.CurrentSpecialist, result.State.HandoffCount)
	for _, m := range result.State.Messages {
		if m.Role == "assistant" {
			fmt.Printf("assistant: %s\n", m.Content)
		}
	}
	fmt.Println()
}
