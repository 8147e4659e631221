// Package state defines the conversation state that flows between graph
// nodes, its component records, and the merge semantics that let concurrent
// writers combine partial updates without clobbering each other's appends.
package state

import "time"

// WorkflowState enumerates the coarse lifecycle phase of a conversation.
type WorkflowState string

const (
	WorkflowActive          WorkflowState = "active"
	WorkflowPendingHuman    WorkflowState = "pending_human"
	WorkflowCompleted       WorkflowState = "completed"
	WorkflowWaitingForInput WorkflowState = "waiting_for_input"
)

// IntelligenceLevel buckets a conversation's latest quality score.
type IntelligenceLevel string

const (
	IntelligenceBasic       IntelligenceLevel = "basic"
	IntelligenceDeveloping  IntelligenceLevel = "developing"
	IntelligenceProficient  IntelligenceLevel = "proficient"
	IntelligenceAdvanced    IntelligenceLevel = "advanced"
	IntelligenceExceptional IntelligenceLevel = "exceptional"
)

// MessageRole identifies the author of a Message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleTool      MessageRole = "tool"
)

type (
	// Message is one turn of the conversation transcript.
	Message struct {
		ID         string
		Role       MessageRole
		Content    string
		ToolCalls  []ToolCall
		ToolCallID string
		Metadata   map[string]string
	}

	// ToolCall describes a tool invocation requested by the model.
	ToolCall struct {
		ID        string
		Name      string
		Arguments map[string]any
	}

	// IdentityProfile captures the identity/barrier/strength signals the
	// identity recognizer extracted from the conversation so far.
	IdentityProfile struct {
		PrimaryIdentity         string
		SecondaryIdentities     []string
		IntersectionalityFactors []string
		BarriersIdentified      []string
		StrengthsIdentified     []string
		GeographicContext       string
		ConfidenceScore         float64
	}

	// RoutingDecision captures the routing engine's specialist assignment.
	RoutingDecision struct {
		SpecialistAssigned string
		ConfidenceLevel    string // high | medium | low | uncertain
		Reasoning          string
		Alternatives       []string
		RecommendedTools   []string
		ExpectedOutcome    string
		SuccessMetrics     []string
	}

	// QualityMetrics captures the five-dimension rubric score for one response.
	QualityMetrics struct {
		Clarity           float64
		Actionability     float64
		Personalization   float64
		SourceCitation    float64
		EjAwareness       float64
		Overall           float64
		IntelligenceLevel IntelligenceLevel
	}

	// HandoffRecord logs one supervisor-to-specialist (or specialist-to-
	// specialist) transition.
	HandoffRecord struct {
		FromNode        string
		ToNode          string
		Timestamp       time.Time
		TaskDescription string
		ToolCallID      string
	}

	// ErrorRecord logs one recovered error along with the strategy applied.
	ErrorRecord struct {
		ErrorType        string
		Message          string
		Timestamp        time.Time
		Context          map[string]string
		RecoveryStrategy string
	}

	// State is the single value passed between graph node handlers for one
	// conversation. Fields are partitioned into overwrite-on-write fields
	// (last writer wins within a turn) and append-only fields (concurrent
	// writers merge by concatenation, order preserved, never deduped).
	State struct {
		// Overwrite-on-write fields.
		UserID             string
		ConversationID     string
		CurrentSpecialist  string
		WorkflowState      WorkflowState
		ConversationComplete bool
		HandoffCount       int
		EnhancedIdentity   IdentityProfile
		RoutingDecision    RoutingDecision
		QualityMetrics     QualityMetrics
		ConfidenceScore    float64
		IntelligenceLevel  IntelligenceLevel
		NeedsHumanReview   bool

		// Append-only fields.
		Messages                []Message
		ToolsUsed               []string
		SpecialistHandoffs      []HandoffRecord
		ResourceRecommendations []string
		ErrorRecoveryLog        []ErrorRecord
		ReflectionHistory       []string
	}
)

// Seed returns an empty, valid starting State for a new conversation.
func Seed(userID, conversationID string) State {
	return State{
		UserID:         userID,
		ConversationID: conversationID,
		WorkflowState:  WorkflowActive,
	}
}

// Clone returns a deep copy of s so callers can mutate the result without
// aliasing slices or maps owned by the original value.
func (s State) Clone() State {
	out := s
	out.EnhancedIdentity.SecondaryIdentities = append([]string(nil), s.EnhancedIdentity.SecondaryIdentities...)
	out.EnhancedIdentity.IntersectionalityFactors = append([]string(nil), s.EnhancedIdentity.IntersectionalityFactors...)
	out.EnhancedIdentity.BarriersIdentified = append([]string(nil), s.EnhancedIdentity.BarriersIdentified...)
	out.EnhancedIdentity.StrengthsIdentified = append([]string(nil), s.EnhancedIdentity.StrengthsIdentified...)
	out.RoutingDecision.Alternatives = append([]string(nil), s.RoutingDecision.Alternatives...)
	out.RoutingDecision.RecommendedTools = append([]string(nil), s.RoutingDecision.RecommendedTools...)
	out.RoutingDecision.SuccessMetrics = append([]string(nil), s.RoutingDecision.SuccessMetrics...)
	out.Messages = append([]Message(nil), s.Messages...)
	out.ToolsUsed = append([]string(nil), s.ToolsUsed...)
	out.SpecialistHandoffs = append([]HandoffRecord(nil), s.SpecialistHandoffs...)
	out.ResourceRecommendations = append([]string(nil), s.ResourceRecommendations...)
	out.ErrorRecoveryLog = append([]ErrorRecord(nil), s.ErrorRecoveryLog...)
	out.ReflectionHistory = append([]string(nil), s.ReflectionHistory...)
	return out
}

// Patch represents a partial update to a State, produced by a node handler.
// Overwrite fields are pointers and are applied only when non-nil;
// IncrementHandoff adds one to HandoffCount when true; append-only fields are
// always concatenated onto the base.
type Patch struct {
	CurrentSpecialist    *string
	WorkflowState        *WorkflowState
	ConversationComplete *bool
	IncrementHandoff     bool
	EnhancedIdentity     *IdentityProfile
	RoutingDecision      *RoutingDecision
	QualityMetrics       *QualityMetrics
	ConfidenceScore      *float64
	IntelligenceLevel    *IntelligenceLevel
	NeedsHumanReview     *bool

	Messages                []Message
	ToolsUsed               []string
	SpecialistHandoffs      []HandoffRecord
	ResourceRecommendations []string
	ErrorRecoveryLog        []ErrorRecord
	ReflectionHistory       []string
}

// Merge applies patch on top of base, following the overwrite/append-only
// partition: overwrite fields set in patch replace the base value;
// append-only fields concatenate patch onto base, preserving order, never
// deduplicating. Merge never mutates base or patch; it returns a new State.
func Merge(base State, patch Patch) State {
	out := base.Clone()

	if patch.CurrentSpecialist != nil {
		out.CurrentSpecialist = *patch.CurrentSpecialist
	}
	if patch.WorkflowState != nil {
		out.WorkflowState = *patch.WorkflowState
	}
	if patch.ConversationComplete != nil {
		out.ConversationComplete = *patch.ConversationComplete
	}
	if patch.IncrementHandoff {
		out.HandoffCount++
	}
	if patch.EnhancedIdentity != nil {
		out.EnhancedIdentity = *patch.EnhancedIdentity
	}
	if patch.RoutingDecision != nil {
		out.RoutingDecision = *patch.RoutingDecision
	}
	if patch.QualityMetrics != nil {
		out.QualityMetrics = *patch.QualityMetrics
	}
	if patch.ConfidenceScore != nil {
		out.ConfidenceScore = *patch.ConfidenceScore
	}
	if patch.IntelligenceLevel != nil {
		out.IntelligenceLevel = *patch.IntelligenceLevel
	}
	if patch.NeedsHumanReview != nil {
		out.NeedsHumanReview = *patch.NeedsHumanReview
	}

	out.Messages = append(out.Messages, patch.Messages...)
	out.ToolsUsed = append(out.ToolsUsed, patch.ToolsUsed...)
	out.SpecialistHandoffs = append(out.SpecialistHandoffs, patch.SpecialistHandoffs...)
	out.ResourceRecommendations = append(out.ResourceRecommendations, patch.ResourceRecommendations...)
	out.ErrorRecoveryLog = append(out.ErrorRecoveryLog, patch.ErrorRecoveryLog...)
	out.ReflectionHistory = append(out.ReflectionHistory, patch.ReflectionHistory...)

	return out
}
