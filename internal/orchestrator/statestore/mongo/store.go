// Package mongo provides a MongoDB-backed statestore.Store using an
// optimistic "revision" counter and atomic $push/$each array appends so
// concurrent saves for the same conversation merge instead of clobbering
// each other.
package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"goa.design/clue/health"

	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/state"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/statestore"
)

const (
	defaultCollection = "conversation_state"
	defaultOpTimeout   = 5 * time.Second
	clientName         = "orchestrator-state-mongo"
)

// Options configures the Mongo-backed Store.
type Options struct {
	Client     *mongodriver.Client
	Database   string
	Collection string
	Timeout    time.Duration
}

// Store is a MongoDB-backed statestore.Store. It also implements
// health.Pinger so it can be registered with the clue health check muxer.
type Store struct {
	coll    *mongodriver.Collection
	mongo   *mongodriver.Client
	timeout time.Duration
}

var _ statestore.Store = (*Store)(nil)
var _ health.Pinger = (*Store)(nil)

// New returns a Store backed by the given MongoDB client and database,
// ensuring the unique (user_id, conversation_id) index exists.
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.Client == nil {
		return nil, errors.New("mongo client is required")
	}
	if opts.Database == "" {
		return nil, errors.New("database name is required")
	}
	collName := opts.Collection
	if collName == "" {
		collName = defaultCollection
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultOpTimeout
	}
	coll := opts.Client.Database(opts.Database).Collection(collName)

	idxCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	_, err := coll.Indexes().CreateOne(idxCtx, mongodriver.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "conversation_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, err
	}

	return &Store{coll: coll, mongo: opts.Client, timeout: timeout}, nil
}

// Name identifies this Store to the clue health check registry.
func (s *Store) Name() string { return clientName }

// Ping reports whether the backing MongoDB deployment is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return s.mongo.Ping(ctx, readpref.Primary())
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// document is the on-disk shape of a conversation's persisted state.
type document struct {
	UserID         string `bson:"user_id"`
	ConversationID string `bson:"conversation_id"`
	Revision       int64  `bson:"revision"`

	CurrentSpecialist    string                `bson:"current_specialist"`
	WorkflowState        state.WorkflowState   `bson:"workflow_state"`
	ConversationComplete bool                  `bson:"conversation_complete"`
	HandoffCount         int                   `bson:"handoff_count"`
	EnhancedIdentity     state.IdentityProfile `bson:"enhanced_identity"`
	RoutingDecision      state.RoutingDecision `bson:"routing_decision"`
	QualityMetrics       state.QualityMetrics  `bson:"quality_metrics"`
	ConfidenceScore      float64               `bson:"confidence_score"`
	IntelligenceLevel    state.IntelligenceLevel `bson:"intelligence_level"`
	NeedsHumanReview     bool                  `bson:"needs_human_review"`

	Messages                []state.Message       `bson:"messages"`
	ToolsUsed               []string               `bson:"tools_used"`
	SpecialistHandoffs      []state.HandoffRecord  `bson:"specialist_handoffs"`
	ResourceRecommendations []string               `bson:"resource_recommendations"`
	ErrorRecoveryLog        []state.ErrorRecord    `bson:"error_recovery_log"`
	ReflectionHistory       []string               `bson:"reflection_history"`
}

func toDocument(s state.State) document {
	return document{
		UserID:                   s.UserID,
		ConversationID:           s.ConversationID,
		CurrentSpecialist:        s.CurrentSpecialist,
		WorkflowState:            s.WorkflowState,
		ConversationComplete:     s.ConversationComplete,
		HandoffCount:             s.HandoffCount,
		EnhancedIdentity:         s.EnhancedIdentity,
		RoutingDecision:          s.RoutingDecision,
		QualityMetrics:           s.QualityMetrics,
		ConfidenceScore:          s.ConfidenceScore,
		IntelligenceLevel:        s.IntelligenceLevel,
		NeedsHumanReview:         s.NeedsHumanReview,
		Messages:                 s.Messages,
		ToolsUsed:                s.ToolsUsed,
		SpecialistHandoffs:       s.SpecialistHandoffs,
		ResourceRecommendations:  s.ResourceRecommendations,
		ErrorRecoveryLog:         s.ErrorRecoveryLog,
		ReflectionHistory:        s.ReflectionHistory,
	}
}

func fromDocument(d document) state.State {
	return state.State{
		UserID:                   d.UserID,
		ConversationID:           d.ConversationID,
		CurrentSpecialist:        d.CurrentSpecialist,
		WorkflowState:            d.WorkflowState,
		ConversationComplete:     d.ConversationComplete,
		HandoffCount:             d.HandoffCount,
		EnhancedIdentity:         d.EnhancedIdentity,
		RoutingDecision:          d.RoutingDecision,
		QualityMetrics:           d.QualityMetrics,
		ConfidenceScore:          d.ConfidenceScore,
		IntelligenceLevel:        d.IntelligenceLevel,
		NeedsHumanReview:         d.NeedsHumanReview,
		Messages:                 d.Messages,
		ToolsUsed:                d.ToolsUsed,
		SpecialistHandoffs:       d.SpecialistHandoffs,
		ResourceRecommendations:  d.ResourceRecommendations,
		ErrorRecoveryLog:         d.ErrorRecoveryLog,
		ReflectionHistory:        d.ReflectionHistory,
	}
}

// Load fetches the persisted state for (userID, conversationID). Returns
// statestore.ErrNotFound when no record exists.
func (s *Store) Load(ctx context.Context, userID, conversationID string) (state.State, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var doc document
	err := s.coll.FindOne(ctx, bson.M{"user_id": userID, "conversation_id": conversationID}).Decode(&doc)
	switch {
	case errors.Is(err, mongodriver.ErrNoDocuments):
		return state.State{}, statestore.ErrNotFound
	case err != nil:
		return state.State{}, errors.Join(statestore.ErrIO, err)
	}
	return fromDocument(doc), nil
}

// maxSaveRetries bounds the optimistic-concurrency retry loop in Save.
const maxSaveRetries = 5

// Save persists st, merging append-only fields via $push/$each rather than
// replacing the stored arrays wholesale, so a concurrent save for the same
// conversation never drops another writer's appended messages. Overwrite
// fields are replaced unconditionally via $set (last writer wins), matching
// state.Merge's semantics.
//
// st carries the full, already-merged append-only slices (as produced by
// state.Merge), not just this turn's delta. Save reads the currently
// persisted document, computes the suffix of each append-only slice beyond
// what is already stored, and pushes only that suffix, guarding the update
// with the document's revision so a concurrent writer's own append is never
// silently dropped: a revision mismatch reloads and retries the diff.
func (s *Store) Save(ctx context.Context, st state.State) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	filter := bson.M{"user_id": st.UserID, "conversation_id": st.ConversationID}
	doc := toDocument(st)

	for attempt := 0; attempt < maxSaveRetries; attempt++ {
		var current document
		err := s.coll.FindOne(ctx, filter).Decode(&current)
		switch {
		case errors.Is(err, mongodriver.ErrNoDocuments):
			current = document{}
		case err != nil:
			return errors.Join(statestore.ErrIO, err)
		}

		update := bson.M{
			"$set": bson.M{
				"user_id":               doc.UserID,
				"conversation_id":       doc.ConversationID,
				"current_specialist":    doc.CurrentSpecialist,
				"workflow_state":        doc.WorkflowState,
				"conversation_complete": doc.ConversationComplete,
				"handoff_count":         doc.HandoffCount,
				"enhanced_identity":     doc.EnhancedIdentity,
				"routing_decision":      doc.RoutingDecision,
				"quality_metrics":       doc.QualityMetrics,
				"confidence_score":      doc.ConfidenceScore,
				"intelligence_level":    doc.IntelligenceLevel,
				"needs_human_review":    doc.NeedsHumanReview,
			},
			"$inc": bson.M{"revision": 1},
		}
		pushes := bson.M{}
		addPush(pushes, "messages", suffix(current.Messages, doc.Messages))
		addPush(pushes, "tools_used", suffix(current.ToolsUsed, doc.ToolsUsed))
		addPush(pushes, "specialist_handoffs", suffix(current.SpecialistHandoffs, doc.SpecialistHandoffs))
		addPush(pushes, "resource_recommendations", suffix(current.ResourceRecommendations, doc.ResourceRecommendations))
		addPush(pushes, "error_recovery_log", suffix(current.ErrorRecoveryLog, doc.ErrorRecoveryLog))
		addPush(pushes, "reflection_history", suffix(current.ReflectionHistory, doc.ReflectionHistory))
		if len(pushes) > 0 {
			update["$push"] = pushes
		}

		revisionFilter := bson.M{"user_id": st.UserID, "conversation_id": st.ConversationID, "revision": current.Revision}
		result, err := s.coll.UpdateOne(ctx, revisionFilter, update, options.Update().SetUpsert(true))
		if err != nil {
			if mongodriver.IsDuplicateKeyError(err) {
				continue // another writer upserted first; retry against its document
			}
			return errors.Join(statestore.ErrIO, err)
		}
		if result.MatchedCount == 0 && result.UpsertedCount == 0 {
			continue // revision moved under us; retry the diff
		}
		return nil
	}
	return errors.Join(statestore.ErrIO, errors.New("mongo: save exceeded retry budget"))
}

// suffix returns the elements of next beyond the length of stored, i.e. the
// items a previous Save has not yet persisted.
func suffix[T any](stored, next []T) []T {
	if len(next) <= len(stored) {
		return nil
	}
	return next[len(stored):]
}

func addPush(pushes bson.M, field string, items any) {
	v := reflectLen(items)
	if v == 0 {
		return
	}
	pushes[field] = bson.M{"$each": items}
}

func reflectLen(items any) int {
	switch v := items.(type) {
	case []state.Message:
		return len(v)
	case []string:
		return len(v)
	case []state.HandoffRecord:
		return len(v)
	case []state.ErrorRecord:
		return len(v)
	default:
		return 0
	}
}
