// Package resources defines the orchestrator's resource-lookup contract: a
// Search finds concrete programs, benefits, or services to recommend. No
// graph node calls Search, so state.State.ResourceRecommendations, which the
// completion checker counts, is not filled from it. It ships only
// best-effort implementations; failures never propagate out of
// run_turn/resume_turn.
package resources

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Resource is one concrete recommendation a specialist can surface to the
// user.
type Resource struct {
	Name        string
	Description string
	ContactInfo string
	Category    string
}

// Search looks up resources matching query within category ("" matches any
// category). Implementations must never error in a way that should stop the
// turn; callers treat a returned error as "no resources found".
type Search interface {
	Search(ctx context.Context, query, category string) ([]Resource, error)
}

// Noop returns no resources for any query. Use this when no resource
// directory is configured.
type Noop struct{}

// NewNoop returns a Search that finds nothing.
func NewNoop() Search { return Noop{} }

// Search always returns an empty result.
func (Noop) Search(context.Context, string, string) ([]Resource, error) { return nil, nil }

// InMemory searches a fixed, seeded catalog by keyword and category,
// sufficient to drive the demo CLI and tests without a real resource
// directory integration.
type InMemory struct {
	mu      sync.RWMutex
	catalog []Resource
}

// NewInMemory returns a Search over catalog's resources.
func NewInMemory(catalog []Resource) *InMemory {
	return &InMemory{catalog: append([]Resource(nil), catalog...)}
}

// Search returns every catalog entry whose category matches (when category
// is non-empty) and whose name or description contains query, case
// insensitively. Results are stable-ordered by name.
func (s *InMemory) Search(_ context.Context, query, category string) ([]Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(query)
	var matches []Resource
	for _, r := range s.catalog {
		if category != "" && r.Category != category {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(r.Name), q) && !strings.Contains(strings.ToLower(r.Description), q) {
			continue
		}
		matches = append(matches, r)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Name < matches[j].Name })
	return matches, nil
}

// DefaultCatalog seeds an InMemory directory with one resource per
// specialist domain; this package's tests search it.
func DefaultCatalog() []Resource {
	return []Resource{
		{Name: "VA Benefits Navigator", Description: "Veteran benefits claim assistance", ContactInfo: "contact: va.gov/benefits", Category: "veteran"},
		{Name: "Credential Evaluation Service", Description: "Foreign credential and degree evaluation", ContactInfo: "contact: wes.org", Category: "international"},
		{Name: "Community Solar Co-op Directory", Description: "Frontline community clean energy programs", ContactInfo: "contact: localenergyhub.org", Category: "environmental_justice"},
		{Name: "Career Upskilling Portal", Description: "Resume review and job search workshops", ContactInfo: "contact: careeronestop.org", Category: "career_development"},
	}
}
