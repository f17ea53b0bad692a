// Package memory stores executed plans in an embedded vector database and
// retrieves them for similar future tasks. It backs the retrieve_relevant_plans
// configuration modes.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"

	"github.com/helmsman-ai/helmsman/pkg/orchestrator"
	"github.com/helmsman-ai/helmsman/pkg/plan"
)

const planCollection = "plans"

// Option customizes a PlanStore.
type Option func(*storeOptions)

type storeOptions struct {
	embedding chromem.EmbeddingFunc
}

// WithEmbedding overrides the embedding function. The default embeds with
// the OpenAI API using the OPENAI_API_KEY environment variable.
func WithEmbedding(fn chromem.EmbeddingFunc) Option {
	return func(o *storeOptions) { o.embedding = fn }
}

// PlanStore is an orchestrator.Memory backed by chromem-go. Task text is
// embedded; the plan itself rides along as document metadata.
type PlanStore struct {
	mu     sync.Mutex
	col    *chromem.Collection
	logger *slog.Logger
}

// NewPlanStore opens the store. A non-empty path enables file persistence in
// that directory; an empty path keeps everything in memory. controllerKey
// partitions plans per user, "" shares one collection.
func NewPlanStore(path, controllerKey string, opts ...Option) (*PlanStore, error) {
	options := storeOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	if options.embedding == nil {
		options.embedding = chromem.NewEmbeddingFuncDefault()
	}

	var db *chromem.DB
	var err error
	if path != "" {
		db, err = chromem.NewPersistentDB(path, true)
		if err != nil {
			return nil, fmt.Errorf("open plan memory at %s: %w", path, err)
		}
	} else {
		db = chromem.NewDB()
	}

	name := planCollection
	if controllerKey != "" {
		name = planCollection + "-" + controllerKey
	}
	col, err := db.GetOrCreateCollection(name, nil, options.embedding)
	if err != nil {
		return nil, fmt.Errorf("open plan collection %q: %w", name, err)
	}

	slog.Info("Plan memory ready", "collection", name, "persisted", path != "", "plans", col.Count())
	return &PlanStore{col: col, logger: slog.With("component", "memory")}, nil
}

// StorePlan saves an executed plan keyed by its task text.
func (s *PlanStore) StorePlan(ctx context.Context, task string, p *plan.Plan) error {
	encoded, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	err = s.col.AddDocument(ctx, chromem.Document{
		ID:       uuid.New().String(),
		Content:  task,
		Metadata: map[string]string{"plan": string(encoded)},
	})
	if err != nil {
		return fmt.Errorf("store plan: %w", err)
	}
	s.logger.Debug("Plan stored", "task_len", len(task), "steps", p.Len())
	return nil
}

// SuggestPlans returns up to limit prior plans ranked by task similarity.
func (s *PlanStore) SuggestPlans(ctx context.Context, task string, limit int) ([]orchestrator.Suggestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if count := s.col.Count(); count < limit {
		limit = count
	}
	if limit <= 0 {
		return nil, nil
	}

	results, err := s.col.Query(ctx, task, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query plan memory: %w", err)
	}

	suggestions := make([]orchestrator.Suggestion, 0, len(results))
	for _, r := range results {
		encoded, ok := r.Metadata["plan"]
		if !ok {
			continue
		}
		var p plan.Plan
		if err := json.Unmarshal([]byte(encoded), &p); err != nil {
			s.logger.Warn("Skipping unreadable remembered plan", "id", r.ID, "error", err)
			continue
		}
		suggestions = append(suggestions, orchestrator.Suggestion{
			Task:  r.Content,
			Plan:  &p,
			Score: float64(r.Similarity),
		})
	}
	return suggestions, nil
}

var _ orchestrator.Memory = (*PlanStore)(nil)
