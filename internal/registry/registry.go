// Package registry holds the in-memory table of marketing flows.
//
// The registry is the only owner of [models.Flow] values: admin actions and
// startup population mutate it through the exported methods, and the webhook
// pipeline reads from it. All access is guarded by a mutex since the HTTP
// server serves admin actions and webhook runs from separate goroutines.
//
// Flows are not persisted; the registry is repopulated from the marketing
// service on every startup.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/desertthunder/flowdj/internal/models"
	"github.com/desertthunder/flowdj/internal/services"
	"github.com/desertthunder/flowdj/internal/shared"
)

// FlowRegistry is a mutex-guarded in-memory mapping from flow ID to flow
// configuration.
type FlowRegistry struct {
	mu    sync.RWMutex
	flows map[string]models.Flow
}

// NewFlowRegistry creates an empty registry.
func NewFlowRegistry() *FlowRegistry {
	return &FlowRegistry{flows: make(map[string]models.Flow)}
}

// Populate bulk-loads flow definitions from the marketing service.
//
// Every listed flow starts inactive with no keywords. Flows already present
// keep their configuration; only newly seen IDs are added.
func (r *FlowRegistry) Populate(ctx context.Context, marketing services.MarketingService) error {
	if marketing == nil {
		return fmt.Errorf("%w: marketing service not initialized", shared.ErrServiceUnavailable)
	}

	listed, err := marketing.ListFlows(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to list flows: %v", shared.ErrAPIRequest, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range listed {
		if _, exists := r.flows[f.ID]; exists {
			continue
		}
		r.flows[f.ID] = models.Flow{
			ID:       f.ID,
			Name:     f.Name,
			Keywords: []string{},
			Active:   false,
		}
	}

	return nil
}

// Get retrieves a flow by ID.
func (r *FlowRegistry) Get(id string) (models.Flow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	flow, ok := r.flows[id]
	if !ok {
		return models.Flow{}, fmt.Errorf("%w: %s", shared.ErrFlowNotFound, id)
	}
	return flow, nil
}

// List returns all flows sorted by name, then ID, for stable rendering.
func (r *FlowRegistry) List() []models.Flow {
	r.mu.RLock()
	defer r.mu.RUnlock()

	flows := make([]models.Flow, 0, len(r.flows))
	for _, f := range r.flows {
		flows = append(flows, f)
	}

	sort.Slice(flows, func(i, j int) bool {
		if flows[i].Name != flows[j].Name {
			return flows[i].Name < flows[j].Name
		}
		return flows[i].ID < flows[j].ID
	})

	return flows
}

// Upsert activates a flow with the given keywords and sample playlist URL.
//
// Unknown IDs return [shared.ErrFlowNotFound]; flows are only created by
// [FlowRegistry.Populate].
func (r *FlowRegistry) Upsert(id string, keywords []string, sampleURL string) (models.Flow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	flow, ok := r.flows[id]
	if !ok {
		return models.Flow{}, fmt.Errorf("%w: %s", shared.ErrFlowNotFound, id)
	}

	flow.Keywords = append([]string{}, keywords...)
	flow.SamplePlaylistURL = sampleURL
	flow.Active = true
	r.flows[id] = flow

	return flow, nil
}

// Deactivate clears a flow's keywords and marks it inactive.
func (r *FlowRegistry) Deactivate(id string) (models.Flow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	flow, ok := r.flows[id]
	if !ok {
		return models.Flow{}, fmt.Errorf("%w: %s", shared.ErrFlowNotFound, id)
	}

	flow.Keywords = []string{}
	flow.SamplePlaylistURL = ""
	flow.Active = false
	r.flows[id] = flow

	return flow, nil
}

// Len returns the number of registered flows.
func (r *FlowRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.flows)
}
