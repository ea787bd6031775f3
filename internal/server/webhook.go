package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/flowdj/internal/models"
	"github.com/desertthunder/flowdj/internal/shared"
	"github.com/desertthunder/flowdj/internal/tasks"
)

// PipelineRunner executes one playlist pipeline run for a webhook payload.
// Satisfied by [tasks.PlaylistEngine].
type PipelineRunner interface {
	Run(ctx context.Context, progress chan<- tasks.ProgressUpdate, payload models.WebhookPayload) (*tasks.PipelineResult, error)
}

// WebhookHandler ingests marketing-automation webhook events.
//
// The webhook caller is acknowledged immediately with 202 Accepted; the
// pipeline runs in a detached goroutine and reports failures to the logger
// only. The caller never observes pipeline outcomes.
type WebhookHandler struct {
	engine PipelineRunner
	logger *log.Logger
	wg     sync.WaitGroup
}

// NewWebhookHandler creates a webhook handler backed by the given pipeline.
func NewWebhookHandler(engine PipelineRunner, logger *log.Logger) *WebhookHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &WebhookHandler{engine: engine, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *WebhookHandler) Routes() []string {
	return []string{"/webhook/klaviyo"}
}

// ServeHTTP decodes the payload, acknowledges with 202, and launches the
// pipeline in the background.
//
// Only undecodable bodies are rejected; payloads referencing unknown or
// inactive flows still receive 202 and are discarded by the pipeline gate.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var payload models.WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid webhook body", http.StatusBadRequest)
		return
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.run(payload)
	}()

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusAccepted)
	fmt.Fprint(w, "Processing webhook...")
}

// run executes the pipeline detached from the request lifecycle. Errors are
// logged; there is no channel back to the webhook caller.
func (h *WebhookHandler) run(payload models.WebhookPayload) {
	result, err := h.engine.Run(context.Background(), nil, payload)
	if err != nil {
		h.logger.Error("pipeline run failed", "flow_id", payload.FlowID, "email", payload.Email, "error", err)
		return
	}
	if result.Skipped {
		return
	}
	h.logger.Info("pipeline run completed",
		"run_id", result.RunID,
		"flow_id", payload.FlowID,
		"added", result.AddedCount(),
		"proposed", len(result.Tracks))
}

// Wait blocks until all in-flight pipeline runs finish.
func (h *WebhookHandler) Wait() {
	h.wg.Wait()
}
