package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/flowdj/internal/models"
	"github.com/desertthunder/flowdj/internal/registry"
	"github.com/desertthunder/flowdj/internal/shared"
)

//go:embed templates/*.html
var templateFiles embed.FS

// Synthesizer runs the proposal half of the pipeline for admin previews.
// Satisfied by [tasks.PlaylistEngine].
type Synthesizer interface {
	SynthesizeMood(ctx context.Context, keywords []string) (string, error)
	SynthesizeProposal(ctx context.Context, description string) (*models.PlaylistProposal, error)
	NotifyOrderPlaced(ctx context.Context, email string) error
}

// AdminHandler serves the HTMX admin pages for managing the flow registry
// and previewing playlist proposals.
//
// Implements the server.Handler interface.
type AdminHandler struct {
	registry  *registry.FlowRegistry
	engine    Synthesizer
	templates *template.Template
	mux       *http.ServeMux
	logger    *log.Logger
}

// NewAdminHandler creates the admin handler and parses the embedded templates.
func NewAdminHandler(reg *registry.FlowRegistry, engine Synthesizer, logger *log.Logger) (*AdminHandler, error) {
	templates, err := template.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	h := &AdminHandler{
		registry:  reg,
		engine:    engine,
		templates: templates,
		mux:       http.NewServeMux(),
		logger:    logger,
	}

	h.mux.HandleFunc("GET /{$}", h.index)
	h.mux.HandleFunc("GET /flows/table", h.flowsTable)
	h.mux.HandleFunc("POST /flows", h.insertFlow)
	h.mux.HandleFunc("POST /flows/delete", h.deleteFlow)
	h.mux.HandleFunc("POST /playlist", h.previewPlaylist)
	h.mux.HandleFunc("POST /event/test", h.testEvent)

	return h, nil
}

// Routes returns the HTTP routes this handler serves.
func (h *AdminHandler) Routes() []string {
	return []string{"/", "/flows/table", "/flows", "/flows/delete", "/playlist", "/event/test"}
}

// ServeHTTP dispatches to the admin sub-router.
func (h *AdminHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *AdminHandler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("template render failed", "template", name, "error", err)
	}
}

func (h *AdminHandler) index(w http.ResponseWriter, r *http.Request) {
	h.render(w, "base.html", map[string]any{"Flows": h.registry.List()})
}

func (h *AdminHandler) flowsTable(w http.ResponseWriter, r *http.Request) {
	h.render(w, "flows_table.html", map[string]any{"Flows": h.registry.List()})
}

// insertFlow activates a flow with the submitted keywords and re-renders the
// flow table partial for the HTMX swap.
func (h *AdminHandler) insertFlow(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	flowID := strings.TrimSpace(r.FormValue("flow-id"))
	keywords := splitKeywords(r.FormValue("keywords"))
	sampleURL := strings.TrimSpace(r.FormValue("sample-playlist-url"))

	if flowID == "" || len(keywords) == 0 {
		http.Error(w, "flow-id and keywords are required", http.StatusBadRequest)
		return
	}

	if _, err := h.registry.Upsert(flowID, keywords, sampleURL); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	h.logger.Info("flow activated", "flow_id", flowID, "keywords", keywords)
	h.flowsTable(w, r)
}

// deleteFlow deactivates a flow and re-renders the flow table partial.
func (h *AdminHandler) deleteFlow(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	flowID := strings.TrimSpace(r.FormValue("flow-id"))
	if _, err := h.registry.Deactivate(flowID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	h.logger.Info("flow deactivated", "flow_id", flowID)
	h.flowsTable(w, r)
}

// previewPlaylist runs mood and proposal synthesis for ad-hoc keywords and
// renders the proposal partial. No playlist is created on the catalog.
func (h *AdminHandler) previewPlaylist(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	keywords := splitKeywords(r.FormValue("keywords"))
	if len(keywords) == 0 {
		http.Error(w, "keywords are required", http.StatusBadRequest)
		return
	}

	mood, err := h.engine.SynthesizeMood(r.Context(), keywords)
	if err != nil {
		h.logger.Error("mood preview failed", "error", err)
		http.Error(w, "Mood synthesis failed", http.StatusBadGateway)
		return
	}

	proposal, err := h.engine.SynthesizeProposal(r.Context(), mood)
	if err != nil {
		h.logger.Error("proposal preview failed", "error", err)
		http.Error(w, "Proposal synthesis failed", http.StatusBadGateway)
		return
	}

	h.render(w, "proposal.html", proposal)
}

// testEvent fires the fixed "Placed Order" test event at the marketing
// service to exercise the webhook wiring end to end.
func (h *AdminHandler) testEvent(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	if email == "" {
		http.Error(w, "email is required", http.StatusBadRequest)
		return
	}

	if err := h.engine.NotifyOrderPlaced(r.Context(), email); err != nil {
		h.logger.Error("test event failed", "email", email, "error", err)
		http.Error(w, "Event delivery failed", http.StatusBadGateway)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// splitKeywords parses a comma-separated keyword field, dropping empties.
func splitKeywords(raw string) []string {
	var keywords []string
	for _, kw := range strings.Split(raw, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}
