package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/flowdj/internal/models"
	"github.com/desertthunder/flowdj/internal/tasks"
)

type stubRunner struct {
	mu       sync.Mutex
	payloads []models.WebhookPayload
	result   *tasks.PipelineResult
	err      error
}

func (s *stubRunner) Run(ctx context.Context, progress chan<- tasks.ProgressUpdate, payload models.WebhookPayload) (*tasks.PipelineResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads = append(s.payloads, payload)
	if s.err != nil {
		return s.result, s.err
	}
	if s.result != nil {
		return s.result, nil
	}
	return &tasks.PipelineResult{RunID: "r1"}, nil
}

func TestWebhookHandler(t *testing.T) {
	t.Run("acknowledges with 202 and runs pipeline", func(t *testing.T) {
		runner := &stubRunner{}
		handler := NewWebhookHandler(runner, nil)

		req := httptest.NewRequest(http.MethodPost, "/webhook/klaviyo", strings.NewReader(`{"flow_id": "f1", "email": "a@b.co"}`))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		handler.Wait()

		if rec.Code != http.StatusAccepted {
			t.Errorf("status = %d, want 202", rec.Code)
		}
		body, _ := io.ReadAll(rec.Body)
		if string(body) != "Processing webhook..." {
			t.Errorf("body = %q", body)
		}
		if len(runner.payloads) != 1 || runner.payloads[0].FlowID != "f1" {
			t.Errorf("payloads = %+v", runner.payloads)
		}
	})

	t.Run("pipeline failure never reaches the caller", func(t *testing.T) {
		runner := &stubRunner{err: errors.New("completion down"), result: &tasks.PipelineResult{}}
		handler := NewWebhookHandler(runner, nil)

		req := httptest.NewRequest(http.MethodPost, "/webhook/klaviyo", strings.NewReader(`{"flow_id": "f1", "email": "a@b.co"}`))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		handler.Wait()

		if rec.Code != http.StatusAccepted {
			t.Errorf("status = %d, want 202 even on pipeline failure", rec.Code)
		}
	})

	t.Run("rejects undecodable body", func(t *testing.T) {
		runner := &stubRunner{}
		handler := NewWebhookHandler(runner, nil)

		req := httptest.NewRequest(http.MethodPost, "/webhook/klaviyo", strings.NewReader("not json"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		handler.Wait()

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
		if len(runner.payloads) != 0 {
			t.Errorf("pipeline ran for invalid body")
		}
	})

	t.Run("rejects non-POST", func(t *testing.T) {
		handler := NewWebhookHandler(&stubRunner{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/webhook/klaviyo", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", rec.Code)
		}
	})

	t.Run("identical webhooks run twice", func(t *testing.T) {
		runner := &stubRunner{}
		handler := NewWebhookHandler(runner, nil)

		for range 2 {
			req := httptest.NewRequest(http.MethodPost, "/webhook/klaviyo", strings.NewReader(`{"flow_id": "f1", "email": "a@b.co"}`))
			handler.ServeHTTP(httptest.NewRecorder(), req)
		}
		handler.Wait()

		if len(runner.payloads) != 2 {
			t.Errorf("runs = %d, want 2 (no dedup)", len(runner.payloads))
		}
	})
}

func TestBasicRouter(t *testing.T) {
	t.Run("method filtering", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodPost, "/flows", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/flows", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", rec.Code)
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/flows", nil))
		if rec.Code != http.StatusCreated {
			t.Errorf("status = %d, want 201", rec.Code)
		}
	})

	t.Run("middleware applies in reverse order", func(t *testing.T) {
		var order []string
		mw := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mw("first"), mw("second"))
		router.Handle(http.MethodGet, "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		if len(order) != 2 || order[0] != "first" || order[1] != "second" {
			t.Errorf("order = %v", order)
		}
	})
}
