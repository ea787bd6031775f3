// Klaviyo API implementation of [MarketingService]
//
// Flow listing uses the authenticated API; event ingestion uses the public
// client-events endpoint keyed by company ID.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/desertthunder/flowdj/internal/models"
	"github.com/desertthunder/flowdj/internal/shared"
)

const (
	defaultKlaviyoBaseURL = "https://a.klaviyo.com"
	klaviyoRevision       = "2023-12-15"
)

// klaviyoFlow is a flow entry in a list-flows response.
type klaviyoFlow struct {
	ID         string `json:"id"`
	Attributes struct {
		Name string `json:"name"`
	} `json:"attributes"`
}

// klaviyoFlowList is the list-flows response envelope.
type klaviyoFlowList struct {
	Data []klaviyoFlow `json:"data"`
}

// KlaviyoService implements [MarketingService] for Klaviyo.
type KlaviyoService struct {
	apiKey     string
	companyID  string
	baseURL    string
	httpClient *http.Client
}

// NewKlaviyoService creates a new Klaviyo service instance.
func NewKlaviyoService(apiKey, companyID, baseURL string, client *http.Client) (*KlaviyoService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: missing Klaviyo api_key", shared.ErrMissingCredentials)
	}
	if companyID == "" {
		return nil, fmt.Errorf("%w: missing Klaviyo company_id", shared.ErrMissingCredentials)
	}
	if baseURL == "" {
		baseURL = defaultKlaviyoBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &KlaviyoService{
		apiKey:     apiKey,
		companyID:  companyID,
		baseURL:    baseURL,
		httpClient: client,
	}, nil
}

func (k *KlaviyoService) Name() string {
	return "Klaviyo"
}

// ListFlows retrieves all flow definitions from the authenticated API.
func (k *KlaviyoService) ListFlows(ctx context.Context) ([]FlowInfo, error) {
	apiURL := k.baseURL + "/api/flows/"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Klaviyo-API-Key "+k.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("revision", klaviyoRevision)

	resp, err := k.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("klaviyo API error: status %d", resp.StatusCode)
	}

	var list klaviyoFlowList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	flows := make([]FlowInfo, len(list.Data))
	for i, f := range list.Data {
		flows[i] = FlowInfo{ID: f.ID, Name: f.Attributes.Name}
	}

	return flows, nil
}

// PostEvent posts a client event document to the event-ingestion endpoint.
//
// The response body is not inspected; non-2xx statuses surface as transport
// errors for the caller to log.
func (k *KlaviyoService) PostEvent(ctx context.Context, doc models.EventDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	apiURL := fmt.Sprintf("%s/client/events/?company_id=%s", k.baseURL, k.companyID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("revision", klaviyoRevision)

	resp, err := k.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("klaviyo event error: status %d", resp.StatusCode)
	}

	return nil
}
