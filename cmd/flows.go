package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/flowdj/internal/shared"
	"github.com/urfave/cli/v3"
)

// ensureRegistry populates the flow registry from the marketing service if
// it is still empty.
func (r *Runner) ensureRegistry(ctx context.Context) error {
	if r.marketing == nil {
		return fmt.Errorf("%w: Klaviyo credentials must be set in config.toml", shared.ErrMissingCredentials)
	}
	if r.registry.Len() > 0 {
		return nil
	}
	if err := r.registry.Populate(ctx, r.marketing); err != nil {
		return fmt.Errorf("failed to populate flow registry: %w", err)
	}
	return nil
}

// FlowsList lists flows known to the marketing service.
func (r *Runner) FlowsList(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if err := r.ensureRegistry(ctx); err != nil {
		return err
	}

	flows := r.registry.List()

	if useJSON {
		return r.writeJSON(flows, pretty)
	}

	r.writePlain("Found %d flows:\n\n", len(flows))
	for i, f := range flows {
		r.writePlain("%d. %s\n", i+1, f.Name)
		r.writePlain("   ID: %s\n", f.ID)
		if f.Active {
			r.writePlain("   Status: active\n")
			r.writePlain("   Keywords: %s\n", strings.Join(f.Keywords, ", "))
		} else {
			r.writePlain("   Status: inactive\n")
		}
		r.writePlain("\n")
	}

	return nil
}

// FlowsActivate activates a flow with keywords for this session.
//
// The registry is in-memory; activation only affects the current process.
// Use the admin UI for a running server.
func (r *Runner) FlowsActivate(ctx context.Context, cmd *cli.Command) error {
	flowID := cmd.String("id")
	keywords := splitKeywords(cmd.String("keywords"))
	sampleURL := cmd.String("sample-url")

	if len(keywords) == 0 {
		return fmt.Errorf("%w: at least one keyword is required", shared.ErrInvalidArgument)
	}

	if err := r.ensureRegistry(ctx); err != nil {
		return err
	}

	flow, err := r.registry.Upsert(flowID, keywords, sampleURL)
	if err != nil {
		return err
	}

	r.writePlain("✓ Flow activated: %s (%s)\n", flow.Name, flow.ID)
	r.writePlain("  Keywords: %s\n", strings.Join(flow.Keywords, ", "))

	return nil
}

// FlowsDeactivate deactivates a flow for this session.
func (r *Runner) FlowsDeactivate(ctx context.Context, cmd *cli.Command) error {
	flowID := cmd.String("id")

	if err := r.ensureRegistry(ctx); err != nil {
		return err
	}

	flow, err := r.registry.Deactivate(flowID)
	if err != nil {
		return err
	}

	r.writePlain("✓ Flow deactivated: %s (%s)\n", flow.Name, flow.ID)

	return nil
}

// EventTest fires the fixed "Placed Order" test event.
func (r *Runner) EventTest(ctx context.Context, cmd *cli.Command) error {
	email := cmd.String("email")

	if r.marketing == nil {
		return fmt.Errorf("%w: Klaviyo credentials must be set in config.toml", shared.ErrMissingCredentials)
	}

	if err := r.engine.NotifyOrderPlaced(ctx, email); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	r.writePlain("✓ Test event sent to %s\n", email)
	return nil
}

// splitKeywords parses a comma-separated keyword flag, dropping empties.
func splitKeywords(raw string) []string {
	var keywords []string
	for _, kw := range strings.Split(raw, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}
