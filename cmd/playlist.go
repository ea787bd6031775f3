package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/flowdj/internal/formatter"
	"github.com/desertthunder/flowdj/internal/shared"
	"github.com/urfave/cli/v3"
)

// PlaylistPreview synthesizes a mood and playlist proposal from ad-hoc
// keywords. Nothing is created on the catalog.
func (r *Runner) PlaylistPreview(ctx context.Context, cmd *cli.Command) error {
	keywords := splitKeywords(cmd.String("keywords"))
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")
	outputFile := cmd.String("output")

	if r.completion == nil {
		return fmt.Errorf("%w: OpenAI credentials must be set in config.toml", shared.ErrMissingCredentials)
	}
	if len(keywords) == 0 {
		return fmt.Errorf("%w: at least one keyword is required", shared.ErrInvalidArgument)
	}

	r.logger.Infof("previewing playlist for keywords %v", keywords)

	mood, err := r.engine.SynthesizeMood(ctx, keywords)
	if err != nil {
		return err
	}

	proposal, err := r.engine.SynthesizeProposal(ctx, mood)
	if err != nil {
		return err
	}

	if outputFile != "" {
		written, err := formatter.WriteProposalMarkdown(proposal, outputFile)
		if err != nil {
			return err
		}
		r.writePlain("✓ Proposal written to %s\n", written)
		return nil
	}

	if useJSON {
		return r.writeJSON(proposal, pretty)
	}

	return r.writePlain("%s", formatter.ProposalToText(proposal))
}

// PlaylistCreate synthesizes a proposal from ad-hoc keywords and realizes it
// on the catalog, printing each track's resolution outcome.
func (r *Runner) PlaylistCreate(ctx context.Context, cmd *cli.Command) error {
	keywords := splitKeywords(cmd.String("keywords"))

	if r.completion == nil {
		return fmt.Errorf("%w: OpenAI credentials must be set in config.toml", shared.ErrMissingCredentials)
	}
	if r.catalog == nil {
		return fmt.Errorf("%w: authenticate with `spotify auth` first", shared.ErrMissingCredentials)
	}
	if len(keywords) == 0 {
		return fmt.Errorf("%w: at least one keyword is required", shared.ErrInvalidArgument)
	}

	r.logger.Infof("creating playlist for keywords %v", keywords)

	mood, err := r.engine.SynthesizeMood(ctx, keywords)
	if err != nil {
		return err
	}

	proposal, err := r.engine.SynthesizeProposal(ctx, mood)
	if err != nil {
		return err
	}

	realized, results, err := r.engine.BuildPlaylist(ctx, nil, proposal)
	if err != nil {
		return err
	}

	return r.writePlain("%s", formatter.ResultsToText(realized, results))
}
