package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/flowdj/internal/registry"
	"github.com/desertthunder/flowdj/internal/services"
	"github.com/desertthunder/flowdj/internal/shared"
	"github.com/desertthunder/flowdj/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	completion services.CompletionService
	catalog    services.OAuthService
	marketing  services.MarketingService
	registry   *registry.FlowRegistry
	engine     *tasks.PlaylistEngine
	cache      tasks.TrackCacher
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Completion services.CompletionService
	Catalog    services.OAuthService
	Marketing  services.MarketingService
	Registry   *registry.FlowRegistry
	Cache      tasks.TrackCacher
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Registry == nil {
		opts.Registry = registry.NewFlowRegistry()
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		completion: opts.Completion,
		catalog:    opts.Catalog,
		marketing:  opts.Marketing,
		registry:   opts.Registry,
		cache:      opts.Cache,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
	r.buildEngine()

	return r
}

// buildEngine (re)constructs the pipeline engine from the runner's current
// dependencies. Called again after the track cache is attached.
func (r *Runner) buildEngine() {
	r.engine = tasks.NewPlaylistEngine(tasks.EngineOpts{
		Completion:  r.completion,
		Catalog:     r.catalog,
		Marketing:   r.marketing,
		Registry:    r.registry,
		Cache:       r.cache,
		CatalogUser: r.config.Pipeline.SpotifyUser,
		SearchRate:  r.config.Pipeline.SearchRate,
		Logger:      r.logger,
	})
}

// SetLogger swaps the runner's logger and rebuilds the engine so pipeline
// logs follow.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
	r.buildEngine()
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, flowsCommand, playlistCommand, eventCommand, spotifyCommand, setupCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
