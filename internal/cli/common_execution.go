package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rshade/regdash/internal/api"
	"github.com/rshade/regdash/internal/cache"
	"github.com/rshade/regdash/internal/config"
	"github.com/rshade/regdash/internal/engine"
	"github.com/rshade/regdash/internal/logging"
	"github.com/rshade/regdash/internal/tui"
)

// app is the per-invocation state built by the root command.
type app struct {
	cfg       *config.Config
	logResult *logging.LogPathResult
	debug     bool

	apiClient *api.Client
	store     *cache.FileStore
}

type appKey struct{}

func withApp(ctx context.Context, a *app) context.Context {
	return context.WithValue(ctx, appKey{}, a)
}

func appFrom(ctx context.Context) *app {
	if ctx == nil {
		return nil
	}
	a, _ := ctx.Value(appKey{}).(*app)
	return a
}

// mustApp returns the app state or an error when the root pre-run did not
// execute (a command run outside NewRootCmd).
func mustApp(cmd *cobra.Command) (*app, error) {
	a := appFrom(cmd.Context())
	if a == nil {
		return nil, errors.New("regdash: command state not initialized")
	}
	return a, nil
}

// cacheStore opens the response cache described by the config.
func (a *app) cacheStore() (*cache.FileStore, error) {
	if a.store != nil {
		return a.store, nil
	}
	c := a.cfg.Cache
	store, err := cache.NewFileStore(a.cfg.CacheDirectory(), c.Enabled, c.TTLSeconds, c.MaxSizeMB)
	if err != nil {
		return nil, err
	}
	a.store = store
	return store, nil
}

// client returns the API client, building it on first use. Every command and
// view of one invocation shares it.
func (a *app) client() (*api.Client, error) {
	if a.apiClient != nil {
		return a.apiClient, nil
	}
	store, err := a.cacheStore()
	if err != nil {
		logger.Warn().Err(err).Msg("response cache unavailable, continuing without it")
		store = nil
	}
	c, err := api.New(api.Options{
		BaseURL:   a.cfg.API.BaseURL,
		Timeout:   time.Duration(a.cfg.API.TimeoutSeconds) * time.Second,
		RateLimit: a.cfg.API.RateLimit,
		Burst:     a.cfg.API.Burst,
		UserAgent: a.cfg.API.UserAgent,
		Cache:     store,
	})
	if err != nil {
		return nil, err
	}
	a.apiClient = c
	return c, nil
}

func (a *app) close() {
	if a.apiClient != nil {
		a.apiClient.Close()
	}
}

// outputOptions are the flags shared by the data commands.
type outputOptions struct {
	format string
	plain  bool
}

func (o *outputOptions) register(cmd *cobra.Command, withPlain bool) {
	cmd.Flags().StringVarP(&o.format, "output", "o", "", "output format: table, json or ndjson (default from config)")
	if withPlain {
		cmd.Flags().BoolVar(&o.plain, "plain", false, "print plain text instead of starting the interactive view")
	}
}

// resolve returns the output format and the presentation mode. Structured
// formats always bypass the TUI.
func (o *outputOptions) resolve() (engine.OutputFormat, tui.OutputMode, error) {
	format, err := engine.ParseOutputFormat(config.GetOutputFormat(o.format))
	if err != nil {
		return "", tui.OutputModePlain, err
	}
	if format != engine.OutputTable {
		return format, tui.OutputModePlain, nil
	}
	return format, tui.DetectOutputMode(false, false, o.plain), nil
}

// tuiContext returns the context an interactive view runs under. Logs go to
// the configured file, to the console with --debug, and nowhere otherwise so
// they cannot corrupt the screen.
func tuiContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	a := appFrom(ctx)
	if a != nil && (a.debug || (a.logResult != nil && a.logResult.UsingFile)) {
		return ctx
	}
	quiet := zerolog.Nop()
	return quiet.WithContext(ctx)
}

// closer is implemented by models holding fetches that must be cancelled
// when the program exits.
type closer interface {
	Close()
}

// runProgram runs model full-screen until the user quits.
func runProgram(ctx context.Context, model tea.Model) error {
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if c, ok := final.(closer); ok {
		c.Close()
	}
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running interactive view: %w", err)
	}
	return nil
}
