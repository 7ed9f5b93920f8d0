// Package app wires all habla subsystems into a running server.
//
// The App struct owns the full lifecycle: New creates and connects all
// subsystems, Run serves the HTTP API until the context is cancelled, and
// Shutdown tears everything down in order.
//
// For testing, inject doubles via functional options (WithStore,
// WithCorpus, etc.). When an option is not provided, New creates real
// implementations from the config.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/ecantero/habla/internal/config"
	"github.com/ecantero/habla/internal/health"
	"github.com/ecantero/habla/internal/history"
	"github.com/ecantero/habla/internal/observe"
	"github.com/ecantero/habla/internal/paragraph"
	"github.com/ecantero/habla/internal/session"
	"github.com/ecantero/habla/pkg/provider/stt"
	"github.com/ecantero/habla/pkg/provider/tts"
)

// defaultListenAddr is used when server.listen_addr is not configured.
const defaultListenAddr = ":8080"

// shutdownGrace is how long Run waits for in-flight HTTP requests after the
// context is cancelled.
const shutdownGrace = 10 * time.Second

// Providers holds one interface value per provider slot. Nil means the
// provider is not configured; the corresponding practice operations are
// then reported as unavailable. Populated by main.go via the config
// registry.
type Providers struct {
	STT stt.Provider
	TTS tts.Provider
}

// App owns all subsystem lifetimes and serves the practice HTTP API.
type App struct {
	cfg       *config.Config
	providers *Providers

	corpus  *paragraph.Corpus
	store   history.Store
	metrics *observe.Metrics
	manager *session.Manager
	handler http.Handler
	srv     *http.Server

	// closers are called in order during Shutdown.
	closers []func() error

	// stopOnce guards the Shutdown path.
	stopOnce sync.Once
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithStore injects a history store instead of creating one from config.
func WithStore(s history.Store) Option {
	return func(a *App) { a.store = s }
}

// WithCorpus injects a paragraph corpus instead of loading one from config.
func WithCorpus(c *paragraph.Corpus) Option {
	return func(a *App) { a.corpus = c }
}

// WithMetrics injects a metrics instance instead of using the package
// default.
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// New creates an App by wiring all subsystems together. The providers
// struct comes from main.go (populated via the config registry). Use Option
// functions to inject test doubles for any subsystem.
func New(ctx context.Context, cfg *config.Config, providers *Providers, opts ...Option) (*App, error) {
	a := &App{
		cfg:       cfg,
		providers: providers,
	}
	for _, o := range opts {
		o(a)
	}

	if err := a.initCorpus(); err != nil {
		return nil, fmt.Errorf("app: init corpus: %w", err)
	}
	if err := a.initStore(ctx); err != nil {
		return nil, fmt.Errorf("app: init history store: %w", err)
	}
	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}

	a.manager = session.NewManager(session.Config{
		Corpus:   a.corpus,
		Capture:  providers.STT,
		Playback: providers.TTS,
		Store:    a.store,
		Metrics:  a.metrics,
	}, practiceSettings(cfg.Practice))

	a.initHTTP()
	return a, nil
}

// initCorpus loads the paragraph corpus from config unless one was injected.
func (a *App) initCorpus() error {
	if a.corpus != nil {
		return nil
	}
	if path := a.cfg.Corpus.Path; path != "" {
		c, err := paragraph.LoadCorpus(path)
		if err != nil {
			return err
		}
		a.corpus = c
		slog.Info("loaded corpus", "path", path)
		return nil
	}
	a.corpus = paragraph.DefaultCorpus()
	return nil
}

// initStore connects the PostgreSQL attempt store or falls back to memory.
func (a *App) initStore(ctx context.Context) error {
	if a.store != nil {
		return nil
	}

	dsn := a.cfg.History.PostgresDSN
	if dsn == "" {
		slog.Warn("no postgres_dsn configured, attempt history kept in memory")
		a.store = history.NewMemStore()
		return nil
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	store := history.NewPostgresStore(pool)
	if err := store.Migrate(ctx); err != nil {
		pool.Close()
		return err
	}
	a.store = store
	a.closers = append(a.closers, func() error {
		pool.Close()
		return nil
	})
	slog.Info("connected attempt history store")
	return nil
}

// initHTTP assembles the route table and the http.Server.
func (a *App) initHTTP() {
	checkers := []health.Checker{health.StoreChecker(a.store)}
	if a.providers.TTS != nil {
		checkers = append(checkers, health.PlaybackChecker(a.providers.TTS))
	}
	h := health.New(checkers...)

	mux := http.NewServeMux()
	h.Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())
	a.registerAPI(mux)

	a.handler = observe.Middleware(a.metrics)(mux)

	addr := a.cfg.Server.ListenAddr
	if addr == "" {
		addr = defaultListenAddr
	}
	a.srv = &http.Server{
		Addr:              addr,
		Handler:           a.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// Handler returns the app's HTTP handler. Exposed for tests.
func (a *App) Handler() http.Handler {
	return a.handler
}

// ApplyConfig applies the hot-reloadable parts of a new config: practice
// tuning and the corpus affect sessions created from now on; everything
// else requires a restart. Called by the config watcher.
func (a *App) ApplyConfig(old, updated *config.Config) {
	diff := config.Diff(old, updated)
	if !diff.Any() {
		return
	}

	if diff.ThresholdsChanged || diff.RatesChanged || diff.VoiceChanged {
		a.manager.UpdateSettings(practiceSettings(updated.Practice))
		slog.Info("practice settings reloaded, applies to new sessions")
	}

	if diff.CorpusChanged {
		corpus := paragraph.DefaultCorpus()
		if path := updated.Corpus.Path; path != "" {
			c, err := paragraph.LoadCorpus(path)
			if err != nil {
				slog.Warn("corpus reload failed, keeping previous corpus",
					"path", path, "err", err)
				return
			}
			corpus = c
		}
		a.manager.UpdateCorpus(corpus)
		slog.Info("corpus reloaded, applies to new sessions",
			"path", updated.Corpus.Path)
	}
}

// Run serves the HTTP API and blocks until ctx is cancelled or the server
// fails. On cancellation in-flight requests get a grace period before the
// listener is torn down.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("server listening", "addr", a.srv.Addr, "tls", a.cfg.Server.TLS != nil)
		var err error
		if tls := a.cfg.Server.TLS; tls != nil {
			err = a.srv.ListenAndServeTLS(tls.CertFile, tls.KeyFile)
		} else {
			err = a.srv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return a.srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	return nil
}

// Shutdown tears down all subsystems in order: live sessions first, then
// the resources they depend on. It respects the context deadline: if ctx
// expires before all closers finish, remaining closers are skipped and the
// context error is returned.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.stopOnce.Do(func() {
		slog.Info("shutting down", "sessions", a.manager.Len())

		if err := a.manager.CloseAll(); err != nil {
			slog.Warn("session close error", "err", err)
		}

		for i, closer := range a.closers {
			select {
			case <-ctx.Done():
				slog.Warn("shutdown deadline exceeded", "remaining", len(a.closers)-i)
				shutdownErr = ctx.Err()
				return
			default:
			}
			if err := closer(); err != nil {
				slog.Warn("closer error", "index", i, "err", err)
			}
		}

		slog.Info("shutdown complete")
	})
	return shutdownErr
}

// practiceSettings converts the config block to session settings.
func practiceSettings(p config.PracticeConfig) session.Settings {
	return session.Settings{
		WindowSize:       p.WindowSize,
		CorrectThreshold: p.CorrectThreshold,
		CloseThreshold:   p.CloseThreshold,
		NormalRate:       p.NormalRate,
		SlowRate:         p.SlowRate,
		Language:         p.Language,
		Voice:            p.Voice,
	}
}
