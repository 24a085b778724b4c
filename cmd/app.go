package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"linkgraph/graph"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// errBatchCommitted guards the one-commit-per-batch contract: after a
// successful commit the staged batch is spent and must be reset before any
// further staging or committing.
var errBatchCommitted = errors.New("batch already committed, reset to start a new import")

type AppConfig struct {
	Address           string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
	Logger            *slog.Logger
}

func DefaultAppConfig() AppConfig {
	return AppConfig{
		Address:           "127.0.0.1:8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		Logger:            slog.Default(),
	}
}

type App struct {
	engine    graph.Engine
	converter *graph.Converter
	importLog *graph.ImportLog
	generator graph.Generator
	source    graph.Source

	echo    *echo.Echo
	config  AppConfig
	logger  *slog.Logger
	metrics graph.AppMetrics

	// importMu serializes everything that touches the staging batch; the
	// converter itself is not safe for concurrent use.
	importMu  sync.Mutex
	committed bool

	mu       sync.Mutex
	listener net.Listener
	errCh    chan error
	started  bool
}

func NewApp(engine graph.Engine, cfg AppConfig) *App {
	cfg = mergeWithDefaultAppConfig(cfg)
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := graph.NewInMemAppMetrics()
	importLog := graph.NewImportLog(logger)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(requestLoggerMiddleware(logger, metrics))

	app := &App{
		engine:    engine,
		converter: graph.NewConverter(engine, importLog).WithMetrics(metrics),
		importLog: importLog,
		echo:      e,
		config:    cfg,
		logger:    logger,
		metrics:   metrics,
		errCh:     make(chan error, 1),
	}
	app.registerRoutes()
	return app
}

// WithGenerator enables the natural-language query route.
func (a *App) WithGenerator(g graph.Generator) *App {
	a.generator = g
	return a
}

// WithSource enables server-side imports from a configured export source.
func (a *App) WithSource(src graph.Source) *App {
	a.source = src
	return a
}

func mergeWithDefaultAppConfig(cfg AppConfig) AppConfig {
	d := DefaultAppConfig()
	if cfg.Address != "" {
		d.Address = cfg.Address
	}
	if cfg.ReadHeaderTimeout > 0 {
		d.ReadHeaderTimeout = cfg.ReadHeaderTimeout
	}
	if cfg.ShutdownTimeout > 0 {
		d.ShutdownTimeout = cfg.ShutdownTimeout
	}
	if cfg.Logger != nil {
		d.Logger = cfg.Logger
	}
	return d
}

func requestLoggerMiddleware(logger *slog.Logger, metrics graph.AppMetrics) echo.MiddlewareFunc {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = graph.NoopAppMetrics{}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			if status == 0 {
				status = http.StatusOK
			}
			latencyMS := time.Since(start).Milliseconds()
			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}
			metrics.RecordRequest(c.Request().Method, path, status, latencyMS)
			attrs := []any{
				"method", c.Request().Method,
				"path", path,
				"status", status,
				"latency_ms", latencyMS,
				"remote_ip", c.RealIP(),
			}

			switch {
			case status >= http.StatusInternalServerError:
				logger.ErrorContext(c.Request().Context(), "http request", attrs...)
			case status >= http.StatusBadRequest:
				logger.WarnContext(c.Request().Context(), "http request", attrs...)
			default:
				logger.InfoContext(c.Request().Context(), "http request", attrs...)
			}
			return nil
		}
	}
}

func (a *App) registerRoutes() {
	deps := Dependencies{
		ProcessFile: func(ctx context.Context, name string, data []byte) error {
			a.importMu.Lock()
			defer a.importMu.Unlock()
			if a.committed {
				return errBatchCommitted
			}
			a.converter.ProcessFile(ctx, name, data)
			return nil
		},
		ImportFromSource: func(ctx context.Context) error {
			if a.source == nil {
				return fmt.Errorf("no export source configured")
			}
			a.importMu.Lock()
			defer a.importMu.Unlock()
			if a.committed {
				return errBatchCommitted
			}
			return a.converter.ProcessAll(ctx, a.source)
		},
		HasSource: func() bool { return a.source != nil },
		Commit: func(ctx context.Context) error {
			a.importMu.Lock()
			defer a.importMu.Unlock()
			if a.committed {
				return errBatchCommitted
			}
			start := time.Now()
			err := a.converter.Commit(ctx)
			a.metrics.RecordCommit(time.Since(start).Milliseconds(), err)
			if err == nil {
				a.committed = true
			}
			return err
		},
		Reset: func() {
			a.importMu.Lock()
			defer a.importMu.Unlock()
			a.converter.Reset()
			a.committed = false
		},
		LogLines: func() []string { return a.importLog.Lines() },
		Ask: func(ctx context.Context, question string) (*graph.Answer, error) {
			answerer := &graph.Answerer{Engine: a.engine, Generator: a.generator}
			start := time.Now()
			ans, err := answerer.Ask(ctx, question)
			rows := 0
			if ans != nil {
				rows = len(ans.Rows)
			}
			a.metrics.RecordQuery(time.Since(start).Milliseconds(), rows, err)
			return ans, err
		},
		Schema: func(ctx context.Context) (*graph.Schema, error) {
			return a.engine.Schema(ctx)
		},
		Logger:     a.logger,
		AppMetrics: a.metrics,
	}
	Register(a.echo, deps)
	RegisterUI(a.echo)
}

func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return fmt.Errorf("app already started")
	}

	ln, err := net.Listen("tcp", a.config.Address)
	if err != nil {
		return err
	}
	a.listener = ln
	a.started = true

	srv := &http.Server{Handler: a.echo, ReadHeaderTimeout: a.config.ReadHeaderTimeout}
	a.echo.Server = srv

	go func() {
		err := a.echo.Server.Serve(ln)
		if err == http.ErrServerClosed {
			err = nil
		}
		a.errCh <- err
	}()

	return nil
}

func (a *App) Address() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener == nil {
		return ""
	}
	addr := a.listener.Addr().String()
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	host = strings.TrimSpace(host)
	if host == "" || host == "::" || host == "0.0.0.0" || host == "[::]" {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, port)
}

func (a *App) Wait() error {
	return <-a.errCh
}

func (a *App) Stop(ctx context.Context) error {
	a.mu.Lock()
	started := a.started
	a.started = false
	a.mu.Unlock()

	if !started {
		return nil
	}

	if ctx == nil {
		c, cancel := context.WithTimeout(context.Background(), a.config.ShutdownTimeout)
		defer cancel()
		ctx = c
	}

	if err := a.echo.Shutdown(ctx); err != nil {
		return err
	}
	return nil
}
