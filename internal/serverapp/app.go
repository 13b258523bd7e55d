// Package serverapp wires configuration, logging, the store handle, schema
// compilation, and the HTTP stack into a runnable server lifecycle.
package serverapp

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/XSAM/otelsql"
	_ "github.com/go-sql-driver/mysql"
	"github.com/graphql-go/handler"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"

	"model-graphql/internal/config"
	"model-graphql/internal/logging"
	"model-graphql/internal/middleware"
	"model-graphql/internal/model"
	"model-graphql/internal/observability"
	"model-graphql/internal/schema"
)

// App owns runtime resources for the server lifecycle.
type App struct {
	cfg    *config.Config
	logger *logging.Logger

	loggerProvider *observability.LoggerProvider
	tracerProvider *observability.TracerProvider
	metrics        *observability.Metrics

	db       *sql.DB
	compiled *schema.Compiled

	handler http.Handler
	srv     *http.Server

	cleanup cleanupStack

	stateMu      sync.Mutex
	initialized  bool
	started      bool
	serverErrors chan error

	shutdownOnce sync.Once
}

// New creates an App lifecycle wrapper.
func New(cfg *config.Config, logger *logging.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &App{cfg: cfg, logger: logger}, nil
}

// InitLogger builds the process logger and, when log export is enabled, the
// OTLP logger provider feeding the otelslog bridge.
func InitLogger(cfg *config.Config) (*logging.Logger, *observability.LoggerProvider, error) {
	loggerCfg := logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}
	logger := logging.NewLogger(loggerCfg)
	slog.SetDefault(logger.Logger)

	if !cfg.Telemetry.Enabled || !cfg.Telemetry.LogsEnabled {
		return logger, nil, nil
	}

	loggerProvider, err := observability.InitLoggerProvider(context.Background(), otelConfig(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize OTLP logging: %w", err)
	}

	loggerCfg.LoggerProvider = loggerProvider.Provider()
	logger = logging.NewLogger(loggerCfg)
	slog.SetDefault(logger.Logger)
	return logger, loggerProvider, nil
}

// AttachLoggerProvider registers the logger provider for shutdown cleanup.
func (a *App) AttachLoggerProvider(provider *observability.LoggerProvider) {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	if provider == nil {
		return
	}
	a.loggerProvider = provider
	a.cleanup.push("logger provider", func(ctx context.Context) error {
		return provider.Shutdown(ctx, a.logger.Logger)
	})
}

// Version is stamped by the build and reported as the service version in
// telemetry resources.
var Version = "dev"

func otelConfig(cfg *config.Config) observability.OTelConfig {
	return observability.OTelConfig{
		ServiceName:      cfg.Telemetry.ServiceName,
		ServiceVersion:   Version,
		Environment:      cfg.Telemetry.Environment,
		Endpoint:         cfg.Telemetry.Endpoint,
		Insecure:         cfg.Telemetry.Insecure,
		TraceSampleRatio: cfg.Telemetry.TraceSampleRatio,
	}
}

// Init acquires every runtime resource short of the listener: tracing, the
// store handle, descriptors, the compiled schema, and the handler chain.
func (a *App) Init(ctx context.Context) error {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	if a.initialized {
		return fmt.Errorf("app already initialized")
	}

	if a.cfg.Telemetry.Enabled {
		tracerProvider, err := observability.InitTracerProvider(ctx, otelConfig(a.cfg))
		if err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}
		a.tracerProvider = tracerProvider
		a.cleanup.push("tracer provider", func(ctx context.Context) error {
			return tracerProvider.Shutdown(ctx, a.logger.Logger)
		})
	}

	db, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	a.db = db
	a.cleanup.push("store handle", func(context.Context) error {
		return db.Close()
	})

	models, err := model.LoadFile(a.cfg.Schema.ModelsFile)
	if err != nil {
		return fmt.Errorf("failed to load model descriptors: %w", err)
	}

	compiled, err := schema.Compile(models, schema.Config{
		IncludeModels:         a.cfg.Schema.IncludeModels,
		ExcludeModels:         a.cfg.Schema.ExcludeModels,
		ListFieldNameTemplate: a.cfg.Schema.ListFieldNameTemplate,
		ByPkFieldNameTemplate: a.cfg.Schema.ByPkFieldNameTemplate,
		DefaultPageLimit:      a.cfg.Schema.DefaultPageLimit,
		EnableMutations:       a.cfg.Schema.EnableMutations,
	})
	if err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}
	a.compiled = compiled
	a.logger.Info("schema compiled",
		slog.Int("models", compiled.Registry.Len()),
		slog.Bool("mutations", a.cfg.Schema.EnableMutations),
	)

	a.metrics = observability.NewMetrics()
	a.handler = a.buildHandler()
	a.srv = &http.Server{
		Addr:         a.cfg.Server.Addr(),
		Handler:      a.handler,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	a.initialized = true
	return nil
}

func (a *App) openStore(ctx context.Context) (*sql.DB, error) {
	db, err := otelsql.Open("mysql", a.cfg.Database.DSN,
		otelsql.WithAttributes(attribute.String("db.system", "mysql")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open store handle: %w", err)
	}

	db.SetMaxOpenConns(a.cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(a.cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(a.cfg.Database.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to reach store: %w", err)
	}
	return db, nil
}

// buildHandler assembles the middleware chain around the GraphQL endpoint:
// logging, CORS, metrics, and the per-request store session, with optional
// otelhttp tracing outermost.
func (a *App) buildHandler() http.Handler {
	graphqlHandler := handler.New(&handler.Config{
		Schema:   &a.compiled.Schema,
		Pretty:   true,
		GraphiQL: a.cfg.Server.GraphiQL,
	})

	var endpoint http.Handler = graphqlHandler
	endpoint = middleware.SessionMiddleware(a.db)(endpoint)
	endpoint = middleware.MetricsMiddleware(a.metrics)(endpoint)
	endpoint = middleware.CORSMiddleware(middleware.CORSConfig{
		Enabled:          a.cfg.Server.CORS.Enabled,
		AllowedOrigins:   a.cfg.Server.CORS.AllowedOrigins,
		AllowedMethods:   a.cfg.Server.CORS.AllowedMethods,
		AllowedHeaders:   a.cfg.Server.CORS.AllowedHeaders,
		ExposeHeaders:    a.cfg.Server.CORS.ExposeHeaders,
		AllowCredentials: a.cfg.Server.CORS.AllowCredentials,
		MaxAge:           a.cfg.Server.CORS.MaxAge,
	})(endpoint)
	endpoint = middleware.LoggingMiddleware(a.logger)(endpoint)
	if a.cfg.Telemetry.Enabled {
		endpoint = otelhttp.NewHandler(endpoint, "graphql")
	}

	mux := http.NewServeMux()
	mux.Handle(a.cfg.Server.GraphQLPath, endpoint)
	if a.cfg.Server.MetricsEnabled {
		mux.Handle(a.cfg.Server.MetricsPath, a.metrics.Handler())
	}
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := a.db.PingContext(r.Context()); err != nil {
			http.Error(w, "store unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return mux
}

// Start begins serving and returns the channel carrying the terminal server
// error, if any.
func (a *App) Start() (<-chan error, error) {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	if !a.initialized {
		return nil, fmt.Errorf("app not initialized")
	}
	if a.started {
		return nil, fmt.Errorf("app already started")
	}

	a.serverErrors = make(chan error, 1)
	srv := a.srv
	go func() {
		a.logger.Info("server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.serverErrors <- err
		}
		close(a.serverErrors)
	}()

	a.cleanup.push("http server", func(ctx context.Context) error {
		return srv.Shutdown(ctx)
	})
	a.started = true
	return a.serverErrors, nil
}

// WaitForStop blocks until a shutdown signal arrives or the server fails.
func (a *App) WaitForStop(stop <-chan os.Signal, serverErrors <-chan error) error {
	select {
	case sig := <-stop:
		a.logger.Info("received shutdown signal", slog.String("signal", sig.String()))
		return nil
	case err, ok := <-serverErrors:
		if !ok || err == nil {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	}
}

// Handler exposes the assembled HTTP handler for tests.
func (a *App) Handler() http.Handler {
	return a.handler
}
