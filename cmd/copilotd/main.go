// Command copilotd runs the RegMesh chat copilot daemon: the compliance
// engine wired to LLM providers, the knowledge graph and a context store,
// exposed over HTTP/SSE.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hupe1980/regmesh/agent"
	"github.com/hupe1980/regmesh/concept"
	"github.com/hupe1980/regmesh/config"
	"github.com/hupe1980/regmesh/contextstore"
	"github.com/hupe1980/regmesh/core"
	"github.com/hupe1980/regmesh/engine"
	"github.com/hupe1980/regmesh/graph"
	"github.com/hupe1980/regmesh/llm"
	llmanthropic "github.com/hupe1980/regmesh/llm/anthropic"
	llmopenai "github.com/hupe1980/regmesh/llm/openai"
	"github.com/hupe1980/regmesh/logging"
	"github.com/hupe1980/regmesh/server"
)

func main() {
	configPath := flag.String("config", "copilotd.yaml", "path to the configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "copilotd:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	zapLogger, err := buildZapLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer zapLogger.Sync() //nolint:errcheck
	logger := logging.NewZapAdapter(zapLogger)

	router := llm.NewRouter()
	router.Register("openai", llmopenai.NewClient(func(o *llmopenai.Options) {
		if cfg.Provider.OpenAIModel != "" {
			o.Model = cfg.Provider.OpenAIModel
		}
	}))
	router.Register("anthropic", llmanthropic.NewClient(func(o *llmanthropic.Options) {
		if cfg.Provider.AnthropicModel != "" {
			o.Model = anthropic.Model(cfg.Provider.AnthropicModel)
		}
	}))
	if cfg.Provider.Default != "" {
		router.SetDefault(cfg.Provider.Default)
	}

	var graphClient core.GraphClient
	var resolver engine.NodeResolver
	if cfg.Graph.URI != "" {
		neo, err := graph.NewNeo4jClient(cfg.Graph.URI, cfg.Graph.Username, cfg.Graph.Password,
			func(o *graph.Neo4jOptions) { o.Database = cfg.Graph.Database })
		if err != nil {
			return fmt.Errorf("connecting to graph: %w", err)
		}
		defer neo.Close(context.Background()) //nolint:errcheck
		graphClient = neo
		resolver = graph.NewNodeResolver(neo, logger)
	} else {
		logger.Warn("graph.disabled", "reason", "no uri configured")
	}

	var store core.ContextStore
	if cfg.Store.Path != "" {
		sqlStore, err := contextstore.Open(cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("opening context store: %w", err)
		}
		defer sqlStore.Close() //nolint:errcheck
		store = sqlStore
	} else {
		store = contextstore.NewInMemoryStore()
	}

	eng := engine.New(func(o *engine.Options) {
		o.Agent = agent.NewLLMAgent("general-regulatory")
		o.Router = router
		o.Graph = graphClient
		o.Resolver = resolver
		o.ContextStore = store
		o.Concepts = concept.NewGraphHandler(func(ho *concept.GraphHandlerOptions) {
			ho.Logger = logger
		})
		o.BasePrompt = cfg.BasePrompt
		o.Logger = logger
	})

	srv := server.New(eng, func(o *server.Options) {
		o.AllowedOrigins = cfg.Server.AllowedOrigins
		o.Logger = logger
	})

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server.listening", "addr", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("server.shutting_down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// buildZapLogger maps the logging config onto a zap production or
// development logger.
func buildZapLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var zc zap.Config
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
