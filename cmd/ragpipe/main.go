package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/efebarandurmaz/ragpipe/internal/api"
	"github.com/efebarandurmaz/ragpipe/internal/api/middleware"
	"github.com/efebarandurmaz/ragpipe/internal/config"
	"github.com/efebarandurmaz/ragpipe/internal/extract"
	"github.com/efebarandurmaz/ragpipe/internal/llm"
	"github.com/efebarandurmaz/ragpipe/internal/llm/anthropic"
	"github.com/efebarandurmaz/ragpipe/internal/llm/openai"
	"github.com/efebarandurmaz/ragpipe/internal/observability"
	"github.com/efebarandurmaz/ragpipe/internal/pipeline"
	"github.com/efebarandurmaz/ragpipe/internal/secrets"
	"github.com/efebarandurmaz/ragpipe/internal/server"
	"github.com/efebarandurmaz/ragpipe/internal/vector"
	"github.com/efebarandurmaz/ragpipe/internal/vector/memory"
	"github.com/efebarandurmaz/ragpipe/internal/vector/qdrant"
)

var version = "dev"

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "ragpipe",
		Short: "Index web pages into a vector store and answer questions from them",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (optional, env vars work without one)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}

	indexCmd := &cobra.Command{
		Use:   "index <url>",
		Short: "Index a single web page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(configPath, args[0])
		},
	}

	askCmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question from indexed content",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(configPath, strings.Join(args, " "))
		},
	}

	providersCmd := &cobra.Command{
		Use:   "providers",
		Short: "List available LLM providers",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Available LLM providers:")
			fmt.Println()
			for name, url := range llm.KnownProviders {
				fmt.Printf("  %-14s %s\n", name, url)
			}
			fmt.Println("  custom         (set base_url to any OpenAI-compatible endpoint)")
			fmt.Println()
			fmt.Println("Configure in ragpipe.yaml or via environment:")
			fmt.Println("  RAGPIPE_LLM_PROVIDER=openai")
			fmt.Println("  RAGPIPE_LLM_API_KEY=sk-...")
			fmt.Println("  RAGPIPE_LLM_MODEL=gpt-4o-mini")
		},
	}

	rootCmd.AddCommand(serveCmd, indexCmd, askCmd, providersCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds the wired pipelines and their collaborators.
type app struct {
	cfg       *config.Config
	logger    zerolog.Logger
	repo      vector.Repository
	repoPing  func(ctx context.Context) error
	generator llm.Provider
	ingestion *pipeline.Ingestion
	query     *pipeline.Query
}

func (a *app) Close() error {
	return a.repo.Close()
}

func buildApp(ctx context.Context, configPath string) (*app, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger := newLogger(cfg.Log)

	sm, err := secrets.NewManager(cfg.Secrets.ManagerConfig())
	if err != nil {
		return nil, fmt.Errorf("creating secrets manager: %w", err)
	}

	factory := newProviderFactory()

	// API keys left empty in config come from the secrets backend. The
	// embedder prefers its own key and falls back to the shared LLM key.
	embedCfg := cfg.LLM.ResolveForRole("embedder")
	if embedCfg.APIKey == "" {
		embedCfg.APIKey = sm.GetOrDefault(ctx, secrets.SecretEmbedAPIKey,
			sm.GetOrDefault(ctx, secrets.SecretLLMAPIKey, ""))
	}
	genCfg := cfg.LLM.ResolveForRole("generator")
	if genCfg.APIKey == "" {
		genCfg.APIKey = sm.GetOrDefault(ctx, secrets.SecretLLMAPIKey, "")
	}

	embedder, err := createProvider(factory, cfg, embedCfg)
	if err != nil {
		return nil, fmt.Errorf("creating embedding provider: %w", err)
	}
	generator, err := createProvider(factory, cfg, genCfg)
	if err != nil {
		return nil, fmt.Errorf("creating generation provider: %w", err)
	}

	extractor := extract.New(extract.Config{
		Timeout:   cfg.Extractor.Timeout,
		UserAgent: cfg.Extractor.UserAgent,
	})

	repo, ping, err := openRepository(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	vecEmbedder := vector.NewEmbedder(embedder, repo)
	ingestion := pipeline.NewIngestion(extractor, vecEmbedder, cfg.Chunker.ChunkConfig(), logger)
	query := pipeline.NewQuery(vecEmbedder, repo, generator, cfg.Retrieval.TopK, logger)

	return &app{
		cfg:       cfg,
		logger:    logger,
		repo:      repo,
		repoPing:  ping,
		generator: generator,
		ingestion: ingestion,
		query:     query,
	}, nil
}

func newLogger(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.Format == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).Level(level)
	}
	return log.Logger
}

func newProviderFactory() *llm.ProviderFactory {
	factory := llm.NewFactory()
	factory.Register("anthropic", func(c llm.ProviderConfig) (llm.Provider, error) {
		return anthropic.New(c.APIKey, c.Model, c.BaseURL), nil
	})
	factory.Register("openai", func(c llm.ProviderConfig) (llm.Provider, error) {
		return openai.New(c.APIKey, c.Model, c.BaseURL, c.EmbedModel), nil
	})
	// All OpenAI-compatible providers
	for _, p := range []struct{ name, url string }{
		{"groq", llm.KnownProviders["groq"]},
		{"ollama", llm.KnownProviders["ollama"]},
		{"together", llm.KnownProviders["together"]},
		{"deepseek", llm.KnownProviders["deepseek"]},
		{"custom", ""},
	} {
		p := p
		factory.Register(p.name, func(c llm.ProviderConfig) (llm.Provider, error) {
			base := c.BaseURL
			if base == "" {
				base = p.url
			}
			return openai.New(c.APIKey, c.Model, base, c.EmbedModel), nil
		})
	}
	return factory
}

func createProvider(factory *llm.ProviderFactory, cfg *config.Config, llmCfg config.LLMConfig) (llm.Provider, error) {
	provider, err := factory.Create(llm.ProviderConfig{
		Provider:   llmCfg.Provider,
		APIKey:     llmCfg.APIKey,
		Model:      llmCfg.Model,
		BaseURL:    llmCfg.BaseURL,
		EmbedModel: llmCfg.EmbedModel,
		MaxRetries: llmCfg.MaxRetries,
	})
	if err != nil {
		return nil, err
	}
	if cfg.LLM.RequestsPerMinute > 0 {
		provider = llm.WithRateLimit(provider, &llm.RateLimitConfig{
			RequestsPerMinute: cfg.LLM.RequestsPerMinute,
			BurstSize:         llm.DefaultRateLimitConfig().BurstSize,
		})
	}
	return provider, nil
}

// openRepository connects to the configured vector store. The host "memory"
// selects the in-process store, useful for local experiments where nothing
// needs to survive a restart.
func openRepository(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (vector.Repository, func(ctx context.Context) error, error) {
	if cfg.Vector.Host == "memory" {
		logger.Info().Msg("Using in-memory vector store")
		noPing := func(ctx context.Context) error { return nil }
		return memory.New(), noPing, nil
	}

	repo, err := qdrant.New(ctx, cfg.Vector.Host, cfg.Vector.Port, cfg.Vector.Collection)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to qdrant: %w", err)
	}
	logger.Info().
		Str("host", cfg.Vector.Host).
		Int("port", cfg.Vector.Port).
		Str("collection", cfg.Vector.Collection).
		Msg("Connected to qdrant")
	return repo, repo.Ping, nil
}

func runServe(configPath string) error {
	ctx := context.Background()

	a, err := buildApp(ctx, configPath)
	if err != nil {
		return err
	}

	var tracer *observability.TracerProvider
	if a.cfg.Tracing.Enabled {
		tracer, err = observability.InitTracing(ctx, &observability.TracingConfig{
			ServiceName:    "ragpipe",
			ServiceVersion: version,
			OTLPEndpoint:   a.cfg.Tracing.Endpoint,
		})
		if err != nil {
			return fmt.Errorf("initializing tracing: %w", err)
		}
	}

	if err := observability.InitGlobalAuditLogger(observability.DefaultAuditConfig()); err != nil {
		a.logger.Warn().Err(err).Msg("Audit logging disabled")
	}

	container := restful.NewContainer()
	container.Filter(middleware.Logger)
	container.Filter(middleware.RecoverPanic)
	api.RegisterRoutes(container, api.NewHandler(a.ingestion, a.query, version, &a.logger))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	graceful := server.NewGracefulServer(&server.HealthConfig{Version: version}, nil)
	graceful.Health.RegisterCheck("vector-store", server.VectorStoreHealthChecker(a.repoPing))
	graceful.Health.RegisterCheck("llm", server.LLMHealthChecker(a.generator.Name(), nil))

	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Metrics().Handler())
	healthHandler := graceful.Health.Handler()
	for _, p := range []string{"/health", "/ready", "/live", "/healthz", "/readyz", "/livez"} {
		mux.Handle(p, healthHandler)
	}
	mux.Handle("/", corsHandler.Handler(container))

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	httpServer := &http.Server{Addr: addr, Handler: mux}

	hook := server.HTTPServerShutdownHook("api-server", httpServer.Shutdown)
	graceful.RegisterHook(hook.Name, hook.Priority, hook.Fn)
	hook = server.VectorStoreShutdownHook(a.repo.Close)
	graceful.RegisterHook(hook.Name, hook.Priority, hook.Fn)
	hook = server.AuditLoggerShutdownHook(observability.Audit().Close)
	graceful.RegisterHook(hook.Name, hook.Priority, hook.Fn)
	if tracer != nil {
		hook = server.TracingShutdownHook(tracer.Shutdown)
		graceful.RegisterHook(hook.Name, hook.Priority, hook.Fn)
	}

	graceful.Shutdown.Start()
	graceful.Health.SetReady(true)

	a.logger.Info().Str("addr", addr).Msg("Starting API server")
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error().Err(err).Msg("API server failed")
			graceful.Shutdown.Shutdown()
		}
	}()

	graceful.Wait()
	a.logger.Info().Msg("Shutdown complete")
	return nil
}

func runIndex(configPath, pageURL string) error {
	ctx := context.Background()

	a, err := buildApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	docs, err := a.ingestion.Ingest(ctx, pageURL)
	if err != nil {
		return err
	}
	fmt.Printf("Indexed %s (%d documents)\n", pageURL, docs)
	return nil
}

func runAsk(configPath, question string) error {
	ctx := context.Background()

	a, err := buildApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	answer, err := a.query.Answer(ctx, question)
	if err != nil {
		return err
	}
	fmt.Println(answer)
	return nil
}
