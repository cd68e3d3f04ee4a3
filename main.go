package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/bytecode-faq-assistant/server/internal/agent/dialogue"
	"github.com/bytecode-faq-assistant/server/internal/agent/embedding"
	"github.com/bytecode-faq-assistant/server/internal/agent/escalation"
	"github.com/bytecode-faq-assistant/server/internal/agent/fallback"
	"github.com/bytecode-faq-assistant/server/internal/agent/graph"
	"github.com/bytecode-faq-assistant/server/internal/agent/knowledge"
	"github.com/bytecode-faq-assistant/server/internal/agent/leads"
	"github.com/bytecode-faq-assistant/server/internal/agent/matcher"
	"github.com/bytecode-faq-assistant/server/internal/agent/model"
	"github.com/bytecode-faq-assistant/server/internal/agent/repo"
	"github.com/bytecode-faq-assistant/server/internal/agent/sink"
	"github.com/bytecode-faq-assistant/server/internal/core"
	"github.com/bytecode-faq-assistant/server/internal/transport"
	logx "github.com/bytecode-faq-assistant/server/pkg/logger"
	pkgredis "github.com/bytecode-faq-assistant/server/pkg/redis"
)

// AppConfig defines all configurable parameters of the assistant,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment core.Environment `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string           `envconfig:"LOG_LEVEL"`
	HTTP        transport.Config

	// Infrastructure
	Redis pkgredis.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Fallback     model.FallbackModelConfig
	Embedding    model.EmbeddingModelConfig
	Business     model.BusinessConfig
	Conversation model.ConversationConfig
	Matching     model.MatchingConfig
	Sinks        model.SinkConfig

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

func main() {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: could not load .env file: %v\n", err)
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to process environment config: %v\n", err)
		os.Exit(1)
	}

	logx.Init(logx.LoggerOpts{Environment: cfg.Environment, Level: cfg.LogLevel})

	if err := run(cfg); err != nil {
		logx.Fatal().Err(err).Msg("Assistant stopped")
	}
}

func run(cfg AppConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rdb *redis.Client
	if cfg.Conversation.Store == "redis" || cfg.Sinks.Backend == "redis" {
		client, err := cfg.Redis.New(ctx)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer client.Close()
		rdb = client
		logx.Info().Msg("Connected to Redis successfully")
	}

	client, err := fallback.NewGenAIClient(ctx, cfg.APIKey, cfg.BaseURL)
	if err != nil {
		return err
	}

	embedder, err := embedding.NewGenAIEmbedder(client, cfg.Embedding)
	if err != nil {
		return err
	}

	faqs, err := loadFAQs(cfg.Matching.KnowledgePath)
	if err != nil {
		return err
	}
	kb, err := knowledge.Load(ctx, embedder, faqs)
	if err != nil {
		return err
	}

	chatModel, err := fallback.NewChatModel(ctx, client, cfg.Fallback)
	if err != nil {
		return err
	}

	leadSink, unansweredSink, err := newSinks(cfg.Sinks, rdb)
	if err != nil {
		return err
	}
	defer leadSink.Close()
	defer unansweredSink.Close()

	escalator := escalation.New(unansweredSink, cfg.Sinks.EscalationBuffer)

	runner, err := graph.BuildResolutionGraph(ctx, graph.Config{
		Matcher:    matcher.New(embedder),
		Knowledge:  kb,
		Escalation: escalator,
		Fallback:   fallback.New(chatModel, cfg.Fallback, cfg.Business),
		Matching:   cfg.Matching,
	})
	if err != nil {
		return err
	}

	store, err := newStateStore(cfg.Conversation, rdb)
	if err != nil {
		return err
	}

	engine, err := dialogue.New(dialogue.Config{
		Store:     store,
		Resolver:  runner,
		Leads:     leads.NewRecorder(leadSink),
		Knowledge: kb,
		Business:  cfg.Business,
	})
	if err != nil {
		return err
	}

	srv := transport.New(cfg.HTTP, engine)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Run)
	g.Go(func() error {
		<-gctx.Done()
		logx.Info().Msg("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logx.Error().Err(err).Msg("HTTP shutdown incomplete")
		}
		if err := escalator.Close(shutdownCtx); err != nil {
			logx.Error().Err(err).Msg("Unanswered questions not fully flushed")
		}
		return nil
	})
	return g.Wait()
}

func loadFAQs(path string) ([]model.FAQ, error) {
	if path == "" {
		return knowledge.DefaultFAQs()
	}
	return knowledge.ReadFAQs(path)
}

func newStateStore(cfg model.ConversationConfig, rdb *redis.Client) (model.StateRepository, error) {
	switch cfg.Store {
	case "memory", "":
		return repo.NewMemoryStateRepository(cfg.TTL), nil
	case "redis":
		return repo.NewRedisStateRepository(rdb, cfg.TTL), nil
	default:
		return nil, fmt.Errorf("unknown CONVERSATION_STORE %q", cfg.Store)
	}
}

func newSinks(cfg model.SinkConfig, rdb *redis.Client) (leadSink, unanswered sink.LineSink, err error) {
	switch cfg.Backend {
	case "file", "":
		l, err := sink.NewFileSink(cfg.LeadsPath, cfg.MaxSizeMB)
		if err != nil {
			return nil, nil, err
		}
		u, err := sink.NewFileSink(cfg.UnansweredPath, cfg.MaxSizeMB)
		if err != nil {
			_ = l.Close()
			return nil, nil, err
		}
		return l, u, nil
	case "redis":
		return sink.NewRedisSink(rdb, cfg.LeadsKey), sink.NewRedisSink(rdb, cfg.UnansweredKey), nil
	default:
		return nil, nil, fmt.Errorf("unknown SINK_BACKEND %q", cfg.Backend)
	}
}
