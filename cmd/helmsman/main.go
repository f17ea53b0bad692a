// Helmsman orchestrator server — exposes the HTTP/WebSocket API, runs the
// session worker pool, and coordinates the agent team per session.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/helmsman-ai/helmsman/pkg/agents"
	"github.com/helmsman-ai/helmsman/pkg/api"
	"github.com/helmsman-ai/helmsman/pkg/checkpoint"
	"github.com/helmsman-ai/helmsman/pkg/config"
	"github.com/helmsman-ai/helmsman/pkg/container"
	"github.com/helmsman-ai/helmsman/pkg/events"
	"github.com/helmsman-ai/helmsman/pkg/llm"
	"github.com/helmsman-ai/helmsman/pkg/memory"
	"github.com/helmsman-ai/helmsman/pkg/orchestrator"
	"github.com/helmsman-ai/helmsman/pkg/queue"
	"github.com/helmsman-ai/helmsman/pkg/sentinel"
	"github.com/helmsman-ai/helmsman/pkg/session"
	"github.com/helmsman-ai/helmsman/pkg/team"
	"github.com/helmsman-ai/helmsman/pkg/version"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configPath := flag.String("config",
		getEnv("HELMSMAN_CONFIG", "./helmsman.yaml"),
		"Path to the configuration file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file, continuing with existing environment", "error", err)
	}

	slog.Info("Starting helmsman", "version", version.Full(), "config", *configPath)

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Per-call model timeout comes from the session defaults.
	cfg.Model.Timeout = cfg.Session.PerLLMTimeout.Std()
	client, err := llm.NewOpenAIClient(cfg.Model)
	if err != nil {
		slog.Error("Failed to create LLM client", "error", err)
		os.Exit(1)
	}
	slog.Info("LLM client initialized", "model", cfg.Model.Model, "base_url", cfg.Model.BaseURL)

	// Sentinel checkpoint store: Postgres when a database is configured,
	// in-memory otherwise.
	var store sentinel.Store
	if cfg.Database.Enabled {
		pgStore, err := checkpoint.NewPostgresStore(ctx, cfg.Database.URL)
		if err != nil {
			slog.Error("Failed to open checkpoint store", "error", err)
			os.Exit(1)
		}
		defer pgStore.Close()
		store = pgStore
		slog.Info("Checkpoint store connected")
	} else {
		store = checkpoint.NewMemoryStore()
		slog.Info("Checkpoint store in memory only")
	}

	// Plan memory backs retrieve_relevant_plans.
	var planMemory orchestrator.Memory
	if cfg.Memory.Enabled {
		planStore, err := memory.NewPlanStore(cfg.Memory.Path, cfg.Session.MemoryControllerKey)
		if err != nil {
			slog.Error("Failed to open plan memory", "error", err)
			os.Exit(1)
		}
		planMemory = planStore
	}

	// Code execution container, shared across concurrent sessions. Sessions
	// only ensure it is up; it is stopped once at shutdown.
	var containerManager *container.Manager
	var containers session.ContainerManager
	var coderRunner agents.CommandRunner
	if cfg.Docker.Enabled {
		manager, err := container.NewManager(ctx, cfg.Docker.Image, cfg.Docker.ContainerName, cfg.Docker.WorkDir)
		if err != nil {
			slog.Error("Failed to initialize container manager", "error", err)
			os.Exit(1)
		}
		defer manager.Close()
		containerManager = manager
		containers = manager
		coderRunner = manager
		slog.Info("Container manager initialized", "image", cfg.Docker.Image)
	}

	bus := events.NewBus()
	connManager := events.NewConnectionManager(bus, cfg.Server.WSWriteTimeout.Std())

	runner, err := session.NewRunner(session.RunnerOptions{
		Client:     client,
		Model:      cfg.Model.Model,
		Bus:        bus,
		Agents:     teamFactory(client, coderRunner),
		Store:      store,
		Memory:     planMemory,
		Containers: containers,
	})
	if err != nil {
		slog.Error("Failed to create session runner", "error", err)
		os.Exit(1)
	}

	manager := session.NewManager(cfg.Session)
	pool := queue.NewPool(runner, cfg.Queue)

	server := api.NewServer(manager, pool, bus, connManager, cfg.Server.AllowedWSOrigins)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: server.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	slog.Info("Helmsman started", "workers", cfg.Queue.Workers)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		slog.Info("Shutdown signal received", "signal", sig)
	case err := <-errCh:
		slog.Error("Server error triggered shutdown", "error", err)
	}

	// Stop accepting work, then cancel running sessions.
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}
	pool.Stop()

	if containerManager != nil {
		if err := containerManager.Stop(shutdownCtx); err != nil {
			slog.Warn("Failed to stop code container", "error", err)
		}
	}

	slog.Info("Shutdown complete")
}

// teamFactory builds the default team for each session: a web research
// persona, a writing persona, the coder, and the user proxy.
func teamFactory(client llm.Client, runner agents.CommandRunner) session.AgentFactory {
	return func(_ context.Context, _ *session.Session) ([]team.Agent, error) {
		return []team.Agent{
			agents.NewLLMAgent("web_surfer",
				"Researches information, summarizes sources, and answers questions that require looking things up.",
				"You are a diligent research assistant. Answer with verifiable facts and note uncertainty explicitly.",
				client),
			agents.NewLLMAgent("writer",
				"Drafts, edits, and restructures prose: reports, emails, documentation.",
				"You are a precise technical writer. Produce clear, well-structured text in the requested format.",
				client),
			agents.NewCoderAgent(client, runner),
			agents.NewUserProxy(),
		}, nil
	}
}
