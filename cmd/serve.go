/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/josephgoksu/agentwing/internal/agents"
	"github.com/josephgoksu/agentwing/internal/engine"
	"github.com/josephgoksu/agentwing/internal/llm"
	"github.com/josephgoksu/agentwing/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the coordinator API and the agent team",
	Long: `Start the AgentWing coordinator:
  - HTTP API for goal intake and inspection
  - Planner, architect, coder, and memory agents
  - Flat-file memory store for tasks, messages, and shared context

Examples:
  agentwing serve                       # Start on the configured port
  agentwing serve --port 9000           # Use custom port
  agentwing serve --provider ollama     # Plan with a local model`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "API server port (default from config)")
	serveCmd.Flags().String("provider", "", "LLM provider (openai, ollama, anthropic, gemini)")
	serveCmd.Flags().String("model", "", "Model to use")
	serveCmd.Flags().String("api-key", "", "LLM API key (or set provider-specific env var)")
	serveCmd.Flags().String("ollama-url", llm.DefaultOllamaURL, "Ollama server URL")
	serveCmd.Flags().Bool("multi-pass", false, "Repeat execution passes until no step dispatches")

	_ = viper.BindPFlag("engine.multiPass", serveCmd.Flags().Lookup("multi-pass"))
}

func runServe(cmd *cobra.Command, args []string) error {
	config := GetConfig()
	setupLogging(config.Verbose)

	st, err := GetStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	llmCfg, err := getLLMConfig(cmd)
	if err != nil {
		return fmt.Errorf("configure LLM: %w", err)
	}

	chatModel, err := llm.NewChatModel(cmd.Context(), llmCfg)
	if err != nil {
		return fmt.Errorf("create chat model: %w", err)
	}

	// Assemble the agent team. The registry's fallback role catches steps
	// assigned to roles the planner invents.
	planner := agents.NewPlannerAgent(chatModel)
	registry := agents.NewRegistry(agents.FallbackRole)
	registry.Register(planner)
	registry.Register(agents.NewArchitectAgent(chatModel))
	registry.Register(agents.NewCoderAgent(chatModel))
	registry.Register(agents.NewMemoryAgent(st))

	// Persist the team roster so agent records survive restarts with
	// stable ids.
	if err := st.ReplaceAgents(registry.Infos()); err != nil {
		return fmt.Errorf("register agents: %w", err)
	}

	eng := engine.New(st, registry, planner, engine.Config{
		MultiPass: config.Engine.MultiPass,
	})

	port := servePort
	if port == 0 {
		port = config.Server.Port
	}

	srv := server.New(port, st, registry, eng, GetVersion(), config.Server.AllowedOrigins)

	var wg sync.WaitGroup
	errChan := make(chan error, 1)
	srv.Start(&wg, errChan)

	slog.Info("coordinator running",
		"port", port,
		"provider", llmCfg.Provider,
		"model", llmCfg.Model,
		"agents", registry.Roles(),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		slog.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown API server: %w", err)
	}

	wg.Wait()
	return nil
}

// setupLogging installs the process-wide logger. Verbose mode lowers the
// level to debug.
func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// getLLMConfig resolves the planner/worker model settings from flags,
// config, and provider-specific environment variables, in that order.
func getLLMConfig(cmd *cobra.Command) (llm.Config, error) {
	config := GetConfig()

	provider, err := llm.ValidateProvider(flagOrConfig(cmd, "provider", config.LLM.Provider))
	if err != nil {
		return llm.Config{}, err
	}

	model := flagOrConfig(cmd, "model", config.LLM.ModelName)
	if model == "" {
		model = llm.DefaultModelFor(provider)
	}

	apiKey := flagOrConfig(cmd, "api-key", config.LLM.APIKey)
	if apiKey == "" {
		apiKey = llm.APIKeyFromEnv(provider)
	}
	if apiKey == "" && provider != llm.ProviderOllama {
		return llm.Config{}, fmt.Errorf("no API key for provider %s: pass --api-key or set the provider's environment variable", provider)
	}

	baseURL := config.LLM.BaseURL
	if provider == llm.ProviderOllama {
		if v, _ := cmd.Flags().GetString("ollama-url"); v != "" {
			baseURL = v
		}
	}

	return llm.Config{
		Provider: provider,
		Model:    model,
		APIKey:   apiKey,
		BaseURL:  baseURL,
	}, nil
}

func flagOrConfig(cmd *cobra.Command, flag, fallback string) string {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v
	}
	return fallback
}
