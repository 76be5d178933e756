// riskdesk — risk-management dashboard state core.
// Usage:
//
//	riskdesk serve [-config riskdesk.yaml]   run the API server
//	riskdesk chat  [-config riskdesk.yaml]   interactive assistant console
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/quantora/riskdesk/pkg/api"
	"github.com/quantora/riskdesk/pkg/app"
	"github.com/quantora/riskdesk/pkg/cli"
	"github.com/quantora/riskdesk/pkg/config"
	"github.com/quantora/riskdesk/pkg/infrastructure/persistence"
	"github.com/quantora/riskdesk/pkg/logger"
	"github.com/quantora/riskdesk/pkg/providers"
)

func main() {
	command, args := splitArgs(os.Args[1:])

	fs := flag.NewFlagSet(command, flag.ExitOnError)
	configPath := fs.String("config", "", "path to riskdesk.yaml (optional)")
	_ = fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "riskdesk: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.LogLevel)

	container, err := buildContainer(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "riskdesk: %v\n", err)
		os.Exit(1)
	}
	defer container.Close()

	switch command {
	case "serve":
		runServe(cfg, container)
	case "chat":
		if err := cli.NewConsole(container).Run(); err != nil {
			fmt.Fprintf(os.Stderr, "riskdesk: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "riskdesk: unknown command %q (expected serve or chat)\n", command)
		os.Exit(2)
	}
}

// splitArgs separates the optional leading subcommand from the flag
// arguments. Anything that is not a non-empty bare word (flags, empty
// strings) belongs to the default serve command.
func splitArgs(args []string) (string, []string) {
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		return args[0], args[1:]
	}
	return "serve", args
}

func buildContainer(cfg *config.Config) (*app.Container, error) {
	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	var responder providers.Responder
	switch cfg.Chat.Provider {
	case "anthropic":
		responder = providers.NewAnthropicResponder(cfg.Chat.APIKey, cfg.Chat.Model)
	case "openai":
		responder = providers.NewOpenAIResponder(cfg.Chat.APIKey, cfg.Chat.Model, cfg.Chat.BaseURL)
	default:
		responder = providers.NewCannedResponder()
	}

	delay := time.Duration(cfg.Chat.ResponseDelayMS) * time.Millisecond
	return app.NewContainer(store, responder, nil, nil, delay, nil), nil
}

func openStore(cfg *config.Config) (persistence.Store, error) {
	switch cfg.Storage.Backend {
	case "sqlite":
		path := cfg.Storage.Path
		if filepath.Ext(path) == "" {
			if err := os.MkdirAll(path, 0o755); err != nil {
				return nil, err
			}
			path = filepath.Join(path, "riskdesk.db")
		}
		return persistence.NewSQLiteStore(path)
	default:
		return persistence.NewFileStore(cfg.Storage.Path)
	}
}

func runServe(cfg *config.Config, container *app.Container) {
	if cfg.Simulate.Enabled {
		if cfg.Simulate.Cron != "" {
			if err := container.Notifications.StartSimulationCron(cfg.Simulate.Cron); err != nil {
				fmt.Fprintf(os.Stderr, "riskdesk: %v\n", err)
				os.Exit(1)
			}
		} else {
			container.Notifications.StartSimulation(time.Duration(cfg.Simulate.IntervalMS) * time.Millisecond)
		}
	}

	server, err := api.NewServer(cfg.HTTP.Addr, cfg.HTTP.APIKey, container)
	if err != nil {
		fmt.Fprintf(os.Stderr, "riskdesk: %v\n", err)
		os.Exit(1)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.InfoCF("main", "Shutting down", map[string]interface{}{"signal": sig.String()})
	case err := <-errCh:
		if err != nil {
			fmt.Fprintf(os.Stderr, "riskdesk: %v\n", err)
			os.Exit(1)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.ErrorCF("main", "Shutdown error", map[string]interface{}{"error": err.Error()})
	}
}
