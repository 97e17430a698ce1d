package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dshills/codeoverview/internal/config"
	"github.com/dshills/codeoverview/internal/di"
	"github.com/dshills/codeoverview/internal/providers"
	"github.com/dshills/codeoverview/internal/worker"
)

// Serve flags
var (
	flagGenerateAddr string
	flagChatAddr     string
	flagProvider     string
	flagModel        string
	flagLogLevel     string
	flagLogFormat    string
)

var serverRootCmd = &cobra.Command{
	Use:   "codeoverview-server",
	Short: "Generation and chat endpoints for code overviews",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the generation and chat endpoints until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildServeOverrides())
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg)
	},
}

// RunServer executes the server command tree and returns an exit code.
func RunServer() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serverRootCmd.ExecuteContext(ctx); err != nil {
		return ExitFailure
	}
	return ExitSuccess
}

func buildServeOverrides() map[string]string {
	m := make(map[string]string)
	if flagGenerateAddr != "" {
		m["server.generateAddr"] = flagGenerateAddr
	}
	if flagChatAddr != "" {
		m["server.chatAddr"] = flagChatAddr
	}
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagLogLevel != "" {
		m["log.level"] = flagLogLevel
	}
	if flagLogFormat != "" {
		m["log.format"] = flagLogFormat
	}
	return m
}

// serve runs both endpoints until ctx is done. A missing model or store does
// not stop the server; the endpoints answer with a configuration error.
func serve(ctx context.Context, cfg config.Config) error {
	return di.NewRuntime(cfg).Invoke(func(i di.Injector) error {
		cfg, err := di.ResolveConfig(i)
		if err != nil {
			return err
		}
		logger, err := di.ResolveLogger(i)
		if err != nil {
			return err
		}

		var gen providers.Generator
		if g, err := di.ResolveGenerator(i); err != nil {
			logger.WithError(err).Warn("generation model unavailable")
		} else {
			gen = g
		}

		var st worker.Store
		if s, err := di.ResolveStore(i); err != nil {
			logger.WithError(err).Warn("document store unavailable")
		} else {
			st = s
		}

		opts := []worker.Option{
			worker.WithLogger(logger),
			worker.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
		}
		generate := worker.NewServer("generate", cfg.Server.GenerateAddr,
			worker.NewGenerateHandler(gen, st, opts...), logger)
		chat := worker.NewServer("chat", cfg.Server.ChatAddr,
			worker.NewChatHandler(gen, st, opts...), logger)

		logger.WithFields(logrus.Fields{
			"provider":   cfg.Provider,
			"model":      cfg.Model,
			"collection": cfg.Store.Collection,
		}).Info("starting endpoints")
		return worker.Run(ctx, generate, chat)
	})
}

func init() {
	serveCmd.Flags().StringVar(&flagGenerateAddr, "generate-addr", "", "Listen address of the generation endpoint")
	serveCmd.Flags().StringVar(&flagChatAddr, "chat-addr", "", "Listen address of the chat endpoint")
	serveCmd.Flags().StringVar(&flagProvider, "provider", "", "Generation provider (workersai, openai, anthropic, gemini, ollama)")
	serveCmd.Flags().StringVar(&flagModel, "model", "", "Model name")
	serveCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	serveCmd.Flags().StringVar(&flagLogFormat, "log-format", "", "Log format (text, json)")

	serverRootCmd.AddCommand(serveCmd)
	serverRootCmd.AddCommand(newVersionCmd("codeoverview-server"))
}
