package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"codeberg.org/snonux/babelcast/internal/cli"
	"codeberg.org/snonux/babelcast/internal/logging"
	"codeberg.org/snonux/babelcast/internal/processor"
)

func main() {
	// A missing .env is fine; real environment variables still apply
	_ = godotenv.Load()

	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run functions
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return withProcessor(cmd, flags, func(ctx context.Context, p *processor.Processor) error {
			if flags.HasInput() {
				return p.ProcessInput(ctx)
			}
			// No input provided - launch GUI mode by default
			return p.RunGUIMode()
		})
	}

	pairsCmd := cli.CreatePairsCommand()
	pairsCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return withProcessor(cmd, flags, func(ctx context.Context, p *processor.Processor) error {
			p.ListPairs()
			return nil
		})
	}

	modelsCmd := cli.CreateModelsCommand(flags)
	modelsCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return withProcessor(cmd, flags, func(ctx context.Context, p *processor.Processor) error {
			return p.ListModels(ctx, flags.Check)
		})
	}

	serveCmd := cli.CreateServeCommand(flags)
	serveCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return withProcessor(cmd, flags, func(ctx context.Context, p *processor.Processor) error {
			return p.Serve(ctx)
		})
	}

	rootCmd.AddCommand(pairsCmd, modelsCmd, serveCmd)

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func withProcessor(cmd *cobra.Command, flags *cli.Flags, run func(context.Context, *processor.Processor) error) error {
	config := cli.LoadConfig()

	log, err := logging.New(config.LogLevel, config.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	p, err := processor.NewProcessor(flags, config, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Debug("starting", zap.String("command", cmd.Name()))
	return run(ctx, p)
}
