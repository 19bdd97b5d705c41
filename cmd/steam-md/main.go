package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"

	"github.com/kapu/steam-profile-md/internal/app"
	"github.com/kapu/steam-profile-md/internal/config"
	"github.com/kapu/steam-profile-md/internal/util"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	// Error ignored: maxprocs.Set only fails on an invalid GOMAXPROCS value,
	// in which case the runtime default stays in place.
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintf(stderr, "steam-md: %v\n", err)
		return exitCodeFor(err)
	}
	if opts.showVersion {
		fmt.Fprintf(stdout, "steam-md %s\n", Version)
		return ExitSuccess
	}

	cfg, err := config.Load(opts.configFile, opts.overrides)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return exitCodeFor(err)
	}

	logger, err := util.NewLogger(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize logger: %v\n", err)
		return ExitGeneral
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("steam-md starting",
		zap.String("version", Version),
		zap.String("identity", cfg.Identity()),
		zap.String("log_level", cfg.Logging.Level),
	)

	buildCtx, buildCancel := context.WithTimeout(ctx, 30*time.Second)
	container, err := app.Build(buildCtx, cfg, logger)
	buildCancel()
	if err != nil {
		logger.Error("Failed to assemble services", zap.Error(err))
		return exitCodeFor(err)
	}
	defer container.Close()

	pipeline, err := container.NewPipeline()
	if err != nil {
		logger.Error("Failed to initialize pipeline", zap.Error(err))
		return ExitGeneral
	}

	result, err := pipeline.Run(ctx)
	if err != nil {
		logger.Error("Export failed", zap.Error(err))
		return exitCodeFor(err)
	}

	fmt.Fprintln(stdout, result.MarkdownPath)
	if result.HTMLPath != "" {
		fmt.Fprintln(stdout, result.HTMLPath)
	}

	return ExitSuccess
}
