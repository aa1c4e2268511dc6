package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/iwvelando/decimath/internal/config"
	"github.com/iwvelando/decimath/internal/pipeline"
	"github.com/iwvelando/decimath/internal/server"
	"github.com/iwvelando/decimath/pkg/constants"
	"github.com/iwvelando/decimath/pkg/output"
	"github.com/iwvelando/decimath/pkg/validation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var config zap.Config
	switch format {
	case "console":
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	// Logs go to stderr unless a file is configured; stdout carries results.
	config.OutputPaths = []string{"stderr"}
	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		config.OutputPaths = []string{loggingConfig.OutputFile}
		config.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return config.Build()
}

// loadConfiguration reads configPath, falling back to defaults when the
// default file is absent. An explicitly named file must exist.
func loadConfiguration(configPath string, explicit bool) (*config.Configuration, error) {
	conf, err := config.LoadConfiguration(configPath)
	if err == nil {
		return conf, nil
	}
	if !explicit {
		if _, statErr := os.Stat(configPath); errors.Is(statErr, fs.ErrNotExist) {
			return config.Default(), nil
		}
	}
	return nil, err
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage:\n")
	fmt.Fprintf(out, "  decimath [flags] <value> [step ...]   evaluate one pipeline\n")
	fmt.Fprintf(out, "  decimath [flags] -batch <file>        evaluate a YAML batch of pipelines\n")
	fmt.Fprintf(out, "  decimath [flags] serve                serve the HTTP API\n\n")
	fmt.Fprintf(out, "Steps are written name or name:arg, e.g. add-percentage:10 divide:3 round:1.\n\n")
	flag.PrintDefaults()
}

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	batchFile := flag.String("batch", "", "path to a YAML batch of pipelines")
	serverConfig := flag.String("server-config", "", "optional server configuration file overriding the server section")
	maxBodySize := flag.String("max-body-size", "", "request body limit override for serve, e.g. 256K or 1M")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	explicitConfig := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicitConfig = true
		}
	})

	conf, err := loadConfiguration(*configLocation, explicitConfig)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	mathConfig, err := conf.ScaledConfig()
	if err != nil {
		logger.Fatal("invalid math configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	evaluator := pipeline.NewEvaluator(logger, mathConfig).WithLimits(pipelineLimits(conf))

	args := flag.Args()
	if len(args) == 1 && args[0] == "serve" {
		if err := serve(logger, conf, evaluator, *serverConfig, *maxBodySize); err != nil {
			logger.Fatal("server failed",
				zap.String("op", "main.serve"),
				zap.Error(err),
			)
		}
		return
	}

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	var defs []pipeline.Definition
	switch {
	case *batchFile != "":
		if len(args) > 0 {
			logger.Fatal("-batch cannot be combined with a command line pipeline",
				zap.String("op", "main"),
			)
		}
		defs, err = pipeline.LoadBatch(*batchFile)
		if err != nil {
			logger.Fatal("failed to load batch",
				zap.String("op", "main"),
				zap.String("batch", *batchFile),
				zap.Error(err),
			)
		}
	default:
		def, err := pipeline.FromArgs(args)
		if err != nil {
			flag.Usage()
			os.Exit(2)
		}
		defs = []pipeline.Definition{def}
	}

	results, err := evaluator.EvaluateAll(defs)
	if err != nil {
		logger.Fatal("failed to evaluate pipeline",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	summaries := make([]pipeline.Summary, 0, len(results))
	for _, result := range results {
		summary, err := result.Summarize()
		if err != nil {
			logger.Fatal("failed to render result",
				zap.String("op", "main"),
				zap.String("pipeline", result.Name),
				zap.Error(err),
			)
		}
		summaries = append(summaries, summary)
	}

	switch outputFormat {
	case constants.OutputFormatPretty:
		err = output.PrettyFormat(os.Stdout, summaries)
	case constants.OutputFormatCSV:
		err = output.CsvFormat(os.Stdout, summaries)
	case constants.OutputFormatJSON:
		err = output.JSONFormat(os.Stdout, summaries)
	}
	if err != nil {
		logger.Fatal("failed to write output",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}

// pipelineLimits converts the limits section of the configuration.
func pipelineLimits(conf *config.Configuration) pipeline.Limits {
	return pipeline.Limits{
		MaxScale:    conf.Limits.MaxScale,
		MaxExponent: conf.Limits.MaxExponent,
		MaxDigits:   conf.Limits.MaxDigits,
	}
}

// serverConfiguration resolves the server settings: the server section of
// conf, replaced by serverConfigPath when given, with the body limit taken
// from maxBodySize when it is set.
func serverConfiguration(conf *config.Configuration, serverConfigPath, maxBodySize string) (*server.Config, error) {
	cfg, err := server.FromConfiguration(conf)
	if err != nil {
		return nil, err
	}
	if serverConfigPath != "" {
		if cfg, err = server.LoadConfig(serverConfigPath); err != nil {
			return nil, err
		}
	}
	if maxBodySize != "" {
		size, err := server.ParseSize(maxBodySize)
		if err != nil {
			return nil, fmt.Errorf("invalid -max-body-size: %w", err)
		}
		if size <= 0 {
			return nil, fmt.Errorf("invalid -max-body-size: %s is not positive", maxBodySize)
		}
		cfg.SetBodySizeBytes(size)
	}
	return cfg, nil
}

func serve(logger *zap.Logger, conf *config.Configuration, evaluator *pipeline.Evaluator, serverConfigPath, maxBodySize string) error {
	cfg, err := serverConfiguration(conf, serverConfigPath, maxBodySize)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           server.NewHandler(logger, evaluator, cfg.BodySizeBytes(), version),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("op", "main.serve"),
			zap.String("address", cfg.Address),
			zap.Int64("maxBodySize", cfg.BodySizeBytes()),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down",
		zap.String("op", "main.serve"),
	)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
