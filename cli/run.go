package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/raushankrgupta/style-auditor/analysis"
	"github.com/raushankrgupta/style-auditor/config"
	"github.com/raushankrgupta/style-auditor/report"
	"github.com/raushankrgupta/style-auditor/sampler"
	"github.com/raushankrgupta/style-auditor/storage"
	"github.com/raushankrgupta/style-auditor/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRunCommand(open openerFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a full style audit against the target site",
		Long: `Run a full style audit.

Configuration is read from .env and the environment (AUDIT_* keys), then from
the optional YAML run file given with --config. Flags override both.

Examples:
  style-audit run --target https://www.example.com
  style-audit run --config audit.yaml --concurrency 3 --out ./reports
  style-audit run --target https://www.example.com --engine selenium --no-screenshots`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommand(cmd, open)
		},
	}

	cmd.Flags().String("config", "", "Path to a YAML run file")
	cmd.Flags().String("target", "", "Target site URL")
	cmd.Flags().String("out", "", "Output directory")
	cmd.Flags().String("engine", "", "Browser engine: chromedp, selenium or auto")
	cmd.Flags().Int("concurrency", 0, "Number of pages analysed at once")
	cmd.Flags().Bool("no-screenshots", false, "Skip screenshot capture")
	cmd.Flags().String("timeout", "", "Run deadline (e.g. 10m, 90s)")
	return cmd
}

func runCommand(cmd *cobra.Command, open openerFunc) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := utils.NewLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	opener, err := open(cfg, logger)
	if err != nil {
		return err
	}

	runner := analysis.NewRunner(runnerOptions(cfg), opener, logger)
	outcome, runErr := runner.Run(ctx)

	storeCtx := storeContext(ctx)
	router, err := buildRouter(storeCtx, cfg, logger)
	if err != nil {
		return err
	}
	defer router.Close(storeCtx)

	artifacts, err := buildArtifacts(outcome, report.Meta{
		Target:        cfg.TargetURL,
		ScreenshotDir: filepath.Join(cfg.OutputDir, analysis.ScreenshotDir),
	})
	if err != nil {
		return err
	}
	// The report is stored even when the run failed or was cut short.
	storeErr := router.Put(storeCtx, outcome.Manifest.RunID, artifacts)

	printSummary(cmd.OutOrStdout(), outcome.Manifest, cfg.OutputDir)

	if runErr != nil {
		return runErr
	}
	if storeErr != nil {
		return fmt.Errorf("store artifacts: %w", storeErr)
	}
	return nil
}

// storeContext keeps the values of ctx but not its cancellation, so an
// interrupted run still reaches every configured sink.
func storeContext(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}

// loadConfig reads the configuration and applies the flags that were set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("target") {
		cfg.TargetURL, _ = flags.GetString("target")
	}
	if flags.Changed("out") {
		cfg.OutputDir, _ = flags.GetString("out")
	}
	if flags.Changed("engine") {
		cfg.Engine, _ = flags.GetString("engine")
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency, _ = flags.GetInt("concurrency")
	}
	if noShots, _ := flags.GetBool("no-screenshots"); noShots {
		cfg.Screenshots = false
	}
	if flags.Changed("timeout") {
		raw, _ := flags.GetString("timeout")
		d, err := config.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", raw, err)
		}
		cfg.RunTimeout = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runnerOptions(cfg *config.Config) analysis.Options {
	return analysis.Options{
		TargetURL:          cfg.TargetURL,
		Engine:             cfg.Engine,
		Pages:              cfg.Pages,
		Catalog:            sampler.Catalog(cfg.Selectors),
		Concurrency:        cfg.Concurrency,
		RunTimeout:         cfg.RunTimeout,
		IdleTimeout:        cfg.IdleTimeout,
		SettleDelay:        cfg.SettleDelay,
		SamplesPerSelector: cfg.SamplesPerSelector,
		Screenshots:        cfg.Screenshots,
		CaptureComponents:  cfg.CaptureComponents,
	}
}

// buildRouter always includes the local sink. Remote sinks are added when
// configured; one that cannot be set up is logged and left out.
func buildRouter(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storage.Router, error) {
	local, err := storage.NewLocalSink(cfg.OutputDir)
	if err != nil {
		return nil, err
	}
	sinks := []storage.Sink{local}

	if cfg.AWSBucketName != "" {
		s3, err := storage.NewS3Sink(ctx, cfg.AWSRegion, cfg.AWSBucketName, cfg.AWSS3Prefix)
		if err != nil {
			logger.Warn("[Storage] s3 sink disabled", zap.Error(err))
		} else {
			sinks = append(sinks, s3)
		}
	}
	if cfg.MongoURI != "" {
		mongo, err := storage.NewMongoSink(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
		if err != nil {
			logger.Warn("[Storage] mongo sink disabled", zap.Error(err))
		} else {
			sinks = append(sinks, mongo)
		}
	}
	if cfg.SendGridAPIKey != "" && cfg.ReportEmailTo != "" {
		email, err := storage.NewEmailSink(cfg.SendGridAPIKey, cfg.ReportEmailFrom, cfg.ReportEmailTo, cfg.TargetURL)
		if err != nil {
			logger.Warn("[Storage] email sink disabled", zap.Error(err))
		} else {
			sinks = append(sinks, email)
		}
	}
	return storage.NewRouter(logger, sinks...), nil
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, analysis.ErrTargetUnreachable):
		return 2
	default:
		return 1
	}
}
