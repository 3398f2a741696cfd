// Package cli wires configuration, the browser engines, the analysis runner
// and the storage sinks into the style-audit command.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/raushankrgupta/style-auditor/analysis"
	"github.com/raushankrgupta/style-auditor/browser"
	"github.com/raushankrgupta/style-auditor/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// openerFunc returns the session source for a run.
type openerFunc func(cfg *config.Config, logger *zap.Logger) (analysis.Opener, error)

func browserOpener(cfg *config.Config, logger *zap.Logger) (analysis.Opener, error) {
	factory, err := browser.NewFactory(browserOptions(cfg, logger))
	if err != nil {
		return nil, err
	}
	return factory, nil
}

// Execute runs the command line and returns the process exit code. An
// interrupt cancels the run; the partial report is still written.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitCode(err)
	}
	return 0
}

// NewRootCommand creates the style-audit command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(browserOpener)
}

func newRootCommand(open openerFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "style-audit",
		Short: "Reverse-engineer a website's design system from its rendered styles",
		Long: `style-audit drives a headless browser against a live site, samples the
computed styles of a fixed selector catalog across the home, listings and
detail pages and three device viewports, and writes a deduplicated style
report (JSON, Markdown and HTML) plus screenshots.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newRunCommand(open))
	cmd.AddCommand(newSampleCommand(open))
	return cmd
}

func browserOptions(cfg *config.Config, logger *zap.Logger) browser.Options {
	return browser.Options{
		Engine:            cfg.Engine,
		Headless:          cfg.Headless,
		NavigationTimeout: cfg.NavTimeout,
		ChromeDriverPath:  cfg.ChromeDriverPath,
		SeleniumBasePort:  cfg.SeleniumBasePort,
		Logger:            logger,
	}
}
