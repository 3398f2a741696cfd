package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/raushankrgupta/style-auditor/config"
	"github.com/raushankrgupta/style-auditor/sampler"
	"github.com/raushankrgupta/style-auditor/utils"
	"github.com/spf13/cobra"
)

type sampleOutput struct {
	Selector string            `json:"selector"`
	Ordinal  int               `json:"ordinal"`
	Element  string            `json:"element"`
	Styles   map[string]string `json:"styles"`
}

func newSampleCommand(open openerFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample <url> <selector>",
		Short: "Print the computed styles of the first matches of a selector",
		Example: `  style-audit sample https://www.example.com h1
  style-audit sample https://www.example.com '[class*="button"]' --limit 1`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return sampleCommand(cmd, open, args[0], args[1])
		},
	}
	cmd.Flags().String("engine", "", "Browser engine: chromedp, selenium or auto")
	cmd.Flags().Int("limit", sampler.MaxSamplesPerSelector, "Number of matches to sample (1-3)")
	return cmd
}

func sampleCommand(cmd *cobra.Command, open openerFunc, url, selector string) error {
	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if engine, _ := cmd.Flags().GetString("engine"); engine != "" {
		cfg.Engine = engine
	}
	cfg.TargetURL = url
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	limit, _ := cmd.Flags().GetInt("limit")

	logger, err := utils.NewLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.RunTimeout)
	defer cancel()

	opener, err := open(cfg, logger)
	if err != nil {
		return err
	}
	sess, err := opener.Open(ctx)
	if err != nil {
		return fmt.Errorf("open browser: %w", err)
	}
	defer sess.Close()

	if err := sess.Navigate(ctx, url); err != nil {
		return err
	}
	if err := sess.WaitForNetworkIdle(ctx, cfg.IdleTimeout); err != nil {
		logger.Warn("[Sample] network idle not reached, sampling anyway")
	}

	observations, err := sampler.New(sess, logger).SampleSelector(ctx, selector, limit)
	if err != nil {
		return err
	}

	out := make([]sampleOutput, 0, len(observations))
	for _, obs := range observations {
		out = append(out, sampleOutput{
			Selector: obs.Selector,
			Ordinal:  obs.Ordinal,
			Element:  obs.ElementKey,
			Styles:   obs.Sample.Map(),
		})
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
