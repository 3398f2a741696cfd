// Command probe samples the full selector catalog on each URL given on the
// command line and prints what it found. Useful for checking a site before
// a full audit.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/raushankrgupta/style-auditor/browser"
	"github.com/raushankrgupta/style-auditor/sampler"
	"github.com/raushankrgupta/style-auditor/utils"
	"go.uber.org/zap"
)

type probeResult struct {
	Selector string              `json:"selector"`
	Matches  []map[string]string `json:"matches"`
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: probe <url> [url...]")
		os.Exit(2)
	}

	logger, err := utils.NewLogger("warn", "")
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	factory, err := browser.NewFactory(browser.Options{
		Engine:            browser.EngineChromeDP,
		Headless:          true,
		NavigationTimeout: 60 * time.Second,
		Logger:            logger,
	})
	if err != nil {
		log.Fatalf("Failed to create browser factory: %v", err)
	}

	for _, u := range os.Args[1:] {
		fmt.Printf("Probing URL: %s\n", u)
		results, err := probe(factory, logger, u)
		if err != nil {
			log.Printf("Failed to probe %s: %v\n", u, err)
			continue
		}

		b, _ := json.MarshalIndent(results, "", "  ")
		fmt.Printf("Styles: %s\n", string(b))
		fmt.Println("--------------------------------------------------")
	}
}

func probe(factory *browser.Factory, logger *zap.Logger, url string) ([]probeResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	sess, err := factory.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	if err := sess.Navigate(ctx, url); err != nil {
		return nil, err
	}
	_ = sess.WaitForNetworkIdle(ctx, 30*time.Second)

	smp := sampler.New(sess, logger)
	var results []probeResult
	for _, selector := range sampler.DefaultCatalog {
		observations, err := smp.SampleSelector(ctx, selector, sampler.MaxSamplesPerSelector)
		if err != nil {
			return results, err
		}
		if len(observations) == 0 {
			continue
		}
		r := probeResult{Selector: selector}
		for _, obs := range observations {
			r.Matches = append(r.Matches, obs.Sample.Map())
		}
		results = append(results, r)
	}
	return results, nil
}
