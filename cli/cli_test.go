package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/raushankrgupta/style-auditor/analysis"
	"github.com/raushankrgupta/style-auditor/browser/browsertest"
	"github.com/raushankrgupta/style-auditor/config"
	"github.com/raushankrgupta/style-auditor/models"
	"github.com/raushankrgupta/style-auditor/report"
	"github.com/raushankrgupta/style-auditor/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const target = "https://example.com/"

// isolate clears the environment keys the command reads.
func isolate(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"AUDIT_TARGET_URL", "AUDIT_OUTPUT_DIR", "AUDIT_ENGINE", "AUDIT_CONCURRENCY",
		"AWS_BUCKET_NAME", "MONGO_URI", "SENDGRID_API_KEY", "REPORT_EMAIL_TO", "LOG_FILE",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("AUDIT_SETTLE_DELAY", "0")
	t.Setenv("AUDIT_IDLE_TIMEOUT", "1")
	t.Setenv("LOG_LEVEL", "error")
}

func siteOpener(site *browsertest.Site) openerFunc {
	return func(*config.Config, *zap.Logger) (analysis.Opener, error) {
		return site, nil
	}
}

func testSite() *browsertest.Site {
	site := browsertest.NewSite()
	site.Pages[target] = &browsertest.Page{
		HTML: `<a href="/buy">Buy</a>`,
		Nodes: map[string][]browsertest.Node{
			"h1": {{Key: "/html/body/h1[1]", Styles: map[string]string{"fontSize": "32px", "fontFamily": "Inter"}}},
		},
	}
	site.Pages["https://example.com/buy"] = &browsertest.Page{
		Nodes: map[string][]browsertest.Node{
			"h2": {{Key: "/html/body/h2[1]", Styles: map[string]string{"fontSize": "24px"}}},
		},
	}
	return site
}

func execute(t *testing.T, site *browsertest.Site, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(siteOpener(site))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandHasSubcommands(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "style-audit", cmd.Use)

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "run")
	assert.Contains(t, names, "sample")
}

func TestRunWritesReport(t *testing.T) {
	isolate(t)
	out := t.TempDir()

	stdout, err := execute(t, testSite(), "run", "--target", target, "--out", out, "--no-screenshots")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Style Audit Summary")

	for _, name := range []string{report.StructuredName, report.SummaryName, report.HTMLName, report.ManifestName} {
		assert.FileExists(t, filepath.Join(out, name))
	}

	structured, err := os.ReadFile(filepath.Join(out, report.StructuredName))
	require.NoError(t, err)
	var result struct {
		Typography struct {
			FontSizes []string `json:"fontSizes"`
		} `json:"typography"`
	}
	require.NoError(t, json.Unmarshal(structured, &result))
	assert.Equal(t, []string{"32px", "24px"}, result.Typography.FontSizes)

	data, err := os.ReadFile(filepath.Join(out, report.ManifestName))
	require.NoError(t, err)
	var manifest models.RunManifest
	require.NoError(t, json.Unmarshal(data, &manifest))
	assert.Equal(t, models.StateDone, manifest.State)
	assert.Equal(t, utils.Digest(structured), manifest.ReportDigest)
	assert.Contains(t, manifest.Artifacts, report.HTMLName)
	assert.Contains(t, manifest.Artifacts, report.ManifestName)
}

func TestRunWritesScreenshots(t *testing.T) {
	isolate(t)
	out := t.TempDir()

	_, err := execute(t, testSite(), "run", "--target", target, "--out", out)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(out, "screenshots", "home-full.png"))
	assert.FileExists(t, filepath.Join(out, "screenshots", "responsive-mobile.png"))

	summary, err := os.ReadFile(filepath.Join(out, report.SummaryName))
	require.NoError(t, err)
	assert.Contains(t, string(summary), "## Screenshots")
}

func TestRunUnreachableTargetStillEmitsReport(t *testing.T) {
	isolate(t)
	out := t.TempDir()

	_, err := execute(t, browsertest.NewSite(), "run", "--target", target, "--out", out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, analysis.ErrTargetUnreachable))
	assert.Equal(t, 2, exitCode(err))

	assert.FileExists(t, filepath.Join(out, report.StructuredName))
	data, err := os.ReadFile(filepath.Join(out, report.ManifestName))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"state": "failed"`)
}

func TestRunRejectsInvalidConfiguration(t *testing.T) {
	isolate(t)

	_, err := execute(t, testSite(), "run", "--out", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "target url is required")
	assert.Equal(t, 1, exitCode(err))

	_, err = execute(t, testSite(), "run", "--target", target, "--timeout", "soon")
	assert.Error(t, err)

	_, err = execute(t, testSite(), "run", "--target", target, "--engine", "webkit")
	assert.Error(t, err)
}

func TestSampleCommand(t *testing.T) {
	isolate(t)

	stdout, err := execute(t, testSite(), "sample", target, "h1")
	require.NoError(t, err)

	var got []sampleOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "/html/body/h1[1]", got[0].Element)
	assert.Equal(t, "32px", got[0].Styles["fontSize"])
}

func TestSampleCommandNavigationFailure(t *testing.T) {
	isolate(t)

	_, err := execute(t, testSite(), "sample", "https://example.com/missing", "h1")
	assert.Error(t, err)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 2, exitCode(fmt.Errorf("%w: 404", analysis.ErrTargetUnreachable)))
	assert.Equal(t, 1, exitCode(fmt.Errorf("%w: no chrome", analysis.ErrBrowserLaunch)))
	assert.Equal(t, 1, exitCode(fmt.Errorf("discovery interrupted: %w", context.Canceled)))
}

func TestRunBrowserLaunchFailureExitsOne(t *testing.T) {
	isolate(t)
	out := t.TempDir()
	site := testSite()
	site.OpenErr = errors.New("chrome executable not found")

	_, err := execute(t, site, "run", "--target", target, "--out", out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, analysis.ErrBrowserLaunch))
	assert.Equal(t, 1, exitCode(err))
	assert.FileExists(t, filepath.Join(out, report.ManifestName))
}

func TestStoreContextIgnoresRunCancellation(t *testing.T) {
	type key struct{}
	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), key{}, "run"))
	cancel()

	store := storeContext(ctx)
	assert.NoError(t, store.Err())
	assert.Equal(t, "run", store.Value(key{}))

	router, err := buildRouter(store, &config.Config{OutputDir: t.TempDir()}, zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, router.Sinks(), 1)
}

func TestRunInterruptedStillWritesReport(t *testing.T) {
	isolate(t)
	out := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := newRootCommand(siteOpener(testSite()))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"run", "--target", target, "--out", out})
	err := cmd.ExecuteContext(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, exitCode(err))

	data, err := os.ReadFile(filepath.Join(out, report.ManifestName))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"state": "done"`)
	assert.Contains(t, string(data), "run interrupted")
}
