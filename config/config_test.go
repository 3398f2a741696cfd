package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/raushankrgupta/style-auditor/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUDIT_TARGET_URL", "")
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "chromedp", cfg.Engine)
	assert.Equal(t, 1, cfg.Concurrency)
	assert.Equal(t, 2*time.Second, cfg.SettleDelay)
	assert.Equal(t, 3, cfg.SamplesPerSelector)
	assert.True(t, cfg.Screenshots)
	assert.False(t, cfg.CaptureComponents)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("AUDIT_TARGET_URL", "https://example.com")
	t.Setenv("AUDIT_ENGINE", "selenium")
	t.Setenv("AUDIT_CONCURRENCY", "3")
	t.Setenv("AUDIT_RUN_TIMEOUT", "90")
	t.Setenv("AUDIT_IDLE_TIMEOUT", "5s")
	t.Setenv("AUDIT_SCREENSHOTS", "false")
	t.Setenv("AWS_BUCKET_NAME", "audits")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", cfg.TargetURL)
	assert.Equal(t, "selenium", cfg.Engine)
	assert.Equal(t, 3, cfg.Concurrency)
	assert.Equal(t, 90*time.Second, cfg.RunTimeout)
	assert.Equal(t, 5*time.Second, cfg.IdleTimeout)
	assert.False(t, cfg.Screenshots)
	assert.Equal(t, "audits", cfg.AWSBucketName)
}

func TestLoadRejectsMalformedEnvironment(t *testing.T) {
	t.Setenv("AUDIT_CONCURRENCY", "many")
	t.Setenv("AUDIT_HEADLESS", "perhaps")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUDIT_CONCURRENCY")
	assert.Contains(t, err.Error(), "AUDIT_HEADLESS")
}

func TestLoadRunFile(t *testing.T) {
	t.Setenv("AUDIT_TARGET_URL", "https://env.example.com")
	t.Setenv("AUDIT_CONCURRENCY", "2")

	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
target_url: https://file.example.com
settle_delay: 500ms
selectors: ["body", "h1"]
pages:
  - name: home
  - name: pricing
    url: /pricing
    screenshot_selector: section
    screenshot_limit: 2
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://file.example.com", cfg.TargetURL)
	assert.Equal(t, 2, cfg.Concurrency)
	assert.Equal(t, 500*time.Millisecond, cfg.SettleDelay)
	assert.Equal(t, []string{"body", "h1"}, cfg.Selectors)
	require.Len(t, cfg.Pages, 2)
	assert.Equal(t, "/pricing", cfg.Pages[1].URL)
	assert.Equal(t, 2, cfg.Pages[1].ScreenshotLimit)
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingRunFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.TargetURL = "https://example.com"
	require.NoError(t, valid.Validate())

	cases := map[string]func(c *Config){
		"missing target":   func(c *Config) { c.TargetURL = "" },
		"relative target":  func(c *Config) { c.TargetURL = "/home" },
		"ftp target":       func(c *Config) { c.TargetURL = "ftp://example.com" },
		"unknown engine":   func(c *Config) { c.Engine = "webkit" },
		"zero concurrency": func(c *Config) { c.Concurrency = 0 },
		"zero run timeout": func(c *Config) { c.RunTimeout = 0 },
		"negative settle":  func(c *Config) { c.SettleDelay = -time.Second },
		"four samples":     func(c *Config) { c.SamplesPerSelector = 4 },
		"zero samples":     func(c *Config) { c.SamplesPerSelector = 0 },
		"reserved page":    func(c *Config) { c.Pages = []models.PageDescriptor{{Name: "responsive"}} },
		"duplicate page":   func(c *Config) { c.Pages = []models.PageDescriptor{{Name: "home"}, {Name: "home"}} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := *valid
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
