package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/raushankrgupta/style-auditor/browser"
	"github.com/raushankrgupta/style-auditor/models"
	"gopkg.in/yaml.v3"
)

// Config holds everything a run needs. Values come from defaults, then the
// environment (and .env), then the optional YAML run file; command line
// flags are applied last by the caller.
type Config struct {
	TargetURL          string        `yaml:"target_url"`
	OutputDir          string        `yaml:"output_dir"`
	Engine             string        `yaml:"engine"`
	Headless           bool          `yaml:"headless"`
	Concurrency        int           `yaml:"concurrency"`
	RunTimeout         time.Duration `yaml:"run_timeout"`
	NavTimeout         time.Duration `yaml:"nav_timeout"`
	IdleTimeout        time.Duration `yaml:"idle_timeout"`
	SettleDelay        time.Duration `yaml:"settle_delay"`
	SamplesPerSelector int           `yaml:"samples_per_selector"`
	Screenshots        bool          `yaml:"screenshots"`
	CaptureComponents  bool          `yaml:"capture_components"`

	ChromeDriverPath string `yaml:"chromedriver_path"`
	SeleniumBasePort int    `yaml:"selenium_base_port"`

	Pages     []models.PageDescriptor `yaml:"pages"`
	Selectors []string                `yaml:"selectors"`

	AWSRegion       string `yaml:"aws_region"`
	AWSBucketName   string `yaml:"aws_bucket_name"`
	AWSS3Prefix     string `yaml:"aws_s3_prefix"`
	MongoURI        string `yaml:"mongo_uri"`
	MongoDatabase   string `yaml:"mongo_database"`
	MongoCollection string `yaml:"mongo_collection"`
	SendGridAPIKey  string `yaml:"-"`
	ReportEmailTo   string `yaml:"report_email_to"`
	ReportEmailFrom string `yaml:"report_email_from"`

	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		OutputDir:          "style-audit-output",
		Engine:             browser.EngineChromeDP,
		Headless:           true,
		Concurrency:        1,
		RunTimeout:         10 * time.Minute,
		NavTimeout:         60 * time.Second,
		IdleTimeout:        30 * time.Second,
		SettleDelay:        2 * time.Second,
		SamplesPerSelector: 3,
		Screenshots:        true,
		ChromeDriverPath:   "/usr/local/bin/chromedriver",
		SeleniumBasePort:   4444,
		AWSRegion:          "us-east-1",
		AWSS3Prefix:        "style-audits",
		MongoDatabase:      "style_auditor",
		MongoCollection:    "runs",
		LogLevel:           "info",
	}
}

// Load reads .env if present, applies the environment and then the YAML run
// file at path (skipped when path is empty).
func Load(path string) (*Config, error) {
	// A missing .env is normal; the process environment is used as is.
	_ = godotenv.Load()

	cfg := Default()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = n
	}
	flag := func(key string, dst *bool) {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			return
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = b
	}
	dur := func(key string, dst *time.Duration) {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			return
		}
		d, err := ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = d
	}

	str("AUDIT_TARGET_URL", &c.TargetURL)
	str("AUDIT_OUTPUT_DIR", &c.OutputDir)
	str("AUDIT_ENGINE", &c.Engine)
	flag("AUDIT_HEADLESS", &c.Headless)
	num("AUDIT_CONCURRENCY", &c.Concurrency)
	dur("AUDIT_RUN_TIMEOUT", &c.RunTimeout)
	dur("AUDIT_NAV_TIMEOUT", &c.NavTimeout)
	dur("AUDIT_IDLE_TIMEOUT", &c.IdleTimeout)
	dur("AUDIT_SETTLE_DELAY", &c.SettleDelay)
	num("AUDIT_SAMPLES_PER_SELECTOR", &c.SamplesPerSelector)
	flag("AUDIT_SCREENSHOTS", &c.Screenshots)
	flag("AUDIT_CAPTURE_COMPONENTS", &c.CaptureComponents)
	str("CHROMEDRIVER_PATH", &c.ChromeDriverPath)
	num("SELENIUM_BASE_PORT", &c.SeleniumBasePort)
	str("AWS_REGION", &c.AWSRegion)
	str("AWS_BUCKET_NAME", &c.AWSBucketName)
	str("AWS_S3_PREFIX", &c.AWSS3Prefix)
	str("MONGO_URI", &c.MongoURI)
	str("MONGO_DATABASE", &c.MongoDatabase)
	str("MONGO_COLLECTION", &c.MongoCollection)
	str("SENDGRID_API_KEY", &c.SendGridAPIKey)
	str("REPORT_EMAIL_TO", &c.ReportEmailTo)
	str("REPORT_EMAIL_FROM", &c.ReportEmailFrom)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FILE", &c.LogFile)

	return errors.Join(errs...)
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read run file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse run file %s: %w", path, err)
	}
	return nil
}

// ParseDuration accepts Go duration strings ("90s", "2m") and bare integers,
// which are read as seconds.
func ParseDuration(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(v)
}

// Validate reports every problem with the configuration.
func (c *Config) Validate() error {
	var errs []error

	if c.TargetURL == "" {
		errs = append(errs, errors.New("target url is required"))
	} else if u, err := url.Parse(c.TargetURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("target url %q must be an absolute http(s) url", c.TargetURL))
	}
	if !browser.ValidEngine(c.Engine) {
		errs = append(errs, fmt.Errorf("unknown engine %q", c.Engine))
	}
	if c.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency))
	}
	for name, d := range map[string]time.Duration{
		"run timeout":  c.RunTimeout,
		"nav timeout":  c.NavTimeout,
		"idle timeout": c.IdleTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}
	if c.SettleDelay < 0 {
		errs = append(errs, fmt.Errorf("settle delay must not be negative, got %s", c.SettleDelay))
	}
	if c.SamplesPerSelector < 1 || c.SamplesPerSelector > 3 {
		errs = append(errs, fmt.Errorf("samples per selector must be between 1 and 3, got %d", c.SamplesPerSelector))
	}
	if c.OutputDir == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	seen := make(map[string]bool)
	for i, p := range c.Pages {
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("page %d has no name", i))
			continue
		}
		if p.Name == "responsive" {
			errs = append(errs, errors.New(`page name "responsive" is reserved`))
		}
		if seen[p.Name] {
			errs = append(errs, fmt.Errorf("duplicate page name %q", p.Name))
		}
		seen[p.Name] = true
		if p.URL != "" && p.LinkSelector != "" {
			errs = append(errs, fmt.Errorf("page %q sets both url and link_selector", p.Name))
		}
	}
	for _, s := range c.Selectors {
		if strings.TrimSpace(s) == "" {
			errs = append(errs, errors.New("selector list contains an empty selector"))
			break
		}
	}

	return errors.Join(errs...)
}
