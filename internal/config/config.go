// Package config loads moviecheck configuration from CLI flags, environment
// variables and an optional .env file, validates it, and provides defaults.
//
// CLI flags choose what to run (--checks, --fixture, --headed, --base-url).
// Environment variables supply selector overrides, timeouts, the retry
// policy and artifact storage.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/samber/lo"

	"github.com/kuitang/moviecheck/internal/artifacts"
	"github.com/kuitang/moviecheck/internal/logutil"
	"github.com/kuitang/moviecheck/internal/moviepage"
	"github.com/kuitang/moviecheck/internal/obs"
	"github.com/kuitang/moviecheck/internal/retry"
	"github.com/kuitang/moviecheck/internal/selectors"
	"github.com/kuitang/moviecheck/internal/urlutil"
)

const (
	defaultBrowser      = "chromium"
	defaultListenAddr   = ":8090"
	defaultArtifactsDir = "./artifacts"
	defaultAWSRegion    = "auto"

	// FixtureResultsResponse matches the results API of the bundled fixture.
	FixtureResultsResponse = `/api/movies\?`
)

// Browsers lists the supported browser engines.
var Browsers = []string{"chromium", "firefox", "webkit"}

// Config holds all harness configuration.
type Config struct {
	// What to run (CLI flags)
	Checks     []string // empty means every built-in check
	UseFixture bool     // serve the bundled fixture and point BaseURL at it
	ListenAddr string   // fixture listen address

	// Target app
	Selectors        selectors.Config
	ResultsResponse  *regexp.Regexp
	ExpectedPageSize int // 0 disables the page-size assertion

	// Browser
	Browser        string
	Headless       bool
	DefaultTimeout time.Duration
	ProbeTimeout   time.Duration
	NextPage       retry.Policy
	LogLevel       slog.Level

	// Artifacts
	ArtifactsDir       string
	ArtifactsBucket    string // ARTIFACTS_BUCKET; empty means local directory
	ArtifactsPrefix    string // ARTIFACTS_PREFIX
	AWSEndpointS3      string // AWS_ENDPOINT_URL_S3
	AWSRegion          string // AWS_REGION
	AWSAccessKeyID     string // AWS_ACCESS_KEY_ID
	AWSSecretAccessKey string // AWS_SECRET_ACCESS_KEY
	AWSUsePathStyle    bool   // AWS_S3_USE_PATH_STYLE

	// problems collects parse failures found while reading the environment.
	problems []string
}

// ValidationError represents a configuration validation error with multiple issues.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Flags are the CLI flag values.
type Flags struct {
	Checks  string
	BaseURL string
	Headed  bool
	Fixture bool
	Addr    string
}

// ParseFlags parses args (without the program name) into Flags.
func ParseFlags(args []string) (Flags, error) {
	var f Flags
	flags := flag.NewFlagSet("moviecheck", flag.ContinueOnError)
	flags.StringVar(&f.Checks, "checks", "", "Comma-separated checks to run (default: all)")
	flags.StringVar(&f.BaseURL, "base-url", "", "App URL (overrides MOVIES_BASE_URL)")
	flags.BoolVar(&f.Headed, "headed", false, "Show the browser window (overrides HEADLESS)")
	flags.BoolVar(&f.Fixture, "fixture", false, "Run against the bundled fixture app")
	flags.StringVar(&f.Addr, "addr", "", "Fixture listen address (default :8090, overrides LISTEN_ADDR)")
	if err := flags.Parse(args); err != nil {
		return Flags{}, err
	}
	return f, nil
}

// LoadDotEnv loads the given .env files (default ".env") into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// selectorEnv maps each selector field to its environment variable.
var selectorEnv = []struct {
	key string
	set func(o *selectors.Overrides, v *string)
}{
	{"MOVIES_BASE_URL", func(o *selectors.Overrides, v *string) { o.BaseURL = v }},
	{"MOVIES_SEARCH_BUTTON_TEXT", func(o *selectors.Overrides, v *string) { o.SearchButtonText = v }},
	{"MOVIES_SEARCH_INPUT_LABEL", func(o *selectors.Overrides, v *string) { o.SearchInputLabel = v }},
	{"MOVIES_SEARCH_PLACEHOLDER", func(o *selectors.Overrides, v *string) { o.SearchPlaceholder = v }},
	{"MOVIES_LOADING_TEXT", func(o *selectors.Overrides, v *string) { o.LoadingText = v }},
	{"MOVIES_SYNOPSIS_HEADING", func(o *selectors.Overrides, v *string) { o.SynopsisHeading = v }},
	{"MOVIES_GENRES_HEADING", func(o *selectors.Overrides, v *string) { o.GenresHeading = v }},
	{"MOVIES_DARK_MODE_SYMBOL", func(o *selectors.Overrides, v *string) { o.DarkModeSymbol = v }},
	{"MOVIES_LIGHT_MODE_SYMBOL", func(o *selectors.Overrides, v *string) { o.LightModeSymbol = v }},
	{"MOVIES_PAGE2_BUTTON_TEXT", func(o *selectors.Overrides, v *string) { o.Page2ButtonText = v }},
	{"MOVIES_SORRY_HEADING", func(o *selectors.Overrides, v *string) { o.SorryHeading = v }},
	{"MOVIES_STAR_SYMBOL", func(o *selectors.Overrides, v *string) { o.StarSymbol = v }},
	{"MOVIES_MOVIE_LINK_PATTERN", func(o *selectors.Overrides, v *string) { o.MovieLinkPattern = v }},
}

// SelectorOverridesFromEnv returns overrides for every MOVIES_* variable
// that is set to a non-blank value.
func SelectorOverridesFromEnv() selectors.Overrides {
	var o selectors.Overrides
	for _, e := range selectorEnv {
		if v := strings.TrimSpace(os.Getenv(e.key)); v != "" {
			e.set(&o, &v)
		}
	}
	return o
}

// LoadConfig loads configuration from environment variables and CLI flag values.
// Flag values override their environment counterparts.
func LoadConfig(f Flags) (*Config, error) {
	cfg := &Config{}

	cfg.Checks = splitList(f.Checks)
	cfg.UseFixture = f.Fixture
	cfg.ListenAddr = getEnvOrDefault("LISTEN_ADDR", defaultListenAddr)
	if f.Addr != "" {
		cfg.ListenAddr = f.Addr
	}

	// Target app
	overrides := SelectorOverridesFromEnv()
	if f.BaseURL != "" {
		overrides.BaseURL = &f.BaseURL
	}
	if overrides.BaseURL != nil {
		if u, err := urlutil.AppURL(*overrides.BaseURL); err == nil {
			overrides.BaseURL = &u
		}
	}
	cfg.Selectors = selectors.Resolve(overrides)

	defaultPattern := moviepage.DefaultResultsResponse.String()
	if cfg.UseFixture {
		defaultPattern = FixtureResultsResponse
	}
	pattern := getEnvOrDefault("RESULTS_RESPONSE_PATTERN", defaultPattern)
	re, err := regexp.Compile(pattern)
	if err != nil {
		cfg.problems = append(cfg.problems, fmt.Sprintf("RESULTS_RESPONSE_PATTERN is not a valid regexp: %v", err))
	}
	cfg.ResultsResponse = re
	cfg.ExpectedPageSize = cfg.parseInt("EXPECTED_PAGE_SIZE", 0)

	// Browser
	cfg.Browser = strings.ToLower(getEnvOrDefault("BROWSER", defaultBrowser))
	cfg.Headless = cfg.parseBool("HEADLESS", true)
	if f.Headed {
		cfg.Headless = false
	}
	cfg.DefaultTimeout = cfg.parseDuration("DEFAULT_TIMEOUT", moviepage.DefaultTimeout)
	cfg.ProbeTimeout = cfg.parseDuration("PROBE_TIMEOUT", moviepage.DefaultProbeTimeout)
	cfg.NextPage = retry.Policy{
		Attempts: cfg.parseInt("NEXT_PAGE_ATTEMPTS", retry.DefaultPolicy.Attempts),
		Pause:    cfg.parseDuration("NEXT_PAGE_PAUSE", retry.DefaultPolicy.Pause),
	}
	cfg.LogLevel = obs.ParseLevel(os.Getenv("LOG_LEVEL"))

	// Artifacts (AWS_ names match what S3-compatible providers export)
	cfg.ArtifactsDir = getEnvOrDefault("ARTIFACTS_DIR", defaultArtifactsDir)
	cfg.ArtifactsBucket = getEnvOrDefault("ARTIFACTS_BUCKET", "")
	cfg.ArtifactsPrefix = getEnvOrDefault("ARTIFACTS_PREFIX", "")
	cfg.AWSEndpointS3 = getEnvOrDefault("AWS_ENDPOINT_URL_S3", "")
	cfg.AWSRegion = getEnvOrDefault("AWS_REGION", defaultAWSRegion)
	cfg.AWSAccessKeyID = getEnvOrDefault("AWS_ACCESS_KEY_ID", "")
	cfg.AWSSecretAccessKey = getEnvOrDefault("AWS_SECRET_ACCESS_KEY", "")
	cfg.AWSUsePathStyle = cfg.parseBool("AWS_S3_USE_PATH_STYLE", false)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that all configuration is present and valid.
func (c *Config) Validate() error {
	errs := append([]string(nil), c.problems...)

	if !c.UseFixture {
		if _, err := urlutil.AppURL(c.Selectors.BaseURL()); err != nil {
			errs = append(errs, fmt.Sprintf("MOVIES_BASE_URL must be an absolute http(s) URL: %v", err))
		}
	}
	if _, err := regexp.Compile(c.Selectors.MovieLinkPatternSource()); err != nil {
		errs = append(errs, fmt.Sprintf("MOVIES_MOVIE_LINK_PATTERN is not a valid regexp: %v", err))
	}
	if !lo.Contains(Browsers, c.Browser) {
		errs = append(errs, fmt.Sprintf("BROWSER must be one of %s, got %q", strings.Join(Browsers, ", "), c.Browser))
	}
	if c.DefaultTimeout <= 0 {
		errs = append(errs, "DEFAULT_TIMEOUT must be positive")
	}
	if c.ProbeTimeout <= 0 {
		errs = append(errs, "PROBE_TIMEOUT must be positive")
	}
	if c.NextPage.Attempts < 1 {
		errs = append(errs, "NEXT_PAGE_ATTEMPTS must be at least 1")
	}
	if c.NextPage.Pause < 0 {
		errs = append(errs, "NEXT_PAGE_PAUSE must not be negative")
	}
	if c.ExpectedPageSize < 0 {
		errs = append(errs, "EXPECTED_PAGE_SIZE must not be negative")
	}
	if c.UsesS3() && (c.AWSAccessKeyID == "") != (c.AWSSecretAccessKey == "") {
		errs = append(errs, "AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set together")
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// UsesS3 reports whether artifacts go to a bucket instead of ArtifactsDir.
func (c *Config) UsesS3() bool {
	return c.ArtifactsBucket != ""
}

// S3Config returns the artifact bucket settings.
func (c *Config) S3Config() artifacts.S3Config {
	return artifacts.S3Config{
		Endpoint:        c.AWSEndpointS3,
		Region:          c.AWSRegion,
		AccessKeyID:     c.AWSAccessKeyID,
		SecretAccessKey: c.AWSSecretAccessKey,
		Bucket:          c.ArtifactsBucket,
		Prefix:          c.ArtifactsPrefix,
		UsePathStyle:    c.AWSUsePathStyle,
	}
}

// PageOptions returns the facade options implied by the configuration.
func (c *Config) PageOptions() []moviepage.Option {
	return []moviepage.Option{
		moviepage.WithTimeout(c.DefaultTimeout),
		moviepage.WithProbeTimeout(c.ProbeTimeout),
		moviepage.WithRetryPolicy(c.NextPage),
		moviepage.WithResultsResponse(c.ResultsResponse),
	}
}

// PrintStartupSummary prints a human-readable summary of the configuration to w.
func (c *Config) PrintStartupSummary(w io.Writer) {
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "moviecheck starting...")

	if c.UseFixture {
		fmt.Fprintf(w, "  Target:   bundled fixture (listen: %s)\n", c.ListenAddr)
	} else {
		fmt.Fprintf(w, "  Target:   %s\n", logutil.RedactURL(c.Selectors.BaseURL()))
	}

	mode := "headless"
	if !c.Headless {
		mode = "headed"
	}
	fmt.Fprintf(w, "  Browser:  %s (%s)\n", c.Browser, mode)
	fmt.Fprintf(w, "  Timeouts: %s settle, %s probe\n", c.DefaultTimeout, c.ProbeTimeout)
	fmt.Fprintf(w, "  Paging:   %d attempts, %s pause, results %s\n", c.NextPage.Attempts, c.NextPage.Pause, c.ResultsResponse)

	checks := "all"
	if len(c.Checks) > 0 {
		checks = strings.Join(c.Checks, ", ")
	}
	fmt.Fprintf(w, "  Checks:   %s\n", checks)

	if c.UsesS3() {
		fmt.Fprintf(w, "  Artifacts: s3://%s/%s (endpoint: %s, key: %s)\n",
			c.ArtifactsBucket, c.ArtifactsPrefix, logutil.RedactURL(c.AWSEndpointS3),
			logutil.RedactValue("aws_access_key_id", c.AWSAccessKeyID))
	} else {
		fmt.Fprintf(w, "  Artifacts: %s\n", c.ArtifactsDir)
	}
	fmt.Fprintln(w, "")
}

// Helper functions for parsing environment variables

func getEnvOrDefault(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func (c *Config) parseInt(key string, defaultValue int) int {
	value := getEnvOrDefault(key, "")
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		c.problems = append(c.problems, fmt.Sprintf("%s must be an integer, got %q", key, value))
		return defaultValue
	}
	return parsed
}

func (c *Config) parseBool(key string, defaultValue bool) bool {
	value := getEnvOrDefault(key, "")
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		c.problems = append(c.problems, fmt.Sprintf("%s must be a boolean, got %q", key, value))
		return defaultValue
	}
	return parsed
}

func (c *Config) parseDuration(key string, defaultValue time.Duration) time.Duration {
	value := getEnvOrDefault(key, "")
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		c.problems = append(c.problems, fmt.Sprintf("%s must be a duration like 5s, got %q", key, value))
		return defaultValue
	}
	return parsed
}

func splitList(s string) []string {
	parts := lo.Map(strings.Split(s, ","), func(p string, _ int) string { return strings.TrimSpace(p) })
	return lo.Uniq(lo.Compact(parts))
}
