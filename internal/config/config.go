package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/reillywatson/wait-for-deployment/internal/deploy"
)

const (
	DefaultIntervalSeconds = 10
	DefaultTimeoutSeconds  = 4 * 60

	// maxSeconds is the largest count that still fits in a time.Duration
	maxSeconds = math.MaxInt64 / int64(time.Second)
)

// Config holds the action inputs and the parts of the workflow context the
// waiter needs. Inputs arrive as INPUT_<NAME> variables set by the runner.
type Config struct {
	Environment     string `env:"INPUT_ENVIRONMENT"`
	GitHubToken     string `env:"INPUT_GITHUB-TOKEN"`
	IntervalSeconds string `env:"INPUT_INTERVALSECONDS"`
	TimeoutSeconds  string `env:"INPUT_TIMEOUTSECONDS"`
	LogJSON         bool   `env:"INPUT_LOG-JSON" envDefault:"false"`

	// Workflow context
	Repository string `env:"GITHUB_REPOSITORY"`
	SHA        string `env:"GITHUB_SHA"`
	APIURL     string `env:"GITHUB_API_URL" envDefault:"https://api.github.com"`
	Debug      bool   `env:"RUNNER_DEBUG" envDefault:"false"`
}

// Load reads configuration from the environment, after loading a .env file
// from the working directory when one exists.
func Load() (*Config, error) {
	loadDotEnv()
	return Parse(env.Options{})
}

// loadDotEnv loads the given files, or .env when none are given. A missing
// file is expected on the runner and is not reported.
func loadDotEnv(filenames ...string) {
	if err := godotenv.Load(filenames...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Failed to load .env file: %v", err)
	}
}

// Parse reads configuration using opts, which tests use to supply an
// explicit environment.
func Parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// Validate checks that every required value is present
func (c *Config) Validate() error {
	var errs []error
	if c.Environment == "" {
		errs = append(errs, errors.New("input required and not supplied: environment"))
	}
	if c.GitHubToken == "" {
		errs = append(errs, errors.New("input required and not supplied: github-token"))
	}
	if c.SHA == "" {
		errs = append(errs, errors.New("GITHUB_SHA is not set"))
	}
	if _, _, err := c.OwnerRepo(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// OwnerRepo splits Repository into its owner and name
func (c *Config) OwnerRepo() (string, string, error) {
	parts := strings.Split(c.Repository, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository %q, expected owner/repo", c.Repository)
	}
	return parts[0], parts[1], nil
}

// Query builds the deployment query. Call Validate first.
func (c *Config) Query() deploy.Query {
	owner, repo, _ := c.OwnerRepo()
	return deploy.Query{
		Owner:       owner,
		Repo:        repo,
		Environment: c.Environment,
		SHA:         c.SHA,
	}
}

// Interval is the pause between polling attempts
func (c *Config) Interval() time.Duration {
	return time.Duration(ParseSeconds(c.IntervalSeconds, DefaultIntervalSeconds)) * time.Second
}

// Timeout is the overall wait budget
func (c *Config) Timeout() time.Duration {
	return time.Duration(ParseSeconds(c.TimeoutSeconds, DefaultTimeoutSeconds)) * time.Second
}

// ParseSeconds reads the integer at the start of raw, ignoring leading
// whitespace and anything after the digits, so "15s" is 15. When there is no
// number, or it is zero or too large to be a time.Duration in seconds,
// fallback is returned instead.
func ParseSeconds(raw string, fallback int) int {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return fallback
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil || n == 0 || int64(n) > maxSeconds || int64(n) < -maxSeconds {
		return fallback
	}
	return n
}
