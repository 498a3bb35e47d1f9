package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/reillywatson/wait-for-deployment/internal/action"
	"github.com/reillywatson/wait-for-deployment/internal/config"
	"github.com/reillywatson/wait-for-deployment/internal/deploy"
	"github.com/reillywatson/wait-for-deployment/internal/github"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// flagOverrides holds command line values that take precedence over the
// action inputs and workflow context read from the environment.
type flagOverrides struct {
	environment string
	repository  string
	sha         string
	interval    string
	timeout     string
	apiURL      string
}

func newRootCmd() *cobra.Command {
	var flags flagOverrides

	cmd := &cobra.Command{
		Use:   "wait-for-deployment",
		Short: "Wait for a GitHub deployment of a commit to succeed",
		Long: `Polls the GitHub deployments API until a deployment of the current commit
to the given environment has a "success" status, then sets the "id" and "url"
outputs. Fails when the timeout elapses first.

Inputs are read from INPUT_* variables as set by the Actions runner, and the
repository and commit from GITHUB_REPOSITORY and GITHUB_SHA. Flags override them.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			reporter := action.NewReporter()

			cfg, err := config.Load()
			if err != nil {
				reporter.Failure(err)
				return err
			}
			applyFlags(cmd, flags, cfg)

			return run(cmd.Context(), cfg, newGitHubClient, reporter)
		},
	}

	cmd.Flags().StringVar(&flags.environment, "environment", "", "Deployment environment to watch (overrides INPUT_ENVIRONMENT)")
	cmd.Flags().StringVar(&flags.repository, "repository", "", "Repository in owner/repo format (overrides GITHUB_REPOSITORY)")
	cmd.Flags().StringVar(&flags.sha, "sha", "", "Commit SHA of the deployment (overrides GITHUB_SHA)")
	cmd.Flags().StringVar(&flags.interval, "interval", "", "Seconds between polling attempts (defaults to 10)")
	cmd.Flags().StringVar(&flags.timeout, "timeout", "", "Seconds to wait before giving up (defaults to 240)")
	cmd.Flags().StringVar(&flags.apiURL, "api-url", "", "GitHub REST API root (overrides GITHUB_API_URL)")

	return cmd
}

// clientFactory builds the GitHub client from the token and API root
type clientFactory func(token, apiURL string) (deploy.DeploymentClient, error)

func newGitHubClient(token, apiURL string) (deploy.DeploymentClient, error) {
	client, err := github.NewGitHubClient(token, apiURL)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// run waits for the deployment described by cfg and reports the outcome
// through reporter. A non-nil error means the step has been marked failed.
func run(ctx context.Context, cfg *config.Config, newClient clientFactory, reporter *action.Reporter) error {
	result, err := wait(ctx, cfg, newClient, reporter)
	if err != nil {
		reporter.Failure(err)
		return err
	}

	reporter.Success(result)
	return nil
}

func wait(ctx context.Context, cfg *config.Config, newClient clientFactory, reporter *action.Reporter) (*deploy.WaitResult, error) {
	reporter.Mask(cfg.GitHubToken)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := newLogger(cfg)

	client, err := newClient(cfg.GitHubToken, cfg.APIURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}

	waiter := deploy.NewWaiter(client, logger, cfg.Interval(), cfg.Timeout())
	result, err := waiter.Wait(ctx, cfg.Query())
	if err != nil {
		return nil, err
	}

	logger.Info("deployment is live", "id", result.Deployment.GetID(), "url", result.URL)
	return result, nil
}

// applyFlags copies every flag the user set onto cfg
func applyFlags(cmd *cobra.Command, flags flagOverrides, cfg *config.Config) {
	overrides := []struct {
		name   string
		value  string
		target *string
	}{
		{"environment", flags.environment, &cfg.Environment},
		{"repository", flags.repository, &cfg.Repository},
		{"sha", flags.sha, &cfg.SHA},
		{"interval", flags.interval, &cfg.IntervalSeconds},
		{"timeout", flags.timeout, &cfg.TimeoutSeconds},
		{"api-url", flags.apiURL, &cfg.APIURL},
	}

	for _, o := range overrides {
		if cmd.Flags().Changed(o.name) {
			*o.target = o.value
		}
	}
}

func newLogger(cfg *config.Config) hclog.Logger {
	level := hclog.Info
	if cfg.Debug {
		level = hclog.Debug
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       "wait-for-deployment",
		Level:      level,
		Output:     os.Stdout,
		JSONFormat: cfg.LogJSON,
	})
}
