package github

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-github/v39/github"
	"golang.org/x/oauth2"
)

// DefaultAPIURL is the public GitHub REST endpoint
const DefaultAPIURL = "https://api.github.com"

// GitHubClient lists deployments and deployment statuses for a repository.
// Errors from the API are returned as is so callers can surface them verbatim.
type GitHubClient struct {
	client *github.Client
}

// NewGitHubClient creates a token-authenticated client. An empty apiURL or
// DefaultAPIURL targets github.com, anything else is treated as a GitHub
// Enterprise REST root such as https://ghe.example.com/api/v3.
func NewGitHubClient(token, apiURL string) (*GitHubClient, error) {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)

	client := github.NewClient(tc)
	if apiURL != "" && strings.TrimSuffix(apiURL, "/") != DefaultAPIURL {
		baseURL, err := url.Parse(apiURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL %q: %w", apiURL, err)
		}
		if !strings.HasSuffix(baseURL.Path, "/") {
			baseURL.Path += "/"
		}
		client.BaseURL = baseURL
	}

	return &GitHubClient{client: client}, nil
}

// ListDeployments returns the deployments for sha in environment, in the
// order GitHub returns them.
func (c *GitHubClient) ListDeployments(ctx context.Context, owner, repo, environment, sha string) ([]*github.Deployment, error) {
	var allDeployments []*github.Deployment
	opts := &github.DeploymentsListOptions{
		SHA:         sha,
		Environment: environment,
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		deployments, resp, err := c.client.Repositories.ListDeployments(ctx, owner, repo, opts)
		if err != nil {
			return nil, err
		}

		allDeployments = append(allDeployments, deployments...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allDeployments, nil
}

// ListDeploymentStatuses returns every status recorded for a deployment
func (c *GitHubClient) ListDeploymentStatuses(ctx context.Context, owner, repo string, deploymentID int64) ([]*github.DeploymentStatus, error) {
	var allStatuses []*github.DeploymentStatus
	opts := &github.ListOptions{PerPage: 100}

	for {
		statuses, resp, err := c.client.Repositories.ListDeploymentStatuses(ctx, owner, repo, deploymentID, opts)
		if err != nil {
			return nil, err
		}

		allStatuses = append(allStatuses, statuses...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allStatuses, nil
}
