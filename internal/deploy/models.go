package deploy

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/go-github/v39/github"
)

// Query identifies the deployments to watch. It is built once per run and
// reused unchanged on every polling attempt.
type Query struct {
	Owner       string
	Repo        string
	Environment string
	SHA         string
}

// WaitResult is the deployment that reached "success" and its resolved URL
type WaitResult struct {
	Deployment *github.Deployment
	URL        string
}

// TimeoutError is returned by Wait when no successful deployment was found
// within the configured timeout.
type TimeoutError struct {
	Timeout time.Duration
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	elapsed := float64(e.Elapsed.Milliseconds()) / 1000
	return fmt.Sprintf("Timing out after %d seconds (%s elapsed)", int64(e.Timeout/time.Second), strconv.FormatFloat(elapsed, 'f', -1, 64))
}
