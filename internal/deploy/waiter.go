package deploy

import (
	"context"
	"time"

	"github.com/google/go-github/v39/github"
	"github.com/hashicorp/go-hclog"
)

// DeploymentClient defines the remote operations the waiter needs
type DeploymentClient interface {
	ListDeployments(ctx context.Context, owner, repo, environment, sha string) ([]*github.Deployment, error)
	ListDeploymentStatuses(ctx context.Context, owner, repo string, deploymentID int64) ([]*github.DeploymentStatus, error)
}

// Clock supplies the current time and the pause between polling attempts
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

// Sleep blocks for d or until ctx is done, whichever comes first
func (wallClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// State is the position of the polling loop after a pass over the deployments
type State int

const (
	Polling State = iota
	Succeeded
	TimedOut
	Failed
)

func (s State) String() string {
	switch s {
	case Polling:
		return "polling"
	case Succeeded:
		return "succeeded"
	case TimedOut:
		return "timed out"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// pass is the outcome of one listing of deployments and their statuses
type pass struct {
	result *WaitResult
	err    error
}

// nextState decides where the loop goes after a pass. The timeout is only
// consulted once a pass finished without a result or an error.
func nextState(p pass, elapsed, timeout time.Duration) State {
	switch {
	case p.err != nil:
		return Failed
	case p.result != nil:
		return Succeeded
	case elapsed >= timeout:
		return TimedOut
	default:
		return Polling
	}
}

// Waiter polls GitHub until a deployment for a commit reports success
type Waiter struct {
	client   DeploymentClient
	log      hclog.Logger
	clock    Clock
	interval time.Duration
	timeout  time.Duration
}

// NewWaiter creates a Waiter that sleeps interval between attempts and gives
// up once timeout has elapsed at the end of a pass.
func NewWaiter(client DeploymentClient, log hclog.Logger, interval, timeout time.Duration) *Waiter {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Waiter{
		client:   client,
		log:      log,
		clock:    wallClock{},
		interval: interval,
		timeout:  timeout,
	}
}

// Wait blocks until a deployment matching q has a "success" status, the
// timeout elapses (*TimeoutError), or a GitHub call fails. API errors are
// returned unchanged.
func (w *Waiter) Wait(ctx context.Context, q Query) (*WaitResult, error) {
	start := w.clock.Now()

	w.log.Info("deployment params",
		"owner", q.Owner,
		"repo", q.Repo,
		"environment", q.Environment,
		"sha", q.SHA,
	)

	for {
		p := w.poll(ctx, q)
		elapsed := w.clock.Now().Sub(start)

		switch nextState(p, elapsed, w.timeout) {
		case Succeeded:
			return p.result, nil
		case Failed:
			return nil, p.err
		case TimedOut:
			w.log.Error("timed out waiting for a successful deployment", "timeout", w.timeout, "elapsed", elapsed)
			return nil, &TimeoutError{Timeout: w.timeout, Elapsed: elapsed}
		}

		w.log.Info("no successful deployment yet, sleeping", "interval", w.interval, "elapsed", elapsed)
		if err := w.clock.Sleep(ctx, w.interval); err != nil {
			return nil, err
		}
	}
}

// poll lists the deployments once and checks each one's statuses in order.
// Every deployment without a success costs one interval of sleep.
func (w *Waiter) poll(ctx context.Context, q Query) pass {
	deployments, err := w.client.ListDeployments(ctx, q.Owner, q.Repo, q.Environment, q.SHA)
	if err != nil {
		return pass{err: err}
	}
	w.log.Info("listed deployments", "count", len(deployments))

	for _, deployment := range deployments {
		id := deployment.GetID()
		w.log.Info("found a deployment, getting statuses", "deployment_id", id)

		statuses, err := w.client.ListDeploymentStatuses(ctx, q.Owner, q.Repo, id)
		if err != nil {
			return pass{err: err}
		}
		w.log.Info("found statuses", "deployment_id", id, "count", len(statuses))

		if status, ok := FindSuccess(statuses); ok {
			url := ResolveURL(deployment, status)
			w.log.Info("found a successful deployment", "deployment_id", id, "status_id", status.GetID(), "url", url)
			w.log.Debug("successful status",
				"state", status.GetState(),
				"target_url", status.GetTargetURL(),
				"description", status.GetDescription(),
			)
			return pass{result: &WaitResult{Deployment: deployment, URL: url}}
		}

		w.log.Info(`no statuses with state "success"`, "deployment_id", id, "states", statusStates(statuses))
		if err := w.clock.Sleep(ctx, w.interval); err != nil {
			return pass{err: err}
		}
	}

	return pass{}
}
