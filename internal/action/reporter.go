package action

import (
	"strconv"

	"github.com/sethvargo/go-githubactions"

	"github.com/reillywatson/wait-for-deployment/internal/deploy"
)

const (
	OutputID  = "id"
	OutputURL = "url"
)

// Reporter publishes the result of a wait to the Actions runner
type Reporter struct {
	action *githubactions.Action
}

// NewReporter creates a Reporter. With no options it writes workflow commands
// to stdout and outputs to $GITHUB_OUTPUT.
func NewReporter(opts ...githubactions.Option) *Reporter {
	return &Reporter{action: githubactions.New(opts...)}
}

// Mask keeps secret out of the run logs
func (r *Reporter) Mask(secret string) {
	if secret == "" {
		return
	}
	r.action.AddMask(secret)
}

// Success sets the id and url step outputs
func (r *Reporter) Success(result *deploy.WaitResult) {
	r.action.SetOutput(OutputID, strconv.FormatInt(result.Deployment.GetID(), 10))
	r.action.SetOutput(OutputURL, result.URL)
}

// Failure marks the step as failed with err's message, unmodified. For a
// *deploy.TimeoutError that message carries the timeout and elapsed seconds.
func (r *Reporter) Failure(err error) {
	r.action.Errorf("%s", err.Error())
}
