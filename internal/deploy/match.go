package deploy

import (
	"encoding/json"

	"github.com/google/go-github/v39/github"
)

// successState is the only status state that ends the wait. The comparison is
// exact and case-sensitive.
const successState = "success"

// FindSuccess returns the first status, in the order the API returned them,
// whose state is exactly "success".
func FindSuccess(statuses []*github.DeploymentStatus) (*github.DeploymentStatus, bool) {
	for _, status := range statuses {
		if status.GetState() == successState {
			return status, true
		}
	}
	return nil, false
}

// ResolveURL picks the public URL of a successful deployment. A non-empty
// web_url in the deployment payload wins over the status target_url.
func ResolveURL(deployment *github.Deployment, status *github.DeploymentStatus) string {
	if webURL := payloadWebURL(deployment); webURL != "" {
		return webURL
	}
	return status.GetTargetURL()
}

// payloadWebURL extracts payload.web_url. Missing, malformed or non-object
// payloads yield an empty string.
func payloadWebURL(deployment *github.Deployment) string {
	if deployment == nil || len(deployment.Payload) == 0 {
		return ""
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(deployment.Payload, &payload); err != nil {
		return ""
	}

	webURL, _ := payload["web_url"].(string)
	return webURL
}

// statusStates lists the states of a status batch for progress logging
func statusStates(statuses []*github.DeploymentStatus) []string {
	states := make([]string, 0, len(statuses))
	for _, status := range statuses {
		states = append(states, status.GetState())
	}
	return states
}
