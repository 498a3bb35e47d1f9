package action

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-github/v39/github"
	"github.com/sethvargo/go-githubactions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reillywatson/wait-for-deployment/internal/deploy"
)

func newTestReporter(t *testing.T) (*Reporter, *bytes.Buffer, string) {
	t.Helper()

	outputFile := filepath.Join(t.TempDir(), "github_output")
	require.NoError(t, os.WriteFile(outputFile, nil, 0644))

	var stdout bytes.Buffer
	r := NewReporter(
		githubactions.WithWriter(&stdout),
		githubactions.WithGetenv(func(key string) string {
			if key == "GITHUB_OUTPUT" {
				return outputFile
			}
			return ""
		}),
	)
	return r, &stdout, outputFile
}

func TestReporter_Success(t *testing.T) {
	r, _, outputFile := newTestReporter(t)

	r.Success(&deploy.WaitResult{
		Deployment: &github.Deployment{ID: github.Int64(42)},
		URL:        "https://custom/42",
	})

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "id<<")
	assert.Contains(t, string(data), "\n42\n")
	assert.Contains(t, string(data), "url<<")
	assert.Contains(t, string(data), "\nhttps://custom/42\n")
}

func TestReporter_FailureTimeout(t *testing.T) {
	r, stdout, _ := newTestReporter(t)

	r.Failure(&deploy.TimeoutError{Timeout: 20 * time.Second, Elapsed: 20500 * time.Millisecond})

	assert.Contains(t, stdout.String(), "::error::Timing out after 20 seconds (20.5 elapsed)")
}

func TestReporter_FailureVerbatim(t *testing.T) {
	r, stdout, _ := newTestReporter(t)

	r.Failure(errors.New("GET https://api.github.com/repos/o/r/deployments: 401 Bad credentials []"))

	assert.Contains(t, stdout.String(), "::error::GET https://api.github.com/repos/o/r/deployments: 401 Bad credentials []")
}

func TestReporter_Mask(t *testing.T) {
	r, stdout, _ := newTestReporter(t)

	r.Mask("")
	assert.Empty(t, stdout.String())

	r.Mask("s3cret")
	assert.Contains(t, stdout.String(), "::add-mask::s3cret")
}
