package deploy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeoutError_Message(t *testing.T) {
	tests := []struct {
		elapsed time.Duration
		want    string
	}{
		{20 * time.Second, "Timing out after 240 seconds (20 elapsed)"},
		{20013 * time.Millisecond, "Timing out after 240 seconds (20.013 elapsed)"},
		{20013*time.Millisecond + 999*time.Microsecond, "Timing out after 240 seconds (20.013 elapsed)"},
		{1500 * time.Millisecond, "Timing out after 240 seconds (1.5 elapsed)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			err := &TimeoutError{Timeout: 240 * time.Second, Elapsed: tt.elapsed}
			assert.Equal(t, tt.want, err.Error())
		})
	}
}
