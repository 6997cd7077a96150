package biomech

import (
	"fmt"
	"strings"

	"github.com/debashis65/EkkalavyaAI-sub002/internal/pose"
)

// MissingLandmarksError reports that joints required by a sport were absent from
// the landmark map. No partial result is produced alongside it.
type MissingLandmarksError struct {
	Sport   string
	Missing []pose.Joint
}

func (e *MissingLandmarksError) Error() string {
	names := make([]string, len(e.Missing))
	for i, j := range e.Missing {
		names[i] = string(j)
	}
	return fmt.Sprintf("missing landmarks for %s: %s", e.Sport, strings.Join(names, ", "))
}
