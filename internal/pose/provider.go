package pose

import (
	"time"

	"gocv.io/x/gocv"
)

// Provider defines the interface for pose-estimation backends.
type Provider interface {
	// Detect analyzes a video frame and returns the landmarks of the tracked body.
	// The boolean is false when no pose was detected in the frame.
	Detect(frame *gocv.Mat) (LandmarkMap, bool, error)

	// Close releases any resources held by the provider.
	Close() error
}

// Config holds configuration options for pose detection.
type Config struct {
	// MinVisibility drops landmarks the provider is not confident about (0.0-1.0).
	// A dropped landmark is treated as absent by the analyzers.
	MinVisibility float64

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// ScriptPath overrides the location of pose_service.py.
	ScriptPath string

	// PythonPath overrides the interpreter used to run the service.
	PythonPath string

	// IdleTimeout shuts the service down after this long without a request.
	IdleTimeout time.Duration
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MinVisibility:   0.5,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
		IdleTimeout:     30 * time.Second,
	}
}
