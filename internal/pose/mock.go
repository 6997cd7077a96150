package pose

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockProvider is a test implementation of the Provider interface.
// It allows tests to control the detection results.
type MockProvider struct {
	mu        sync.Mutex
	landmarks LandmarkMap
	detected  bool
	err       error
	calls     int
}

// NewMockProvider creates a MockProvider that reports no pose until told otherwise.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// SetLandmarks sets the landmarks that will be returned by Detect.
// A nil map makes Detect report that no pose was found.
func (m *MockProvider) SetLandmarks(landmarks LandmarkMap) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.landmarks = landmarks.Clone()
	m.detected = landmarks != nil
}

// SetError sets the error that will be returned by Detect.
func (m *MockProvider) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured landmarks or error.
func (m *MockProvider) Detect(frame *gocv.Mat) (LandmarkMap, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, false, m.err
	}
	if !m.detected {
		return nil, false, nil
	}
	return m.landmarks.Clone(), true, nil
}

// Close is a no-op for the mock provider.
func (m *MockProvider) Close() error {
	return nil
}

func point(x, y float64) LandmarkPoint {
	vis := 0.95
	return LandmarkPoint{X: x, Y: y, Visibility: &vis}
}

// StandingLandmarks returns a full-body pose standing upright and centered, with
// the head directly above the hips and both arms hanging straight.
func StandingLandmarks() LandmarkMap {
	return LandmarkMap{
		Nose:          point(0.50, 0.15),
		LeftShoulder:  point(0.42, 0.30),
		RightShoulder: point(0.58, 0.30),
		LeftElbow:     point(0.42, 0.45),
		RightElbow:    point(0.58, 0.45),
		LeftWrist:     point(0.42, 0.58),
		RightWrist:    point(0.58, 0.58),
		LeftHip:       point(0.45, 0.60),
		RightHip:      point(0.55, 0.60),
		LeftKnee:      point(0.45, 0.78),
		RightKnee:     point(0.55, 0.78),
		LeftAnkle:     point(0.45, 0.95),
		RightAnkle:    point(0.55, 0.95),
	}
}

// LeaningLandmarks returns the standing pose with the head shifted well to the
// left of the hips.
func LeaningLandmarks() LandmarkMap {
	m := StandingLandmarks()
	m[Nose] = point(0.30, 0.17)
	return m
}

// StraightArmShotLandmarks returns a shooting pose with the right arm hanging
// fully straight below a level shoulder line.
func StraightArmShotLandmarks() LandmarkMap {
	return LandmarkMap{
		RightShoulder: {X: 0.5, Y: 0.3},
		RightElbow:    {X: 0.5, Y: 0.5},
		RightWrist:    {X: 0.5, Y: 0.7},
		LeftShoulder:  {X: 0.3, Y: 0.3},
	}
}

// SetPointShotLandmarks returns a shooting pose at the set point: upper arm
// vertical, forearm horizontal and shoulders level.
func SetPointShotLandmarks() LandmarkMap {
	return LandmarkMap{
		LeftShoulder:  point(0.40, 0.30),
		RightShoulder: point(0.60, 0.30),
		RightElbow:    point(0.60, 0.45),
		RightWrist:    point(0.75, 0.45),
	}
}
