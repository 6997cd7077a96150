package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Scene change constants.
const (
	// DefaultBlurSize is the Gaussian kernel applied before differencing.
	DefaultBlurSize = 21
	// DiffThreshold is the per-pixel gray level change counted as different.
	DiffThreshold = 25
)

// SceneMonitor decides when the room needs to be analyzed again. It keeps the
// frame the current room analysis was computed from as a baseline and reports
// how much of a new frame differs from it. Unlike frame-to-frame motion
// detection the baseline only moves on Rebase, so slow drift accumulates.
type SceneMonitor struct {
	threshold float64
	blurSize  int
	baseline  gocv.Mat
	hasBase   bool
	mu        sync.Mutex
}

// NewSceneMonitor creates a monitor. threshold is the percentage of pixels
// that must differ from the baseline; blurSize must be odd and positive or the
// default is used.
func NewSceneMonitor(threshold float64, blurSize int) *SceneMonitor {
	if blurSize <= 0 || blurSize%2 == 0 {
		blurSize = DefaultBlurSize
	}
	return &SceneMonitor{
		threshold: threshold,
		blurSize:  blurSize,
		baseline:  gocv.NewMat(),
	}
}

// Changed compares frame with the baseline. Without a baseline, or when the
// frame size differs from it, the scene counts as fully changed.
//
// Algorithm:
// 1. Convert frame to grayscale and blur it
// 2. Absolute difference with the baseline
// 3. Threshold the difference at DiffThreshold
// 4. changePercent = non-zero pixels / total pixels * 100
func (m *SceneMonitor) Changed(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}
	if !m.hasBase {
		return true, 100
	}

	current := m.prepare(frame)
	defer current.Close()

	if current.Rows() != m.baseline.Rows() || current.Cols() != m.baseline.Cols() {
		return true, 100
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(current, m.baseline, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, DiffThreshold, 255, gocv.ThresholdBinary)

	changePercent := float64(gocv.CountNonZero(thresh)) / float64(thresh.Rows()*thresh.Cols()) * 100.0
	return changePercent > m.threshold, changePercent
}

// Rebase makes frame the new baseline. Call it with the frame a room analysis
// was just computed from.
func (m *SceneMonitor) Rebase(frame *gocv.Mat) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return
	}
	prepared := m.prepare(frame)
	defer prepared.Close()
	prepared.CopyTo(&m.baseline)
	m.hasBase = true
}

// HasBaseline reports whether a baseline frame is set.
func (m *SceneMonitor) HasBaseline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hasBase
}

// Threshold returns the change percentage that triggers re-analysis.
func (m *SceneMonitor) Threshold() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.threshold
}

// SetThreshold sets the change percentage. Values less than or equal to 0 are
// ignored.
func (m *SceneMonitor) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.threshold = threshold
}

// Reset drops the baseline.
func (m *SceneMonitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clear()
}

// Close releases resources used by the monitor.
func (m *SceneMonitor) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clear()
}

func (m *SceneMonitor) clear() {
	if !m.baseline.Empty() {
		m.baseline.Close()
		m.baseline = gocv.NewMat()
	}
	m.hasBase = false
}

// prepare returns a blurred grayscale copy of frame. The caller must Close it.
func (m *SceneMonitor) prepare(frame *gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: m.blurSize, Y: m.blurSize}, 0, 0, gocv.BorderDefault)
	return blurred
}
