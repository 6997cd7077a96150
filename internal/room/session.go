package room

import (
	"errors"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/debashis65/EkkalavyaAI-sub002/internal/pose"
	"github.com/debashis65/EkkalavyaAI-sub002/internal/vision"
)

// ErrNoConstraints is returned when markers are requested before any room
// analysis has succeeded.
var ErrNoConstraints = errors.New("room not analyzed yet")

// Default canvas size for marker layout.
const (
	DefaultCanvasWidth  = 1280
	DefaultCanvasHeight = 720
)

// Session owns the current room analysis and marker set for one camera.
// Analysis results replace the current state wholesale; a failed analysis leaves
// it untouched. All methods are safe for concurrent use.
type Session struct {
	id       string
	detector *Detector
	logger   *slog.Logger

	mu       sync.Mutex
	current  *Constraints
	pattern  string
	markers  []Marker
	rng      *rand.Rand
	canvasW  int
	canvasH  int
	analyzed time.Time
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithRand sets the random source used for marker activation.
func WithRand(rng *rand.Rand) SessionOption {
	return func(s *Session) {
		s.rng = rng
	}
}

// WithCanvas sets the marker canvas size in pixels.
func WithCanvas(width, height int) SessionOption {
	return func(s *Session) {
		if width > 0 && height > 0 {
			s.canvasW, s.canvasH = width, height
		}
	}
}

// NewSession creates a session with no analysis.
func NewSession(detector *Detector, opts ...SessionOption) *Session {
	s := &Session{
		id:       uuid.NewString(),
		detector: detector,
		canvasW:  DefaultCanvasWidth,
		canvasH:  DefaultCanvasHeight,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	s.logger = detector.logger.With("session", s.id)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Analyze runs room analysis on a frame and makes the result current. If a
// pattern was selected, its markers are regenerated for the new room.
// Concurrent calls are serialized; the last to finish wins.
func (s *Session) Analyze(f vision.Frame) (Constraints, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.detector.Analyze(f)
	if err != nil {
		s.logger.Warn("room analysis failed", "error", err)
		return Constraints{}, err
	}

	s.current = &c
	s.analyzed = time.Now()
	if s.pattern != "" {
		s.markers = s.generate(s.pattern)
	}

	s.logger.Info("room constraints updated",
		"detected", c.Detected,
		"room_mode", c.IsRoomMode,
		"safety_score", c.SafetyScore,
		"patterns", c.RecommendedPatterns,
	)
	return c.clone(), nil
}

// Constraints returns a copy of the current constraints, if any.
func (s *Session) Constraints() (Constraints, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Constraints{}, false
	}
	return s.current.clone(), true
}

// AnalyzedAt returns when the current constraints were computed.
func (s *Session) AnalyzedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analyzed
}

// SelectPattern lays out markers for a pattern in the current usable area and
// makes them current.
func (s *Session) SelectPattern(pattern string) ([]Marker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, ErrNoConstraints
	}
	if !slices.Contains(s.current.RecommendedPatterns, pattern) {
		s.logger.Warn("pattern not recommended for this room", "pattern", pattern)
	}

	s.pattern = pattern
	s.markers = s.generate(pattern)
	return slices.Clone(s.markers), nil
}

// Markers returns a copy of the current markers.
func (s *Session) Markers() []Marker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.markers)
}

// Pattern returns the selected pattern, or "" if none.
func (s *Session) Pattern() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pattern
}

// ValidatePose checks a pose against the current constraints. Before any
// analysis it reports the pose as safe.
func (s *Session) ValidatePose(landmarks pose.LandmarkMap) SafetyReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detector.policy.ValidatePose(landmarks, s.current)
}

func (s *Session) generate(pattern string) []Marker {
	return s.detector.policy.GenerateMarkers(pattern, s.current.UsableArea, s.canvasW, s.canvasH, s.rng)
}
