// Package app runs the per-frame analysis pipeline: room analysis and motion
// analysis side by side, followed by live pose safety validation.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/debashis65/EkkalavyaAI-sub002/internal/biomech"
	"github.com/debashis65/EkkalavyaAI-sub002/internal/capture"
	"github.com/debashis65/EkkalavyaAI-sub002/internal/logging"
	"github.com/debashis65/EkkalavyaAI-sub002/internal/pose"
	"github.com/debashis65/EkkalavyaAI-sub002/internal/room"
	"github.com/debashis65/EkkalavyaAI-sub002/internal/sport"
)

// Recorder persists room analyses for a session.
type Recorder interface {
	RecordAnalysis(sessionID string, at time.Time, c room.Constraints) (int64, error)
}

// Report is the outcome of processing one frame.
type Report struct {
	Frame     int       `json:"frame"`
	Timestamp time.Time `json:"timestamp"`

	// RoomUpdated is set when the room was analyzed on this frame.
	RoomUpdated   bool              `json:"room_updated"`
	ChangePercent float64           `json:"change_percent"`
	Constraints   *room.Constraints `json:"constraints,omitempty"`
	RoomError     string            `json:"room_error,omitempty"`

	PoseDetected bool            `json:"pose_detected"`
	Motion       *biomech.Result `json:"motion,omitempty"`
	MotionError  string          `json:"motion_error,omitempty"`

	Safety room.SafetyReport `json:"safety"`
}

// Config wires a Pipeline. Camera, Provider, Analyzer and Session are required.
type Config struct {
	Sport    string
	Camera   capture.Camera
	Monitor  *capture.SceneMonitor
	Provider pose.Provider
	Analyzer *biomech.Analyzer
	Session  *room.Session
	Recorder Recorder
	Logger   *slog.Logger
	OnReport func(Report)
}

// Pipeline processes camera frames for one sport and one room session.
type Pipeline struct {
	sport    string
	camera   capture.Camera
	monitor  *capture.SceneMonitor
	provider pose.Provider
	analyzer *biomech.Analyzer
	session  *room.Session
	recorder Recorder
	logger   *slog.Logger
	onReport func(Report)

	mu     sync.Mutex
	frames int
}

// New validates the configuration and builds a Pipeline. A nil Monitor gets
// the default scene change threshold.
func New(cfg Config) (*Pipeline, error) {
	switch {
	case cfg.Camera == nil:
		return nil, errors.New("pipeline: camera is required")
	case cfg.Provider == nil:
		return nil, errors.New("pipeline: pose provider is required")
	case cfg.Analyzer == nil:
		return nil, errors.New("pipeline: analyzer is required")
	case cfg.Session == nil:
		return nil, errors.New("pipeline: room session is required")
	}

	name := sport.NormalizeName(cfg.Sport)
	if _, err := cfg.Analyzer.RequiredJoints(name); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	monitor := cfg.Monitor
	if monitor == nil {
		monitor = capture.NewSceneMonitor(DefaultChangeThreshold, capture.DefaultBlurSize)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.L()
	}

	return &Pipeline{
		sport:    name,
		camera:   cfg.Camera,
		monitor:  monitor,
		provider: cfg.Provider,
		analyzer: cfg.Analyzer,
		session:  cfg.Session,
		recorder: cfg.Recorder,
		logger:   logger.With("component", "pipeline", "session", cfg.Session.ID(), "sport", name),
		onReport: cfg.OnReport,
	}, nil
}

// DefaultChangeThreshold is the scene change percentage that triggers room
// re-analysis when no monitor is configured.
const DefaultChangeThreshold = 20.0

// Sport returns the sport being scored.
func (p *Pipeline) Sport() string {
	return p.sport
}

// Session returns the room session the pipeline updates.
func (p *Pipeline) Session() *room.Session {
	return p.session
}

// Close releases the scene monitor and the pose provider. The camera is owned
// by Run.
func (p *Pipeline) Close() error {
	p.monitor.Close()
	return p.provider.Close()
}
