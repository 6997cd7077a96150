package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/debashis65/EkkalavyaAI-sub002/internal/biomech"
	"github.com/debashis65/EkkalavyaAI-sub002/internal/capture"
	"github.com/debashis65/EkkalavyaAI-sub002/internal/logging"
	"github.com/debashis65/EkkalavyaAI-sub002/internal/pose"
	"github.com/debashis65/EkkalavyaAI-sub002/internal/room"
	"github.com/debashis65/EkkalavyaAI-sub002/internal/sport"
	"github.com/debashis65/EkkalavyaAI-sub002/internal/vision"
	"github.com/debashis65/EkkalavyaAI-sub002/testdata"
)

type fakeRecorder struct {
	mu      sync.Mutex
	records []room.Constraints
	err     error
}

func (r *fakeRecorder) RecordAnalysis(sessionID string, at time.Time, c room.Constraints) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	r.records = append(r.records, c)
	return int64(len(r.records)), nil
}

func (r *fakeRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

func newAnalyzer(t *testing.T) *biomech.Analyzer {
	t.Helper()
	reg, err := sport.NewDefaultRegistry()
	if err != nil {
		t.Fatalf("NewDefaultRegistry() error = %v", err)
	}
	a, err := biomech.NewAnalyzer(reg)
	if err != nil {
		t.Fatalf("NewAnalyzer() error = %v", err)
	}
	return a
}

type fixture struct {
	pipeline *Pipeline
	provider *pose.MockProvider
	recorder *fakeRecorder
	camera   *capture.MockCamera
}

func newFixture(t *testing.T, sportName string, frames []*gocv.Mat, onReport func(Report)) fixture {
	t.Helper()

	provider := pose.NewMockProvider()
	provider.SetLandmarks(pose.StandingLandmarks())
	recorder := &fakeRecorder{}
	camera := capture.NewMockCamera(frames, false)
	camera.SetFPS(100)

	detector := room.NewDetector(room.DefaultPolicy(), logging.Discard())
	p, err := New(Config{
		Sport:    sportName,
		Camera:   camera,
		Monitor:  capture.NewSceneMonitor(20, capture.DefaultBlurSize),
		Provider: provider,
		Analyzer: newAnalyzer(t),
		Session:  room.NewSession(detector),
		Recorder: recorder,
		Logger:   logging.Discard(),
		OnReport: onReport,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { p.Close() })

	return fixture{pipeline: p, provider: provider, recorder: recorder, camera: camera}
}

func toMat(t *testing.T, f vision.Frame) *gocv.Mat {
	t.Helper()
	mat, err := f.ToMat()
	if err != nil {
		t.Fatalf("ToMat() error = %v", err)
	}
	t.Cleanup(func() { mat.Close() })
	return &mat
}

func TestNew_Validation(t *testing.T) {
	analyzer := newAnalyzer(t)
	session := room.NewSession(room.NewDetector(room.DefaultPolicy(), logging.Discard()))
	camera := capture.NewMockCamera(nil, false)
	provider := pose.NewMockProvider()

	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"missing camera", Config{Sport: "yoga", Provider: provider, Analyzer: analyzer, Session: session}, nil},
		{"missing provider", Config{Sport: "yoga", Camera: camera, Analyzer: analyzer, Session: session}, nil},
		{"missing analyzer", Config{Sport: "yoga", Camera: camera, Provider: provider, Session: session}, nil},
		{"missing session", Config{Sport: "yoga", Camera: camera, Provider: provider, Analyzer: analyzer}, nil},
		{"unknown sport", Config{Sport: "quidditch", Camera: camera, Provider: provider, Analyzer: analyzer, Session: session}, sport.ErrUnsupportedSport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			if err == nil {
				t.Fatal("New() expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("New() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	p, err := New(Config{Sport: " Yoga ", Camera: camera, Provider: provider, Analyzer: analyzer, Session: session, Logger: logging.Discard()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if p.Sport() != "yoga" {
		t.Errorf("Sport() = %q, want yoga", p.Sport())
	}
}

func TestProcessFrame_EmptyFrame(t *testing.T) {
	fx := newFixture(t, "yoga", nil, nil)

	if _, err := fx.pipeline.ProcessFrame(context.Background(), nil); !errors.Is(err, ErrEmptyFrame) {
		t.Errorf("ProcessFrame(nil) error = %v, want ErrEmptyFrame", err)
	}
}

func TestProcessFrame_BothBranches(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	fx := newFixture(t, "yoga", nil, nil)
	frame := toMat(t, testdata.StripedRoom())

	report, err := fx.pipeline.ProcessFrame(context.Background(), frame)
	if err != nil {
		t.Fatalf("ProcessFrame() error = %v", err)
	}

	if report.Frame != 1 {
		t.Errorf("Frame = %d, want 1", report.Frame)
	}
	if !report.RoomUpdated || report.Constraints == nil {
		t.Fatalf("room not analyzed on first frame: %+v", report)
	}
	if !report.Constraints.Detected {
		t.Error("floor stripes not detected through the Mat path")
	}
	if !report.PoseDetected || report.Motion == nil {
		t.Fatalf("motion not analyzed: %+v", report)
	}
	if report.Motion.Score != 100 {
		t.Errorf("yoga score = %v, want 100 for an upright pose", report.Motion.Score)
	}
	if !report.Safety.Safe {
		t.Errorf("Safety = %+v, want safe", report.Safety)
	}
	if fx.recorder.count() != 1 {
		t.Errorf("recorded analyses = %d, want 1", fx.recorder.count())
	}
}

func TestProcessFrame_RoomOnlyOnSceneChange(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	fx := newFixture(t, "yoga", nil, nil)
	ctx := context.Background()
	striped := toMat(t, testdata.StripedRoom())
	cramped := toMat(t, testdata.CrampedRoom())

	if _, err := fx.pipeline.ProcessFrame(ctx, striped); err != nil {
		t.Fatalf("ProcessFrame() error = %v", err)
	}

	report, err := fx.pipeline.ProcessFrame(ctx, striped)
	if err != nil {
		t.Fatalf("ProcessFrame() error = %v", err)
	}
	if report.RoomUpdated {
		t.Errorf("room re-analyzed on an unchanged scene (change %.1f%%)", report.ChangePercent)
	}
	if report.Constraints == nil || !report.Constraints.Detected {
		t.Error("report should carry the current constraints")
	}

	report, err = fx.pipeline.ProcessFrame(ctx, cramped)
	if err != nil {
		t.Fatalf("ProcessFrame() error = %v", err)
	}
	if !report.RoomUpdated {
		t.Errorf("room not re-analyzed after scene change (change %.1f%%)", report.ChangePercent)
	}
	if fx.recorder.count() != 2 {
		t.Errorf("recorded analyses = %d, want 2", fx.recorder.count())
	}
	if fx.provider.Calls() != 3 {
		t.Errorf("provider calls = %d, want one per frame", fx.provider.Calls())
	}
}

func TestProcessFrame_MotionFailuresDoNotBlockRoom(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	tests := []struct {
		name      string
		setup     func(*pose.MockProvider)
		wantError string
		wantPose  bool
	}{
		{
			name:      "provider error",
			setup:     func(m *pose.MockProvider) { m.SetError(errors.New("pose service crashed")) },
			wantError: "pose service crashed",
		},
		{
			name:     "no pose",
			setup:    func(m *pose.MockProvider) { m.SetLandmarks(nil) },
			wantPose: false,
		},
		{
			name: "missing joints",
			setup: func(m *pose.MockProvider) {
				m.SetLandmarks(pose.LandmarkMap{pose.Nose: {X: 0.5, Y: 0.2}})
			},
			wantError: "missing landmarks",
			wantPose:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t, "yoga", nil, nil)
			tt.setup(fx.provider)

			report, err := fx.pipeline.ProcessFrame(context.Background(), toMat(t, testdata.StripedRoom()))
			if err != nil {
				t.Fatalf("ProcessFrame() error = %v", err)
			}
			if !report.RoomUpdated {
				t.Error("room branch did not run")
			}
			if report.Motion != nil {
				t.Errorf("Motion = %+v, want nil", report.Motion)
			}
			if report.PoseDetected != tt.wantPose {
				t.Errorf("PoseDetected = %v, want %v", report.PoseDetected, tt.wantPose)
			}
			if !strings.Contains(report.MotionError, tt.wantError) {
				t.Errorf("MotionError = %q, want it to contain %q", report.MotionError, tt.wantError)
			}
		})
	}
}

func TestProcessFrame_RecorderErrorIsLogged(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	fx := newFixture(t, "yoga", nil, nil)
	fx.recorder.err = errors.New("disk full")

	report, err := fx.pipeline.ProcessFrame(context.Background(), toMat(t, testdata.StripedRoom()))
	if err != nil {
		t.Fatalf("ProcessFrame() error = %v", err)
	}
	if !report.RoomUpdated {
		t.Error("recorder failure should not undo the room update")
	}
	if _, ok := fx.pipeline.Session().Constraints(); !ok {
		t.Error("session lost its constraints")
	}
}

func TestProcessFrame_CancelledContext(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	fx := newFixture(t, "yoga", nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := fx.pipeline.ProcessFrame(ctx, toMat(t, testdata.StripedRoom())); !errors.Is(err, context.Canceled) {
		t.Errorf("ProcessFrame() error = %v, want context.Canceled", err)
	}
	if _, ok := fx.pipeline.Session().Constraints(); ok {
		t.Error("cancelled frame updated the session")
	}
}

func TestRun_ReplaysCamera(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	frames := []*gocv.Mat{
		toMat(t, testdata.StripedRoom()),
		toMat(t, testdata.StripedRoom()),
		toMat(t, testdata.ClutteredFloor()),
	}

	var mu sync.Mutex
	var reports []Report
	fx := newFixture(t, "basketball", frames, func(r Report) {
		mu.Lock()
		defer mu.Unlock()
		reports = append(reports, r)
	})
	fx.provider.SetLandmarks(pose.SetPointShotLandmarks())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := fx.pipeline.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if fx.camera.IsOpen() {
		t.Error("Run() left the camera open")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(reports) != len(frames) {
		t.Fatalf("reports = %d, want %d", len(reports), len(frames))
	}
	for i, r := range reports {
		if r.Frame != i+1 {
			t.Errorf("reports[%d].Frame = %d", i, r.Frame)
		}
		if r.Motion == nil || r.Motion.Score != 100 {
			t.Errorf("reports[%d].Motion = %+v, want basketball score 100", i, r.Motion)
		}
	}
	if !reports[0].RoomUpdated {
		t.Error("first frame did not analyze the room")
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	frame := toMat(t, testdata.UniformRoom(40))
	provider := pose.NewMockProvider()
	camera := capture.NewMockCamera([]*gocv.Mat{frame}, true)
	camera.SetFPS(50)

	p, err := New(Config{
		Sport:    "yoga",
		Camera:   camera,
		Provider: provider,
		Analyzer: newAnalyzer(t),
		Session:  room.NewSession(room.NewDetector(room.DefaultPolicy(), logging.Discard())),
		Logger:   logging.Discard(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	if err := p.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if provider.Calls() == 0 {
		t.Error("looping camera produced no frames before cancel")
	}
}
