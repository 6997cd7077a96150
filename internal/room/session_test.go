package room

import (
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/debashis65/EkkalavyaAI-sub002/internal/pose"
	"github.com/debashis65/EkkalavyaAI-sub002/internal/vision"
	"github.com/debashis65/EkkalavyaAI-sub002/testdata"
)

func newTestSession(opts ...SessionOption) *Session {
	return NewSession(newTestDetector(), append([]SessionOption{WithRand(seededRand(42))}, opts...)...)
}

func TestSession_Fresh(t *testing.T) {
	s := newTestSession()

	if s.ID() == "" {
		t.Error("ID() is empty")
	}
	if _, ok := s.Constraints(); ok {
		t.Error("Constraints() ok = true before analysis")
	}
	if !s.AnalyzedAt().IsZero() {
		t.Error("AnalyzedAt() set before analysis")
	}
	if got := s.Markers(); len(got) != 0 {
		t.Errorf("Markers() = %v, want none", got)
	}

	report := s.ValidatePose(pose.StandingLandmarks())
	if !report.Safe || len(report.Warnings) != 0 {
		t.Errorf("ValidatePose() = %+v, want safe with no warnings", report)
	}

	if _, err := s.SelectPattern(PatternMicroLadder); !errors.Is(err, ErrNoConstraints) {
		t.Errorf("SelectPattern() error = %v, want ErrNoConstraints", err)
	}
}

func TestSession_IDsAreUnique(t *testing.T) {
	a, b := newTestSession(), newTestSession()
	if a.ID() == b.ID() {
		t.Errorf("two sessions share ID %q", a.ID())
	}
}

func TestSession_AnalyzeAndSelect(t *testing.T) {
	s := newTestSession(WithCanvas(640, 480))

	c, err := s.Analyze(testdata.StripedRoom())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	stored, ok := s.Constraints()
	if !ok {
		t.Fatal("Constraints() ok = false after analysis")
	}
	if stored.SafetyScore != c.SafetyScore || stored.Dimensions != c.Dimensions {
		t.Errorf("stored constraints %+v differ from returned %+v", stored, c)
	}
	if s.AnalyzedAt().IsZero() {
		t.Error("AnalyzedAt() not set")
	}

	markers, err := s.SelectPattern(PatternDribbleBox)
	if err != nil {
		t.Fatalf("SelectPattern() error = %v", err)
	}
	if len(markers) != 10 {
		t.Fatalf("len(markers) = %d, want 10", len(markers))
	}
	if s.Pattern() != PatternDribbleBox {
		t.Errorf("Pattern() = %q, want %q", s.Pattern(), PatternDribbleBox)
	}
	if markers[4].Position != (Position{X: 320, Y: 240}) {
		t.Errorf("center marker = %+v, want canvas center", markers[4].Position)
	}

	markers[0].ID = "mutated"
	if s.Markers()[0].ID == "mutated" {
		t.Error("SelectPattern() returned the session's own slice")
	}
}

func TestSession_ReturnedConstraintsAreCopies(t *testing.T) {
	s := newTestSession()

	c, err := s.Analyze(testdata.UniformRoom(0))
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	c.RecommendedPatterns[0] = "mutated"

	stored, _ := s.Constraints()
	if stored.RecommendedPatterns[0] == "mutated" {
		t.Error("Analyze() result shares state with the session")
	}
}

func TestSession_FailedAnalysisKeepsPrevious(t *testing.T) {
	s := newTestSession()

	if _, err := s.Analyze(testdata.StripedRoom()); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	before, _ := s.Constraints()
	at := s.AnalyzedAt()

	if _, err := s.Analyze(vision.Frame{}); !errors.Is(err, vision.ErrInvalidFrame) {
		t.Fatalf("Analyze(empty) error = %v, want ErrInvalidFrame", err)
	}

	after, ok := s.Constraints()
	if !ok {
		t.Fatal("failed analysis cleared the constraints")
	}
	if after.Dimensions != before.Dimensions || !slices.Equal(after.RecommendedPatterns, before.RecommendedPatterns) {
		t.Errorf("constraints changed after failed analysis: %+v -> %+v", before, after)
	}
	if !s.AnalyzedAt().Equal(at) {
		t.Error("AnalyzedAt() changed after failed analysis")
	}
}

func TestSession_ReanalysisRegeneratesMarkers(t *testing.T) {
	s := newTestSession()

	if _, err := s.Analyze(testdata.StripedRoom()); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if _, err := s.SelectPattern(PatternMicroLadder); err != nil {
		t.Fatalf("SelectPattern() error = %v", err)
	}
	wide := s.Markers()

	// The cramped room shrinks the usable area, pulling the ladder inward.
	if _, err := s.Analyze(testdata.CrampedRoom()); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	narrow := s.Markers()

	if len(narrow) != len(wide) {
		t.Fatalf("marker count changed: %d -> %d", len(wide), len(narrow))
	}
	if s.Pattern() != PatternMicroLadder {
		t.Errorf("Pattern() = %q after reanalysis", s.Pattern())
	}
	wideSpread := wide[1].Position.X - wide[0].Position.X
	narrowSpread := narrow[1].Position.X - narrow[0].Position.X
	if narrowSpread >= wideSpread {
		t.Errorf("ladder spread %v did not shrink below %v", narrowSpread, wideSpread)
	}
}

func TestSession_SelectUnrecommendedPattern(t *testing.T) {
	s := newTestSession()

	if _, err := s.Analyze(testdata.CrampedRoom()); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	markers, err := s.SelectPattern(PatternFigure8)
	if err != nil {
		t.Fatalf("SelectPattern() error = %v", err)
	}
	if len(markers) != 11 {
		t.Errorf("len(markers) = %d, want 11", len(markers))
	}
}

func TestSession_ConcurrentAnalyze(t *testing.T) {
	s := newTestSession()
	frames := []vision.Frame{
		testdata.StripedRoom(),
		testdata.CrampedRoom(),
		testdata.UniformRoom(0),
		testdata.ClutteredFloor(),
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(f vision.Frame) {
			defer wg.Done()
			if _, err := s.Analyze(f); err != nil {
				t.Errorf("Analyze() error = %v", err)
			}
			s.ValidatePose(pose.StandingLandmarks())
			s.Constraints()
		}(frames[i%len(frames)])
	}
	wg.Wait()

	c, ok := s.Constraints()
	if !ok {
		t.Fatal("no constraints after concurrent analysis")
	}
	if c.SafetyScore < 0 || c.SafetyScore > 100 {
		t.Errorf("SafetyScore = %v", c.SafetyScore)
	}
}
