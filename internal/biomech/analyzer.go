// Package biomech turns body landmarks into sport-specific biomechanical metrics,
// a technique score and coaching feedback.
package biomech

import (
	"fmt"
	"slices"
	"time"

	"github.com/debashis65/EkkalavyaAI-sub002/internal/geometry"
	"github.com/debashis65/EkkalavyaAI-sub002/internal/pose"
	"github.com/debashis65/EkkalavyaAI-sub002/internal/sport"
)

// Result is the outcome of analyzing one landmark snapshot.
type Result struct {
	Sport       string             `json:"sport"`
	Score       float64            `json:"score"`
	Metrics     map[string]float64 `json:"metrics"`
	Feedback    []string           `json:"feedback"`
	JointAngles map[string]float64 `json:"joint_angles"`
	Landmarks   pose.LandmarkMap   `json:"landmarks"`
	Timestamp   time.Time          `json:"timestamp"`
}

// binding is a profile resolved against its rule.
type binding struct {
	profile  *sport.Profile
	rule     Rule
	required []pose.Joint
}

// Analyzer scores landmark snapshots against the sport registry.
// Rules are bound to every registered sport when the Analyzer is built, so
// Analyze never branches on sport names. It is safe for concurrent use.
type Analyzer struct {
	bindings map[string]binding
	now      func() time.Time
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithClock overrides the clock used for result timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		a.now = now
	}
}

// NewAnalyzer binds every profile in the registry to its rule.
// It fails if a profile names a rule that does not exist or checks a metric its
// rule does not produce.
func NewAnalyzer(reg *sport.Registry, opts ...Option) (*Analyzer, error) {
	a := &Analyzer{
		bindings: make(map[string]binding, reg.Count()),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	for _, p := range reg.Profiles() {
		r, ok := RuleFor(p.Rule)
		if !ok {
			return nil, fmt.Errorf("bind %s: %w: unknown rule %q", p.Name, sport.ErrInvalidProfile, p.Rule)
		}
		produced := r.Metrics()
		for _, c := range p.Checks {
			if !slices.Contains(produced, c.Metric) {
				return nil, fmt.Errorf("bind %s: %w: rule %s does not produce metric %q",
					p.Name, sport.ErrInvalidProfile, r.Kind(), c.Metric)
			}
		}

		a.bindings[p.Name] = binding{
			profile:  p,
			rule:     r,
			required: unionJoints(p.KeyJoints, r.Required()),
		}
	}

	return a, nil
}

// Analyze scores a landmark snapshot for a sport.
//
// It returns an error wrapping sport.ErrUnsupportedSport for unknown sports and a
// *MissingLandmarksError when a joint required by the sport is absent. Checks are
// applied in the order the profile declares them; each violated range costs its
// penalty and adds its feedback. The score is clamped to [0, 100].
func (a *Analyzer) Analyze(landmarks pose.LandmarkMap, sportName string) (*Result, error) {
	b, ok := a.bindings[sport.NormalizeName(sportName)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", sport.ErrUnsupportedSport, sportName)
	}

	if missing := landmarks.Missing(b.required); len(missing) > 0 {
		return nil, &MissingLandmarksError{Sport: b.profile.Name, Missing: missing}
	}

	m := b.rule.Measure(landmarks)

	score := m.BaseScore
	feedback := append([]string{}, m.Feedback...)
	for _, c := range b.profile.Checks {
		value := m.Metrics[c.Metric]
		if b.profile.OptimalAngles[c.Metric].Contains(value) {
			continue
		}
		score -= c.Penalty
		feedback = append(feedback, c.Feedback)
	}

	return &Result{
		Sport:       b.profile.Name,
		Score:       geometry.ClampPercent(score),
		Metrics:     m.Metrics,
		Feedback:    feedback,
		JointAngles: m.JointAngles,
		Landmarks:   landmarks.Clone(),
		Timestamp:   a.now(),
	}, nil
}

// RequiredJoints returns every joint Analyze needs for a sport, in canonical order.
func (a *Analyzer) RequiredJoints(sportName string) ([]pose.Joint, error) {
	b, ok := a.bindings[sport.NormalizeName(sportName)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", sport.ErrUnsupportedSport, sportName)
	}
	return slices.Clone(b.required), nil
}

func unionJoints(sets ...[]pose.Joint) []pose.Joint {
	seen := make(map[pose.Joint]bool)
	var out []pose.Joint
	for _, set := range sets {
		for _, j := range set {
			if !seen[j] {
				seen[j] = true
				out = append(out, j)
			}
		}
	}
	pose.SortJoints(out)
	return out
}
