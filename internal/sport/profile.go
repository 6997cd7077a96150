// Package sport holds the catalog of supported sports and their scoring profiles.
package sport

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/debashis65/EkkalavyaAI-sub002/internal/pose"
)

//go:embed profiles.toml
var defaultCatalog []byte

// Penalty bounds for a single violated check.
const (
	MinPenalty = 10.0
	MaxPenalty = 20.0
)

// ErrInvalidProfile is returned when a profile document fails validation.
var ErrInvalidProfile = errors.New("invalid sport profile")

// RuleKind names the scoring rule variant a profile is evaluated with.
type RuleKind string

// Rule variants. An empty kind selects RuleGeneral.
const (
	RuleGeneral       RuleKind = "general"
	RuleBasketball    RuleKind = "basketball"
	RuleFootball      RuleKind = "football"
	RuleCricket       RuleKind = "cricket"
	RuleTennis        RuleKind = "tennis"
	RuleArchery       RuleKind = "archery"
	RuleSwimming      RuleKind = "swimming"
	RuleWeightlifting RuleKind = "weightlifting"
)

var knownRules = map[RuleKind]bool{
	RuleGeneral:       true,
	RuleBasketball:    true,
	RuleFootball:      true,
	RuleCricket:       true,
	RuleTennis:        true,
	RuleArchery:       true,
	RuleSwimming:      true,
	RuleWeightlifting: true,
}

// Range is an inclusive optimal range for a metric.
type Range struct {
	Min float64 `toml:"min" json:"min"`
	Max float64 `toml:"max" json:"max"`
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Check is a single scoring rule: when Metric falls outside its optimal range the
// score drops by Penalty and Feedback is reported.
type Check struct {
	Metric   string  `toml:"metric" json:"metric"`
	Penalty  float64 `toml:"penalty" json:"penalty"`
	Feedback string  `toml:"feedback" json:"feedback"`
}

// Profile describes how one sport is analyzed. The Registry hands out copies,
// so a registered profile cannot change underneath its analyzers.
type Profile struct {
	Name          string           `toml:"name" json:"name"`
	Rule          RuleKind         `toml:"rule" json:"rule"`
	KeyJoints     []pose.Joint     `toml:"key_joints" json:"key_joints"`
	AnalysisTypes []string         `toml:"analysis_types" json:"analysis_types"`
	Metrics       []string         `toml:"metrics" json:"metrics"`
	OptimalAngles map[string]Range `toml:"optimal_angles" json:"optimal_angles"`
	Checks        []Check          `toml:"checks" json:"checks"`
}

// Clone returns a deep copy of the profile.
func (p Profile) Clone() Profile {
	p.KeyJoints = slices.Clone(p.KeyJoints)
	p.AnalysisTypes = slices.Clone(p.AnalysisTypes)
	p.Metrics = slices.Clone(p.Metrics)
	p.OptimalAngles = maps.Clone(p.OptimalAngles)
	p.Checks = slices.Clone(p.Checks)
	return p
}

type catalog struct {
	Sports []Profile `toml:"sport"`
}

// DefaultProfiles returns the built-in sport catalog.
func DefaultProfiles() ([]Profile, error) {
	return ParseCatalog(defaultCatalog)
}

// ParseCatalog decodes a TOML document containing one or more [[sport]] tables.
func ParseCatalog(data []byte) ([]Profile, error) {
	var c catalog
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("parse sport catalog: %w", err)
	}

	for i := range c.Sports {
		if err := c.Sports[i].normalize(); err != nil {
			return nil, err
		}
	}
	return c.Sports, nil
}

// ParseProfile decodes a single profile document (a bare table, not [[sport]]).
func ParseProfile(data []byte) (Profile, error) {
	var p Profile
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return Profile{}, fmt.Errorf("parse sport profile: %w", err)
	}
	if err := p.normalize(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Encode renders the profile as a standalone TOML document accepted by ParseProfile.
func (p Profile) Encode() ([]byte, error) {
	return toml.Marshal(p)
}

func (p *Profile) normalize() error {
	p.Name = NormalizeName(p.Name)
	if p.Rule == "" {
		p.Rule = RuleGeneral
	}
	p.Rule = RuleKind(strings.ToLower(strings.TrimSpace(string(p.Rule))))

	for i, j := range p.KeyJoints {
		parsed, err := pose.ParseJoint(string(j))
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidProfile, p.Name, err)
		}
		p.KeyJoints[i] = parsed
	}
	return p.Validate()
}

// Validate ensures the profile is usable by the analyzer.
func (p *Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProfile)
	}
	if !knownRules[p.Rule] {
		return fmt.Errorf("%w: %s: unknown rule %q", ErrInvalidProfile, p.Name, p.Rule)
	}
	if len(p.KeyJoints) == 0 {
		return fmt.Errorf("%w: %s: key_joints must not be empty", ErrInvalidProfile, p.Name)
	}
	for _, j := range p.KeyJoints {
		if !j.Valid() {
			return fmt.Errorf("%w: %s: unknown joint %q", ErrInvalidProfile, p.Name, j)
		}
	}
	for metric, r := range p.OptimalAngles {
		if r.Min > r.Max {
			return fmt.Errorf("%w: %s: range for %s has min > max", ErrInvalidProfile, p.Name, metric)
		}
	}

	declared := make(map[string]bool, len(p.Metrics))
	for _, m := range p.Metrics {
		declared[m] = true
	}
	for _, c := range p.Checks {
		if !declared[c.Metric] {
			return fmt.Errorf("%w: %s: check on undeclared metric %q", ErrInvalidProfile, p.Name, c.Metric)
		}
		if _, ok := p.OptimalAngles[c.Metric]; !ok {
			return fmt.Errorf("%w: %s: metric %q has no optimal range", ErrInvalidProfile, p.Name, c.Metric)
		}
		if c.Penalty < MinPenalty || c.Penalty > MaxPenalty {
			return fmt.Errorf("%w: %s: penalty for %s must be between %.0f and %.0f",
				ErrInvalidProfile, p.Name, c.Metric, MinPenalty, MaxPenalty)
		}
		if strings.TrimSpace(c.Feedback) == "" {
			return fmt.Errorf("%w: %s: check on %s needs feedback", ErrInvalidProfile, p.Name, c.Metric)
		}
	}
	return nil
}

// NormalizeName canonicalizes a sport identifier.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
