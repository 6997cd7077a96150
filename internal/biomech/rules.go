package biomech

import (
	"maps"
	"math"

	"github.com/debashis65/EkkalavyaAI-sub002/internal/geometry"
	"github.com/debashis65/EkkalavyaAI-sub002/internal/pose"
	"github.com/debashis65/EkkalavyaAI-sub002/internal/sport"
)

// Scaling and balance constants shared by the rules.
const (
	// ExtensionScale converts a normalized shoulder-to-wrist distance into a
	// percentage of full reach.
	ExtensionScale = 250.0
	// BalancePenaltyScale is the balance points lost per unit of horizontal
	// nose-to-hip offset.
	BalancePenaltyScale = 400.0
	// BalanceOffsetTolerance is the offset above which balance feedback is given.
	BalanceOffsetTolerance = 0.05
)

const balanceFeedback = "Center your head over your hips to improve balance"

// Measurement is what a rule computes from one landmark snapshot.
type Measurement struct {
	Metrics     map[string]float64
	JointAngles map[string]float64
	// BaseScore is the score before profile checks are applied.
	BaseScore float64
	// Feedback produced by the rule itself, ahead of check feedback.
	Feedback []string
}

// Rule computes sport-specific metrics from landmarks.
// Measure is only called once every joint in Required is present.
type Rule interface {
	Kind() sport.RuleKind
	Required() []pose.Joint
	Metrics() []string
	Measure(lm pose.LandmarkMap) Measurement
}

type rule struct {
	kind     sport.RuleKind
	required []pose.Joint
	metrics  []string
	measure  func(lm pose.LandmarkMap) Measurement
}

func (r *rule) Kind() sport.RuleKind { return r.kind }
func (r *rule) Required() []pose.Joint { return r.required }
func (r *rule) Metrics() []string { return r.metrics }
func (r *rule) Measure(lm pose.LandmarkMap) Measurement { return r.measure(lm) }

var rules = map[sport.RuleKind]Rule{
	sport.RuleGeneral: &rule{
		kind:     sport.RuleGeneral,
		required: []pose.Joint{pose.Nose, pose.LeftHip, pose.RightHip},
		metrics:  []string{"balance_score", "horizontal_offset"},
		measure:  measureBalance,
	},
	sport.RuleBasketball: &rule{
		kind:     sport.RuleBasketball,
		required: []pose.Joint{pose.LeftShoulder, pose.RightShoulder, pose.RightElbow, pose.RightWrist},
		metrics:  []string{"elbow_angle", "shoulder_tilt", "arm_extension"},
		measure: func(lm pose.LandmarkMap) Measurement {
			elbow := angle(lm, pose.RightShoulder, pose.RightElbow, pose.RightWrist)
			return newMeasurement(
				map[string]float64{
					"elbow_angle":   elbow,
					"shoulder_tilt": tilt(lm, pose.LeftShoulder, pose.RightShoulder),
					"arm_extension": extension(lm, pose.RightShoulder, pose.RightWrist),
				},
				map[string]float64{"elbow_angle": elbow},
			)
		},
	},
	sport.RuleFootball: &rule{
		kind: sport.RuleFootball,
		required: []pose.Joint{
			pose.LeftHip, pose.RightHip, pose.LeftKnee, pose.RightKnee, pose.LeftAnkle, pose.RightAnkle,
		},
		metrics: []string{"kicking_knee_angle", "support_knee_angle", "hip_tilt"},
		measure: func(lm pose.LandmarkMap) Measurement {
			kick := angle(lm, pose.RightHip, pose.RightKnee, pose.RightAnkle)
			support := angle(lm, pose.LeftHip, pose.LeftKnee, pose.LeftAnkle)
			return newMeasurement(
				map[string]float64{
					"kicking_knee_angle": kick,
					"support_knee_angle": support,
					"hip_tilt":           tilt(lm, pose.LeftHip, pose.RightHip),
				},
				map[string]float64{"kicking_knee_angle": kick, "support_knee_angle": support},
			)
		},
	},
	sport.RuleCricket: &rule{
		kind: sport.RuleCricket,
		required: []pose.Joint{
			pose.LeftShoulder, pose.LeftElbow, pose.LeftWrist, pose.LeftHip, pose.LeftKnee, pose.LeftAnkle,
		},
		metrics: []string{"front_elbow_angle", "front_knee_angle", "trunk_angle"},
		measure: func(lm pose.LandmarkMap) Measurement {
			angles := map[string]float64{
				"front_elbow_angle": angle(lm, pose.LeftShoulder, pose.LeftElbow, pose.LeftWrist),
				"front_knee_angle":  angle(lm, pose.LeftHip, pose.LeftKnee, pose.LeftAnkle),
				"trunk_angle":       angle(lm, pose.LeftShoulder, pose.LeftHip, pose.LeftKnee),
			}
			return newMeasurement(maps.Clone(angles), angles)
		},
	},
	sport.RuleTennis: &rule{
		kind:     sport.RuleTennis,
		required: []pose.Joint{pose.RightShoulder, pose.RightElbow, pose.RightWrist, pose.RightHip},
		metrics:  []string{"hitting_elbow_angle", "shoulder_angle", "reach"},
		measure: func(lm pose.LandmarkMap) Measurement {
			angles := map[string]float64{
				"hitting_elbow_angle": angle(lm, pose.RightShoulder, pose.RightElbow, pose.RightWrist),
				"shoulder_angle":      angle(lm, pose.RightHip, pose.RightShoulder, pose.RightElbow),
			}
			metrics := maps.Clone(angles)
			metrics["reach"] = extension(lm, pose.RightShoulder, pose.RightWrist)
			return newMeasurement(metrics, angles)
		},
	},
	sport.RuleArchery: &rule{
		kind: sport.RuleArchery,
		required: []pose.Joint{
			pose.LeftShoulder, pose.RightShoulder, pose.LeftElbow, pose.RightElbow, pose.LeftWrist, pose.RightWrist,
		},
		metrics: []string{"bow_arm_angle", "draw_elbow_angle", "shoulder_tilt"},
		measure: func(lm pose.LandmarkMap) Measurement {
			angles := map[string]float64{
				"bow_arm_angle":    angle(lm, pose.LeftShoulder, pose.LeftElbow, pose.LeftWrist),
				"draw_elbow_angle": angle(lm, pose.RightShoulder, pose.RightElbow, pose.RightWrist),
			}
			metrics := maps.Clone(angles)
			metrics["shoulder_tilt"] = tilt(lm, pose.LeftShoulder, pose.RightShoulder)
			return newMeasurement(metrics, angles)
		},
	},
	sport.RuleSwimming: &rule{
		kind:     sport.RuleSwimming,
		required: []pose.Joint{pose.RightShoulder, pose.RightElbow, pose.RightWrist, pose.RightHip},
		metrics:  []string{"catch_elbow_angle", "stroke_reach"},
		measure: func(lm pose.LandmarkMap) Measurement {
			angles := map[string]float64{
				"catch_elbow_angle": angle(lm, pose.RightShoulder, pose.RightElbow, pose.RightWrist),
				"stroke_reach":      angle(lm, pose.RightHip, pose.RightShoulder, pose.RightElbow),
			}
			return newMeasurement(maps.Clone(angles), angles)
		},
	},
	sport.RuleWeightlifting: &rule{
		kind: sport.RuleWeightlifting,
		required: []pose.Joint{
			pose.LeftShoulder, pose.LeftHip, pose.RightHip, pose.LeftKnee, pose.RightKnee, pose.LeftAnkle, pose.RightAnkle,
		},
		metrics: []string{"knee_angle", "hip_angle", "knee_symmetry"},
		measure: func(lm pose.LandmarkMap) Measurement {
			left := angle(lm, pose.LeftHip, pose.LeftKnee, pose.LeftAnkle)
			right := angle(lm, pose.RightHip, pose.RightKnee, pose.RightAnkle)
			hip := angle(lm, pose.LeftShoulder, pose.LeftHip, pose.LeftKnee)
			return newMeasurement(
				map[string]float64{
					"knee_angle":    (left + right) / 2,
					"hip_angle":     hip,
					"knee_symmetry": math.Abs(left - right),
				},
				map[string]float64{"left_knee_angle": left, "right_knee_angle": right, "hip_angle": hip},
			)
		},
	},
}

// RuleFor returns the rule implementation for a kind.
func RuleFor(kind sport.RuleKind) (Rule, bool) {
	r, ok := rules[kind]
	return r, ok
}

// measureBalance scores how well the head is stacked over the hips.
func measureBalance(lm pose.LandmarkMap) Measurement {
	hipMid := geometry.Midpoint(lm[pose.LeftHip].Vec(), lm[pose.RightHip].Vec())
	offset := math.Abs(lm[pose.Nose].X - hipMid.X)
	balance := geometry.ClampPercent(100 - offset*BalancePenaltyScale)

	m := Measurement{
		Metrics: map[string]float64{
			"balance_score":     balance,
			"horizontal_offset": offset,
		},
		JointAngles: map[string]float64{},
		BaseScore:   balance,
	}
	if offset > BalanceOffsetTolerance {
		m.Feedback = append(m.Feedback, balanceFeedback)
	}
	return m
}

func newMeasurement(metrics, angles map[string]float64) Measurement {
	return Measurement{Metrics: metrics, JointAngles: angles, BaseScore: 100}
}

func angle(lm pose.LandmarkMap, a, b, c pose.Joint) float64 {
	return geometry.Angle(lm[a].Vec(), lm[b].Vec(), lm[c].Vec())
}

func tilt(lm pose.LandmarkMap, a, b pose.Joint) float64 {
	return geometry.Tilt(lm[a].Vec(), lm[b].Vec())
}

// extension is the shoulder-to-wrist distance as a percentage of full reach.
func extension(lm pose.LandmarkMap, shoulder, wrist pose.Joint) float64 {
	return geometry.ClampPercent(geometry.Distance3D(lm[shoulder].Vec(), lm[wrist].Vec()) * ExtensionScale)
}
