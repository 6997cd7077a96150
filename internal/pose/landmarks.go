// Package pose defines body landmark types and the adapters that obtain them from an
// external pose-estimation provider.
package pose

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/golang/geo/r3"
)

// ErrUnknownJoint is returned when a landmark name is not one of the canonical joints.
var ErrUnknownJoint = errors.New("unknown joint")

// Joint is a canonical body joint name.
type Joint string

// Canonical joints consumed by the analysis core.
const (
	Nose          Joint = "NOSE"
	LeftShoulder  Joint = "LEFT_SHOULDER"
	RightShoulder Joint = "RIGHT_SHOULDER"
	LeftElbow     Joint = "LEFT_ELBOW"
	RightElbow    Joint = "RIGHT_ELBOW"
	LeftWrist     Joint = "LEFT_WRIST"
	RightWrist    Joint = "RIGHT_WRIST"
	LeftHip       Joint = "LEFT_HIP"
	RightHip      Joint = "RIGHT_HIP"
	LeftKnee      Joint = "LEFT_KNEE"
	RightKnee     Joint = "RIGHT_KNEE"
	LeftAnkle     Joint = "LEFT_ANKLE"
	RightAnkle    Joint = "RIGHT_ANKLE"
)

// AllJoints lists the canonical joints in their fixed order.
var AllJoints = []Joint{
	Nose,
	LeftShoulder, RightShoulder,
	LeftElbow, RightElbow,
	LeftWrist, RightWrist,
	LeftHip, RightHip,
	LeftKnee, RightKnee,
	LeftAnkle, RightAnkle,
}

// NumJoints is the number of canonical joints.
const NumJoints = 13

var jointOrder = func() map[Joint]int {
	m := make(map[Joint]int, len(AllJoints))
	for i, j := range AllJoints {
		m[j] = i
	}
	return m
}()

// ParseJoint converts a joint name such as "left_shoulder" into a Joint.
func ParseJoint(name string) (Joint, error) {
	j := Joint(strings.ToUpper(strings.TrimSpace(name)))
	if _, ok := jointOrder[j]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownJoint, name)
	}
	return j, nil
}

// Valid reports whether j is a canonical joint.
func (j Joint) Valid() bool {
	_, ok := jointOrder[j]
	return ok
}

// SortJoints orders joints by their canonical position.
func SortJoints(joints []Joint) {
	sort.SliceStable(joints, func(a, b int) bool {
		return jointOrder[joints[a]] < jointOrder[joints[b]]
	})
}

// LandmarkPoint is a landmark in normalized image coordinates.
// X and Y are roughly in [0,1] with Y growing downward; Z is relative depth.
type LandmarkPoint struct {
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Z          float64  `json:"z"`
	Visibility *float64 `json:"visibility,omitempty"`
}

// Vec returns the point as a vector.
func (p LandmarkPoint) Vec() r3.Vector {
	return r3.Vector{X: p.X, Y: p.Y, Z: p.Z}
}

// LandmarkMap maps joints to their landmark for a single frame.
type LandmarkMap map[Joint]LandmarkPoint

// Missing returns the joints from required that are absent, in canonical order.
func (m LandmarkMap) Missing(required []Joint) []Joint {
	var missing []Joint
	for _, j := range required {
		if _, ok := m[j]; !ok {
			missing = append(missing, j)
		}
	}
	SortJoints(missing)
	return missing
}

// Vec returns the landmark for j as a vector and whether it is present.
func (m LandmarkMap) Vec(j Joint) (r3.Vector, bool) {
	p, ok := m[j]
	if !ok {
		return r3.Vector{}, false
	}
	return p.Vec(), true
}

// Clone returns a copy that shares no storage with m.
func (m LandmarkMap) Clone() LandmarkMap {
	if m == nil {
		return nil
	}
	out := make(LandmarkMap, len(m))
	for j, p := range m {
		if p.Visibility != nil {
			v := *p.Visibility
			p.Visibility = &v
		}
		out[j] = p
	}
	return out
}

// FilterVisible drops landmarks whose visibility is known and below min.
// Landmarks without a visibility value are kept.
func (m LandmarkMap) FilterVisible(min float64) LandmarkMap {
	out := make(LandmarkMap, len(m))
	for j, p := range m {
		if p.Visibility != nil && *p.Visibility < min {
			continue
		}
		out[j] = p
	}
	return out
}

// Joints returns the joints present in m in canonical order.
func (m LandmarkMap) Joints() []Joint {
	joints := make([]Joint, 0, len(m))
	for j := range m {
		joints = append(joints, j)
	}
	SortJoints(joints)
	return joints
}

// ParseLandmarks decodes a JSON object keyed by joint name, for example
// {"LEFT_SHOULDER": {"x": 0.3, "y": 0.3, "z": 0}}.
func ParseLandmarks(data []byte) (LandmarkMap, error) {
	var raw map[string]LandmarkPoint
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse landmarks: %w", err)
	}

	m := make(LandmarkMap, len(raw))
	for name, p := range raw {
		j, err := ParseJoint(name)
		if err != nil {
			return nil, err
		}
		m[j] = p
	}
	return m, nil
}
