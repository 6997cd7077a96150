package room

import (
	"fmt"

	"github.com/debashis65/EkkalavyaAI-sub002/internal/vision"
)

// Region is a sub-rectangle of the frame in fractional coordinates [0,1].
type Region struct {
	X0 float64 `toml:"x0"`
	Y0 float64 `toml:"y0"`
	X1 float64 `toml:"x1"`
	Y1 float64 `toml:"y1"`
}

// pixels converts the region to pixel bounds, keeping at least one column and row.
func (r Region) pixels(width, height int) (x0, y0, x1, y1 int) {
	x0 = clampInt(int(r.X0*float64(width)), 0, width-1)
	y0 = clampInt(int(r.Y0*float64(height)), 0, height-1)
	x1 = clampInt(int(r.X1*float64(width)), x0+1, width)
	y1 = clampInt(int(r.Y1*float64(height)), y0+1, height)
	return x0, y0, x1, y1
}

// MarkerLayout sizes on-screen training markers.
type MarkerLayout struct {
	// ReferenceSpan is the usable side length in meters that fills MaxFill of
	// the canvas.
	ReferenceSpan float64 `toml:"reference_span"`
	MinFill       float64 `toml:"min_fill"`
	MaxFill       float64 `toml:"max_fill"`
	TargetSize    float64 `toml:"target_size"`
	PatternSize   float64 `toml:"pattern_size"`
	BoundarySize  float64 `toml:"boundary_size"`
	// BoundaryInset places the boundary marker this many pixels from the origin.
	BoundaryInset float64 `toml:"boundary_inset"`
}

// Policy gathers every constant used by room analysis, marker layout and pose
// validation. The estimates built on it are monocular heuristics (brightness
// and edge density standing in for depth) and are not calibrated measurements.
type Policy struct {
	Plane vision.PlaneParams `toml:"plane"`

	// RoomScale converts the projected floor span into room meters.
	RoomScale float64 `toml:"room_scale"`
	// MinSide and MinArea clamp room dimensions away from zero.
	MinSide float64 `toml:"min_side"`
	MinArea float64 `toml:"min_area"`
	// FallbackWidth and FallbackDepth are used when no floor is detected.
	FallbackWidth float64 `toml:"fallback_width"`
	FallbackDepth float64 `toml:"fallback_depth"`

	// Wall regions, in order left, right, front, back.
	WallRegions [4]Region `toml:"wall_regions"`
	// Wall distance = WallBase - WallBrightnessWeight*(b/255) - e/WallEdgeDivisor,
	// clamped to [MinWallDistance, MaxWallDistance].
	WallBase             float64 `toml:"wall_base"`
	WallBrightnessWeight float64 `toml:"wall_brightness_weight"`
	WallEdgeDivisor      float64 `toml:"wall_edge_divisor"`
	MinWallDistance      float64 `toml:"min_wall_distance"`
	MaxWallDistance      float64 `toml:"max_wall_distance"`

	// Ceiling scan over the top CeilingScanFraction of the frame.
	CeilingScanFraction float64 `toml:"ceiling_scan_fraction"`
	CeilingRowStep      int     `toml:"ceiling_row_step"`
	CeilingEdge         float64 `toml:"ceiling_edge"`
	CeilingRowCoverage  float64 `toml:"ceiling_row_coverage"`
	DefaultCeiling      float64 `toml:"default_ceiling"`
	// CeilingRatioScale converts the floor-to-ceiling pixel ratio into meters.
	CeilingRatioScale float64 `toml:"ceiling_ratio_scale"`
	MinCeiling        float64 `toml:"min_ceiling"`
	MaxCeiling        float64 `toml:"max_ceiling"`

	// FlatnessFraction is the bottom part of the frame sampled for flatness.
	FlatnessFraction float64 `toml:"flatness_fraction"`

	// A room is in room mode when smaller than either threshold.
	RoomModeArea float64 `toml:"room_mode_area"`
	RoomModeSide float64 `toml:"room_mode_side"`

	// Usable area shrinks each axis by WallMarginFactor*max(MinWallMargin,
	// WallClearance-minWall), keeping at least MinUsableSide.
	WallMarginFactor float64 `toml:"wall_margin_factor"`
	MinWallMargin    float64 `toml:"min_wall_margin"`
	WallClearance    float64 `toml:"wall_clearance"`
	MinUsableSide    float64 `toml:"min_usable_side"`

	// Safety score deductions.
	CeilingCritical    float64 `toml:"ceiling_critical"`
	CeilingLow         float64 `toml:"ceiling_low"`
	WallCritical       float64 `toml:"wall_critical"`
	WallNear           float64 `toml:"wall_near"`
	FlatnessRough      float64 `toml:"flatness_rough"`
	FlatnessUneven     float64 `toml:"flatness_uneven"`
	PenaltyCeilingHigh float64 `toml:"penalty_ceiling_high"`
	PenaltyCeilingLow  float64 `toml:"penalty_ceiling_low"`
	PenaltyWallHigh    float64 `toml:"penalty_wall_high"`
	PenaltyWallLow     float64 `toml:"penalty_wall_low"`
	PenaltyFloorHigh   float64 `toml:"penalty_floor_high"`
	PenaltyFloorLow    float64 `toml:"penalty_floor_low"`

	// Pattern gates on usable area (m²) and ceiling height.
	LargePatternArea float64 `toml:"large_pattern_area"`
	SmallPatternArea float64 `toml:"small_pattern_area"`
	Figure8Ceiling   float64 `toml:"figure8_ceiling"`

	// Pose validation.
	HeadClearanceY   float64 `toml:"head_clearance_y"`
	MinSafetyScore   float64 `toml:"min_safety_score"`
	WallWarnDistance float64 `toml:"wall_warn_distance"`

	Markers MarkerLayout `toml:"markers"`
}

// DefaultPolicy returns the standard room-analysis constants.
func DefaultPolicy() Policy {
	return Policy{
		Plane: vision.DefaultPlaneParams(),

		RoomScale:     2.0,
		MinSide:       1.5,
		MinArea:       2.25,
		FallbackWidth: 3.0,
		FallbackDepth: 3.0,

		WallRegions: [4]Region{
			{X0: 0.0, Y0: 0.2, X1: 0.2, Y1: 0.8},
			{X0: 0.8, Y0: 0.2, X1: 1.0, Y1: 0.8},
			{X0: 0.3, Y0: 0.2, X1: 0.7, Y1: 0.5},
			{X0: 0.2, Y0: 0.85, X1: 0.8, Y1: 1.0},
		},
		WallBase:             3.0,
		WallBrightnessWeight: 2.0,
		WallEdgeDivisor:      100.0,
		MinWallDistance:      0.5,
		MaxWallDistance:      4.0,

		CeilingScanFraction: 0.4,
		CeilingRowStep:      5,
		CeilingEdge:         30,
		CeilingRowCoverage:  0.1,
		DefaultCeiling:      2.4,
		CeilingRatioScale:   2.4 / 0.75,
		MinCeiling:          2.0,
		MaxCeiling:          4.0,

		FlatnessFraction: 0.3,

		RoomModeArea: 9.0,
		RoomModeSide: 3.0,

		WallMarginFactor: 2.0,
		MinWallMargin:    0.5,
		WallClearance:    2.0,
		MinUsableSide:    1.0,

		CeilingCritical:    2.2,
		CeilingLow:         2.4,
		WallCritical:       1.0,
		WallNear:           1.5,
		FlatnessRough:      0.02,
		FlatnessUneven:     0.01,
		PenaltyCeilingHigh: 30,
		PenaltyCeilingLow:  10,
		PenaltyWallHigh:    25,
		PenaltyWallLow:     10,
		PenaltyFloorHigh:   20,
		PenaltyFloorLow:    10,

		LargePatternArea: 4.0,
		SmallPatternArea: 2.25,
		Figure8Ceiling:   2.4,

		HeadClearanceY:   0.1,
		MinSafetyScore:   70,
		WallWarnDistance: 1.0,

		Markers: MarkerLayout{
			ReferenceSpan: 4.0,
			MinFill:       0.4,
			MaxFill:       0.8,
			TargetSize:    40,
			PatternSize:   28,
			BoundarySize:  12,
			BoundaryInset: 20,
		},
	}
}

// Validate rejects policies that would divide by zero or invert ranges.
func (p Policy) Validate() error {
	switch {
	case p.Plane.RowStep <= 0 || p.Plane.SampleStride <= 0:
		return fmt.Errorf("room policy: plane row_step and sample_stride must be positive")
	case p.Plane.StartFraction < 0 || p.Plane.StartFraction >= 1:
		return fmt.Errorf("room policy: plane start_fraction must be in [0,1)")
	case p.CeilingRowStep <= 0:
		return fmt.Errorf("room policy: ceiling_row_step must be positive")
	case p.WallEdgeDivisor <= 0:
		return fmt.Errorf("room policy: wall_edge_divisor must be positive")
	case p.MinWallDistance > p.MaxWallDistance:
		return fmt.Errorf("room policy: min_wall_distance exceeds max_wall_distance")
	case p.MinCeiling > p.MaxCeiling:
		return fmt.Errorf("room policy: min_ceiling exceeds max_ceiling")
	case p.CeilingScanFraction <= 0 || p.CeilingScanFraction > 1:
		return fmt.Errorf("room policy: ceiling_scan_fraction must be in (0,1]")
	case p.FlatnessFraction <= 0 || p.FlatnessFraction > 1:
		return fmt.Errorf("room policy: flatness_fraction must be in (0,1]")
	case p.MinSide <= 0 || p.MinArea <= 0 || p.MinUsableSide <= 0:
		return fmt.Errorf("room policy: minimum dimensions must be positive")
	case p.MinUsableSide > p.MinSide:
		return fmt.Errorf("room policy: min_usable_side exceeds min_side")
	case p.Markers.ReferenceSpan <= 0 || p.Markers.MinFill > p.Markers.MaxFill:
		return fmt.Errorf("room policy: invalid marker layout")
	}
	for i, r := range p.WallRegions {
		if r.X0 < 0 || r.Y0 < 0 || r.X1 > 1 || r.Y1 > 1 || r.X0 >= r.X1 || r.Y0 >= r.Y1 {
			return fmt.Errorf("room policy: wall region %d is not a valid sub-rectangle", i)
		}
	}
	return nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
