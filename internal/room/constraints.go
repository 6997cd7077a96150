// Package room estimates the physical training space from a camera frame and
// lays out safe, adaptive training markers inside it.
package room

import (
	"math"
	"slices"

	"github.com/golang/geo/r3"

	"github.com/debashis65/EkkalavyaAI-sub002/internal/geometry"
)

// Training pattern names.
const (
	PatternDribbleBox    = "dribble_box"
	PatternMicroLadder   = "micro_ladder"
	PatternFigure8       = "figure_8"
	PatternSeatedControl = "seated_control"
)

// Wall indices into Constraints.WallProximity.
const (
	WallLeft = iota
	WallRight
	WallFront
	WallBack
)

// Dimensions is a floor rectangle in meters.
type Dimensions struct {
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Area        float64 `json:"area"`
	AspectRatio float64 `json:"aspect_ratio"`
}

// Constraints describes the analyzed room. It is a value: a new analysis
// produces a new Constraints rather than updating an old one.
type Constraints struct {
	Detected            bool       `json:"detected"`
	IsRoomMode          bool       `json:"is_room_mode"`
	Dimensions          Dimensions `json:"dimensions"`
	CeilingHeight       float64    `json:"ceiling_height"`
	WallProximity       [4]float64 `json:"wall_proximity"`
	FloorFlatness       float64    `json:"floor_flatness"`
	UsableArea          Dimensions `json:"usable_area"`
	SafetyScore         float64    `json:"safety_score"`
	RecommendedPatterns []string   `json:"recommended_patterns"`
}

// MinWall returns the distance to the closest wall.
func (c Constraints) MinWall() float64 {
	return slices.Min(c.WallProximity[:])
}

func (c Constraints) clone() Constraints {
	c.RecommendedPatterns = slices.Clone(c.RecommendedPatterns)
	return c
}

// DimensionsFromPlane derives room dimensions from projected floor points, or
// the fallback room when there are none. Width is the lateral span of the
// points; depth runs from the camera to the farthest point. Sides never drop
// below MinSide and the area never below MinArea.
func (p Policy) DimensionsFromPlane(points []r3.Vector) Dimensions {
	if len(points) == 0 {
		return p.dimensions(p.FallbackWidth, p.FallbackDepth)
	}

	minX, maxX := points[0].X, points[0].X
	maxZ := points[0].Z
	for _, pt := range points[1:] {
		minX, maxX = math.Min(minX, pt.X), math.Max(maxX, pt.X)
		maxZ = math.Max(maxZ, pt.Z)
	}
	return p.dimensions((maxX-minX)*p.RoomScale, maxZ*p.RoomScale)
}

func (p Policy) dimensions(width, height float64) Dimensions {
	width = math.Max(p.MinSide, width)
	height = math.Max(p.MinSide, height)
	return Dimensions{
		Width:       width,
		Height:      height,
		Area:        math.Max(p.MinArea, width*height),
		AspectRatio: width / height,
	}
}

// IsRoomMode reports whether the space is small enough to need room-scale
// training patterns.
func (p Policy) IsRoomMode(d Dimensions) bool {
	return d.Area < p.RoomModeArea || d.Width < p.RoomModeSide || d.Height < p.RoomModeSide
}

// UsableArea shrinks the room by a wall clearance margin on each axis.
func (p Policy) UsableArea(d Dimensions, minWall float64) Dimensions {
	margin := p.WallMarginFactor * math.Max(p.MinWallMargin, p.WallClearance-minWall)
	width := math.Max(p.MinUsableSide, d.Width-margin)
	height := math.Max(p.MinUsableSide, d.Height-margin)
	return Dimensions{
		Width:       width,
		Height:      height,
		Area:        width * height,
		AspectRatio: width / height,
	}
}

// ScoreSafety combines ceiling clearance, wall proximity and floor flatness
// into a 0-100 score.
func (p Policy) ScoreSafety(ceiling float64, walls [4]float64, flatness float64) float64 {
	score := 100.0

	switch {
	case ceiling < p.CeilingCritical:
		score -= p.PenaltyCeilingHigh
	case ceiling < p.CeilingLow:
		score -= p.PenaltyCeilingLow
	}

	minWall := slices.Min(walls[:])
	switch {
	case minWall < p.WallCritical:
		score -= p.PenaltyWallHigh
	case minWall < p.WallNear:
		score -= p.PenaltyWallLow
	}

	switch {
	case flatness > p.FlatnessRough:
		score -= p.PenaltyFloorHigh
	case flatness > p.FlatnessUneven:
		score -= p.PenaltyFloorLow
	}

	return geometry.ClampPercent(score)
}

// RecommendPatterns lists the training patterns that fit the usable area.
// seated_control is always included, last.
func (p Policy) RecommendPatterns(usable Dimensions, ceiling float64) []string {
	var patterns []string
	if usable.Area >= p.LargePatternArea {
		patterns = append(patterns, PatternDribbleBox)
	}
	if usable.Area >= p.SmallPatternArea {
		patterns = append(patterns, PatternMicroLadder)
	}
	if usable.Area >= p.LargePatternArea && ceiling >= p.Figure8Ceiling {
		patterns = append(patterns, PatternFigure8)
	}
	return append(patterns, PatternSeatedControl)
}
