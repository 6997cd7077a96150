package room

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/debashis65/EkkalavyaAI-sub002/internal/geometry"
)

// MarkerType classifies an on-screen marker.
type MarkerType string

// Marker types.
const (
	MarkerTarget   MarkerType = "target"
	MarkerBoundary MarkerType = "boundary"
	MarkerWarning  MarkerType = "warning"
	MarkerPattern  MarkerType = "pattern"
)

// Position is a point in canvas pixels.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Marker is one on-screen training target.
type Marker struct {
	ID       string     `json:"id"`
	Position Position   `json:"position"`
	Type     MarkerType `json:"type"`
	Active   bool       `json:"active"`
	Size     float64    `json:"size"`
	Pattern  string     `json:"pattern,omitempty"`
}

// GenerateMarkers lays out the markers for a training pattern on a canvas. The
// layout spans a share of the canvas proportional to the usable area. Unknown
// patterns get a single centered target. A boundary marker near the canvas
// origin is always appended. rng picks the initially active dribble_box cell;
// nil uses the global source.
func (p Policy) GenerateMarkers(pattern string, usable Dimensions, canvasW, canvasH int, rng *rand.Rand) []Marker {
	l := p.Markers
	cx, cy := float64(canvasW)/2, float64(canvasH)/2
	spanX := float64(canvasW) * l.fill(usable.Width)
	spanY := float64(canvasH) * l.fill(usable.Height)

	var markers []Marker
	add := func(x, y float64, typ MarkerType, active bool) {
		size := l.PatternSize
		if typ == MarkerTarget {
			size = l.TargetSize
		}
		markers = append(markers, Marker{
			ID:       fmt.Sprintf("%s-%d", pattern, len(markers)),
			Position: Position{X: x, Y: y},
			Type:     typ,
			Active:   active,
			Size:     size,
			Pattern:  pattern,
		})
	}

	switch pattern {
	case PatternDribbleBox:
		active := randIntN(rng, 9)
		for row := 0; row < 3; row++ {
			for col := 0; col < 3; col++ {
				x := cx + float64(col-1)*spanX/3
				y := cy + float64(row-1)*spanY/3
				add(x, y, MarkerTarget, row*3+col == active)
			}
		}

	case PatternMicroLadder:
		const rungs = 6
		for i := 0; i < rungs; i++ {
			side := -1.0
			if i%2 == 1 {
				side = 1.0
			}
			x := cx + side*spanX/6
			y := cy - spanY/2 + (float64(i)+0.5)*spanY/rungs
			add(x, y, MarkerPattern, i == 0)
		}

	case PatternFigure8:
		add(cx-spanX/4, cy, MarkerTarget, true)
		add(cx+spanX/4, cy, MarkerTarget, false)
		for i := 0; i < 8; i++ {
			theta := 2 * math.Pi * float64(i) / 8
			add(cx+spanX/2*math.Cos(theta), cy+spanY/4*math.Sin(theta), MarkerPattern, false)
		}

	case PatternSeatedControl:
		step := math.Min(spanX, spanY) / 4
		add(cx, cy, MarkerTarget, true)
		for ring := 1; ring <= 2; ring++ {
			radius := step * float64(ring)
			for i := 0; i < 5; i++ {
				theta := 2*math.Pi*float64(i)/5 - math.Pi/2
				add(cx+radius*math.Cos(theta), cy+radius*math.Sin(theta), MarkerPattern, false)
			}
		}

	default:
		add(cx, cy, MarkerTarget, true)
	}

	markers = append(markers, Marker{
		ID:       "boundary",
		Position: Position{X: l.BoundaryInset, Y: l.BoundaryInset},
		Type:     MarkerBoundary,
		Active:   true,
		Size:     l.BoundarySize,
	})
	return markers
}

// fill is the share of the canvas a usable side of the given length spans.
func (l MarkerLayout) fill(side float64) float64 {
	return geometry.Clamp(side/l.ReferenceSpan*l.MaxFill, l.MinFill, l.MaxFill)
}

func randIntN(rng *rand.Rand, n int) int {
	if rng == nil {
		return rand.IntN(n)
	}
	return rng.IntN(n)
}
