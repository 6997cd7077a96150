package room

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/debashis65/EkkalavyaAI-sub002/internal/geometry"
	"github.com/debashis65/EkkalavyaAI-sub002/internal/logging"
	"github.com/debashis65/EkkalavyaAI-sub002/internal/vision"
)

// Detector estimates room constraints from single frames. It holds no per-frame
// state and is safe for concurrent use.
type Detector struct {
	policy Policy
	logger *slog.Logger
}

// NewDetector creates a Detector. A nil logger uses the global logger.
func NewDetector(policy Policy, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = logging.L()
	}
	return &Detector{policy: policy, logger: logger.With("component", "room")}
}

// Policy returns the detector's policy.
func (d *Detector) Policy() Policy {
	return d.policy
}

// Analyze estimates the room from one frame. It only fails for malformed frames;
// estimation shortfalls fall back to the policy defaults.
func (d *Detector) Analyze(f vision.Frame) (Constraints, error) {
	if err := f.Validate(); err != nil {
		return Constraints{}, err
	}

	p := d.policy
	gray := f.Gray()
	edges := vision.Sobel(gray, f.Width, f.Height)

	lines := p.Plane.FloorLines(edges)
	points := p.Plane.EstimateFloor(edges)
	dims := p.DimensionsFromPlane(points)

	var walls [4]float64
	for i, region := range p.WallRegions {
		walls[i] = p.wallDistance(gray, f.Width, f.Height, region)
	}

	floorY := float64(f.Height)
	if len(lines) > 0 {
		floorY = float64(lines[len(lines)-1].Y)
	}
	ceiling := p.ceilingHeight(edges, floorY)
	flatness := p.floorFlatness(edges)

	c := Constraints{
		Detected:      len(points) > 0,
		IsRoomMode:    p.IsRoomMode(dims),
		Dimensions:    dims,
		CeilingHeight: ceiling,
		WallProximity: walls,
		FloorFlatness: flatness,
	}
	c.UsableArea = p.UsableArea(dims, c.MinWall())
	c.SafetyScore = p.ScoreSafety(ceiling, walls, flatness)
	c.RecommendedPatterns = p.RecommendPatterns(c.UsableArea, ceiling)

	d.logger.Debug("room analyzed",
		"detected", c.Detected,
		"floor_lines", len(lines),
		"width", dims.Width,
		"depth", dims.Height,
		"ceiling", ceiling,
		"min_wall", c.MinWall(),
		"safety_score", c.SafetyScore,
	)
	return c, nil
}

// wallDistance maps a region's mean brightness and mean horizontal brightness
// change to an approximate wall distance in meters. Brighter and busier regions
// are assumed to be closer.
func (p Policy) wallDistance(gray []float64, width, height int, r Region) float64 {
	x0, y0, x1, y1 := r.pixels(width, height)

	brightness := make([]float64, 0, (x1-x0)*(y1-y0))
	var deltas []float64
	for y := y0; y < y1; y++ {
		row := gray[y*width : (y+1)*width]
		for x := x0; x < x1; x++ {
			brightness = append(brightness, row[x])
			if x+1 < x1 {
				deltas = append(deltas, math.Abs(row[x+1]-row[x]))
			}
		}
	}

	b := stat.Mean(brightness, nil)
	e := 0.0
	if len(deltas) > 0 {
		e = stat.Mean(deltas, nil)
	}

	dist := p.WallBase - p.WallBrightnessWeight*(b/255) - e/p.WallEdgeDivisor
	return geometry.Clamp(dist, p.MinWallDistance, p.MaxWallDistance)
}

// ceilingHeight looks for the topmost strong horizontal edge in the upper part
// of the frame and converts its distance above the floor line into meters.
func (p Policy) ceilingHeight(edges vision.GradientMap, floorY float64) float64 {
	limit := min(int(float64(edges.Height)*p.CeilingScanFraction), edges.Height)
	minCount := float64(edges.Width) * p.CeilingRowCoverage

	topY := -1
	for y := 0; y < limit; y += p.CeilingRowStep {
		count := 0
		for x := 0; x < edges.Width; x++ {
			if edges.At(x, y) > p.CeilingEdge {
				count++
			}
		}
		if float64(count) > minCount {
			topY = y
			break
		}
	}

	if topY < 0 || floorY <= 0 {
		return p.DefaultCeiling
	}

	ratio := (floorY - float64(topY)) / floorY
	return geometry.Clamp(ratio*p.CeilingRatioScale, p.MinCeiling, p.MaxCeiling)
}

// floorFlatness is the variance of the per-row mean gradient (normalized to
// [0,1]) over the bottom of the frame. A textured or uneven floor gives rows
// with very different edge density.
func (p Policy) floorFlatness(edges vision.GradientMap) float64 {
	start := int(float64(edges.Height) * (1 - p.FlatnessFraction))
	start = clampInt(start, 1, edges.Height)

	var rows []float64
	for y := start; y < edges.Height-1; y++ {
		sum := 0.0
		for x := 1; x < edges.Width-1; x++ {
			sum += edges.At(x, y)
		}
		rows = append(rows, sum/float64(edges.Width-2)/255)
	}

	if len(rows) < 2 {
		return 0
	}
	return stat.Variance(rows, nil)
}
