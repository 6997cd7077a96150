package vision

import "github.com/golang/geo/r3"

// PlaneParams are the assumptions used to find and project the floor.
//
// The projection is not a calibrated camera model: it assumes a fixed field of
// view of FOVWidth meters across the frame and FOVDepth meters from the start
// row to the bottom edge, with the floor at height 0. Distances derived from it
// are rough estimates.
type PlaneParams struct {
	// StartFraction is where the floor scan begins, as a fraction of frame height.
	StartFraction float64 `toml:"start_fraction"`
	// RowStep is the vertical distance in pixels between scanned rows.
	RowStep int `toml:"row_step"`
	// EdgeThreshold is the gradient magnitude above which a pixel counts as an edge.
	EdgeThreshold float64 `toml:"edge_threshold"`
	// MinRowCoverage is the fraction of a row that must be edge pixels for the
	// row to count as a floor line.
	MinRowCoverage float64 `toml:"min_row_coverage"`
	// SampleStride is the horizontal distance in pixels between projected samples.
	SampleStride int `toml:"sample_stride"`
	// FOVWidth is the assumed horizontal field of view in meters.
	FOVWidth float64 `toml:"fov_width"`
	// FOVDepth is the assumed visible floor depth in meters.
	FOVDepth float64 `toml:"fov_depth"`
}

// DefaultPlaneParams returns the standard floor-scan parameters.
func DefaultPlaneParams() PlaneParams {
	return PlaneParams{
		StartFraction:  0.4,
		RowStep:        10,
		EdgeThreshold:  50,
		MinRowCoverage: 0.1,
		SampleStride:   20,
		FOVWidth:       3.0,
		FOVDepth:       2.0,
	}
}

// FloorLine is a horizontal band of strong edges in the lower part of the frame.
type FloorLine struct {
	Y int
	// MeanX is the edge-magnitude weighted mean column of the row's edge pixels.
	MeanX float64
	Count int
}

// FloorLines scans rows from StartFraction of the height to the bottom and
// returns those with enough edge pixels, top to bottom.
func (p PlaneParams) FloorLines(edges GradientMap) []FloorLine {
	if edges.Width == 0 || edges.Height == 0 || p.RowStep <= 0 {
		return nil
	}

	var lines []FloorLine
	minCount := float64(edges.Width) * p.MinRowCoverage
	for y := int(float64(edges.Height) * p.StartFraction); y < edges.Height; y += p.RowStep {
		var count int
		var sumX, sumW float64
		for x := 0; x < edges.Width; x++ {
			m := edges.At(x, y)
			if m > p.EdgeThreshold {
				count++
				sumX += float64(x) * m
				sumW += m
			}
		}
		if float64(count) > minCount {
			lines = append(lines, FloorLine{Y: y, MeanX: sumX / sumW, Count: count})
		}
	}
	return lines
}

// EstimateFloor projects the outermost floor lines into 3D floor points (X across,
// Y height, Z depth, meters). It needs at least two floor lines; with fewer it
// returns an empty slice, meaning the floor was not detected.
func (p PlaneParams) EstimateFloor(edges GradientMap) []r3.Vector {
	lines := p.FloorLines(edges)
	if len(lines) < 2 {
		return nil
	}

	stride := max(p.SampleStride, 1)
	var points []r3.Vector
	for _, line := range []FloorLine{lines[0], lines[len(lines)-1]} {
		for x := 0; x < edges.Width; x += stride {
			if edges.At(x, line.Y) > p.EdgeThreshold {
				points = append(points, p.Project(x, line.Y, edges.Width, edges.Height))
			}
		}
	}
	return points
}

// Project maps pixel (x, y) onto the floor plane. Rows at StartFraction map to
// depth FOVDepth and the bottom edge to depth 0.
func (p PlaneParams) Project(x, y, width, height int) r3.Vector {
	nx := float64(x) / float64(width)
	ny := float64(y) / float64(height)
	t := (ny - p.StartFraction) / (1 - p.StartFraction)
	return r3.Vector{
		X: (nx - 0.5) * p.FOVWidth,
		Y: 0,
		Z: p.FOVDepth * (1 - t),
	}
}

// EstimateFloor estimates floor points using DefaultPlaneParams.
func EstimateFloor(edges GradientMap) []r3.Vector {
	return DefaultPlaneParams().EstimateFloor(edges)
}
