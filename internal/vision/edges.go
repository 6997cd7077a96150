package vision

import "math"

// GradientMap holds per-pixel Sobel gradient magnitudes in [0, 255].
// The one-pixel border is never written and stays 0.
type GradientMap struct {
	Width  int
	Height int
	Mag    []float64
}

// At returns the magnitude at (x, y).
func (g GradientMap) At(x, y int) float64 {
	return g.Mag[y*g.Width+x]
}

var (
	sobelX = [9]float64{-1, 0, 1, -2, 0, 2, -1, 0, 1}
	sobelY = [9]float64{-1, -2, -1, 0, 0, 0, 1, 2, 1}
)

// DetectEdges computes the Sobel gradient magnitude of the frame's luma.
func DetectEdges(f Frame) (GradientMap, error) {
	if err := f.Validate(); err != nil {
		return GradientMap{}, err
	}
	return Sobel(f.Gray(), f.Width, f.Height), nil
}

// Sobel computes the gradient magnitude of a grayscale buffer. Border pixels are
// skipped rather than extrapolated.
func Sobel(gray []float64, width, height int) GradientMap {
	g := GradientMap{Width: width, Height: height, Mag: make([]float64, width*height)}

	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			var gx, gy float64
			k := 0
			for dy := -1; dy <= 1; dy++ {
				row := (y + dy) * width
				for dx := -1; dx <= 1; dx++ {
					v := gray[row+x+dx]
					gx += v * sobelX[k]
					gy += v * sobelY[k]
					k++
				}
			}
			g.Mag[y*width+x] = math.Min(math.Sqrt(gx*gx+gy*gy), 255)
		}
	}
	return g
}
