package vision

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"gocv.io/x/gocv"
)

const epsilon = 1e-9

func TestFrame_Validate(t *testing.T) {
	tests := []struct {
		name    string
		frame   Frame
		wantErr bool
	}{
		{"valid", NewFrame(4, 3), false},
		{"too small", NewFrame(2, 2), true},
		{"short buffer", Frame{Width: 4, Height: 4, Pix: make([]uint8, 10)}, true},
		{"zero", Frame{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.frame.Validate()
			if tt.wantErr != (err != nil) {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidFrame) {
				t.Errorf("expected ErrInvalidFrame, got %v", err)
			}
		})
	}
}

func TestFrame_Gray(t *testing.T) {
	f := NewFrame(3, 3)
	f.Set(0, 0, 255, 0, 0)
	f.Set(1, 0, 0, 255, 0)
	f.Set(2, 0, 0, 0, 255)
	f.Set(0, 1, 100, 100, 100)

	gray := f.Gray()
	want := []float64{0.299 * 255, 0.587 * 255, 0.114 * 255, 100}
	for i, w := range want {
		if math.Abs(gray[i]-w) > 1e-6 {
			t.Errorf("gray[%d] = %f, want %f", i, gray[i], w)
		}
	}
}

func TestDetectEdges(t *testing.T) {
	t.Run("uniform frame has no edges", func(t *testing.T) {
		f := NewFrame(10, 10)
		f.Fill(0, 0, 10, 10, 120, 120, 120)
		g, err := DetectEdges(f)
		if err != nil {
			t.Fatalf("DetectEdges() error = %v", err)
		}
		for i, m := range g.Mag {
			if m != 0 {
				t.Fatalf("Mag[%d] = %f, want 0", i, m)
			}
		}
	})

	t.Run("vertical step edge", func(t *testing.T) {
		f := NewFrame(10, 10)
		f.Fill(5, 0, 10, 10, 20, 20, 20)

		g, err := DetectEdges(f)
		if err != nil {
			t.Fatalf("DetectEdges() error = %v", err)
		}
		// Luma 20 step: gx = (1+2+1)*20 = 80 on both columns adjacent to the step.
		if got := g.At(4, 5); math.Abs(got-80) > 1e-6 {
			t.Errorf("At(4,5) = %f, want 80", got)
		}
		if got := g.At(5, 5); math.Abs(got-80) > 1e-6 {
			t.Errorf("At(5,5) = %f, want 80", got)
		}
		if got := g.At(2, 5); got != 0 {
			t.Errorf("At(2,5) = %f, want 0", got)
		}
	})

	t.Run("magnitude clamped", func(t *testing.T) {
		f := NewFrame(10, 10)
		f.Fill(5, 0, 10, 10, 255, 255, 255)
		g, err := DetectEdges(f)
		if err != nil {
			t.Fatalf("DetectEdges() error = %v", err)
		}
		if got := g.At(5, 5); got != 255 {
			t.Errorf("At(5,5) = %f, want 255", got)
		}
	})

	t.Run("border unset", func(t *testing.T) {
		f := NewFrame(8, 6)
		for y := 0; y < 6; y++ {
			for x := 0; x < 8; x++ {
				v := uint8((x*37 + y*91) % 256)
				f.Set(x, y, v, 255-v, v/2)
			}
		}
		g, err := DetectEdges(f)
		if err != nil {
			t.Fatalf("DetectEdges() error = %v", err)
		}
		for x := 0; x < 8; x++ {
			if g.At(x, 0) != 0 || g.At(x, 5) != 0 {
				t.Errorf("border row pixel at x=%d is set", x)
			}
		}
		for y := 0; y < 6; y++ {
			if g.At(0, y) != 0 || g.At(7, y) != 0 {
				t.Errorf("border column pixel at y=%d is set", y)
			}
		}
	})

	t.Run("invalid frame", func(t *testing.T) {
		if _, err := DetectEdges(Frame{Width: 5, Height: 5}); !errors.Is(err, ErrInvalidFrame) {
			t.Errorf("expected ErrInvalidFrame, got %v", err)
		}
	})
}

// edgeRows builds a gradient map where each listed row has its first n pixels
// set to magnitude m.
func edgeRows(width, height int, rows map[int]int, m float64) GradientMap {
	g := GradientMap{Width: width, Height: height, Mag: make([]float64, width*height)}
	for y, n := range rows {
		for x := 0; x < n; x++ {
			g.Mag[y*width+x] = m
		}
	}
	return g
}

func TestFloorLines(t *testing.T) {
	p := DefaultPlaneParams()

	t.Run("coverage must exceed ten percent", func(t *testing.T) {
		g := edgeRows(200, 100, map[int]int{50: 20, 60: 21}, 100)
		lines := p.FloorLines(g)
		if len(lines) != 1 || lines[0].Y != 60 {
			t.Fatalf("FloorLines() = %+v, want only row 60", lines)
		}
		if math.Abs(lines[0].MeanX-10) > epsilon {
			t.Errorf("MeanX = %f, want 10", lines[0].MeanX)
		}
	})

	t.Run("rows above the scan start are ignored", func(t *testing.T) {
		g := edgeRows(200, 100, map[int]int{10: 200, 30: 200}, 100)
		if lines := p.FloorLines(g); len(lines) != 0 {
			t.Errorf("FloorLines() = %+v, want none", lines)
		}
	})

	t.Run("edge threshold is exclusive", func(t *testing.T) {
		g := edgeRows(200, 100, map[int]int{50: 200}, 50)
		if lines := p.FloorLines(g); len(lines) != 0 {
			t.Errorf("FloorLines() = %+v, want none", lines)
		}
	})

	t.Run("weighted mean", func(t *testing.T) {
		g := edgeRows(100, 100, nil, 0)
		for x := 0; x < 20; x++ {
			g.Mag[70*100+x] = 60
		}
		g.Mag[70*100+90] = 240
		lines := p.FloorLines(g)
		if len(lines) != 1 {
			t.Fatalf("expected 1 line, got %d", len(lines))
		}
		// sum(x*60 for x<20) = 11400, plus 90*240 = 21600; weights 1200 + 240.
		want := (11400.0 + 21600.0) / 1440.0
		if math.Abs(lines[0].MeanX-want) > epsilon {
			t.Errorf("MeanX = %f, want %f", lines[0].MeanX, want)
		}
	})
}

func TestEstimateFloor(t *testing.T) {
	t.Run("no qualifying rows", func(t *testing.T) {
		g := edgeRows(200, 100, map[int]int{50: 10, 70: 15}, 200)
		if pts := EstimateFloor(g); len(pts) != 0 {
			t.Errorf("EstimateFloor() = %d points, want 0", len(pts))
		}
	})

	t.Run("single row is not enough", func(t *testing.T) {
		g := edgeRows(200, 100, map[int]int{60: 200}, 200)
		if pts := EstimateFloor(g); len(pts) != 0 {
			t.Errorf("EstimateFloor() = %d points, want 0", len(pts))
		}
	})

	t.Run("projects outermost rows", func(t *testing.T) {
		g := edgeRows(200, 100, map[int]int{50: 200, 70: 200, 90: 200}, 100)
		pts := EstimateFloor(g)

		// Rows 50 and 90, sampled every 20 px across 200 px.
		if len(pts) != 20 {
			t.Fatalf("EstimateFloor() = %d points, want 20", len(pts))
		}

		first, last := pts[0], pts[len(pts)-1]
		if math.Abs(first.X-(-1.5)) > epsilon {
			t.Errorf("first.X = %f, want -1.5", first.X)
		}
		if math.Abs(first.Z-2.0*(1-(0.5-0.4)/0.6)) > epsilon {
			t.Errorf("first.Z = %f", first.Z)
		}
		if math.Abs(last.X-(180.0/200-0.5)*3) > epsilon {
			t.Errorf("last.X = %f", last.X)
		}
		if math.Abs(last.Z-2.0*(1-(0.9-0.4)/0.6)) > epsilon {
			t.Errorf("last.Z = %f", last.Z)
		}
		for _, p := range pts {
			if p.Y != 0 {
				t.Fatalf("floor point has height %f", p.Y)
			}
		}
	})
}

func TestPlaneParams_Project(t *testing.T) {
	p := DefaultPlaneParams()

	top := p.Project(50, 40, 100, 100)
	if math.Abs(top.Z-2.0) > epsilon || math.Abs(top.X) > epsilon {
		t.Errorf("scan start center = %+v, want depth 2 at x 0", top)
	}
	bottom := p.Project(100, 100, 100, 100)
	if math.Abs(bottom.Z) > epsilon || math.Abs(bottom.X-1.5) > epsilon {
		t.Errorf("bottom right = %+v, want depth 0 at x 1.5", bottom)
	}
}

func TestFromImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(10, 10, 14, 13))
	img.Set(10, 10, color.NRGBA{R: 200, G: 100, B: 50, A: 255})

	f := FromImage(img)
	if f.Width != 4 || f.Height != 3 {
		t.Fatalf("size = %dx%d, want 4x3", f.Width, f.Height)
	}
	if err := f.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if f.Pix[0] != 200 || f.Pix[1] != 100 || f.Pix[2] != 50 {
		t.Errorf("first pixel = %v, want [200 100 50 ...]", f.Pix[:4])
	}
}

func TestFromMat(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping gocv test in short mode")
	}

	t.Run("bgr", func(t *testing.T) {
		mat := gocv.NewMatWithSize(4, 5, gocv.MatTypeCV8UC3)
		defer mat.Close()
		mat.SetUCharAt(0, 0, 10) // B
		mat.SetUCharAt(0, 1, 20) // G
		mat.SetUCharAt(0, 2, 30) // R

		f, err := FromMat(mat)
		if err != nil {
			t.Fatalf("FromMat() error = %v", err)
		}
		if f.Width != 5 || f.Height != 4 {
			t.Fatalf("size = %dx%d, want 5x4", f.Width, f.Height)
		}
		if f.Pix[0] != 30 || f.Pix[1] != 20 || f.Pix[2] != 10 {
			t.Errorf("first pixel = %v, want RGB 30,20,10", f.Pix[:4])
		}
	})

	t.Run("gray", func(t *testing.T) {
		mat := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV8UC1)
		defer mat.Close()
		f, err := FromMat(mat)
		if err != nil {
			t.Fatalf("FromMat() error = %v", err)
		}
		if len(f.Pix) != 3*3*4 {
			t.Errorf("len(Pix) = %d, want 36", len(f.Pix))
		}
	})

	t.Run("empty", func(t *testing.T) {
		mat := gocv.NewMat()
		defer mat.Close()
		if _, err := FromMat(mat); !errors.Is(err, ErrInvalidFrame) {
			t.Errorf("expected ErrInvalidFrame, got %v", err)
		}
	})
}

func TestFrameToMatRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping gocv test in short mode")
	}

	f := NewFrame(6, 4)
	f.Fill(0, 0, 3, 4, 200, 100, 50)

	mat, err := f.ToMat()
	if err != nil {
		t.Fatalf("ToMat() error = %v", err)
	}
	defer mat.Close()
	if mat.Type() != gocv.MatTypeCV8UC3 {
		t.Fatalf("mat type = %v, want CV8UC3", mat.Type())
	}

	back, err := FromMat(mat)
	if err != nil {
		t.Fatalf("FromMat() error = %v", err)
	}
	if back.Width != 6 || back.Height != 4 {
		t.Fatalf("size = %dx%d, want 6x4", back.Width, back.Height)
	}
	if back.Pix[0] != 200 || back.Pix[1] != 100 || back.Pix[2] != 50 {
		t.Errorf("first pixel = %v, want RGB 200,100,50", back.Pix[:4])
	}

	if _, err := (Frame{Width: 1, Height: 1}).ToMat(); !errors.Is(err, ErrInvalidFrame) {
		t.Errorf("expected ErrInvalidFrame for a tiny frame, got %v", err)
	}
}
