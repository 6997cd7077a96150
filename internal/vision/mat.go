package vision

import (
	"fmt"

	"gocv.io/x/gocv"
)

// FromMat converts an 8-bit gray, BGR or BGRA Mat into an RGBA frame.
func FromMat(mat gocv.Mat) (Frame, error) {
	if mat.Empty() {
		return Frame{}, fmt.Errorf("%w: empty mat", ErrInvalidFrame)
	}

	var code gocv.ColorConversionCode
	switch mat.Type() {
	case gocv.MatTypeCV8UC1:
		code = gocv.ColorGrayToBGRA
	case gocv.MatTypeCV8UC3:
		code = gocv.ColorBGRToRGBA
	case gocv.MatTypeCV8UC4:
		code = gocv.ColorBGRAToRGBA
	default:
		return Frame{}, fmt.Errorf("%w: unsupported mat type %v", ErrInvalidFrame, mat.Type())
	}

	rgba := gocv.NewMat()
	defer rgba.Close()
	gocv.CvtColor(mat, &rgba, code)
	if rgba.Empty() {
		return Frame{}, fmt.Errorf("%w: color conversion failed", ErrInvalidFrame)
	}

	f := Frame{Width: rgba.Cols(), Height: rgba.Rows(), Pix: rgba.ToBytes()}
	if err := f.Validate(); err != nil {
		return Frame{}, err
	}
	return f, nil
}

// ToMat converts a frame into a BGR Mat, the layout cameras deliver. The caller
// must Close it.
func (f Frame) ToMat() (gocv.Mat, error) {
	if err := f.Validate(); err != nil {
		return gocv.Mat{}, err
	}
	rgba, err := gocv.NewMatFromBytes(f.Height, f.Width, gocv.MatTypeCV8UC4, f.Pix)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("wrap frame: %w", err)
	}
	defer rgba.Close()

	bgr := gocv.NewMat()
	gocv.CvtColor(rgba, &bgr, gocv.ColorRGBAToBGR)
	return bgr, nil
}
