// Package testdata builds synthetic camera frames of rooms for tests.
package testdata

import "github.com/debashis65/EkkalavyaAI-sub002/internal/vision"

// Standard fixture size.
const (
	FrameWidth  = 320
	FrameHeight = 240
)

// CeilingEdgeRow is the row where StripedRoom's ceiling band ends.
const CeilingEdgeRow = 30

// FloorStripeRows are the rows where StripedRoom's floor stripes begin. They
// fall on the floor scanner's 10 px grid starting at 40% of the height and stay
// above the band sampled for floor flatness.
var FloorStripeRows = []int{106, 156}

// UniformRoom returns a frame of a single gray level. It has no edges at all, so
// no floor or ceiling can be found in it.
func UniformRoom(level uint8) vision.Frame {
	f := vision.NewFrame(FrameWidth, FrameHeight)
	f.Fill(0, 0, FrameWidth, FrameHeight, level, level, level)
	return f
}

// StripedRoom returns a mid-gray room with a dark ceiling band across the top
// and bright full-width floor stripes (like floorboards or court lines) in the
// lower part of the frame.
func StripedRoom() vision.Frame {
	f := vision.NewFrame(FrameWidth, FrameHeight)
	f.Fill(0, 0, FrameWidth, FrameHeight, 90, 85, 80)
	f.Fill(0, 0, FrameWidth, CeilingEdgeRow, 20, 20, 25)
	for _, y := range FloorStripeRows {
		f.Fill(0, y, FrameWidth, y+3, 210, 205, 200)
	}
	return f
}

// CrampedRoom returns a very bright, featureless frame. The brightness heuristic
// reads it as walls close on every side.
func CrampedRoom() vision.Frame {
	return UniformRoom(250)
}

// ClutteredFloor returns a room whose lower part alternates between plain and
// heavily textured rows, giving a rough floor.
func ClutteredFloor() vision.Frame {
	f := StripedRoom()
	for y := FrameHeight * 7 / 10; y < FrameHeight; y++ {
		if (y/8)%2 == 1 {
			continue
		}
		for x := 0; x < FrameWidth; x++ {
			if (x/2)%2 == 0 {
				f.Set(x, y, 255, 255, 255)
			} else {
				f.Set(x, y, 0, 0, 0)
			}
		}
	}
	return f
}
