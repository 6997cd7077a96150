package room

import (
	"fmt"
	"math"

	"github.com/debashis65/EkkalavyaAI-sub002/internal/pose"
)

// SafetyReport is the live safety verdict for one pose.
type SafetyReport struct {
	Safe     bool     `json:"safe"`
	Warnings []string `json:"warnings"`
}

// ValidatePose checks a pose against the analyzed room.
//
// Validation fails open: with no constraints the pose is reported safe with no
// warnings.
//
// Joint x positions are mapped onto the assumed horizontal field of view and
// flagged when further from the center than half the usable width. The head is
// flagged when it rises above the ceiling clearance line.
func (p Policy) ValidatePose(landmarks pose.LandmarkMap, c *Constraints) SafetyReport {
	report := SafetyReport{Safe: true, Warnings: []string{}}
	if c == nil {
		return report
	}

	halfWidth := c.UsableArea.Width / 2
	for _, j := range landmarks.Joints() {
		offset := math.Abs(landmarks[j].X-0.5) * p.Plane.FOVWidth
		if offset > halfWidth {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("%s is outside the safe area (%.1fm from center)", j, offset))
		}
	}

	if nose, ok := landmarks[pose.Nose]; ok && nose.Y < p.HeadClearanceY {
		report.Warnings = append(report.Warnings, "Head is close to the ceiling; lower jumps or reaches")
	}
	if c.SafetyScore < p.MinSafetyScore {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("Room safety score is low (%.0f); train with extra care", c.SafetyScore))
	}
	if c.MinWall() < p.WallWarnDistance {
		report.Warnings = append(report.Warnings, "A wall is very close; move toward the center of the room")
	}

	report.Safe = len(report.Warnings) == 0
	return report
}
