package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gocv.io/x/gocv"

	"github.com/debashis65/EkkalavyaAI-sub002/internal/logging"
	"github.com/debashis65/EkkalavyaAI-sub002/internal/room"
	"github.com/debashis65/EkkalavyaAI-sub002/internal/vision"
)

type roomOutput struct {
	Constraints room.Constraints `json:"constraints"`
	Pattern     string           `json:"pattern,omitempty"`
	Markers     []room.Marker    `json:"markers,omitempty"`
}

func newRoomCommand(ctx *commandContext) *cobra.Command {
	var imagePath string
	var pattern string
	var canvas string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "room",
		Short: "Analyze a room image into training constraints",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(imagePath) == "" {
				return errors.New("--image is required")
			}

			width, height := cfg.Camera.CanvasWidth, cfg.Camera.CanvasHeight
			if canvas != "" {
				if width, height, err = parseCanvas(canvas); err != nil {
					return err
				}
			}

			img := gocv.IMRead(imagePath, gocv.IMReadColor)
			if img.Empty() {
				img.Close()
				return fmt.Errorf("could not read image %s", imagePath)
			}
			defer img.Close()

			frame, err := vision.FromMat(img)
			if err != nil {
				return err
			}

			detector := room.NewDetector(cfg.Room, logging.L())
			session := room.NewSession(detector, room.WithCanvas(width, height))
			c, err := session.Analyze(frame)
			if err != nil {
				return err
			}

			out := roomOutput{Constraints: c}
			if pattern != "" {
				markers, err := session.SelectPattern(pattern)
				if err != nil {
					return err
				}
				out.Pattern = session.Pattern()
				out.Markers = markers
			}

			if jsonOutput {
				return writeJSON(cmd, out)
			}
			printRoom(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&imagePath, "image", "i", "", "Room image file")
	cmd.Flags().StringVarP(&pattern, "pattern", "p", "", "Training pattern to lay out")
	cmd.Flags().StringVar(&canvas, "canvas", "", "Marker canvas size as WIDTHxHEIGHT (defaults to camera.canvas_*)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func parseCanvas(value string) (int, int, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(value)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid canvas %q: want WIDTHxHEIGHT", value)
	}
	width, err := strconv.Atoi(w)
	if err != nil || width <= 0 {
		return 0, 0, fmt.Errorf("invalid canvas width %q", w)
	}
	height, err := strconv.Atoi(h)
	if err != nil || height <= 0 {
		return 0, 0, fmt.Errorf("invalid canvas height %q", h)
	}
	return width, height, nil
}

func printRoom(out io.Writer, r roomOutput) {
	c := r.Constraints
	colorize := shouldColorize(out)

	detected := statusOK
	if !c.Detected {
		detected = statusWarn
	}
	fmt.Fprintln(out, renderStatusLine("Floor detected", detected, yesNo(c.Detected), colorize))
	fmt.Fprintln(out, renderStatusLine("Safety", scoreKind(c.SafetyScore), fmt.Sprintf("%.0f/100", c.SafetyScore), colorize))
	fmt.Fprintln(out, renderStatusLine("Room mode", statusInfo, yesNo(c.IsRoomMode), colorize))

	rows := [][]string{
		{"Room", fmt.Sprintf("%.2f x %.2f m", c.Dimensions.Width, c.Dimensions.Height), fmt.Sprintf("%.2f m2", c.Dimensions.Area)},
		{"Usable", fmt.Sprintf("%.2f x %.2f m", c.UsableArea.Width, c.UsableArea.Height), fmt.Sprintf("%.2f m2", c.UsableArea.Area)},
		{"Ceiling", fmt.Sprintf("%.2f m", c.CeilingHeight), ""},
		{"Walls (L/R/F/B)", fmt.Sprintf("%.2f / %.2f / %.2f / %.2f m",
			c.WallProximity[room.WallLeft], c.WallProximity[room.WallRight],
			c.WallProximity[room.WallFront], c.WallProximity[room.WallBack]), ""},
		{"Floor flatness", fmt.Sprintf("%.4f", c.FloorFlatness), ""},
	}
	fmt.Fprintln(out, renderTable([]string{"Measure", "Value", "Area"}, rows, nil))
	fmt.Fprintf(out, "Recommended patterns: %s\n", strings.Join(c.RecommendedPatterns, ", "))

	if r.Pattern == "" {
		return
	}
	markerRows := make([][]string, 0, len(r.Markers))
	for _, m := range r.Markers {
		markerRows = append(markerRows, []string{
			m.ID,
			string(m.Type),
			fmt.Sprintf("%.0f", m.Position.X),
			fmt.Sprintf("%.0f", m.Position.Y),
			yesNo(m.Active),
		})
	}
	fmt.Fprintf(out, "Markers for %s:\n", r.Pattern)
	fmt.Fprintln(out, renderTable(
		[]string{"ID", "Type", "X", "Y", "Active"},
		markerRows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	))
}
