package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/debashis65/EkkalavyaAI-sub002/internal/app"
	"github.com/debashis65/EkkalavyaAI-sub002/internal/biomech"
	"github.com/debashis65/EkkalavyaAI-sub002/internal/capture"
	"github.com/debashis65/EkkalavyaAI-sub002/internal/logging"
	"github.com/debashis65/EkkalavyaAI-sub002/internal/pose"
	"github.com/debashis65/EkkalavyaAI-sub002/internal/room"
	"github.com/debashis65/EkkalavyaAI-sub002/internal/store"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var sportName string
	var pattern string
	var device int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Analyze the live camera feed",
		Long: `Analyze the live camera feed until interrupted.

Every frame is scored for the selected sport. The room is analyzed on the
first frame and again whenever the scene changes, and each analysis is
recorded under a new session in the database.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if sportName == "" {
				sportName = cfg.Analysis.Sport
			}
			camCfg := capture.Config{
				Device: cfg.Camera.Device,
				FPS:    cfg.Camera.FPS,
				Width:  cfg.Camera.Width,
				Height: cfg.Camera.Height,
			}
			if cmd.Flags().Changed("device") {
				camCfg.Device = device
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return ctx.withStore(func(st *store.Store) error {
				reg, err := ctx.registry(st)
				if err != nil {
					return err
				}
				analyzer, err := biomech.NewAnalyzer(reg)
				if err != nil {
					return err
				}

				provider, err := pose.NewMediaPipeProvider(cfg.PoseConfig())
				if err != nil {
					return fmt.Errorf("pose provider: %w", err)
				}

				session := room.NewSession(
					room.NewDetector(cfg.Room, logging.L()),
					room.WithCanvas(cfg.Camera.CanvasWidth, cfg.Camera.CanvasHeight),
				)
				printer := newReportPrinter(cmd.OutOrStdout(), jsonOutput)

				pipeline, err := app.New(app.Config{
					Sport:    sportName,
					Camera:   capture.NewCamera(camCfg),
					Monitor:  capture.NewSceneMonitor(cfg.Scene.ChangeThreshold, cfg.Scene.BlurSize),
					Provider: provider,
					Analyzer: analyzer,
					Session:  session,
					Recorder: st.Sessions(),
					Logger:   logging.L(),
					OnReport: func(r app.Report) {
						if r.RoomUpdated && pattern != "" {
							if _, err := session.SelectPattern(pattern); err != nil {
								logging.Warn("marker layout failed", "pattern", pattern, "error", err)
							}
						}
						printer.print(r, session.Markers())
					},
				})
				if err != nil {
					provider.Close()
					return err
				}
				defer pipeline.Close()

				if err := st.Sessions().Create(&store.Session{ID: session.ID(), Sport: pipeline.Sport()}); err != nil {
					return fmt.Errorf("record session: %w", err)
				}
				logging.Info("session started", "session", session.ID(), "sport", pipeline.Sport(), "device", camCfg.Device)

				return pipeline.Run(runCtx)
			})
		},
	}

	cmd.Flags().StringVarP(&sportName, "sport", "s", "", "Sport to score (defaults to analysis.sport)")
	cmd.Flags().StringVarP(&pattern, "pattern", "p", "", "Training pattern to lay out after each room analysis")
	cmd.Flags().IntVarP(&device, "device", "d", 0, "Camera device index (defaults to camera.device)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit one JSON report per line")
	return cmd
}

type liveReport struct {
	app.Report
	Markers []room.Marker `json:"markers,omitempty"`
}

type reportPrinter struct {
	out      io.Writer
	enc      *json.Encoder
	colorize bool
}

func newReportPrinter(out io.Writer, jsonOutput bool) *reportPrinter {
	p := &reportPrinter{out: out, colorize: shouldColorize(out)}
	if jsonOutput {
		p.enc = json.NewEncoder(out)
	}
	return p
}

func (p *reportPrinter) print(r app.Report, markers []room.Marker) {
	if p.enc != nil {
		if err := p.enc.Encode(liveReport{Report: r, Markers: markers}); err != nil {
			logging.Warn("failed to write report", "frame", r.Frame, "error", err)
		}
		return
	}

	if r.RoomUpdated && r.Constraints != nil {
		c := r.Constraints
		msg := fmt.Sprintf("usable %.1fx%.1f m, patterns %s", c.UsableArea.Width, c.UsableArea.Height,
			strings.Join(c.RecommendedPatterns, ", "))
		fmt.Fprintln(p.out, renderStatusLine(fmt.Sprintf("Room (safety %.0f)", c.SafetyScore), scoreKind(c.SafetyScore), msg, p.colorize))
		if len(markers) > 0 {
			fmt.Fprintln(p.out, renderStatusLine("Markers", statusInfo, fmt.Sprintf("%d placed", len(markers)), p.colorize))
		}
	}

	label := fmt.Sprintf("Frame %d", r.Frame)
	switch {
	case r.Motion != nil:
		msg := fmt.Sprintf("%s %.1f", r.Motion.Sport, r.Motion.Score)
		if len(r.Motion.Feedback) > 0 {
			msg += ": " + r.Motion.Feedback[0]
		}
		fmt.Fprintln(p.out, renderStatusLine(label, scoreKind(r.Motion.Score), msg, p.colorize))
	case r.MotionError != "":
		fmt.Fprintln(p.out, renderStatusLine(label, statusWarn, r.MotionError, p.colorize))
	default:
		fmt.Fprintln(p.out, renderStatusLine(label, statusInfo, "no pose", p.colorize))
	}

	if !r.Safety.Safe {
		for _, w := range r.Safety.Warnings {
			fmt.Fprintln(p.out, renderStatusLine("Safety", statusError, w, p.colorize))
		}
	}
}
