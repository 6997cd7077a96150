package app

import (
	"context"
	"errors"
	"time"

	"gocv.io/x/gocv"
	"golang.org/x/sync/errgroup"

	"github.com/debashis65/EkkalavyaAI-sub002/internal/capture"
	"github.com/debashis65/EkkalavyaAI-sub002/internal/pose"
	"github.com/debashis65/EkkalavyaAI-sub002/internal/vision"
)

// ErrEmptyFrame is returned by ProcessFrame for a nil or empty frame.
var ErrEmptyFrame = errors.New("empty frame")

// ProcessFrame runs one frame through the pipeline.
//
// Pipeline logic:
// 1. Compare the frame with the scene the room was last analyzed on
// 2. If there is no analysis yet or the scene changed, analyze the room
// 3. At the same time, detect the pose and score it for the sport
// 4. Validate the pose against the current room
//
// A failing branch is logged and reported; it never fails the frame or touches
// the session's current constraints.
func (p *Pipeline) ProcessFrame(ctx context.Context, frame *gocv.Mat) (Report, error) {
	if frame == nil || frame.Empty() {
		return Report{}, ErrEmptyFrame
	}

	p.mu.Lock()
	p.frames++
	report := Report{Frame: p.frames, Timestamp: time.Now()}
	p.mu.Unlock()

	_, analyzed := p.session.Constraints()
	changed, percent := p.monitor.Changed(frame)
	report.ChangePercent = percent
	needRoom := !analyzed || changed

	var landmarks pose.LandmarkMap
	g, gctx := errgroup.WithContext(ctx)

	if needRoom {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p.analyzeRoom(frame, &report)
			return nil
		})
	}

	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		landmarks = p.analyzeMotion(frame, &report)
		return nil
	})

	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	if c, ok := p.session.Constraints(); ok && report.Constraints == nil {
		report.Constraints = &c
	}
	if landmarks != nil {
		report.Safety = p.session.ValidatePose(landmarks)
		if !report.Safety.Safe {
			p.logger.Warn("unsafe pose", "frame", report.Frame, "warnings", report.Safety.Warnings)
		}
	} else {
		report.Safety = p.session.ValidatePose(nil)
	}

	return report, nil
}

// analyzeRoom writes only the room fields of report.
func (p *Pipeline) analyzeRoom(frame *gocv.Mat, report *Report) {
	f, err := vision.FromMat(*frame)
	if err != nil {
		p.logger.Warn("frame conversion failed", "frame", report.Frame, "error", err)
		report.RoomError = err.Error()
		return
	}

	c, err := p.session.Analyze(f)
	if err != nil {
		report.RoomError = err.Error()
		return
	}
	p.monitor.Rebase(frame)

	report.RoomUpdated = true
	report.Constraints = &c

	if p.recorder != nil {
		if _, err := p.recorder.RecordAnalysis(p.session.ID(), p.session.AnalyzedAt(), c); err != nil {
			p.logger.Warn("failed to record room analysis", "error", err)
		}
	}
}

// analyzeMotion writes only the motion fields of report and returns the
// detected landmarks, or nil.
func (p *Pipeline) analyzeMotion(frame *gocv.Mat, report *Report) pose.LandmarkMap {
	landmarks, ok, err := p.provider.Detect(frame)
	if err != nil {
		p.logger.Warn("pose detection failed", "frame", report.Frame, "error", err)
		report.MotionError = err.Error()
		return nil
	}
	if !ok {
		return nil
	}
	report.PoseDetected = true

	result, err := p.analyzer.Analyze(landmarks, p.sport)
	if err != nil {
		p.logger.Debug("motion analysis skipped", "frame", report.Frame, "error", err)
		report.MotionError = err.Error()
		return landmarks
	}
	report.Motion = result
	return landmarks
}

// Run opens the camera and processes frames at the camera's frame rate until
// ctx is cancelled or a finite source runs out. Read and processing errors
// skip the frame.
func (p *Pipeline) Run(ctx context.Context) error {
	if err := p.camera.Open(); err != nil {
		return err
	}
	defer func() {
		if err := p.camera.Close(); err != nil {
			p.logger.Warn("error closing camera", "error", err)
		}
	}()

	fps := p.camera.FPS()
	if fps <= 0 {
		fps = capture.DefaultFPS
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	p.logger.Info("pipeline started", "fps", fps)
	defer p.logger.Info("pipeline stopped")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		frame, err := p.camera.ReadFrame()
		if err != nil {
			if errors.Is(err, capture.ErrEndOfStream) {
				return nil
			}
			p.logger.Warn("error reading frame", "error", err)
			continue
		}

		report, err := p.ProcessFrame(ctx, frame)
		frame.Close()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.logger.Warn("frame skipped", "error", err)
			continue
		}

		if p.onReport != nil {
			p.onReport(report)
		}
	}
}
