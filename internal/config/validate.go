package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateCamera(); err != nil {
		return err
	}
	if err := c.validatePose(); err != nil {
		return err
	}
	if err := c.validateScene(); err != nil {
		return err
	}
	if err := c.Room.Validate(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "auto", "text", "json":
	default:
		return fmt.Errorf("logging.format must be auto, text or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateCamera() error {
	if c.Camera.Device < 0 {
		return errors.New("camera.device must be non-negative")
	}
	if c.Camera.FPS <= 0 {
		return errors.New("camera.fps must be positive")
	}
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		return errors.New("camera.width and camera.height must be positive")
	}
	if c.Camera.CanvasWidth <= 0 || c.Camera.CanvasHeight <= 0 {
		return errors.New("camera.canvas_width and camera.canvas_height must be positive")
	}
	return nil
}

func (c *Config) validatePose() error {
	thresholds := []struct {
		key   string
		value float64
	}{
		{"pose.min_visibility", c.Pose.MinVisibility},
		{"pose.min_confidence", c.Pose.MinConfidence},
		{"pose.min_tracking_confidence", c.Pose.MinTrackingConf},
	}
	for _, th := range thresholds {
		if th.value < 0 || th.value > 1 {
			return fmt.Errorf("%s must be between 0 and 1", th.key)
		}
	}
	if c.Pose.IdleTimeoutSeconds < 0 {
		return errors.New("pose.idle_timeout_seconds must be non-negative")
	}
	return nil
}

func (c *Config) validateScene() error {
	if c.Scene.ChangeThreshold <= 0 || c.Scene.ChangeThreshold > 100 {
		return errors.New("scene.change_threshold must be in (0, 100]")
	}
	if c.Scene.BlurSize <= 0 || c.Scene.BlurSize%2 == 0 {
		return errors.New("scene.blur_size must be a positive odd number")
	}
	return nil
}
