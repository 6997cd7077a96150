package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/debashis65/EkkalavyaAI-sub002/internal/logging"
	"github.com/debashis65/EkkalavyaAI-sub002/internal/pose"
	"github.com/debashis65/EkkalavyaAI-sub002/internal/room"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file locations.
type Paths struct {
	DBPath string `toml:"db_path"`
	// ProfilesFile is an optional TOML catalog of extra or overriding sport profiles.
	ProfilesFile string `toml:"profiles_file"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Camera contains capture and marker canvas settings.
type Camera struct {
	Device       int `toml:"device"`
	FPS          int `toml:"fps"`
	Width        int `toml:"width"`
	Height       int `toml:"height"`
	CanvasWidth  int `toml:"canvas_width"`
	CanvasHeight int `toml:"canvas_height"`
}

// Pose contains settings for the external pose-estimation service.
type Pose struct {
	ScriptPath         string  `toml:"script_path"`
	PythonPath         string  `toml:"python_path"`
	MinVisibility      float64 `toml:"min_visibility"`
	MinConfidence      float64 `toml:"min_confidence"`
	MinTrackingConf    float64 `toml:"min_tracking_confidence"`
	IdleTimeoutSeconds int     `toml:"idle_timeout_seconds"`
}

// Analysis selects what the live pipeline scores.
type Analysis struct {
	Sport string `toml:"sport"`
}

// Scene controls when the room is re-analyzed during a live run.
type Scene struct {
	// ChangeThreshold is the percentage of pixels that must change between
	// frames before the room is analyzed again.
	ChangeThreshold float64 `toml:"change_threshold"`
	BlurSize        int     `toml:"blur_size"`
}

// Config encapsulates all configuration values for ekkalavya.
//
// Configuration sections:
//   - Paths: profile database and extra sport catalog
//   - Logging: log format and level
//   - Camera: capture device and marker canvas
//   - Pose: pose-estimation service
//   - Analysis: sport scored by the live pipeline
//   - Scene: room re-analysis trigger
//   - Room: room-analysis policy constants
type Config struct {
	Paths    Paths       `toml:"paths"`
	Logging  Logging     `toml:"logging"`
	Camera   Camera      `toml:"camera"`
	Pose     Pose        `toml:"pose"`
	Analysis Analysis    `toml:"analysis"`
	Scene    Scene       `toml:"scene"`
	Room     room.Policy `toml:"room"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Paths: Paths{
			DBPath: defaultDBPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Camera: Camera{
			Device:       defaultCameraDevice,
			FPS:          defaultCameraFPS,
			Width:        defaultCameraWidth,
			Height:       defaultCameraHeight,
			CanvasWidth:  defaultCanvasWidth,
			CanvasHeight: defaultCanvasHeight,
		},
		Pose: Pose{
			MinVisibility:      defaultMinVisibility,
			MinConfidence:      defaultMinConfidence,
			MinTrackingConf:    defaultMinTracking,
			IdleTimeoutSeconds: defaultPoseIdleSeconds,
		},
		Analysis: Analysis{
			Sport: defaultSport,
		},
		Scene: Scene{
			ChangeThreshold: defaultSceneThreshold,
			BlurSize:        defaultSceneBlurSize,
		},
		Room: room.DefaultPolicy(),
	}
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. It returns the
// config, the resolved path and whether a file existed there. A missing file is
// not an error; the defaults are used.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(defaultProjectConfig)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directory holding the profile database.
func (c *Config) EnsureDirectories() error {
	dir := filepath.Dir(c.Paths.DBPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}

// LoggingOptions returns the logger settings.
func (c *Config) LoggingOptions() logging.Options {
	return logging.Options{Level: c.Logging.Level, Format: c.Logging.Format}
}

// PoseConfig returns the pose-service settings.
func (c *Config) PoseConfig() pose.Config {
	return pose.Config{
		MinVisibility:   c.Pose.MinVisibility,
		MinConfidence:   c.Pose.MinConfidence,
		MinTrackingConf: c.Pose.MinTrackingConf,
		ScriptPath:      c.Pose.ScriptPath,
		PythonPath:      c.Pose.PythonPath,
		IdleTimeout:     time.Duration(c.Pose.IdleTimeoutSeconds) * time.Second,
	}
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
