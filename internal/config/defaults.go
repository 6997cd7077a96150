package config

const (
	defaultConfigPath      = "~/.config/ekkalavya/config.toml"
	defaultProjectConfig   = "ekkalavya.toml"
	defaultDBPath          = "~/.local/share/ekkalavya/ekkalavya.db"
	defaultLogFormat       = "auto"
	defaultLogLevel        = "info"
	defaultCameraDevice    = 0
	defaultCameraFPS       = 5
	defaultCameraWidth     = 640
	defaultCameraHeight    = 480
	defaultCanvasWidth     = 1280
	defaultCanvasHeight    = 720
	defaultSport           = "basketball"
	defaultMinVisibility   = 0.5
	defaultMinConfidence   = 0.5
	defaultMinTracking     = 0.5
	defaultPoseIdleSeconds = 30
	defaultSceneThreshold  = 20.0
	defaultSceneBlurSize   = 21
)
