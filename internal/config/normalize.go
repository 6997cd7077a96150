package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/debashis65/EkkalavyaAI-sub002/internal/sport"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizePose(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.Analysis.Sport = sport.NormalizeName(c.Analysis.Sport)
	if c.Analysis.Sport == "" {
		c.Analysis.Sport = defaultSport
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if value, ok := os.LookupEnv("EKKALAVYA_DB"); ok && strings.TrimSpace(value) != "" {
		c.Paths.DBPath = value
	}
	if strings.TrimSpace(c.Paths.DBPath) == "" {
		c.Paths.DBPath = defaultDBPath
	}
	if c.Paths.DBPath, err = expandPath(c.Paths.DBPath); err != nil {
		return fmt.Errorf("paths.db_path: %w", err)
	}
	if c.Paths.ProfilesFile, err = expandPath(strings.TrimSpace(c.Paths.ProfilesFile)); err != nil {
		return fmt.Errorf("paths.profiles_file: %w", err)
	}
	return nil
}

func (c *Config) normalizePose() error {
	var err error
	if c.Pose.ScriptPath, err = expandPath(strings.TrimSpace(c.Pose.ScriptPath)); err != nil {
		return fmt.Errorf("pose.script_path: %w", err)
	}
	c.Pose.PythonPath = strings.TrimSpace(c.Pose.PythonPath)
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
