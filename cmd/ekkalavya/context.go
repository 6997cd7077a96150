package main

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/debashis65/EkkalavyaAI-sub002/internal/config"
	"github.com/debashis65/EkkalavyaAI-sub002/internal/logging"
	"github.com/debashis65/EkkalavyaAI-sub002/internal/sport"
	"github.com/debashis65/EkkalavyaAI-sub002/internal/store"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		if err := logging.Init(cfg.LoggingOptions()); err != nil {
			c.configErr = fmt.Errorf("init logging: %w", err)
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) withStore(fn func(*store.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	st, err := store.New(cfg.Paths.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()
	return fn(st)
}

// registry layers the built-in profiles, the configured catalog file and the
// stored profiles, later sources overriding earlier ones.
func (c *commandContext) registry(st *store.Store) (*sport.Registry, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	var extra []sport.Profile
	if path := cfg.Paths.ProfilesFile; path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read profiles file: %w", err)
		}
		profiles, err := sport.ParseCatalog(data)
		if err != nil {
			return nil, fmt.Errorf("profiles file %s: %w", path, err)
		}
		extra = append(extra, profiles...)
	}

	if st != nil {
		stored, err := st.Profiles().List()
		if err != nil {
			return nil, fmt.Errorf("list stored profiles: %w", err)
		}
		extra = append(extra, stored...)
	}

	return sport.NewDefaultRegistry(extra...)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
