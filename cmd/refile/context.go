package main

import (
	"fmt"
	"strings"

	"refile/internal/config"
	"refile/internal/prefs"
)

// commandContext lazily loads configuration and the preference store so
// commands that never touch them stay cheap.
type commandContext struct {
	configFlag *string
	cfg        *config.Config
	store      *prefs.Store
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	path := ""
	if c.configFlag != nil {
		path = strings.TrimSpace(*c.configFlag)
	}
	cfg, _, _, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	c.cfg = cfg
	return cfg, nil
}

func (c *commandContext) close() {
	if c.store != nil {
		_ = c.store.Close()
		c.store = nil
	}
}

func (c *commandContext) ensureStore() (*prefs.Store, error) {
	if c.store != nil {
		return c.store, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := prefs.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open preference store: %w", err)
	}
	c.store = store
	return store, nil
}
