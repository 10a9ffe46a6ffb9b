package main

import (
	"log/slog"
	"strings"
	"sync"

	"tilefetch/internal/config"
	"tilefetch/internal/logging"
	"tilefetch/internal/tilegrid"
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
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) newLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.NewForDir(cfg.Paths.LogDir, cfg.Logging.Level, cfg.Logging.Format)
}

func (c *commandContext) loadGrid() (*tilegrid.Index, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return tilegrid.Load(cfg.Paths.GridPath, cfg.Paths.GridNameProperty)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
