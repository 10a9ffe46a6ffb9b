package config

import (
	"errors"
	"fmt"
	"strconv"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePortal(); err != nil {
		return err
	}
	if err := c.validateRetry(); err != nil {
		return err
	}
	if err := c.validateGeometry(); err != nil {
		return err
	}
	if err := c.validateDownload(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePortal() error {
	if c.Portal.URL == "" {
		return errors.New("portal.url must be set")
	}
	switch c.Portal.Year {
	case "latest", "all":
	default:
		if _, err := strconv.Atoi(c.Portal.Year); err != nil {
			return fmt.Errorf("portal.year must be \"latest\", \"all\", or a year, got %q", c.Portal.Year)
		}
	}
	if c.Portal.StepTimeout <= 0 {
		return errors.New("portal.step_timeout must be positive")
	}
	return nil
}

func (c *Config) validateRetry() error {
	if c.Retry.MaxAttempts < 1 {
		return errors.New("retry.max_attempts must be at least 1")
	}
	if c.Retry.CooldownSeconds < 0 {
		return errors.New("retry.cooldown_seconds must not be negative")
	}
	if c.Retry.TilePauseSeconds < 0 {
		return errors.New("retry.tile_pause_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateGeometry() error {
	if c.Geometry.VertexLimit < 4 {
		return errors.New("geometry.vertex_limit must allow at least a closed ring")
	}
	return nil
}

func (c *Config) validateDownload() error {
	if c.Download.Timeout < 0 {
		return errors.New("download.timeout must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	return nil
}
