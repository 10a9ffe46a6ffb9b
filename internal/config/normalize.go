package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePortal()
	c.normalizeConversion()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.GridPath, err = expandPath(c.Paths.GridPath); err != nil {
		return fmt.Errorf("paths.grid_path: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.ScratchDir, err = expandPath(c.Paths.ScratchDir); err != nil {
		return fmt.Errorf("paths.scratch_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.GridNameProperty) == "" {
		c.Paths.GridNameProperty = defaultGridNameProperty
	}
	return nil
}

func (c *Config) normalizePortal() {
	c.Portal.URL = strings.TrimSpace(c.Portal.URL)
	if c.Portal.URL == "" {
		c.Portal.URL = defaultPortalURL
	}
	c.Portal.Product = strings.ToLower(strings.TrimSpace(c.Portal.Product))
	if c.Portal.Product == "" {
		c.Portal.Product = defaultProduct
	}
	c.Portal.Year = strings.ToLower(strings.TrimSpace(c.Portal.Year))
	if c.Portal.Year == "" {
		c.Portal.Year = defaultYear
	}
	if c.Portal.StepTimeout <= 0 {
		c.Portal.StepTimeout = defaultStepTimeout
	}
	c.Portal.BrowserBinary = strings.TrimSpace(c.Portal.BrowserBinary)
}

func (c *Config) normalizeConversion() {
	c.Conversion.GDALBinary = strings.TrimSpace(c.Conversion.GDALBinary)
	if c.Conversion.GDALBinary == "" {
		c.Conversion.GDALBinary = defaultGDALBinary
	}
	if c.Conversion.BlockSize <= 0 {
		c.Conversion.BlockSize = defaultCOGBlockSize
	}
	c.Conversion.Compression = strings.ToUpper(strings.TrimSpace(c.Conversion.Compression))
	if c.Conversion.Compression == "" {
		c.Conversion.Compression = defaultCOGCompression
	}
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
