// Package config loads, normalizes, and validates the tilefetch TOML
// configuration. Loading applies repository defaults first, so a missing
// config file still yields a usable configuration.
package config
