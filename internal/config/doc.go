// Package config loads and merges devboot configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (DEVBOOT_PACKAGE_MANAGER, DEVBOOT_PROFILE, etc.)
//  3. Config file ($XDG_CONFIG_HOME/devboot/config.json)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged [Config], [Save] to write the config file,
// and [SetField] to update a single key.
package config
