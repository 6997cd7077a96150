// Package config loads ekkalavya's TOML configuration.
//
// A config file is optional: Load starts from Default, overlays whatever keys
// the file sets, then normalizes and validates the result. The [room] section
// overlays the room-analysis policy key by key, so a file only needs the
// constants it changes.
package config
