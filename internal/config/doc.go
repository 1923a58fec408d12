// Package config loads, normalizes, and validates workshopdl configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files (YAML is accepted when the file extension says
// so), and honours environment fallbacks such as STEAMCMD_PATH. The Config
// type centralizes every knob the CLI needs so subcommands receive sanitized
// paths and clear validation errors in one pass.
package config
