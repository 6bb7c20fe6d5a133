// Package config loads opkscan settings with Viper from built-in defaults, an
// optional TOML file and OPKSCAN_* environment variables, in increasing
// precedence. Command-line overrides are applied last.
//
// The file is read from --config when given, otherwise from
// $XDG_CONFIG_HOME/opkscan/config.toml (~/.config/opkscan/config.toml) if it
// exists.
package config
