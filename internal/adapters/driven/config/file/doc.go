// Package file persists sercha-scan settings as a TOML file in the state
// directory (config.toml, or $SERCHA_SCAN_HOME when set). Dotted keys such as
// "store.bucket" map to TOML tables.
package file
