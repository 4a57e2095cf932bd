// Package config provides application configuration loaded from environment
// variables (prefix NSE) merged over an optional YAML file, plus centralized
// filesystem path resolution for the data and logs directories.
package config
