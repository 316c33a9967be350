// Package logging provides structured logging for ThermalView Core,
// built on log/slog. Every entry carries the service name and build
// version; format (json/text), destination (stdout/stderr), and level
// come from the logging section of config.yaml.
//
// Never log secrets, tokens, or broker passwords.
package logging
