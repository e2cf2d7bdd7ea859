// Package config handles configuration loading, parsing, and validation
// from environment variables (ATM_ prefix) and an optional YAML file. It
// provides type-safe access to terminal, remote API and reader settings
// while keeping configuration details separate from the session logic.
package config
