// Package config loads application configuration from config.yaml, an
// optional .env file and TENXCARDS_ prefixed environment variables, and
// validates it with struct tags.
package config
