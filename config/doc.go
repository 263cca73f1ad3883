// Package config loads service configuration from a YAML file, an optional
// .env file and the process environment.
//
// It uses Viper to read and merge the sources and godotenv for .env files.
//
// # Usage
//
//	var cfg Config
//	err := config.LoadConfig("tabkit", &cfg, config.WithConfigFile(path))
//
// Environment variables override file values using the service prefix and
// underscore-separated paths (e.g., TABKIT_BUS_BACKEND=kafka).
package config
