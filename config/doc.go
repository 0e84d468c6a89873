// Package config loads hyperhttp configuration from YAML files and the
// environment. A config.yml provides the base values, a .env file fills the
// process environment, and HYPERHTTP_* variables override both.
//
//	var cfg client.Config
//	err := config.Load(&cfg, config.WithFile("config.yml"))
package config
