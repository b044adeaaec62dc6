// Package config loads application configuration from environment variables
// into tagged structs, backed by github.com/caarlos0/env and godotenv.
//
// Each configuration type is parsed once per process and cached; registry
// components declare their own Config structs and call Load at startup.
//
//	var cfg httpserver.Config
//	config.MustLoad(&cfg)
package config
