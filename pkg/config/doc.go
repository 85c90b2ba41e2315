// Package config loads typed configuration from environment variables.
//
// Each package of the module owns an env-tagged Config struct with defaults
// (auth.Config, userstore.Config, session.Config, pg.Config, ...). Binaries
// call Load for each of them; parsing is delegated to caarlos0/env and the
// optional .env file is read through joho/godotenv.
//
//	var storeCfg userstore.Config
//	config.MustLoad(&storeCfg)
package config
