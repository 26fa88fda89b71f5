// Package config loads process configuration from a YAML file, an optional
// .env file and JOBGRAPH_* environment variables using viper.
//
//	var cfg MyConfig
//	err := config.Load("jobgraph", &cfg, config.WithConfigFile(path))
//	cfg.ApplyDefaults()
//	err = cfg.Validate()
//
// ServiceConfig carries the fields shared by every process and is meant to be
// embedded with mapstructure:",squash".
package config
