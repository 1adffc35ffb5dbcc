// Package config loads and validates histsync configuration.
//
// Configuration is read from the environment with the HISTSYNC_ prefix.
// Values may reference other environment variables with ${VAR} syntax,
// which is expanded strictly: a referenced variable that is missing from
// the environment is an error rather than an empty string.
//
// Quick start:
//
//	cfg, err := config.FromEnv()
//	if err != nil {
//		log.Fatal(err)
//	}
//	obs, err := observe.NewObserver(ctx, cfg.Observe)
package config
