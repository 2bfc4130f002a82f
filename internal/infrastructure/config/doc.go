// Package config loads Hearthline Core's YAML configuration, applies
// HEARTH_* environment overrides, fills defaults, and validates the
// result once at startup.
//
// The config file is optional; without one the daemon runs on
// defaults. Secrets (broker password, InfluxDB token) are best passed
// through the environment, and the file itself should be mode 0600.
//
//	cfg, err := config.Load(*configPath)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Database.Path)
package config
