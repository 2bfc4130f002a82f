// Package logging configures the slog-based structured logger the
// daemon shares: level, JSON or text format, and output stream come
// from the logging section of the configuration, and every record
// carries the service name and build version.
//
//	log := logging.New(cfg.Logging, version)
//	log.Info("database connected", "path", cfg.Database.Path)
package logging
