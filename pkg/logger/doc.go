// Package logger provides a small factory over log/slog with sensible
// defaults for services: JSON output at info level unless configured
// otherwise, with static attributes attached to every record.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithProduction("roomkit"),
//	    logger.WithAttr(slog.String("instance", instanceID)),
//	)
//	log.Info("listener started")
//
// WithDevelopment switches to text output at debug level for local work.
package logger
