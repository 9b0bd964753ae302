// Package logging builds the service's slog logger.
//
// Loggers write JSON or text, carry the request ID stored in a record's
// context, and mask API keys and bearer tokens in attribute values. The
// minimum level can be changed at runtime, which the configuration watcher
// uses on reload.
//
//	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging))
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger.Logger)
//
//	ctx = logging.WithRequestID(ctx, id)
//	logger.InfoContext(ctx, "completion served", "provider", "deepseek")
package logging
