// Package httpserver wraps net/http.Server with graceful shutdown on
// SIGINT/SIGTERM or context cancellation, option-based configuration, and
// start/stop hooks for logging.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server failed", logger.Error(err))
//	}
package httpserver
