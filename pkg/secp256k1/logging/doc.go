// Package logging provides the small logging facade used by the secp256k1
// adapters.
//
// Logger wraps the subset of log/slog that the adapters need. Applications
// can pass their own implementation for testing or redaction:
//
//	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})
//	secp256k1.SetLogger(logging.New(slog.New(handler)))
//
// Key material is never logged. Use Redacted to record that a value was
// intentionally left out:
//
//	logger.Debug(ctx, "imported key", logging.Redacted("scalar"))
//	// scalar="[redacted]"
package logging
