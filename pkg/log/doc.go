// Package log provides the structured logging used throughout tronkit.
//
// The Logger interface is implemented by ZapLogger (console, logfmt or json
// output), NoopLogger and SpanLogger, which mirrors entries onto an
// OpenTelemetry span. Loggers travel through a context.Context:
//
//	ctx = log.SetContextLogger(ctx, logger)
//	log.FromContext(ctx).Info("transaction broadcast", "txId", id)
//
// Values logged under keys that look like key material (privateKey,
// mnemonic, passphrase, apiKey, ...) are always replaced with RedactedValue.
package log
