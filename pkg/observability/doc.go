// Package observability provides structured logging and Prometheus metrics
// for protodoc runs.
//
// # Structured Logging
//
// Create logger:
//
//	logger, err := observability.NewLogger("info", observability.FormatText, os.Stderr)
//	logger.WithField("file", name).Warn("Bad RST")
//
// Attach a run ID so every line of one invocation can be correlated:
//
//	ctx = observability.WithLogger(ctx, logger)
//	ctx = observability.WithRunID(ctx, uuid.NewString())
//	observability.FromContext(ctx).Info("rendering")
//
// # Prometheus Metrics
//
// Metrics are collected in a private registry and written to a file in the
// text exposition format after each run, for the node exporter textfile
// collector:
//
//	metrics := observability.NewMetrics(nil)
//	metrics.RecordResults(results, time.Since(start))
//	if err := metrics.WriteTextfile("/var/lib/node_exporter/protodoc.prom"); err != nil {
//		return err
//	}
//
// # Related Packages
//
//   - pkg/config: Logging and metrics configuration
//   - pkg/cli: Commands that set up logging and metrics
package observability
