package main

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/protodoc/pkg/config"
	"github.com/platinummonkey/protodoc/pkg/observability"
	"github.com/platinummonkey/protodoc/pkg/plugin"
)

// protoc-gen-protodoc is invoked by protoc with a CodeGeneratorRequest on
// stdin. Logs go to stderr since stdout carries the response.
func main() {
	logger := setupLogger()

	ctx := observability.WithRunID(context.Background(), uuid.NewString())
	ctx = observability.WithLogger(ctx, logger)

	if err := plugin.Run(ctx, os.Stdin, os.Stdout, observability.FromContext(ctx)); err != nil {
		logger.Fatalf("protoc-gen-protodoc: %v", err)
	}
}

// setupLogger uses the configured log settings, falling back to info level
// text when the configuration is invalid. Configuration errors themselves
// are reported to protoc by the plugin.
func setupLogger() *logrus.Logger {
	level, format := "info", observability.FormatText
	if cfg, err := config.LoadConfig(); err == nil {
		level, format = cfg.Observability.LogLevel, cfg.Observability.LogFormat
	}

	logger, err := observability.NewLogger(level, format, os.Stderr)
	if err != nil {
		logger = logrus.New()
		logger.SetOutput(os.Stderr)
	}
	return logger
}
