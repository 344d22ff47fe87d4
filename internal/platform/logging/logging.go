// Package logging builds the process logger. Records are JSON in the ECS field
// layout so application and request logs share one schema.
package logging

import (
	"io"
	"log/slog"

	"github.com/go-chi/httplog/v3"
)

const appName = "hrmpay"

// Schema is the request log layout shared with the httplog middleware.
var Schema = httplog.SchemaECS.Concise(false)

func New(w io.Writer, level slog.Level, environment string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: Schema.ReplaceAttr,
	})
	return slog.New(handler).With(
		slog.String("app", appName),
		slog.String("env", environment),
	)
}
