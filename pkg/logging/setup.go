package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/mubas-somase/voting-backend/pkg/env"
)

// Setup builds the process wide logger. Production logs are JSON, everything
// else is human readable text. The returned cleanup closes the log file, if any.
func Setup(mode env.Mode, path string) (*slog.Logger, func()) {
	var (
		w       io.Writer = os.Stdout
		cleanup           = func() {}
	)
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			w = io.MultiWriter(os.Stdout, f)
			cleanup = func() { _ = f.Close() }
		}
	}

	opts := &slog.HandlerOptions{
		Level:     mode.SlogLevel(),
		AddSource: mode == env.Prod,
	}

	var handler slog.Handler
	if mode == env.Prod {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler).With(slog.String("service", "somase-voting")), cleanup
}
