package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

var (
	mu     sync.RWMutex
	logger = newLogger(os.Stdout, zerolog.InfoLevel)
)

func newLogger(w io.Writer, lvl zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.TimestampFieldName = "ts"
	zerolog.ErrorFieldName = "err"
}

// SetOutput replaces the sink for every subsequent entry. level is parsed with
// zerolog.ParseLevel; unknown levels fall back to info.
func SetOutput(w io.Writer, level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	mu.Lock()
	logger = newLogger(w, lvl)
	mu.Unlock()
}

// Logger returns the current process logger for code that has no request.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func write(ev *zerolog.Event, c *fiber.Ctx, action string, fields map[string]any) {
	if c != nil {
		ev = ev.Str("ip", c.IP()).
			Str("method", c.Method()).
			Str("path", c.Path())
		if st := c.Response().StatusCode(); st != 0 {
			ev = ev.Int("status", st)
		}
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			ev = ev.Str("req_id", rid)
		}
	}
	if len(fields) > 0 {
		ev = ev.Interface("fields", fields)
	}
	ev.Str("action", action).Send()
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	l := Logger()
	write(l.Info(), c, action, fields)
}

// Audit records a state change made on behalf of a caller.
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	l := Logger()
	write(l.Info().Str("kind", "audit"), c, action, fields)
}

func Security(c *fiber.Ctx, action string, fields map[string]any) {
	l := Logger()
	write(l.Warn().Str("kind", "security"), c, action, fields)
}

func Warn(c *fiber.Ctx, action string, err error, fields map[string]any) {
	l := Logger()
	write(l.Warn().Err(err), c, action, fields)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	l := Logger()
	write(l.Error().Err(err), c, action, fields)
}

// AccessLog writes one http.access entry per request once the handler chain
// has produced a status.
func AccessLog() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// let the app error handler set the final status first
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		l := Logger()
		write(l.Info().Int64("latency_ms", time.Since(start).Milliseconds()), c, "http.access", nil)
		return nil
	}
}
