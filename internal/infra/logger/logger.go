package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"scholarship_admin/internal/infra/config"
)

// ServiceName is attached to every entry handed out by Component.
const ServiceName = "scholarshipd"

// Log is the global logger instance
var Log = logrus.New()

// Init configures the global logger from cfg and writes to stdout.
func Init(cfg *config.AppConfig) {
	Configure(Log, cfg, os.Stdout)
	Log.WithFields(logrus.Fields{
		"level":       Log.GetLevel().String(),
		"environment": cfg.Environment,
	}).Info("Logger initialized")
}

// Configure applies level and format to l. An unknown level falls back to info.
// Production and staging get JSON; everything else gets coloured text.
func Configure(l *logrus.Logger, cfg *config.AppConfig, out io.Writer) {
	l.SetOutput(out)

	level, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.LogLevel)))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	switch strings.ToLower(cfg.Environment) {
	case "production", "staging":
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00", // ISO8601
			FieldMap:        logrus.FieldMap{logrus.FieldKeyMsg: "message"},
		})
	default:
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			ForceColors:     true,
		})
	}

	if err != nil {
		l.WithField("requested", cfg.LogLevel).Warn("Invalid log level, using info")
	}
}

// Component returns an entry tagged with the service and component name.
func Component(name string) *logrus.Entry {
	return Log.WithFields(logrus.Fields{"service": ServiceName, "component": name})
}
