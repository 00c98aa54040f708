package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarship_admin/internal/infra/config"
)

func TestConfigureAppliesLevelAndFormat(t *testing.T) {
	l := logrus.New()
	var buf bytes.Buffer

	Configure(l, &config.AppConfig{LogLevel: "debug", Environment: "production"}, &buf)
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, l.Formatter)

	l.WithField("cycle_id", 7).Info("Cycle created")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Cycle created", entry["message"])
	assert.Equal(t, float64(7), entry["cycle_id"])
}

func TestConfigureFallsBackToInfo(t *testing.T) {
	l := logrus.New()
	var buf bytes.Buffer

	Configure(l, &config.AppConfig{LogLevel: "loud", Environment: "development"}, &buf)
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, l.Formatter)
	assert.Contains(t, buf.String(), "Invalid log level")
}

func TestComponentTagsEntry(t *testing.T) {
	e := Component("scheduler")
	assert.Equal(t, "scheduler", e.Data["component"])
	assert.Equal(t, ServiceName, e.Data["service"])
}
