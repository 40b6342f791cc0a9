package observability

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/taiwan-rail-tools/thsrbook/internal/config"
)

// memSink is an in-memory WriteSyncer for capturing log output.
type memSink struct {
	strings.Builder
}

func (s *memSink) Sync() error { return nil }

func TestInitialize_ConsoleFormat(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	sink := &memSink{}
	Initialize(config.LoggerConfig{
		Level:       "debug",
		Format:      "console",
		ServiceName: "thsrbook",
		Colors:      config.ColorConfig{Info: "green"},
	}, zapcore.AddSync(sink))

	GetLogger().Info("booking started", zap.String("run_id", "r1"))

	out := sink.String()
	assert.Contains(t, out, "booking started")
	assert.Contains(t, out, "thsrbook.")
	assert.Contains(t, out, "\x1b[32mINFO\x1b[0m", "info level should be colorized green")
}

func TestInitialize_JSONFormat(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	sink := &memSink{}
	Initialize(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "thsrbook"}, zapcore.AddSync(sink))

	GetLogger().Warn("captcha rejected", zap.Int("attempt", 2))

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(sink.String()), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "captcha rejected", entry["msg"])
	assert.Equal(t, float64(2), entry["attempt"])
}

func TestInitialize_BadLevelFallsBackToInfo(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	sink := &memSink{}
	Initialize(config.LoggerConfig{Level: "chatty", Format: "json"}, zapcore.AddSync(sink))

	GetLogger().Debug("hidden")
	GetLogger().Info("visible")

	assert.NotContains(t, sink.String(), "hidden")
	assert.Contains(t, sink.String(), "visible")
}

func TestInitialize_OnlyOnce(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	first := &memSink{}
	second := &memSink{}
	Initialize(config.LoggerConfig{Level: "info", Format: "json"}, zapcore.AddSync(first))
	Initialize(config.LoggerConfig{Level: "info", Format: "json"}, zapcore.AddSync(second))

	GetLogger().Info("routed to first")
	assert.Contains(t, first.String(), "routed to first")
	assert.Empty(t, second.String())
}

func TestGetLogger_FallbackBeforeInit(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)
	assert.NotNil(t, GetLogger())
}
