package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/geflip/pkg/config"
)

func jsonConfig(level string) *config.Config {
	return &config.Config{Env: "production", LogLevel: level, LogFormat: "json"}
}

// lines decodes every JSON log line written to buf
func lines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()

	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		out = append(out, entry)
	}
	return out
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"DEBUG":   zerolog.DebugLevel,
		"info":    zerolog.InfoLevel,
		"warn":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"fatal":   zerolog.FatalLevel,
		"panic":   zerolog.PanicLevel,
		"verbose": zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
	}

	for input, want := range tests {
		assert.Equal(t, want, parseLogLevel(input), "input %q", input)
	}
}

func TestNewWithWriter_LevelIsPerInstance(t *testing.T) {
	before := zerolog.GlobalLevel()

	var quiet, loud bytes.Buffer
	NewWithWriter(jsonConfig("error"), &quiet).Info("hidden")
	NewWithWriter(jsonConfig("debug"), &loud).Debug("shown")

	assert.Empty(t, quiet.String())
	assert.Contains(t, loud.String(), "shown")
	assert.Equal(t, before, zerolog.GlobalLevel(), "global level untouched")
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(jsonConfig("warn"), &buf)

	log.Debug("hidden")
	log.Info("hidden")
	log.Warn("Fewer hourly snapshots than requested")
	log.Error("fetch latest failed")

	entries := lines(t, &buf)
	require.Len(t, entries, 2)

	assert.Equal(t, "warn", entries[0]["level"])
	assert.Equal(t, "Fewer hourly snapshots than requested", entries[0]["message"])
	assert.Equal(t, "error", entries[1]["level"])
	assert.Equal(t, "fetch latest failed", entries[1]["message"])

	for _, e := range entries {
		assert.Equal(t, "production", e["env"])
		assert.Contains(t, e, "time")
	}
}

func TestLogger_Module(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(jsonConfig("info"), &buf).Module("s1_window").Info("Aggregation completed")

	entries := lines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "s1_window", entries[0][ModuleField])
}

func TestLogger_WithFieldsKeyOrder(t *testing.T) {
	fields := map[string]interface{}{"zeta": 1, "alpha": 2, "mid": 3, "beta": 4}

	var first string
	for i := 0; i < 10; i++ {
		var buf bytes.Buffer
		NewWithWriter(jsonConfig("info"), &buf).WithFields(fields).Info("x")

		out := buf.String()
		require.Less(t, strings.Index(out, `"alpha"`), strings.Index(out, `"zeta"`))
		// time 필드 앞까지만 비교
		got := out[strings.Index(out, `"alpha"`):strings.Index(out, `"time"`)]
		if i == 0 {
			first = got
			continue
		}
		assert.Equal(t, first, got, "same bytes every run")
	}
}

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	base := NewWithWriter(jsonConfig("info"), &buf)

	screener := base.Module("s3_screener")
	screener.WithFields(map[string]interface{}{
		"total_input": 3812,
		"passed":      41,
	}).Info("Screening completed")

	// 자식 로거의 필드는 부모에 새지 않음
	base.Info("plain")

	entries := lines(t, &buf)
	require.Len(t, entries, 2)

	assert.Equal(t, "s3_screener", entries[0]["module"])
	assert.Equal(t, float64(3812), entries[0]["total_input"])
	assert.Equal(t, float64(41), entries[0]["passed"])
	assert.NotContains(t, entries[1], "module")
}

func TestLogger_WithError(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(jsonConfig("info"), &buf)

	log.WithError(errors.New("connection timeout")).
		WithField("endpoint", "/latest").
		Error("Fetch failed")

	entries := lines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "connection timeout", entries[0]["error"])
	assert.Equal(t, "/latest", entries[0]["endpoint"])
}

func TestLogger_ConsoleFormat(t *testing.T) {
	for _, format := range []string{"console", "pretty"} {
		var buf bytes.Buffer
		log := NewWithWriter(&config.Config{Env: "development", LogLevel: "info", LogFormat: format}, &buf)

		log.WithField("run_id", "run_1").Info("Pipeline run completed")

		out := buf.String()
		assert.Contains(t, out, "Pipeline run completed", format)
		assert.Contains(t, out, "run_1", format)
		assert.False(t, json.Valid([]byte(strings.TrimSpace(out))), "%s output is not JSON", format)
	}
}

func TestNop(t *testing.T) {
	log := Nop()

	// 어떤 호출도 패닉 없이 버려짐
	assert.NotPanics(t, func() {
		log.WithField("k", "v").Info("discarded")
		log.WithError(errors.New("boom")).Error("discarded")
	})
}
