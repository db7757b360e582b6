package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf, Level: LevelWarn})

	log.Debug("hidden")
	log.Info("hidden")
	log.Warn("shown")
	log.Error("shown too", Err(errors.New("boom")))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "WARN", lines[0]["level"])
	assert.Equal(t, "boom", lines[1]["fields"].(map[string]any)["error"])
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	base := New(Options{Output: &buf, Level: LevelDebug})
	log := base.With(Component("walkthrough")).WithRequestID("req-1")

	log.Info("estimated", StudentID("s-1"), Count(3))
	base.Info("bare")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)

	fields := lines[0]["fields"].(map[string]any)
	assert.Equal(t, "walkthrough", fields["component"])
	assert.Equal(t, "req-1", fields[RequestIDKey])
	assert.Equal(t, "s-1", fields["student_id"])
	assert.EqualValues(t, 3, fields["count"])
	assert.Nil(t, lines[1]["fields"], "parent logger must not inherit child fields")
}

func TestLogger_Caller(t *testing.T) {
	var buf bytes.Buffer
	New(Options{Output: &buf, AddCaller: true}).Info("where")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0]["caller"].(string), "logger_test.go:"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel(" debug "))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("ERROR"))
	assert.Equal(t, LevelInfo, ParseLevel("nonsense"))
}

func TestContextPropagation(t *testing.T) {
	log := Nop()
	ctx := WithContext(context.Background(), log)
	assert.Same(t, log, FromContext(ctx))
	assert.NotNil(t, FromContext(context.Background()))
}
