package log

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, level Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(level)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(LevelInfo)
	})
	return &buf
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"":       LevelInfo,
		"info":   LevelInfo,
		"DEBUG":  LevelDebug,
		" error": LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestLineFormat(t *testing.T) {
	buf := capture(t, LevelInfo)

	Info("adding month", "label", "January 2013", "odd")

	line := buf.String()
	assert.Contains(t, line, " [INFO] adding month label=January 2013")
	assert.NotContains(t, line, "odd")
}

func TestLevelFiltering(t *testing.T) {
	buf := capture(t, LevelError)

	Debug("hidden")
	Info("hidden too")
	Error("shown", errors.New("boom"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "[ERROR] shown err=boom")
}

func TestNamedLogger(t *testing.T) {
	buf := capture(t, LevelDebug)

	Named("calendar").Debug("range started", "start", "2013-01-05")

	assert.Contains(t, buf.String(), "[DEBUG] range started component=calendar start=2013-01-05")
}
