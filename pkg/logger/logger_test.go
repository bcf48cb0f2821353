package logger_test

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/echopf/echo.go/pkg/logger"
)

func TestLog(t *testing.T) {
	buff := bytes.NewBuffer([]byte{})
	templogger, err := logger.New().FromBuffer(buff).Make()
	require.NoError(t, err)
	require.NotNil(t, templogger)
	require.Equal(t, buff.Len(), 0)
	templogger.Logger.Info().Msg("Test")
	require.Contains(t, buff.String(), "Test")
}

type testLogJSON struct {
	Level   string `json:"level"`
	Message string `json:"message"`
	Path    string `json:"path"`
	Error   string `json:"error"`
}

func TestLoggerLevels(t *testing.T) {
	buffer := bytes.NewBuffer([]byte{})
	l, err := logger.New().FromBuffer(buffer).Level("debug").Make()
	require.NoError(t, err)

	tests := []struct {
		fn    func(msg string, args ...any)
		level string
	}{
		{fn: l.Error, level: "error"},
		{fn: l.Warn, level: "warn"},
		{fn: l.Info, level: "info"},
		{fn: l.Debug, level: "debug"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("testing %s", tt.level), func(t *testing.T) {
			buffer.Reset()
			tt.fn("request failed", "path", "inst/entry", "error", errors.New("boom"))

			var out testLogJSON
			require.NoError(t, json.Unmarshal(buffer.Bytes(), &out))
			require.Equal(t, tt.level, out.Level)
			require.Equal(t, "request failed", out.Message)
			require.Equal(t, "inst/entry", out.Path)
			require.Equal(t, "boom", out.Error)
		})
	}
}

func TestLoggerFiltersBelowLevel(t *testing.T) {
	buffer := bytes.NewBuffer([]byte{})
	l, err := logger.New().FromBuffer(buffer).Level("warn").Make()
	require.NoError(t, err)

	l.Info("hidden")
	l.Debug("hidden")
	require.Equal(t, 0, buffer.Len())

	l.Warn("shown")
	require.Contains(t, buffer.String(), "shown")
}

func TestLogFromPath(t *testing.T) {
	path := t.TempDir() + "/echo.log"
	l, err := logger.New().FromPath(path).Make()
	require.NoError(t, err)
	l.Info("to file")
	require.NoError(t, l.Close())
}

func TestNop(t *testing.T) {
	logger.Nop().Error("nothing", "k", "v")
}
