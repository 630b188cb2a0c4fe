package logging

import (
	"errors"
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func capture(verbosity int) (Logger, *[]string) {
	var lines []string
	base := funcr.New(func(prefix, args string) {
		lines = append(lines, prefix+" "+args)
	}, funcr.Options{Verbosity: verbosity})
	return New(base), &lines
}

func TestDebugRequiresVerbosity(t *testing.T) {
	log, lines := capture(0)
	log.Debug("hidden")
	log.Info("shown")
	assert.Len(t, *lines, 1)

	log, lines = capture(1)
	log.WithName("backend").Debug("round trip", "status", 200)
	if assert.Len(t, *lines, 1) {
		assert.Contains(t, (*lines)[0], "backend")
		assert.Contains(t, (*lines)[0], `"status"=200`)
	}
}

func TestErrorCarriesCause(t *testing.T) {
	log, lines := capture(0)
	log.WithValues("user", "u1").Error(errors.New("boom"), "call failed")
	if assert.Len(t, *lines, 1) {
		assert.Contains(t, (*lines)[0], `"error"="boom"`)
		assert.Contains(t, (*lines)[0], `"user"="u1"`)
	}
}

func TestNewFallsBackForZeroLogger(t *testing.T) {
	log := New(logr.Logger{})
	assert.NotNil(t, log.log.GetSink())
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in), "level %q", in)
	}
}
