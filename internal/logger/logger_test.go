package logger

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestColorLogger_LevelFilter(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	log := NewColorLogger(&buf, LevelWarn)

	log.Info("hidden", "k", "v")
	log.Debug("hidden too")
	log.Warn("shown", "address", "0x1")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "address=0x1")
}

func TestColorLogger_ServiceModulePrefix(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	log := NewColorLogger(&buf, LevelDebug)

	log.Error("boom", "service", "vote", "module", "controller", "err", "x")

	out := buf.String()
	assert.Contains(t, out, "[vote:controller]")
	assert.Contains(t, out, "err=x")
	assert.NotContains(t, out, "service=")
}

func TestColorLogger_BlankLine(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	log := NewColorLogger(&buf, LevelDebug)

	log.SuccessWithBlankLine("done")

	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("done\n\n")))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel(""))
}
