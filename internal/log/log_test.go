package log

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(nil)
		SetLevel(LevelInfo)
	})
	return &buf
}

func TestInfoFormatsKeyValues(t *testing.T) {
	buf := capture(t)

	Info("import completed", "list", "Groceries", "created", 3)

	line := buf.String()
	assert.Contains(t, line, "[INFO]")
	assert.Contains(t, line, "import completed")
	assert.Contains(t, line, "list=Groceries")
	assert.Contains(t, line, "created=3")
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestErrorPrependsErr(t *testing.T) {
	buf := capture(t)

	Error("import failed", errors.New("boom"), "list", "Chores")

	line := buf.String()
	assert.Contains(t, line, "[ERROR]")
	assert.Contains(t, line, "err=boom")
	assert.Contains(t, line, "list=Chores")
}

func TestDebugSuppressedAtInfoLevel(t *testing.T) {
	buf := capture(t)

	Debug("noise")
	assert.Empty(t, buf.String())

	SetLevel(LevelDebug)
	Debug("signal")
	assert.Contains(t, buf.String(), "signal")
}

func TestOddKeyValueIgnored(t *testing.T) {
	buf := capture(t)

	Info("msg", "dangling")

	assert.NotContains(t, buf.String(), "dangling")
}
