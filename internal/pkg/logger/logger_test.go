package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T, level Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(level)
	SetRedactPII(true)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(INFO)
	})
	return &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]string {
	t.Helper()
	var out []map[string]string
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		m := map[string]string{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestLevelFiltering(t *testing.T) {
	buf := captureLogs(t, WARN)

	Debug("debug")
	Info("info")
	Warn("warn")
	Error("error")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "WARN", lines[0]["level"])
	assert.Equal(t, "ERROR", lines[1]["level"])
}

func TestFieldsAndRedaction(t *testing.T) {
	buf := captureLogs(t, DEBUG)

	Info("tracked", "user_id", "customer-1234", "client_id", "track_abcdef", "note", "mail john.doe@example.com", "count", 3)

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "tracked", lines[0]["msg"])
	assert.Equal(t, "cust***", lines[0]["user_id"])
	assert.Equal(t, "trac***", lines[0]["client_id"])
	assert.Equal(t, "mail jo***@example.com", lines[0]["note"])
	assert.Equal(t, "3", lines[0]["count"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel("warning"))
	assert.Equal(t, ERROR, ParseLevel(" ERROR "))
	assert.Equal(t, INFO, ParseLevel(""))
}

func TestRedactID(t *testing.T) {
	assert.Equal(t, "", RedactID(""))
	assert.Equal(t, "***", RedactID("abcd"))
	assert.Equal(t, "abcd***", RedactID("abcdefgh"))
	assert.Equal(t, "jo***@example.com", RedactID("john@example.com"))
}

func TestRedactEmail(t *testing.T) {
	assert.Equal(t, "jo***@example.com", RedactEmail("john.doe@example.com"))
	assert.Equal(t, "***@example.com", RedactEmail("ab@example.com"))
	assert.Equal(t, "***@***", RedactEmail("not-an-email"))
}
