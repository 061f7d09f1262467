package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		out = append(out, rec)
	}
	return out
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, Warn)
	l.Info("dropped")
	l.Warn("kept", "count", 3)

	recs := decode(t, &buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "kept", recs[0]["msg"])
	assert.Equal(t, "warn", recs[0]["level"])
	assert.EqualValues(t, 3, recs[0]["count"])
}

func TestWithAddsFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, Debug).With(map[string]string{"session": "abc"})
	l.Debug("hello")
	recs := decode(t, &buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "abc", recs[0]["session"])
}

func TestMasksDSNPasswords(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, Debug)
	l.Info("open", "dsn", "postgres://roster:hunter2@db:5432/roster?sslmode=disable")
	l.Info("open", "db_dsn", "host=db user=roster password=hunter2 dbname=roster")
	l.Info("open", "password", "correct-horse-battery")

	out := buf.String()
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, "postgres://roster:***@db:5432")
	assert.Contains(t, out, "password=***")
	assert.Contains(t, out, "corr***tery")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, Debug, ParseLevel("DEBUG"))
	assert.Equal(t, Error, ParseLevel("error"))
	assert.Equal(t, Info, ParseLevel("verbose"))
}
