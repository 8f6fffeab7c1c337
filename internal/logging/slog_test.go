package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogLogger_LevelFiltering(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	l := newSlog(&buf, false, slog.LevelWarn)

	l.Debug(ctx, "dbg", "a", 1)
	l.Info(ctx, "inf", "b", 2)
	l.Warn(ctx, "wrn", "c", 3)
	l.Error(ctx, "err", "d", 4)

	out := buf.String()
	assert.NotContains(t, out, "msg=dbg")
	assert.NotContains(t, out, "msg=inf")
	assert.Contains(t, out, "level=WARN msg=wrn c=3")
	assert.Contains(t, out, "level=ERROR msg=err d=4")
}

func TestSlogLogger_JSONWithChild(t *testing.T) {
	var buf bytes.Buffer
	l := newSlog(&buf, true, slog.LevelDebug)

	l.With("module", "shifts").Debug(context.Background(), "listed", "page", 2)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "DEBUG", rec["level"])
	assert.Equal(t, "listed", rec["msg"])
	assert.Equal(t, "shifts", rec["module"])
	assert.EqualValues(t, 2, rec["page"])
}

func TestLoggers_RedactSecrets(t *testing.T) {
	ctx := context.Background()
	for _, format := range []string{FormatText, FormatJSON, FormatZap} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := New(&buf, format, "info")
			require.NoError(t, err)

			l.With("sessionid", "cookie-value").Info(ctx, "login", "driver", "Anna Ozola", "ACCESS_CODE", "ABCD1234")

			out := buf.String()
			assert.NotContains(t, out, "ABCD1234")
			assert.NotContains(t, out, "cookie-value")
			assert.Contains(t, out, redacted)
			assert.Contains(t, out, "Anna Ozola")
		})
	}
}

func TestRedactArgs_LeavesInputAlone(t *testing.T) {
	args := []any{"access_code", "secret", "page", 1}
	out := redactArgs(args)

	assert.Equal(t, []any{"access_code", redacted, "page", 1}, out)
	assert.Equal(t, "secret", args[1])

	plain := []any{"page", 1, "dangling"}
	assert.Equal(t, plain, redactArgs(plain))
}
