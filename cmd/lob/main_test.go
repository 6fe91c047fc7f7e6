package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"lob/internal/engine"
	"lob/internal/script"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flow.txt")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRun_ReplaysScript(t *testing.T) {
	path := writeScript(t, `
limit bid 10 5 b1
limit bid 9 1 b2
limit ask 10 2 a1
limit ask 0 1 bad
limit ask 12 4 a2
remove ghost
`)
	var out bytes.Buffer
	err := run(context.Background(), engine.Config{Symbol: "BTCUSD"}, path, 0, &out)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Filled:         2")
	assert.Contains(t, text, "ASK 12 x 4 (1 orders)")
	assert.Contains(t, text, "BID 10 x 3 (1 orders)")
	assert.Contains(t, text, "BID 9 x 1 (1 orders)")
	assert.NotContains(t, text, "bad")
}

func TestRun_Errors(t *testing.T) {
	var out bytes.Buffer

	err := run(context.Background(), engine.Config{PriceStep: "-1"}, writeScript(t, "clear"), 0, &out)
	assert.ErrorIs(t, err, engine.ErrInvalidStep)

	err = run(context.Background(), engine.Config{}, writeScript(t, "limit bid 1"), 0, &out)
	assert.ErrorIs(t, err, script.ErrSyntax)

	err = run(context.Background(), engine.Config{}, filepath.Join(t.TempDir(), "missing"), 0, &out)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
