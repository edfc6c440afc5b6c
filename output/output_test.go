package output

import (
	"bytes"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	w := New(Config{Compact: true, Output: &buf})
	require.NoError(t, w.Write(map[string]any{"label": "<b>", "from": 3}))
	assert.Equal(t, `{"from":3,"label":"<b>"}`+"\n", buf.String())

	buf.Reset()
	w = New(Config{Output: &buf})
	require.NoError(t, w.Write([]int{1}))
	assert.Equal(t, "[\n  1\n]\n", buf.String())
}

func TestWriteError(t *testing.T) {
	var buf bytes.Buffer
	writeError(&buf, errors.WithHint(errors.New("package not found"), "set package-path"))
	assert.JSONEq(t, `{"error": "package not found", "hints": ["set package-path"]}`, buf.String())

	buf.Reset()
	writeError(&buf, errors.New("boom"))
	assert.JSONEq(t, `{"error": "boom"}`, buf.String())
}
