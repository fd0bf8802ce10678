package helper

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUUID(t *testing.T) {
	a, err := GenerateUUID()
	require.NoError(t, err)
	b, err := GenerateUUID()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	_, err = uuid.Parse(a)
	assert.NoError(t, err)
}

func TestPrettyJSON(t *testing.T) {
	out := PrettyJSON(map[string]int{"answer": 1})
	assert.Equal(t, "{\n  \"answer\": 1\n}", out)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	content := bytes.Repeat([]byte("%PDF"), 1024)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	var progress bytes.Buffer
	data, err := ReadFile(path, &progress)
	require.NoError(t, err)
	assert.Equal(t, content, data)

	data, err = ReadFile(path, nil)
	require.NoError(t, err)
	assert.Equal(t, content, data)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.pdf"), nil)
	assert.Error(t, err)
}
