package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFsClient(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	fc, err := NewFsClient(dir)
	require.NoError(t, err)

	_, err = fc.Get(Gateway)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, fc.Create(Gateway, map[string]string{"id": "abc"}))
	err = fc.Create(Gateway, map[string]string{"id": "def"})
	assert.True(t, os.IsExist(err))

	data, err := fc.Get(Gateway)
	require.NoError(t, err)
	var got map[string]string
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "abc", got["id"])
}
