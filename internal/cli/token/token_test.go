package token

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveClientToken(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	viper.Set("client.api_url", "http://grit.example:8080")
	t.Cleanup(viper.Reset)

	path, err := SaveClientToken("first")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".dailygrit", "cli.yaml"), path)

	_, err = SaveClientToken("second")
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	saved := viper.New()
	saved.SetConfigFile(path)
	require.NoError(t, saved.ReadInConfig())
	assert.Equal(t, "second", saved.GetString("client.token"))
	assert.Equal(t, "http://grit.example:8080", saved.GetString("client.api_url"))
}
