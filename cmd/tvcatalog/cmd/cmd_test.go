package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyagen/tvcatalog/internal/models"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestCommands_SettingsRoundTrip(t *testing.T) {
	t.Setenv("TVCATALOG_DATA_DIR", t.TempDir())
	t.Setenv("REDIS_URL", "")
	t.Setenv("LOG_LEVEL", "disabled")

	assert.Contains(t, run(t, "migrate"), "schema version 3")
	run(t, "settings", "set", "volume=70", "recordingPath=/tmp/rec")
	assert.Equal(t, "70\n", run(t, "settings", "get", "volume"))
	assert.Equal(t, "recordingPath=/tmp/rec\nvolume=70\n", run(t, "settings", "get"))
}

func TestDefaultSourceName(t *testing.T) {
	assert.Equal(t, "list.m3u", defaultSourceName("http://host/path/list.m3u?token=1"))
	assert.Equal(t, "playlist.m3u8", defaultSourceName(`C:\tv\playlist.m3u8`))
	assert.Equal(t, "host", defaultSourceName("http://host/"))
	assert.Equal(t, "m3u", defaultSourceName(""))
}

func TestParseMediaTypes(t *testing.T) {
	got, err := parseMediaTypes([]string{"live", "Series"})
	require.NoError(t, err)
	assert.Equal(t, []models.MediaType{models.MediaTypeLivestream, models.MediaTypeSerie}, got)

	_, err = parseMediaTypes([]string{"radio"})
	assert.Error(t, err)
}

func TestParseViewType(t *testing.T) {
	v, err := parseViewType("categories")
	require.NoError(t, err)
	assert.Equal(t, models.ViewTypeCategories, v)

	_, err = parseViewType("grid")
	assert.Error(t, err)
}
