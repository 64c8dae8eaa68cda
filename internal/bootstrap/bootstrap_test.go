package bootstrap

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvastree/internal/config"
	"canvastree/internal/domain"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(&buf, "warn")
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")

	_, err = NewLogger(&buf, "chatty")
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	cfg := &config.Config{
		BaseURL:        "https://canvas.example.edu",
		Token:          "abc",
		DownloadFolder: "/dl",
		DefaultContent: domain.ContentAnnouncements,
		Workers:        2,
	}
	log, err := NewLogger(&bytes.Buffer{}, "")
	require.NoError(t, err)

	rt, err := Open(cfg, log, Options{Fs: afero.NewMemMapFs(), PageDir: "/pages"})
	require.NoError(t, err)
	defer rt.Close()

	assert.Equal(t, "/dl", rt.Engine.DownloadDir())
	assert.Equal(t, "https://canvas.example.edu", rt.Client.BaseURL())

	types := rt.ContentTypes()
	assert.Len(t, types, len(domain.ContentTypes))
	assert.Equal(t, domain.ContentAnnouncements, types[0])
	assert.Equal(t, domain.ContentModules, types[1])
}

func TestOpenRejectsBadURL(t *testing.T) {
	log, err := NewLogger(&bytes.Buffer{}, "")
	require.NoError(t, err)

	_, err = Open(&config.Config{BaseURL: "not a url", Token: "abc"}, log, Options{Fs: afero.NewMemMapFs()})
	assert.Error(t, err)
}
