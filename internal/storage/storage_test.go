package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/Mootosamy/backend-chronopost/internal/config"
)

func TestLocal_Put(t *testing.T) {
	dir := t.TempDir()
	l := NewLocal(dir)

	res, err := l.Put(context.Background(), strings.NewReader(`{"id":"WH-1"}`), PutInput{
		Key:         "webhooks/2026-01-02/WH-1.json",
		ContentType: "application/json",
	})
	require.NoError(t, err)
	assert.Equal(t, "webhooks/2026-01-02/WH-1.json", res.Key)

	b, err := os.ReadFile(filepath.Join(dir, "webhooks", "2026-01-02", "WH-1.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"WH-1"}`, string(b))
}

func TestLocal_PutStaysInsideBaseDir(t *testing.T) {
	dir := t.TempDir()
	l := NewLocal(dir)

	res, err := l.Put(context.Background(), strings.NewReader("x"), PutInput{Key: "../../etc/evil"})
	require.NoError(t, err)
	assert.Equal(t, "etc/evil", res.Key)
	assert.FileExists(t, filepath.Join(dir, "etc", "evil"))

	_, err = l.Put(context.Background(), strings.NewReader("x"), PutInput{Key: "/"})
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	ctx := context.Background()

	res, err := FromConfig(ctx, appconfig.ArchiveConfig{Driver: "none"})
	require.NoError(t, err)
	assert.Equal(t, "none", res.Driver)

	res, err = FromConfig(ctx, appconfig.ArchiveConfig{Driver: "local", LocalDir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "local", res.Driver)

	_, err = FromConfig(ctx, appconfig.ArchiveConfig{Driver: "s3"})
	assert.Error(t, err)

	_, err = FromConfig(ctx, appconfig.ArchiveConfig{Driver: "ftp"})
	assert.Error(t, err)
}
