package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultEndpoint, cfg.Store.Endpoint)
	assert.Equal(t, DefaultBucket, cfg.Store.Bucket)
	assert.Equal(t, DefaultTimeout, cfg.Store.TimeoutDuration())
	assert.Equal(t, DefaultDebounce, cfg.Watch.DebounceDuration())
	assert.True(t, cfg.Store.Enabled)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
store:
  enabled: true
  endpoint: store.internal:9000
  bucket: assets
  public_url: http://192.168.1.100:9000
  timeout: 10s
watch:
  root: /data/outputs
  debounce: 500ms
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "store.internal:9000", cfg.Store.Endpoint)
	assert.Equal(t, "assets", cfg.Store.Bucket)
	assert.Equal(t, "http://192.168.1.100:9000", cfg.Store.PublicURL)
	assert.Equal(t, 10*time.Second, cfg.Store.TimeoutDuration())
	assert.Equal(t, "/data/outputs", cfg.Watch.Root)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.DebounceDuration())
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  bucket: from-file\n"), 0o644))

	t.Setenv(EnvBucket, "from-env")
	t.Setenv(EnvPublicURL, "http://10.0.0.5:9000/")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Store.Bucket)
	// trailing slash stripped
	assert.Equal(t, "http://10.0.0.5:9000", cfg.Store.PublicURL)
}

func TestValidateRequiresPublicURL(t *testing.T) {
	sc := StoreConfig{Enabled: true, Endpoint: "e:9000", Bucket: "b"}
	err := sc.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "public URL")

	sc.PublicURL = "http://host:9000"
	require.NoError(t, sc.Validate())
}

func TestValidateSkippedWhenDisabled(t *testing.T) {
	sc := StoreConfig{Enabled: false}
	require.NoError(t, sc.Validate())
}

func TestValidateRejectsMalformedTimeout(t *testing.T) {
	sc := StoreConfig{Enabled: true, Endpoint: "e:9000", Bucket: "b", PublicURL: "http://h:9000", Timeout: "soon"}
	err := sc.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}

func TestDurationFallbacks(t *testing.T) {
	sc := StoreConfig{}
	assert.Equal(t, DefaultTimeout, sc.TimeoutDuration())

	wc := WatchConfig{Debounce: "not-a-duration"}
	assert.Equal(t, DefaultDebounce, wc.DebounceDuration())
}
