package config

import (
	"fmt"
	"os"
)

const skeletonConfig = `# Output normalizer configuration.
# Store credentials may also come from the environment:
#   TIANSHU_STORE_ENDPOINT, TIANSHU_STORE_ACCESS_KEY, TIANSHU_STORE_SECRET_KEY,
#   TIANSHU_STORE_BUCKET, TIANSHU_STORE_SECURE, TIANSHU_STORE_PUBLIC_URL
store:
  enabled: true
  endpoint: rustfs:9000
  bucket: ts-img
  secure: false
  # Externally resolvable base URL for generated asset links. Required when
  # the store is enabled.
  public_url: ""
  timeout: 30s
  # Extra attempts for a failed upload before the file is skipped.
  max_retries: 2

watch:
  # Root directory where engines drop finished output directories.
  root: ""
  debounce: 2s
  # Expose Prometheus metrics in watch mode, e.g. ":9464". Empty disables.
  metrics_addr: ""
`

// Init writes a skeleton configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file %s already exists (use --force to overwrite)", configPath)
	}
	if err := os.WriteFile(configPath, []byte(skeletonConfig), 0o644); err != nil {
		return fmt.Errorf("write configuration file: %w", err)
	}
	return nil
}
