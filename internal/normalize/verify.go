package normalize

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dinobot22/mineru-tianshu/internal/markdown"
)

// VerifyReferenceIntegrity checks that every local image reference in the
// canonical document names a file that exists in the canonical asset
// directory. External URLs are exempt. Returns the destinations of dangling
// references.
func VerifyReferenceIntegrity(dir string) ([]string, error) {
	mdPath := filepath.Join(dir, CanonicalMarkdownName)
	data, err := os.ReadFile(mdPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	refs, err := markdown.ExtractImageRefs(data)
	if err != nil {
		return nil, err
	}

	var dangling []string
	for _, ref := range refs {
		dest := ref.Destination
		if strings.HasPrefix(dest, "http://") || strings.HasPrefix(dest, "https://") {
			continue
		}
		target := filepath.Join(dir, filepath.FromSlash(dest))
		if _, err := os.Stat(target); err != nil {
			dangling = append(dangling, dest)
		}
	}
	return dangling, nil
}
