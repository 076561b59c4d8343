package normalize

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/dinobot22/mineru-tianshu/internal/logfields"
	"github.com/dinobot22/mineru-tianshu/internal/observability"
)

// conventionalAssetDirs is the priority-ordered list of asset subdirectory
// names single-pass engines are known to emit.
var conventionalAssetDirs = []string{"imgs", "images", "img", "pictures", "pics"}

// NormalizeStandard consolidates a single-pass engine's output into the
// canonical layout. Missing documents or assets yield zero fields, not
// errors; the only errors returned are filesystem failures during relocation.
func NormalizeStandard(ctx context.Context, dir string) (*Result, error) {
	adapter := standardAdapter{}
	res := &Result{}

	mdPath, err := normalizeMarkdown(ctx, dir, adapter)
	if err != nil {
		return nil, err
	}
	res.MarkdownFile = mdPath

	imageDir, count, err := normalizeImages(ctx, dir)
	if err != nil {
		return nil, err
	}
	res.ImageDir = imageDir
	res.ImageCount = count

	recordPath, err := normalizeRecord(ctx, dir, adapter)
	if err != nil {
		return nil, err
	}
	res.RecordFile = recordPath

	if res.ImageDir != "" && res.MarkdownFile != "" {
		changed, err := RewriteFile(res.MarkdownFile, CanonicalResolver())
		if err != nil {
			observability.WarnContext(ctx, "Failed to rewrite image references", logfields.Error(err))
		} else if changed {
			observability.InfoContext(ctx, "Rewrote image references", logfields.File(CanonicalMarkdownName))
		}
	}

	return res, nil
}

// normalizeMarkdown relocates the primary document to result.md at the root.
// Re-entry is idempotent: an existing canonical file short-circuits.
func normalizeMarkdown(ctx context.Context, dir string, adapter EngineAdapter) (string, error) {
	canonical := filepath.Join(dir, CanonicalMarkdownName)
	if _, err := os.Stat(canonical); err == nil {
		observability.DebugContext(ctx, "Canonical markdown already exists")
		return canonical, nil
	}

	main := adapter.LocatePrimaryDocument(dir)
	if main == "" {
		observability.WarnContext(ctx, "No markdown files found")
		return "", nil
	}
	observability.InfoContext(ctx, "Selected primary markdown", logfields.File(relPath(dir, main)))

	if filepath.Dir(main) != filepath.Clean(dir) {
		// Nested candidate: copy to the root, keeping the original intact.
		if err := copyFile(main, canonical); err != nil {
			return "", err
		}
	} else {
		if err := os.Rename(main, canonical); err != nil {
			return "", err
		}
	}
	return canonical, nil
}

// normalizeRecord relocates the structured record to result.json at the root.
func normalizeRecord(ctx context.Context, dir string, adapter EngineAdapter) (string, error) {
	canonical := filepath.Join(dir, CanonicalRecordName)
	if _, err := os.Stat(canonical); err == nil {
		observability.DebugContext(ctx, "Canonical record already exists")
		return canonical, nil
	}

	main := adapter.LocateStructuredRecord(dir)
	if main == "" {
		observability.DebugContext(ctx, "No structured record found")
		return "", nil
	}
	observability.InfoContext(ctx, "Selected structured record", logfields.File(relPath(dir, main)))

	if filepath.Dir(main) != filepath.Clean(dir) {
		if err := copyFile(main, canonical); err != nil {
			return "", err
		}
	} else {
		if err := os.Rename(main, canonical); err != nil {
			return "", err
		}
	}
	return canonical, nil
}

// normalizeImages consolidates all assets into the canonical images/
// directory. Returns ("", 0) when the tree carries no assets.
func normalizeImages(ctx context.Context, dir string) (string, int, error) {
	canonical := filepath.Join(dir, CanonicalAssetDir)

	var found []string
	for _, name := range conventionalAssetDirs {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			found = append(found, candidate)
		}
	}

	if len(found) == 0 {
		return consolidateLooseImages(ctx, dir, canonical)
	}

	// The canonical directory already being present means a prior pass (or a
	// well-behaved engine) produced it; count and return.
	for _, dirPath := range found {
		if filepath.Base(dirPath) == CanonicalAssetDir {
			entries, err := os.ReadDir(canonical)
			if err != nil {
				return "", 0, err
			}
			observability.DebugContext(ctx, "Canonical asset directory already exists", logfields.AssetCount(len(entries)))
			return canonical, len(entries), nil
		}
	}

	observability.InfoContext(ctx, "Consolidating asset directories", logfields.AssetCount(len(found)))
	if err := os.MkdirAll(canonical, 0o755); err != nil {
		return "", 0, err
	}

	total := 0
	for _, srcDir := range found {
		entries, err := os.ReadDir(srcDir)
		if err != nil {
			return "", 0, err
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			dest := collisionFreeDest(canonical, canonicalFilename(entry.Name()))
			if err := moveFile(filepath.Join(srcDir, entry.Name()), dest); err != nil {
				return "", 0, err
			}
			total++
		}
		removeIfEmpty(srcDir)
	}
	return canonical, total, nil
}

// consolidateLooseImages handles engines that scatter assets through the
// tree without a conventional subdirectory.
func consolidateLooseImages(ctx context.Context, dir, canonical string) (string, int, error) {
	var loose []string
	for ext := range imageExtensions {
		loose = append(loose, findFilesByExt(dir, ext)...)
	}
	sort.Strings(loose)
	if len(loose) == 0 {
		observability.DebugContext(ctx, "No assets found")
		return "", 0, nil
	}

	observability.InfoContext(ctx, "Collecting loose assets", logfields.AssetCount(len(loose)))
	if err := os.MkdirAll(canonical, 0o755); err != nil {
		return "", 0, err
	}
	for _, imgPath := range loose {
		if filepath.Dir(imgPath) == canonical {
			continue
		}
		dest := collisionFreeDest(canonical, canonicalFilename(filepath.Base(imgPath)))
		if err := moveFile(imgPath, dest); err != nil {
			return "", 0, err
		}
	}
	return canonical, len(loose), nil
}

func relPath(base, target string) string {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return target
	}
	return rel
}
