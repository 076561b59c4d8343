// Package normalize converts heterogeneous engine output directories into the
// canonical artifact layout (result.md, result.json, images/) and rewrites
// embedded image references, optionally externalizing assets to an object
// store.
package normalize

import (
	"os"
	"regexp"
	"sort"
	"strconv"
)

// Canonical reserved names at the root of a normalized output directory.
const (
	CanonicalMarkdownName = "result.md"
	CanonicalRecordName   = "result.json"
	CanonicalAssetDir     = "images"
)

// Layout classifies the shape of a raw engine output directory.
type Layout string

const (
	// LayoutStandard is a flat single-pass engine output.
	LayoutStandard Layout = "standard"

	// LayoutPaged is an output with one subtree per source page (page_N
	// directories), produced by page-splitting engines.
	LayoutPaged Layout = "paged"
)

var pageDirPattern = regexp.MustCompile(`^page_(\d+)$`)

// DetectLayout inspects a directory and classifies it. Pure: no side effects.
// Any page_* subdirectory selects the paged layout, even if its index later
// turns out to be unparsable; the paged normalizer handles that per page.
func DetectLayout(dir string) Layout {
	if len(pageDirs(dir)) > 0 || len(unparsablePageDirs(dir)) > 0 {
		return LayoutPaged
	}
	return LayoutStandard
}

// pageDir is one page-indexed subdirectory of a paged output.
type pageDir struct {
	name  string
	index int // 1-based page number parsed from the directory name
}

// pageDirs lists page-indexed subdirectories sorted by numeric index.
// Directory names that merely look page-like but carry no parsable index are
// excluded here; callers that want to warn about them use unparsablePageDirs.
func pageDirs(dir string) []pageDir {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var pages []pageDir
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		m := pageDirPattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		index, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		pages = append(pages, pageDir{name: entry.Name(), index: index})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].index < pages[j].index })
	return pages
}

var pageLikePattern = regexp.MustCompile(`^page_`)

// unparsablePageDirs lists page-prefixed subdirectories whose index cannot be
// parsed. They are skipped with a warning rather than failing the pass.
func unparsablePageDirs(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var bad []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if pageLikePattern.MatchString(entry.Name()) && !pageDirPattern.MatchString(entry.Name()) {
			bad = append(bad, entry.Name())
		}
	}
	return bad
}
