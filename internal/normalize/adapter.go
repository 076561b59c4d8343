package normalize

import (
	"path/filepath"
	"strings"
)

// EngineAdapter isolates the engine-specific heuristics for locating
// artifacts inside a raw output directory, so new engines plug in without
// branching inside the pipeline. Locate methods return "" when nothing
// matches; absence is not an error.
type EngineAdapter interface {
	// Name identifies the adapter in logs.
	Name() string

	// LocatePrimaryDocument returns the path of the main text document.
	LocatePrimaryDocument(dir string) string

	// LocateStructuredRecord returns the path of the main structured record.
	LocateStructuredRecord(dir string) string

	// LocatePageAssets returns the asset subdirectory of one page directory,
	// or "" for engines without per-page assets.
	LocatePageAssets(pageDir string) string
}

// standardAdapter implements the heuristics shared by single-pass engines
// (speech transcription, single-document OCR): the largest candidate file is
// treated as the most complete one.
type standardAdapter struct{}

func (standardAdapter) Name() string { return "standard" }

func (standardAdapter) LocatePrimaryDocument(dir string) string {
	return largestFile(findFilesByExt(dir, ".md"))
}

// recordNameTokens mark a structured file as the primary record regardless
// of size.
var recordNameTokens = []string{"content_list", "result"}

func (standardAdapter) LocateStructuredRecord(dir string) string {
	var candidates []string
	for _, path := range findFilesByExt(dir, ".json") {
		// Per-page records under page_N directories belong to the paged
		// normalizer, not the flat record heuristic.
		if pageLikePattern.MatchString(filepath.Base(filepath.Dir(path))) {
			continue
		}
		candidates = append(candidates, path)
	}
	for _, path := range candidates {
		name := filepath.Base(path)
		for _, token := range recordNameTokens {
			if strings.Contains(name, token) {
				return path
			}
		}
	}
	return largestFile(candidates)
}

func (standardAdapter) LocatePageAssets(string) string { return "" }

// pagedAdapter implements the layout convention of page-splitting engines:
// one page_N directory per source page, each with an imgs/ subfolder and a
// *_res.json record.
type pagedAdapter struct{}

func (pagedAdapter) Name() string { return "paged" }

func (pagedAdapter) LocatePrimaryDocument(dir string) string {
	return largestFile(findFilesByExt(dir, ".md"))
}

// The paged record is built by merging per-page records, never located.
func (pagedAdapter) LocateStructuredRecord(string) string { return "" }

func (pagedAdapter) LocatePageAssets(pageDir string) string {
	return filepath.Join(pageDir, "imgs")
}
