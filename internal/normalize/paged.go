package normalize

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/dinobot22/mineru-tianshu/internal/jsontree"
	"github.com/dinobot22/mineru-tianshu/internal/logfields"
	"github.com/dinobot22/mineru-tianshu/internal/observability"
)

// recordFileSuffix is the per-page structured record naming convention of
// page-splitting engines.
const recordFileSuffix = "_res.json"

// NormalizePaged folds a paged engine output (one subtree per source page)
// into one canonical artifact set. Assets are renumbered with a single global
// counter across all pages, which guarantees cross-page uniqueness without
// per-page collision handling.
func NormalizePaged(ctx context.Context, dir string) (*Result, error) {
	adapter := pagedAdapter{}
	res := &Result{}

	for _, bad := range unparsablePageDirs(dir) {
		observability.WarnContext(ctx, "Skipping page directory with unparsable index", logfields.File(bad))
	}
	pages := pageDirs(dir)

	pageMaps, moved, err := consolidatePageAssets(ctx, dir, pages, adapter)
	if err != nil {
		return nil, err
	}
	canonicalDir := filepath.Join(dir, CanonicalAssetDir)
	if entries, err := os.ReadDir(canonicalDir); err == nil && len(entries) > 0 {
		res.ImageDir = canonicalDir
		res.ImageCount = len(entries)
	} else {
		removeIfEmpty(canonicalDir)
	}
	if moved > 0 {
		observability.InfoContext(ctx, "Renumbered page assets", logfields.AssetCount(moved))
	}

	recordPath, err := mergePageRecords(ctx, dir, pages, pageMaps)
	if err != nil {
		return nil, err
	}
	res.RecordFile = recordPath

	mdPath, err := mergePageMarkdown(ctx, dir, adapter, pageMaps)
	if err != nil {
		return nil, err
	}
	res.MarkdownFile = mdPath

	return res, nil
}

// consolidatePageAssets moves every page's assets into images/ with
// sequential zero-padded names from one monotonically increasing counter.
// Returns the per-page (0-based index) old→new filename maps and the number
// of files moved.
func consolidatePageAssets(ctx context.Context, dir string, pages []pageDir, adapter EngineAdapter) (map[int]map[string]string, int, error) {
	canonicalDir := filepath.Join(dir, CanonicalAssetDir)
	if err := os.MkdirAll(canonicalDir, 0o755); err != nil {
		return nil, 0, err
	}

	pageMaps := make(map[int]map[string]string)
	counter := 0
	for _, page := range pages {
		assetsDir := adapter.LocatePageAssets(filepath.Join(dir, page.name))
		info, err := os.Stat(assetsDir)
		if err != nil || !info.IsDir() {
			continue
		}

		entries, err := os.ReadDir(assetsDir)
		if err != nil {
			return nil, 0, err
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

		pageMap := make(map[string]string)
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			counter++
			newName := fmt.Sprintf("image_%03d%s", counter, filepath.Ext(entry.Name()))
			if err := moveFile(filepath.Join(assetsDir, entry.Name()), filepath.Join(canonicalDir, newName)); err != nil {
				return nil, 0, err
			}
			pageMap[entry.Name()] = newName
		}
		if len(pageMap) > 0 {
			// Page indexes in records are 0-based; directory names are 1-based.
			pageMaps[page.index-1] = pageMap
		}
		removeIfEmpty(assetsDir)
	}
	return pageMaps, counter, nil
}

// mergePageRecords aggregates the per-page structured records into one
// canonical record with a total page count. An existing canonical record
// short-circuits so repeated passes stay byte-identical.
func mergePageRecords(ctx context.Context, dir string, pages []pageDir, pageMaps map[int]map[string]string) (string, error) {
	canonical := filepath.Join(dir, CanonicalRecordName)
	if _, err := os.Stat(canonical); err == nil {
		observability.DebugContext(ctx, "Canonical record already exists")
		return canonical, nil
	}

	pagesNode := &jsontree.Array{}
	for _, page := range pages {
		recordPath := findPageRecord(filepath.Join(dir, page.name))
		if recordPath == "" {
			observability.WarnContext(ctx, "No structured record in page directory", logfields.File(page.name))
			continue
		}
		data, err := os.ReadFile(recordPath)
		if err != nil {
			observability.WarnContext(ctx, "Failed to read page record", logfields.File(recordPath), logfields.Error(err))
			continue
		}
		root, err := jsontree.Parse(data)
		if err != nil {
			observability.WarnContext(ctx, "Malformed page record", logfields.File(recordPath), logfields.Error(err))
			continue
		}
		pageObj, ok := root.(*jsontree.Object)
		if !ok {
			observability.WarnContext(ctx, "Page record is not an object", logfields.File(recordPath))
			continue
		}

		pageIdx, ok := pageObj.GetInt("page_index")
		if !ok {
			pageIdx = 0
		}
		if blocks, ok := pageObj.GetArray("parsing_res_list"); ok {
			imageBlocks, matched := annotateImageBlocks(blocks, pageMaps[pageIdx])
			if matched < imageBlocks {
				// The bbox-encoded filename convention is an implicit contract
				// with the engine; surface drift instead of skipping silently.
				observability.WarnContext(ctx, "Image blocks without a matching asset",
					logfields.Page(pageIdx),
					logfields.Attempted(imageBlocks),
					logfields.Uploaded(matched))
			}
		}
		pagesNode.Items = append(pagesNode.Items, pageObj)
	}

	if len(pagesNode.Items) == 0 {
		observability.DebugContext(ctx, "No page records to merge")
		return "", nil
	}

	combined := jsontree.NewObject()
	combined.Set("pages", pagesNode)
	combined.Set("total_pages", &jsontree.Number{Value: json.Number(strconv.Itoa(len(pagesNode.Items)))})
	combined.Set("format", &jsontree.String{Value: "paddleocr-vl"})

	encoded, err := jsontree.Encode(combined)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(canonical, encoded, 0o644); err != nil {
		return "", err
	}
	observability.InfoContext(ctx, "Merged page records", logfields.Page(len(pagesNode.Items)))
	return canonical, nil
}

// findPageRecord returns the first per-page record file in a page directory.
func findPageRecord(pageDirPath string) string {
	entries, err := os.ReadDir(pageDirPath)
	if err != nil {
		return ""
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), recordFileSuffix) {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return ""
	}
	sort.Strings(names)
	return filepath.Join(pageDirPath, names[0])
}

// annotateImageBlocks attaches the canonical asset path to image blocks whose
// source filename can be reconstructed from the bounding box. Returns how
// many image blocks the page carries and how many were matched.
func annotateImageBlocks(blocks *jsontree.Array, rename map[string]string) (imageBlocks, matched int) {
	for _, item := range blocks.Items {
		block, ok := item.(*jsontree.Object)
		if !ok {
			continue
		}
		if label, _ := block.GetString("block_label"); label != "image" {
			continue
		}
		imageBlocks++

		bbox, ok := block.GetArray("block_bbox")
		if !ok || len(bbox.Items) != 4 {
			continue
		}
		name, ok := boxFilename(bbox)
		if !ok {
			continue
		}
		if newName, found := rename[name]; found {
			block.Set("img_path", &jsontree.String{Value: CanonicalAssetDir + "/" + newName})
			matched++
		}
	}
	return imageBlocks, matched
}

// boxFilename reconstructs the engine's bbox-derived asset filename:
// img_in_image_box_{x1}_{y1}_{x2}_{y2}.jpg, with coordinates rendered
// exactly as they appear in the record.
func boxFilename(bbox *jsontree.Array) (string, bool) {
	coords := make([]string, 0, 4)
	for _, item := range bbox.Items {
		n, ok := item.(*jsontree.Number)
		if !ok {
			return "", false
		}
		coords = append(coords, string(n.Value))
	}
	return "img_in_image_box_" + coords[0] + "_" + coords[1] + "_" + coords[2] + "_" + coords[3] + ".jpg", true
}

// mergePageMarkdown promotes the largest markdown fragment to result.md and
// rewrites its references using the union of all pages' rename maps. An
// existing canonical document short-circuits: page fragments may be larger
// than the already-rewritten result and must not clobber it on a re-run.
func mergePageMarkdown(ctx context.Context, dir string, adapter EngineAdapter, pageMaps map[int]map[string]string) (string, error) {
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

	if filepath.Dir(main) != filepath.Clean(dir) {
		if err := copyFile(main, canonical); err != nil {
			return "", err
		}
	} else {
		if err := os.Rename(main, canonical); err != nil {
			return "", err
		}
	}

	union := make(map[string]string)
	for _, pageMap := range pageMaps {
		for oldName, newName := range pageMap {
			union[oldName] = newName
		}
	}

	changed, err := RewriteFile(canonical, MappedResolver(union))
	if err != nil {
		observability.WarnContext(ctx, "Failed to rewrite image references", logfields.Error(err))
	} else if changed {
		observability.InfoContext(ctx, "Rewrote image references", logfields.File(CanonicalMarkdownName))
	}
	return canonical, nil
}
