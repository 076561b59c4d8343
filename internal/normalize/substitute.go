package normalize

import (
	"context"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/dinobot22/mineru-tianshu/internal/jsontree"
	"github.com/dinobot22/mineru-tianshu/internal/logfields"
	"github.com/dinobot22/mineru-tianshu/internal/observability"
)

// SubstituteMarkdownURLs replaces canonical local references with external
// URLs. Both embedding syntaxes are normalized into the HTML img form going
// forward (never the reverse), so downstream consumers see one convention.
// Returns the rewritten content and the number of substitutions.
func SubstituteMarkdownURLs(content string, mapping map[string]string) (string, int) {
	replaced := 0
	for _, filename := range sortedKeys(mapping) {
		url := mapping[filename]
		escaped := regexp.QuoteMeta(CanonicalAssetDir + "/" + filename)

		// ![alt](images/xxx.jpg) -> <img src="URL" alt="alt">
		mdPattern := regexp.MustCompile(`!\[(.*?)\]\(` + escaped + `\)`)
		next := mdPattern.ReplaceAllStringFunc(content, func(match string) string {
			m := mdPattern.FindStringSubmatch(match)
			alt := m[1]
			if alt == "" {
				alt = filename
			}
			return `<img src="` + url + `" alt="` + alt + `">`
		})
		if next != content {
			replaced++
		}
		content = next

		// <img src="images/xxx.jpg"> -> <img src="URL">
		htmlPattern := regexp.MustCompile(`<img([^>]*?)src=["']` + escaped + `["']([^>]*?)>`)
		next = htmlPattern.ReplaceAllString(content, `<img${1}src="`+url+`"${2}>`)
		if next != content {
			replaced++
		}
		content = next
	}
	return content, replaced
}

// SubstituteMarkdownFile applies SubstituteMarkdownURLs to a document on
// disk, writing back only on change.
func SubstituteMarkdownFile(ctx context.Context, filePath string, mapping map[string]string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	rewritten, replaced := SubstituteMarkdownURLs(string(data), mapping)
	if rewritten == string(data) {
		observability.DebugContext(ctx, "No markdown references to externalize")
		return nil
	}
	if err := os.WriteFile(filePath, []byte(rewritten), 0o644); err != nil {
		return err
	}
	observability.InfoContext(ctx, "Externalized markdown references", logfields.Uploaded(replaced))
	return nil
}

// SubstituteRecordURLs walks the structured record and replaces any scalar
// string that carries both a mapped filename and the canonical directory
// token with the external URL. Returns the number of replacements.
func SubstituteRecordURLs(root jsontree.Node, mapping map[string]string) int {
	filenames := sortedKeys(mapping)
	return jsontree.RewriteStrings(root, func(s string) (string, bool) {
		if !strings.Contains(s, CanonicalAssetDir) {
			return "", false
		}
		for _, filename := range filenames {
			if strings.Contains(s, filename) {
				return mapping[filename], true
			}
		}
		return "", false
	})
}

// SubstituteRecordFile applies SubstituteRecordURLs to a record on disk.
func SubstituteRecordFile(ctx context.Context, filePath string, mapping map[string]string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	root, err := jsontree.Parse(data)
	if err != nil {
		return err
	}
	replaced := SubstituteRecordURLs(root, mapping)
	if replaced == 0 {
		observability.DebugContext(ctx, "No record references to externalize")
		return nil
	}
	encoded, err := jsontree.Encode(root)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filePath, encoded, 0o644); err != nil {
		return err
	}
	observability.InfoContext(ctx, "Externalized record references", logfields.Uploaded(replaced))
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
