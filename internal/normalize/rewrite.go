package normalize

import (
	"os"
	"path"
	"regexp"
	"strings"
)

// The two embedding syntaxes carried by engine output documents. Only the
// filename component of a destination is meaningful; directory prefixes vary
// per engine and are discarded.
var (
	mdImagePattern   = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)
	htmlImagePattern = regexp.MustCompile(`<img\s+(?:([^>]*\s+))?src="([^"]+)"([^>]*)>`)
)

// refFilename extracts the bare filename from an embedded reference
// destination.
func refFilename(dest string) string {
	return path.Base(strings.ReplaceAll(strings.TrimSpace(dest), "\\", "/"))
}

// Resolver maps a referenced filename to its canonical relative path. The
// second return reports whether the reference should be rewritten at all;
// unresolved references are left verbatim.
type Resolver func(filename string) (string, bool)

// CanonicalResolver rewrites every reference to images/<filename>. Applying
// it twice is a no-op because filename extraction round-trips through the
// same prefix.
func CanonicalResolver() Resolver {
	return func(filename string) (string, bool) {
		return CanonicalAssetDir + "/" + filename, true
	}
}

// MappedResolver rewrites only references whose filename appears in the
// old→new rename map, pointing them at the renamed canonical asset. Matching
// is by filename only so fragment-relative paths resolve regardless of the
// originating page.
func MappedResolver(rename map[string]string) Resolver {
	return func(filename string) (string, bool) {
		newName, ok := rename[filename]
		if !ok {
			return "", false
		}
		return CanonicalAssetDir + "/" + newName, true
	}
}

// RewriteImageRefs rewrites embedded image references in both supported
// syntaxes. Idempotent; references the resolver declines are left verbatim.
func RewriteImageRefs(content string, resolve Resolver) string {
	content = mdImagePattern.ReplaceAllStringFunc(content, func(match string) string {
		m := mdImagePattern.FindStringSubmatch(match)
		newPath, ok := resolve(refFilename(m[2]))
		if !ok {
			return match
		}
		return "![" + m[1] + "](" + newPath + ")"
	})
	content = htmlImagePattern.ReplaceAllStringFunc(content, func(match string) string {
		m := htmlImagePattern.FindStringSubmatch(match)
		newPath, ok := resolve(refFilename(m[2]))
		if !ok {
			return match
		}
		return `<img ` + m[1] + `src="` + newPath + `"` + m[3] + `>`
	})
	return content
}

// RewriteFile applies RewriteImageRefs to a document on disk, writing back
// only when the content actually changed. Returns whether a write happened.
func RewriteFile(filePath string, resolve Resolver) (bool, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return false, err
	}
	rewritten := RewriteImageRefs(string(data), resolve)
	if rewritten == string(data) {
		return false, nil
	}
	if err := os.WriteFile(filePath, []byte(rewritten), 0o644); err != nil {
		return false, err
	}
	return true, nil
}
