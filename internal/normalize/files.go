package normalize

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// imageExtensions lists the binary asset extensions the normalizer recognizes.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".svg":  true,
}

// findFilesByExt recursively collects files with the given extension
// (lowercase, with dot). Walk errors on individual entries are skipped.
func findFilesByExt(root, ext string) []string {
	var out []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ext) {
			out = append(out, path)
		}
		return nil
	})
	return out
}

// largestFile returns the path with the greatest byte size. The largest file
// is treated as the most complete candidate; ties keep the earlier walk order
// for determinism.
func largestFile(paths []string) string {
	best := ""
	var bestSize int64 = -1
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if info.Size() > bestSize {
			best = path
			bestSize = info.Size()
		}
	}
	return best
}

// moveFile renames src to dst, falling back to copy+remove across devices.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := copyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

// copyFile copies src to dst preserving the file mode.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// canonicalFilename NFC-normalizes a filename so visually identical names
// from different engines collide predictably instead of silently diverging.
func canonicalFilename(name string) string {
	return norm.NFC.String(name)
}

// collisionFreeDest returns a destination path inside dir for name, appending
// _1, _2, ... before the extension while the name is taken.
func collisionFreeDest(dir, name string) string {
	dest := filepath.Join(dir, name)
	if _, err := os.Stat(dest); os.IsNotExist(err) {
		return dest
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for counter := 1; ; counter++ {
		dest = filepath.Join(dir, stem+"_"+strconv.Itoa(counter)+ext)
		if _, err := os.Stat(dest); os.IsNotExist(err) {
			return dest
		}
	}
}

// removeIfEmpty removes a directory when it has no remaining entries.
func removeIfEmpty(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) > 0 {
		return
	}
	_ = os.Remove(dir)
}
