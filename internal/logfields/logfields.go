package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPassID     = "pass_id"
	KeyOutputDir  = "output_dir"
	KeyLayout     = "layout"
	KeyStage      = "stage"
	KeyPage       = "page"
	KeyFile       = "file"
	KeyObject     = "object"
	KeyBucket     = "bucket"
	KeyAssetCount = "asset_count"
	KeyUploaded   = "uploaded"
	KeyAttempted  = "attempted"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func PassID(id string) slog.Attr      { return slog.String(KeyPassID, id) }
func OutputDir(dir string) slog.Attr  { return slog.String(KeyOutputDir, dir) }
func Layout(l string) slog.Attr       { return slog.String(KeyLayout, l) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Page(n int) slog.Attr            { return slog.Int(KeyPage, n) }
func File(name string) slog.Attr      { return slog.String(KeyFile, name) }
func Object(name string) slog.Attr    { return slog.String(KeyObject, name) }
func Bucket(name string) slog.Attr    { return slog.String(KeyBucket, name) }
func AssetCount(n int) slog.Attr      { return slog.Int(KeyAssetCount, n) }
func Uploaded(n int) slog.Attr        { return slog.Int(KeyUploaded, n) }
func Attempted(n int) slog.Attr       { return slog.Int(KeyAttempted, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
