package normalize

// Result reports what one normalization pass produced. Absence of a document
// or assets is a legitimate outcome, not an error: the corresponding fields
// stay zero.
type Result struct {
	// MarkdownFile is the path of the canonical primary document, or "".
	MarkdownFile string `json:"markdown_file,omitempty"`

	// RecordFile is the path of the canonical structured record, or "".
	RecordFile string `json:"json_file,omitempty"`

	// ImageDir is the path of the canonical asset directory, or "".
	ImageDir string `json:"image_dir,omitempty"`

	// ImageCount is the number of assets consolidated into ImageDir.
	ImageCount int `json:"image_count"`

	// StoreEnabled reports whether asset externalization ran.
	StoreEnabled bool `json:"store_enabled"`

	// ImagesUploaded reports whether at least one asset was externalized.
	ImagesUploaded bool `json:"images_uploaded"`

	// UploadedCount is the number of assets externalized successfully.
	UploadedCount int `json:"uploaded_count"`
}
