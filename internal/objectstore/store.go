// Package objectstore uploads canonical assets to an S3-compatible object
// store and builds externally resolvable URLs for them.
package objectstore

import (
	"context"
	"path/filepath"
	"strings"
)

// Store is the minimal S3-compatible surface the uploader needs. The
// production implementation wraps minio-go; tests inject a fake.
type Store interface {
	// BucketExists reports whether the bucket exists.
	BucketExists(ctx context.Context, bucket string) (bool, error)

	// MakeBucket creates the bucket.
	MakeBucket(ctx context.Context, bucket string) error

	// SetBucketPolicy applies a raw JSON bucket policy.
	SetBucketPolicy(ctx context.Context, bucket, policy string) error

	// PutFile uploads a local file under the given object name.
	PutFile(ctx context.Context, bucket, objectName, filePath, contentType string) error

	// RemoveObject deletes an object.
	RemoveObject(ctx context.Context, bucket, objectName string) error
}

// contentTypes maps asset extensions to MIME types.
var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
}

// ContentTypeFor derives a MIME type from the file extension, falling back
// to a generic binary type.
func ContentTypeFor(path string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return ct
	}
	return "application/octet-stream"
}
