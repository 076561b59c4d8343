package objectstore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dinobot22/mineru-tianshu/internal/config"
	nerrors "github.com/dinobot22/mineru-tianshu/internal/errors"
	"github.com/dinobot22/mineru-tianshu/internal/logfields"
	"github.com/dinobot22/mineru-tianshu/internal/metrics"
	"github.com/dinobot22/mineru-tianshu/internal/retry"
)

// publicReadPolicy grants anonymous GetObject on the bucket so generated
// URLs are directly fetchable. Applied best-effort; some stores require
// manual policy configuration.
const publicReadPolicy = `{
  "Version": "2012-10-17",
  "Statement": [
    {
      "Effect": "Allow",
      "Principal": {"AWS": ["*"]},
      "Action": ["s3:GetObject"],
      "Resource": ["arn:aws:s3:::%s/*"]
    }
  ]
}`

// Client uploads canonical assets and builds public URLs for them. It is
// constructed explicitly by the orchestration layer and passed into the
// pipeline; there is no process-wide singleton. A single Client is safe for
// concurrent use by independent normalization workers.
type Client struct {
	store    Store
	cfg      config.StoreConfig
	recorder metrics.Recorder
	policy   retry.Policy
	timeout  time.Duration

	ensureOnce sync.Once
	ensureErr  error

	// now is swappable for deterministic object names in tests.
	now func() time.Time
}

// Option customizes a Client.
type Option func(*Client)

// WithRecorder injects a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(c *Client) {
		if r != nil {
			c.recorder = r
		}
	}
}

// New builds a Client backed by an S3-compatible store. A missing public URL
// is the one fatal precondition: every generated link would be unusable.
func New(cfg config.StoreConfig, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nerrors.Wrap(err, nerrors.CategoryConfig, nerrors.SeverityFatal, "object store configuration invalid")
	}
	store, err := NewMinioStore(cfg)
	if err != nil {
		return nil, nerrors.Wrap(err, nerrors.CategoryStorage, nerrors.SeverityFatal, "object store client construction failed")
	}
	return NewWithStore(cfg, store, opts...)
}

// NewWithStore builds a Client over an explicit Store implementation.
// Used by tests to inject a fake store.
func NewWithStore(cfg config.StoreConfig, store Store, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nerrors.Wrap(err, nerrors.CategoryConfig, nerrors.SeverityFatal, "object store configuration invalid")
	}
	cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")
	c := &Client{
		store:    store,
		cfg:      cfg,
		recorder: metrics.NoopRecorder{},
		policy:   retry.NewPolicy(retry.BackoffLinear, 0, 0, cfg.MaxRetries),
		timeout:  cfg.TimeoutDuration(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Bucket returns the configured bucket name.
func (c *Client) Bucket() string {
	return c.cfg.Bucket
}

// ensureBucket creates the bucket on first use (idempotent check-then-create,
// once per client lifetime).
func (c *Client) ensureBucket(ctx context.Context) error {
	c.ensureOnce.Do(func() {
		exists, err := c.store.BucketExists(ctx, c.cfg.Bucket)
		if err != nil {
			c.ensureErr = nerrors.StorageError(err, "check bucket existence")
			return
		}
		if exists {
			return
		}
		if err := c.store.MakeBucket(ctx, c.cfg.Bucket); err != nil {
			c.ensureErr = nerrors.StorageError(err, "create bucket")
			return
		}
		slog.Info("Created bucket", logfields.Bucket(c.cfg.Bucket))
		policy := fmt.Sprintf(publicReadPolicy, c.cfg.Bucket)
		if err := c.store.SetBucketPolicy(ctx, c.cfg.Bucket, policy); err != nil {
			slog.Warn("Failed to set public-read bucket policy, URLs may need manual configuration",
				logfields.Bucket(c.cfg.Bucket), logfields.Error(err))
		}
	})
	return c.ensureErr
}

// UploadFile uploads one local file under a generated object name and returns
// its public URL.
func (c *Client) UploadFile(ctx context.Context, filePath string) (string, error) {
	if _, err := os.Stat(filePath); err != nil {
		return "", nerrors.Wrap(err, nerrors.CategoryFileSystem, nerrors.SeverityError, "asset file not readable")
	}
	if err := c.ensureBucket(ctx); err != nil {
		return "", err
	}

	objectName := ObjectName(filepath.Ext(filePath), c.now())
	contentType := ContentTypeFor(filePath)

	start := time.Now()
	err := retry.Do(ctx, c.policy, func() error {
		// fresh timeout per attempt so retries do not inherit a drained budget
		putCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		return c.store.PutFile(putCtx, c.cfg.Bucket, objectName, filePath, contentType)
	})
	c.recorder.ObserveUploadDuration(time.Since(start), err == nil)
	c.recorder.IncUploadResult(err == nil)
	if err != nil {
		return "", nerrors.StorageError(err, "put object")
	}

	slog.Debug("Uploaded asset", logfields.File(filepath.Base(filePath)), logfields.Object(objectName))
	return c.cfg.PublicURL + "/" + c.cfg.Bucket + "/" + objectName, nil
}

// UploadStats reports the outcome of a directory upload.
type UploadStats struct {
	Attempted int
	Uploaded  int
}

// UploadDirectory uploads every recognized asset in dir and returns a
// filename→URL map. A failed file is logged and excluded from the map while
// remaining files continue; partial success is preserved.
func (c *Client) UploadDirectory(ctx context.Context, dir string) (map[string]string, UploadStats, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, UploadStats{}, nerrors.Wrap(err, nerrors.CategoryFileSystem, nerrors.SeverityError, "read asset directory")
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := contentTypes[strings.ToLower(filepath.Ext(entry.Name()))]; ok {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	if len(files) == 0 {
		slog.Warn("No assets found to upload", slog.String("dir", dir))
		return map[string]string{}, UploadStats{}, nil
	}

	stats := UploadStats{Attempted: len(files)}
	mapping := make(map[string]string, len(files))
	for _, name := range files {
		url, err := c.UploadFile(ctx, filepath.Join(dir, name))
		if err != nil {
			slog.Error("Failed to upload asset, continuing", logfields.File(name), logfields.Error(err))
			continue
		}
		mapping[name] = url
		stats.Uploaded++
	}

	slog.Info("Asset upload finished",
		logfields.Uploaded(stats.Uploaded),
		logfields.Attempted(stats.Attempted),
		logfields.Bucket(c.cfg.Bucket))
	return mapping, stats, nil
}

// DeleteObject removes an uploaded object.
func (c *Client) DeleteObject(ctx context.Context, objectName string) error {
	if err := c.store.RemoveObject(ctx, c.cfg.Bucket, objectName); err != nil {
		return nerrors.StorageError(err, "remove object")
	}
	return nil
}

// HealthCheck reports whether the store answers a bucket probe.
func (c *Client) HealthCheck(ctx context.Context) bool {
	_, err := c.store.BucketExists(ctx, c.cfg.Bucket)
	if err != nil {
		slog.Error("Object store health check failed", logfields.Error(err))
	}
	return err == nil
}
