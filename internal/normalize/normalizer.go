package normalize

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"

	nerrors "github.com/dinobot22/mineru-tianshu/internal/errors"
	"github.com/dinobot22/mineru-tianshu/internal/logfields"
	"github.com/dinobot22/mineru-tianshu/internal/metrics"
	"github.com/dinobot22/mineru-tianshu/internal/objectstore"
	"github.com/dinobot22/mineru-tianshu/internal/observability"
)

// Pipeline runs the full normalization pass: detect, consolidate, rewrite,
// upload, substitute. One directory is processed strictly sequentially;
// independent directories may be normalized concurrently through the same
// Pipeline because all filesystem mutation stays inside the directory and
// the shared store client tolerates concurrent use.
type Pipeline struct {
	client   *objectstore.Client
	recorder metrics.Recorder
}

// PipelineOption customizes a Pipeline.
type PipelineOption func(*Pipeline)

// WithClient enables asset externalization through the given store client.
// Without a client the pass stops at canonical local paths.
func WithClient(c *objectstore.Client) PipelineOption {
	return func(p *Pipeline) { p.client = c }
}

// WithRecorder injects a metrics recorder.
func WithRecorder(r metrics.Recorder) PipelineOption {
	return func(p *Pipeline) {
		if r != nil {
			p.recorder = r
		}
	}
}

// NewPipeline builds a Pipeline. The store client is owned by the caller and
// passed in explicitly; the pipeline never constructs one on its own.
func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{recorder: metrics.NoopRecorder{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Normalize converts one raw engine output directory into the canonical
// artifact layout and externalizes its assets when a store client is
// configured. Upload failure of any kind degrades to local canonical paths;
// only a missing input directory is an error.
func (p *Pipeline) Normalize(ctx context.Context, dir string) (*Result, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, nerrors.ValidationError("output directory does not exist").WithContext("dir", dir)
	}

	ctx = observability.WithPassID(ctx, uuid.NewString())
	ctx = observability.WithOutputDir(ctx, dir)

	passStart := time.Now()
	layout := DetectLayout(dir)
	ctx = observability.WithLayout(ctx, string(layout))
	observability.InfoContext(ctx, "Normalizing output directory")

	res, err := p.runLayout(ctx, dir, layout)
	if err != nil {
		p.recorder.IncPassOutcome("failed")
		return nil, err
	}
	p.recorder.ObserveAssetCount(res.ImageCount)

	p.externalize(ctx, res)

	p.recorder.ObservePassDuration(time.Since(passStart))
	if res.StoreEnabled || p.client == nil {
		p.recorder.IncPassOutcome("success")
	} else {
		p.recorder.IncPassOutcome("degraded")
	}

	observability.InfoContext(ctx, "Normalization complete",
		logfields.File(res.MarkdownFile),
		logfields.AssetCount(res.ImageCount),
		logfields.Uploaded(res.UploadedCount))
	return res, nil
}

func (p *Pipeline) runLayout(ctx context.Context, dir string, layout Layout) (*Result, error) {
	stage := "normalize_" + string(layout)
	start := time.Now()

	var res *Result
	var err error
	switch layout {
	case LayoutPaged:
		res, err = NormalizePaged(ctx, dir)
	default:
		res, err = NormalizeStandard(ctx, dir)
	}

	p.recorder.ObserveStageDuration(stage, time.Since(start))
	if err != nil {
		p.recorder.IncStageResult(stage, metrics.ResultFatal)
		return nil, err
	}
	p.recorder.IncStageResult(stage, metrics.ResultSuccess)
	return res, nil
}

// externalize uploads the canonical assets and substitutes references.
// Every failure here is non-fatal: the canonical local layout is a valid
// terminal state and the pass still completes.
func (p *Pipeline) externalize(ctx context.Context, res *Result) {
	if p.client == nil || res.ImageDir == "" || res.ImageCount == 0 {
		observability.DebugContext(ctx, "No assets to externalize")
		return
	}

	ctx = observability.WithStage(ctx, "externalize")
	start := time.Now()

	mapping, stats, err := p.client.UploadDirectory(ctx, res.ImageDir)
	p.recorder.ObserveStageDuration("externalize", time.Since(start))
	if err != nil {
		observability.ErrorContext(ctx, "Asset upload failed, continuing with local paths", logfields.Error(err))
		p.recorder.IncStageResult("externalize", metrics.ResultFatal)
		return
	}
	if len(mapping) == 0 {
		observability.WarnContext(ctx, "No assets uploaded, continuing with local paths",
			logfields.Attempted(stats.Attempted))
		p.recorder.IncStageResult("externalize", metrics.ResultWarning)
		return
	}

	if res.MarkdownFile != "" {
		if err := SubstituteMarkdownFile(ctx, res.MarkdownFile, mapping); err != nil {
			observability.ErrorContext(ctx, "Failed to externalize markdown references", logfields.Error(err))
		}
	}
	if res.RecordFile != "" {
		if err := SubstituteRecordFile(ctx, res.RecordFile, mapping); err != nil {
			observability.ErrorContext(ctx, "Failed to externalize record references", logfields.Error(err))
		}
	}

	res.StoreEnabled = true
	res.ImagesUploaded = true
	res.UploadedCount = stats.Uploaded
	if stats.Uploaded < stats.Attempted {
		observability.WarnContext(ctx, "Partial asset externalization",
			logfields.Uploaded(stats.Uploaded), logfields.Attempted(stats.Attempted))
		p.recorder.IncStageResult("externalize", metrics.ResultWarning)
	} else {
		p.recorder.IncStageResult("externalize", metrics.ResultSuccess)
	}
}
