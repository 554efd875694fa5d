package session

import (
	"context"
	"fmt"

	"github.com/ironsheep/planar-rect-mcp/internal/detection"
	"github.com/ironsheep/planar-rect-mcp/internal/imaging"
)

// DetectResult is delivered by a DetectWorker once detection finishes.
type DetectResult struct {
	Generation Generation
	Path       string
	Found      *detection.ObservationsResult
	Err        error
}

// DetectWorker runs rectangle detection off the session goroutine.
type DetectWorker struct {
	cache *imaging.FrameCache
	opts  detection.Options
}

// NewDetectWorker creates a worker reading frames through cache.
func NewDetectWorker(cache *imaging.FrameCache, opts detection.Options) *DetectWorker {
	return &DetectWorker{cache: cache, opts: opts}
}

// Submit starts detection on path in the background. The returned channel
// receives exactly one result and is then closed. When ctx ends first the
// result carries ctx's error.
func (w *DetectWorker) Submit(ctx context.Context, gen Generation, path string) <-chan DetectResult {
	out := make(chan DetectResult, 1)
	done := make(chan DetectResult, 1)

	go func() {
		done <- w.detect(ctx, gen, path)
	}()

	go func() {
		defer close(out)
		select {
		case res := <-done:
			out <- res
		case <-ctx.Done():
			out <- DetectResult{Generation: gen, Path: path, Err: ctx.Err()}
		}
	}()

	return out
}

// Run is Submit followed by a wait for the result.
func (w *DetectWorker) Run(ctx context.Context, gen Generation, path string) DetectResult {
	return <-w.Submit(ctx, gen, path)
}

func (w *DetectWorker) detect(ctx context.Context, gen Generation, path string) DetectResult {
	res := DetectResult{Generation: gen, Path: path}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	img, err := w.cache.Load(path)
	if err != nil {
		res.Err = err
		return res
	}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	found, err := detection.DetectRectangles(img, w.opts)
	if err != nil {
		res.Err = fmt.Errorf("detect rectangles in %s: %w", path, err)
		return res
	}
	res.Found = found
	return res
}
