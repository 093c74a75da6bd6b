// Package runner drives the per-chunk analysis pipeline (extract, correlate,
// locate peak) across a bounded worker pool, collecting one ChunkResult per
// chunk regardless of completion order.
package runner

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/analysis/chunks"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/analysis/stability"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/cpuspec"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/logging"
)

// AnalyzeFunc analyzes a single chunk against the reference source and
// returns its chunk result. Implementations are expected to extract audio
// for the chunk window, run correlation, and locate the peak.
type AnalyzeFunc func(ctx context.Context, spec chunks.Spec) (stability.ChunkResult, error)

// Options configures the worker pool.
type Options struct {
	// Workers caps concurrent chunk analyses. Zero means use
	// cpuspec.GetOptimalThreadCount().
	Workers int
}

// Run analyzes every chunk in specs concurrently, bounded by Workers, and
// returns results ordered by chunk index. The first analysis error
// cancels remaining in-flight work and is returned; already-computed
// results are discarded in that case.
func Run(ctx context.Context, specs []chunks.Spec, analyze AnalyzeFunc, opts Options) ([]stability.ChunkResult, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = cpuspec.GetCPUSpec().GetOptimalThreadCount()
	}
	if workers < 1 {
		workers = 1
	}

	sem := semaphore.NewWeighted(int64(workers))
	group, groupCtx := errgroup.WithContext(ctx)

	results := make([]stability.ChunkResult, len(specs))

	for i, spec := range specs {
		i, spec := i, spec
		if err := sem.Acquire(groupCtx, 1); err != nil {
			if werr := group.Wait(); werr != nil {
				return nil, werr
			}
			return nil, err
		}
		group.Go(func() error {
			defer sem.Release(1)

			result, err := analyze(groupCtx, spec)
			if err != nil {
				logging.Warn("chunk analysis failed", "chunk_index", spec.Index, "error", err)
				return err
			}
			results[i] = result
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
