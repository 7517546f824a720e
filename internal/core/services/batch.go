package services

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driving"
	"github.com/custodia-labs/docmeta/internal/logger"
)

// Ensure BatchExtractor implements the interface.
var _ driving.BatchService = (*BatchExtractor)(nil)

// BatchExtractor runs many documents concurrently. Each document is an
// independent run; one failure never cancels its siblings.
type BatchExtractor struct {
	extractor driving.ExtractionService
	workers   int
}

// NewBatchExtractor creates a batch extractor. Workers below one default to
// the number of CPUs.
func NewBatchExtractor(extractor driving.ExtractionService, workers int) *BatchExtractor {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &BatchExtractor{
		extractor: extractor,
		workers:   workers,
	}
}

// Workers returns the concurrency limit.
func (b *BatchExtractor) Workers() int {
	return b.workers
}

// ExtractAll extracts every source and returns one item per source in
// input order. Sources not started before ctx is cancelled report the
// context error.
func (b *BatchExtractor) ExtractAll(ctx context.Context, sources []domain.RawSource) []driving.BatchItem {
	items := make([]driving.BatchItem, len(sources))

	var g errgroup.Group
	g.SetLimit(b.workers)

	for i, src := range sources {
		items[i].Source = src
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				items[i].Err = err
				return nil
			}
			result, err := b.extractor.Extract(ctx, src)
			items[i].Result = result
			items[i].Err = err
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, item := range items {
		if item.Err != nil {
			failed++
		}
	}
	logger.Info("batch.done: %d documents, %d failed", len(items), failed)
	return items
}
