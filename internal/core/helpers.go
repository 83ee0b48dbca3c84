package core

import (
	"context"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 4

// Opener opens the desc stream of the database at path.
type Opener func(path string) (io.ReadCloser, error)

// Collector receives matching records from BulkDecode. Calls are serialized,
// but records of different databases interleave.
type Collector func(src Source, rec *Record, ordinal int) error

// BulkDecode decodes several databases in parallel with d.
// Returns a map of repository name to record count.
func BulkDecode(ctx context.Context, d *Decoder, sources []Source, open Opener, collect Collector) (map[string]int, error) {
	return BulkDecodeWithConcurrency(ctx, d, sources, open, collect, defaultConcurrency)
}

// BulkDecodeWithConcurrency decodes databases with a custom concurrency limit.
// The first error cancels the remaining decodes and is returned.
func BulkDecodeWithConcurrency(ctx context.Context, d *Decoder, sources []Source, open Opener, collect Collector, concurrency int) (map[string]int, error) {
	counts := make(map[string]int, len(sources))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}

	for _, src := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			rc, err := open(src.Path)
			if err != nil {
				return fmt.Errorf("opening %s: %w", src.Path, err)
			}
			defer func() { _ = rc.Close() }()

			n, err := d.Decode(&ctxReader{ctx: ctx, r: rc}, src, func(rec *Record, ordinal int, _ bool) error {
				if rec == nil {
					return nil
				}
				mu.Lock()
				defer mu.Unlock()
				return collect(src, rec, ordinal)
			})
			if err != nil {
				return fmt.Errorf("decoding %s: %w", src.Path, err)
			}

			mu.Lock()
			counts[src.Repository] += n
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return counts, err
	}
	return counts, nil
}

// ctxReader stops reading once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
