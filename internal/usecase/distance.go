package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"semtiles/internal/domain"
)

// ProgressFunc is called after each item is resolved.
type ProgressFunc func(done, total int, itemID string)

// DistanceEngine resolves embeddings for a list of items and builds the
// pairwise cosine distance table.
type DistanceEngine struct {
	resolver    *Resolver
	concurrency int
	logger      *slog.Logger
}

// NewDistanceEngine creates an engine. concurrency bounds how many items are
// resolved at once; values below 1 mean sequential.
func NewDistanceEngine(resolver *Resolver, concurrency int, logger *slog.Logger) *DistanceEngine {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DistanceEngine{
		resolver:    resolver,
		concurrency: concurrency,
		logger:      logger,
	}
}

type panicError struct {
	value interface{}
}

func (p *panicError) Error() string {
	return fmt.Sprintf("panic: %v", p.value)
}

// Compute returns the distance table for items. Items without an embedding
// are listed in the result's Failures and left out of the table.
//
// The returned result is never nil. When the whole computation fails (a
// panicking provider or a cancelled context) the table is empty and the error
// wraps domain.ErrComputation.
func (e *DistanceEngine) Compute(ctx context.Context, items []domain.Item, progress ProgressFunc) (*domain.DistanceResult, error) {
	e.logger.Info("computing distances", "items", len(items))

	vectors, failures, err := e.resolveAll(ctx, items, progress)
	if err != nil {
		e.logger.Error("error computing distances", "error", err)
		return &domain.DistanceResult{Table: domain.NewDistanceTable()}, fmt.Errorf("%w: %w", domain.ErrComputation, err)
	}

	// First occurrence fixes an id's position; a later duplicate replaces its vector.
	var order []string
	byID := make(map[string][]float32, len(items))
	for i, item := range items {
		if vectors[i] == nil {
			continue
		}
		if _, seen := byID[item.ID]; !seen {
			order = append(order, item.ID)
		}
		byID[item.ID] = vectors[i]
	}

	table := domain.NewDistanceTable()
	for i, a := range order {
		for _, b := range order[i+1:] {
			table.Set(a, b, CosineDistance(byID[a], byID[b]))
		}
	}

	return &domain.DistanceResult{
		Table:    table,
		Embedded: len(order),
		Failures: failures,
	}, nil
}

func (e *DistanceEngine) resolveAll(ctx context.Context, items []domain.Item, progress ProgressFunc) ([][]float32, []domain.ItemFailure, error) {
	vectors := make([][]float32, len(items))
	errs := make([]error, len(items))

	var mu sync.Mutex
	done := 0
	report := func(itemID string) {
		mu.Lock()
		defer mu.Unlock()
		done++
		progress(done, len(items), itemID)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = &panicError{value: r}
				}
			}()

			vectors[i], errs[i] = e.resolver.Resolve(gctx, item)
			if errs[i] == nil && len(vectors[i]) == 0 {
				errs[i] = fmt.Errorf("%w: empty vector", domain.ErrNoEmbedding)
			}

			if progress != nil {
				report(item.ID)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var failures []domain.ItemFailure
	for i, item := range items {
		if errs[i] == nil {
			continue
		}
		vectors[i] = nil
		e.logger.Warn("could not generate embedding for item", "item", item.ID, "name", item.Name, "error", errs[i])
		failures = append(failures, domain.ItemFailure{
			ItemID: item.ID,
			Name:   item.Name,
			Err:    errs[i],
			Reason: errs[i].Error(),
		})
	}
	return vectors, failures, nil
}
