package filter

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/moasaja/moasaja/api"
)

// EvaluatorOption configures an evaluator
type EvaluatorOption func(*ConcurrentEvaluator)

// WithWorkers sets the number of worker goroutines
func WithWorkers(workers int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		if workers > 0 {
			e.workerCount = workers
		}
	}
}

// WithBatchSize sets the number of posts below which evaluation stays sequential
func WithBatchSize(size int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		if size > 0 {
			e.batchSize = size
		}
	}
}

// ConcurrentEvaluator evaluates filters over posts, splitting large slices
// into chunks evaluated in parallel
type ConcurrentEvaluator struct {
	workerCount int
	batchSize   int
}

// NewConcurrentEvaluator creates a new concurrent evaluator
func NewConcurrentEvaluator(opts ...EvaluatorOption) *ConcurrentEvaluator {
	e := &ConcurrentEvaluator{
		workerCount: runtime.GOMAXPROCS(0),
		batchSize:   100,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Evaluate returns the posts matching filter, preserving order
func (e *ConcurrentEvaluator) Evaluate(ctx context.Context, filter CompiledFilter, posts []api.Post) ([]api.Post, error) {
	if len(posts) == 0 {
		return []api.Post{}, nil
	}

	// small listings are not worth the goroutines
	if len(posts) < e.batchSize {
		return evaluateSequential(filter, posts), nil
	}

	return e.evaluateConcurrent(ctx, filter, posts)
}

func evaluateSequential(filter CompiledFilter, posts []api.Post) []api.Post {
	matches := make([]api.Post, 0, len(posts))
	for _, post := range posts {
		if filter.Evaluate(post) {
			matches = append(matches, post)
		}
	}
	return matches
}

func (e *ConcurrentEvaluator) evaluateConcurrent(ctx context.Context, filter CompiledFilter, posts []api.Post) ([]api.Post, error) {
	chunkSize := max(len(posts)/e.workerCount, e.batchSize)
	chunks := (len(posts) + chunkSize - 1) / chunkSize

	// each chunk writes only its own slot
	results := make([][]api.Post, chunks)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workerCount)

	for i := range chunks {
		start := i * chunkSize
		end := min(start+chunkSize, len(posts))

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = evaluateSequential(filter, posts[start:end])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	matches := make([]api.Post, 0, total)
	for _, r := range results {
		matches = append(matches, r...)
	}
	return matches, nil
}

var defaultEvaluator = NewConcurrentEvaluator()

// Apply returns the posts matching filter using the default evaluator
func Apply(ctx context.Context, filter CompiledFilter, posts []api.Post) ([]api.Post, error) {
	return defaultEvaluator.Evaluate(ctx, filter, posts)
}
